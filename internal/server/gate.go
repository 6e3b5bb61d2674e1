package server

import (
	"errors"
	"strconv"
	"strings"

	"poetryclub/internal/middleware"
	"poetryclub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer   = "poetryclub-api"
	tokenAudience = "poetryclub-client"
)

// RequireRoles returns the authentication middleware for the given role
// allow-set. It parses the bearer token, re-fetches the account so role and
// status changes take effect immediately, and rejects callers whose role is
// not in the set. Missing or invalid credentials yield 401; a valid identity
// with an inactive account or insufficient role yields 403.
func (s *Server) RequireRoles(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := s.parseBearer(c)
		if err != nil {
			return models.RespondWithError(c, err)
		}

		user, lookupErr := s.userRepo.GetByID(c.UserContext(), userID)
		if lookupErr != nil {
			var appErr *models.AppError
			if errors.As(lookupErr, &appErr) && appErr.Code == "NOT_FOUND" {
				middleware.AuthFailures.WithLabelValues("unknown_user").Inc()
				return models.RespondWithError(c,
					models.NewUnauthenticatedError("Invalid or expired token"))
			}
			return models.RespondWithError(c, lookupErr)
		}

		switch user.Status {
		case models.StatusBanned:
			middleware.AuthFailures.WithLabelValues("banned").Inc()
			msg := "Account banned"
			if user.BanReason != nil && *user.BanReason != "" {
				msg = "Account banned: " + *user.BanReason
			}
			return models.RespondWithError(c, models.NewForbiddenError(msg))
		case models.StatusLocked:
			middleware.AuthFailures.WithLabelValues("locked").Inc()
			return models.RespondWithError(c, models.NewForbiddenError("Account locked"))
		}

		allowed := false
		for _, role := range roles {
			if user.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			middleware.AuthFailures.WithLabelValues("role").Inc()
			return models.RespondWithError(c,
				models.NewForbiddenError("Insufficient permissions"))
		}

		c.Locals("userID", user.ID)
		c.Locals("userRole", user.Role)
		c.SetUserContext(middleware.WithUserID(c.UserContext(), user.ID))

		return c.Next()
	}
}

// parseBearer extracts and verifies the bearer token, returning the subject
// user ID.
func (s *Server) parseBearer(c *fiber.Ctx) (uint, *models.AppError) {
	authHeader := c.Get("Authorization")
	tokenString := ""
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}
	if tokenString == "" {
		middleware.AuthFailures.WithLabelValues("missing_token").Inc()
		return 0, models.NewUnauthenticatedError("Authorization required")
	}

	userID, _, ok := s.verifyToken(tokenString)
	if !ok {
		middleware.AuthFailures.WithLabelValues("invalid_token").Inc()
		return 0, models.NewUnauthenticatedError("Invalid or expired token")
	}
	return userID, nil
}

// verifyToken parses an HS256 token and validates signature, issuer, audience
// and subject. The role claim is returned for callers that personalize public
// output without enforcing.
func (s *Server) verifyToken(tokenString string) (uint, models.Role, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", false
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
		return 0, "", false
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
		return 0, "", false
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, "", false
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, "", false
	}

	role, _ := claims["role"].(string)
	return uint(userID), models.Role(role), true
}

// optionalCaller extracts the caller's identity from the Authorization header
// without enforcing it. Public endpoints use it to personalize output (the
// liked flag, hidden-poem visibility for authors and admins).
func (s *Server) optionalCaller(c *fiber.Ctx) (uint, models.Role) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, ""
	}

	userID, role, ok := s.verifyToken(parts[1])
	if !ok {
		return 0, ""
	}
	return userID, role
}
