package server

import (
	"poetryclub/internal/models"
	"poetryclub/internal/repository"
	"poetryclub/internal/service"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
)

type updateProfileRequest struct {
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
}

func (r updateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.NilOrNotEmpty, validation.Length(3, 30)),
		validation.Field(&r.Bio, validation.Length(0, 500)),
	)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r changePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 72)),
	)
}

type adminUpdateUserRequest struct {
	Role      *string `json:"role"`
	Status    *string `json:"status"`
	BanReason *string `json:"banReason"`
}

func (r adminUpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Role, validation.In(string(models.RoleUser), string(models.RoleAdmin))),
		validation.Field(&r.Status, validation.In(
			string(models.StatusActive), string(models.StatusLocked), string(models.StatusBanned))),
		validation.Field(&r.BanReason, validation.Length(0, 500)),
	)
}

// GetMyProfile handles GET /api/users/me.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	callerID, _ := caller(c)
	user, err := s.userService.GetProfile(c.UserContext(), callerID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondSuccess(c, fiber.StatusOK, "Profile retrieved", user)
}

// UpdateMyProfile handles PATCH /api/users/me.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return models.RespondWithError(c, models.NewRequestValidationError(err))
	}

	callerID, _ := caller(c)
	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:   callerID,
		Username: req.Username,
		Bio:      req.Bio,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondSuccess(c, fiber.StatusOK, "Profile updated", user)
}

// ChangeMyPassword handles POST /api/users/me/change-password.
func (s *Server) ChangeMyPassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return models.RespondWithError(c, models.NewRequestValidationError(err))
	}

	callerID, _ := caller(c)
	if err := s.authService.ChangePassword(c.UserContext(), service.ChangePasswordInput{
		UserID:          callerID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondSuccess(c, fiber.StatusOK, "Password changed", nil)
}

// ListUsers handles GET /api/users for admins.
func (s *Server) ListUsers(c *fiber.Ctx) error {
	w := parsePageWindow(c)
	users, total, err := s.userService.ListUsers(c.UserContext(), repository.UserListOptions{
		Search: c.Query("search"),
		Role:   models.Role(c.Query("role")),
		Status: models.UserStatus(c.Query("status")),
		Limit:  w.Limit,
		Offset: w.Offset,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondSuccess(c, fiber.StatusOK, "Users retrieved", listPayload(users, w, total))
}

// GetUser handles GET /api/users/:id. Self or admin.
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, appErr := paramID(c, "id", "user")
	if appErr != nil {
		return models.RespondWithError(c, appErr)
	}

	callerID, callerRole := caller(c)
	user, err := s.userService.GetUser(c.UserContext(), callerID, callerRole, id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondSuccess(c, fiber.StatusOK, "User retrieved", user)
}

// AdminUpdateUser handles PATCH /api/users/:id for admins.
func (s *Server) AdminUpdateUser(c *fiber.Ctx) error {
	id, appErr := paramID(c, "id", "user")
	if appErr != nil {
		return models.RespondWithError(c, appErr)
	}

	var req adminUpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return models.RespondWithError(c, models.NewRequestValidationError(err))
	}

	in := service.AdminUpdateUserInput{UserID: id, BanReason: req.BanReason}
	if req.Role != nil {
		role := models.Role(*req.Role)
		in.Role = &role
	}
	if req.Status != nil {
		status := models.UserStatus(*req.Status)
		in.Status = &status
	}

	user, err := s.userService.AdminUpdateUser(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondSuccess(c, fiber.StatusOK, "User updated", user)
}

// DeleteUser handles DELETE /api/users/:id for admins.
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, appErr := paramID(c, "id", "user")
	if appErr != nil {
		return models.RespondWithError(c, appErr)
	}

	if err := s.userService.DeleteUser(c.UserContext(), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondSuccess(c, fiber.StatusOK, "User deleted", nil)
}
