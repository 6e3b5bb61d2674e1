package server

import (
	"context"
	"net/http"
	"testing"

	"poetryclub/internal/featureflags"
	"poetryclub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterEndpoint(t *testing.T) {
	t.Run("creates account and returns token", func(t *testing.T) {
		userRepo := newStubUserRepo()
		userRepo.createFn = func(_ context.Context, u *models.User) error {
			u.ID = 7
			return nil
		}
		_, app := newTestServer(userRepo, newStubPoemRepo(), newStubCommentRepo())

		resp, env := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
			"username": "li_bai",
			"email":    "li@example.com",
			"password": "Moonlight1",
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.True(t, env.Success)

		data, ok := env.Data.(map[string]any)
		require.True(t, ok)
		assert.NotEmpty(t, data["token"])
		user, ok := data["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "li_bai", user["username"])
		_, hasPassword := user["password"]
		assert.False(t, hasPassword, "password hash must never be serialized")
	})

	t.Run("missing fields produce per-field messages", func(t *testing.T) {
		_, app := newTestServer(newStubUserRepo(), newStubPoemRepo(), newStubCommentRepo())
		resp, env := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
			"username": "li_bai",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", env.Error)
		assert.Contains(t, env.Fields, "email")
		assert.Contains(t, env.Fields, "password")
	})

	t.Run("closed by feature flag", func(t *testing.T) {
		s, app := newTestServer(newStubUserRepo(), newStubPoemRepo(), newStubCommentRepo())
		s.flags = featureflags.NewManager("registration_closed=on")
		resp, env := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
			"username": "li_bai",
			"email":    "li@example.com",
			"password": "Moonlight1",
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "FORBIDDEN", env.Error)
	})

	t.Run("taken username is a conflict", func(t *testing.T) {
		userRepo := newStubUserRepo()
		userRepo.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
			return &models.User{ID: 2, Username: username}, nil
		}
		_, app := newTestServer(userRepo, newStubPoemRepo(), newStubCommentRepo())
		resp, env := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
			"username": "li_bai",
			"email":    "li@example.com",
			"password": "Moonlight1",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "CONFLICT", env.Error)
	})
}

func TestLoginEndpoint(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Moonlight1"), bcrypt.MinCost)
	require.NoError(t, err)

	withAccount := func(user *models.User) *stubUserRepo {
		userRepo := newStubUserRepo()
		userRepo.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
			if user != nil && username == user.Username {
				cp := *user
				return &cp, nil
			}
			return nil, nil
		}
		return userRepo
	}

	t.Run("valid credentials return token", func(t *testing.T) {
		userRepo := withAccount(&models.User{
			ID: 1, Username: "li_bai", Password: string(hash), Status: models.StatusActive,
		})
		_, app := newTestServer(userRepo, newStubPoemRepo(), newStubCommentRepo())
		resp, env := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": "li_bai",
			"password": "Moonlight1",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		data, ok := env.Data.(map[string]any)
		require.True(t, ok)
		assert.NotEmpty(t, data["token"])
	})

	t.Run("wrong password and unknown user share a message", func(t *testing.T) {
		userRepo := withAccount(&models.User{
			ID: 1, Username: "li_bai", Password: string(hash), Status: models.StatusActive,
		})
		_, app := newTestServer(userRepo, newStubPoemRepo(), newStubCommentRepo())

		respWrong, envWrong := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": "li_bai", "password": "WrongPass1",
		})
		respUnknown, envUnknown := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": "nobody", "password": "Moonlight1",
		})

		assert.Equal(t, http.StatusUnauthorized, respWrong.StatusCode)
		assert.Equal(t, http.StatusUnauthorized, respUnknown.StatusCode)
		assert.Equal(t, envWrong.Message, envUnknown.Message)
	})

	t.Run("banned account cannot log in", func(t *testing.T) {
		reason := "spam"
		userRepo := withAccount(&models.User{
			ID: 1, Username: "li_bai", Password: string(hash),
			Status: models.StatusBanned, BanReason: &reason,
		})
		_, app := newTestServer(userRepo, newStubPoemRepo(), newStubCommentRepo())
		resp, env := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": "li_bai", "password": "Moonlight1",
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Contains(t, env.Message, "spam")
	})
}
