package service

import (
	"context"

	"poetryclub/internal/models"
	"poetryclub/internal/repository"
	"poetryclub/internal/validation"
)

const maxBioLen = 500

type UserService struct {
	userRepo repository.UserRepository
}

type UpdateProfileInput struct {
	UserID   uint
	Username *string
	Bio      *string
}

type AdminUpdateUserInput struct {
	UserID    uint
	Role      *models.Role
	Status    *models.UserStatus
	BanReason *string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetUser returns a user's profile with contribution counts. Self or admin.
func (s *UserService) GetUser(ctx context.Context, callerID uint, callerRole models.Role, targetID uint) (*models.User, error) {
	if !CanViewUser(callerID, callerRole, targetID) {
		return nil, models.NewForbiddenError("You can only view your own profile")
	}
	return s.userRepo.GetDetail(ctx, targetID)
}

// GetProfile returns the caller's own profile with counts.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetDetail(ctx, userID)
}

// ListUsers pages all accounts with optional search and role/status filters.
// Admin-only via the route allow-set.
func (s *UserService) ListUsers(ctx context.Context, opts repository.UserListOptions) ([]models.User, int64, error) {
	if opts.Role != "" && !opts.Role.Valid() {
		return nil, 0, models.NewValidationError("Invalid role filter")
	}
	if opts.Status != "" && !opts.Status.Valid() {
		return nil, 0, models.NewValidationError("Invalid status filter")
	}
	return s.userRepo.List(ctx, opts)
}

// UpdateProfile lets a user change their own username and bio.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil && *in.Username != user.Username {
		if err := validation.ValidateUsername(*in.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		existing, err := s.userRepo.GetByUsername(ctx, *in.Username)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, models.NewConflictError("Username already taken")
		}
		user.Username = *in.Username
	}
	if in.Bio != nil {
		if len(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = *in.Bio
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.userRepo.GetDetail(ctx, user.ID)
}

// AdminUpdateUser changes an account's role, status or ban reason. The ban
// reason is kept only while the account is banned.
func (s *UserService) AdminUpdateUser(ctx context.Context, in AdminUpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, models.NewValidationError("Role must be User or Admin")
		}
		user.Role = *in.Role
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, models.NewValidationError("Status must be Active, Locked or Banned")
		}
		user.Status = *in.Status
	}
	if in.BanReason != nil {
		user.BanReason = in.BanReason
	}
	if user.Status != models.StatusBanned {
		user.BanReason = nil
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.userRepo.GetDetail(ctx, user.ID)
}

// DeleteUser removes an account. Refused while the user still owns poems so
// published work is never orphaned silently.
func (s *UserService) DeleteUser(ctx context.Context, userID uint) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}

	count, err := s.userRepo.CountPoemsByAuthor(ctx, userID)
	if err != nil {
		return err
	}
	if count > 0 {
		return models.NewConflictError("User still has poems; delete or reassign them first")
	}

	return s.userRepo.Delete(ctx, userID)
}
