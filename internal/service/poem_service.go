package service

import (
	"context"

	"poetryclub/internal/middleware"
	"poetryclub/internal/models"
	"poetryclub/internal/repository"
)

const (
	maxTitleLen   = 200
	maxContentLen = 20000
)

type PoemService struct {
	poemRepo repository.PoemRepository
}

type CreatePoemInput struct {
	AuthorID uint
	Title    string
	Content  string
	IsDraft  bool
}

type UpdatePoemInput struct {
	CallerID   uint
	CallerRole models.Role
	PoemID     uint
	Title      *string
	Content    *string
	IsDraft    *bool
}

type DeletePoemInput struct {
	CallerID   uint
	CallerRole models.Role
	PoemID     uint
}

type ReviewPoemInput struct {
	PoemID          uint
	ReviewerID      uint
	Decision        ReviewDecision
	RejectionReason string
}

type ListUserPoemsInput struct {
	CallerID   uint
	CallerRole models.Role
	OwnerID    uint
	Limit      int
	Offset     int
}

func NewPoemService(poemRepo repository.PoemRepository) *PoemService {
	return &PoemService{poemRepo: poemRepo}
}

// CreatePoem submits a poem. Every new poem enters the moderation queue in
// Pending regardless of what the client sends.
func (s *PoemService) CreatePoem(ctx context.Context, in CreatePoemInput) (*models.Poem, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 200 characters)")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 20000 characters)")
	}

	poem := &models.Poem{
		Title:    in.Title,
		Content:  in.Content,
		AuthorID: in.AuthorID,
		IsDraft:  in.IsDraft,
		Status:   models.PoemPending,
	}
	if err := s.poemRepo.Create(ctx, poem); err != nil {
		return nil, err
	}
	return s.poemRepo.GetByID(ctx, poem.ID, in.AuthorID)
}

// GetPoem returns the poem when it is publicly visible or the caller is
// allowed to see hidden work. Hidden poems are reported as absent rather
// than forbidden so their existence does not leak.
func (s *PoemService) GetPoem(ctx context.Context, id uint, callerID uint, callerRole models.Role) (*models.Poem, error) {
	poem, err := s.poemRepo.GetByID(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	if !PubliclyVisible(poem) && !CanViewHiddenPoem(callerID, callerRole, poem.AuthorID) {
		return nil, models.NewNotFoundError("Poem", id)
	}
	return poem, nil
}

// ListPoems returns the public feed: approved, non-draft poems only.
func (s *PoemService) ListPoems(ctx context.Context, opts repository.PoemListOptions) ([]*models.Poem, int64, error) {
	return s.poemRepo.ListPublic(ctx, opts)
}

// ListUserPoems lists an author's poems including drafts and unreviewed
// work, which is why it is gated to the author themselves or an admin.
func (s *PoemService) ListUserPoems(ctx context.Context, in ListUserPoemsInput) ([]*models.Poem, int64, error) {
	if !CanListUserPoems(in.CallerID, in.CallerRole, in.OwnerID) {
		return nil, 0, models.NewForbiddenError("You can only list your own poems")
	}
	opts := repository.PoemListOptions{
		Limit:         in.Limit,
		Offset:        in.Offset,
		CurrentUserID: in.CallerID,
	}
	return s.poemRepo.ListByAuthor(ctx, in.OwnerID, opts, true)
}

// ListModerationQueue lists non-draft poems in the given status, oldest
// first. Admin-only via the route allow-set.
func (s *PoemService) ListModerationQueue(ctx context.Context, status models.PoemStatus, limit, offset int) ([]*models.Poem, int64, error) {
	if !status.Valid() {
		return nil, 0, models.NewValidationError("Invalid status filter")
	}
	return s.poemRepo.ListByStatus(ctx, status, limit, offset)
}

// UpdatePoem edits a poem. Only the author may edit; a content change sends
// the poem back to Pending while title or draft-flag edits keep the current
// verdict.
func (s *PoemService) UpdatePoem(ctx context.Context, in UpdatePoemInput) (*models.Poem, error) {
	poem, err := s.poemRepo.GetByID(ctx, in.PoemID, in.CallerID)
	if err != nil {
		return nil, err
	}

	if !CanMutatePoem(in.CallerID, poem.AuthorID) {
		return nil, models.NewForbiddenError("You can only update your own poems")
	}

	contentChanged := false
	if in.Title != nil {
		if *in.Title == "" {
			return nil, models.NewValidationError("Title is required")
		}
		if len(*in.Title) > maxTitleLen {
			return nil, models.NewValidationError("Title too long (max 200 characters)")
		}
		poem.Title = *in.Title
	}
	if in.Content != nil {
		if *in.Content == "" {
			return nil, models.NewValidationError("Content is required")
		}
		if len(*in.Content) > maxContentLen {
			return nil, models.NewValidationError("Content too long (max 20000 characters)")
		}
		if *in.Content != poem.Content {
			contentChanged = true
			poem.Content = *in.Content
		}
	}
	if in.IsDraft != nil {
		poem.IsDraft = *in.IsDraft
	}

	poem.Status = NextStatusOnEdit(poem.Status, contentChanged)
	if contentChanged {
		poem.RejectionReason = nil
	}

	if err := s.poemRepo.Update(ctx, poem); err != nil {
		return nil, err
	}
	return s.poemRepo.GetByID(ctx, poem.ID, in.CallerID)
}

// DeletePoem removes a poem. Author only, like UpdatePoem.
func (s *PoemService) DeletePoem(ctx context.Context, in DeletePoemInput) error {
	poem, err := s.poemRepo.GetByID(ctx, in.PoemID, in.CallerID)
	if err != nil {
		return err
	}
	if !CanMutatePoem(in.CallerID, poem.AuthorID) {
		return models.NewForbiddenError("You can only delete your own poems")
	}
	return s.poemRepo.Delete(ctx, in.PoemID)
}

// ReviewPoem applies an admin decision. Drafts never enter review.
// Re-reviewing an already decided poem rewrites the decided state.
func (s *PoemService) ReviewPoem(ctx context.Context, in ReviewPoemInput) (*models.Poem, error) {
	// Scope the read to the reviewer so it skips the shared anonymous cache
	// entry; a review must act on the current row, never a TTL-stale copy.
	poem, err := s.poemRepo.GetByID(ctx, in.PoemID, in.ReviewerID)
	if err != nil {
		return nil, err
	}
	if poem.IsDraft {
		return nil, models.NewValidationError("Drafts cannot be reviewed")
	}

	if err := ApplyReview(poem, in.Decision, in.RejectionReason); err != nil {
		return nil, err
	}

	if err := s.poemRepo.Update(ctx, poem); err != nil {
		return nil, err
	}
	middleware.ModerationDecisions.WithLabelValues(string(in.Decision)).Inc()
	return poem, nil
}

// LikePoem records a like on a visible poem. Liking twice is a conflict;
// the unique index catches the concurrent duplicate and the insert reports
// it as zero rows.
func (s *PoemService) LikePoem(ctx context.Context, userID, poemID uint) error {
	poem, err := s.poemRepo.GetByID(ctx, poemID, 0)
	if err != nil {
		return err
	}
	if !PubliclyVisible(poem) {
		return models.NewNotFoundError("Poem", poemID)
	}

	created, err := s.poemRepo.Like(ctx, userID, poemID)
	if err != nil {
		return err
	}
	if !created {
		return models.NewConflictError("Poem already liked")
	}
	return nil
}

// UnlikePoem removes a like. Removing an absent like is a conflict.
func (s *PoemService) UnlikePoem(ctx context.Context, userID, poemID uint) error {
	if _, err := s.poemRepo.GetByID(ctx, poemID, 0); err != nil {
		return err
	}

	removed, err := s.poemRepo.Unlike(ctx, userID, poemID)
	if err != nil {
		return err
	}
	if !removed {
		return models.NewConflictError("Poem not liked yet")
	}
	return nil
}
