package service

import (
	"context"
	"errors"

	"poetryclub/internal/models"
	"poetryclub/internal/repository"
)

const maxCommentLen = 2000

type CommentService struct {
	commentRepo repository.CommentRepository
	poemRepo    repository.PoemRepository
	userRepo    repository.UserRepository
}

type CreateCommentInput struct {
	UserID   uint
	PoemID   uint
	ParentID *uint
	Content  string
}

type DeleteCommentInput struct {
	CallerID   uint
	CallerRole models.Role
	CommentID  uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	poemRepo repository.PoemRepository,
	userRepo repository.UserRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		poemRepo:    poemRepo,
		userRepo:    userRepo,
	}
}

// CreateComment posts a comment or a threaded reply. Each referenced record
// is checked separately so a missing poem, user and parent comment produce
// distinguishable messages.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 2000 characters)")
	}

	exists, err := s.poemRepo.Exists(ctx, in.PoemID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundMessageError("Poem not found")
	}

	if _, err := s.userRepo.GetByID(ctx, in.UserID); err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			var appErr *models.AppError
			if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
				return nil, models.NewNotFoundMessageError("Parent comment not found")
			}
			return nil, err
		}
		if parent.PoemID != in.PoemID {
			return nil, models.NewValidationError("Parent comment belongs to a different poem")
		}
	}

	comment := &models.Comment{
		Content:  in.Content,
		UserID:   in.UserID,
		PoemID:   in.PoemID,
		ParentID: in.ParentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListPoemComments returns a poem's top-level comments with reply counts.
func (s *CommentService) ListPoemComments(ctx context.Context, poemID uint, limit, offset int) ([]*models.Comment, int64, error) {
	exists, err := s.poemRepo.Exists(ctx, poemID)
	if err != nil {
		return nil, 0, err
	}
	if !exists {
		return nil, 0, models.NewNotFoundMessageError("Poem not found")
	}
	return s.commentRepo.ListByPoem(ctx, poemID, limit, offset)
}

// ListComments pages comments across poems with optional poem/user filters.
func (s *CommentService) ListComments(ctx context.Context, opts repository.CommentListOptions) ([]*models.Comment, int64, error) {
	return s.commentRepo.List(ctx, opts)
}

// ListReplies returns the thread under a comment, oldest first.
func (s *CommentService) ListReplies(ctx context.Context, parentID uint) ([]*models.Comment, error) {
	if _, err := s.commentRepo.GetByID(ctx, parentID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListReplies(ctx, parentID)
}

// DeleteComment removes a comment. Owner or admin only.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}

	if !CanDeleteComment(in.CallerID, in.CallerRole, comment.UserID) {
		return nil, models.NewForbiddenError("You can only delete your own comments")
	}

	if err := s.commentRepo.Delete(ctx, in.CommentID); err != nil {
		return nil, err
	}
	return comment, nil
}
