package service

import (
	"context"
	"strings"
	"testing"

	"poetryclub/internal/models"
	"poetryclub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn      func(context.Context, *models.Comment) error
	getByIDFn     func(context.Context, uint) (*models.Comment, error)
	listByPoemFn  func(context.Context, uint, int, int) ([]*models.Comment, int64, error)
	listFn        func(context.Context, repository.CommentListOptions) ([]*models.Comment, int64, error)
	listRepliesFn func(context.Context, uint) ([]*models.Comment, error)
	deleteFn      func(context.Context, uint) error
	existsFn      func(context.Context, uint) (bool, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPoem(ctx context.Context, poemID uint, limit, offset int) ([]*models.Comment, int64, error) {
	return s.listByPoemFn(ctx, poemID, limit, offset)
}
func (s *commentRepoStub) List(ctx context.Context, opts repository.CommentListOptions) ([]*models.Comment, int64, error) {
	return s.listFn(ctx, opts)
}
func (s *commentRepoStub) ListReplies(ctx context.Context, parentID uint) ([]*models.Comment, error) {
	return s.listRepliesFn(ctx, parentID)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *commentRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PoemID: 1}, nil
		},
		listByPoemFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Comment, int64, error) {
			return nil, 0, nil
		},
		listFn: func(_ context.Context, _ repository.CommentListOptions) ([]*models.Comment, int64, error) {
			return nil, 0, nil
		},
		listRepliesFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		deleteFn:      func(_ context.Context, _ uint) error { return nil },
		existsFn:      func(_ context.Context, _ uint) (bool, error) { return true, nil },
	}
}

func TestCommentService_CreateComment_Validation(t *testing.T) {
	t.Parallel()

	svc := NewCommentService(noopCommentRepo(), noopPoemRepo(), noopUserRepo())
	ctx := context.Background()

	t.Run("empty content", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateComment(ctx, CreateCommentInput{UserID: 1, PoemID: 1})
		assertValidationError(t, err)
	})

	t.Run("content too long", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateComment(ctx, CreateCommentInput{
			UserID:  1,
			PoemID:  1,
			Content: strings.Repeat("x", maxCommentLen+1),
		})
		assertValidationError(t, err)
	})
}

func TestCommentService_CreateComment_ExistenceChecks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("missing poem", func(t *testing.T) {
		t.Parallel()
		poemRepo := noopPoemRepo()
		poemRepo.existsFn = func(_ context.Context, _ uint) (bool, error) { return false, nil }
		svc := NewCommentService(noopCommentRepo(), poemRepo, noopUserRepo())
		_, err := svc.CreateComment(ctx, CreateCommentInput{UserID: 1, PoemID: 99, Content: "nice"})
		assertNotFoundError(t, err)
		assert.Contains(t, err.Error(), "Poem not found")
	})

	t.Run("missing user", func(t *testing.T) {
		t.Parallel()
		userRepo := noopUserRepo()
		userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return nil, models.NewNotFoundError("User", id)
		}
		svc := NewCommentService(noopCommentRepo(), noopPoemRepo(), userRepo)
		_, err := svc.CreateComment(ctx, CreateCommentInput{UserID: 99, PoemID: 1, Content: "nice"})
		assertNotFoundError(t, err)
		assert.Contains(t, err.Error(), "User")
	})

	t.Run("missing parent comment", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		parentID := uint(55)
		svc := NewCommentService(commentRepo, noopPoemRepo(), noopUserRepo())
		_, err := svc.CreateComment(ctx, CreateCommentInput{UserID: 1, PoemID: 1, ParentID: &parentID, Content: "reply"})
		assertNotFoundError(t, err)
		assert.Contains(t, err.Error(), "Parent comment not found")
	})

	t.Run("parent on a different poem", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PoemID: 2}, nil
		}
		parentID := uint(55)
		svc := NewCommentService(commentRepo, noopPoemRepo(), noopUserRepo())
		_, err := svc.CreateComment(ctx, CreateCommentInput{UserID: 1, PoemID: 1, ParentID: &parentID, Content: "reply"})
		assertValidationError(t, err)
	})
}

func TestCommentService_CreateComment_Success(t *testing.T) {
	t.Parallel()

	commentRepo := noopCommentRepo()
	commentRepo.createFn = func(_ context.Context, c *models.Comment) error {
		c.ID = 42
		return nil
	}
	commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, Content: "lovely imagery", UserID: 1, PoemID: 1}, nil
	}

	svc := NewCommentService(commentRepo, noopPoemRepo(), noopUserRepo())
	comment, err := svc.CreateComment(context.Background(), CreateCommentInput{
		UserID:  1,
		PoemID:  1,
		Content: "lovely imagery",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(42), comment.ID)
	assert.Equal(t, "lovely imagery", comment.Content)
}

func TestCommentService_ListPoemComments(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("missing poem", func(t *testing.T) {
		t.Parallel()
		poemRepo := noopPoemRepo()
		poemRepo.existsFn = func(_ context.Context, _ uint) (bool, error) { return false, nil }
		svc := NewCommentService(noopCommentRepo(), poemRepo, noopUserRepo())
		_, _, err := svc.ListPoemComments(ctx, 99, 20, 0)
		assertNotFoundError(t, err)
	})

	t.Run("returns comments and total", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.listByPoemFn = func(_ context.Context, _ uint, _, _ int) ([]*models.Comment, int64, error) {
			return []*models.Comment{{ID: 1}, {ID: 2}}, 7, nil
		}
		svc := NewCommentService(commentRepo, noopPoemRepo(), noopUserRepo())
		comments, total, err := svc.ListPoemComments(ctx, 1, 2, 0)
		require.NoError(t, err)
		assert.Len(t, comments, 2)
		assert.Equal(t, int64(7), total)
	})
}

func TestCommentService_DeleteComment_Ownership(t *testing.T) {
	t.Parallel()

	makeRepo := func(ownerID uint) *commentRepoStub {
		repo := noopCommentRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, UserID: ownerID}, nil
		}
		return repo
	}
	ctx := context.Background()

	t.Run("owner can delete", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(makeRepo(1), noopPoemRepo(), noopUserRepo())
		comment, err := svc.DeleteComment(ctx, DeleteCommentInput{CallerID: 1, CallerRole: models.RoleUser, CommentID: 1})
		require.NoError(t, err)
		assert.Equal(t, uint(1), comment.ID)
	})

	t.Run("stranger is refused", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(makeRepo(10), noopPoemRepo(), noopUserRepo())
		_, err := svc.DeleteComment(ctx, DeleteCommentInput{CallerID: 1, CallerRole: models.RoleUser, CommentID: 1})
		assertForbiddenError(t, err)
	})

	t.Run("admin can delete another user's comment", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(makeRepo(10), noopPoemRepo(), noopUserRepo())
		comment, err := svc.DeleteComment(ctx, DeleteCommentInput{CallerID: 1, CallerRole: models.RoleAdmin, CommentID: 1})
		require.NoError(t, err)
		assert.Equal(t, uint(1), comment.ID)
	})
}
