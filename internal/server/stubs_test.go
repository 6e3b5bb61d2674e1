package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"poetryclub/internal/config"
	"poetryclub/internal/featureflags"
	"poetryclub/internal/models"
	"poetryclub/internal/repository"
	"poetryclub/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// stubUserRepo is a function-field stub for repository.UserRepository.
type stubUserRepo struct {
	getByIDFn            func(context.Context, uint) (*models.User, error)
	getDetailFn          func(context.Context, uint) (*models.User, error)
	getByEmailFn         func(context.Context, string) (*models.User, error)
	getByUsernameFn      func(context.Context, string) (*models.User, error)
	createFn             func(context.Context, *models.User) error
	updateFn             func(context.Context, *models.User) error
	deleteFn             func(context.Context, uint) error
	listFn               func(context.Context, repository.UserListOptions) ([]models.User, int64, error)
	countPoemsByAuthorFn func(context.Context, uint) (int64, error)
}

func (s *stubUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *stubUserRepo) GetDetail(ctx context.Context, id uint) (*models.User, error) {
	return s.getDetailFn(ctx, id)
}
func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *stubUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *stubUserRepo) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *stubUserRepo) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *stubUserRepo) List(ctx context.Context, opts repository.UserListOptions) ([]models.User, int64, error) {
	return s.listFn(ctx, opts)
}
func (s *stubUserRepo) CountPoemsByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return s.countPoemsByAuthorFn(ctx, authorID)
}

// newStubUserRepo returns a stub whose GetByID serves the given accounts,
// keyed by ID. Other methods default to harmless no-ops.
func newStubUserRepo(accounts ...*models.User) *stubUserRepo {
	byID := make(map[uint]*models.User, len(accounts))
	for _, u := range accounts {
		byID[u.ID] = u
	}
	lookup := func(_ context.Context, id uint) (*models.User, error) {
		if u, ok := byID[id]; ok {
			cp := *u
			return &cp, nil
		}
		return nil, models.NewNotFoundError("User", id)
	}
	return &stubUserRepo{
		getByIDFn:       lookup,
		getDetailFn:     lookup,
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		updateFn:        func(_ context.Context, _ *models.User) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
		listFn: func(_ context.Context, _ repository.UserListOptions) ([]models.User, int64, error) {
			return nil, 0, nil
		},
		countPoemsByAuthorFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// stubPoemRepo is a function-field stub for repository.PoemRepository.
type stubPoemRepo struct {
	createFn       func(context.Context, *models.Poem) error
	getByIDFn      func(context.Context, uint, uint) (*models.Poem, error)
	listPublicFn   func(context.Context, repository.PoemListOptions) ([]*models.Poem, int64, error)
	listByAuthorFn func(context.Context, uint, repository.PoemListOptions, bool) ([]*models.Poem, int64, error)
	listByStatusFn func(context.Context, models.PoemStatus, int, int) ([]*models.Poem, int64, error)
	updateFn       func(context.Context, *models.Poem) error
	deleteFn       func(context.Context, uint) error
	existsFn       func(context.Context, uint) (bool, error)
	isLikedFn      func(context.Context, uint, uint) (bool, error)
	likeFn         func(context.Context, uint, uint) (bool, error)
	unlikeFn       func(context.Context, uint, uint) (bool, error)
}

func (s *stubPoemRepo) Create(ctx context.Context, poem *models.Poem) error {
	return s.createFn(ctx, poem)
}
func (s *stubPoemRepo) GetByID(ctx context.Context, id, currentUserID uint) (*models.Poem, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *stubPoemRepo) ListPublic(ctx context.Context, opts repository.PoemListOptions) ([]*models.Poem, int64, error) {
	return s.listPublicFn(ctx, opts)
}
func (s *stubPoemRepo) ListByAuthor(ctx context.Context, authorID uint, opts repository.PoemListOptions, includeDrafts bool) ([]*models.Poem, int64, error) {
	return s.listByAuthorFn(ctx, authorID, opts, includeDrafts)
}
func (s *stubPoemRepo) ListByStatus(ctx context.Context, status models.PoemStatus, limit, offset int) ([]*models.Poem, int64, error) {
	return s.listByStatusFn(ctx, status, limit, offset)
}
func (s *stubPoemRepo) Update(ctx context.Context, poem *models.Poem) error {
	return s.updateFn(ctx, poem)
}
func (s *stubPoemRepo) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *stubPoemRepo) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *stubPoemRepo) IsLiked(ctx context.Context, userID, poemID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, poemID)
}
func (s *stubPoemRepo) Like(ctx context.Context, userID, poemID uint) (bool, error) {
	return s.likeFn(ctx, userID, poemID)
}
func (s *stubPoemRepo) Unlike(ctx context.Context, userID, poemID uint) (bool, error) {
	return s.unlikeFn(ctx, userID, poemID)
}

func newStubPoemRepo() *stubPoemRepo {
	return &stubPoemRepo{
		createFn: func(_ context.Context, _ *models.Poem) error { return nil },
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Poem, error) {
			return &models.Poem{ID: id, AuthorID: 1, Status: models.PoemApproved}, nil
		},
		listPublicFn: func(_ context.Context, _ repository.PoemListOptions) ([]*models.Poem, int64, error) {
			return nil, 0, nil
		},
		listByAuthorFn: func(_ context.Context, _ uint, _ repository.PoemListOptions, _ bool) ([]*models.Poem, int64, error) {
			return nil, 0, nil
		},
		listByStatusFn: func(_ context.Context, _ models.PoemStatus, _, _ int) ([]*models.Poem, int64, error) {
			return nil, 0, nil
		},
		updateFn:  func(_ context.Context, _ *models.Poem) error { return nil },
		deleteFn:  func(_ context.Context, _ uint) error { return nil },
		existsFn:  func(_ context.Context, _ uint) (bool, error) { return true, nil },
		isLikedFn: func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		likeFn:    func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unlikeFn:  func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
	}
}

// stubCommentRepo is a function-field stub for repository.CommentRepository.
type stubCommentRepo struct {
	createFn      func(context.Context, *models.Comment) error
	getByIDFn     func(context.Context, uint) (*models.Comment, error)
	listByPoemFn  func(context.Context, uint, int, int) ([]*models.Comment, int64, error)
	listFn        func(context.Context, repository.CommentListOptions) ([]*models.Comment, int64, error)
	listRepliesFn func(context.Context, uint) ([]*models.Comment, error)
	deleteFn      func(context.Context, uint) error
	existsFn      func(context.Context, uint) (bool, error)
}

func (s *stubCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *stubCommentRepo) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *stubCommentRepo) ListByPoem(ctx context.Context, poemID uint, limit, offset int) ([]*models.Comment, int64, error) {
	return s.listByPoemFn(ctx, poemID, limit, offset)
}
func (s *stubCommentRepo) List(ctx context.Context, opts repository.CommentListOptions) ([]*models.Comment, int64, error) {
	return s.listFn(ctx, opts)
}
func (s *stubCommentRepo) ListReplies(ctx context.Context, parentID uint) ([]*models.Comment, error) {
	return s.listRepliesFn(ctx, parentID)
}
func (s *stubCommentRepo) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *stubCommentRepo) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}

func newStubCommentRepo() *stubCommentRepo {
	return &stubCommentRepo{
		createFn: func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PoemID: 1, UserID: 1}, nil
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

// newTestServer wires a Server over the given stubs and registers its routes
// on a fresh Fiber app.
func newTestServer(userRepo repository.UserRepository, poemRepo repository.PoemRepository, commentRepo repository.CommentRepository) (*Server, *fiber.App) {
	s := &Server{
		config:      &config.Config{JWTSecret: "test_secret", TokenTTLHours: 1},
		flags:       featureflags.NewManager(""),
		userRepo:    userRepo,
		poemRepo:    poemRepo,
		commentRepo: commentRepo,
	}
	s.authService = service.NewAuthService(userRepo)
	s.poemService = service.NewPoemService(poemRepo)
	s.commentService = service.NewCommentService(commentRepo, poemRepo, userRepo)
	s.userService = service.NewUserService(userRepo)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return models.RespondWithError(c, err)
		},
	})
	s.SetupRoutes(app)
	return s, app
}

// bearerFor issues a token for the account, for use in the Authorization header.
func bearerFor(t *testing.T, s *Server, user *models.User) string {
	t.Helper()
	token, err := s.generateToken(user)
	require.NoError(t, err)
	return "Bearer " + token
}

// doJSON performs a request with an optional JSON body and auth header and
// decodes the envelope.
func doJSON(t *testing.T, app *fiber.App, method, path, auth string, body any) (*http.Response, models.Envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var env models.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}
