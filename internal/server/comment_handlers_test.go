package server

import (
	"context"
	"net/http"
	"testing"

	"poetryclub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCommentEndpoint(t *testing.T) {
	reader := activeUser(2, models.RoleUser)

	t.Run("posts a comment", func(t *testing.T) {
		commentRepo := newStubCommentRepo()
		commentRepo.createFn = func(_ context.Context, c *models.Comment) error {
			c.ID = 9
			return nil
		}
		commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PoemID: 1, UserID: 2, Content: "vivid"}, nil
		}
		s, app := newTestServer(newStubUserRepo(reader), newStubPoemRepo(), commentRepo)
		resp, env := doJSON(t, app, http.MethodPost, "/api/comments", bearerFor(t, s, reader), map[string]any{
			"poemId":  1,
			"content": "vivid",
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		data, ok := env.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "vivid", data["content"])
	})

	t.Run("missing poem is a distinguishable 404", func(t *testing.T) {
		poemRepo := newStubPoemRepo()
		poemRepo.existsFn = func(_ context.Context, _ uint) (bool, error) { return false, nil }
		s, app := newTestServer(newStubUserRepo(reader), poemRepo, newStubCommentRepo())
		resp, env := doJSON(t, app, http.MethodPost, "/api/comments", bearerFor(t, s, reader), map[string]any{
			"poemId":  99,
			"content": "vivid",
		})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Poem not found", env.Message)
	})

	t.Run("missing parent is a distinguishable 404", func(t *testing.T) {
		commentRepo := newStubCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		s, app := newTestServer(newStubUserRepo(reader), newStubPoemRepo(), commentRepo)
		resp, env := doJSON(t, app, http.MethodPost, "/api/comments", bearerFor(t, s, reader), map[string]any{
			"poemId":   1,
			"parentId": 55,
			"content":  "reply",
		})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Parent comment not found", env.Message)
	})

	t.Run("empty content fails request validation", func(t *testing.T) {
		s, app := newTestServer(newStubUserRepo(reader), newStubPoemRepo(), newStubCommentRepo())
		resp, env := doJSON(t, app, http.MethodPost, "/api/comments", bearerFor(t, s, reader), map[string]any{
			"poemId": 1,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, env.Fields, "content")
	})
}

func TestDeleteCommentEndpoint(t *testing.T) {
	owner := activeUser(2, models.RoleUser)
	stranger := activeUser(5, models.RoleUser)
	admin := activeUser(3, models.RoleAdmin)

	ownedComment := func() *stubCommentRepo {
		commentRepo := newStubCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PoemID: 1, UserID: 2}, nil
		}
		return commentRepo
	}

	t.Run("owner deletes own comment", func(t *testing.T) {
		s, app := newTestServer(newStubUserRepo(owner), newStubPoemRepo(), ownedComment())
		resp, _ := doJSON(t, app, http.MethodDelete, "/api/comments/9", bearerFor(t, s, owner), nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("stranger is refused", func(t *testing.T) {
		s, app := newTestServer(newStubUserRepo(stranger), newStubPoemRepo(), ownedComment())
		resp, _ := doJSON(t, app, http.MethodDelete, "/api/comments/9", bearerFor(t, s, stranger), nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("admin deletes any comment", func(t *testing.T) {
		s, app := newTestServer(newStubUserRepo(admin), newStubPoemRepo(), ownedComment())
		resp, _ := doJSON(t, app, http.MethodDelete, "/api/comments/9", bearerFor(t, s, admin), nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestListCommentsEndpoints(t *testing.T) {
	t.Run("poem thread listing is public", func(t *testing.T) {
		commentRepo := newStubCommentRepo()
		commentRepo.listByPoemFn = func(_ context.Context, poemID uint, _, _ int) ([]*models.Comment, int64, error) {
			return []*models.Comment{{ID: 1, PoemID: poemID, ReplyCount: 2}}, 1, nil
		}
		_, app := newTestServer(newStubUserRepo(), newStubPoemRepo(), commentRepo)
		resp, env := doJSON(t, app, http.MethodGet, "/api/poems/1/comments", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, env.Success)
	})

	t.Run("replies listing is public", func(t *testing.T) {
		commentRepo := newStubCommentRepo()
		commentRepo.listRepliesFn = func(_ context.Context, parentID uint) ([]*models.Comment, error) {
			return []*models.Comment{{ID: 10, ParentID: &parentID}}, nil
		}
		_, app := newTestServer(newStubUserRepo(), newStubPoemRepo(), commentRepo)
		resp, _ := doJSON(t, app, http.MethodGet, "/api/comments/1/replies", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
