package server

import (
	"poetryclub/internal/models"
	"poetryclub/internal/repository"
	"poetryclub/internal/service"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
)

type createCommentRequest struct {
	PoemID   uint   `json:"poemId"`
	ParentID *uint  `json:"parentId"`
	Content  string `json:"content"`
}

func (r createCommentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PoemID, validation.Required),
		validation.Field(&r.Content, validation.Required, validation.Length(1, 2000)),
	)
}

// CreateComment handles POST /api/comments.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req createCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return models.RespondWithError(c, models.NewRequestValidationError(err))
	}

	callerID, _ := caller(c)
	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:   callerID,
		PoemID:   req.PoemID,
		ParentID: req.ParentID,
		Content:  req.Content,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondSuccess(c, fiber.StatusCreated, "Comment posted", comment)
}

// ListPoemComments handles GET /api/poems/:id/comments, returning a poem's
// top-level comments with reply counts.
func (s *Server) ListPoemComments(c *fiber.Ctx) error {
	poemID, appErr := paramID(c, "id", "poem")
	if appErr != nil {
		return models.RespondWithError(c, appErr)
	}

	w := parsePageWindow(c)
	comments, total, err := s.commentService.ListPoemComments(c.UserContext(), poemID, w.Limit, w.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondSuccess(c, fiber.StatusOK, "Comments retrieved", listPayload(comments, w, total))
}

// ListComments handles GET /api/comments with optional poemId/userId filters.
func (s *Server) ListComments(c *fiber.Ctx) error {
	w := parsePageWindow(c)
	opts := repository.CommentListOptions{
		PoemID: uint(c.QueryInt("poemId", 0)),
		UserID: uint(c.QueryInt("userId", 0)),
		Limit:  w.Limit,
		Offset: w.Offset,
	}

	comments, total, err := s.commentService.ListComments(c.UserContext(), opts)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondSuccess(c, fiber.StatusOK, "Comments retrieved", listPayload(comments, w, total))
}

// ListReplies handles GET /api/comments/:commentId/replies, oldest first.
func (s *Server) ListReplies(c *fiber.Ctx) error {
	parentID, appErr := paramID(c, "commentId", "comment")
	if appErr != nil {
		return models.RespondWithError(c, appErr)
	}

	replies, err := s.commentService.ListReplies(c.UserContext(), parentID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondSuccess(c, fiber.StatusOK, "Replies retrieved", replies)
}

// DeleteComment handles DELETE /api/comments/:commentId. Owner or admin only.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, appErr := paramID(c, "commentId", "comment")
	if appErr != nil {
		return models.RespondWithError(c, appErr)
	}

	callerID, callerRole := caller(c)
	comment, err := s.commentService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		CallerID:   callerID,
		CallerRole: callerRole,
		CommentID:  commentID,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondSuccess(c, fiber.StatusOK, "Comment deleted", comment)
}
