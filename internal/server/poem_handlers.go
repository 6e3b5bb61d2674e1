package server

import (
	"poetryclub/internal/models"
	"poetryclub/internal/repository"
	"poetryclub/internal/service"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
)

type createPoemRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	IsDraft bool   `json:"isDraft"`
}

func (r createPoemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Content, validation.Required, validation.Length(1, 20000)),
	)
}

type updatePoemRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	IsDraft *bool   `json:"isDraft"`
}

func (r updatePoemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.Content, validation.NilOrNotEmpty, validation.Length(1, 20000)),
	)
}

type reviewPoemRequest struct {
	Decision        string `json:"decision"`
	RejectionReason string `json:"rejectionReason"`
}

func (r reviewPoemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Decision, validation.Required,
			validation.In(string(service.DecisionApprove), string(service.DecisionReject))),
		validation.Field(&r.RejectionReason, validation.Length(0, 1000)),
	)
}

// ListPoems handles GET /api/poems, the public feed of approved poems.
func (s *Server) ListPoems(c *fiber.Ctx) error {
	w := parsePageWindow(c)
	callerID, _ := s.optionalCaller(c)

	poems, total, err := s.poemService.ListPoems(c.UserContext(), repository.PoemListOptions{
		Search:        c.Query("search"),
		Sort:          c.Query("sort"),
		Limit:         w.Limit,
		Offset:        w.Offset,
		CurrentUserID: callerID,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondSuccess(c, fiber.StatusOK, "Poems retrieved", listPayload(poems, w, total))
}

// GetPoem handles GET /api/poems/:id. Hidden poems are only visible to their
// author and admins.
func (s *Server) GetPoem(c *fiber.Ctx) error {
	id, appErr := paramID(c, "id", "poem")
	if appErr != nil {
		return models.RespondWithError(c, appErr)
	}

	callerID, callerRole := s.optionalCaller(c)
	poem, err := s.poemService.GetPoem(c.UserContext(), id, callerID, callerRole)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondSuccess(c, fiber.StatusOK, "Poem retrieved", poem)
}

// CreatePoem handles POST /api/poems.
func (s *Server) CreatePoem(c *fiber.Ctx) error {
	var req createPoemRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return models.RespondWithError(c, models.NewRequestValidationError(err))
	}

	callerID, _ := caller(c)
	poem, err := s.poemService.CreatePoem(c.UserContext(), service.CreatePoemInput{
		AuthorID: callerID,
		Title:    req.Title,
		Content:  req.Content,
		IsDraft:  req.IsDraft,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondSuccess(c, fiber.StatusCreated, "Poem submitted for review", poem)
}

// UpdatePoem handles PATCH /api/poems/:id.
func (s *Server) UpdatePoem(c *fiber.Ctx) error {
	id, appErr := paramID(c, "id", "poem")
	if appErr != nil {
		return models.RespondWithError(c, appErr)
	}

	var req updatePoemRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return models.RespondWithError(c, models.NewRequestValidationError(err))
	}

	callerID, callerRole := caller(c)
	poem, err := s.poemService.UpdatePoem(c.UserContext(), service.UpdatePoemInput{
		CallerID:   callerID,
		CallerRole: callerRole,
		PoemID:     id,
		Title:      req.Title,
		Content:    req.Content,
		IsDraft:    req.IsDraft,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondSuccess(c, fiber.StatusOK, "Poem updated", poem)
}

// DeletePoem handles DELETE /api/poems/:id.
func (s *Server) DeletePoem(c *fiber.Ctx) error {
	id, appErr := paramID(c, "id", "poem")
	if appErr != nil {
		return models.RespondWithError(c, appErr)
	}

	callerID, callerRole := caller(c)
	if err := s.poemService.DeletePoem(c.UserContext(), service.DeletePoemInput{
		CallerID:   callerID,
		CallerRole: callerRole,
		PoemID:     id,
	}); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondSuccess(c, fiber.StatusOK, "Poem deleted", nil)
}

// ListUserPoems handles GET /api/poems/user/:userId, the author's own view
// including drafts and unreviewed poems.
func (s *Server) ListUserPoems(c *fiber.Ctx) error {
	ownerID, appErr := paramID(c, "userId", "user")
	if appErr != nil {
		return models.RespondWithError(c, appErr)
	}

	w := parsePageWindow(c)
	callerID, callerRole := caller(c)
	poems, total, err := s.poemService.ListUserPoems(c.UserContext(), service.ListUserPoemsInput{
		CallerID:   callerID,
		CallerRole: callerRole,
		OwnerID:    ownerID,
		Limit:      w.Limit,
		Offset:     w.Offset,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondSuccess(c, fiber.StatusOK, "Poems retrieved", listPayload(poems, w, total))
}

// ListReviewQueue handles GET /api/poems/review-queue for admins. Defaults to
// the pending queue, oldest first.
func (s *Server) ListReviewQueue(c *fiber.Ctx) error {
	w := parsePageWindow(c)
	status := models.PoemStatus(c.Query("status", string(models.PoemPending)))

	poems, total, err := s.poemService.ListModerationQueue(c.UserContext(), status, w.Limit, w.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondSuccess(c, fiber.StatusOK, "Review queue retrieved", listPayload(poems, w, total))
}

// ReviewPoem handles POST /api/poems/:id/review for admins.
func (s *Server) ReviewPoem(c *fiber.Ctx) error {
	id, appErr := paramID(c, "id", "poem")
	if appErr != nil {
		return models.RespondWithError(c, appErr)
	}

	var req reviewPoemRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return models.RespondWithError(c, models.NewRequestValidationError(err))
	}

	reviewerID, _ := caller(c)
	poem, err := s.poemService.ReviewPoem(c.UserContext(), service.ReviewPoemInput{
		PoemID:          id,
		ReviewerID:      reviewerID,
		Decision:        service.ReviewDecision(req.Decision),
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondSuccess(c, fiber.StatusOK, "Poem reviewed", poem)
}

// LikePoem handles POST /api/poems/:id/like.
func (s *Server) LikePoem(c *fiber.Ctx) error {
	id, appErr := paramID(c, "id", "poem")
	if appErr != nil {
		return models.RespondWithError(c, appErr)
	}

	callerID, _ := caller(c)
	if err := s.poemService.LikePoem(c.UserContext(), callerID, id); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondSuccess(c, fiber.StatusCreated, "Poem liked", nil)
}

// UnlikePoem handles DELETE /api/poems/:id/like.
func (s *Server) UnlikePoem(c *fiber.Ctx) error {
	id, appErr := paramID(c, "id", "poem")
	if appErr != nil {
		return models.RespondWithError(c, appErr)
	}

	callerID, _ := caller(c)
	if err := s.poemService.UnlikePoem(c.UserContext(), callerID, id); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondSuccess(c, fiber.StatusOK, "Like removed", nil)
}
