package models

import (
	"errors"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Envelope is the uniform response wrapper applied to every API response.
type Envelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Data       interface{}       `json:"data,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	Error      string            `json:"error,omitempty"`
	StatusCode int               `json:"statusCode,omitempty"`
	Path       string            `json:"path,omitempty"`
	ErrorID    string            `json:"errorId,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
}

// Pagination describes the page window of a list response.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination computes a Pagination from the request window and total count.
func NewPagination(page, limit int, total int64) Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	if pages < 1 {
		pages = 1
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// ListResponse is the data payload shape of all listing endpoints.
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination Pagination  `json:"pagination"`
}

// RespondSuccess writes a success envelope with the given status and payload.
func RespondSuccess(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

// RespondWithError translates an error into the error envelope. AppErrors
// keep their classified status and message; anything unclassified is
// downgraded to a generic internal error so implementation detail never
// leaks to clients. Every failure gets a fresh errorId for log correlation.
func RespondWithError(c *fiber.Ctx, err error) error {
	errorID := uuid.New().String()

	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = NewInternalError(err)
	}

	logServerError(c, appErr, errorID)

	return c.Status(appErr.Status).JSON(Envelope{
		Success:    false,
		Message:    appErr.Message,
		Error:      appErr.Code,
		StatusCode: appErr.Status,
		Path:       c.Path(),
		ErrorID:    errorID,
		Timestamp:  time.Now().UTC(),
		Fields:     appErr.Fields,
	})
}

// logServerError records the failure server-side. The underlying cause and a
// stack trace are only logged for unclassified internal errors, and the stack
// only outside production unless LOG_STACK is set.
func logServerError(c *fiber.Ctx, appErr *AppError, errorID string) {
	attrs := []any{
		slog.String("error_id", errorID),
		slog.String("code", appErr.Code),
		slog.Int("status", appErr.Status),
		slog.String("path", c.Path()),
		slog.String("method", c.Method()),
	}

	if appErr.Code != "INTERNAL_ERROR" {
		slog.WarnContext(c.UserContext(), appErr.Message, attrs...)
		return
	}

	if appErr.Err != nil {
		attrs = append(attrs, slog.String("cause", appErr.Err.Error()))
	}
	if os.Getenv("APP_ENV") != "production" || os.Getenv("LOG_STACK") == "true" {
		attrs = append(attrs, slog.String("stack", string(debug.Stack())))
	}
	slog.ErrorContext(c.UserContext(), appErr.Message, attrs...)
}
