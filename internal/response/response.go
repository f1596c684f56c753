package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wanderstay/service-booking/internal/domain"
)

// Envelope is the uniform response body: a success flag, a human-readable
// message, and the payload on success.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// PaginatedEnvelope extends Envelope with pagination metadata.
type PaginatedEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
}

// Success writes a 200 with the payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// SuccessMessage writes a 200 with a message and payload.
func SuccessMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// Created writes a 201 with the payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes a 200 with pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, PaginatedEnvelope{
		Success: true,
		Data:    items,
		Total:   total,
		Page:    page,
		Limit:   limit,
	})
}

// BadRequest writes a 400 with the message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: message})
}

// statusForKind maps domain error kinds to HTTP status codes.
func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation, domain.KindInvalidRange, domain.KindCapacity:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindAuthorization:
		return http.StatusForbidden
	case domain.KindConflict, domain.KindAlreadyCancelled, domain.KindTooLateToCancel,
		domain.KindTerminalState, domain.KindInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error maps a domain error to its HTTP status and writes the failure
// envelope. Unknown errors become opaque 500s.
func Error(c *gin.Context, err error) {
	if kind, ok := domain.KindOf(err); ok {
		c.JSON(statusForKind(kind), Envelope{Success: false, Message: err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, Envelope{Success: false, Message: "internal server error"})
}
