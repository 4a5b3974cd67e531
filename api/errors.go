package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Domenick1991/transfers/internal/domain"
	"github.com/gin-gonic/gin"
)

type conflictBody struct {
	Resource   string   `json:"resource"`
	ResourceID int64    `json:"resource_id"`
	BookingID  string   `json:"booking_id"`
	Windows    []string `json:"windows"`
}

// writeError maps service errors onto status codes. Anything unrecognised
// is a storage or broker failure and is hidden behind a 500.
func writeError(c *gin.Context, err error) {
	if conflict, ok := domain.AsConflict(err); ok {
		c.JSON(http.StatusConflict, gin.H{
			"error": conflict.Error(),
			"conflict": conflictBody{
				Resource:   string(conflict.Resource),
				ResourceID: conflict.ResourceID,
				BookingID:  conflict.BookingID,
				Windows:    conflict.Windows,
			},
		})
		return
	}

	var verr domain.ValidationError
	switch {
	case errors.As(err, &verr):
		body := gin.H{"error": verr.Error()}
		if verr.Field != "" {
			body["field"] = verr.Field
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, domain.ErrTerminalStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrResourceBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		slog.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.FullPath()),
			slog.String("request_id", requestID(c)),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
