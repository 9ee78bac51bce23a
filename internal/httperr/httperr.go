// Package httperr maps store and gateway failures onto response envelopes.
package httperr

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-webinar/certdesk/internal/store"
	"github.com/aura-webinar/certdesk/pkg/response"
)

// UnknownMessage is the body of a 500 when no better message applies.
const UnknownMessage = "An unknown error occurred"

// Write sends err with the status matching its kind. The message is passed through
// verbatim for validation and not-found errors.
func Write(c *gin.Context, logger *zap.Logger, err error) {
	WriteOr(c, logger, err, UnknownMessage)
}

// WriteOr is Write with a caller-chosen message for the 500 case.
func WriteOr(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrValidation):
		response.BadRequest(c, err.Error())
	case errors.Is(err, store.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		response.ServiceUnavailable(c, "request cancelled before the operation settled")
	default:
		if logger != nil {
			logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		}
		response.Internal(c, fallback)
	}
}
