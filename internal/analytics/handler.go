package analytics

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-webinar/certdesk/internal/gateway"
	"github.com/aura-webinar/certdesk/internal/httperr"
	"github.com/aura-webinar/certdesk/pkg/response"
)

// Handler handles GET /seminars/:id/summary.
type Handler struct {
	api    gateway.Service
	logger *zap.Logger
}

// NewHandler creates an analytics handler.
func NewHandler(api gateway.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{api: api, logger: logger}
}

// SummaryResponse adds the completion rate to the raw counts.
type SummaryResponse struct {
	SeminarID       string  `json:"seminar_id"`
	TotalRegistered int     `json:"total_registered"`
	TotalCompleted  int     `json:"total_completed"`
	TotalPending    int     `json:"total_pending"`
	CompletionRate  float64 `json:"completion_rate"`
}

// GetBySeminar handles GET /seminars/:id/summary. The seminar must exist.
func (h *Handler) GetBySeminar(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.api.GetSeminar(ctx, id).Wait(ctx); err != nil {
		httperr.Write(c, h.logger, err)
		return
	}
	sum, err := h.api.Summary(ctx, id).Wait(ctx)
	if err != nil {
		httperr.Write(c, h.logger, err)
		return
	}
	resp := SummaryResponse{
		SeminarID:       sum.SeminarID,
		TotalRegistered: sum.TotalRegistered,
		TotalCompleted:  sum.TotalCompleted,
		TotalPending:    sum.TotalPending,
	}
	if sum.TotalRegistered > 0 {
		resp.CompletionRate = float64(sum.TotalCompleted) / float64(sum.TotalRegistered)
	}
	response.OK(c, resp)
}
