package attendees

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-webinar/certdesk/internal/gateway"
	"github.com/aura-webinar/certdesk/internal/httperr"
	"github.com/aura-webinar/certdesk/internal/models"
	"github.com/aura-webinar/certdesk/pkg/response"
)

// SendFailedMessage is returned when a bulk certificate send fails.
const SendFailedMessage = "An error occurred while sending certificates."

// StatusRequest is the body for PATCH /attendees/:id/status.
type StatusRequest struct {
	Status models.AttendanceStatus `json:"status" binding:"required"`
}

// Handler handles attendee tracking and bulk certificate endpoints.
type Handler struct {
	api    gateway.Service
	logger *zap.Logger
}

// NewHandler creates an attendees handler.
func NewHandler(api gateway.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{api: api, logger: logger}
}

// ListBySeminar handles GET /seminars/:id/attendees. Unknown seminars yield an empty list.
func (h *Handler) ListBySeminar(c *gin.Context) {
	ctx := c.Request.Context()
	list, err := h.api.ListAttendees(ctx, c.Param("id")).Wait(ctx)
	if err != nil {
		httperr.Write(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /attendees/:id.
func (h *Handler) GetByID(c *gin.Context) {
	ctx := c.Request.Context()
	a, err := h.api.GetAttendee(ctx, c.Param("id")).Wait(ctx)
	if err != nil {
		httperr.Write(c, h.logger, err)
		return
	}
	response.OK(c, a)
}

// UpdateStatus handles PATCH /attendees/:id/status.
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "status is required")
		return
	}
	ctx := c.Request.Context()
	a, err := h.api.SetAttendeeStatus(ctx, c.Param("id"), req.Status).Wait(ctx)
	if err != nil {
		httperr.Write(c, h.logger, err)
		return
	}
	h.logger.Info("attendee status changed", zap.String("attendee_id", a.ID), zap.String("status", string(a.Status)))
	response.OK(c, a)
}

// SendCertificates handles POST /seminars/:id/certificates/send. A seminar with no
// completed attendees still answers 200 with success=false in the result.
func (h *Handler) SendCertificates(c *gin.Context) {
	ctx := c.Request.Context()
	seminarID := c.Param("id")
	res, err := h.api.SendBulkCertificates(ctx, seminarID).Wait(ctx)
	if err != nil {
		h.logger.Error("bulk certificate send failed", zap.String("seminar_id", seminarID), zap.Error(err))
		httperr.WriteOr(c, h.logger, err, SendFailedMessage)
		return
	}
	response.OK(c, res)
}
