package certificates

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-webinar/certdesk/internal/gateway"
	"github.com/aura-webinar/certdesk/internal/httperr"
	"github.com/aura-webinar/certdesk/internal/models"
	"github.com/aura-webinar/certdesk/pkg/response"
)

// TemplateSource exposes the current certificate background, if one was generated.
type TemplateSource interface {
	Template() (models.CertificateTemplate, bool)
}

// Handler serves printable certificate data.
type Handler struct {
	api       gateway.Service
	templates TemplateSource
	logger    *zap.Logger
}

// NewHandler creates a certificates handler.
func NewHandler(api gateway.Service, templates TemplateSource, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{api: api, templates: templates, logger: logger}
}

// Get handles GET /attendees/:id/certificate. Only completed attendees get a
// certificate, and only once a background template exists.
func (h *Handler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	a, err := h.api.GetAttendee(ctx, c.Param("id")).Wait(ctx)
	if err != nil {
		httperr.Write(c, h.logger, err)
		return
	}
	if a.Status != models.AttendanceCompleted {
		response.Conflict(c, "attendee has not completed the seminar")
		return
	}
	tpl, ok := h.templates.Template()
	if !ok {
		response.Conflict(c, "Please generate a certificate design to enable printing.")
		return
	}
	sem, err := h.api.GetSeminar(ctx, a.SeminarID).Wait(ctx)
	if err != nil {
		httperr.Write(c, h.logger, err)
		return
	}
	response.OK(c, models.CertificateView{
		AttendeeID:    a.ID,
		AttendeeName:  a.FullName,
		SeminarTitle:  sem.Title,
		SeminarDate:   sem.Date,
		SpeakerName:   sem.Speaker,
		BackgroundURL: tpl.BackgroundURL,
	})
}
