package registrations

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-webinar/certdesk/internal/gateway"
	"github.com/aura-webinar/certdesk/internal/httperr"
	"github.com/aura-webinar/certdesk/internal/models"
	"github.com/aura-webinar/certdesk/pkg/response"
)

// SuccessMessage is shown to the attendee after a successful registration.
const SuccessMessage = "Registration successful! You will receive a confirmation email shortly."

// RegisterRequest is the body for POST /seminars/:id/register and POST /attendees.
// SeminarID is only read from the body on the latter.
type RegisterRequest struct {
	FullName      string `json:"full_name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	ContactNumber string `json:"contact_number" binding:"required"`
	Agency        string `json:"agency" binding:"required"`
	Position      string `json:"position" binding:"required"`
	SeminarID     string `json:"seminar_id"`
}

// RegisterResponse is returned after a registration.
type RegisterResponse struct {
	Attendee models.Attendee `json:"attendee"`
	Message  string          `json:"message"`
}

// Handler handles registration HTTP endpoints.
type Handler struct {
	api    gateway.Service
	logger *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(api gateway.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{api: api, logger: logger}
}

// Register handles POST /seminars/:id/register.
func (h *Handler) Register(c *gin.Context) {
	h.register(c, c.Param("id"))
}

// Create handles POST /attendees, taking the seminar from the body.
func (h *Handler) Create(c *gin.Context) {
	h.register(c, "")
}

func (h *Handler) register(c *gin.Context, seminarID string) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "All fields are required.")
		return
	}
	if seminarID == "" {
		seminarID = req.SeminarID
	}
	if seminarID == "" {
		response.BadRequest(c, "All fields are required.")
		return
	}

	ctx := c.Request.Context()
	a, err := h.api.CreateAttendee(ctx, models.NewAttendee{
		FullName:      req.FullName,
		Email:         req.Email,
		ContactNumber: req.ContactNumber,
		Agency:        req.Agency,
		Position:      req.Position,
		SeminarID:     seminarID,
	}).Wait(ctx)
	if err != nil {
		h.logger.Warn("registration failed", zap.String("seminar_id", seminarID), zap.Error(err))
		httperr.Write(c, h.logger, err)
		return
	}
	h.logger.Info("attendee registered", zap.String("attendee_id", a.ID), zap.String("seminar_id", a.SeminarID))
	response.Created(c, RegisterResponse{Attendee: a, Message: SuccessMessage})
}
