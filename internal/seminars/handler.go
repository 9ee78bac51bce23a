package seminars

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-webinar/certdesk/internal/gateway"
	"github.com/aura-webinar/certdesk/internal/httperr"
	"github.com/aura-webinar/certdesk/internal/models"
	"github.com/aura-webinar/certdesk/pkg/response"
)

// CreateRequest is the body for POST /seminars.
type CreateRequest struct {
	Title       string `json:"title" binding:"required"`
	Date        string `json:"date" binding:"required"` // YYYY-MM-DD
	Speaker     string `json:"speaker" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// Handler handles seminar HTTP endpoints.
type Handler struct {
	api    gateway.Service
	logger *zap.Logger
}

// NewHandler creates a seminar handler.
func NewHandler(api gateway.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{api: api, logger: logger}
}

// List handles GET /seminars.
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	list, err := h.api.ListSeminars(ctx).Wait(ctx)
	if err != nil {
		httperr.Write(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// Create handles POST /seminars.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "All fields are required.")
		return
	}
	ctx := c.Request.Context()
	sem, err := h.api.CreateSeminar(ctx, models.NewSeminar{
		Title:       req.Title,
		Date:        req.Date,
		Speaker:     req.Speaker,
		Description: req.Description,
	}).Wait(ctx)
	if err != nil {
		httperr.Write(c, h.logger, err)
		return
	}
	h.logger.Info("seminar created", zap.String("seminar_id", sem.ID), zap.String("title", sem.Title))
	response.Created(c, sem)
}

// GetByID handles GET /seminars/:id.
func (h *Handler) GetByID(c *gin.Context) {
	ctx := c.Request.Context()
	sem, err := h.api.GetSeminar(ctx, c.Param("id")).Wait(ctx)
	if err != nil {
		httperr.Write(c, h.logger, err)
		return
	}
	response.OK(c, sem)
}
