package emaillogs

import (
	"github.com/gin-gonic/gin"

	"github.com/aura-webinar/certdesk/pkg/response"
)

// Handler handles certificate email log endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates an email logs handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// ListBySeminar handles GET /seminars/:id/certificates/emails.
func (h *Handler) ListBySeminar(c *gin.Context) {
	logs, err := h.repo.ListBySeminar(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Internal(c, "failed to load email logs")
		return
	}
	response.OK(c, logs)
}
