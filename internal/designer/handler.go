package designer

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-webinar/certdesk/pkg/response"
	"github.com/aura-webinar/certdesk/pkg/storage"
)

// Handler exposes the certificate designer.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a designer handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// GetTemplate handles GET /certificates/template.
func (h *Handler) GetTemplate(c *gin.Context) {
	tpl, ok := h.svc.Template()
	if !ok {
		response.OK(c, gin.H{"template": nil, "default_prompt": DefaultPrompt})
		return
	}
	response.OK(c, gin.H{"template": tpl, "default_prompt": DefaultPrompt})
}

// Generate handles POST /certificates/template/generate (multipart: prompt, optional image).
func (h *Handler) Generate(c *gin.Context) {
	ref, err := readReference(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	tpl, err := h.svc.Generate(c.Request.Context(), c.PostForm("prompt"), ref)
	switch {
	case err == nil:
		response.Created(c, tpl)
	case errors.Is(err, ErrEmptyPrompt), errors.Is(err, ErrImageTooLarge), errors.Is(err, ErrImageType):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrNotConfigured):
		response.ServiceUnavailable(c, err.Error())
	case errors.Is(err, ErrExternalService):
		response.BadGateway(c, "Failed to generate certificate: "+err.Error())
	default:
		h.logger.Error("certificate template generation", zap.Error(err))
		response.Internal(c, "Failed to generate certificate: An unknown error occurred.")
	}
}

func readReference(c *gin.Context) (*ReferenceImage, error) {
	file, header, err := c.Request.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.New("invalid image upload")
	}
	defer file.Close()
	if header.Size > storage.MaxReferenceImageSize {
		return nil, ErrImageTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(file, storage.MaxReferenceImageSize+1))
	if err != nil {
		return nil, errors.New("invalid image upload")
	}
	if len(data) > storage.MaxReferenceImageSize {
		return nil, ErrImageTooLarge
	}
	return &ReferenceImage{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
