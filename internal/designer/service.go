package designer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-webinar/certdesk/internal/models"
	"github.com/aura-webinar/certdesk/pkg/storage"
)

// DefaultPrompt is the design brief offered to operators as a starting point.
const DefaultPrompt = "Create a professional certificate background. Use a formal blue and gold color scheme with Philippines government-inspired seal elements. The design should be clean and elegant. Leave the center of the certificate blank to accommodate text content."

var (
	// ErrEmptyPrompt is returned when no design prompt was given.
	ErrEmptyPrompt = errors.New("Please provide a prompt.")
	// ErrImageTooLarge is returned for reference images over the size limit.
	ErrImageTooLarge = errors.New("Image size should be less than 4MB.")
	// ErrImageType is returned for reference images that are not PNG or JPEG.
	ErrImageType = errors.New("Image must be a PNG or JPEG file.")
)

// ImageStore persists generated artwork and returns a URL for it. *storage.S3 implements it.
type ImageStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, contentLength int64) (string, error)
}

// Service generates certificate backgrounds and remembers the current one.
type Service struct {
	gen    Generator
	images ImageStore
	logger *zap.Logger
	now    func() time.Time

	mu      sync.RWMutex
	current *models.CertificateTemplate
}

// NewService creates a designer service. gen and images may be nil; without a
// generator every request fails with ErrNotConfigured, and without an image store
// inline artwork is returned as a data URL.
func NewService(gen Generator, images ImageStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{gen: gen, images: images, logger: logger, now: time.Now}
}

// ValidateReference checks the size and type limits of a reference image.
func ValidateReference(ref *ReferenceImage) error {
	if ref == nil {
		return nil
	}
	if len(ref.Data) > storage.MaxReferenceImageSize {
		return ErrImageTooLarge
	}
	if ref.ContentType == "" || ref.ContentType == "application/octet-stream" {
		ref.ContentType = http.DetectContentType(ref.Data)
	}
	if !storage.ValidateImageType(ref.ContentType, ref.Filename) {
		return ErrImageType
	}
	return nil
}

// Template returns the current certificate background, if any.
func (s *Service) Template() (models.CertificateTemplate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return models.CertificateTemplate{}, false
	}
	return *s.current, true
}

// Generate renders a new background and makes it the current template.
func (s *Service) Generate(ctx context.Context, prompt string, ref *ReferenceImage) (models.CertificateTemplate, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return models.CertificateTemplate{}, ErrEmptyPrompt
	}
	if err := ValidateReference(ref); err != nil {
		return models.CertificateTemplate{}, err
	}
	if s.gen == nil {
		return models.CertificateTemplate{}, ErrNotConfigured
	}

	img, err := s.gen.Generate(ctx, prompt, ref)
	if err != nil {
		s.logger.Error("certificate generation failed", zap.Error(err))
		return models.CertificateTemplate{}, err
	}
	url, err := s.imageURL(ctx, img)
	if err != nil {
		return models.CertificateTemplate{}, err
	}

	tpl := models.CertificateTemplate{BackgroundURL: url, Prompt: prompt, GeneratedAt: s.now()}
	s.mu.Lock()
	s.current = &tpl
	s.mu.Unlock()
	s.logger.Info("certificate template generated", zap.Bool("has_reference", ref != nil))
	return tpl, nil
}

func (s *Service) imageURL(ctx context.Context, img Image) (string, error) {
	if len(img.Data) == 0 {
		return img.URL, nil
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = "image/png"
	}
	if s.images == nil {
		return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(img.Data), nil
	}
	key := storage.BackgroundKey(uuid.New().String(), contentType)
	url, err := s.images.Upload(ctx, key, contentType, bytes.NewReader(img.Data), int64(len(img.Data)))
	if err != nil {
		return "", fmt.Errorf("store background: %w", err)
	}
	return url, nil
}
