// Package designer generates certificate background artwork through an external
// image-generation service and keeps the current certificate template.
package designer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrExternalService wraps failures reported by the image generator.
	ErrExternalService = errors.New("image generation failed")
	// ErrNotConfigured is returned when no generator endpoint is set.
	ErrNotConfigured = errors.New("certificate designer is not configured")
)

// ExternalServiceError carries the generator's failure message verbatim.
type ExternalServiceError struct {
	Message string
}

func (e *ExternalServiceError) Error() string { return e.Message }

func (e *ExternalServiceError) Unwrap() error { return ErrExternalService }

func externalf(format string, args ...interface{}) error {
	return &ExternalServiceError{Message: fmt.Sprintf(format, args...)}
}

// ReferenceImage is an optional sample certificate that inspires the design.
type ReferenceImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Image is what the generator produced: inline bytes, a URL, or both.
type Image struct {
	Data        []byte
	ContentType string
	URL         string
}

// Generator turns a prompt and optional reference into one rendered image.
type Generator interface {
	Generate(ctx context.Context, prompt string, ref *ReferenceImage) (Image, error)
}

// HTTPGeneratorConfig configures the HTTP image generator client.
type HTTPGeneratorConfig struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// HTTPGenerator calls a JSON image-generation endpoint. Single request, no retries.
type HTTPGenerator struct {
	cfg    HTTPGeneratorConfig
	client *http.Client
}

// NewHTTPGenerator creates a generator client.
func NewHTTPGenerator(cfg HTTPGeneratorConfig) *HTTPGenerator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &HTTPGenerator{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

type generateRequest struct {
	Model          string       `json:"model,omitempty"`
	Prompt         string       `json:"prompt"`
	ReferenceImage *inlineImage `json:"reference_image,omitempty"`
}

type inlineImage struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	ImageURL    string `json:"image_url"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Error       *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate implements Generator.
func (g *HTTPGenerator) Generate(ctx context.Context, prompt string, ref *ReferenceImage) (Image, error) {
	body := generateRequest{Model: g.cfg.Model, Prompt: prompt}
	if ref != nil {
		body.ReferenceImage = &inlineImage{
			MimeType: ref.ContentType,
			Data:     base64.StdEncoding.EncodeToString(ref.Data),
		}
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return Image{}, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Endpoint, bytes.NewReader(raw))
	if err != nil {
		return Image{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return Image{}, externalf("%v", err)
	}
	defer resp.Body.Close()

	var out generateResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 32<<20)).Decode(&out)
	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("status %d", resp.StatusCode)
		if decodeErr == nil && out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return Image{}, externalf("%s", msg)
	}
	if decodeErr != nil {
		return Image{}, externalf("invalid response: %v", decodeErr)
	}

	img := Image{URL: out.ImageURL, ContentType: out.MimeType}
	if out.ImageBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(out.ImageBase64)
		if err != nil {
			return Image{}, externalf("invalid image data: %v", err)
		}
		img.Data = data
		if img.ContentType == "" {
			img.ContentType = http.DetectContentType(data)
		}
	}
	if img.URL == "" && len(img.Data) == 0 {
		return Image{}, externalf("no image was returned")
	}
	img.ContentType = strings.TrimSpace(img.ContentType)
	return img, nil
}
