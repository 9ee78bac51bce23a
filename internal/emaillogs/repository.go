package emaillogs

import (
	"context"
	"sync"

	"github.com/aura-webinar/certdesk/internal/models"
)

// Repository keeps simulated certificate emails in memory.
type Repository struct {
	mu   sync.RWMutex
	logs []models.CertificateEmail
}

// NewRepository creates an empty email log repository.
func NewRepository() *Repository {
	return &Repository{}
}

// Append records log rows in order.
func (r *Repository) Append(_ context.Context, entries ...models.CertificateEmail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, entries...)
	return nil
}

// ListBySeminar returns email logs for a seminar, newest first.
func (r *Repository) ListBySeminar(_ context.Context, seminarID string) ([]models.CertificateEmail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.CertificateEmail, 0)
	for i := len(r.logs) - 1; i >= 0; i-- {
		if r.logs[i].SeminarID == seminarID {
			out = append(out, r.logs[i])
		}
	}
	return out, nil
}
