// Package certificates hands completed attendees over for (simulated) certificate
// delivery and builds printable certificate data.
package certificates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-webinar/certdesk/internal/models"
	"github.com/aura-webinar/certdesk/pkg/queue"
)

// Enqueuer queues certificate email jobs all-or-nothing. *queue.Queue implements it.
type Enqueuer interface {
	EnqueueCertificates(ctx context.Context, payloads []queue.CertificatePayload) ([]string, error)
}

// LogWriter stores dispatch log rows. *emaillogs.Repository implements it.
type LogWriter interface {
	Append(ctx context.Context, entries ...models.CertificateEmail) error
}

// Dispatcher records one email log row per recipient. Without an Enqueuer the
// delivery is simulated and rows are marked sent; with one, a job is queued per
// recipient for the worker. No mail is ever delivered.
type Dispatcher struct {
	logs   LogWriter
	queue  Enqueuer
	logger *zap.Logger
	now    func() time.Time
}

// NewDispatcher creates a dispatcher. q may be nil.
func NewDispatcher(logs LogWriter, q Enqueuer, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{logs: logs, queue: q, logger: logger, now: time.Now}
}

// Subject returns the email subject for a seminar certificate.
func Subject(seminar models.Seminar) string {
	return "Certificate of Completion: " + seminar.Title
}

// Dispatch implements gateway.Dispatcher. A failed enqueue queues nothing, so the
// caller can re-issue the send without duplicating jobs.
func (d *Dispatcher) Dispatch(ctx context.Context, seminar models.Seminar, recipients []models.Attendee) error {
	d.logger.Info("simulating bulk certificate sending",
		zap.String("seminar_id", seminar.ID),
		zap.Int("recipients", len(recipients)),
	)
	status := models.CertificateEmailSent
	var dispatchErr error
	if d.queue != nil {
		payloads := make([]queue.CertificatePayload, 0, len(recipients))
		for _, a := range recipients {
			payloads = append(payloads, queue.CertificatePayload{
				SeminarID:      seminar.ID,
				SeminarTitle:   seminar.Title,
				SeminarDate:    seminar.Date,
				SpeakerName:    seminar.Speaker,
				AttendeeID:     a.ID,
				AttendeeName:   a.FullName,
				RecipientEmail: a.Email,
				Subject:        Subject(seminar),
			})
		}
		status = models.CertificateEmailQueued
		if _, err := d.queue.EnqueueCertificates(ctx, payloads); err != nil {
			status = models.CertificateEmailFailed
			dispatchErr = fmt.Errorf("enqueue certificates: %w", err)
		}
	}

	entries := make([]models.CertificateEmail, 0, len(recipients))
	for _, a := range recipients {
		entry := models.CertificateEmail{
			ID:             uuid.New().String(),
			SeminarID:      seminar.ID,
			AttendeeID:     a.ID,
			RecipientEmail: a.Email,
			Subject:        Subject(seminar),
			Status:         status,
			CreatedAt:      d.now(),
		}
		if dispatchErr != nil {
			entry.ErrorMessage = dispatchErr.Error()
		}
		d.logger.Debug("certificate dispatched",
			zap.String("attendee_id", a.ID),
			zap.String("recipient", a.Email),
			zap.String("status", entry.Status),
		)
		entries = append(entries, entry)
	}
	if err := d.logs.Append(ctx, entries...); err != nil {
		return errors.Join(dispatchErr, fmt.Errorf("record email logs: %w", err))
	}
	return dispatchErr
}
