// Package worker drains the certificate email queue.
package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aura-webinar/certdesk/pkg/queue"
)

// JobSource is the queue the processor drains. *queue.Queue implements it.
type JobSource interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// Sender delivers one certificate email.
type Sender interface {
	Send(ctx context.Context, payload queue.CertificatePayload) error
}

// LogSender simulates delivery by logging the email it would have sent.
type LogSender struct {
	From   string
	Logger *zap.Logger
}

// Send implements Sender.
func (s LogSender) Send(_ context.Context, p queue.CertificatePayload) error {
	if p.RecipientEmail == "" {
		return fmt.Errorf("attendee %s has no email address", p.AttendeeID)
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("simulated certificate email",
		zap.String("from", s.From),
		zap.String("to", p.RecipientEmail),
		zap.String("subject", p.Subject),
		zap.String("attendee_name", p.AttendeeName),
		zap.String("seminar_id", p.SeminarID),
	)
	return nil
}

// CertificateProcessor processes certificate email jobs.
type CertificateProcessor struct {
	queue       JobSource
	sender      Sender
	logger      *zap.Logger
	pollTimeout time.Duration
	backoff     time.Duration
}

// NewCertificateProcessor creates a certificate email processor.
func NewCertificateProcessor(q JobSource, sender Sender, logger *zap.Logger) *CertificateProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sender == nil {
		sender = LogSender{Logger: logger}
	}
	return &CertificateProcessor{
		queue:       q,
		sender:      sender,
		logger:      logger,
		pollTimeout: 5 * time.Second,
		backoff:     queue.RetryBackoff,
	}
}

// Process executes one certificate email job.
func (p *CertificateProcessor) Process(ctx context.Context, job *queue.Job) error {
	payload, err := queue.DecodeCertificate(job)
	if err != nil {
		return err
	}
	if err := p.sender.Send(ctx, payload); err != nil {
		return fmt.Errorf("send certificate: %w", err)
	}
	p.logger.Info("certificate email delivered",
		zap.String("job_id", job.ID),
		zap.String("attendee_id", payload.AttendeeID),
	)
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *CertificateProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("certificate worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx, p.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
			if reErr := p.queue.Retry(context.WithoutCancel(ctx), job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *CertificateProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
