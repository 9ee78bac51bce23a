package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// QueueCertificates is the Redis list key for certificate email jobs.
	QueueCertificates = "worker:certificates"
	// QueueDLQ is the dead-letter queue for failed jobs after retries.
	QueueDLQ = "worker:dlq"
	// MaxRetries is the number of times to retry a job before moving to DLQ.
	MaxRetries = 3
	// RetryBackoff is the delay between retries.
	RetryBackoff = 10 * time.Second
)

// JobType identifies the job kind.
type JobType string

const JobTypeCertificateEmail JobType = "certificate_email"

// CertificatePayload is the payload for one certificate email.
type CertificatePayload struct {
	SeminarID      string `json:"seminar_id"`
	SeminarTitle   string `json:"seminar_title"`
	SeminarDate    string `json:"seminar_date"`
	SpeakerName    string `json:"speaker_name"`
	AttendeeID     string `json:"attendee_id"`
	AttendeeName   string `json:"attendee_name"`
	RecipientEmail string `json:"recipient_email"`
	Subject        string `json:"subject"`
}

// Job is a generic job envelope.
type Job struct {
	ID        string          `json:"id"`
	Type      JobType         `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempt   int             `json:"attempt"`
	CreatedAt time.Time       `json:"created_at"`
}

// Queue enqueues and dequeues jobs via Redis.
type Queue struct {
	client *redis.Client
	logger *zap.Logger
}

// NewQueue creates a new Redis-backed job queue.
func NewQueue(client *redis.Client, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{client: client, logger: logger}
}

// NewCertificateJob wraps a payload in a fresh job envelope.
func NewCertificateJob(payload CertificatePayload) (*Job, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return &Job{
		ID:        uuid.New().String(),
		Type:      JobTypeCertificateEmail,
		Payload:   body,
		CreatedAt: time.Now(),
	}, nil
}

// EnqueueCertificate enqueues a certificate email job and returns its id.
func (q *Queue) EnqueueCertificate(ctx context.Context, payload CertificatePayload) (string, error) {
	job, err := NewCertificateJob(payload)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, QueueCertificates, raw).Err(); err != nil {
		return "", fmt.Errorf("rpush: %w", err)
	}
	q.logger.Debug("enqueued certificate job", zap.String("job_id", job.ID), zap.String("attendee_id", payload.AttendeeID))
	return job.ID, nil
}

// EnqueueCertificates pushes one job per payload in a single MULTI/EXEC
// transaction: either every job is queued or none is. Ids are returned in order.
func (q *Queue) EnqueueCertificates(ctx context.Context, payloads []CertificatePayload) ([]string, error) {
	if len(payloads) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(payloads))
	raws := make([]interface{}, 0, len(payloads))
	for _, p := range payloads {
		job, err := NewCertificateJob(p)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(job)
		if err != nil {
			return nil, fmt.Errorf("marshal job: %w", err)
		}
		ids = append(ids, job.ID)
		raws = append(raws, raw)
	}
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, raw := range raws {
			pipe.RPush(ctx, QueueCertificates, raw)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("rpush batch: %w", err)
	}
	q.logger.Debug("enqueued certificate batch", zap.Int("jobs", len(ids)))
	return ids, nil
}

// Dequeue blocks up to timeout for a job. A nil job with nil error means the wait timed out.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	result, err := q.client.BLPop(ctx, timeout, QueueCertificates).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	if len(result) < 2 {
		return nil, nil
	}
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		q.logger.Warn("invalid job payload", zap.String("raw", result[1]), zap.Error(err))
		return nil, nil
	}
	return &job, nil
}

// Retry re-enqueues a job with incremented attempt. If attempt >= MaxRetries, pushes to DLQ instead.
func (q *Queue) Retry(ctx context.Context, job *Job) error {
	job.Attempt++
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if job.Attempt >= MaxRetries {
		if err := q.client.RPush(ctx, QueueDLQ, raw).Err(); err != nil {
			q.logger.Error("dlq push failed", zap.Error(err), zap.String("job_id", job.ID))
			return err
		}
		q.logger.Warn("job moved to DLQ", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
		return nil
	}
	if err := q.client.RPush(ctx, QueueCertificates, raw).Err(); err != nil {
		return err
	}
	q.logger.Info("job retried", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
	return nil
}

// DecodeCertificate extracts the certificate payload from a job.
func DecodeCertificate(job *Job) (CertificatePayload, error) {
	var p CertificatePayload
	if job.Type != JobTypeCertificateEmail {
		return p, fmt.Errorf("unknown job type: %s", job.Type)
	}
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		return p, fmt.Errorf("unmarshal payload: %w", err)
	}
	return p, nil
}
