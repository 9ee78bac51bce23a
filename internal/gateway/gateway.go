// Package gateway presents the entity store as an asynchronous service with
// simulated network latency.
package gateway

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/aura-webinar/certdesk/internal/models"
	"github.com/aura-webinar/certdesk/internal/store"
)

const (
	// DefaultDelay is the latency applied to every ordinary call.
	DefaultDelay = 500 * time.Millisecond
	// DefaultBulkDelay is the latency of the bulk certificate send.
	DefaultBulkDelay = 1500 * time.Millisecond

	// MessageNoneCompleted is the bulk send outcome when nobody has completed.
	MessageNoneCompleted = "No attendees have completed the seminar yet."
)

// Events published after successful mutations.
const (
	EventSeminarCreated     = "seminar.created"
	EventAttendeeRegistered = "attendee.registered"
	EventAttendeeStatus     = "attendee.status_changed"
	EventCertificatesSent   = "certificates.sent"
)

// Service is the asynchronous contract the handlers are written against. A real
// backend can implement it without changing callers.
type Service interface {
	ListSeminars(ctx context.Context) *Call[[]models.Seminar]
	GetSeminar(ctx context.Context, id string) *Call[models.Seminar]
	CreateSeminar(ctx context.Context, in models.NewSeminar) *Call[models.Seminar]
	ListAttendees(ctx context.Context, seminarID string) *Call[[]models.Attendee]
	GetAttendee(ctx context.Context, id string) *Call[models.Attendee]
	CreateAttendee(ctx context.Context, in models.NewAttendee) *Call[models.Attendee]
	SetAttendeeStatus(ctx context.Context, attendeeID string, status models.AttendanceStatus) *Call[models.Attendee]
	Summary(ctx context.Context, seminarID string) *Call[models.SeminarSummary]
	SendBulkCertificates(ctx context.Context, seminarID string) *Call[models.BulkResult]
	InFlight() int
}

// Publisher receives an event for every successful mutation.
type Publisher interface {
	Publish(seminarID, event string, payload interface{})
}

// Dispatcher hands completed attendees over for certificate delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, seminar models.Seminar, recipients []models.Attendee) error
}

// Options configures the simulated latency.
type Options struct {
	Delay     time.Duration
	BulkDelay time.Duration
}

// DefaultOptions returns the standard 500ms / 1500ms latencies.
func DefaultOptions() Options {
	return Options{Delay: DefaultDelay, BulkDelay: DefaultBulkDelay}
}

// Simulated implements Service over an in-memory store.
type Simulated struct {
	store      *store.Store
	opts       Options
	publisher  Publisher
	dispatcher Dispatcher
	logger     *zap.Logger
	inFlight   atomic.Int64
}

// NewSimulated creates a gateway. publisher and dispatcher may be nil.
func NewSimulated(st *store.Store, opts Options, publisher Publisher, dispatcher Dispatcher, logger *zap.Logger) *Simulated {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulated{store: st, opts: opts, publisher: publisher, dispatcher: dispatcher, logger: logger}
}

var _ Service = (*Simulated)(nil)

// InFlight returns the number of calls that have not settled yet.
func (g *Simulated) InFlight() int { return int(g.inFlight.Load()) }

func run[T any](g *Simulated, ctx context.Context, op string, delay time.Duration, fn func(ctx context.Context) (T, error)) *Call[T] {
	call := newCall[T]()
	g.inFlight.Add(1)
	opCtx := context.WithoutCancel(ctx)
	go func() {
		if delay > 0 {
			time.Sleep(delay)
		}
		v, err := fn(opCtx)
		if err != nil {
			g.logger.Warn("gateway call failed", zap.String("op", op), zap.Error(err))
		} else {
			g.logger.Debug("gateway call settled", zap.String("op", op))
		}
		g.inFlight.Add(-1)
		call.settle(v, err)
	}()
	return call
}

func (g *Simulated) publish(seminarID, event string, payload interface{}) {
	if g.publisher != nil {
		g.publisher.Publish(seminarID, event, payload)
	}
}

// ListSeminars resolves with all seminars.
func (g *Simulated) ListSeminars(ctx context.Context) *Call[[]models.Seminar] {
	return run(g, ctx, "list_seminars", g.opts.Delay, func(context.Context) ([]models.Seminar, error) {
		return g.store.ListSeminars(), nil
	})
}

// GetSeminar resolves with one seminar.
func (g *Simulated) GetSeminar(ctx context.Context, id string) *Call[models.Seminar] {
	return run(g, ctx, "get_seminar", g.opts.Delay, func(context.Context) (models.Seminar, error) {
		return g.store.GetSeminar(id)
	})
}

// CreateSeminar resolves with the created seminar.
func (g *Simulated) CreateSeminar(ctx context.Context, in models.NewSeminar) *Call[models.Seminar] {
	return run(g, ctx, "create_seminar", g.opts.Delay, func(context.Context) (models.Seminar, error) {
		sem, err := g.store.CreateSeminar(in)
		if err != nil {
			return sem, err
		}
		g.publish(sem.ID, EventSeminarCreated, sem)
		return sem, nil
	})
}

// ListAttendees resolves with the seminar's attendees.
func (g *Simulated) ListAttendees(ctx context.Context, seminarID string) *Call[[]models.Attendee] {
	return run(g, ctx, "list_attendees", g.opts.Delay, func(context.Context) ([]models.Attendee, error) {
		return g.store.ListAttendees(seminarID), nil
	})
}

// GetAttendee resolves with one attendee.
func (g *Simulated) GetAttendee(ctx context.Context, id string) *Call[models.Attendee] {
	return run(g, ctx, "get_attendee", g.opts.Delay, func(context.Context) (models.Attendee, error) {
		return g.store.GetAttendee(id)
	})
}

// CreateAttendee resolves with the registered attendee.
func (g *Simulated) CreateAttendee(ctx context.Context, in models.NewAttendee) *Call[models.Attendee] {
	return run(g, ctx, "create_attendee", g.opts.Delay, func(context.Context) (models.Attendee, error) {
		a, err := g.store.CreateAttendee(in)
		if err != nil {
			return a, err
		}
		g.publish(a.SeminarID, EventAttendeeRegistered, a)
		return a, nil
	})
}

// SetAttendeeStatus resolves with the updated attendee.
func (g *Simulated) SetAttendeeStatus(ctx context.Context, attendeeID string, status models.AttendanceStatus) *Call[models.Attendee] {
	return run(g, ctx, "set_attendee_status", g.opts.Delay, func(context.Context) (models.Attendee, error) {
		a, err := g.store.SetAttendeeStatus(attendeeID, status)
		if err != nil {
			return a, err
		}
		g.publish(a.SeminarID, EventAttendeeStatus, a)
		return a, nil
	})
}

// Summary resolves with the seminar's registration counts.
func (g *Simulated) Summary(ctx context.Context, seminarID string) *Call[models.SeminarSummary] {
	return run(g, ctx, "summary", g.opts.Delay, func(context.Context) (models.SeminarSummary, error) {
		return g.store.Summary(seminarID), nil
	})
}

// SendBulkCertificates simulates mailing certificates to every completed attendee.
// Zero completed attendees is reported as Success=false, not as an error.
func (g *Simulated) SendBulkCertificates(ctx context.Context, seminarID string) *Call[models.BulkResult] {
	return run(g, ctx, "send_bulk_certificates", g.opts.BulkDelay, func(ctx context.Context) (models.BulkResult, error) {
		recipients := g.store.CompletedAttendees(seminarID)
		if len(recipients) == 0 {
			return models.BulkResult{Success: false, Message: MessageNoneCompleted}, nil
		}
		if g.dispatcher != nil {
			sem, err := g.store.GetSeminar(seminarID)
			if err != nil {
				return models.BulkResult{}, err
			}
			if err := g.dispatcher.Dispatch(ctx, sem, recipients); err != nil {
				return models.BulkResult{}, fmt.Errorf("dispatch certificates: %w", err)
			}
		}
		res := models.BulkResult{
			Success: true,
			Message: fmt.Sprintf("Successfully sent certificates to %d completed attendees.", len(recipients)),
			Sent:    len(recipients),
		}
		g.publish(seminarID, EventCertificatesSent, res)
		return res, nil
	})
}
