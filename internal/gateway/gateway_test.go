package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-webinar/certdesk/internal/models"
	"github.com/aura-webinar/certdesk/internal/store"
)

type recordedEvent struct {
	seminarID string
	event     string
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *fakePublisher) Publish(seminarID, event string, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{seminarID, event})
}

func (p *fakePublisher) all() []recordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]recordedEvent(nil), p.events...)
}

type fakeDispatcher struct {
	err        error
	seminar    models.Seminar
	recipients []models.Attendee
}

func (d *fakeDispatcher) Dispatch(_ context.Context, seminar models.Seminar, recipients []models.Attendee) error {
	d.seminar = seminar
	d.recipients = recipients
	return d.err
}

func newTestGateway(opts Options) (*Simulated, *fakePublisher) {
	pub := &fakePublisher{}
	return NewSimulated(store.NewSeeded(), opts, pub, nil, nil), pub
}

func newAttendee(seminarID string) models.NewAttendee {
	return models.NewAttendee{
		FullName:      "Dante Villanueva",
		Email:         "dante.v@gov.ph",
		ContactNumber: "09170000001",
		Agency:        "Commission on Audit",
		Position:      "State Auditor",
		SeminarID:     seminarID,
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 500*time.Millisecond, opts.Delay)
	assert.Equal(t, 1500*time.Millisecond, opts.BulkDelay)
}

func TestCall_LoadingUntilDelayElapses(t *testing.T) {
	g, _ := newTestGateway(Options{Delay: 50 * time.Millisecond})
	ctx := context.Background()

	call := g.ListSeminars(ctx)
	assert.True(t, call.Loading())
	assert.Equal(t, 1, g.InFlight())
	_, err := call.Result()
	assert.ErrorIs(t, err, ErrPending)
	assert.NoError(t, call.Err())

	seminars, err := call.Wait(ctx)
	require.NoError(t, err)
	assert.Len(t, seminars, 2)
	assert.False(t, call.Loading())
	assert.Equal(t, 0, g.InFlight())
}

func TestCall_WaitContextDoesNotAbortMutation(t *testing.T) {
	g, _ := newTestGateway(Options{Delay: 30 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	call := g.CreateAttendee(ctx, newAttendee("seminar-2"))
	cancel()

	_, err := call.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	created, err := call.Wait(context.Background())
	require.NoError(t, err)

	list, err := g.ListAttendees(context.Background(), "seminar-2").Wait(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created, list[0])
}

func TestCreateAttendee_RoundTrip(t *testing.T) {
	g, pub := newTestGateway(Options{})
	ctx := context.Background()

	created, err := g.CreateAttendee(ctx, newAttendee("seminar-1")).Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceRegistered, created.Status)

	list, err := g.ListAttendees(ctx, "seminar-1").Wait(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, created, list[2])

	assert.Equal(t, []recordedEvent{{"seminar-1", EventAttendeeRegistered}}, pub.all())
}

func TestSetAttendeeStatus_NotFoundRejects(t *testing.T) {
	g, pub := newTestGateway(Options{})
	ctx := context.Background()

	call := g.SetAttendeeStatus(ctx, "missing", models.AttendanceCompleted)
	_, err := call.Wait(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrNotFound))
	assert.Equal(t, err, call.Err())
	assert.Empty(t, pub.all())
}

func TestCreateSeminar_ValidationRejects(t *testing.T) {
	g, _ := newTestGateway(Options{})
	ctx := context.Background()

	_, err := g.CreateSeminar(ctx, models.NewSeminar{Title: "Only a title"}).Wait(ctx)
	assert.True(t, errors.Is(err, store.ErrValidation))

	seminars, err := g.ListSeminars(ctx).Wait(ctx)
	require.NoError(t, err)
	assert.Len(t, seminars, 2)
}

func TestSendBulkCertificates_Scenario(t *testing.T) {
	st := store.New(store.SeedSeminars()[:1], nil)
	g := NewSimulated(st, Options{}, nil, nil, nil)
	ctx := context.Background()

	a, err := g.CreateAttendee(ctx, newAttendee("seminar-1")).Wait(ctx)
	require.NoError(t, err)

	res, err := g.SendBulkCertificates(ctx, "seminar-1").Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.BulkResult{Success: false, Message: "No attendees have completed the seminar yet."}, res)

	_, err = g.SetAttendeeStatus(ctx, a.ID, models.AttendanceCompleted).Wait(ctx)
	require.NoError(t, err)

	res, err = g.SendBulkCertificates(ctx, "seminar-1").Wait(ctx)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Successfully sent certificates to 1 completed attendees.", res.Message)
	assert.Equal(t, 1, res.Sent)
}

func TestSendBulkCertificates_UsesBulkDelay(t *testing.T) {
	g, _ := newTestGateway(Options{Delay: 0, BulkDelay: 40 * time.Millisecond})
	ctx := context.Background()

	start := time.Now()
	res, err := g.SendBulkCertificates(ctx, "seminar-1").Wait(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	assert.True(t, res.Success)
}

func TestSendBulkCertificates_Dispatcher(t *testing.T) {
	d := &fakeDispatcher{}
	pub := &fakePublisher{}
	g := NewSimulated(store.NewSeeded(), Options{}, pub, d, nil)
	ctx := context.Background()

	res, err := g.SendBulkCertificates(ctx, "seminar-1").Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, "seminar-1", d.seminar.ID)
	require.Len(t, d.recipients, 1)
	assert.Equal(t, "attendee-2", d.recipients[0].ID)
	assert.Equal(t, []recordedEvent{{"seminar-1", EventCertificatesSent}}, pub.all())

	d.err = errors.New("mail relay down")
	_, err = g.SendBulkCertificates(ctx, "seminar-1").Wait(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mail relay down")
}

func TestSendBulkCertificates_NoneCompletedSkipsDispatcher(t *testing.T) {
	d := &fakeDispatcher{}
	g := NewSimulated(store.NewSeeded(), Options{}, nil, d, nil)
	ctx := context.Background()

	res, err := g.SendBulkCertificates(ctx, "seminar-2").Wait(ctx)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Nil(t, d.recipients)
}

func TestConcurrentCallsSettleIndependently(t *testing.T) {
	g, _ := newTestGateway(Options{Delay: 10 * time.Millisecond})
	ctx := context.Background()

	calls := make([]*Call[models.Attendee], 20)
	for i := range calls {
		calls[i] = g.CreateAttendee(ctx, newAttendee("seminar-2"))
	}
	failing := g.SetAttendeeStatus(ctx, "missing", models.AttendanceCompleted)

	seen := make(map[string]bool)
	for _, c := range calls {
		a, err := c.Wait(ctx)
		require.NoError(t, err)
		assert.False(t, seen[a.ID], "duplicate id %s", a.ID)
		seen[a.ID] = true
	}
	_, err := failing.Wait(ctx)
	assert.Error(t, err)
	for _, c := range calls {
		assert.NoError(t, c.Err())
	}

	summary, err := g.Summary(ctx, "seminar-2").Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, summary.TotalRegistered)
	assert.Equal(t, 0, g.InFlight())
}
