package certificates

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-webinar/certdesk/internal/emaillogs"
	"github.com/aura-webinar/certdesk/internal/gateway"
	"github.com/aura-webinar/certdesk/internal/models"
	"github.com/aura-webinar/certdesk/internal/store"
	"github.com/aura-webinar/certdesk/pkg/queue"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeQueue struct {
	err  error
	jobs []queue.CertificatePayload
}

func (q *fakeQueue) EnqueueCertificates(_ context.Context, payloads []queue.CertificatePayload) ([]string, error) {
	if q.err != nil {
		return nil, q.err
	}
	ids := make([]string, 0, len(payloads))
	for _, p := range payloads {
		q.jobs = append(q.jobs, p)
		ids = append(ids, "job-"+p.AttendeeID)
	}
	return ids, nil
}

type failingLogs struct{}

func (failingLogs) Append(context.Context, ...models.CertificateEmail) error {
	return errors.New("log store full")
}

var seminar = models.Seminar{ID: "seminar-1", Title: "Public Financial Management", Date: "2024-08-15", Speaker: "Dr. Juan Dela Cruz", Description: "PFM reform roadmap."}

func recipients() []models.Attendee {
	return []models.Attendee{
		{ID: "attendee-2", FullName: "Benito Carlos", Email: "benito.carlos@gov.ph", SeminarID: "seminar-1", Status: models.AttendanceCompleted},
		{ID: "attendee-5", FullName: "Rosa Lim", Email: "rosa.lim@gov.ph", SeminarID: "seminar-1", Status: models.AttendanceCompleted},
	}
}

func TestDispatch_Simulated(t *testing.T) {
	logs := emaillogs.NewRepository()
	d := NewDispatcher(logs, nil, nil)
	d.now = func() time.Time { return time.Date(2024, 8, 16, 9, 0, 0, 0, time.UTC) }

	require.NoError(t, d.Dispatch(context.Background(), seminar, recipients()))

	rows, err := logs.ListBySeminar(context.Background(), "seminar-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, models.CertificateEmailSent, row.Status)
		assert.Equal(t, "Certificate of Completion: Public Financial Management", row.Subject)
	}
	assert.Equal(t, "rosa.lim@gov.ph", rows[0].RecipientEmail)
}

func TestDispatch_Queued(t *testing.T) {
	logs := emaillogs.NewRepository()
	q := &fakeQueue{}
	d := NewDispatcher(logs, q, nil)

	require.NoError(t, d.Dispatch(context.Background(), seminar, recipients()))
	require.Len(t, q.jobs, 2)
	assert.Equal(t, "Benito Carlos", q.jobs[0].AttendeeName)
	assert.Equal(t, "Dr. Juan Dela Cruz", q.jobs[0].SpeakerName)

	rows, _ := logs.ListBySeminar(context.Background(), "seminar-1")
	for _, row := range rows {
		assert.Equal(t, models.CertificateEmailQueued, row.Status)
	}
}

func TestDispatch_EnqueueFailureMarksEveryRowFailed(t *testing.T) {
	logs := emaillogs.NewRepository()
	d := NewDispatcher(logs, &fakeQueue{err: errors.New("redis unavailable")}, nil)

	err := d.Dispatch(context.Background(), seminar, recipients())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis unavailable")

	rows, _ := logs.ListBySeminar(context.Background(), "seminar-1")
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, models.CertificateEmailFailed, row.Status)
		assert.Contains(t, row.ErrorMessage, "redis unavailable")
	}
}

func TestDispatch_LogWriteErrorReturned(t *testing.T) {
	err := NewDispatcher(failingLogs{}, nil, nil).Dispatch(context.Background(), seminar, recipients())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log store full")

	err = NewDispatcher(failingLogs{}, &fakeQueue{err: errors.New("redis unavailable")}, nil).
		Dispatch(context.Background(), seminar, recipients())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis unavailable")
	assert.Contains(t, err.Error(), "log store full")
}

func TestSendBulkCertificates_RetryAfterFailedEnqueueQueuesEachRecipientOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	attendees := recipients()
	st := store.New([]models.Seminar{seminar}, attendees)
	logs := emaillogs.NewRepository()
	api := gateway.NewSimulated(st, gateway.Options{}, nil, NewDispatcher(logs, queue.NewQueue(rdb, nil), nil), nil)
	ctx := context.Background()

	mr.SetError("ERR server unavailable")
	_, err := api.SendBulkCertificates(ctx, "seminar-1").Wait(ctx)
	require.Error(t, err)
	mr.SetError("")
	assert.False(t, mr.Exists(queue.QueueCertificates))

	res, err := api.SendBulkCertificates(ctx, "seminar-1").Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Sent)

	raw, err := mr.List(queue.QueueCertificates)
	require.NoError(t, err)
	require.Len(t, raw, len(attendees))
	perAttendee := map[string]int{}
	for _, item := range raw {
		var job queue.Job
		require.NoError(t, json.Unmarshal([]byte(item), &job))
		p, err := queue.DecodeCertificate(&job)
		require.NoError(t, err)
		perAttendee[p.AttendeeID]++
	}
	assert.Equal(t, map[string]int{"attendee-2": 1, "attendee-5": 1}, perAttendee)
}

type staticTemplate struct {
	tpl models.CertificateTemplate
	ok  bool
}

func (s staticTemplate) Template() (models.CertificateTemplate, bool) { return s.tpl, s.ok }

func TestHandler_Get(t *testing.T) {
	st := store.New([]models.Seminar{seminar}, store.SeedAttendees())
	api := gateway.NewSimulated(st, gateway.Options{}, nil, nil, nil)
	route := func(src TemplateSource) *gin.Engine {
		r := gin.New()
		r.GET("/attendees/:id/certificate", NewHandler(api, src, nil).Get)
		return r
	}
	get := func(r *gin.Engine, id string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/attendees/"+id+"/certificate", nil))
		return w
	}

	withTemplate := route(staticTemplate{tpl: models.CertificateTemplate{BackgroundURL: "https://cdn.example.com/bg.png"}, ok: true})
	w := get(withTemplate, "attendee-2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"attendee_name":"Benito Carlos"`)
	assert.Contains(t, w.Body.String(), `"seminar_title":"Public Financial Management"`)
	assert.Contains(t, w.Body.String(), "https://cdn.example.com/bg.png")

	assert.Equal(t, http.StatusConflict, get(withTemplate, "attendee-1").Code)
	assert.Equal(t, http.StatusNotFound, get(withTemplate, "attendee-404").Code)

	w = get(route(staticTemplate{}), "attendee-2")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Please generate a certificate design to enable printing.")
}
