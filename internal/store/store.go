// Package store holds the seminar and attendee collections in memory.
package store

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aura-webinar/certdesk/internal/models"
)

const dateLayout = "2006-01-02"

// Store is the in-memory entity store. Reads return copies; the only in-place
// mutation is an attendee's status. Nothing is ever deleted.
type Store struct {
	mu        sync.RWMutex
	seminars  []models.Seminar
	attendees []models.Attendee
	seminarIx map[string]int
	// attendee id -> position in attendees
	attendeeIx map[string]int
	newID      func(prefix string) string
}

// New creates a store holding the given rows in order.
func New(seminars []models.Seminar, attendees []models.Attendee) *Store {
	s := &Store{
		seminarIx:  make(map[string]int, len(seminars)),
		attendeeIx: make(map[string]int, len(attendees)),
		newID:      func(prefix string) string { return prefix + "-" + uuid.NewString() },
	}
	for _, sem := range seminars {
		s.seminarIx[sem.ID] = len(s.seminars)
		s.seminars = append(s.seminars, sem)
	}
	for _, a := range attendees {
		s.attendeeIx[a.ID] = len(s.attendees)
		s.attendees = append(s.attendees, a)
	}
	return s
}

// NewSeeded creates a store with the startup sample data.
func NewSeeded() *Store {
	return New(SeedSeminars(), SeedAttendees())
}

// ListSeminars returns all seminars in insertion order.
func (s *Store) ListSeminars() []models.Seminar {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Seminar, len(s.seminars))
	copy(out, s.seminars)
	return out
}

// GetSeminar returns one seminar by id.
func (s *Store) GetSeminar(id string) (models.Seminar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.seminarIx[id]
	if !ok {
		return models.Seminar{}, &NotFoundError{Entity: "seminar", ID: id}
	}
	return s.seminars[i], nil
}

// CreateSeminar validates the fields, assigns a fresh id and appends the seminar.
// Values are stored as given; whitespace-only values count as missing.
func (s *Store) CreateSeminar(in models.NewSeminar) (models.Seminar, error) {
	if err := requireFields(
		field{"title", in.Title},
		field{"date", in.Date},
		field{"speaker", in.Speaker},
		field{"description", in.Description},
	); err != nil {
		return models.Seminar{}, err
	}
	if _, err := time.Parse(dateLayout, in.Date); err != nil {
		return models.Seminar{}, &ValidationError{Field: "date", Reason: "must be a calendar date (YYYY-MM-DD)"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sem := models.Seminar{
		ID:          s.uniqueID("seminar", s.seminarIx),
		Title:       in.Title,
		Date:        in.Date,
		Speaker:     in.Speaker,
		Description: in.Description,
	}
	s.seminarIx[sem.ID] = len(s.seminars)
	s.seminars = append(s.seminars, sem)
	return sem, nil
}

// ListAttendees returns the attendees of one seminar in insertion order.
// An unknown seminar yields an empty slice.
func (s *Store) ListAttendees(seminarID string) []models.Attendee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Attendee, 0)
	for _, a := range s.attendees {
		if a.SeminarID == seminarID {
			out = append(out, a)
		}
	}
	return out
}

// GetAttendee returns one attendee by id.
func (s *Store) GetAttendee(id string) (models.Attendee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.attendeeIx[id]
	if !ok {
		return models.Attendee{}, &NotFoundError{Entity: "attendee", ID: id}
	}
	return s.attendees[i], nil
}

// CreateAttendee registers an attendee with status Registered. The seminar must exist.
// Values are stored as given; whitespace-only values count as missing.
func (s *Store) CreateAttendee(in models.NewAttendee) (models.Attendee, error) {
	if err := requireFields(
		field{"full_name", in.FullName},
		field{"email", in.Email},
		field{"contact_number", in.ContactNumber},
		field{"agency", in.Agency},
		field{"position", in.Position},
		field{"seminar_id", in.SeminarID},
	); err != nil {
		return models.Attendee{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seminarIx[in.SeminarID]; !ok {
		return models.Attendee{}, &NotFoundError{Entity: "seminar", ID: in.SeminarID}
	}
	a := models.Attendee{
		ID:            s.uniqueID("attendee", s.attendeeIx),
		FullName:      in.FullName,
		Email:         in.Email,
		ContactNumber: in.ContactNumber,
		Agency:        in.Agency,
		Position:      in.Position,
		SeminarID:     in.SeminarID,
		Status:        models.AttendanceRegistered,
	}
	s.attendeeIx[a.ID] = len(s.attendees)
	s.attendees = append(s.attendees, a)
	return a, nil
}

// SetAttendeeStatus replaces an attendee's status and returns the updated record.
func (s *Store) SetAttendeeStatus(attendeeID string, status models.AttendanceStatus) (models.Attendee, error) {
	if !status.Valid() {
		return models.Attendee{}, &ValidationError{Field: "status", Reason: "must be Registered or Completed"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.attendeeIx[attendeeID]
	if !ok {
		return models.Attendee{}, &NotFoundError{Entity: "attendee", ID: attendeeID}
	}
	s.attendees[i].Status = status
	return s.attendees[i], nil
}

// CountCompleted returns how many attendees of a seminar have completed it.
func (s *Store) CountCompleted(seminarID string) int {
	return len(s.CompletedAttendees(seminarID))
}

// CompletedAttendees returns the seminar's attendees with status Completed.
func (s *Store) CompletedAttendees(seminarID string) []models.Attendee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Attendee
	for _, a := range s.attendees {
		if a.SeminarID == seminarID && a.Status == models.AttendanceCompleted {
			out = append(out, a)
		}
	}
	return out
}

// Summary counts registered and completed attendees for a seminar.
func (s *Store) Summary(seminarID string) models.SeminarSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum := models.SeminarSummary{SeminarID: seminarID}
	for _, a := range s.attendees {
		if a.SeminarID != seminarID {
			continue
		}
		sum.TotalRegistered++
		if a.Status == models.AttendanceCompleted {
			sum.TotalCompleted++
		}
	}
	sum.TotalPending = sum.TotalRegistered - sum.TotalCompleted
	return sum
}

// uniqueID must be called with mu held.
func (s *Store) uniqueID(prefix string, taken map[string]int) string {
	for {
		id := s.newID(prefix)
		if _, ok := taken[id]; !ok {
			return id
		}
	}
}

type field struct {
	name  string
	value string
}

func requireFields(fields ...field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.name}
		}
	}
	return nil
}
