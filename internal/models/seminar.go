package models

// Seminar is an event attendees register for. Immutable once created.
type Seminar struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"` // ISO calendar date, e.g. 2024-08-15
	Speaker     string `json:"speaker"`
	Description string `json:"description"`
}

// NewSeminar holds the fields supplied when creating a seminar.
type NewSeminar struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Speaker     string `json:"speaker"`
	Description string `json:"description"`
}

// SeminarSummary is the registration/completion breakdown for one seminar.
type SeminarSummary struct {
	SeminarID       string `json:"seminar_id"`
	TotalRegistered int    `json:"total_registered"`
	TotalCompleted  int    `json:"total_completed"`
	TotalPending    int    `json:"total_pending"`
}
