package models

import "time"

// BulkResult is the outcome of a bulk certificate send. Success=false is a business
// outcome, not an error.
type BulkResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Sent    int    `json:"sent"`
}

// CertificateEmail status values.
const (
	CertificateEmailQueued = "queued"
	CertificateEmailSent   = "sent"
	CertificateEmailFailed = "failed"
)

// CertificateEmail records one simulated certificate delivery.
type CertificateEmail struct {
	ID             string    `json:"id"`
	SeminarID      string    `json:"seminar_id"`
	AttendeeID     string    `json:"attendee_id"`
	RecipientEmail string    `json:"recipient_email"`
	Subject        string    `json:"subject"`
	Status         string    `json:"status"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// CertificateTemplate is the current certificate background produced by the designer.
type CertificateTemplate struct {
	BackgroundURL string    `json:"background_url"`
	Prompt        string    `json:"prompt"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// CertificateView carries everything needed to render a printable certificate.
type CertificateView struct {
	AttendeeID    string `json:"attendee_id"`
	AttendeeName  string `json:"attendee_name"`
	SeminarTitle  string `json:"seminar_title"`
	SeminarDate   string `json:"seminar_date"`
	SpeakerName   string `json:"speaker_name"`
	BackgroundURL string `json:"background_url"`
}
