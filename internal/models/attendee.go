package models

// AttendanceStatus tracks an attendee through a seminar. Operators flip it by hand.
type AttendanceStatus string

const (
	AttendanceRegistered AttendanceStatus = "Registered"
	AttendanceCompleted  AttendanceStatus = "Completed"
)

// Valid reports whether s is a known status.
func (s AttendanceStatus) Valid() bool {
	return s == AttendanceRegistered || s == AttendanceCompleted
}

// Attendee is a person registered to a seminar. Status is the only mutable field.
type Attendee struct {
	ID            string           `json:"id"`
	FullName      string           `json:"full_name"`
	Email         string           `json:"email"`
	ContactNumber string           `json:"contact_number"`
	Agency        string           `json:"agency"`
	Position      string           `json:"position"`
	SeminarID     string           `json:"seminar_id"`
	Status        AttendanceStatus `json:"status"`
}

// NewAttendee holds the registration form fields.
type NewAttendee struct {
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	ContactNumber string `json:"contact_number"`
	Agency        string `json:"agency"`
	Position      string `json:"position"`
	SeminarID     string `json:"seminar_id"`
}
