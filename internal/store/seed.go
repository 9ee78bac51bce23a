package store

import "github.com/aura-webinar/certdesk/internal/models"

// SeedSeminars is the sample seminar data loaded at startup.
func SeedSeminars() []models.Seminar {
	return []models.Seminar{
		{
			ID:          "seminar-1",
			Title:       "Digital Transformation in Public Service",
			Date:        "2024-08-15",
			Speaker:     "Dr. Juan Dela Cruz",
			Description: "Exploring the impact of technology on governance and public administration in the Philippines.",
		},
		{
			ID:          "seminar-2",
			Title:       "Leadership and Governance in the New Normal",
			Date:        "2024-09-10",
			Speaker:     "Sec. Maria Reyes",
			Description: "Strategies for effective leadership amidst contemporary challenges.",
		},
	}
}

// SeedAttendees is the sample attendee data loaded at startup.
func SeedAttendees() []models.Attendee {
	return []models.Attendee{
		{
			ID:            "attendee-1",
			FullName:      "Ana Santos",
			Email:         "ana.santos@gov.ph",
			ContactNumber: "09171234567",
			Agency:        "Department of Information and Communications Technology",
			Position:      "IT Officer",
			SeminarID:     "seminar-1",
			Status:        models.AttendanceRegistered,
		},
		{
			ID:            "attendee-2",
			FullName:      "Benito Carlos",
			Email:         "b.carlos@gov.ph",
			ContactNumber: "09209876543",
			Agency:        "Civil Service Commission",
			Position:      "Director",
			SeminarID:     "seminar-1",
			Status:        models.AttendanceCompleted,
		},
	}
}
