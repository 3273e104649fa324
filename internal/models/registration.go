package models

import "time"

// QuizRegistration is one group registered for the bible quiz.
type QuizRegistration struct {
	ID               string    `db:"id" json:"id"`
	LeaderName       string    `db:"leader_name" json:"leaderName"`
	ChurchName       string    `db:"church_name" json:"church"`
	ChurchPlace      string    `db:"church_place" json:"churchPlace"`
	Language         string    `db:"language" json:"language"`
	Zone             string    `db:"zone" json:"zone"`
	ContactNumber    string    `db:"contact_number" json:"contactNumber"`
	AlternateNumber  *string   `db:"alternate_number" json:"alternateNumber,omitempty"`
	Email            string    `db:"email" json:"email"`
	GroupNumber      string    `db:"group_number" json:"groupNumber"`
	ParticipantCount int       `db:"participant_count" json:"participantCount"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
}

// QuizParticipant is a member of a registered group, ordered by Position.
type QuizParticipant struct {
	ID             string  `db:"id" json:"id"`
	RegistrationID string  `db:"registration_id" json:"registrationId"`
	Position       int     `db:"position" json:"position"`
	Name           string  `db:"name" json:"name"`
	Gender         string  `db:"gender" json:"gender"`
	DateOfBirth    string  `db:"date_of_birth" json:"dob"`
	MobileNo       *string `db:"mobile_no" json:"mobileNo,omitempty"`
}

// QuizRegistrationDetail bundles a registration with its participants.
type QuizRegistrationDetail struct {
	QuizRegistration
	Participants []QuizParticipant `json:"participants"`
}

// QuizRegistrationFilter narrows the admin listing.
type QuizRegistrationFilter struct {
	Search   string
	Zone     string
	Language string
	Page     int
	PageSize int
}

// ZoneSummary aggregates registrations for one zone.
type ZoneSummary struct {
	Zone          string `db:"zone" json:"zone"`
	Registrations int    `db:"registrations" json:"registrations"`
	Participants  int    `db:"participants" json:"participants"`
}

// QuizSummary is the admin dashboard view of the quiz.
type QuizSummary struct {
	TotalRegistrations int           `json:"totalRegistrations"`
	TotalParticipants  int           `json:"totalParticipants"`
	LatestGroupNumber  string        `json:"latestGroupNumber,omitempty"`
	Zones              []ZoneSummary `json:"zones"`
	GeneratedAt        time.Time     `json:"generatedAt"`
}

// QuizRegistrationExportRow is a registration flattened for CSV/PDF export.
type QuizRegistrationExportRow struct {
	QuizRegistration
	ParticipantNames string `db:"participant_names" json:"participantNames"`
}
