package models

import "time"

// Event is a published gathering people can sign up for.
type Event struct {
	ID                   string     `db:"id" json:"id"`
	Title                string     `db:"title" json:"title"`
	Slug                 string     `db:"slug" json:"slug"`
	Description          string     `db:"description" json:"description"`
	Venue                string     `db:"venue" json:"venue"`
	StartsAt             time.Time  `db:"starts_at" json:"startsAt"`
	RegistrationDeadline *time.Time `db:"registration_deadline" json:"registrationDeadline,omitempty"`
	Capacity             int        `db:"capacity" json:"capacity"`
	Published            bool       `db:"published" json:"published"`
	RegisteredCount      int        `db:"registered_count" json:"registeredCount"`
	CreatedAt            time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updatedAt"`
}

// Full reports whether a capacity-limited event has no seats left.
func (e Event) Full() bool {
	return e.Capacity > 0 && e.RegisteredCount >= e.Capacity
}

// RegistrationOpen reports whether sign-ups are accepted at now.
func (e Event) RegistrationOpen(now time.Time) bool {
	if !e.Published {
		return false
	}
	if e.RegistrationDeadline != nil {
		return !now.After(*e.RegistrationDeadline)
	}
	return now.Before(e.StartsAt)
}

// EventRegistration is a single attendee sign-up.
type EventRegistration struct {
	ID        string    `db:"id" json:"id"`
	EventID   string    `db:"event_id" json:"eventId"`
	FullName  string    `db:"full_name" json:"fullName"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Church    string    `db:"church" json:"church"`
	Notes     string    `db:"notes" json:"notes"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// EventFilter narrows event listings.
type EventFilter struct {
	PublishedOnly bool
	UpcomingFrom  *time.Time
	Search        string
	Page          int
	PageSize      int
}
