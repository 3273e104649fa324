package dto

import "time"

// EventRequest creates or replaces an event.
type EventRequest struct {
	Title                string     `json:"title" validate:"required,max=200"`
	Slug                 string     `json:"slug" validate:"omitempty,max=120"`
	Description          string     `json:"description"`
	Venue                string     `json:"venue" validate:"max=200"`
	StartsAt             time.Time  `json:"startsAt" validate:"required"`
	RegistrationDeadline *time.Time `json:"registrationDeadline"`
	Capacity             int        `json:"capacity" validate:"gte=0"`
	Published            bool       `json:"published"`
}

// EventRegistrationRequest is the public sign-up payload for an event.
type EventRegistrationRequest struct {
	FullName string `json:"fullName" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,simple_email"`
	Phone    string `json:"phone" validate:"omitempty,max=40"`
	Church   string `json:"church" validate:"max=200"`
	Notes    string `json:"notes" validate:"max=1000"`
}

// EventRegistrationResponse mirrors the quiz response shape.
type EventRegistrationResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	RegistrationID string `json:"registrationId,omitempty"`
}
