package dto

import "strings"

// ParticipantInput is one participant row as submitted by the form.
type ParticipantInput struct {
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	DOB      string `json:"dob"`
	MobileNo string `json:"mobileNo"`
}

// QuizRegistrationRequest is the bible quiz group registration payload.
// Field order matters: validation reports the first failing field in
// declaration order.
type QuizRegistrationRequest struct {
	LeaderName        string             `json:"leaderName" validate:"required" label:"Leader name"`
	Church            string             `json:"church" validate:"required" label:"Church"`
	ChurchPlace       string             `json:"churchPlace" validate:"required" label:"Church place"`
	Language          string             `json:"language" validate:"required" label:"Language"`
	Zone              string             `json:"zone" validate:"required" label:"Zone"`
	ContactNumber     string             `json:"contactNumber" validate:"required" label:"Contact number"`
	AlternateNumber   string             `json:"alternateNumber"`
	Email             string             `json:"email" validate:"required,simple_email" label:"Email"`
	VerificationEmail string             `json:"verificationEmail"`
	VerificationToken string             `json:"verificationToken"`
	Participants      []ParticipantInput `json:"participants"`
}

// Normalize trims every text field and drops participants without a name.
func (r *QuizRegistrationRequest) Normalize() {
	r.LeaderName = strings.TrimSpace(r.LeaderName)
	r.Church = strings.TrimSpace(r.Church)
	r.ChurchPlace = strings.TrimSpace(r.ChurchPlace)
	r.Language = strings.TrimSpace(r.Language)
	r.Zone = strings.TrimSpace(r.Zone)
	r.ContactNumber = strings.TrimSpace(r.ContactNumber)
	r.AlternateNumber = strings.TrimSpace(r.AlternateNumber)
	r.Email = strings.TrimSpace(r.Email)
	r.VerificationEmail = strings.TrimSpace(r.VerificationEmail)
	r.VerificationToken = strings.TrimSpace(r.VerificationToken)

	named := make([]ParticipantInput, 0, len(r.Participants))
	for _, p := range r.Participants {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			continue
		}
		p.Gender = strings.TrimSpace(p.Gender)
		p.DOB = strings.TrimSpace(p.DOB)
		p.MobileNo = strings.TrimSpace(p.MobileNo)
		named = append(named, p)
	}
	r.Participants = named
}

// QuizRegistrationResponse is returned for every submission outcome.
type QuizRegistrationResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	RegistrationID string `json:"registrationId,omitempty"`
	GroupNumber    string `json:"groupNumber,omitempty"`
	PDFDownload    string `json:"pdfDownload,omitempty"`
	DocumentURL    string `json:"documentUrl,omitempty"`
}
