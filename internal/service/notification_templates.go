package service

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/noah-isme/church-events-api/internal/models"
)

var notificationTemplates = template.Must(template.New("notifications").Parse(`
{{define "quiz"}}<p>Dear {{.LeaderName}},</p>
<p>Thank you for registering <strong>{{.Church}}</strong> for the {{.EventName}}.
Your group number is <strong>{{.GroupNumber}}</strong>.</p>
<table cellpadding="4" border="1" style="border-collapse:collapse">
<tr><th>No.</th><th>Name</th><th>Gender</th><th>Date of Birth</th></tr>
{{range .Participants}}<tr><td>{{.Position}}</td><td>{{.Name}}</td><td>{{.Gender}}</td><td>{{.DateOfBirth}}</td></tr>
{{end}}</table>
<p>The registration form is attached. Please print it, sign it and bring it on the day of the quiz.</p>{{end}}
{{define "event"}}<p>Dear {{.FullName}},</p>
<p>You are registered for <strong>{{.Title}}</strong>{{if .Venue}} at {{.Venue}}{{end}} on {{.StartsAt}}.</p>
<p>We look forward to seeing you.</p>{{end}}
{{define "otp"}}<p>Your verification code is</p>
<p style="font-size:24px;letter-spacing:4px"><strong>{{.Code}}</strong></p>
<p>It expires in {{.Minutes}} minutes. If you did not request it you can ignore this email.</p>{{end}}
`))

type quizMailData struct {
	LeaderName   string
	Church       string
	EventName    string
	GroupNumber  string
	Participants []models.QuizParticipant
}

type eventMailData struct {
	FullName string
	Title    string
	Venue    string
	StartsAt string
}

type otpMailData struct {
	Code    string
	Minutes int
}

func renderTemplate(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := notificationTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", name, err)
	}
	return buf.String(), nil
}

func quizMailText(d quizMailData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", d.LeaderName)
	fmt.Fprintf(&b, "Thank you for registering %s for the %s. Your group number is %s.\n\n", d.Church, d.EventName, d.GroupNumber)
	b.WriteString("Participants:\n")
	for _, p := range d.Participants {
		fmt.Fprintf(&b, "  %d. %s (%s, %s)\n", p.Position, p.Name, p.Gender, p.DateOfBirth)
	}
	b.WriteString("\nThe registration form is attached. Please print it, sign it and bring it on the day of the quiz.\n")
	return b.String()
}

func eventMailText(d eventMailData) string {
	venue := ""
	if d.Venue != "" {
		venue = " at " + d.Venue
	}
	return fmt.Sprintf("Dear %s,\n\nYou are registered for %s%s on %s.\n\nWe look forward to seeing you.\n", d.FullName, d.Title, venue, d.StartsAt)
}

func otpMailText(d otpMailData) string {
	return fmt.Sprintf("Your verification code is %s.\n\nIt expires in %d minutes. If you did not request it you can ignore this email.\n", d.Code, d.Minutes)
}

func formatEventTime(t time.Time) string {
	return t.Format("Monday, 02 January 2006 at 15:04")
}
