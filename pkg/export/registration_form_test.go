package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleForm() RegistrationForm {
	return RegistrationForm{
		Organization:  "Diocesan Youth Fellowship",
		EventName:     "Bible Quiz 2026",
		GroupNumber:   "12",
		LeaderName:    "Jane Doe",
		Church:        "St. Mark's",
		ChurchPlace:   "Kottayam",
		Language:      "English",
		Zone:          "North",
		ContactNumber: "9876543210",
		Email:         "jane@example.org",
		SubmittedAt:   time.Date(2026, 4, 2, 10, 30, 0, 0, time.UTC),
		Participants: []FormParticipant{
			{Name: "Jane Doe", Gender: "Female", DateOfBirth: "2004-02-11", MobileNo: "9876543210"},
			{Name: "José Roe", Gender: "Male", DateOfBirth: "2005-07-30"},
		},
	}
}

func TestRenderRegistrationFormProducesPDF(t *testing.T) {
	out, err := RenderRegistrationForm(sampleForm())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Greater(t, len(out), 1000)
}

func TestRenderRegistrationFormIsDeterministic(t *testing.T) {
	a, err := RenderRegistrationForm(sampleForm())
	require.NoError(t, err)
	b, err := RenderRegistrationForm(sampleForm())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRenderRegistrationFormHandlesFullGroupAndLongValues(t *testing.T) {
	f := sampleForm()
	f.Church = strings.Repeat("Very Long Church Name ", 10)
	f.Participants = nil
	for i := 0; i < 8; i++ {
		f.Participants = append(f.Participants, FormParticipant{Name: strings.Repeat("Name ", 20), Gender: "Male", DateOfBirth: "2001-01-01"})
	}

	out, err := RenderRegistrationForm(f)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderRegistrationFormRequiresGroupNumber(t *testing.T) {
	f := sampleForm()
	f.GroupNumber = ""
	_, err := RenderRegistrationForm(f)
	assert.Error(t, err)
}

func assertInOrder(t *testing.T, text string, parts ...string) {
	t.Helper()
	pos := 0
	for _, part := range parts {
		idx := strings.Index(text[pos:], part)
		if !assert.GreaterOrEqual(t, idx, 0, "missing or out of order: %s", part) {
			return
		}
		pos += idx + len(part)
	}
}

func TestRenderRegistrationFormContent(t *testing.T) {
	out, err := renderRegistrationForm(sampleForm(), false)
	require.NoError(t, err)
	text := string(out)

	assertInOrder(t, text, "(No.)", "(Name)", "(Gender)", "(Date of Birth)", "(Mobile)")
	assertInOrder(t, text, "(Declaration by Group Leader)", "(Declaration by Pastor)", "(Church Seal)")
	assertInOrder(t, text, "(1. ", "(2. ", "(3. ", "(4. ", "(5. ", "(6. ", "(7. ", "(8. ")
	assert.Contains(t, text, "(Signature of Group Leader)")
	assert.Contains(t, text, "(Signature of Pastor)")
	assert.Contains(t, text, "(Jane Doe)")
	assert.Contains(t, text, "(12)")
}
