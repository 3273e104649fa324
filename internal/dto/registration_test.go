package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDropsUnnamedParticipants(t *testing.T) {
	req := QuizRegistrationRequest{
		LeaderName: "  Jane Doe ",
		Email:      " jane@example.org",
		Participants: []ParticipantInput{
			{Name: " Jane "},
			{Name: "   ", Gender: "Male"},
			{Name: ""},
			{Name: "John", MobileNo: " 98765 "},
		},
	}
	req.Normalize()

	assert.Equal(t, "Jane Doe", req.LeaderName)
	assert.Equal(t, "jane@example.org", req.Email)
	assert.Len(t, req.Participants, 2)
	assert.Equal(t, "Jane", req.Participants[0].Name)
	assert.Equal(t, "98765", req.Participants[1].MobileNo)
}
