package domain

import (
	"time"

	"github.com/google/uuid"
)

// Participant marks a user as required to attend a meeting.
type Participant struct {
	ID         uuid.UUID
	MeetingID  uuid.UUID
	UserID     uuid.UUID
	IsRequired bool
	CreatedAt  time.Time

	// User is filled by queries that join the users table.
	User *User
}

func NewParticipant(meetingID, userID uuid.UUID) *Participant {
	return &Participant{
		ID:         uuid.New(),
		MeetingID:  meetingID,
		UserID:     userID,
		IsRequired: true,
		CreatedAt:  time.Now().UTC(),
	}
}
