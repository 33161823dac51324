package domain

import (
	"time"

	"github.com/google/uuid"
)

type AttendanceStatus string

const (
	// StatusPresent is written by a successful scan or for the meeting creator.
	StatusPresent AttendanceStatus = "hadir"
	// StatusMissed is written by reconciliation once a meeting has ended.
	StatusMissed AttendanceStatus = "terlewat"
)

func (s AttendanceStatus) Valid() bool {
	return s == StatusPresent || s == StatusMissed
}

// Attendance is the single check-in record of a user for a meeting.
type Attendance struct {
	ID          uuid.UUID
	MeetingID   uuid.UUID
	UserID      uuid.UUID
	Status      AttendanceStatus
	CheckInTime time.Time
	CreatedAt   time.Time
}

func NewAttendance(meetingID, userID uuid.UUID, status AttendanceStatus, at time.Time) *Attendance {
	return &Attendance{
		ID:          uuid.New(),
		MeetingID:   meetingID,
		UserID:      userID,
		Status:      status,
		CheckInTime: at.UTC(),
		CreatedAt:   time.Now().UTC(),
	}
}

func (a *Attendance) Present() bool {
	return a != nil && a.Status == StatusPresent
}
