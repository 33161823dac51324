package repository

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUserNIMExists       = errors.New("user with nim already exists")
	ErrMeetingNotFound     = errors.New("meeting not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrParticipantExists   = errors.New("participant already added")
	ErrAttendanceNotFound  = errors.New("attendance not found")
	ErrAttendanceExists    = errors.New("attendance already recorded")
	ErrSessionNotFound     = errors.New("session not found")
)
