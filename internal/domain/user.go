package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is an organization member who can log in with a NIM and password.
type User struct {
	ID               uuid.UUID `json:"id"`
	NIM              string    `json:"nim"`
	Name             string    `json:"name"`
	Divisi           string    `json:"divisi,omitempty"`
	PasswordHash     string    `json:"-"`
	CanCreateMeeting bool      `json:"can_create_meeting"`
	ProfilePhoto     string    `json:"profile_photo,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func NewUser(nim, name, divisi, passwordHash string, canCreateMeeting bool) *User {
	now := time.Now().UTC()
	return &User{
		ID:               uuid.New(),
		NIM:              strings.TrimSpace(nim),
		Name:             strings.TrimSpace(name),
		Divisi:           strings.TrimSpace(divisi),
		PasswordHash:     passwordHash,
		CanCreateMeeting: canCreateMeeting,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
