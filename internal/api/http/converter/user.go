package converter

import (
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/presensi/internal/domain"
)

type UserResponse struct {
	ID               uuid.UUID `json:"id"`
	NIM              string    `json:"nim"`
	Name             string    `json:"name"`
	Divisi           string    `json:"divisi"`
	ProfilePhoto     string    `json:"profile_photo,omitempty"`
	CanCreateMeeting bool      `json:"can_create_meeting"`
	CreatedAt        time.Time `json:"created_at"`
}

func UserToApi(u *domain.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:               u.ID,
		NIM:              u.NIM,
		Name:             u.Name,
		Divisi:           u.Divisi,
		ProfilePhoto:     u.ProfilePhoto,
		CanCreateMeeting: u.CanCreateMeeting,
		CreatedAt:        u.CreatedAt,
	}
}

func UsersToApi(users []*domain.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, UserToApi(u))
	}
	return out
}
