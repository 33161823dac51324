package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	NIM              string    `gorm:"column:nim;size:64;uniqueIndex;not null"`
	Name             string    `gorm:"size:255;not null"`
	Divisi           *string   `gorm:"size:128;index"`
	Password         string    `gorm:"size:255;not null"`
	CanCreateMeeting bool      `gorm:"not null;default:false"`
	ProfilePhoto     *string   `gorm:"size:512"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

type Meeting struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"size:255;not null"`
	Description *string   `gorm:"type:text"`
	Date        string    `gorm:"size:10;index;not null"`
	StartTime   string    `gorm:"size:8;not null"`
	EndTime     string    `gorm:"size:8;not null"`
	Location    *string   `gorm:"size:255"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

type MeetingParticipant struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	MeetingID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_participant_meeting_user,priority:1"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_participant_meeting_user,priority:2;index"`
	IsRequired bool      `gorm:"not null;default:true"`
	CreatedAt  time.Time `gorm:"not null"`
	User       *User     `gorm:"foreignKey:UserID;references:ID"`
}

type Attendance struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	MeetingID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_meeting_user,priority:1"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_meeting_user,priority:2;index"`
	Status      string    `gorm:"size:16;not null"`
	CheckInTime time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (Attendance) TableName() string {
	return "attendance"
}

type Session struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
}

// MigrateModels lists every table in creation order.
var MigrateModels = []any{
	&User{},
	&Meeting{},
	&MeetingParticipant{},
	&Attendance{},
	&Session{},
}
