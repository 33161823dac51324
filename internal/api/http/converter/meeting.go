package converter

import (
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/presensi/internal/domain"
	"github.com/immxrtalbeast/presensi/internal/service"
)

type MeetingResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Date        string    `json:"date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type AttendanceResponse struct {
	ID          uuid.UUID `json:"id"`
	MeetingID   uuid.UUID `json:"meeting_id"`
	UserID      uuid.UUID `json:"user_id"`
	Status      string    `json:"status"`
	CheckInTime time.Time `json:"check_in_time"`
}

type MeetingSummaryResponse struct {
	Meeting    *MeetingResponse    `json:"meeting"`
	Phase      domain.Phase        `json:"phase"`
	Attendance *AttendanceResponse `json:"attendance,omitempty"`
}

type OverviewResponse struct {
	MustAttend []MeetingSummaryResponse `json:"must_attend"`
	Missed     []MeetingSummaryResponse `json:"missed"`
	Attended   []MeetingSummaryResponse `json:"attended"`
}

type ParticipantResponse struct {
	User       *UserResponse       `json:"user"`
	IsCreator  bool                `json:"is_creator"`
	Attendance *AttendanceResponse `json:"attendance,omitempty"`
}

type StatsResponse struct {
	Total    int `json:"total"`
	Attended int `json:"attended"`
	Rate     int `json:"rate"`
}

type MeetingDetailResponse struct {
	Meeting      *MeetingResponse      `json:"meeting"`
	Phase        domain.Phase          `json:"phase"`
	IsCreator    bool                  `json:"is_creator"`
	Attendance   *AttendanceResponse   `json:"attendance,omitempty"`
	Participants []ParticipantResponse `json:"participants"`
	Stats        StatsResponse         `json:"stats"`
}

type HistoryResponse struct {
	Meeting    *MeetingResponse    `json:"meeting"`
	Attendance *AttendanceResponse `json:"attendance"`
}

func MeetingToApi(m *domain.Meeting) *MeetingResponse {
	if m == nil {
		return nil
	}
	return &MeetingResponse{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Location:    m.Location,
		Date:        m.DateString(),
		StartTime:   m.StartTime.String(),
		EndTime:     m.EndTime.String(),
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func MeetingsToApi(ms []*domain.Meeting) []*MeetingResponse {
	out := make([]*MeetingResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, MeetingToApi(m))
	}
	return out
}

func AttendanceToApi(a *domain.Attendance) *AttendanceResponse {
	if a == nil {
		return nil
	}
	return &AttendanceResponse{
		ID:          a.ID,
		MeetingID:   a.MeetingID,
		UserID:      a.UserID,
		Status:      string(a.Status),
		CheckInTime: a.CheckInTime,
	}
}

func OverviewToApi(o *service.Overview) *OverviewResponse {
	return &OverviewResponse{
		MustAttend: summariesToApi(o.MustAttend),
		Missed:     summariesToApi(o.Missed),
		Attended:   summariesToApi(o.Attended),
	}
}

func summariesToApi(in []service.MeetingSummary) []MeetingSummaryResponse {
	out := make([]MeetingSummaryResponse, 0, len(in))
	for _, s := range in {
		out = append(out, MeetingSummaryResponse{
			Meeting:    MeetingToApi(s.Meeting),
			Phase:      s.Phase,
			Attendance: AttendanceToApi(s.Attendance),
		})
	}
	return out
}

func MeetingDetailToApi(d *service.MeetingDetail) *MeetingDetailResponse {
	participants := make([]ParticipantResponse, 0, len(d.Participants))
	for _, p := range d.Participants {
		participants = append(participants, ParticipantResponse{
			User:       UserToApi(p.User),
			IsCreator:  p.IsCreator,
			Attendance: AttendanceToApi(p.Attendance),
		})
	}
	return &MeetingDetailResponse{
		Meeting:      MeetingToApi(d.Meeting),
		Phase:        d.Phase,
		IsCreator:    d.IsCreator,
		Attendance:   AttendanceToApi(d.ViewerAttendance),
		Participants: participants,
		Stats: StatsResponse{
			Total:    d.Stats.Total,
			Attended: d.Stats.Attended,
			Rate:     d.Stats.Rate,
		},
	}
}

func HistoryToApi(entries []service.HistoryEntry) []HistoryResponse {
	out := make([]HistoryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryResponse{
			Meeting:    MeetingToApi(e.Meeting),
			Attendance: AttendanceToApi(e.Attendance),
		})
	}
	return out
}
