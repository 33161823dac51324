package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/presensi/internal/domain"
	"github.com/immxrtalbeast/presensi/internal/repository/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// isDuplicateKey recognises unique violations from both postgres and sqlite,
// whether or not gorm translated them.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint")
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if user == nil {
		return errors.New("user is nil")
	}

	if err := r.db.WithContext(ctx).Create(toModelUser(user)).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrUserNIMExists
		}
		return err
	}
	return nil
}

func (r *GormUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormUserRepository) GetByNIM(ctx context.Context, nim string) (*domain.User, error) {
	return r.first(ctx, "nim = ?", strings.TrimSpace(nim))
}

func (r *GormUserRepository) first(ctx context.Context, query string, args ...any) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user model.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toDomainUser(&user), nil
}

func (r *GormUserRepository) Update(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if user == nil {
		return errors.New("user is nil")
	}

	userModel := toModelUser(user)
	updates := map[string]any{
		"nim":                userModel.NIM,
		"name":               userModel.Name,
		"divisi":             userModel.Divisi,
		"password":           userModel.Password,
		"can_create_meeting": userModel.CanCreateMeeting,
		"profile_photo":      userModel.ProfilePhoto,
		"updated_at":         userModel.UpdatedAt,
	}

	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userModel.ID).Updates(updates)
	if res.Error != nil {
		if isDuplicateKey(res.Error) {
			return ErrUserNIMExists
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *GormUserRepository) List(ctx context.Context, filter UserFilter) ([]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).Model(&model.User{})
	if d := strings.TrimSpace(filter.Divisi); d != "" {
		q = q.Where("divisi = ?", d)
	}
	if s := strings.ToLower(strings.TrimSpace(filter.Query)); s != "" {
		like := "%" + s + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(nim) LIKE ?", like, like)
	}

	var users []model.User
	if err := q.Order("name ASC").Find(&users).Error; err != nil {
		return nil, err
	}

	result := make([]*domain.User, 0, len(users))
	for i := range users {
		result = append(result, toDomainUser(&users[i]))
	}
	return result, nil
}

type GormMeetingRepository struct {
	db *gorm.DB
}

func NewGormMeetingRepository(db *gorm.DB) *GormMeetingRepository {
	return &GormMeetingRepository{db: db}
}

func (r *GormMeetingRepository) Create(ctx context.Context, meeting *domain.Meeting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if meeting == nil {
		return errors.New("meeting is nil")
	}

	meetingModel := toModelMeeting(meeting)
	now := meetingModel.CreatedAt

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(meetingModel).Error; err != nil {
			return err
		}
		creator := model.MeetingParticipant{
			ID:         uuid.New(),
			MeetingID:  meetingModel.ID,
			UserID:     meetingModel.CreatedBy,
			IsRequired: true,
			CreatedAt:  now,
		}
		if err := tx.Create(&creator).Error; err != nil {
			return err
		}
		present := model.Attendance{
			ID:          uuid.New(),
			MeetingID:   meetingModel.ID,
			UserID:      meetingModel.CreatedBy,
			Status:      string(domain.StatusPresent),
			CheckInTime: now,
			CreatedAt:   now,
		}
		return tx.Create(&present).Error
	})
}

func (r *GormMeetingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Meeting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var meeting model.Meeting
	if err := r.db.WithContext(ctx).First(&meeting, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMeetingNotFound
		}
		return nil, err
	}
	return toDomainMeeting(&meeting)
}

func (r *GormMeetingRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Meeting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*domain.Meeting{}, nil
	}

	var meetings []model.Meeting
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&meetings).Error; err != nil {
		return nil, err
	}
	return toDomainMeetings(meetings)
}

func (r *GormMeetingRepository) Update(ctx context.Context, meeting *domain.Meeting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if meeting == nil {
		return errors.New("meeting is nil")
	}

	meetingModel := toModelMeeting(meeting)
	updates := map[string]any{
		"title":       meetingModel.Title,
		"description": meetingModel.Description,
		"date":        meetingModel.Date,
		"start_time":  meetingModel.StartTime,
		"end_time":    meetingModel.EndTime,
		"location":    meetingModel.Location,
		"updated_at":  meetingModel.UpdatedAt,
	}

	res := r.db.WithContext(ctx).Model(&model.Meeting{}).Where("id = ?", meetingModel.ID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMeetingNotFound
	}
	return nil
}

func (r *GormMeetingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meeting_id = ?", id).Delete(&model.Attendance{}).Error; err != nil {
			return fmt.Errorf("delete attendance: %w", err)
		}
		if err := tx.Where("meeting_id = ?", id).Delete(&model.MeetingParticipant{}).Error; err != nil {
			return fmt.Errorf("delete participants: %w", err)
		}
		res := tx.Delete(&model.Meeting{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrMeetingNotFound
		}
		return nil
	})
}

func (r *GormMeetingRepository) ListFrom(ctx context.Context, from time.Time, limit int) ([]*domain.Meeting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).
		Where("date >= ?", from.Format(domain.DateLayout)).
		Order("date ASC").
		Order("start_time ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var meetings []model.Meeting
	if err := q.Find(&meetings).Error; err != nil {
		return nil, err
	}
	return toDomainMeetings(meetings)
}

func (r *GormMeetingRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Meeting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var meetings []model.Meeting
	err := r.db.WithContext(ctx).
		Joins("JOIN meeting_participants ON meeting_participants.meeting_id = meetings.id").
		Where("meeting_participants.user_id = ?", userID).
		Order("meetings.date DESC").
		Order("meetings.start_time DESC").
		Find(&meetings).Error
	if err != nil {
		return nil, err
	}
	return toDomainMeetings(meetings)
}

type GormParticipantRepository struct {
	db *gorm.DB
}

func NewGormParticipantRepository(db *gorm.DB) *GormParticipantRepository {
	return &GormParticipantRepository{db: db}
}

func (r *GormParticipantRepository) Get(ctx context.Context, meetingID, userID uuid.UUID) (*domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var p model.MeetingParticipant
	err := r.db.WithContext(ctx).
		Where("meeting_id = ? AND user_id = ?", meetingID, userID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return toDomainParticipant(&p), nil
}

func (r *GormParticipantRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var participants []model.MeetingParticipant
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("meeting_id = ?", meetingID).
		Order("created_at ASC").
		Find(&participants).Error
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Participant, 0, len(participants))
	for i := range participants {
		result = append(result, toDomainParticipant(&participants[i]))
	}
	return result, nil
}

func (r *GormParticipantRepository) Add(ctx context.Context, participants []*domain.Participant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(participants) == 0 {
		return nil
	}

	rows := make([]model.MeetingParticipant, 0, len(participants))
	for _, p := range participants {
		if p == nil {
			continue
		}
		rows = append(rows, model.MeetingParticipant{
			ID:         p.ID,
			MeetingID:  p.MeetingID,
			UserID:     p.UserID,
			IsRequired: p.IsRequired,
			CreatedAt:  p.CreatedAt.UTC(),
		})
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrParticipantExists
		}
		return err
	}
	return nil
}

func (r *GormParticipantRepository) Remove(ctx context.Context, meetingID uuid.UUID, userIDs []uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(userIDs) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Where("meeting_id = ? AND user_id IN ?", meetingID, userIDs).
		Delete(&model.MeetingParticipant{}).Error
}

type GormAttendanceRepository struct {
	db *gorm.DB
}

func NewGormAttendanceRepository(db *gorm.DB) *GormAttendanceRepository {
	return &GormAttendanceRepository{db: db}
}

func (r *GormAttendanceRepository) Get(ctx context.Context, meetingID, userID uuid.UUID) (*domain.Attendance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var a model.Attendance
	err := r.db.WithContext(ctx).
		Where("meeting_id = ? AND user_id = ?", meetingID, userID).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceNotFound
		}
		return nil, err
	}
	return toDomainAttendance(&a), nil
}

func (r *GormAttendanceRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Attendance, error) {
	return r.list(ctx, "meeting_id = ?", meetingID, "created_at ASC")
}

func (r *GormAttendanceRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Attendance, error) {
	return r.list(ctx, "user_id = ?", userID, "created_at DESC")
}

func (r *GormAttendanceRepository) list(ctx context.Context, query string, id uuid.UUID, order string) ([]*domain.Attendance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []model.Attendance
	if err := r.db.WithContext(ctx).Where(query, id).Order(order).Find(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]*domain.Attendance, 0, len(rows))
	for i := range rows {
		result = append(result, toDomainAttendance(&rows[i]))
	}
	return result, nil
}

func (r *GormAttendanceRepository) Insert(ctx context.Context, attendance *domain.Attendance) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if attendance == nil {
		return errors.New("attendance is nil")
	}

	if err := r.db.WithContext(ctx).Create(toModelAttendance(attendance)).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrAttendanceExists
		}
		return err
	}
	return nil
}

func (r *GormAttendanceRepository) InsertIfAbsent(ctx context.Context, rows []*domain.Attendance) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	models := make([]*model.Attendance, 0, len(rows))
	for _, a := range rows {
		if a != nil {
			models = append(models, toModelAttendance(a))
		}
	}

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "meeting_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&models)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

func (r *GormAttendanceRepository) DeleteForUsers(ctx context.Context, meetingID uuid.UUID, userIDs []uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(userIDs) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Where("meeting_id = ? AND user_id IN ?", meetingID, userIDs).
		Delete(&model.Attendance{}).Error
}

type GormSessionRepository struct {
	db *gorm.DB
}

func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

func (r *GormSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if session == nil {
		return errors.New("session is nil")
	}

	return r.db.WithContext(ctx).Create(&model.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		CreatedAt: session.CreatedAt.UTC(),
		ExpiresAt: session.ExpiresAt.UTC(),
	}).Error
}

func (r *GormSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var s model.Session
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &domain.Session{
		ID:        s.ID,
		UserID:    s.UserID,
		CreatedAt: s.CreatedAt.UTC(),
		ExpiresAt: s.ExpiresAt.UTC(),
	}, nil
}

func (r *GormSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Delete(&model.Session{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toModelUser(user *domain.User) *model.User {
	return &model.User{
		ID:               user.ID,
		NIM:              user.NIM,
		Name:             user.Name,
		Divisi:           optional(user.Divisi),
		Password:         user.PasswordHash,
		CanCreateMeeting: user.CanCreateMeeting,
		ProfilePhoto:     optional(user.ProfilePhoto),
		CreatedAt:        user.CreatedAt.UTC(),
		UpdatedAt:        user.UpdatedAt.UTC(),
	}
}

func toDomainUser(user *model.User) *domain.User {
	return &domain.User{
		ID:               user.ID,
		NIM:              user.NIM,
		Name:             user.Name,
		Divisi:           deref(user.Divisi),
		PasswordHash:     user.Password,
		CanCreateMeeting: user.CanCreateMeeting,
		ProfilePhoto:     deref(user.ProfilePhoto),
		CreatedAt:        user.CreatedAt.UTC(),
		UpdatedAt:        user.UpdatedAt.UTC(),
	}
}

func toModelMeeting(m *domain.Meeting) *model.Meeting {
	return &model.Meeting{
		ID:          m.ID,
		Title:       m.Title,
		Description: optional(m.Description),
		Date:        m.DateString(),
		StartTime:   m.StartTime.String(),
		EndTime:     m.EndTime.String(),
		Location:    optional(m.Location),
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

// toDomainMeeting rejects rows whose date or times do not parse.
func toDomainMeeting(m *model.Meeting) (*domain.Meeting, error) {
	date, err := domain.ParseDate(m.Date)
	if err != nil {
		return nil, fmt.Errorf("meeting %s: %w", m.ID, err)
	}
	start, err := domain.ParseTimeOfDay(m.StartTime)
	if err != nil {
		return nil, fmt.Errorf("meeting %s: %w", m.ID, err)
	}
	end, err := domain.ParseTimeOfDay(m.EndTime)
	if err != nil {
		return nil, fmt.Errorf("meeting %s: %w", m.ID, err)
	}
	return &domain.Meeting{
		ID:          m.ID,
		Title:       m.Title,
		Description: deref(m.Description),
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		Location:    deref(m.Location),
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}, nil
}

func toDomainMeetings(meetings []model.Meeting) ([]*domain.Meeting, error) {
	result := make([]*domain.Meeting, 0, len(meetings))
	for i := range meetings {
		m, err := toDomainMeeting(&meetings[i])
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, nil
}

func toDomainParticipant(p *model.MeetingParticipant) *domain.Participant {
	participant := &domain.Participant{
		ID:         p.ID,
		MeetingID:  p.MeetingID,
		UserID:     p.UserID,
		IsRequired: p.IsRequired,
		CreatedAt:  p.CreatedAt.UTC(),
	}
	if p.User != nil {
		participant.User = toDomainUser(p.User)
	}
	return participant
}

func toModelAttendance(a *domain.Attendance) *model.Attendance {
	return &model.Attendance{
		ID:          a.ID,
		MeetingID:   a.MeetingID,
		UserID:      a.UserID,
		Status:      string(a.Status),
		CheckInTime: a.CheckInTime.UTC(),
		CreatedAt:   a.CreatedAt.UTC(),
	}
}

func toDomainAttendance(a *model.Attendance) *domain.Attendance {
	return &domain.Attendance{
		ID:          a.ID,
		MeetingID:   a.MeetingID,
		UserID:      a.UserID,
		Status:      domain.AttendanceStatus(a.Status),
		CheckInTime: a.CheckInTime.UTC(),
		CreatedAt:   a.CreatedAt.UTC(),
	}
}
