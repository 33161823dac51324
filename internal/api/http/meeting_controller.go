package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/immxrtalbeast/presensi/internal/api/http/converter"
	"github.com/immxrtalbeast/presensi/internal/repository"
	"github.com/immxrtalbeast/presensi/internal/service"
)

const defaultUpcomingLimit = 5

type MeetingController struct {
	meetings service.MeetingInteractor
}

func NewMeetingController(meetings service.MeetingInteractor) *MeetingController {
	return &MeetingController{meetings: meetings}
}

type meetingRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

func (r meetingRequest) input() service.MeetingInput {
	return service.MeetingInput{
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		Date:        r.Date,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
	}
}

// meetingID parses the path id. A malformed id cannot name a stored meeting,
// so it answers the same way as an unknown one.
func meetingID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("meetingID"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": repository.ErrMeetingNotFound.Error()})
		return uuid.Nil, false
	}
	return id, true
}

func (c *MeetingController) CreateMeeting(ctx *gin.Context) {
	var req meetingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	meeting, err := c.meetings.CreateMeeting(ctx.Request.Context(), currentSession(ctx).User, req.input())
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"meeting": converter.MeetingToApi(meeting)})
}

func (c *MeetingController) UpdateMeeting(ctx *gin.Context) {
	id, ok := meetingID(ctx)
	if !ok {
		return
	}

	var req meetingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	meeting, err := c.meetings.UpdateMeeting(ctx.Request.Context(), currentSession(ctx).User, id, req.input())
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"meeting": converter.MeetingToApi(meeting)})
}

func (c *MeetingController) DeleteMeeting(ctx *gin.Context) {
	id, ok := meetingID(ctx)
	if !ok {
		return
	}

	if err := c.meetings.DeleteMeeting(ctx.Request.Context(), currentSession(ctx).User, id); err != nil {
		writeError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (c *MeetingController) GetMeeting(ctx *gin.Context) {
	id, ok := meetingID(ctx)
	if !ok {
		return
	}

	detail, err := c.meetings.MeetingDetail(ctx.Request.Context(), currentSession(ctx).User, id)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, converter.MeetingDetailToApi(detail))
}

func (c *MeetingController) SetParticipants(ctx *gin.Context) {
	id, ok := meetingID(ctx)
	if !ok {
		return
	}

	type request struct {
		UserIDs []string `json:"user_ids"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	userIDs := make([]uuid.UUID, 0, len(req.UserIDs))
	for _, raw := range req.UserIDs {
		uid, err := uuid.Parse(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id", "details": raw})
			return
		}
		userIDs = append(userIDs, uid)
	}

	change, err := c.meetings.SetParticipants(ctx.Request.Context(), currentSession(ctx).User, id, userIDs)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"added": change.Added, "removed": change.Removed})
}

func (c *MeetingController) Overview(ctx *gin.Context) {
	overview, err := c.meetings.Overview(ctx.Request.Context(), currentSession(ctx).User)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, converter.OverviewToApi(overview))
}

func (c *MeetingController) Upcoming(ctx *gin.Context) {
	limit := defaultUpcomingLimit
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	meetings, err := c.meetings.Upcoming(ctx.Request.Context(), limit)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"meetings": converter.MeetingsToApi(meetings)})
}
