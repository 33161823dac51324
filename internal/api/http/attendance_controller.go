package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/immxrtalbeast/presensi/internal/api/http/converter"
	"github.com/immxrtalbeast/presensi/internal/service"
)

type AttendanceController struct {
	checkIn  service.CheckInInteractor
	meetings service.MeetingInteractor
}

func NewAttendanceController(checkIn service.CheckInInteractor, meetings service.MeetingInteractor) *AttendanceController {
	return &AttendanceController{checkIn: checkIn, meetings: meetings}
}

// Scan answers every decided outcome with its message. Only an accepted scan
// is 201; a failed commit is 503 so the client knows it may retry.
func (c *AttendanceController) Scan(ctx *gin.Context) {
	type request struct {
		Payload string `json:"payload"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := c.checkIn.Scan(ctx.Request.Context(), currentSession(ctx), req.Payload)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(scanStatus(res.Outcome), converter.ScanToApi(res))
}

func scanStatus(o service.ScanOutcome) int {
	switch o {
	case service.ScanAccepted:
		return http.StatusCreated
	case service.ScanAlreadyPresent:
		return http.StatusOK
	case service.ScanWriteFailure:
		return http.StatusServiceUnavailable
	case service.ScanMeetingNotFound:
		return http.StatusNotFound
	case service.ScanNotParticipant:
		return http.StatusForbidden
	default:
		return http.StatusUnprocessableEntity
	}
}

func (c *AttendanceController) History(ctx *gin.Context) {
	entries, err := c.meetings.History(ctx.Request.Context(), currentSession(ctx).User)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"history": converter.HistoryToApi(entries)})
}
