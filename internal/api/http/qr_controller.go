package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/immxrtalbeast/presensi/internal/api/http/converter"
	"github.com/immxrtalbeast/presensi/internal/domain"
	"github.com/immxrtalbeast/presensi/internal/metrics"
	"github.com/immxrtalbeast/presensi/internal/qr"
	"github.com/immxrtalbeast/presensi/internal/service"
	"github.com/immxrtalbeast/presensi/lib/logger/sl"
)

const writeWait = 10 * time.Second

type QRController struct {
	meetings service.MeetingInteractor
	clock    domain.Clock
	tick     time.Duration
	pngSize  int
	metrics  *metrics.Metrics
	log      *slog.Logger
	upgrader websocket.Upgrader
}

type QROptions struct {
	Clock   domain.Clock
	Tick    time.Duration
	PNGSize int
	Metrics *metrics.Metrics
	Log     *slog.Logger
}

func NewQRController(meetings service.MeetingInteractor, opts QROptions) *QRController {
	if opts.Clock == nil {
		opts.Clock = domain.SystemClock{}
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	return &QRController{
		meetings: meetings,
		clock:    opts.Clock,
		tick:     opts.Tick,
		pngSize:  opts.PNGSize,
		metrics:  opts.Metrics,
		log:      opts.Log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (c *QRController) currentFrame(ctx *gin.Context) (qr.Frame, bool) {
	id, ok := meetingID(ctx)
	if !ok {
		return qr.Frame{}, false
	}

	meeting, err := c.meetings.QRMeeting(ctx.Request.Context(), currentSession(ctx).User, id)
	if err != nil {
		writeError(ctx, err)
		return qr.Frame{}, false
	}

	frame, _ := qr.NewFrame(meeting.ID.String(), c.clock.Now())
	return frame, true
}

func (c *QRController) Current(ctx *gin.Context) {
	frame, ok := c.currentFrame(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, converter.FrameToApi(frame))
}

func (c *QRController) PNG(ctx *gin.Context) {
	frame, ok := c.currentFrame(ctx)
	if !ok {
		return
	}

	png, err := qr.RenderPNG(frame.Encoded, c.pngSize)
	if err != nil {
		c.log.Error("failed to render qr", sl.Err(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	ctx.Header("Cache-Control", "no-store")
	ctx.Data(http.StatusOK, "image/png", png)
}

// Stream pushes a frame every tick until the client leaves or the meeting
// ends. Each connection owns its rotator.
func (c *QRController) Stream(ctx *gin.Context) {
	const op = "api.http.qr.stream"

	id, ok := meetingID(ctx)
	if !ok {
		return
	}
	meeting, err := c.meetings.QRMeeting(ctx.Request.Context(), currentSession(ctx).User, id)
	if err != nil {
		writeError(ctx, err)
		return
	}

	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.log.Warn("failed to upgrade connection", slog.String("op", op), sl.Err(err))
		return
	}
	defer conn.Close()

	c.metrics.StreamOpened()
	defer c.metrics.StreamClosed()

	log := c.log.With(slog.String("op", op), slog.String("meeting_id", meeting.ID.String()))
	log.Debug("qr stream opened")

	streamCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rotator := qr.NewRotator(meeting.ID.String(), c.clock, c.tick)
	frames, unsubscribe := rotator.Subscribe(4)
	defer unsubscribe()
	go rotator.Run(streamCtx)

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for frame := range frames {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if c.meetings.Ended(meeting) {
			_ = conn.WriteJSON(gin.H{"type": "ended", "meeting_id": meeting.ID})
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "meeting ended"))
			break
		}
		if err := conn.WriteJSON(converter.FrameToApi(frame)); err != nil {
			log.Debug("qr stream write failed", sl.Err(err))
			break
		}
	}
	log.Debug("qr stream closed")
}
