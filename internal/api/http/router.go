package http

import (
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Controllers struct {
	Auth       *AuthController
	Users      *UserController
	Meetings   *MeetingController
	QR         *QRController
	Attendance *AttendanceController
}

type RouterOptions struct {
	AllowedOrigins []string
	// MetricsPath and Metrics are both required to expose metrics.
	MetricsPath string
	Metrics     http.Handler
}

func SetupRouter(sessions SessionLoader, c Controllers, opts RouterOptions) *gin.Engine {
	router := gin.Default()
	config := cors.DefaultConfig()
	if len(opts.AllowedOrigins) == 0 || slices.Contains(opts.AllowedOrigins, "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = opts.AllowedOrigins
	}
	config.AllowCredentials = !config.AllowAllOrigins
	config.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"Origin",
		"Accept",
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	router.Use(cors.New(config))
	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})
	if opts.Metrics != nil && opts.MetricsPath != "" {
		router.GET(opts.MetricsPath, gin.WrapH(opts.Metrics))
	}

	api := router.Group("/api")

	if c.Auth != nil {
		api.POST("/auth/login", c.Auth.Login)
		api.POST("/auth/logout", RequireSession(sessions), c.Auth.Logout)
	}

	authed := api.Group("", RequireSession(sessions))

	if c.Users != nil {
		authed.GET("/me", c.Users.Me)
		authed.PUT("/me", c.Users.UpdateMe)
		authed.PUT("/me/password", c.Users.ChangePassword)
		authed.GET("/users", c.Users.ListUsers)
		authed.GET("/users/:userID", c.Users.GetUser)
	}

	meetings := authed.Group("/meetings")
	if c.Meetings != nil {
		meetings.GET("", c.Meetings.Overview)
		meetings.POST("", c.Meetings.CreateMeeting)
		meetings.GET("/upcoming", c.Meetings.Upcoming)
		meetings.GET("/:meetingID", c.Meetings.GetMeeting)
		meetings.PUT("/:meetingID", c.Meetings.UpdateMeeting)
		meetings.DELETE("/:meetingID", c.Meetings.DeleteMeeting)
		meetings.PUT("/:meetingID/participants", c.Meetings.SetParticipants)
	}
	if c.QR != nil {
		meetings.GET("/:meetingID/qr", c.QR.Current)
		meetings.GET("/:meetingID/qr.png", c.QR.PNG)
		meetings.GET("/:meetingID/qr/ws", c.QR.Stream)
	}

	if c.Attendance != nil {
		authed.POST("/attendance/scan", c.Attendance.Scan)
		authed.GET("/attendance/history", c.Attendance.History)
	}

	return router
}
