package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/immxrtalbeast/presensi/internal/repository"
	"github.com/immxrtalbeast/presensi/internal/service"
	"github.com/immxrtalbeast/presensi/internal/session"
)

type SessionLoader interface {
	Load(ctx context.Context, token string) (*session.Session, error)
}

// RequireSession rejects requests without a live session and stores the
// session in the request context. Browsers cannot set headers on websocket
// handshakes, so a token query parameter is accepted as well.
func RequireSession(sessions SessionLoader) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx.GetHeader("Authorization"))
		if token == "" {
			token = ctx.Query("token")
		}
		if token == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		sess, err := sessions.Load(ctx.Request.Context(), token)
		if err != nil {
			if errors.Is(err, session.ErrUnauthorized) {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
				return
			}
			ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		ctx.Request = ctx.Request.WithContext(session.WithSession(ctx.Request.Context(), sess))
		ctx.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func currentSession(ctx *gin.Context) *session.Session {
	sess, _ := session.FromContext(ctx.Request.Context())
	return sess
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrUnauthorized),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrMeetingNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrMeetingEnded):
		return http.StatusGone
	case errors.Is(err, repository.ErrUserNIMExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidMeeting),
		errors.Is(err, service.ErrUnknownUser),
		errors.Is(err, service.ErrCredentialsRequired),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrPasswordRequired),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrPasswordUnchanged),
		errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrWrongPassword):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError hides the text of unexpected failures from clients.
func writeError(ctx *gin.Context, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	ctx.JSON(status, gin.H{"error": msg})
}
