package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/immxrtalbeast/presensi/internal/api/http/converter"
	"github.com/immxrtalbeast/presensi/internal/service"
)

type AuthController struct {
	users service.UserInteractor
}

func NewAuthController(users service.UserInteractor) *AuthController {
	return &AuthController{users: users}
}

func (c *AuthController) Login(ctx *gin.Context) {
	type request struct {
		NIM      string `json:"nim"`
		Password string `json:"password"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	token, sess, err := c.users.Login(ctx.Request.Context(), req.NIM, req.Password)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": sess.ExpiresAt,
		"user":       converter.UserToApi(sess.User),
	})
}

func (c *AuthController) Logout(ctx *gin.Context) {
	if err := c.users.Logout(ctx.Request.Context(), currentSession(ctx)); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
