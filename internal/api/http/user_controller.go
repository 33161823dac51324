package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/immxrtalbeast/presensi/internal/api/http/converter"
	"github.com/immxrtalbeast/presensi/internal/repository"
	"github.com/immxrtalbeast/presensi/internal/service"
)

type UserController struct {
	users service.UserInteractor
}

func NewUserController(users service.UserInteractor) *UserController {
	return &UserController{users: users}
}

func (c *UserController) Me(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"user": converter.UserToApi(currentSession(ctx).User)})
}

func (c *UserController) UpdateMe(ctx *gin.Context) {
	type request struct {
		Name         *string `json:"name"`
		Divisi       *string `json:"divisi"`
		ProfilePhoto *string `json:"profile_photo"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := c.users.UpdateProfile(ctx.Request.Context(), currentSession(ctx).User.ID, service.ProfileInput{
		Name:         req.Name,
		Divisi:       req.Divisi,
		ProfilePhoto: req.ProfilePhoto,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": converter.UserToApi(user)})
}

func (c *UserController) ChangePassword(ctx *gin.Context) {
	type request struct {
		OldPassword     string `json:"old_password"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := c.users.ChangePassword(ctx.Request.Context(), currentSession(ctx).User.ID, service.PasswordChange{
		Old:     req.OldPassword,
		New:     req.NewPassword,
		Confirm: req.ConfirmPassword,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (c *UserController) ListUsers(ctx *gin.Context) {
	users, err := c.users.ListUsers(ctx.Request.Context(), repository.UserFilter{
		Divisi: ctx.Query("divisi"),
		Query:  ctx.Query("q"),
	})
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"users": converter.UsersToApi(users)})
}

func (c *UserController) GetUser(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("userID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := c.users.GetUser(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": converter.UserToApi(user)})
}
