package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quillbase/blogserver/internal/constants"
	"github.com/quillbase/blogserver/internal/dto"
	apperrors "github.com/quillbase/blogserver/internal/errors"
	"github.com/quillbase/blogserver/internal/service"
	ctxutil "github.com/quillbase/blogserver/pkg/context"
	"github.com/quillbase/blogserver/pkg/logger"
	"github.com/quillbase/blogserver/pkg/validation"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetUser returns a user's public profile
func (h *UserHandler) GetUser(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "GetUser")

	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, "invalid user id"))
		return
	}

	user, err := h.userService.GetUser(ctx, id)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(constants.MsgNotFound, apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, user)
}

// ChangePassword updates the caller's own password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "ChangePassword")

	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, nil))
		return
	}

	var req dto.PasswordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid password change request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, validation.MessagesFromError(err)))
		return
	}

	if err := h.userService.ChangePassword(ctx, userID, &req); err != nil {
		logger.WarnWithContext(ctx, "Password change failed").
			Uint("user_id", userID).
			Err(err).
			Log()
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse("Password change failed", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgUpdated))
}

// ChangeAuthority sets another user's authority. Admin only.
func (h *UserHandler) ChangeAuthority(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "ChangeAuthority")

	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, "invalid user id"))
		return
	}

	var req dto.AuthorityChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid authority change request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, validation.MessagesFromError(err)))
		return
	}

	user, err := h.userService.ChangeAuthority(ctx, id, req.Authority)
	if err != nil {
		logger.WarnWithContext(ctx, "Authority change failed").
			Uint("user_id", id).
			Err(err).
			Log()
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse("Authority change failed", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser removes an account and its content. Admin only.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "DeleteUser")

	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, "invalid user id"))
		return
	}

	if err := h.userService.DeleteUser(ctx, id); err != nil {
		logger.WarnWithContext(ctx, "User deletion failed").
			Uint("user_id", id).
			Err(err).
			Log()
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse("User deletion failed", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgDeleted))
}
