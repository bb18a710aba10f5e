package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nfadhel/tilawah/middleware"
	"github.com/nfadhel/tilawah/services"
	"github.com/nfadhel/tilawah/utils"
)

// getUserID extracts the authenticated user id placed by the auth middleware.
func getUserID(ctx *gin.Context) (uint, bool) {
	v, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// respondServiceError translates service sentinel errors onto the response
// taxonomy; anything unrecognized becomes a 500 with the given code/message.
func respondServiceError(ctx *gin.Context, err error, internalCode int, internalMsg string) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40420, "record not found")
	case errors.Is(err, services.ErrInvalidInput):
		utils.Error(ctx, http.StatusBadRequest, 40010, strings.TrimSpace(err.Error()))
	default:
		if utils.Sugar != nil {
			utils.Sugar.Errorf("%s: %v", internalMsg, err)
		}
		utils.Error(ctx, http.StatusInternalServerError, internalCode, internalMsg)
	}
}
