package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"devsphere-api/common"
	"devsphere-api/service"
)

type UserHandler struct {
	service service.IUserService
}

func NewUserHandler(service service.IUserService) *UserHandler {
	return &UserHandler{service: service}
}

// GetUser godoc
// @Summary      Fetch a user's public fields
// @Tags         users
// @Produce      json
// @Param        user_id  path      int  true  "user id"
// @Success      200      {object}  model.User
// @Failure      404      {object}  common.AppError
// @Router       /api/users/{user_id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := pathInt(r, "user_id")
	if appErr != nil {
		return appErr
	}

	user, err := h.service.GetUser(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.NewAppError(http.StatusNotFound, "User not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not load user", err)
	}

	writeJSON(w, http.StatusOK, user)
	return nil
}

// DeleteUser godoc
// @Summary      Delete the caller's account
// @Tags         users
// @Security     BearerAuth
// @Param        user_id  path  int  true  "user id"
// @Success      204
// @Failure      403  {object}  common.AppError
// @Failure      404  {object}  common.AppError
// @Router       /api/users/{user_id} [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	caller, appErr := callerID(r)
	if appErr != nil {
		return appErr
	}
	userID, appErr := pathInt(r, "user_id")
	if appErr != nil {
		return appErr
	}

	if err := h.service.DeleteUser(userID, caller); err != nil {
		switch {
		case errors.Is(err, service.ErrNotAccountOwner):
			return common.NewAppError(http.StatusForbidden, "You can only delete your own account", nil)
		case errors.Is(err, sql.ErrNoRows):
			return common.NewAppError(http.StatusNotFound, "User not found", nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not delete user", err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
