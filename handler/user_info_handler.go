package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"devsphere-api/common"
	"devsphere-api/model"
	"devsphere-api/service"
)

type UserInfoHandler struct {
	service service.IUserInfoService
}

func NewUserInfoHandler(service service.IUserInfoService) *UserInfoHandler {
	return &UserInfoHandler{service: service}
}

// GetUserInfo godoc
// @Summary      Fetch a user's profile extension
// @Tags         user-info
// @Produce      json
// @Param        user_id  path      int  true  "user id"
// @Success      200      {object}  model.UserInfo
// @Failure      404      {object}  common.AppError
// @Router       /api/user-info/{user_id} [get]
func (h *UserInfoHandler) GetUserInfo(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := pathInt(r, "user_id")
	if appErr != nil {
		return appErr
	}

	info, err := h.service.GetUserInfo(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.NewAppError(http.StatusNotFound, "User info not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not load user info", err)
	}

	writeJSON(w, http.StatusOK, info)
	return nil
}

// UpdateUserInfo godoc
// @Summary      Replace the caller's profile extension
// @Tags         user-info
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  path      int                          true  "user id"
// @Param        request  body      model.UpdateUserInfoRequest  true  "profile payload"
// @Success      200      {object}  model.UserInfo
// @Failure      403      {object}  common.AppError
// @Failure      404      {object}  common.AppError
// @Router       /api/user-info/{user_id} [put]
func (h *UserInfoHandler) UpdateUserInfo(w http.ResponseWriter, r *http.Request) *common.AppError {
	caller, appErr := callerID(r)
	if appErr != nil {
		return appErr
	}
	userID, appErr := pathInt(r, "user_id")
	if appErr != nil {
		return appErr
	}

	var req model.UpdateUserInfoRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	info, err := h.service.UpdateUserInfo(userID, caller, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotProfileOwner):
			return common.NewAppError(http.StatusForbidden, "You can only edit your own profile", nil)
		case errors.Is(err, sql.ErrNoRows):
			return common.NewAppError(http.StatusNotFound, "User info not found", nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not update user info", err)
		}
	}

	writeJSON(w, http.StatusOK, info)
	return nil
}
