package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"devsphere-api/common"
	"devsphere-api/config"
	"devsphere-api/model"
	"devsphere-api/service"
)

const refreshCookieName = "refreshToken"

type AuthHandler struct {
	service service.IAuthService
}

func NewAuthHandler(service service.IAuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

type authResponse struct {
	Message     string      `json:"message,omitempty"`
	User        *model.User `json:"user"`
	AccessToken string      `json:"accessToken"`
}

// Signup godoc
// @Summary      Create a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.SignupRequest  true  "signup payload"
// @Success      201      {object}  handler.authResponse
// @Failure      409      {object}  common.AppError
// @Failure      422      {object}  common.AppError
// @Router       /api/auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.SignupRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	result, err := h.service.Signup(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			return common.NewAppError(http.StatusConflict, "Email already registered", nil)
		case errors.Is(err, service.ErrUsernameTaken):
			return common.NewAppError(http.StatusConflict, "Username already taken", nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not create user", err)
		}
	}

	h.setRefreshCookie(w, result.RefreshToken)

	writeJSON(w, http.StatusCreated, authResponse{
		Message:     "User created successfully",
		User:        result.User,
		AccessToken: result.AccessToken,
	})
	return nil
}

// Login godoc
// @Summary      Authenticate with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.LoginRequest  true  "login payload"
// @Success      200      {object}  handler.authResponse
// @Failure      401      {object}  common.AppError
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	result, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return common.NewAppError(http.StatusUnauthorized, "Invalid email or password", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not log in", err)
	}

	h.setRefreshCookie(w, result.RefreshToken)

	writeJSON(w, http.StatusOK, authResponse{
		Message:     "Login successful",
		User:        result.User,
		AccessToken: result.AccessToken,
	})
	return nil
}

// Refresh godoc
// @Summary      Exchange the refresh cookie for a new token pair
// @Tags         auth
// @Produce      json
// @Success      200  {object}  handler.authResponse
// @Failure      401  {object}  common.AppError
// @Failure      403  {object}  common.AppError
// @Router       /api/auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		return common.NewAppError(http.StatusUnauthorized, "Refresh token required", nil)
	}

	result, err := h.service.Refresh(cookie.Value)
	if err != nil {
		if errors.Is(err, service.ErrRefreshTokenInvalid) {
			h.clearRefreshCookie(w)
			return common.NewAppError(http.StatusForbidden, "Invalid or expired refresh token", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not refresh session", err)
	}

	h.setRefreshCookie(w, result.RefreshToken)

	writeJSON(w, http.StatusOK, authResponse{
		User:        result.User,
		AccessToken: result.AccessToken,
	})
	return nil
}

// Logout godoc
// @Summary      Invalidate the current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		if err := h.service.Logout(cookie.Value); err != nil {
			return common.NewAppError(http.StatusInternalServerError, "Could not log out", err)
		}
	}

	h.clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
	return nil
}

// Me godoc
// @Summary      Resolve the caller's public profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]model.User
// @Failure      401  {object}  common.AppError
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := callerID(r)
	if appErr != nil {
		return appErr
	}

	user, err := h.service.CurrentUser(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.NewAppError(http.StatusNotFound, "User not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not load user", err)
	}

	writeJSON(w, http.StatusOK, map[string]*model.User{"user": user})
	return nil
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.service.RefreshTokenTTL().Seconds()),
		HttpOnly: true,
		Secure:   config.AppConfig.Server.Env == "production",
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.AppConfig.Server.Env == "production",
		SameSite: http.SameSiteLaxMode,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
