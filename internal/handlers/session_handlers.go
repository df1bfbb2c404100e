package handlers

import (
	"net/http"
	"strings"
	"time"

	"uniadmin-console/internal/middleware"
	"uniadmin-console/internal/models"
	"uniadmin-console/internal/validation"
)

// SetSession stores the backend token issued at login in HttpOnly cookies.
// @Summary      Start session
// @Description  Store the backend token in HttpOnly cookies
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body  models.SessionRequest  true  "Backend token"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Router       /auth/session [post]
func (h *Handlers) SetSession(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r.Context())

	var req models.SessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.app, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		writeError(w, h.app, http.StatusBadRequest, err.Error())
		return
	}

	token := strings.TrimSpace(req.Token)
	claims, err := middleware.ParseClaims(token, h.app.Config.JWTSecret, h.now())
	if err != nil {
		h.app.Logger.Warn().
			Str("request_id", requestID).
			Err(err).
			Msg("Rejected session token")
		writeError(w, h.app, http.StatusUnauthorized, "Invalid token")
		return
	}

	userName := strings.TrimSpace(req.Username)
	if userName == "" {
		userName = middleware.UserNameFromClaims(claims)
	}

	var expires time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expires = exp.Time
	}

	http.SetCookie(w, sessionCookie(middleware.TokenCookie, token, expires))
	if userName != "" {
		http.SetCookie(w, sessionCookie(middleware.UsernameCookie, userName, expires))
	}

	data := map[string]interface{}{"username": userName}
	if !expires.IsZero() {
		data["expires_at"] = expires.Unix()
	}
	writeSuccess(w, h.app, data, "Session established")
}

// Logout clears the session cookies.
// @Summary      Logout
// @Description  Expire the session cookies
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /auth/logout [post]
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	past := h.now().Add(-time.Hour)
	http.SetCookie(w, sessionCookie(middleware.TokenCookie, "", past))
	http.SetCookie(w, sessionCookie(middleware.UsernameCookie, "", past))

	writeSuccess(w, h.app, nil, "Logout successful")
}

// sessionCookie builds an HttpOnly cookie. A zero expiry makes it a browser
// session cookie.
func sessionCookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}
}
