package handlers

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"uniadmin-console/internal/middleware"
	"uniadmin-console/internal/models"
	"uniadmin-console/internal/validation"

	"github.com/gabriel-vasile/mimetype"
)

// multipartOverhead is allowed on top of the image itself for form framing.
const multipartOverhead = 64 << 10

// GetProfile handles GET /api/v1/profile
// @Summary      Admin profile
// @Description  Profile of the signed-in admin with NIC-derived details
// @Tags         profile
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  models.AdminProfile
// @Failure      401  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/v1/profile [get]
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	userName, ok := h.requireUserName(w, r)
	if !ok {
		return
	}

	profile, err := h.profile.GetProfile(r.Context(), userName)
	if err != nil {
		h.writeServiceError(w, r, err, "fetch profile")
		return
	}

	writeSuccess(w, h.app, profile, "Profile retrieved successfully")
}

// UpdateProfile handles PUT /api/v1/profile
// @Summary      Update admin profile
// @Description  Update username, email, NIC and image
// @Tags         profile
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        request  body  models.UpdateProfileRequest  true  "Profile"
// @Success      200  {object}  models.AdminProfile
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/v1/profile [put]
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userName, ok := h.requireUserName(w, r)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.app, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		writeError(w, h.app, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.profile.UpdateProfile(r.Context(), getActor(r.Context()), userName, req)
	if err != nil {
		h.writeServiceError(w, r, err, "update profile")
		return
	}

	if profile.Username != userName {
		http.SetCookie(w, sessionCookie(middleware.UsernameCookie, profile.Username, time.Time{}))
		h.app.Logger.Info().
			Str("request_id", getRequestID(r.Context())).
			Str("from", userName).
			Str("to", profile.Username).
			Msg("Admin renamed")
	}

	writeSuccess(w, h.app, profile, "Profile updated successfully")
}

// UploadProfileImage handles POST /api/v1/profile/image (multipart field "image")
// @Summary      Upload profile image
// @Description  Store an image as a data URL on the backend
// @Tags         profile
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        image  formData  file  true  "Image file"
// @Success      200  {object}  map[string]interface{}
// @Failure      413  {object}  map[string]interface{}
// @Failure      415  {object}  map[string]interface{}
// @Router       /api/v1/profile/image [post]
func (h *Handlers) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	userName, ok := h.requireUserName(w, r)
	if !ok {
		return
	}

	limit := h.app.Config.MaxImageBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	file, _, err := r.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, h.app, http.StatusRequestEntityTooLarge, "Image is too large")
			return
		}
		writeError(w, h.app, http.StatusBadRequest, "An image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		writeError(w, h.app, http.StatusBadRequest, "Failed to read image")
		return
	}
	if int64(len(data)) > limit {
		writeError(w, h.app, http.StatusRequestEntityTooLarge, "Image is too large")
		return
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		writeError(w, h.app, http.StatusUnsupportedMediaType, "File must be an image")
		return
	}

	dataURL := "data:" + mime.String() + ";base64," + base64.StdEncoding.EncodeToString(data)
	if err := h.profile.UpdateImage(r.Context(), getActor(r.Context()), userName, dataURL); err != nil {
		h.writeServiceError(w, r, err, "update profile image")
		return
	}

	writeSuccess(w, h.app, map[string]interface{}{
		"profileImage": dataURL,
		"mimeType":     mime.String(),
		"size":         len(data),
	}, "Profile image updated successfully")
}

// DecodeNIC handles POST /api/v1/nic/decode
// @Summary      Decode NIC
// @Description  Derive birthday, age and gender from a NIC number
// @Tags         profile
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        request  body  models.DecodeNICRequest  true  "NIC"
// @Success      200  {object}  models.DerivedDetails
// @Failure      422  {object}  map[string]interface{}
// @Router       /api/v1/nic/decode [post]
func (h *Handlers) DecodeNIC(w http.ResponseWriter, r *http.Request) {
	var req models.DecodeNICRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.app, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		writeError(w, h.app, http.StatusBadRequest, err.Error())
		return
	}

	details := h.profile.DecodeNIC(r.Context(), req.NIC)
	if !details.Valid {
		writeResponse(w, h.app, http.StatusUnprocessableEntity, false, details, "Invalid NIC number")
		return
	}

	writeSuccess(w, h.app, details, "NIC decoded successfully")
}

func (h *Handlers) requireUserName(w http.ResponseWriter, r *http.Request) (string, bool) {
	userName := getUserName(r.Context())
	if userName == "" {
		writeError(w, h.app, http.StatusUnauthorized, "Session expired. Please login again.")
		return "", false
	}
	return userName, true
}
