package handlers

import (
	"net/http"

	"uniadmin-console/internal/models"
	"uniadmin-console/internal/validation"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// ListUsers handles GET /api/v1/users?search=&role=&page=
// @Summary      List users
// @Description  Search, filter by role and paginate users
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        search  query  string  false  "Username or email substring"
// @Param        role    query  string  false  "Role filter"
// @Param        page    query  int     false  "Page number"
// @Success      200  {object}  models.UserPage
// @Failure      403  {object}  map[string]interface{}
// @Router       /api/v1/users [get]
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("handlers").Start(r.Context(), "Handlers.ListUsers")
	defer span.End()

	q := models.UserQuery{
		Search: r.URL.Query().Get("search"),
		Role:   r.URL.Query().Get("role"),
		Page:   queryInt(r, "page", 1),
	}
	span.SetAttributes(attribute.String("users.role", q.Role), attribute.Int("users.page", q.Page))

	page, err := h.users.ListUsers(ctx, q)
	if err != nil {
		h.writeServiceError(w, r.WithContext(ctx), err, "fetch users")
		return
	}

	writeSuccess(w, h.app, page, "Users retrieved successfully")
}

// GetUser handles GET /api/v1/users/{userName}
// @Summary      Get user
// @Description  User details with NIC-derived fields
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        userName  path  string  true  "Username"
// @Success      200  {object}  models.UserDetails
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/v1/users/{userName} [get]
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	userName := mux.Vars(r)["userName"]

	details, err := h.users.GetUser(r.Context(), userName)
	if err != nil {
		h.writeServiceError(w, r, err, "fetch user")
		return
	}

	writeSuccess(w, h.app, details, "User retrieved successfully")
}

// UpdateUserRole handles PUT /api/v1/users/{userName}/role
// @Summary      Update user role
// @Description  Set the role to user, moderator or admin
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        userName  path  string                    true  "Username"
// @Param        request   body  models.UpdateRoleRequest  true  "Role"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/v1/users/{userName}/role [put]
func (h *Handlers) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r.Context())
	userName := mux.Vars(r)["userName"]

	var req models.UpdateRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.app, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		writeError(w, h.app, http.StatusBadRequest, err.Error())
		return
	}

	actor := getActor(r.Context())
	if err := h.users.UpdateRole(r.Context(), actor, userName, req.Role); err != nil {
		h.writeServiceError(w, r, err, "update role")
		return
	}

	h.app.Logger.Info().
		Str("request_id", requestID).
		Str("actor", actor).
		Str("user", userName).
		Str("role", req.Role).
		Msg("User role updated")

	writeSuccess(w, h.app, map[string]string{"userName": userName, "role": req.Role}, "Role updated successfully")
}

// ToggleUserBlock handles PUT /api/v1/users/{userName}/block
// @Summary      Toggle user block
// @Description  Block or unblock a user
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        userName  path  string  true  "Username"
// @Success      200  {object}  models.BlockStatus
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/v1/users/{userName}/block [put]
func (h *Handlers) ToggleUserBlock(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r.Context())
	userName := mux.Vars(r)["userName"]
	actor := getActor(r.Context())

	status, err := h.users.ToggleBlock(r.Context(), actor, userName)
	if err != nil {
		h.writeServiceError(w, r, err, "toggle block status")
		return
	}

	h.app.Logger.Info().
		Str("request_id", requestID).
		Str("actor", actor).
		Str("user", userName).
		Bool("blocked", status.IsBlocked).
		Msg("User block status toggled")

	message := "User unblocked successfully"
	if status.IsBlocked {
		message = "User blocked successfully"
	}
	writeSuccess(w, h.app, status, message)
}
