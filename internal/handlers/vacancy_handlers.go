package handlers

import (
	"net/http"

	"uniadmin-console/internal/models"
	"uniadmin-console/internal/validation"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// ListVacancies handles GET /api/v1/vacancies?search=&status=&page=
// @Summary      List vacancies
// @Description  Search, filter by status and paginate vacancies
// @Tags         vacancies
// @Security     Bearer
// @Produce      json
// @Param        search  query  string  false  "Role, department or faculty substring"
// @Param        status  query  string  false  "active, hidden or all"
// @Param        page    query  int     false  "Page number"
// @Success      200  {object}  models.VacancyPage
// @Router       /api/v1/vacancies [get]
func (h *Handlers) ListVacancies(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("handlers").Start(r.Context(), "Handlers.ListVacancies")
	defer span.End()

	q := models.VacancyQuery{
		Search: r.URL.Query().Get("search"),
		Status: r.URL.Query().Get("status"),
		Page:   queryInt(r, "page", 1),
	}
	span.SetAttributes(attribute.String("vacancies.status", q.Status), attribute.Int("vacancies.page", q.Page))

	page, err := h.vacancies.ListVacancies(ctx, q)
	if err != nil {
		h.writeServiceError(w, r.WithContext(ctx), err, "fetch vacancies")
		return
	}

	writeSuccess(w, h.app, page, "Vacancies retrieved successfully")
}

// GetVacancy handles GET /api/v1/vacancies/{id}
// @Summary      Get vacancy
// @Description  Fetch one vacancy
// @Tags         vacancies
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Vacancy ID"
// @Success      200  {object}  models.Vacancy
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/v1/vacancies/{id} [get]
func (h *Handlers) GetVacancy(w http.ResponseWriter, r *http.Request) {
	v, err := h.vacancies.GetVacancy(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, r, err, "fetch vacancy")
		return
	}

	writeSuccess(w, h.app, v, "Vacancy retrieved successfully")
}

// CreateVacancy handles POST /api/v1/vacancies
// @Summary      Create vacancy
// @Description  Post a new vacancy with form defaults
// @Tags         vacancies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        request  body  models.VacancyRequest  true  "Vacancy"
// @Success      201  {object}  models.Vacancy
// @Failure      400  {object}  map[string]interface{}
// @Router       /api/v1/vacancies [post]
func (h *Handlers) CreateVacancy(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeVacancy(w, r)
	if !ok {
		return
	}

	v, err := h.vacancies.CreateVacancy(r.Context(), getActor(r.Context()), req)
	if err != nil {
		h.writeServiceError(w, r, err, "create vacancy")
		return
	}

	h.app.Logger.Info().
		Str("request_id", getRequestID(r.Context())).
		Str("job_id", v.JobID).
		Msg("Vacancy created")

	writeResponse(w, h.app, http.StatusCreated, true, v, "Vacancy created successfully")
}

// UpdateVacancy handles PUT /api/v1/vacancies/{id}
// @Summary      Update vacancy
// @Description  Edit a vacancy, keeping its job ID
// @Tags         vacancies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id       path  string                true  "Vacancy ID"
// @Param        request  body  models.VacancyRequest  true  "Vacancy"
// @Success      200  {object}  models.Vacancy
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/v1/vacancies/{id} [put]
func (h *Handlers) UpdateVacancy(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeVacancy(w, r)
	if !ok {
		return
	}

	v, err := h.vacancies.UpdateVacancy(r.Context(), getActor(r.Context()), mux.Vars(r)["id"], req)
	if err != nil {
		h.writeServiceError(w, r, err, "update vacancy")
		return
	}

	writeSuccess(w, h.app, v, "Vacancy updated successfully")
}

// ToggleVacancyVisibility handles PATCH /api/v1/vacancies/{id}/visibility
// @Summary      Toggle vacancy visibility
// @Description  Flip a vacancy between Active and Hidden
// @Tags         vacancies
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Vacancy ID"
// @Success      200  {object}  models.Vacancy
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/v1/vacancies/{id}/visibility [patch]
func (h *Handlers) ToggleVacancyVisibility(w http.ResponseWriter, r *http.Request) {
	v, err := h.vacancies.ToggleVisibility(r.Context(), getActor(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, r, err, "change vacancy visibility")
		return
	}

	writeSuccess(w, h.app, v, "Vacancy is now "+v.Status())
}

func (h *Handlers) decodeVacancy(w http.ResponseWriter, r *http.Request) (models.VacancyRequest, bool) {
	var req models.VacancyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.app, http.StatusBadRequest, "Invalid request format")
		return req, false
	}

	if err := validation.ValidateStruct(&req); err != nil {
		writeError(w, h.app, http.StatusBadRequest, err.Error())
		return req, false
	}
	return req, true
}
