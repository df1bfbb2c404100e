// File: internal/handlers/handlers.go
package handlers

import (
	"time"

	"uniadmin-console/internal/config"
	"uniadmin-console/internal/core"
)

type Handlers struct {
	app       *config.Application
	users     core.UserService
	vacancies core.VacancyService
	profile   core.ProfileService
	audit     core.AuditRepository
	now       func() time.Time
}

func New(app *config.Application, users core.UserService, vacancies core.VacancyService, profile core.ProfileService, audit core.AuditRepository) *Handlers {
	return &Handlers{
		app:       app,
		users:     users,
		vacancies: vacancies,
		profile:   profile,
		audit:     audit,
		now:       time.Now,
	}
}

var startTime = time.Now()
