package models

import "time"

// Form defaults for a new vacancy.
const (
	DefaultLocation = "Main Campus"
	DefaultFaculty  = "Science"
	DefaultJobType  = "Full-time"
)

var (
	Locations = []string{"Main Campus", "Kaburupitiya", "Hapugala", "Karapitiya"}
	Faculties = []string{
		"Science", "Management", "Art", "Engineering", "Medicine",
		"Agriculture", "Technology", "Fisheries and Marine Science",
	}
	JobTypes = []string{"Full-time", "Part-time", "Temporary"}
)

// Vacancy is a job posting as stored by the backend.
type Vacancy struct {
	ID                  string     `json:"_id,omitempty"`
	JobID               string     `json:"jobId"`
	JobRole             string     `json:"jobRole"`
	Location            string     `json:"location"`
	Faculty             string     `json:"faculty"`
	Department          string     `json:"department"`
	JobDescription      string     `json:"jobDescription"`
	JobResponsibilities string     `json:"jobResponsibilities"`
	JobQualifications   string     `json:"jobQualifications"`
	JobType             string     `json:"jobType"`
	Salary              float64    `json:"salary"`
	Deadline            *time.Time `json:"deadline,omitempty"`
	IsAvailable         bool       `json:"isAvailable"`
}

// Status is "Active" for visible postings and "Hidden" otherwise.
func (v *Vacancy) Status() string {
	if v.IsAvailable {
		return "Active"
	}
	return "Hidden"
}

// Key returns the identifier the backend routes on.
func (v *Vacancy) Key() string {
	if v.ID != "" {
		return v.ID
	}
	return v.JobID
}

// VacancyRequest is the create/edit form.
type VacancyRequest struct {
	JobRole             string   `json:"jobRole" validate:"required,max=120"`
	Location            string   `json:"location" validate:"omitempty,location"`
	Faculty             string   `json:"faculty" validate:"omitempty,faculty"`
	Department          string   `json:"department" validate:"max=120"`
	JobDescription      string   `json:"jobDescription" validate:"max=5000"`
	JobResponsibilities string   `json:"jobResponsibilities" validate:"max=5000"`
	JobQualifications   string   `json:"jobQualifications" validate:"max=5000"`
	JobType             string   `json:"jobType" validate:"omitempty,jobtype"`
	Salary              *float64 `json:"salary" validate:"omitempty,gte=0"`
	Deadline            string   `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
	IsAvailable         *bool    `json:"isAvailable"`
}

// VacancyQuery holds the list filters of the vacancies page.
type VacancyQuery struct {
	Search string
	Status string
	Page   int
}

// VacancyPage is one page of the filtered vacancy list.
type VacancyPage struct {
	Vacancies  []Vacancy          `json:"vacancies"`
	Pagination PaginationMetadata `json:"pagination"`
}

// VisibilityRequest is the PATCH body accepted by the backend.
type VisibilityRequest struct {
	IsAvailable bool `json:"isAvailable"`
}
