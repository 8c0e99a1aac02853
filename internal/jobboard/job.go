package jobboard

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	EmploymentFullTime   = "full-time"
	EmploymentPartTime   = "part-time"
	EmploymentContract   = "contract"
	EmploymentInternship = "internship"
)

// SalaryRange is informational. Min <= Max is expected but not enforced.
type SalaryRange struct {
	Min      int    `json:"min" mapstructure:"min"`
	Max      int    `json:"max" mapstructure:"max"`
	Currency string `json:"currency" mapstructure:"currency"`
}

type Job struct {
	ID               uuid.UUID    `json:"id"`
	CompanyID        uuid.UUID    `json:"company_id"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	Requirements     []string     `json:"requirements"`
	Category         Category     `json:"job_type"`
	Location         string       `json:"location"`
	Salary           *SalaryRange `json:"salary,omitempty"`
	EmploymentType   string       `json:"employment_type"`
	IsActive         bool         `json:"is_active"`
	ApplicationCount int          `json:"application_count"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// RequirementsText joins the requirements into one lower-cased string for substring matching.
func (j *Job) RequirementsText() string {
	return strings.ToLower(strings.Join(j.Requirements, " "))
}

func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	c := *j
	c.Requirements = append([]string(nil), j.Requirements...)
	if j.Salary != nil {
		s := *j.Salary
		c.Salary = &s
	}
	return &c
}
