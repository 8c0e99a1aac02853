package service

import (
	"strings"

	"github.com/spigell/jobmatch/internal/jobboard"
)

type ExperienceInput struct {
	Company     string `json:"company" validate:"required"`
	Position    string `json:"position" validate:"required"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

type EducationInput struct {
	Institution string `json:"institution" validate:"required"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	Year        string `json:"year"`
}

type ProfileRequest struct {
	Name       string            `json:"name" validate:"required,max=200"`
	Email      string            `json:"email" validate:"required,email"`
	Phone      string            `json:"phone" validate:"max=50"`
	Location   string            `json:"location" validate:"max=200"`
	Bio        string            `json:"bio" validate:"max=5000"`
	Experience []ExperienceInput `json:"experience" validate:"max=50,dive"`
	Education  []EducationInput  `json:"education" validate:"max=20,dive"`
	Skills     []string          `json:"skills" validate:"max=100"`
	ResumeURL  string            `json:"resume_url" validate:"omitempty,url"`
}

func (r ProfileRequest) profile() *jobboard.Profile {
	p := &jobboard.Profile{
		Name:      strings.TrimSpace(r.Name),
		Email:     strings.TrimSpace(r.Email),
		Phone:     r.Phone,
		Location:  strings.TrimSpace(r.Location),
		Bio:       r.Bio,
		Skills:    compact(r.Skills),
		ResumeURL: r.ResumeURL,
	}
	for _, e := range r.Experience {
		p.Experience = append(p.Experience, jobboard.Experience(e))
	}
	for _, e := range r.Education {
		p.Education = append(p.Education, jobboard.Education(e))
	}
	return p
}

type AutoApplyRequest struct {
	Enabled   bool     `json:"enabled"`
	JobTypes  []string `json:"job_types" validate:"max=8"`
	MinScore  int      `json:"min_score" validate:"min=0,max=100"`
	Locations []string `json:"locations" validate:"max=20"`
}

func (r AutoApplyRequest) preferences() (jobboard.AutoApplyPreferences, error) {
	prefs := jobboard.AutoApplyPreferences{
		MinScore:  r.MinScore,
		Locations: compact(r.Locations),
	}
	for _, jt := range r.JobTypes {
		c, err := jobboard.ParseCategory(jt)
		if err != nil {
			return prefs, err
		}
		prefs.JobTypes = append(prefs.JobTypes, c)
	}
	return prefs, nil
}

type CompanyRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Industry    string `json:"industry" validate:"max=100"`
	Size        string `json:"size" validate:"max=50"`
	Location    string `json:"location" validate:"max=200"`
	Website     string `json:"website" validate:"omitempty,url"`
	LogoURL     string `json:"logo_url" validate:"omitempty,url"`
}

type CreateJobRequest struct {
	Title          string                `json:"title" validate:"required,max=200"`
	Description    string                `json:"description" validate:"required"`
	Requirements   []string              `json:"requirements" validate:"max=50"`
	JobType        string                `json:"job_type" validate:"required"`
	Location       string                `json:"location" validate:"max=200"`
	Salary         *jobboard.SalaryRange `json:"salary"`
	EmploymentType string                `json:"employment_type" validate:"omitempty,oneof=full-time part-time contract internship"`
}

// JobPatch holds the fields of a partial job update. Nil means unchanged.
type JobPatch struct {
	Title          *string               `mapstructure:"title" validate:"omitempty,min=1,max=200"`
	Description    *string               `mapstructure:"description" validate:"omitempty,min=1"`
	Requirements   *[]string             `mapstructure:"requirements"`
	JobType        *string               `mapstructure:"job_type"`
	Location       *string               `mapstructure:"location" validate:"omitempty,max=200"`
	Salary         *jobboard.SalaryRange `mapstructure:"salary"`
	EmploymentType *string               `mapstructure:"employment_type" validate:"omitempty,oneof=full-time part-time contract internship"`
	IsActive       *bool                 `mapstructure:"is_active"`
}

type ApplyRequest struct {
	CoverLetter string `json:"cover_letter" validate:"max=10000"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// compact trims entries and drops blank ones.
func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
