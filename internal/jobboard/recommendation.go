package jobboard

import (
	"time"

	"github.com/google/uuid"
)

// Recommendation suggests a job to a profile. At most one exists per (profile, job).
type Recommendation struct {
	ID        uuid.UUID `json:"id"`
	ProfileID uuid.UUID `json:"profile_id"`
	JobID     uuid.UUID `json:"job_id"`
	Score     int       `json:"score"`
	Reasons   []string  `json:"reasons"`
	IsViewed  bool      `json:"is_viewed"`
	CreatedAt time.Time `json:"created_at"`
}
