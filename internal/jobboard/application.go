package jobboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusReviewed ApplicationStatus = "reviewed"
	StatusAccepted ApplicationStatus = "accepted"
	StatusRejected ApplicationStatus = "rejected"
)

var transitions = map[ApplicationStatus][]ApplicationStatus{
	StatusPending:  {StatusReviewed, StatusAccepted, StatusRejected},
	StatusReviewed: {StatusAccepted, StatusRejected},
}

// ParseApplicationStatus validates a status label.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	status := ApplicationStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case StatusPending, StatusReviewed, StatusAccepted, StatusRejected:
		return status, nil
	default:
		return "", fmt.Errorf("unknown application status %q", s)
	}
}

// Terminal reports whether no transition leaves the status.
func (s ApplicationStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether moving from s to next is allowed.
func (s ApplicationStatus) CanTransition(next ApplicationStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Next lists the statuses reachable from s.
func (s ApplicationStatus) Next() []ApplicationStatus {
	return append([]ApplicationStatus(nil), transitions[s]...)
}

// Application links a profile to a job. AIMatchScore is a snapshot taken when it was created.
type Application struct {
	ID            uuid.UUID         `json:"id"`
	JobID         uuid.UUID         `json:"job_id"`
	ProfileID     uuid.UUID         `json:"profile_id"`
	Status        ApplicationStatus `json:"status"`
	CoverLetter   string            `json:"cover_letter,omitempty"`
	AppliedAt     time.Time         `json:"applied_at"`
	IsAutoApplied bool              `json:"is_auto_applied"`
	AIMatchScore  int               `json:"ai_match_score"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
