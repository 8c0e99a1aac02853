package ai

import (
	"context"
	"errors"

	"github.com/spigell/jobmatch/internal/jobboard"
)

var (
	// ErrEmptyResponse is returned when the model produced no usable text.
	ErrEmptyResponse = errors.New("ai returned empty response")
	// ErrMalformedScoreJSON is returned when the response is not a valid score object.
	ErrMalformedScoreJSON = errors.New("ai returned malformed score json")
)

// Generator sends a single text prompt to a language model and returns its text output.
// Implementations return ErrEmptyResponse (possibly wrapped) when the model answered with nothing.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Assessment is the outcome of one scoring call.
type Assessment struct {
	Scores jobboard.ScoreVector
	Model  string
	Raw    string
}

// ProfileScorer produces category scores for a profile.
type ProfileScorer interface {
	Score(ctx context.Context, profile *jobboard.Profile) (*Assessment, error)
}
