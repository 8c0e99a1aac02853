package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/jobboard"
	"github.com/spigell/jobmatch/internal/logger"
	"github.com/spigell/jobmatch/internal/utils"
)

const defaultMaxLogLength = 200

// Scorer asks a Generator to rate a profile against every job category.
//
// Model output is not deterministic: scoring the same profile twice may yield different vectors.
// Callers persist whatever the latest successful call returned.
type Scorer struct {
	generator Generator
	logger    *zap.Logger
	maxLogLen int
	timeout   time.Duration
}

func NewScorer(generator Generator, log *zap.Logger, maxLogLength int, timeout time.Duration) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Scorer{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
		timeout:   timeout,
	}
}

// Score builds the prompt for profile, calls the generator once and parses the reply.
// Errors wrap ErrEmptyResponse or ErrMalformedScoreJSON when the model answered badly;
// anything else is a transport failure from the generator.
func (s *Scorer) Score(ctx context.Context, profile *jobboard.Profile) (*Assessment, error) {
	if profile == nil {
		return nil, fmt.Errorf("profile is required")
	}
	if s.generator == nil {
		return nil, fmt.Errorf("generator is not configured")
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	prompt := BuildPrompt(profile)

	s.logger.Debug("ai score request",
		logger.ProfileField(profile.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		if errors.Is(err, ErrEmptyResponse) {
			return nil, err
		}
		return nil, fmt.Errorf("generate scores: %w", err)
	}

	s.logger.Debug("ai score response",
		logger.ProfileField(profile.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyResponse
	}

	scores, err := ParseScores(raw)
	if err != nil {
		return nil, err
	}

	return &Assessment{
		Scores: scores,
		Model:  s.generator.Model(),
		Raw:    raw,
	}, nil
}
