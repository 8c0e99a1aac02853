package jobboard

import (
	"errors"
	"testing"
)

func TestScoreVectorForUnknownCategory(t *testing.T) {
	v := ScoreVector{Frontend: 75, Marketing: 10}

	if got := v.For(CategoryFrontend); got != 75 {
		t.Fatalf("expected 75, got %d", got)
	}
	if got := v.For(Category("astronaut")); got != 0 {
		t.Fatalf("expected unknown category to score 0, got %d", got)
	}
}

func TestScoreVectorSetAndMap(t *testing.T) {
	var v ScoreVector
	for i, c := range Categories {
		v.Set(c, i*10)
	}

	m := v.Map()
	if len(m) != 8 {
		t.Fatalf("expected 8 keys, got %d", len(m))
	}
	if m[CategoryMarketing] != 70 {
		t.Fatalf("expected marketing 70, got %d", m[CategoryMarketing])
	}

	best, score := v.Best()
	if best != CategoryMarketing || score != 70 {
		t.Fatalf("unexpected best category %s=%d", best, score)
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("  Data-Science ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != CategoryDataScience {
		t.Fatalf("unexpected category %q", c)
	}

	if _, err := ParseCategory("frontendDeveloper"); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestApplicationStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to ApplicationStatus
		allowed  bool
	}{
		{StatusPending, StatusReviewed, true},
		{StatusPending, StatusAccepted, true},
		{StatusPending, StatusRejected, true},
		{StatusReviewed, StatusAccepted, true},
		{StatusReviewed, StatusRejected, true},
		{StatusReviewed, StatusPending, false},
		{StatusAccepted, StatusRejected, false},
		{StatusRejected, StatusPending, false},
		{StatusPending, StatusPending, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.allowed {
			t.Fatalf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.allowed, got)
		}
	}

	if !StatusAccepted.Terminal() || !StatusRejected.Terminal() {
		t.Fatalf("accepted and rejected must be terminal")
	}
	if StatusPending.Terminal() {
		t.Fatalf("pending must not be terminal")
	}
}

func TestAutoApplyPreferencesMatchesLocation(t *testing.T) {
	prefs := AutoApplyPreferences{Locations: []string{"remote", "Berlin"}}

	if !prefs.MatchesLocation("Berlin, Germany") {
		t.Fatalf("expected Berlin to match")
	}
	if !prefs.MatchesLocation("REMOTE (EU)") {
		t.Fatalf("expected case-insensitive match")
	}
	if prefs.MatchesLocation("Paris") {
		t.Fatalf("did not expect Paris to match")
	}
	if !(AutoApplyPreferences{}).MatchesLocation("anywhere") {
		t.Fatalf("empty preferences must match any location")
	}
}

func TestProfileCloneIsDeep(t *testing.T) {
	p := &Profile{Skills: []string{"Go"}, AutoApply: AutoApplyPreferences{JobTypes: []Category{CategoryBackend}}}
	c := p.Clone()
	c.Skills[0] = "Rust"
	c.AutoApply.JobTypes[0] = CategoryDesign

	if p.Skills[0] != "Go" || p.AutoApply.JobTypes[0] != CategoryBackend {
		t.Fatalf("clone shares slices with the original")
	}
}
