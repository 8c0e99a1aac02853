package filtering

import (
	"github.com/spigell/jobmatch/internal/jobboard"
)

// Candidate is a profile considered for automatic application to a job.
type Candidate struct {
	Profile *jobboard.Profile
	// Score is the profile's score for the job's category.
	Score int
}

// Candidates holds the profiles still eligible for one job.
type Candidates struct {
	Job   *jobboard.Job
	Items []*Candidate
}

func NewCandidates(job *jobboard.Job, profiles []*jobboard.Profile) *Candidates {
	items := make([]*Candidate, 0, len(profiles))
	for _, p := range profiles {
		if p == nil {
			continue
		}
		items = append(items, &Candidate{Profile: p, Score: p.Scores.For(job.Category)})
	}
	return &Candidates{Job: job, Items: items}
}

func (c *Candidates) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

// Keep drops every candidate for which keep returns false and reports the dropped profile ids.
func (c *Candidates) Keep(keep func(*Candidate) bool) []string {
	kept := c.Items[:0]
	var excluded []string
	for _, item := range c.Items {
		if keep(item) {
			kept = append(kept, item)
			continue
		}
		excluded = append(excluded, item.Profile.ID.String())
	}
	for i := len(kept); i < len(c.Items); i++ {
		c.Items[i] = nil
	}
	c.Items = kept
	return excluded
}
