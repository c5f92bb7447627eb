package content

import (
	"errors"
	"time"
)

// Source identifies the platform a record was ingested from.
type Source string

const (
	SourceTwitter Source = "twitter"
	SourceReddit  Source = "reddit"
)

// Verdict tracks where a post is in its review lifecycle.
type Verdict string

const (
	// VerdictUnreviewed means the post is awaiting reviewer attention.
	VerdictUnreviewed Verdict = "unreviewed"

	// VerdictSafe means a reviewer cleared the post. Terminal.
	VerdictSafe Verdict = "safe"

	// VerdictConfirmedRisk means a reviewer confirmed the risk. Terminal.
	VerdictConfirmedRisk Verdict = "confirmed_risk"
)

// Record is the canonical shape every ingestor must produce, one per post.
// URL is the identity key: globally unique per actual post across platforms.
type Record struct {
	Source   Source    `json:"source"`
	Handle   string    `json:"handle"`
	PostedAt time.Time `json:"posted_at"`
	Content  string    `json:"content"`
	URL      string    `json:"url"`
}

// Validate rejects records that would violate store invariants. An empty URL
// is an ingestor defect, not a storable post.
func (r *Record) Validate() error {
	var errs []error
	if r.URL == "" {
		errs = append(errs, errors.New("record has empty url"))
	}
	if r.Content == "" {
		errs = append(errs, errors.New("record has empty content"))
	}
	return errors.Join(errs...)
}

// Post is the durable record: a Record plus its score and review state.
// RiskScore is always within [0,1]. Flags are fixed at creation; only
// Verdict and ReviewerNotes change after insert, and only together.
type Post struct {
	ID            string    `json:"id"`
	Source        Source    `json:"source"`
	Handle        string    `json:"handle"`
	PostedAt      time.Time `json:"posted_at"`
	Content       string    `json:"content"`
	URL           string    `json:"url"`
	RiskScore     float64   `json:"risk_score"`
	Flags         []string  `json:"flags,omitempty"`
	Verdict       Verdict   `json:"verdict"`
	ReviewerNotes string    `json:"reviewer_notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
