// Package review provides the reviewer-facing queue: filtered, score-ordered
// listing and the one-shot verdict state machine over stored posts.
//
// Verdicts are terminal: a post moves from unreviewed to safe or
// confirmed_risk exactly once. There is deliberately no transition back.
package review

import (
	"context"
	"fmt"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/sentinel/internal/content"
)

// Default reviewer notes when the caller supplies none.
const (
	DefaultSafeNotes = "Marked Safe"
	DefaultRiskNotes = "Confirmed Risk"
)

// Outcome is the result of a verdict transition attempt.
type Outcome string

const (
	// OutcomeUpdated means the verdict was applied.
	OutcomeUpdated Outcome = "updated"

	// OutcomeAlreadyReviewed means the post already has a terminal verdict;
	// the stored verdict and notes are unchanged.
	OutcomeAlreadyReviewed Outcome = "already_reviewed"

	// OutcomeNotFound means no post with that ID exists.
	OutcomeNotFound Outcome = "not_found"
)

// Queue is the business boundary for review operations.
type Queue struct {
	store   content.Store
	logger  log.Logger
	metrics *Metrics
}

// NewQueue creates a review queue over the given store. metrics may be nil.
func NewQueue(store content.Store, logger log.Logger, metrics *Metrics) *Queue {
	if logger == nil {
		logger = log.Nop()
	}
	return &Queue{store: store, logger: logger, metrics: metrics}
}

// List returns posts with RiskScore >= minScore, highest first, excluding
// already-reviewed posts unless includeReviewed is set.
func (q *Queue) List(ctx context.Context, minScore float64, includeReviewed bool) ([]content.Post, error) {
	posts, err := q.store.Query(ctx, minScore, includeReviewed)
	if err != nil {
		return nil, fmt.Errorf("query review queue: %w", err)
	}
	return posts, nil
}

// MarkSafe resolves a post as a false positive. Legal only from unreviewed.
func (q *Queue) MarkSafe(ctx context.Context, postID, notes string) (Outcome, error) {
	if notes == "" {
		notes = DefaultSafeNotes
	}
	return q.transition(ctx, postID, content.VerdictSafe, notes)
}

// ConfirmRisk resolves a post as a confirmed risk. Legal only from unreviewed.
func (q *Queue) ConfirmRisk(ctx context.Context, postID, notes string) (Outcome, error) {
	if notes == "" {
		notes = DefaultRiskNotes
	}
	return q.transition(ctx, postID, content.VerdictConfirmedRisk, notes)
}

// transition runs the verdict compare-and-set. The store guarantees
// atomicity, so of two concurrent reviewer actions exactly one wins and the
// loser observes OutcomeAlreadyReviewed.
func (q *Queue) transition(ctx context.Context, postID string, next content.Verdict, notes string) (Outcome, error) {
	res, err := q.store.CompareAndSetVerdict(ctx, postID, content.VerdictUnreviewed, next, notes)
	if err != nil {
		return "", fmt.Errorf("set verdict %s on %s: %w", next, postID, err)
	}

	var out Outcome
	switch res {
	case content.CASUpdated:
		out = OutcomeUpdated
		q.logger.Info(ctx, "verdict applied", "post_id", postID, "verdict", string(next))
	case content.CASAlreadyReviewed:
		out = OutcomeAlreadyReviewed
	case content.CASNotFound:
		out = OutcomeNotFound
	default:
		return "", fmt.Errorf("unexpected store outcome %q", res)
	}

	if q.metrics != nil {
		q.metrics.VerdictsTotal.WithLabelValues(string(next), string(out)).Inc()
	}
	return out, nil
}
