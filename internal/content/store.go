package content

import (
	"context"
	"errors"
)

// ErrDuplicateURL is returned by Insert when a post with the same URL already
// exists. The unique constraint is the authoritative dedup mechanism; callers
// treat this as "already stored", not a failure.
var ErrDuplicateURL = errors.New("post with this url already exists")

// CASOutcome is the result of a conditional verdict update.
type CASOutcome string

const (
	// CASUpdated means the transition was applied.
	CASUpdated CASOutcome = "updated"

	// CASAlreadyReviewed means the post was not in the expected verdict;
	// nothing was changed.
	CASAlreadyReviewed CASOutcome = "already_reviewed"

	// CASNotFound means no post with that ID exists.
	CASNotFound CASOutcome = "not_found"
)

// Store is the persistence contract for posts.
//
// Implementations must enforce URL uniqueness on Insert and make
// CompareAndSetVerdict a single atomic read-modify-write so concurrent
// reviewer actions on the same post cannot both succeed.
type Store interface {
	// FindByURL returns the post with the given URL, if any.
	FindByURL(ctx context.Context, url string) (*Post, bool, error)

	// Insert stores a new post with VerdictUnreviewed, assigns its ID, and
	// returns the stored copy. Returns ErrDuplicateURL on a URL collision.
	Insert(ctx context.Context, p *Post) (*Post, error)

	// Query returns posts with RiskScore >= minScore, excluding reviewed
	// posts unless includeReviewed is set. Ordered by RiskScore descending;
	// ties keep insertion order.
	Query(ctx context.Context, minScore float64, includeReviewed bool) ([]Post, error)

	// CompareAndSetVerdict transitions a post from the expected verdict to
	// next, setting reviewer notes, iff its current verdict matches.
	CompareAndSetVerdict(ctx context.Context, id string, expected, next Verdict, notes string) (CASOutcome, error)
}
