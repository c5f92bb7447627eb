// Package twitter provides a deterministic sample-feed ingestor. Twitter API
// access requires paid credentials, so this stands in with a fixed feed that
// exercises the full scoring range; useful for demos and pipeline tests.
package twitter

import (
	"context"
	"fmt"
	"time"

	"github.com/linnemanlabs/sentinel/internal/content"
)

var sampleFeed = []string{
	"I love working at this company! #team",
	"This place is a joke. Management has no idea what they are doing.",
	"Just saw a great movie last night.",
	"I hate everyone who disagrees with me. They should all be fired.",
}

// Ingestor returns the sample feed attributed to the requested handle.
type Ingestor struct {
	now func() time.Time
}

// New creates the sample Twitter ingestor.
func New() *Ingestor {
	return &Ingestor{now: time.Now}
}

// Platform implements ingest.Ingestor.
func (i *Ingestor) Platform() content.Source {
	return content.SourceTwitter
}

// Fetch implements ingest.Ingestor. Status URLs are stable per handle, so
// repeated scans of the same handle dedup to the same four posts.
func (i *Ingestor) Fetch(_ context.Context, handle string, limit int) ([]content.Record, error) {
	n := len(sampleFeed)
	if limit > 0 && limit < n {
		n = limit
	}

	records := make([]content.Record, 0, n)
	for idx := range n {
		records = append(records, content.Record{
			Source:   content.SourceTwitter,
			Handle:   handle,
			PostedAt: i.now().UTC(),
			Content:  sampleFeed[idx],
			URL:      fmt.Sprintf("https://twitter.com/%s/status/%d", handle, idx+1),
		})
	}
	return records, nil
}
