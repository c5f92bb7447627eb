// Package pipeline drives an account scan: fetch via an ingestor, score each
// record, and persist new posts idempotently keyed by URL.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/sentinel/internal/content"
	"github.com/linnemanlabs/sentinel/internal/ingest"
	"github.com/linnemanlabs/sentinel/internal/risk"
)

const defaultScoreConcurrency = 4

// Scorer is the scoring capability the pipeline needs.
type Scorer interface {
	Score(ctx context.Context, text string) risk.Assessment
}

// Notifier receives a summary when a scan finishes. Optional.
type Notifier interface {
	ScanCompleted(ctx context.Context, sum *ScanSummary) error
}

// IngestResult counts the outcomes of one batch.
type IngestResult struct {
	Stored     int `json:"stored"`
	Duplicates int `json:"duplicates"`
	Invalid    int `json:"invalid"`
}

// ScanSummary is the outcome of a full platform scan.
type ScanSummary struct {
	Platform content.Source `json:"platform"`
	Handle   string         `json:"handle"`
	Fetched  int            `json:"fetched"`
	IngestResult
	TopScore float64 `json:"top_score"`
	Warning  string  `json:"warning,omitempty"`
	Duration float64 `json:"duration_seconds"`
}

// Service is the business boundary for ingestion.
type Service struct {
	store       content.Store
	scorer      Scorer
	registry    *ingest.Registry
	logger      log.Logger
	metrics     *Metrics
	notifier    Notifier
	concurrency int
}

// NewService creates the ingestion service. metrics and notifier may be nil;
// concurrency <= 0 falls back to the default scoring parallelism.
func NewService(store content.Store, scorer Scorer, registry *ingest.Registry, logger log.Logger, metrics *Metrics, notifier Notifier, concurrency int) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	if concurrency <= 0 {
		concurrency = defaultScoreConcurrency
	}
	return &Service{
		store:       store,
		scorer:      scorer,
		registry:    registry,
		logger:      logger,
		metrics:     metrics,
		notifier:    notifier,
		concurrency: concurrency,
	}
}

// Scan fetches a handle's posts from one platform and ingests them. A fetch
// failure is a soft warning on the summary, not an error; an unregistered
// platform is a caller error.
func (s *Service) Scan(ctx context.Context, platform content.Source, handle string, limit int) (*ScanSummary, error) {
	start := time.Now()
	L := s.logger.With("platform", string(platform), "handle", handle)

	ing, ok := s.registry.Get(platform)
	if !ok {
		if s.metrics != nil {
			s.metrics.ScansTotal.WithLabelValues(string(platform), "unknown_platform").Inc()
		}
		return nil, fmt.Errorf("no ingestor registered for platform %q", platform)
	}

	sum := &ScanSummary{Platform: platform, Handle: handle}

	records, err := ing.Fetch(ctx, handle, limit)
	if err != nil {
		// Platform auth/connectivity trouble degrades to an empty scan with
		// a warning; the reviewer-facing caller decides how loudly to say so.
		L.Warn(ctx, "ingestor fetch failed", "error", err.Error())
		sum.Warning = err.Error()
		sum.Duration = time.Since(start).Seconds()
		if s.metrics != nil {
			s.metrics.ScansTotal.WithLabelValues(string(platform), "warning").Inc()
			s.metrics.ScanDuration.Observe(sum.Duration)
		}
		return sum, nil
	}
	sum.Fetched = len(records)

	res, top, err := s.Ingest(ctx, records)
	sum.IngestResult = res
	sum.TopScore = top
	sum.Duration = time.Since(start).Seconds()
	if err != nil {
		if s.metrics != nil {
			s.metrics.ScansTotal.WithLabelValues(string(platform), "error").Inc()
		}
		return sum, err
	}

	if s.metrics != nil {
		s.metrics.ScansTotal.WithLabelValues(string(platform), "ok").Inc()
		s.metrics.ScanDuration.Observe(sum.Duration)
	}

	L.Info(ctx, "scan complete",
		"fetched", sum.Fetched,
		"stored", sum.Stored,
		"duplicates", sum.Duplicates,
		"invalid", sum.Invalid,
		"top_score", sum.TopScore,
		"duration", sum.Duration,
	)

	if s.notifier != nil {
		if err := s.notifier.ScanCompleted(ctx, sum); err != nil {
			L.Warn(ctx, "scan notification failed", "error", err.Error())
		}
	}
	return sum, nil
}

// Ingest scores and stores a batch of records in input order. Records whose
// URL is already stored are skipped without re-scoring; the store's unique
// constraint backstops races the lookup cannot see. Returns counts and the
// highest score stored.
func (s *Service) Ingest(ctx context.Context, records []content.Record) (IngestResult, float64, error) {
	var res IngestResult
	var top float64

	// Phase 1: validate and drop already-stored URLs before spending
	// classifier time on them.
	fresh := make([]content.Record, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			res.Invalid++
			if s.metrics != nil {
				s.metrics.InvalidRecordsTotal.Inc()
			}
			s.logger.Warn(ctx, "skipping invalid record", "url", rec.URL, "error", err.Error())
			continue
		}
		if _, dup := seen[rec.URL]; dup {
			res.Duplicates++
			continue
		}
		seen[rec.URL] = struct{}{}

		if _, exists, err := s.store.FindByURL(ctx, rec.URL); err != nil {
			return res, top, fmt.Errorf("lookup %s: %w", rec.URL, err)
		} else if exists {
			res.Duplicates++
			continue
		}
		fresh = append(fresh, rec)
	}

	// Phase 2: score in parallel. No record's score depends on another's,
	// and the limit keeps the classifier backend from being overwhelmed.
	assessments := make([]risk.Assessment, len(fresh))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, rec := range fresh {
		g.Go(func() error {
			assessments[i] = s.scorer.Score(gctx, rec.Content)
			return nil
		})
	}
	_ = g.Wait() // scoring never errors

	// Phase 3: insert in input order.
	for i, rec := range fresh {
		p := &content.Post{
			Source:    rec.Source,
			Handle:    rec.Handle,
			PostedAt:  rec.PostedAt,
			Content:   rec.Content,
			URL:       rec.URL,
			RiskScore: assessments[i].Score,
			Flags:     assessments[i].Flags,
		}
		stored, err := s.store.Insert(ctx, p)
		if err != nil {
			if errors.Is(err, content.ErrDuplicateURL) {
				// Lost a race with a concurrent scan; the post exists, which
				// is all ingestion promises.
				res.Duplicates++
				continue
			}
			return res, top, fmt.Errorf("insert %s: %w", rec.URL, err)
		}
		res.Stored++
		if stored.RiskScore > top {
			top = stored.RiskScore
		}
		if s.metrics != nil {
			s.metrics.PostsStoredTotal.Inc()
			s.metrics.RiskScore.Observe(stored.RiskScore)
		}
	}
	if s.metrics != nil {
		s.metrics.DuplicatesTotal.Add(float64(res.Duplicates))
	}
	return res, top, nil
}
