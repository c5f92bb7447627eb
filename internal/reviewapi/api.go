// Package reviewapi exposes scans, the review queue, and verdict actions
// over HTTP.
package reviewapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/sentinel/internal/content"
	"github.com/linnemanlabs/sentinel/internal/pipeline"
	"github.com/linnemanlabs/sentinel/internal/review"
)

// defaultHighRiskThreshold selects posts for the high-risk report.
const defaultHighRiskThreshold = 0.7

// ScanService defines the ingestion operations the API needs.
type ScanService interface {
	Scan(ctx context.Context, platform content.Source, handle string, limit int) (*pipeline.ScanSummary, error)
}

// ReviewService defines the review operations the API needs.
type ReviewService interface {
	List(ctx context.Context, minScore float64, includeReviewed bool) ([]content.Post, error)
	MarkSafe(ctx context.Context, postID, notes string) (review.Outcome, error)
	ConfirmRisk(ctx context.Context, postID, notes string) (review.Outcome, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger        log.Logger
	scans         ScanService
	reviews       ReviewService
	riskThreshold float64
}

// New creates a new API handler. riskThreshold <= 0 falls back to the
// default high-risk report cutoff.
func New(logger log.Logger, scans ScanService, reviews ReviewService, riskThreshold float64) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if scans == nil {
		panic(xerrors.New("scan service is required"))
	}
	if reviews == nil {
		panic(xerrors.New("review service is required"))
	}
	if riskThreshold <= 0 {
		riskThreshold = defaultHighRiskThreshold
	}
	return &API{
		logger:        logger,
		scans:         scans,
		reviews:       reviews,
		riskThreshold: riskThreshold,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/scans", a.handleScan)
		r.Get("/queue", a.handleListQueue)
		r.Post("/posts/{id}/safe", a.handleMarkSafe)
		r.Post("/posts/{id}/risk", a.handleConfirmRisk)
		r.Get("/reports/high-risk", a.handleHighRiskReport)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
