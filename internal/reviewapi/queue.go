package reviewapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"

	"github.com/linnemanlabs/sentinel/internal/content"
	"github.com/linnemanlabs/sentinel/internal/review"
)

func (a *API) handleListQueue(w http.ResponseWriter, r *http.Request) {
	minScore := 0.0
	if raw := r.URL.Query().Get("min_score"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 1 {
			http.Error(w, `{"error":"min_score must be a number in [0,1]"}`, http.StatusBadRequest)
			return
		}
		minScore = v
	}
	includeReviewed := r.URL.Query().Get("include_reviewed") == "true"

	posts, err := a.reviews.List(r.Context(), minScore, includeReviewed)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to list review queue")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, queueResponse{Pending: len(posts), Posts: posts})
}

type queueResponse struct {
	Pending int            `json:"pending"`
	Posts   []content.Post `json:"posts"`
}

type verdictRequest struct {
	Notes string `json:"notes"`
}

type verdictResponse struct {
	ID      string         `json:"id"`
	Outcome review.Outcome `json:"outcome"`
}

func (a *API) handleMarkSafe(w http.ResponseWriter, r *http.Request) {
	a.handleVerdict(w, r, a.reviews.MarkSafe)
}

func (a *API) handleConfirmRisk(w http.ResponseWriter, r *http.Request) {
	a.handleVerdict(w, r, a.reviews.ConfirmRisk)
}

// handleVerdict decodes the optional notes body and maps the state-machine
// outcome onto a status code: a lost race is 409, a missing post 404.
func (a *API) handleVerdict(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id, notes string) (review.Outcome, error)) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("sentinel.post.id", id))

	var req verdictRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
			return
		}
	}

	outcome, err := apply(r.Context(), id, req.Notes)
	if err != nil {
		a.logger.Error(r.Context(), err, "verdict transition failed", "id", id)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.String("sentinel.verdict.outcome", string(outcome)))

	status := http.StatusOK
	switch outcome {
	case review.OutcomeAlreadyReviewed:
		status = http.StatusConflict
	case review.OutcomeNotFound:
		status = http.StatusNotFound
	}
	writeJSON(w, status, verdictResponse{ID: id, Outcome: outcome})
}

// handleHighRiskReport is the read-only selection the reporting collaborator
// consumes: every post at or above the high-risk cutoff, reviewed or not.
func (a *API) handleHighRiskReport(w http.ResponseWriter, r *http.Request) {
	posts, err := a.reviews.List(r.Context(), a.riskThreshold, true)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to build high-risk report")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{Threshold: a.riskThreshold, Count: len(posts), Posts: posts})
}

type reportResponse struct {
	Threshold float64        `json:"threshold"`
	Count     int            `json:"count"`
	Posts     []content.Post `json:"posts"`
}
