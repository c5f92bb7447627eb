package reviewapi

import (
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/sentinel/internal/content"
)

type scanRequest struct {
	Platform string `json:"platform"`
	Handle   string `json:"handle"`
	Limit    int    `json:"limit"`
}

// handleScan runs a scan to completion and returns its summary. A fetch
// failure shows up as a warning on the summary, not an error status.
func (a *API) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}
	if req.Platform == "" || req.Handle == "" {
		http.Error(w, `{"error":"platform and handle are required"}`, http.StatusBadRequest)
		return
	}
	if req.Limit <= 0 {
		req.Limit = 100
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("sentinel.scan.platform", req.Platform),
		attribute.String("sentinel.scan.handle", req.Handle),
	)

	sum, err := a.scans.Scan(r.Context(), content.Source(req.Platform), req.Handle, req.Limit)
	if err != nil {
		a.logger.Error(r.Context(), err, "scan failed", "platform", req.Platform, "handle", req.Handle)
		http.Error(w, `{"error":"scan failed"}`, http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusOK, sum)
}
