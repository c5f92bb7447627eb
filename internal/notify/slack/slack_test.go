package slack

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/linnemanlabs/sentinel/internal/pipeline"
)

func summary() *pipeline.ScanSummary {
	return &pipeline.ScanSummary{
		Platform: "twitter",
		Handle:   "someuser",
		Fetched:  4,
		IngestResult: pipeline.IngestResult{
			Stored:     3,
			Duplicates: 1,
		},
		TopScore: 0.85,
		Duration: 1.2,
	}
}

func TestScanCompleted(t *testing.T) {
	t.Parallel()

	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL)
	if err := n.ScanCompleted(context.Background(), summary()); err != nil {
		t.Fatalf("ScanCompleted: %v", err)
	}

	var msg struct {
		Blocks []json.RawMessage `json:"blocks"`
	}
	if err := json.Unmarshal(gotBody, &msg); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(msg.Blocks) != 3 {
		t.Errorf("blocks = %d, want 3 (header, divider, fields)", len(msg.Blocks))
	}

	payload := string(gotBody)
	for _, want := range []string{"twitter", "someuser", "*Fetched:* 4", "*Stored:* 3", "*Duplicates:* 1", "*Top score:* 0.85"} {
		if !strings.Contains(payload, want) {
			t.Errorf("payload missing %q", want)
		}
	}
}

func TestScanCompleted_WarningBlock(t *testing.T) {
	t.Parallel()

	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	sum := summary()
	sum.Warning = "reddit fetch failed"

	if err := New(srv.URL).ScanCompleted(context.Background(), sum); err != nil {
		t.Fatalf("ScanCompleted: %v", err)
	}
	if !strings.Contains(string(gotBody), "reddit fetch failed") {
		t.Error("payload missing warning text")
	}
}

func TestScanCompleted_ErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := New(srv.URL).ScanCompleted(context.Background(), summary())
	if err == nil {
		t.Fatal("expected error on non-2xx response")
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("error = %v, want status code mentioned", err)
	}
}

func TestScanCompleted_EmptyURLIsNoop(t *testing.T) {
	t.Parallel()

	if err := New("").ScanCompleted(context.Background(), summary()); err != nil {
		t.Fatalf("ScanCompleted with empty webhook: %v", err)
	}
}

func TestScoreEmoji(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score float64
		want  string
	}{
		{0.9, "\U0001f534"},
		{0.7, "\U0001f534"},
		{0.5, "\U0001f7e1"},
		{0.3, "\U0001f7e1"},
		{0.1, "\U0001f7e2"},
		{0, "\U0001f7e2"},
	}
	for _, tt := range tests {
		if got := scoreEmoji(tt.score); got != tt.want {
			t.Errorf("scoreEmoji(%g) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
