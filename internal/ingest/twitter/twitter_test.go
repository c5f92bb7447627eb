package twitter

import (
	"context"
	"strings"
	"testing"

	"github.com/linnemanlabs/sentinel/internal/content"
)

func TestFetch(t *testing.T) {
	t.Parallel()

	i := New()
	records, err := i.Fetch(context.Background(), "someuser", 100)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("len = %d, want 4", len(records))
	}

	for idx, r := range records {
		if r.Source != content.SourceTwitter {
			t.Errorf("records[%d].Source = %q, want twitter", idx, r.Source)
		}
		if r.Handle != "someuser" {
			t.Errorf("records[%d].Handle = %q, want someuser", idx, r.Handle)
		}
		if err := r.Validate(); err != nil {
			t.Errorf("records[%d] invalid: %v", idx, err)
		}
		if !strings.HasPrefix(r.URL, "https://twitter.com/someuser/status/") {
			t.Errorf("records[%d].URL = %q, unexpected shape", idx, r.URL)
		}
	}

	// The feed includes at least one post that trips keyword scoring.
	var found bool
	for _, r := range records {
		if strings.Contains(r.Content, "hate") {
			found = true
		}
	}
	if !found {
		t.Error("expected the sample feed to contain a flaggable post")
	}
}

func TestFetch_StableURLsPerHandle(t *testing.T) {
	t.Parallel()

	i := New()
	first, _ := i.Fetch(context.Background(), "someuser", 10)
	second, _ := i.Fetch(context.Background(), "someuser", 10)

	for idx := range first {
		if first[idx].URL != second[idx].URL {
			t.Errorf("URL changed between fetches: %q vs %q", first[idx].URL, second[idx].URL)
		}
	}

	other, _ := i.Fetch(context.Background(), "otheruser", 10)
	if other[0].URL == first[0].URL {
		t.Error("different handles must produce different URLs")
	}
}

func TestFetch_RespectsLimit(t *testing.T) {
	t.Parallel()

	i := New()

	records, err := i.Fetch(context.Background(), "someuser", 2)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("len = %d, want 2", len(records))
	}

	records, err = i.Fetch(context.Background(), "someuser", 0)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 4 {
		t.Errorf("len with limit 0 = %d, want full feed", len(records))
	}
}
