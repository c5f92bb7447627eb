// Package reddit ingests a user's recent comments and submissions via
// Reddit's public JSON listings.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/linnemanlabs/sentinel/internal/content"
)

const (
	defaultBaseURL = "https://www.reddit.com"
	httpTimeout    = 15 * time.Second
	maxRetries     = 3
	retryBase      = 500 * time.Millisecond
)

// Ingestor fetches a redditor's comments and submissions.
type Ingestor struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// Option customizes an Ingestor.
type Option func(*Ingestor)

// WithBaseURL overrides the API base URL (tests).
func WithBaseURL(u string) Option {
	return func(i *Ingestor) { i.baseURL = u }
}

// New creates a Reddit ingestor. Reddit rejects requests without a
// descriptive User-Agent, so one is required.
func New(userAgent string, opts ...Option) *Ingestor {
	i := &Ingestor{
		baseURL:    defaultBaseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: httpTimeout},
	}
	for _, o := range opts {
		o(i)
	}
	return i
}

// Platform implements ingest.Ingestor.
func (i *Ingestor) Platform() content.Source {
	return content.SourceReddit
}

// listing mirrors the subset of Reddit's listing envelope we consume.
type listing struct {
	Data struct {
		Children []struct {
			Data struct {
				Body       string  `json:"body"`
				Title      string  `json:"title"`
				Selftext   string  `json:"selftext"`
				Permalink  string  `json:"permalink"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Fetch implements ingest.Ingestor, returning comments then submissions.
// Permalinks give each record a unique, stable URL.
func (i *Ingestor) Fetch(ctx context.Context, handle string, limit int) ([]content.Record, error) {
	comments, err := i.fetchListing(ctx, handle, "comments", limit)
	if err != nil {
		return nil, err
	}
	submitted, err := i.fetchListing(ctx, handle, "submitted", limit)
	if err != nil {
		return nil, err
	}

	records := make([]content.Record, 0, len(comments.Data.Children)+len(submitted.Data.Children))
	for _, child := range comments.Data.Children {
		records = append(records, content.Record{
			Source:   content.SourceReddit,
			Handle:   handle,
			PostedAt: time.Unix(int64(child.Data.CreatedUTC), 0).UTC(),
			Content:  child.Data.Body,
			URL:      i.permalinkURL(child.Data.Permalink),
		})
	}
	for _, child := range submitted.Data.Children {
		body := child.Data.Title
		if child.Data.Selftext != "" {
			body += "\n" + child.Data.Selftext
		}
		records = append(records, content.Record{
			Source:   content.SourceReddit,
			Handle:   handle,
			PostedAt: time.Unix(int64(child.Data.CreatedUTC), 0).UTC(),
			Content:  body,
			URL:      i.permalinkURL(child.Data.Permalink),
		})
	}
	return records, nil
}

// fetchListing gets one listing kind with fibonacci backoff on transient
// failures (429 and 5xx). Auth and not-found responses fail immediately.
func (i *Ingestor) fetchListing(ctx context.Context, handle, kind string, limit int) (*listing, error) {
	endpoint := fmt.Sprintf("%s/user/%s/%s.json?limit=%s",
		i.baseURL, url.PathEscape(handle), kind, strconv.Itoa(limit))

	var out listing
	backoff := retry.WithMaxRetries(maxRetries, retry.NewFibonacci(retryBase))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", i.userAgent)

		resp, err := i.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("get %s listing: %w", kind, err))
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("reddit %s listing returned %d", kind, resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("reddit %s listing returned %d: %s", kind, resp.StatusCode, string(body))
		}

		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return fmt.Errorf("decode %s listing: %w", kind, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (i *Ingestor) permalinkURL(permalink string) string {
	return defaultBaseURL + permalink
}
