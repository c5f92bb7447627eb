// Package slack sends scan summaries to Slack via incoming webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/linnemanlabs/sentinel/internal/pipeline"
)

const httpTimeout = 10 * time.Second

// Notifier posts scan summaries to a Slack webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

// New creates a new Slack notifier. If webhookURL is empty, ScanCompleted is
// a no-op.
func New(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

// ScanCompleted posts a scan summary to the configured webhook.
func (n *Notifier) ScanCompleted(ctx context.Context, sum *pipeline.ScanSummary) error {
	if n.webhookURL == "" {
		return nil
	}

	msg := buildMessage(sum)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildMessage(sum *pipeline.ScanSummary) map[string]any {
	blocks := []map[string]any{
		headerBlock(sum),
		{"type": "divider"},
		fieldsBlock(sum),
	}
	if sum.Warning != "" {
		blocks = append(blocks, warningBlock(sum))
	}
	return map[string]any{"blocks": blocks}
}

func headerBlock(sum *pipeline.ScanSummary) map[string]any {
	text := fmt.Sprintf("%s Scan complete: %s @%s", scoreEmoji(sum.TopScore), sum.Platform, sum.Handle)
	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": text,
		},
	}
}

func fieldsBlock(sum *pipeline.ScanSummary) map[string]any {
	fields := []map[string]any{
		{"type": "mrkdwn", "text": fmt.Sprintf("*Fetched:* %d", sum.Fetched)},
		{"type": "mrkdwn", "text": fmt.Sprintf("*Stored:* %d", sum.Stored)},
		{"type": "mrkdwn", "text": fmt.Sprintf("*Duplicates:* %d", sum.Duplicates)},
		{"type": "mrkdwn", "text": fmt.Sprintf("*Invalid:* %d", sum.Invalid)},
		{"type": "mrkdwn", "text": fmt.Sprintf("*Top score:* %.2f", sum.TopScore)},
		{"type": "mrkdwn", "text": fmt.Sprintf("*Duration:* %.1fs", sum.Duration)},
	}
	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func warningBlock(sum *pipeline.ScanSummary) map[string]any {
	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf(":warning: %s", sum.Warning),
		},
	}
}

func scoreEmoji(top float64) string {
	switch {
	case top >= 0.7:
		return "\U0001f534" // red circle
	case top >= 0.3:
		return "\U0001f7e1" // yellow circle
	default:
		return "\U0001f7e2" // green circle
	}
}
