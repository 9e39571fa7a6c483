package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"NewsCurator/internal/domain"
	"NewsCurator/internal/ports"
)

// Notifier posts ingestion run digests to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// PublishDigest posts a plain-text message to Telegram.
func (n *Notifier) PublishDigest(ctx context.Context, digest string) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", digest)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

// FormatSummary renders a run summary as a short digest message.
func FormatSummary(summary domain.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ingestion finished %s\n", summary.FinishedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "found %d, created %d, duplicates %d\n",
		summary.TotalFound, summary.TotalCreated, summary.TotalDuped)

	for _, res := range summary.Results {
		for _, errMsg := range res.Errors {
			source := string(res.Source)
			if res.FeedURL != "" {
				source = res.FeedURL
			}
			fmt.Fprintf(&b, "error %s: %s\n", source, errMsg)
		}
	}

	if len(summary.KeywordStats) > 0 {
		top := summary.KeywordStats
		if len(top) > 5 {
			top = top[:5]
		}
		parts := make([]string, 0, len(top))
		for _, stat := range top {
			parts = append(parts, fmt.Sprintf("%s (%d)", stat.Term, stat.Count))
		}
		fmt.Fprintf(&b, "top keywords: %s\n", strings.Join(parts, ", "))
	}

	return strings.TrimRight(b.String(), "\n")
}
