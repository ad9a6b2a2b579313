package domain

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TitleLoading is the placeholder title shown until the background
// metadata lookup resolves the real one.
const TitleLoading = "(fetching title...)"

// QueueItem is one pending download in the queue
type QueueItem struct {
	ID        string
	URL       string
	Title     string
	CreatedAt time.Time
}

// NewQueueItem creates a queue item with a fresh ID and a placeholder title
func NewQueueItem(rawURL string) *QueueItem {
	return &QueueItem{
		ID:        uuid.New().String(),
		URL:       strings.TrimSpace(rawURL),
		Title:     TitleLoading,
		CreatedAt: time.Now(),
	}
}

// DisplayTitle returns the resolved title, falling back to the URL while
// the lookup is still pending or has failed.
func (i *QueueItem) DisplayTitle() string {
	if i.Title == "" || i.Title == TitleLoading {
		return i.URL
	}
	return i.Title
}

// ValidateURL rejects anything that is not a well-formed absolute http(s)
// URL. Returns a KindInvalidInput error describing the problem.
func ValidateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return NewError(KindInvalidInput, "URL is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return WrapError(KindInvalidInput, "malformed URL", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return NewError(KindInvalidInput, "URL scheme must be http or https")
	}
	if u.Host == "" {
		return NewError(KindInvalidInput, "URL is missing a host")
	}
	return nil
}
