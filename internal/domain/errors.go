package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies a failure category
type Kind string

const (
	KindInvalidInput         Kind = "invalid_input"
	KindConfigurationMissing Kind = "configuration_missing"
	KindCancelled            Kind = "cancelled"
	KindNetwork              Kind = "network"
	KindVideoUnavailable     Kind = "video_unavailable"
	KindUnsupportedSite      Kind = "unsupported_site"
	KindDownloadFailed       Kind = "download_failed"
	KindFilesystem           Kind = "filesystem"
)

// DownloadError is a classified failure from the download pipeline
type DownloadError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *DownloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// NewError creates a DownloadError without an underlying cause
func NewError(kind Kind, message string) *DownloadError {
	return &DownloadError{Kind: kind, Message: message}
}

// WrapError creates a DownloadError wrapping an underlying cause
func WrapError(kind Kind, message string, err error) *DownloadError {
	return &DownloadError{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err, defaulting to KindDownloadFailed
// for errors that did not come out of this taxonomy.
func KindOf(err error) Kind {
	var de *DownloadError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindDownloadFailed
}

// IsCancelled reports whether err represents a user-initiated cancellation
func IsCancelled(err error) bool {
	return err != nil && KindOf(err) == KindCancelled
}

// classificationRules maps tool output keywords to kinds. Rule order is
// significant: the first group containing a matching keyword wins, so a
// message mentioning both "unavailable" and "network" classifies as
// video_unavailable.
var classificationRules = []struct {
	kind     Kind
	keywords []string
}{
	{KindVideoUnavailable, []string{"private", "unavailable", "removed", "deleted", "blocked"}},
	{KindNetwork, []string{"timeout", "connection", "network", "dns", "unreachable"}},
	{KindUnsupportedSite, []string{"unsupported", "not supported", "no suitable"}},
}

// Classify maps raw external-tool error text to a taxonomy kind by
// case-insensitive substring matching. Unmatched text falls through to
// KindDownloadFailed. KindCancelled, KindConfigurationMissing and
// KindInvalidInput are raised deliberately and never come from here.
func Classify(raw string) Kind {
	text := strings.ToLower(raw)
	for _, rule := range classificationRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(text, keyword) {
				return rule.kind
			}
		}
	}
	return KindDownloadFailed
}

// WrapToolError classifies raw tool output and wraps it as a typed error
func WrapToolError(raw string, err error) *DownloadError {
	message := strings.TrimSpace(raw)
	if message == "" && err != nil {
		message = err.Error()
	}
	return &DownloadError{Kind: Classify(message), Message: message, Err: err}
}
