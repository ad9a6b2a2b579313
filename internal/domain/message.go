package domain

import "github.com/NikiWay00/modern-video-downloader/internal/progress"

// MessageKind tags a message on the output channel
type MessageKind string

const (
	MessageStatus    MessageKind = "status"
	MessageDetails   MessageKind = "details"
	MessageProgress  MessageKind = "progress"
	MessageLog       MessageKind = "log"
	MessageDone      MessageKind = "done"
	MessageShowError MessageKind = "show_error"
)

// Status bar texts
const (
	StatusReady       = "Waiting for a download"
	StatusDownloading = "Downloading..."
	StatusProcessing  = "Processing file..."
	StatusComplete    = "Download complete"
	StatusCancelled   = "Download cancelled"
)

// Log lines emitted by queue operations
const (
	LogCancelRequested = "Cancellation requested, stopping after the current chunk..."
	LogQueueCleared    = "Queue cleared"
	LogRemovedLast     = "Removed last queue entry"
	LogAllComplete     = "All downloads complete"
	LogQueueCancelled  = "Queue cancelled"
)

// StatusError formats a failure for the status bar
func StatusError(detail string) string {
	return "Error: " + detail
}

// ErrorNotice is the payload of a show_error message, rendered as a
// modal dialog by the desktop presentation layer.
type ErrorNotice struct {
	Title string
	Text  string
}

// Message is one tagged event on the output channel. Exactly one of
// Text, Progress or Notice is meaningful depending on Kind.
type Message struct {
	Kind     MessageKind
	Text     string
	Progress *progress.Snapshot
	Notice   *ErrorNotice
}

func StatusMessage(text string) Message {
	return Message{Kind: MessageStatus, Text: text}
}

func DetailsMessage(text string) Message {
	return Message{Kind: MessageDetails, Text: text}
}

func ProgressMessage(snapshot progress.Snapshot) Message {
	return Message{Kind: MessageProgress, Progress: &snapshot}
}

func LogMessage(text string) Message {
	return Message{Kind: MessageLog, Text: text}
}

func DoneMessage() Message {
	return Message{Kind: MessageDone}
}

func ShowErrorMessage(title, text string) Message {
	return Message{Kind: MessageShowError, Notice: &ErrorNotice{Title: title, Text: text}}
}
