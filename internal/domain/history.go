package domain

import "time"

// Terminal outcomes recorded in the download history
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

// HistoryEntry represents one finished download, kept for auditing
type HistoryEntry struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	URL          string    `gorm:"not null" json:"url"`
	Title        string    `json:"title"`
	Mode         string    `json:"mode"`
	Outcome      string    `gorm:"index" json:"outcome"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// HistoryRepository persists download outcomes
type HistoryRepository interface {
	Record(entry *HistoryEntry) error
	Recent(limit int) ([]*HistoryEntry, error)
	CountByOutcome(outcome string) (int64, error)
}
