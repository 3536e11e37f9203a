package event

import (
	"strings"
	"time"
)

const (
	StatusUpcoming   = "UPCOMING"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusCanceled   = "CANCELED"
)

// Event is one fight card night from a single source.
// Identity key is (Source, ExternalID).
type Event struct {
	ID         int64
	Source     string
	ExternalID string
	Name       string
	Date       *time.Time
	Location   string
	Status     string
	UpdatedAt  time.Time
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusUpcoming
	}
	return status
}

// statusRank orders the lifecycle so a status can only move forward.
func statusRank(status string) int {
	switch NormalizeStatus(status) {
	case StatusUpcoming:
		return 0
	case StatusInProgress:
		return 1
	case StatusCompleted:
		return 2
	case StatusCanceled:
		return 3
	default:
		return 0
	}
}

// AdvanceStatus returns the incoming status unless it would move the
// lifecycle backwards, in which case the current status is kept. A source
// re-reporting a finished event as upcoming must never downgrade it.
func AdvanceStatus(current, incoming string) string {
	current = NormalizeStatus(current)
	incoming = NormalizeStatus(incoming)
	if statusRank(incoming) < statusRank(current) {
		return current
	}
	return incoming
}
