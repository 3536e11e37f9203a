package fight

import (
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusCompleted = "COMPLETED"
	StatusCanceled  = "CANCELED"
	StatusReplaced  = "REPLACED"
)

const (
	WinnerRed       = "RED"
	WinnerBlue      = "BLUE"
	WinnerDraw      = "DRAW"
	WinnerNoContest = "NO_CONTEST"
	WinnerUnknown   = "UNKNOWN"
)

// Corner is one side of a bout.
type Corner struct {
	FighterExternalID string
	Name              string
}

// Fight is one bout on an event card. Identity key is
// (Source, ExternalID) when the source assigns fight ids.
type Fight struct {
	ID          int64
	Source      string
	ExternalID  string
	EventID     int64
	CardOrder   int
	Red         Corner
	Blue        Corner
	WeightClass string
	Rounds      int
	TitleBout   bool
	Status      string
	UpdatedAt   time.Time
}

// Result is the terminal outcome of a fight. At most one per fight.
type Result struct {
	FightID    int64
	Winner     string
	Method     string
	EndRound   int
	EndTime    string
	RecordedAt time.Time
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

// IsActive reports whether the fight still counts towards event completion.
func IsActive(status string) bool {
	switch NormalizeStatus(status) {
	case StatusCanceled, StatusReplaced:
		return false
	default:
		return true
	}
}

// ScheduledRounds derives the round count: five for title bouts, three otherwise.
func ScheduledRounds(titleBout bool) int {
	if titleBout {
		return 5
	}
	return 3
}

func NormalizeWinner(value string) string {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case WinnerRed:
		return WinnerRed
	case WinnerBlue:
		return WinnerBlue
	case WinnerDraw:
		return WinnerDraw
	case WinnerNoContest, "NC":
		return WinnerNoContest
	default:
		return WinnerUnknown
	}
}
