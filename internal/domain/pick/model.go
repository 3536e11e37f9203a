package pick

import "time"

const (
	StatusActive = "ACTIVE"
	StatusGraded = "GRADED"
	StatusVoided = "VOIDED"
)

// Pick is one user's prediction on a fight. The sync engine only ever
// voids or grades picks; creating them belongs to another surface.
type Pick struct {
	ID        int64
	UserID    string
	FightID   int64
	Corner    string
	Status    string
	Score     *int
	UpdatedAt time.Time
}

// GradeOutcome is what the atomic grading procedure reports back.
type GradeOutcome struct {
	GradedCount int
	UserIDs     []string
}
