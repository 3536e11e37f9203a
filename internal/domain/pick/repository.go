package pick

import "context"

// Repository exposes pick reads plus the two write paths the sync engine
// owns: voiding picks on canceled fights and the atomic grading procedure.
type Repository interface {
	ListActiveByFight(ctx context.Context, fightID int64) ([]Pick, error)
	VoidByFight(ctx context.Context, fightID int64) (int, error)
	// GradeByFight applies the stored grading procedure for a decided
	// fight. It must be all-or-nothing: either every active pick on the
	// fight is graded or none are.
	GradeByFight(ctx context.Context, fightID int64, winner string) (GradeOutcome, error)
}
