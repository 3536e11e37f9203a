package identity

import "time"

// Match methods, ordered strongest first.
const (
	MethodExact            = "exact"
	MethodNormalized       = "normalized"
	MethodNormalizedRecord = "normalized+record"
	MethodFuzzy            = "fuzzy"
)

// Mapping links the same real-world fighter across two sources.
// At most one mapping may exist per (SourceA, FighterAExternalID).
type Mapping struct {
	ID                 int64
	SourceA            string
	FighterAExternalID string
	SourceB            string
	FighterBExternalID string
	Method             string
	Confidence         float64
	Verified           bool
	CreatedAt          time.Time
}
