package usecase

import "time"

// EventSyncSummary reports one event-list reconciliation run.
type EventSyncSummary struct {
	Source   string
	Inserted int
	Updated  int
	Skipped  int
	Aborted  bool
	Message  string
	Duration time.Duration
	Errors   []string
}

// CardSyncSummary reports one fight-card reconciliation run.
type CardSyncSummary struct {
	Source      string
	EventID     string
	Inserted    int
	Updated     int
	Canceled    int
	VoidedPicks int
	Aborted     bool
	Message     string
	Duration    time.Duration
	Errors      []string
}

// ResultSyncSummary reports one result-ingestion run.
type ResultSyncSummary struct {
	Source            string
	EventID           string
	ResultsRecorded   int
	GradedPicks       int
	ChampionFlips     int
	FightersRefreshed int
	EventCompleted    bool
	Duration          time.Duration
	Errors            []string
}

// MappingSummary reports one cross-source identity resolution run.
type MappingSummary struct {
	SourceA       string
	SourceB       string
	Mapped        int
	AutoAccepted  int
	NeedsReview   int
	Unmatched     int
	ReviewSamples []string
	Duration      time.Duration
}
