package fighter

import "time"

// RankChampion is the ranking sentinel for the current division champion.
const RankChampion = 0

// Profile is one fighter as a single source reports them. The same
// real-world fighter may have one profile per source; cross-source
// identity lives in the identity package.
type Profile struct {
	ID          int64
	Source      string
	ExternalID  string
	FirstName   string
	LastName    string
	Nickname    string
	WeightClass string
	HeightCm    float64
	ReachCm     float64
	Wins        int
	Losses      int
	Draws       int
	NoContests  int
	StrikesLPM  float64
	StrikeAcc   float64
	TakedownAvg float64
	SubAvg      float64
	Rank        *int
	Interim     bool
	UpdatedAt   time.Time
}

// FullName joins the name parts the way sources display them.
func (p Profile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}

// IsChampion reports whether the profile carries the champion sentinel.
func (p Profile) IsChampion() bool {
	return p.Rank != nil && *p.Rank == RankChampion
}

// Summary is the light search-result shape providers return.
type Summary struct {
	ExternalID  string
	Name        string
	Nickname    string
	WeightClass string
	Wins        int
	Losses      int
	Draws       int
}
