package statleague

import (
	"strings"

	"github.com/cagepulse/cagepulse/internal/domain/fighter"
	"github.com/cagepulse/cagepulse/internal/usecase"
)

// statleague returns flat rows without an envelope.
type fighterRow struct {
	ID          string  `json:"id"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Nickname    string  `json:"nickname"`
	Division    string  `json:"division"`
	HeightCm    float64 `json:"height_cm"`
	ReachCm     float64 `json:"reach_cm"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	Draws       int     `json:"draws"`
	NoContests  int     `json:"nc"`
	SigStrikes  float64 `json:"sig_strikes_per_min"`
	StrikeAcc   float64 `json:"strike_accuracy"`
	Takedowns   float64 `json:"takedowns_per_15"`
	Submissions float64 `json:"submissions_per_15"`
}

type rankingRow struct {
	Position int        `json:"position"`
	Interim  bool       `json:"interim"`
	Fighter  fighterRow `json:"fighter"`
}

func (r fighterRow) external() usecase.ExternalFighter {
	return usecase.ExternalFighter{
		ExternalID:  strings.TrimSpace(r.ID),
		FirstName:   strings.TrimSpace(r.FirstName),
		LastName:    strings.TrimSpace(r.LastName),
		Nickname:    strings.TrimSpace(r.Nickname),
		WeightClass: strings.TrimSpace(r.Division),
		HeightCm:    r.HeightCm,
		ReachCm:     r.ReachCm,
		Wins:        r.Wins,
		Losses:      r.Losses,
		Draws:       r.Draws,
		NoContests:  r.NoContests,
		StrikesLPM:  r.SigStrikes,
		StrikeAcc:   r.StrikeAcc,
		TakedownAvg: r.Takedowns,
		SubAvg:      r.Submissions,
	}
}

func (r fighterRow) summary() fighter.Summary {
	name := strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
	return fighter.Summary{
		ExternalID:  strings.TrimSpace(r.ID),
		Name:        name,
		Nickname:    strings.TrimSpace(r.Nickname),
		WeightClass: strings.TrimSpace(r.Division),
		Wins:        r.Wins,
		Losses:      r.Losses,
		Draws:       r.Draws,
	}
}
