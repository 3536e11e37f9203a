package fightdataapi

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/cagepulse/cagepulse/internal/domain/fighter"
	"github.com/cagepulse/cagepulse/internal/usecase"
)

// The API wraps every response in the same envelope; plan and auth
// failures arrive as success=false with an error code, not as HTTP
// status codes.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	errCodeNotFound       = "not_found"
	errCodePlanRestricted = "plan_restricted"
)

type eventItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartsAt  string `json:"starts_at"`
	Location  string `json:"location"`
	Completed bool   `json:"completed"`
}

type fightItem struct {
	ID          string     `json:"id"`
	EventID     string     `json:"event_id"`
	CardOrder   int        `json:"card_order"`
	Red         cornerItem `json:"red"`
	Blue        cornerItem `json:"blue"`
	WeightClass string     `json:"weight_class"`
	TitleBout   bool       `json:"title_bout"`
}

type cornerItem struct {
	FighterID string `json:"fighter_id"`
	Name      string `json:"name"`
}

type resultItem struct {
	FightID  string `json:"fight_id"`
	Winner   string `json:"winner"`
	Method   string `json:"method"`
	EndRound int    `json:"end_round"`
	EndTime  string `json:"end_time"`
}

type fighterItem struct {
	ID          string  `json:"id"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Nickname    string  `json:"nickname"`
	WeightClass string  `json:"weight_class"`
	HeightCm    float64 `json:"height_cm"`
	ReachCm     float64 `json:"reach_cm"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	Draws       int     `json:"draws"`
	NoContests  int     `json:"no_contests"`
	SLPM        float64 `json:"slpm"`
	StrAcc      float64 `json:"str_acc"`
	TDAvg       float64 `json:"td_avg"`
	SubAvg      float64 `json:"sub_avg"`
	Rank        *int    `json:"rank"`
	Interim     bool    `json:"interim"`
}

func mapEvent(item eventItem) usecase.ExternalEvent {
	out := usecase.ExternalEvent{
		ExternalID: strings.TrimSpace(item.ID),
		Name:       strings.TrimSpace(item.Name),
		Location:   strings.TrimSpace(item.Location),
		Completed:  item.Completed,
	}
	if parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(item.StartsAt)); err == nil {
		utc := parsed.UTC()
		out.Date = &utc
	}
	return out
}

func mapFight(item fightItem) usecase.ExternalFight {
	return usecase.ExternalFight{
		ExternalID:      strings.TrimSpace(item.ID),
		EventExternalID: strings.TrimSpace(item.EventID),
		CardOrder:       item.CardOrder,
		RedExternalID:   strings.TrimSpace(item.Red.FighterID),
		RedName:         strings.TrimSpace(item.Red.Name),
		BlueExternalID:  strings.TrimSpace(item.Blue.FighterID),
		BlueName:        strings.TrimSpace(item.Blue.Name),
		WeightClass:     strings.TrimSpace(item.WeightClass),
		TitleBout:       item.TitleBout,
	}
}

func mapResult(item resultItem) usecase.ExternalResult {
	return usecase.ExternalResult{
		FightExternalID: strings.TrimSpace(item.FightID),
		Winner:          strings.TrimSpace(item.Winner),
		Method:          strings.TrimSpace(item.Method),
		EndRound:        item.EndRound,
		EndTime:         strings.TrimSpace(item.EndTime),
	}
}

func mapFighter(item fighterItem) usecase.ExternalFighter {
	return usecase.ExternalFighter{
		ExternalID:  strings.TrimSpace(item.ID),
		FirstName:   strings.TrimSpace(item.FirstName),
		LastName:    strings.TrimSpace(item.LastName),
		Nickname:    strings.TrimSpace(item.Nickname),
		WeightClass: strings.TrimSpace(item.WeightClass),
		HeightCm:    item.HeightCm,
		ReachCm:     item.ReachCm,
		Wins:        item.Wins,
		Losses:      item.Losses,
		Draws:       item.Draws,
		NoContests:  item.NoContests,
		StrikesLPM:  item.SLPM,
		StrikeAcc:   item.StrAcc,
		TakedownAvg: item.TDAvg,
		SubAvg:      item.SubAvg,
		Rank:        item.Rank,
		Interim:     item.Interim,
	}
}

func mapSummary(item fighterItem) fighter.Summary {
	name := strings.TrimSpace(strings.TrimSpace(item.FirstName) + " " + strings.TrimSpace(item.LastName))
	return fighter.Summary{
		ExternalID:  strings.TrimSpace(item.ID),
		Name:        name,
		Nickname:    strings.TrimSpace(item.Nickname),
		WeightClass: strings.TrimSpace(item.WeightClass),
		Wins:        item.Wins,
		Losses:      item.Losses,
		Draws:       item.Draws,
	}
}
