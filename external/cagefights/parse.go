package cagefights

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/cagepulse/cagepulse/internal/usecase"
)

// The listing renders dates like "January 2, 2026".
const eventDateLayout = "January 2, 2006"

var recordRegex = regexp.MustCompile(`(\d+)-(\d+)-(\d+)(?:\s*\((\d+)\s*NC\))?`)

// cardRow is one parsed fight row; result is nil until the bout finishes.
type cardRow struct {
	fight  usecase.ExternalFight
	result *usecase.ExternalResult
}

func parseEventList(body []byte) ([]usecase.ExternalEvent, error) {
	doc, err := documentFrom(body)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	out := make([]usecase.ExternalEvent, 0, 16)
	doc.Find("table.events tr").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("td.name a")
		href, _ := link.Attr("href")
		id := idFromHref(href, "/event/")
		if id == "" || seen[id] {
			return
		}
		seen[id] = true

		item := usecase.ExternalEvent{
			ExternalID: id,
			Name:       strings.TrimSpace(link.Text()),
			Location:   strings.TrimSpace(row.Find("td.location").Text()),
		}
		if parsed, err := time.Parse(eventDateLayout, strings.TrimSpace(row.Find("td.date").Text())); err == nil {
			utc := parsed.UTC()
			item.Date = &utc
		}
		out = append(out, item)
	})
	return out, nil
}

func parseFightCard(body []byte, eventExternalID string) ([]cardRow, error) {
	doc, err := documentFrom(body)
	if err != nil {
		return nil, err
	}

	out := make([]cardRow, 0, 14)
	doc.Find("table.card tr[data-fight]").Each(func(_ int, row *goquery.Selection) {
		fightID, _ := row.Attr("data-fight")
		fightID = strings.TrimSpace(fightID)

		redID, redName := cornerFrom(row.Find("td.red"))
		blueID, blueName := cornerFrom(row.Find("td.blue"))
		if fightID == "" || redID == "" || blueID == "" {
			return
		}

		weight := strings.TrimSpace(row.Find("td.weight").Text())
		titleBout := strings.Contains(weight, "Title")
		weight = strings.TrimSpace(strings.TrimSuffix(weight, "Title"))

		item := cardRow{
			fight: usecase.ExternalFight{
				ExternalID:      eventExternalID + ":" + fightID,
				EventExternalID: eventExternalID,
				CardOrder:       len(out),
				RedExternalID:   redID,
				RedName:         redName,
				BlueExternalID:  blueID,
				BlueName:        blueName,
				WeightClass:     weight,
				TitleBout:       titleBout,
			},
		}

		if winner := winnerFrom(row); winner != "" {
			result := usecase.ExternalResult{
				Winner:  winner,
				Method:  strings.TrimSpace(row.Find("td.method").Text()),
				EndTime: strings.TrimSpace(row.Find("td.time").Text()),
			}
			if round, err := strconv.Atoi(strings.TrimSpace(row.Find("td.round").Text())); err == nil {
				result.EndRound = round
			}
			item.result = &result
		}

		out = append(out, item)
	})
	return out, nil
}

// winnerFrom reads the outcome markers the site prints next to a corner
// once a bout ends: "Win" on the winning side, "Draw" or "NC" on both.
func winnerFrom(row *goquery.Selection) string {
	red := strings.TrimSpace(row.Find("td.red span.outcome").Text())
	blue := strings.TrimSpace(row.Find("td.blue span.outcome").Text())

	switch {
	case red == "Win":
		return "RED"
	case blue == "Win":
		return "BLUE"
	case red == "Draw" || blue == "Draw":
		return "DRAW"
	case red == "NC" || blue == "NC":
		return "NO_CONTEST"
	default:
		return ""
	}
}

func cornerFrom(cell *goquery.Selection) (id, name string) {
	link := cell.Find("a")
	href, _ := link.Attr("href")
	return idFromHref(href, "/fighter/"), strings.TrimSpace(link.Text())
}

func parseFighterPage(body []byte) (*usecase.ExternalFighter, error) {
	doc, err := documentFrom(body)
	if err != nil {
		return nil, err
	}

	fullName := strings.TrimSpace(doc.Find("h1.fighter-name").Text())
	if fullName == "" {
		return nil, nil
	}

	out := &usecase.ExternalFighter{
		Nickname: strings.TrimSpace(doc.Find("span.nickname").Text()),
	}
	out.FirstName, out.LastName = splitName(fullName)

	stats := make(map[string]string, 8)
	doc.Find("dl.stats dt").Each(func(_ int, dt *goquery.Selection) {
		key := strings.TrimSpace(dt.Text())
		value := strings.TrimSpace(dt.NextFiltered("dd").Text())
		if key != "" && value != "" {
			stats[key] = value
		}
	})

	out.WeightClass = stats["Division"]
	out.HeightCm = leadingFloat(stats["Height"])
	out.ReachCm = leadingFloat(stats["Reach"])
	out.StrikesLPM = leadingFloat(stats["SLpM"])
	out.StrikeAcc = leadingFloat(stats["Str. Acc."])
	out.TakedownAvg = leadingFloat(stats["TD Avg."])
	out.SubAvg = leadingFloat(stats["Sub. Avg."])
	out.Wins, out.Losses, out.Draws, out.NoContests = parseRecord(stats["Record"])
	return out, nil
}

func parseRankings(body []byte, division string) ([]usecase.ExternalFighter, error) {
	doc, err := documentFrom(body)
	if err != nil {
		return nil, err
	}

	position := 0
	out := make([]usecase.ExternalFighter, 0, 16)
	doc.Find("ol.rankings li").Each(func(_ int, item *goquery.Selection) {
		link := item.Find("a")
		href, _ := link.Attr("href")
		id := idFromHref(href, "/fighter/")
		if id == "" {
			return
		}

		row := usecase.ExternalFighter{
			ExternalID:  id,
			WeightClass: division,
			Interim:     item.HasClass("interim"),
		}
		row.FirstName, row.LastName = splitName(strings.TrimSpace(link.Text()))

		var rank int
		if !item.HasClass("champ") && !item.HasClass("interim") {
			position++
			rank = position
		}
		row.Rank = &rank

		out = append(out, row)
	})
	return out, nil
}

// idFromHref extracts the trailing id from links like /event/evt-301 or
// /fighter/f-17, tolerating absolute URLs and query strings.
func idFromHref(href, marker string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	idx := strings.Index(href, marker)
	if idx < 0 {
		return ""
	}
	rest := href[idx+len(marker):]
	if cut := strings.IndexAny(rest, "?#/"); cut >= 0 {
		rest = rest[:cut]
	}
	return strings.TrimSpace(rest)
}

func splitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	idx := strings.LastIndex(full, " ")
	if idx < 0 {
		return full, ""
	}
	return full[:idx], full[idx+1:]
}

// parseRecord reads "26-1-0" or "26-1-0 (2 NC)".
func parseRecord(raw string) (wins, losses, draws, noContests int) {
	match := recordRegex.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return 0, 0, 0, 0
	}
	wins, _ = strconv.Atoi(match[1])
	losses, _ = strconv.Atoi(match[2])
	draws, _ = strconv.Atoi(match[3])
	if match[4] != "" {
		noContests, _ = strconv.Atoi(match[4])
	}
	return wins, losses, draws, noContests
}

func leadingFloat(raw string) float64 {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) == 0 {
		return 0
	}
	value, err := strconv.ParseFloat(strings.TrimSuffix(fields[0], "%"), 64)
	if err != nil {
		return 0
	}
	return value
}
