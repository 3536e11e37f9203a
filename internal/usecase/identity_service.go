package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	crerr "github.com/cockroachdb/errors"
	"golang.org/x/text/unicode/norm"

	"github.com/cagepulse/cagepulse/internal/domain/fighter"
	"github.com/cagepulse/cagepulse/internal/domain/identity"
	"github.com/cagepulse/cagepulse/internal/platform/logging"
)

const (
	// Minimum name similarity before a fuzzy candidate is considered at all.
	fuzzyFloor = 0.7
	// Confidence needed to persist a mapping without review.
	acceptThreshold = 0.8
	// Stricter bar used when the run is verify-only.
	verifyThreshold = 0.95

	recordBoost      = 0.10
	weightClassBoost = 0.05

	maxReviewSamples = 10
)

type IdentityConfig struct {
	SourceA string
	SourceB string
}

// IdentityService resolves which fighter profiles from two sources are
// the same person, scores each match, and persists the accepted ones.
type IdentityService struct {
	fighters fighter.Repository
	mappings identity.Repository
	cfg      IdentityConfig
	logger   *logging.Logger
}

func NewIdentityService(fighters fighter.Repository, mappings identity.Repository, cfg IdentityConfig, logger *logging.Logger) *IdentityService {
	if logger == nil {
		logger = logging.Default()
	}
	return &IdentityService{
		fighters: fighters,
		mappings: mappings,
		cfg:      cfg,
		logger:   logger,
	}
}

// candidate is one scored pairing of an A-side fighter with a B-side profile.
type candidate struct {
	profile    fighter.Profile
	method     string
	confidence float64
	distance   int
}

// MapFighters walks every profile of source A and tries to bind it to a
// profile of source B. In verify-only mode the accept bar rises so only
// near-certain matches are written.
func (s *IdentityService) MapFighters(ctx context.Context, verifyOnly bool) (MappingSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "IdentityService.MapFighters")
	defer span.End()

	started := time.Now()
	summary := MappingSummary{SourceA: s.cfg.SourceA, SourceB: s.cfg.SourceB}

	if s.cfg.SourceA == "" || s.cfg.SourceB == "" || s.cfg.SourceA == s.cfg.SourceB {
		return summary, crerr.Wrap(ErrInvalidInput, "two distinct sources are required")
	}

	sideA, err := s.fighters.ListBySource(ctx, s.cfg.SourceA)
	if err != nil {
		return summary, crerr.Wrapf(err, "list fighters for %s", s.cfg.SourceA)
	}
	sideB, err := s.fighters.ListBySource(ctx, s.cfg.SourceB)
	if err != nil {
		return summary, crerr.Wrapf(err, "list fighters for %s", s.cfg.SourceB)
	}

	threshold := acceptThreshold
	if verifyOnly {
		threshold = verifyThreshold
	}

	for _, left := range sideA {
		existing, err := s.mappings.GetBySourceA(ctx, s.cfg.SourceA, left.ExternalID)
		if err != nil {
			return summary, crerr.Wrap(err, "load existing mapping")
		}
		if existing != nil {
			summary.Mapped++
			continue
		}

		best := bestCandidate(left, sideB)
		if best == nil {
			summary.Unmatched++
			continue
		}

		if best.confidence < threshold {
			summary.NeedsReview++
			if len(summary.ReviewSamples) < maxReviewSamples {
				summary.ReviewSamples = append(summary.ReviewSamples, fmt.Sprintf(
					"%s ~ %s (%s, %.2f)",
					left.FullName(), best.profile.FullName(), best.method, best.confidence,
				))
			}
			continue
		}

		if _, err := s.mappings.Upsert(ctx, identity.Mapping{
			SourceA:            s.cfg.SourceA,
			FighterAExternalID: left.ExternalID,
			SourceB:            s.cfg.SourceB,
			FighterBExternalID: best.profile.ExternalID,
			Method:             best.method,
			Confidence:         best.confidence,
			Verified:           best.method == identity.MethodExact,
		}); err != nil {
			return summary, crerr.Wrapf(err, "persist mapping for %s", left.ExternalID)
		}
		summary.Mapped++
		summary.AutoAccepted++
	}

	summary.Duration = time.Since(started)
	s.logger.InfoContext(ctx, "fighter mapping finished",
		"source_a", s.cfg.SourceA,
		"source_b", s.cfg.SourceB,
		"mapped", summary.Mapped,
		"auto_accepted", summary.AutoAccepted,
		"needs_review", summary.NeedsReview,
		"unmatched", summary.Unmatched,
		"duration", summary.Duration,
	)
	return summary, nil
}

// bestCandidate runs the tiers in order of strength: exact name,
// unique normalized name, normalized name disambiguated by record, and
// finally fuzzy edit distance. Fuzzy ties break on smallest distance,
// then highest confidence, then lexicographic external id.
func bestCandidate(left fighter.Profile, sideB []fighter.Profile) *candidate {
	leftName := left.FullName()
	leftExact := strings.ToLower(strings.TrimSpace(leftName))
	leftNorm := normalizeName(leftName)

	var exact, normalized []fighter.Profile
	for _, right := range sideB {
		if leftExact != "" && strings.ToLower(strings.TrimSpace(right.FullName())) == leftExact {
			exact = append(exact, right)
		}
		if normalizeName(right.FullName()) == leftNorm && leftNorm != "" {
			normalized = append(normalized, right)
		}
	}

	if len(exact) == 1 {
		return &candidate{profile: exact[0], method: identity.MethodExact, confidence: 1.0}
	}
	if len(normalized) == 1 {
		return &candidate{profile: normalized[0], method: identity.MethodNormalized, confidence: 0.95}
	}
	if len(normalized) > 1 {
		var withRecord []fighter.Profile
		for _, right := range normalized {
			if sameRecord(left, right) {
				withRecord = append(withRecord, right)
			}
		}
		if len(withRecord) == 1 {
			return &candidate{profile: withRecord[0], method: identity.MethodNormalizedRecord, confidence: 0.9}
		}
	}

	var best *candidate
	for _, right := range sideB {
		rightNorm := normalizeName(right.FullName())
		if leftNorm == "" || rightNorm == "" {
			continue
		}

		distance := levenshtein(leftNorm, rightNorm)
		longest := len(leftNorm)
		if len(rightNorm) > longest {
			longest = len(rightNorm)
		}
		similarity := 1.0 - float64(distance)/float64(longest)
		if similarity <= fuzzyFloor {
			continue
		}

		confidence := similarity
		if sameRecord(left, right) {
			confidence += recordBoost
		}
		if sharesWeightToken(left.WeightClass, right.WeightClass) {
			confidence += weightClassBoost
		}
		if confidence > 1.0 {
			confidence = 1.0
		}

		next := &candidate{profile: right, method: identity.MethodFuzzy, confidence: confidence, distance: distance}
		if best == nil || betterFuzzy(next, best) {
			best = next
		}
	}
	return best
}

func betterFuzzy(a, b *candidate) bool {
	if a.distance != b.distance {
		return a.distance < b.distance
	}
	if a.confidence != b.confidence {
		return a.confidence > b.confidence
	}
	return a.profile.ExternalID < b.profile.ExternalID
}

// sameRecord keys on wins and losses only; sources disagree on how
// draws and no contests are counted.
func sameRecord(a, b fighter.Profile) bool {
	return a.Wins == b.Wins && a.Losses == b.Losses
}

// sharesWeightToken matches on any common word, so "Women's Strawweight"
// still lines up with a source that just says "Strawweight".
func sharesWeightToken(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(a)) {
		tokens[tok] = true
	}
	for _, tok := range strings.Fields(strings.ToLower(b)) {
		if tokens[tok] {
			return true
		}
	}
	return false
}

// normalizeName lowercases, strips diacritics and punctuation, and
// collapses runs of whitespace so "José Aldo Jr." and "jose aldo jr"
// compare equal.
func normalizeName(name string) string {
	decomposed := norm.NFD.String(strings.ToLower(name))

	var b strings.Builder
	b.Grow(len(decomposed))
	lastSpace := true
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// Combining marks left over from decomposition.
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '\'':
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// levenshtein is the classic two-row edit distance over bytes; inputs
// are normalized ASCII-ish names so byte distance is fine here.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
