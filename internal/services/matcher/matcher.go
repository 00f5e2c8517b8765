package matcher

import (
	"sort"
	"strings"

	"pricescout/internal/domain"
)

// Scoring weights. They sum to 1 so the score stays in [0,1].
const (
	brandWeight = 0.35
	nameWeight  = 0.30
	sizeWeight  = 0.15
	priceWeight = 0.20
)

// Retail prices above this multiple of the wholesale price start losing
// plausibility; above twice this multiple they contribute nothing.
const maxPlausibleMarkup = 4.0

// Match is a candidate annotated with its confidence score.
type Match struct {
	Candidate domain.Candidate
	Score     float64
}

// Matcher scores candidate listings against a normalized product. Scoring is
// deterministic: identical inputs always produce identical scores and
// ordering.
type Matcher struct{}

func New() *Matcher {
	return &Matcher{}
}

// Rank scores every candidate and returns the survivors ordered by descending
// score, ascending price on ties. Candidates with no brand-token overlap are
// dropped regardless of price.
func (m *Matcher) Rank(p domain.Product, candidates []domain.Candidate) []Match {
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		s := m.Score(p, c)
		if s <= 0 {
			continue
		}
		matches = append(matches, Match{Candidate: c, Score: s})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Candidate.Price < matches[j].Candidate.Price
	})
	return matches
}

// Score returns the confidence that the candidate refers to the same
// real-world product, in [0,1]. A listing whose title shares no token with
// the product's brand scores zero.
func (m *Matcher) Score(p domain.Product, c domain.Candidate) float64 {
	title := tokens(c.Title)
	if len(title) == 0 {
		return 0
	}
	brand := overlap(tokens(p.Brand), title)
	if len(tokens(p.Brand)) > 0 && brand == 0 {
		return 0
	}
	name := overlap(tokens(p.Name), title)
	size := overlap(tokens(p.Variant), title)
	price := pricePlausibility(p.WholesalePrice, c.Price)

	score := brandWeight*brand + nameWeight*name + sizeWeight*size + priceWeight*price
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// tokens lowercases s and splits it into alphanumeric runs.
func tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

// overlap is the fraction of want tokens found in have. A want token counts
// as found when a have token equals it or one contains the other, so "500ml"
// still matches "500". An empty want list has nothing to contradict and
// scores 1.
func overlap(want, have []string) float64 {
	if len(want) == 0 {
		return 1
	}
	found := 0
	for _, w := range want {
		for _, h := range have {
			if w == h || strings.Contains(h, w) || strings.Contains(w, h) {
				found++
				break
			}
		}
	}
	return float64(found) / float64(len(want))
}

// pricePlausibility rates how believable a retail price is against the
// wholesale price, in [0,1]. Retail at or moderately above wholesale is fully
// plausible; prices below cost or far above the markup band lose plausibility
// linearly. An unknown wholesale price is neutral.
func pricePlausibility(wholesale, price float64) float64 {
	if wholesale <= 0 || price <= 0 {
		return 0.5
	}
	r := price / wholesale
	switch {
	case r < 0.5:
		return 0
	case r < 1:
		return (r - 0.5) / 0.5
	case r <= maxPlausibleMarkup:
		return 1
	case r <= 2*maxPlausibleMarkup:
		return 1 - (r-maxPlausibleMarkup)/maxPlausibleMarkup
	default:
		return 0
	}
}
