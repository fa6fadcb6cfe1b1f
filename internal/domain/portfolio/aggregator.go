// Package portfolio folds many valuation results into summary statistics,
// an actor ranking, and threshold-driven recommendations. Aggregation is a
// pure reduction; an empty input yields a zero summary, never an error.
package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/crawlmeter/crawlmeter/internal/domain/detection"
	"github.com/crawlmeter/crawlmeter/internal/domain/pricing"
)

const (
	// HighValueThreshold is the per-entry value above which an access
	// counts as high value.
	HighValueThreshold = 1.00

	// TopActorLimit bounds the actor ranking.
	TopActorLimit = 10

	// UnknownActorBucket groups entries whose classification carries no
	// actor name.
	UnknownActorBucket = "Unknown"
)

// Entry pairs one classification with its valuation.
type Entry struct {
	Classification detection.ClassificationResult `json:"classification"`
	Valuation      pricing.ValuationResult        `json:"valuation"`
}

// ActorValue is one row of the actor ranking.
type ActorValue struct {
	Actor      string          `json:"actor"`
	TotalValue decimal.Decimal `json:"total_value"`
	Count      int             `json:"count"`
}

// PortfolioSummary is the aggregate over N entries.
type PortfolioSummary struct {
	EntryCount              int             `json:"entry_count"`
	TotalValue              decimal.Decimal `json:"total_value"`
	AverageValue            decimal.Decimal `json:"average_value"`
	HighValueCount          int             `json:"high_value_count"`
	LicensingCandidateCount int             `json:"licensing_candidate_count"`
	TopActorsByValue        []ActorValue    `json:"top_actors_by_value"`
	Recommendations         []string        `json:"recommendations,omitempty"`
}

// Recommendation decision-table thresholds.
const (
	recommendTotalDirect     = 100.00
	recommendTotalCollective = 10.00
	recommendManyCandidates  = 10
)

// Aggregate folds the entries into a PortfolioSummary. It is pure and
// deterministic: the same input sequence always produces the same summary,
// and appending nothing changes nothing.
func Aggregate(entries []Entry) PortfolioSummary {
	if len(entries) == 0 {
		return PortfolioSummary{
			TotalValue:   decimal.Zero,
			AverageValue: decimal.Zero,
		}
	}

	total := decimal.Zero
	highValue := 0
	candidates := 0
	perActor := map[string]*ActorValue{}

	highThreshold := decimal.NewFromFloat(HighValueThreshold)

	for _, e := range entries {
		v := e.Valuation.EstimatedValue
		total = total.Add(v)

		if v.GreaterThan(highThreshold) {
			highValue++
		}
		if e.Valuation.LicensingPotential == pricing.LicensingHigh {
			candidates++
		}

		actor := e.Classification.ActorName
		if actor == "" {
			actor = UnknownActorBucket
		}
		row, ok := perActor[actor]
		if !ok {
			row = &ActorValue{Actor: actor, TotalValue: decimal.Zero}
			perActor[actor] = row
		}
		row.TotalValue = row.TotalValue.Add(v)
		row.Count++
	}

	ranking := make([]ActorValue, 0, len(perActor))
	for _, row := range perActor {
		ranking = append(ranking, *row)
	}
	// Descending by value; actor name breaks ties so the order is stable
	// across runs.
	sort.Slice(ranking, func(i, j int) bool {
		if !ranking[i].TotalValue.Equal(ranking[j].TotalValue) {
			return ranking[i].TotalValue.GreaterThan(ranking[j].TotalValue)
		}
		return ranking[i].Actor < ranking[j].Actor
	})
	if len(ranking) > TopActorLimit {
		ranking = ranking[:TopActorLimit]
	}

	return PortfolioSummary{
		EntryCount:              len(entries),
		TotalValue:              total,
		AverageValue:            total.DivRound(decimal.NewFromInt(int64(len(entries))), 2),
		HighValueCount:          highValue,
		LicensingCandidateCount: candidates,
		TopActorsByValue:        ranking,
		Recommendations:         recommend(total, candidates),
	}
}

// recommend is a fixed decision table over the portfolio total and the
// licensing-candidate count: one value-tier line, plus one candidate line
// when any candidates exist.
func recommend(total decimal.Decimal, candidates int) []string {
	var out []string

	switch {
	case total.GreaterThanOrEqual(decimal.NewFromFloat(recommendTotalDirect)):
		out = append(out, "Portfolio value supports direct licensing negotiations with AI operators.")
	case total.GreaterThanOrEqual(decimal.NewFromFloat(recommendTotalCollective)):
		out = append(out, "Consider a collective licensing program to monetize recurring crawler access.")
	default:
		out = append(out, "Portfolio value is currently low; grow high-value content before pursuing licensing.")
	}

	switch {
	case candidates >= recommendManyCandidates:
		out = append(out, "Many accesses show high licensing potential; prioritize outreach to the top actors.")
	case candidates >= 1:
		out = append(out, "At least one access shows high licensing potential; review the top-actor ranking.")
	}

	return out
}
