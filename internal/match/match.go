// Package match ranks active supply records against a demand record.
//
// Compute is a pure, side-effect-free computation over its inputs: it
// never mutates status on any record, and calling it twice with
// identical inputs yields an identical ordered list. Driving a
// lifecycle transition on a qualifying candidate is the external
// dispatcher's responsibility.
package match

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/rigmatch/internal/request"
)

// Scoring model. A candidate's score is one of {0.5, 0.7, 0.8, 1.0};
// the 0.5-only case falls below the threshold and is dropped.
const (
	// scoreBase is granted to every supply in the demand's region.
	scoreBase = 0.5

	// equipmentBonus is granted when the demanded equipment type
	// appears in the supply's equipment list.
	equipmentBonus = 0.3

	// budgetBonus is granted when the demand's budget covers a day of
	// rental at the supply's hourly rate.
	budgetBonus = 0.2

	// hoursPerDay is the fixed day-cost estimate multiplier.
	hoursPerDay = 8

	// Threshold is the qualification cutoff; a candidate is returned
	// only if its score is strictly greater.
	Threshold = 0.6
)

// Candidate is one scored supply record. Transient: produced fresh per
// query, never persisted by this package.
type Candidate struct {
	SupplyID int64   `json:"supply_id"`
	Score    float64 `json:"score"`
}

// Compute filters and ranks the supply pool for a demand record.
//
// A supply qualifies when it is Active, its location contains the
// demand's location (case-folded substring, not symmetric), and its
// score exceeds Threshold. Results are sorted by score descending,
// ties broken by ascending record ID so the order is a deterministic
// total order regardless of pool order.
func Compute(demand *request.Record, pool []request.Record) []Candidate {
	candidates := []Candidate{}

	for i := range pool {
		supply := &pool[i]
		if supply.Kind != request.KindSupply || supply.Status != request.StatusActive {
			continue
		}
		if !containsFold(supply.Location, demand.Location) {
			continue
		}
		if score := Score(demand, supply); score > Threshold {
			candidates = append(candidates, Candidate{SupplyID: supply.ID, Score: score})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].SupplyID < candidates[j].SupplyID
	})

	return candidates
}

// Score computes the compatibility score for one (demand, supply)
// pair. The location filter is not part of the score; callers apply it
// before scoring.
func Score(demand, supply *request.Record) float64 {
	score := scoreBase

	if demand.EquipmentType != "" && supply.AvailableEquipment != "" &&
		containsFold(supply.AvailableEquipment, demand.EquipmentType) {
		score += equipmentBonus
	}

	if demand.Budget != nil && supply.PricePerHour != nil {
		if *demand.Budget >= *supply.PricePerHour*hoursPerDay {
			score += budgetBonus
		}
	}

	return score
}

// containsFold reports whether needle occurs in haystack under Unicode
// case folding. Folding, unlike ToLower, matches case-insensitively
// across scripts where lowering is not a bijection.
func containsFold(haystack, needle string) bool {
	folder := cases.Fold()
	return strings.Contains(folder.String(haystack), folder.String(needle))
}
