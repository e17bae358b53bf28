package leave

import (
	"github.com/shopspring/decimal"
)

// maxRequestDays bounds a single submission.
const maxRequestDays = 365

// Planner produces a waterfall allocation: satisfy the requested day count
// from the primary type's pool, then each alternative in the caller's order,
// and report whatever is left as unpaid overflow.
type Planner struct {
	catalog *Catalog
	calc    *Calculator
}

func NewPlanner(catalog *Catalog) *Planner {
	return &Planner{catalog: catalog, calc: NewCalculator(catalog)}
}

// Plan runs the greedy waterfall over the given ledger rows. It is
// deterministic and order-preserving: identical balances and identical
// alternative order always yield the identical plan.
//
// Each alias group is drawn from at most once. Two distinct type ids can
// share one physical pool, so without this guard the waterfall could
// allocate more days than the pool actually holds.
func (p *Planner) Plan(employeeID, primaryTypeID string, requestedDays float64, alternativeTypeIDs []string, year int, rows []LeaveRequest) (AllocationPlan, error) {
	requested := decimal.NewFromFloat(requestedDays)
	if !requested.IsPositive() {
		return AllocationPlan{}, &ValidationError{Field: "requestedDays", Reason: "must be positive"}
	}
	if requested.GreaterThan(decimal.NewFromInt(maxRequestDays)) {
		return AllocationPlan{}, &ValidationError{Field: "requestedDays", Reason: "exceeds 365 days"}
	}
	if _, ok := p.catalog.ByID(primaryTypeID); !ok {
		return AllocationPlan{}, &ValidationError{Field: "primaryTypeId", Reason: "unknown leave type " + primaryTypeID}
	}

	seen := map[string]bool{primaryTypeID: true}
	for _, altID := range alternativeTypeIDs {
		if altID == primaryTypeID {
			return AllocationPlan{}, &ValidationError{Field: "alternativeTypeIds", Reason: "alternative duplicates the primary type"}
		}
		if seen[altID] {
			return AllocationPlan{}, &ValidationError{Field: "alternativeTypeIds", Reason: "duplicate alternative " + altID}
		}
		seen[altID] = true
		if _, ok := p.catalog.ByID(altID); !ok {
			return AllocationPlan{}, &ValidationError{Field: "alternativeTypeIds", Reason: "unknown leave type " + altID}
		}
		// Aliased types hold no pool of their own and may not appear as
		// alternatives; the anchor itself is the valid candidate.
		if !p.catalog.IsAnchor(altID) {
			return AllocationPlan{}, &ValidationError{Field: "alternativeTypeIds", Reason: "type " + altID + " draws from another type's pool"}
		}
	}

	var plan AllocationPlan
	remaining := requested
	consumedGroups := map[string]bool{}

	candidates := append([]string{primaryTypeID}, alternativeTypeIDs...)
	for _, typeID := range candidates {
		if !remaining.IsPositive() {
			break
		}
		anchorID, _ := p.catalog.AnchorID(typeID)
		if consumedGroups[anchorID] {
			continue
		}

		snap, err := p.calc.Snapshot(employeeID, typeID, year, rows)
		if err != nil {
			return AllocationPlan{}, err
		}
		take := decimal.Min(decimal.NewFromFloat(snap.RemainingDays), remaining)
		consumedGroups[anchorID] = true
		if !take.IsPositive() {
			continue
		}

		plan.Entries = append(plan.Entries, PlanEntry{LeaveTypeID: typeID, Days: take.InexactFloat64()})
		remaining = remaining.Sub(take)
	}

	plan.UnpaidDays = remaining.InexactFloat64()
	return plan, nil
}
