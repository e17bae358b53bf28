package leave

import (
	"github.com/shopspring/decimal"
)

// Calculator derives balance snapshots from the request ledger. It is a pure
// function of the rows it is given: nothing here reads or writes storage.
type Calculator struct {
	catalog *Catalog
}

func NewCalculator(catalog *Catalog) *Calculator {
	return &Calculator{catalog: catalog}
}

// Snapshot computes the balance for one employee, leave type and year. The
// type is resolved to its alias group so aliased types never double-book the
// same pool: Approved and Pending days of every type in the group count
// against the anchor's allotment. Rows outside the target year (by start
// date) and Rejected rows never count.
func (c *Calculator) Snapshot(employeeID, leaveTypeID string, year int, rows []LeaveRequest) (BalanceSnapshot, error) {
	anchorID, ok := c.catalog.AnchorID(leaveTypeID)
	if !ok {
		return BalanceSnapshot{}, &ValidationError{Field: "leaveTypeId", Reason: "unknown leave type " + leaveTypeID}
	}
	anchor, _ := c.catalog.ByID(anchorID)

	used := decimal.Zero
	pending := decimal.Zero
	for _, row := range rows {
		if row.EmployeeID != employeeID || row.StartDate.Year() != year {
			continue
		}
		rowAnchor, ok := c.catalog.AnchorID(row.LeaveTypeID)
		if !ok || rowAnchor != anchorID {
			continue
		}
		switch row.Status {
		case StatusApproved:
			used = used.Add(decimal.NewFromFloat(row.Days))
		case StatusPending:
			pending = pending.Add(decimal.NewFromFloat(row.Days))
		}
	}

	remaining := decimal.NewFromInt(int64(anchor.DefaultDays)).Sub(used).Sub(pending)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return BalanceSnapshot{
		EmployeeID:    employeeID,
		LeaveTypeID:   leaveTypeID,
		AnchorTypeID:  anchorID,
		Year:          year,
		DefaultDays:   anchor.DefaultDays,
		UsedDays:      used.InexactFloat64(),
		PendingDays:   pending.InexactFloat64(),
		RemainingDays: remaining.InexactFloat64(),
	}, nil
}

// Snapshots returns one snapshot per catalog type for display. Aliased types
// report the shared group balance.
func (c *Calculator) Snapshots(employeeID string, year int, rows []LeaveRequest) ([]BalanceSnapshot, error) {
	types := c.catalog.All()
	out := make([]BalanceSnapshot, 0, len(types))
	for _, t := range types {
		snap, err := c.Snapshot(employeeID, t.ID, year, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}
