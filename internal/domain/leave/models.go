package leave

import "time"

// Status is the closed set of request states. Pending rows may be edited or
// cancelled by their owner; Approved and Rejected are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// LeaveType is read-only reference data. AliasGroupID, when set, names the
// anchor leave type whose yearly pool this type draws from. An anchor type
// has a nil AliasGroupID and is the anchor of itself.
type LeaveType struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	DefaultDays  int       `json:"defaultDaysPerYear"`
	AliasGroupID *string   `json:"aliasGroupId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type LeaveRequest struct {
	ID          string     `json:"id"`
	EmployeeID  string     `json:"employeeId"`
	LeaveTypeID string     `json:"leaveTypeId"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     time.Time  `json:"endDate"`
	HalfDay     bool       `json:"halfDay"`
	Days        float64    `json:"days"`
	Reason      string     `json:"reason"`
	Status      Status     `json:"status"`
	ApproverID  string     `json:"approverId,omitempty"`
	Remarks     string     `json:"remarks,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	DecidedAt   *time.Time `json:"decidedAt,omitempty"`
}

// UnpaidLeaveRequest tracks the overflow portion of a submission that no
// leave-type pool could back. The paid portion lives in the submission's
// sibling LeaveRequest rows; ExcessDays never contributes to any balance.
type UnpaidLeaveRequest struct {
	ID            string     `json:"id"`
	EmployeeID    string     `json:"employeeId"`
	LeaveTypeID   string     `json:"leaveTypeId"`
	StartDate     time.Time  `json:"startDate"`
	EndDate       time.Time  `json:"endDate"`
	RequestedDays float64    `json:"requestedDays"`
	ExcessDays    float64    `json:"excessDays"`
	Justification string     `json:"justification"`
	Status        Status     `json:"status"`
	ApproverID    string     `json:"approverId,omitempty"`
	Remarks       string     `json:"remarks,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	DecidedAt     *time.Time `json:"decidedAt,omitempty"`
}

// BalanceSnapshot is the computed (default, used, pending, remaining) tuple
// for one employee, alias group and year. Derived, never persisted.
type BalanceSnapshot struct {
	EmployeeID    string  `json:"employeeId"`
	LeaveTypeID   string  `json:"leaveTypeId"`
	AnchorTypeID  string  `json:"anchorTypeId"`
	Year          int     `json:"year"`
	DefaultDays   int     `json:"defaultDays"`
	UsedDays      float64 `json:"usedDays"`
	PendingDays   float64 `json:"pendingDays"`
	RemainingDays float64 `json:"remainingDays"`
}

type PlanEntry struct {
	LeaveTypeID string  `json:"leaveTypeId"`
	Days        float64 `json:"days"`
}

// AllocationPlan is the result of the greedy waterfall: how many days come
// from which pool, plus the unpaid remainder no pool could cover.
type AllocationPlan struct {
	Entries    []PlanEntry `json:"entries"`
	UnpaidDays float64     `json:"unpaidDays"`
}

// TotalAllocated returns the sum of all entry days.
func (p AllocationPlan) TotalAllocated() float64 {
	total := 0.0
	for _, e := range p.Entries {
		total += e.Days
	}
	return total
}
