package leave

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Service is the leave lifecycle: it owns submission, edit, cancellation and
// the HR approval transitions, and is the only writer of the ledger. Balance
// reads and row writes of one operation share a serializable transaction so
// concurrent submissions cannot jointly over-draw a pool.
type Service struct {
	Store Store

	now func() time.Time
}

func NewService(store Store) *Service {
	return &Service{Store: store, now: time.Now}
}

type SubmitInput struct {
	EmployeeID          string
	PrimaryTypeID       string
	StartDate           time.Time
	EndDate             time.Time
	HalfDay             bool
	AlternativeTypeIDs  []string
	Reason              string
	UnpaidJustification string

	// AcceptUnpaid acknowledges that days no pool can back become a pending
	// unpaid-leave request instead of failing the submission.
	AcceptUnpaid bool
}

type SubmitResult struct {
	Days            float64        `json:"days"`
	Plan            AllocationPlan `json:"plan"`
	RequestIDs      []string       `json:"requestIds"`
	UnpaidRequestID string         `json:"unpaidRequestId,omitempty"`
}

func (s *Service) Catalog(ctx context.Context) (*Catalog, error) {
	types, err := s.Store.ListTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load leave types: %w", err)
	}
	return NewCatalog(types)
}

// CreateType adds a leave type to the catalog. An alias target must already
// exist and be an anchor, so alias chains cannot be created one row at a time.
func (s *Service) CreateType(ctx context.Context, t LeaveType) (string, error) {
	var id string
	err := s.Store.WithinTx(ctx, func(tx Ledger) error {
		types, err := tx.ListTypes(ctx)
		if err != nil {
			return fmt.Errorf("load leave types: %w", err)
		}
		catalog, err := NewCatalog(types)
		if err != nil {
			return err
		}
		for _, existing := range catalog.All() {
			if strings.EqualFold(existing.Code, t.Code) {
				return &ValidationError{Field: "code", Reason: "already in use"}
			}
		}
		if t.AliasGroupID != nil {
			if _, ok := catalog.ByID(*t.AliasGroupID); !ok {
				return &ValidationError{Field: "aliasGroupId", Reason: "unknown leave type"}
			}
			if !catalog.IsAnchor(*t.AliasGroupID) {
				return &ValidationError{Field: "aliasGroupId", Reason: "must reference an anchor leave type"}
			}
		}
		t.CreatedAt = s.now()
		id, err = tx.CreateType(ctx, t)
		return err
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Balances returns one snapshot per catalog type for the employee and year.
func (s *Service) Balances(ctx context.Context, employeeID string, year int) ([]BalanceSnapshot, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.Store.RequestsForYear(ctx, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("load requests: %w", err)
	}
	return NewCalculator(catalog).Snapshots(employeeID, year, rows)
}

// Preview computes the day count and allocation plan for a submission
// without committing anything. The caller shows it for confirmation.
func (s *Service) Preview(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return SubmitResult{}, err
	}
	days, err := CountDays(in.StartDate, in.EndDate, in.HalfDay)
	if err != nil {
		return SubmitResult{}, err
	}
	rows, err := s.Store.RequestsForYear(ctx, in.EmployeeID, in.StartDate.Year())
	if err != nil {
		return SubmitResult{}, fmt.Errorf("load requests: %w", err)
	}
	plan, err := NewPlanner(catalog).Plan(in.EmployeeID, in.PrimaryTypeID, days, in.AlternativeTypeIDs, in.StartDate.Year(), rows)
	if err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{Days: days, Plan: plan}, nil
}

// Submit commits a candidate request. When the primary pool covers the full
// day count a single Pending request is created. Otherwise the waterfall
// plan is committed: one Pending request per allocation entry plus, when an
// unpaid remainder exists, one Pending unpaid-leave request. All rows of one
// submission commit atomically; a failure leaves no partial state.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	days, err := CountDays(in.StartDate, in.EndDate, in.HalfDay)
	if err != nil {
		return SubmitResult{}, err
	}
	year := in.StartDate.Year()

	var result SubmitResult
	err = s.Store.WithinTx(ctx, func(tx Ledger) error {
		types, err := tx.ListTypes(ctx)
		if err != nil {
			return fmt.Errorf("load leave types: %w", err)
		}
		catalog, err := NewCatalog(types)
		if err != nil {
			return err
		}
		rows, err := tx.RequestsForYear(ctx, in.EmployeeID, year)
		if err != nil {
			return fmt.Errorf("load requests: %w", err)
		}

		plan, err := NewPlanner(catalog).Plan(in.EmployeeID, in.PrimaryTypeID, days, in.AlternativeTypeIDs, year, rows)
		if err != nil {
			return err
		}

		if plan.UnpaidDays > 0 {
			if len(in.AlternativeTypeIDs) == 0 && !in.AcceptUnpaid {
				snap, serr := NewCalculator(catalog).Snapshot(in.EmployeeID, in.PrimaryTypeID, year, rows)
				if serr != nil {
					return serr
				}
				return &InsufficientBalanceError{
					LeaveTypeID: in.PrimaryTypeID,
					Requested:   days,
					Remaining:   snap.RemainingDays,
				}
			}
			if !in.AcceptUnpaid {
				return &InsufficientBalanceError{LeaveTypeID: in.PrimaryTypeID, Requested: days, Remaining: plan.TotalAllocated()}
			}
			if strings.TrimSpace(in.UnpaidJustification) == "" {
				return &ValidationError{Field: "unpaidJustification", Reason: "required when the request exceeds all available balance"}
			}
		}

		now := s.now()
		for _, entry := range plan.Entries {
			id, err := tx.InsertRequest(ctx, LeaveRequest{
				EmployeeID:  in.EmployeeID,
				LeaveTypeID: entry.LeaveTypeID,
				StartDate:   in.StartDate,
				EndDate:     in.EndDate,
				HalfDay:     in.HalfDay,
				Days:        entry.Days,
				Reason:      in.Reason,
				Status:      StatusPending,
				CreatedAt:   now,
			})
			if err != nil {
				return fmt.Errorf("insert request: %w", err)
			}
			result.RequestIDs = append(result.RequestIDs, id)
		}

		if plan.UnpaidDays > 0 {
			id, err := tx.InsertUnpaidRequest(ctx, UnpaidLeaveRequest{
				EmployeeID:    in.EmployeeID,
				LeaveTypeID:   in.PrimaryTypeID,
				StartDate:     in.StartDate,
				EndDate:       in.EndDate,
				RequestedDays: days,
				ExcessDays:    plan.UnpaidDays,
				Justification: in.UnpaidJustification,
				Status:        StatusPending,
				CreatedAt:     now,
			})
			if err != nil {
				return fmt.Errorf("insert unpaid request: %w", err)
			}
			result.UnpaidRequestID = id
		}

		result.Days = days
		result.Plan = plan
		return nil
	})
	if err != nil {
		return SubmitResult{}, err
	}
	return result, nil
}

// Approve transitions a Pending request to Approved. Re-applying a decision
// to a terminal row fails with ErrAlreadyProcessed and mutates nothing.
func (s *Service) Approve(ctx context.Context, requestID, approverID, remarks string) (LeaveRequest, error) {
	return s.decide(ctx, requestID, approverID, remarks, StatusApproved)
}

// Reject transitions a Pending request to Rejected. A reason is mandatory;
// rejected rows are excluded from every balance sum from this point on.
func (s *Service) Reject(ctx context.Context, requestID, approverID, reason string) (LeaveRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return LeaveRequest{}, ErrMissingReason
	}
	return s.decide(ctx, requestID, approverID, reason, StatusRejected)
}

func (s *Service) decide(ctx context.Context, requestID, approverID, remarks string, status Status) (LeaveRequest, error) {
	var out LeaveRequest
	err := s.Store.WithinTx(ctx, func(tx Ledger) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Status != StatusPending {
			return ErrAlreadyProcessed
		}
		decidedAt := s.now()
		if err := tx.DecideRequest(ctx, requestID, status, approverID, remarks, decidedAt); err != nil {
			return fmt.Errorf("update request: %w", err)
		}
		req.Status = status
		req.ApproverID = approverID
		req.Remarks = remarks
		req.DecidedAt = &decidedAt
		out = req
		return nil
	})
	if err != nil {
		return LeaveRequest{}, err
	}
	return out, nil
}

// ApproveUnpaid approves a pending unpaid-leave request. The paid portion of
// the submission was already committed as its sibling Pending entry rows at
// submit time, so approval only transitions this row. Excess days never enter
// a balance; across every row of one submission the balance-affecting days
// stay at requestedDays minus excessDays.
func (s *Service) ApproveUnpaid(ctx context.Context, requestID, approverID, remarks string) (UnpaidLeaveRequest, error) {
	var out UnpaidLeaveRequest
	err := s.Store.WithinTx(ctx, func(tx Ledger) error {
		req, err := tx.GetUnpaidRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Status != StatusPending {
			return ErrAlreadyProcessed
		}
		decidedAt := s.now()
		if err := tx.DecideUnpaidRequest(ctx, requestID, StatusApproved, approverID, remarks, decidedAt); err != nil {
			return fmt.Errorf("update unpaid request: %w", err)
		}
		req.Status = StatusApproved
		req.ApproverID = approverID
		req.Remarks = remarks
		req.DecidedAt = &decidedAt
		out = req
		return nil
	})
	if err != nil {
		return UnpaidLeaveRequest{}, err
	}
	return out, nil
}

// RejectUnpaid rejects a pending unpaid-leave request. No balance effect.
func (s *Service) RejectUnpaid(ctx context.Context, requestID, approverID, reason string) (UnpaidLeaveRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return UnpaidLeaveRequest{}, ErrMissingReason
	}
	var out UnpaidLeaveRequest
	err := s.Store.WithinTx(ctx, func(tx Ledger) error {
		req, err := tx.GetUnpaidRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Status != StatusPending {
			return ErrAlreadyProcessed
		}
		decidedAt := s.now()
		if err := tx.DecideUnpaidRequest(ctx, requestID, StatusRejected, approverID, reason, decidedAt); err != nil {
			return fmt.Errorf("update unpaid request: %w", err)
		}
		req.Status = StatusRejected
		req.ApproverID = approverID
		req.Remarks = reason
		req.DecidedAt = &decidedAt
		out = req
		return nil
	})
	if err != nil {
		return UnpaidLeaveRequest{}, err
	}
	return out, nil
}

// Edit changes the dates of a Pending request owned by the employee. The day
// count is recomputed and re-validated against the remaining balance of the
// request's own pool, with the request's current days excluded from the sum.
func (s *Service) Edit(ctx context.Context, requestID, employeeID string, start, end time.Time, halfDay bool, reason string) (LeaveRequest, error) {
	days, err := CountDays(start, end, halfDay)
	if err != nil {
		return LeaveRequest{}, err
	}

	var out LeaveRequest
	err = s.Store.WithinTx(ctx, func(tx Ledger) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if req.EmployeeID != employeeID {
			return ErrForbidden
		}
		if req.Status != StatusPending {
			return ErrAlreadyProcessed
		}

		types, err := tx.ListTypes(ctx)
		if err != nil {
			return fmt.Errorf("load leave types: %w", err)
		}
		catalog, err := NewCatalog(types)
		if err != nil {
			return err
		}
		rows, err := tx.RequestsForYear(ctx, employeeID, start.Year())
		if err != nil {
			return fmt.Errorf("load requests: %w", err)
		}
		others := rows[:0:0]
		for _, row := range rows {
			if row.ID != requestID {
				others = append(others, row)
			}
		}
		snap, err := NewCalculator(catalog).Snapshot(employeeID, req.LeaveTypeID, start.Year(), others)
		if err != nil {
			return err
		}
		if days > snap.RemainingDays {
			return &InsufficientBalanceError{LeaveTypeID: req.LeaveTypeID, Requested: days, Remaining: snap.RemainingDays}
		}

		if err := tx.UpdateRequestDates(ctx, requestID, start, end, halfDay, days, reason); err != nil {
			return fmt.Errorf("update request: %w", err)
		}
		req.StartDate = start
		req.EndDate = end
		req.HalfDay = halfDay
		req.Days = days
		if reason != "" {
			req.Reason = reason
		}
		out = req
		return nil
	})
	if err != nil {
		return LeaveRequest{}, err
	}
	return out, nil
}

// Cancel deletes a Pending request owned by the employee.
func (s *Service) Cancel(ctx context.Context, requestID, employeeID string) error {
	return s.Store.WithinTx(ctx, func(tx Ledger) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if req.EmployeeID != employeeID {
			return ErrForbidden
		}
		if req.Status != StatusPending {
			return ErrAlreadyProcessed
		}
		return tx.DeleteRequest(ctx, requestID)
	})
}
