package leave

import (
	"context"
	"time"
)

// Ledger is the row-level view of the shared leave ledger. Implementations
// are either a pgx store or the transactional view it hands to WithinTx.
type Ledger interface {
	ListTypes(ctx context.Context) ([]LeaveType, error)
	CreateType(ctx context.Context, t LeaveType) (string, error)

	// RequestsForYear returns every request of the employee whose start date
	// falls in the given calendar year, regardless of status.
	RequestsForYear(ctx context.Context, employeeID string, year int) ([]LeaveRequest, error)
	ListRequests(ctx context.Context, employeeID string, limit, offset int) ([]LeaveRequest, error)
	GetRequest(ctx context.Context, id string) (LeaveRequest, error)
	InsertRequest(ctx context.Context, req LeaveRequest) (string, error)
	DecideRequest(ctx context.Context, id string, status Status, approverID, remarks string, decidedAt time.Time) error
	UpdateRequestDates(ctx context.Context, id string, start, end time.Time, halfDay bool, days float64, reason string) error
	DeleteRequest(ctx context.Context, id string) error

	ListUnpaidRequests(ctx context.Context, employeeID string, limit, offset int) ([]UnpaidLeaveRequest, error)
	GetUnpaidRequest(ctx context.Context, id string) (UnpaidLeaveRequest, error)
	InsertUnpaidRequest(ctx context.Context, req UnpaidLeaveRequest) (string, error)
	DecideUnpaidRequest(ctx context.Context, id string, status Status, approverID, remarks string, decidedAt time.Time) error
}

// Store adds the transactional boundary: every submission and every
// transition runs its balance read and row writes inside one WithinTx call.
type Store interface {
	Ledger

	// WithinTx runs fn against a serializable transaction view of the ledger.
	// A serialization failure surfaces as ErrConcurrencyConflict.
	WithinTx(ctx context.Context, fn func(Ledger) error) error
}
