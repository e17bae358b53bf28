package reports

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrleave/internal/domain/leave"
)

// Row is one employee-and-leave-type line of the yearly balance report.
type Row struct {
	EmployeeID    string  `json:"employeeId"`
	EmployeeName  string  `json:"employeeName"`
	LeaveTypeName string  `json:"leaveTypeName"`
	LeaveTypeCode string  `json:"leaveTypeCode"`
	DefaultDays   int     `json:"defaultDays"`
	UsedDays      float64 `json:"usedDays"`
	PendingDays   float64 `json:"pendingDays"`
	RemainingDays float64 `json:"remainingDays"`
}

type employee struct {
	ID   string
	Name string
}

// Service assembles the org-wide balance report. It reads employees
// directly and derives balances through the leave service so report numbers
// can never drift from what the API itself reports.
type Service struct {
	DB    *pgxpool.Pool
	Leave *leave.Service
}

func New(db *pgxpool.Pool, leaveService *leave.Service) *Service {
	return &Service{DB: db, Leave: leaveService}
}

func (s *Service) listEmployees(ctx context.Context) ([]employee, error) {
	rows, err := s.DB.Query(ctx, `SELECT id, full_name FROM employees ORDER BY full_name, id`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var out []employee
	for rows.Next() {
		var e employee
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// BalanceReport returns one row per employee and catalog type for the year.
func (s *Service) BalanceReport(ctx context.Context, year int) ([]Row, error) {
	catalog, err := s.Leave.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	employees, err := s.listEmployees(ctx)
	if err != nil {
		return nil, err
	}

	types := catalog.All()
	names := make(map[string]leave.LeaveType, len(types))
	for _, t := range types {
		names[t.ID] = t
	}

	var report []Row
	for _, emp := range employees {
		snapshots, err := s.Leave.Balances(ctx, emp.ID, year)
		if err != nil {
			return nil, fmt.Errorf("balances for %s: %w", emp.ID, err)
		}
		for _, snap := range snapshots {
			t := names[snap.LeaveTypeID]
			report = append(report, Row{
				EmployeeID:    emp.ID,
				EmployeeName:  emp.Name,
				LeaveTypeName: t.Name,
				LeaveTypeCode: t.Code,
				DefaultDays:   snap.DefaultDays,
				UsedDays:      snap.UsedDays,
				PendingDays:   snap.PendingDays,
				RemainingDays: snap.RemainingDays,
			})
		}
	}
	return report, nil
}
