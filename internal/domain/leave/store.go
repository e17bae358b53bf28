package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PGStore is the Postgres ledger store.
type PGStore struct {
	pool *pgxpool.Pool
	pgLedger
}

func NewStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool, pgLedger: pgLedger{db: pool}}
}

// WithinTx runs fn inside a serializable transaction. Serialization failures
// (SQLSTATE 40001) surface as ErrConcurrencyConflict so callers can
// recompute and retry.
func (s *PGStore) WithinTx(ctx context.Context, fn func(Ledger) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}

	if err := fn(pgLedger{db: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, rbErr)
		}
		return mapConflict(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapConflict(err)
	}
	return nil
}

func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "40001" {
		return ErrConcurrencyConflict
	}
	return err
}

type pgLedger struct {
	db DBTX
}

func (l pgLedger) ListTypes(ctx context.Context) ([]LeaveType, error) {
	rows, err := l.db.Query(ctx, `
    SELECT id, name, code, default_days, alias_group_id, created_at
    FROM leave_types
    ORDER BY created_at, name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []LeaveType
	for rows.Next() {
		var t LeaveType
		if err := rows.Scan(&t.ID, &t.Name, &t.Code, &t.DefaultDays, &t.AliasGroupID, &t.CreatedAt); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (l pgLedger) CreateType(ctx context.Context, t LeaveType) (string, error) {
	var id string
	if err := l.db.QueryRow(ctx, `
    INSERT INTO leave_types (name, code, default_days, alias_group_id)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, t.Name, t.Code, t.DefaultDays, t.AliasGroupID).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

const requestColumns = `
    id, employee_id, leave_type_id, start_date, end_date, half_day, days,
    reason, status, approver_id, remarks, created_at, decided_at`

func scanRequest(row pgx.Row) (LeaveRequest, error) {
	var req LeaveRequest
	var approverID, remarks *string
	err := row.Scan(
		&req.ID,
		&req.EmployeeID,
		&req.LeaveTypeID,
		&req.StartDate,
		&req.EndDate,
		&req.HalfDay,
		&req.Days,
		&req.Reason,
		&req.Status,
		&approverID,
		&remarks,
		&req.CreatedAt,
		&req.DecidedAt,
	)
	if err != nil {
		return LeaveRequest{}, err
	}
	if approverID != nil {
		req.ApproverID = *approverID
	}
	if remarks != nil {
		req.Remarks = *remarks
	}
	return req, nil
}

func (l pgLedger) RequestsForYear(ctx context.Context, employeeID string, year int) ([]LeaveRequest, error) {
	rows, err := l.db.Query(ctx, `
    SELECT `+requestColumns+`
    FROM leave_requests
    WHERE employee_id = $1 AND EXTRACT(YEAR FROM start_date) = $2
    ORDER BY created_at
  `, employeeID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaveRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (l pgLedger) ListRequests(ctx context.Context, employeeID string, limit, offset int) ([]LeaveRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM leave_requests`
	args := []any{}
	if employeeID != "" {
		query += " WHERE employee_id = $1"
		args = append(args, employeeID)
	}
	query += " ORDER BY created_at DESC"
	query += limitOffsetClause(len(args), &args, limit, offset)

	rows, err := l.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaveRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (l pgLedger) GetRequest(ctx context.Context, id string) (LeaveRequest, error) {
	req, err := scanRequest(l.db.QueryRow(ctx, `
    SELECT `+requestColumns+`
    FROM leave_requests
    WHERE id = $1
    FOR UPDATE
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return LeaveRequest{}, ErrNotFound
	}
	return req, err
}

func (l pgLedger) InsertRequest(ctx context.Context, req LeaveRequest) (string, error) {
	var id string
	if err := l.db.QueryRow(ctx, `
    INSERT INTO leave_requests
      (employee_id, leave_type_id, start_date, end_date, half_day, days, reason, status, approver_id, remarks, created_at, decided_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NULLIF($9,''),NULLIF($10,''),$11,$12)
    RETURNING id
  `, req.EmployeeID, req.LeaveTypeID, req.StartDate, req.EndDate, req.HalfDay, req.Days,
		req.Reason, req.Status, req.ApproverID, req.Remarks, req.CreatedAt, req.DecidedAt).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (l pgLedger) DecideRequest(ctx context.Context, id string, status Status, approverID, remarks string, decidedAt time.Time) error {
	tag, err := l.db.Exec(ctx, `
    UPDATE leave_requests
    SET status = $1, approver_id = $2, remarks = NULLIF($3,''), decided_at = $4
    WHERE id = $5 AND status = $6
  `, status, approverID, remarks, decidedAt, id, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyProcessed
	}
	return nil
}

func (l pgLedger) UpdateRequestDates(ctx context.Context, id string, start, end time.Time, halfDay bool, days float64, reason string) error {
	tag, err := l.db.Exec(ctx, `
    UPDATE leave_requests
    SET start_date = $1, end_date = $2, half_day = $3, days = $4,
        reason = COALESCE(NULLIF($5,''), reason)
    WHERE id = $6 AND status = $7
  `, start, end, halfDay, days, reason, id, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyProcessed
	}
	return nil
}

func (l pgLedger) DeleteRequest(ctx context.Context, id string) error {
	tag, err := l.db.Exec(ctx, `
    DELETE FROM leave_requests WHERE id = $1 AND status = $2
  `, id, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyProcessed
	}
	return nil
}

const unpaidColumns = `
    id, employee_id, leave_type_id, start_date, end_date, requested_days,
    excess_days, justification, status, approver_id, remarks, created_at,
    decided_at`

func scanUnpaid(row pgx.Row) (UnpaidLeaveRequest, error) {
	var req UnpaidLeaveRequest
	var approverID, remarks *string
	err := row.Scan(
		&req.ID,
		&req.EmployeeID,
		&req.LeaveTypeID,
		&req.StartDate,
		&req.EndDate,
		&req.RequestedDays,
		&req.ExcessDays,
		&req.Justification,
		&req.Status,
		&approverID,
		&remarks,
		&req.CreatedAt,
		&req.DecidedAt,
	)
	if err != nil {
		return UnpaidLeaveRequest{}, err
	}
	if approverID != nil {
		req.ApproverID = *approverID
	}
	if remarks != nil {
		req.Remarks = *remarks
	}
	return req, nil
}

func (l pgLedger) ListUnpaidRequests(ctx context.Context, employeeID string, limit, offset int) ([]UnpaidLeaveRequest, error) {
	query := `SELECT ` + unpaidColumns + ` FROM unpaid_leave_requests`
	args := []any{}
	if employeeID != "" {
		query += " WHERE employee_id = $1"
		args = append(args, employeeID)
	}
	query += " ORDER BY created_at DESC"
	query += limitOffsetClause(len(args), &args, limit, offset)

	rows, err := l.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UnpaidLeaveRequest
	for rows.Next() {
		req, err := scanUnpaid(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (l pgLedger) GetUnpaidRequest(ctx context.Context, id string) (UnpaidLeaveRequest, error) {
	req, err := scanUnpaid(l.db.QueryRow(ctx, `
    SELECT `+unpaidColumns+`
    FROM unpaid_leave_requests
    WHERE id = $1
    FOR UPDATE
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return UnpaidLeaveRequest{}, ErrNotFound
	}
	return req, err
}

func (l pgLedger) InsertUnpaidRequest(ctx context.Context, req UnpaidLeaveRequest) (string, error) {
	var id string
	if err := l.db.QueryRow(ctx, `
    INSERT INTO unpaid_leave_requests
      (employee_id, leave_type_id, start_date, end_date, requested_days, excess_days, justification, status, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    RETURNING id
  `, req.EmployeeID, req.LeaveTypeID, req.StartDate, req.EndDate, req.RequestedDays,
		req.ExcessDays, req.Justification, req.Status, req.CreatedAt).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (l pgLedger) DecideUnpaidRequest(ctx context.Context, id string, status Status, approverID, remarks string, decidedAt time.Time) error {
	tag, err := l.db.Exec(ctx, `
    UPDATE unpaid_leave_requests
    SET status = $1, approver_id = $2, remarks = NULLIF($3,''), decided_at = $4
    WHERE id = $5 AND status = $6
  `, status, approverID, remarks, decidedAt, id, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyProcessed
	}
	return nil
}

func limitOffsetClause(argCount int, args *[]any, limit, offset int) string {
	if limit <= 0 {
		return ""
	}
	*args = append(*args, limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount+1, argCount+2)
}
