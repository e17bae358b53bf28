package leave_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrleave/internal/domain/leave"
	"hrleave/internal/platform/db"
)

func newIntegrationStore(t *testing.T) (*leave.PGStore, *pgxpool.Pool) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool, "../../../migrations"))

	// Fresh ledger per run.
	_, err = pool.Exec(ctx, `
    TRUNCATE audit_events, unpaid_leave_requests, leave_requests, leave_types, employees, users CASCADE
  `)
	require.NoError(t, err)

	return leave.NewStore(pool), pool
}

func createIntegrationEmployee(t *testing.T, pool *pgxpool.Pool, name string) string {
	var id string
	err := pool.QueryRow(context.Background(), `
    INSERT INTO employees (full_name) VALUES ($1) RETURNING id
  `, name).Scan(&id)
	require.NoError(t, err)
	return id
}

func createIntegrationApprover(t *testing.T, pool *pgxpool.Pool, email string) string {
	var id string
	err := pool.QueryRow(context.Background(), `
    INSERT INTO users (email, password_hash, role_name) VALUES ($1, 'x', 'hr') RETURNING id
  `, email).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestLedgerJourney(t *testing.T) {
	store, pool := newIntegrationStore(t)
	ctx := context.Background()
	svc := leave.NewService(store)

	annualID, err := svc.CreateType(ctx, leave.LeaveType{Name: "Annual Leave", Code: "ANNUAL", DefaultDays: 14})
	require.NoError(t, err)
	medicalID, err := svc.CreateType(ctx, leave.LeaveType{Name: "Medical Leave", Code: "MEDICAL", DefaultDays: 10})
	require.NoError(t, err)
	emergencyID, err := svc.CreateType(ctx, leave.LeaveType{Name: "Emergency Leave", Code: "EMERGENCY", AliasGroupID: &annualID})
	require.NoError(t, err)

	employeeID := createIntegrationEmployee(t, pool, "Jordan Blake")
	approverID := createIntegrationApprover(t, pool, "hr@example.com")

	// Submit, waterfalling into the medical pool.
	start := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	result, err := svc.Submit(ctx, leave.SubmitInput{
		EmployeeID:         employeeID,
		PrimaryTypeID:      annualID,
		StartDate:          start,
		EndDate:            start.AddDate(0, 0, 15),
		AlternativeTypeIDs: []string{medicalID},
		Reason:             "long trip",
	})
	require.NoError(t, err)
	require.Len(t, result.RequestIDs, 2)
	assert.Equal(t, 16.0, result.Days)
	assert.Equal(t, 0.0, result.Plan.UnpaidDays)

	// Pending days already reserve the pools.
	snaps, err := svc.Balances(ctx, employeeID, 2025)
	require.NoError(t, err)
	byType := map[string]leave.BalanceSnapshot{}
	for _, snap := range snaps {
		byType[snap.LeaveTypeID] = snap
	}
	assert.Equal(t, 0.0, byType[annualID].RemainingDays)
	assert.Equal(t, 8.0, byType[medicalID].RemainingDays)
	assert.Equal(t, byType[annualID].RemainingDays, byType[emergencyID].RemainingDays)

	// Approve both rows; a second approval must fail without mutating.
	for _, id := range result.RequestIDs {
		_, err := svc.Approve(ctx, id, approverID, "ok")
		require.NoError(t, err)
	}
	_, err = svc.Approve(ctx, result.RequestIDs[0], approverID, "again")
	assert.ErrorIs(t, err, leave.ErrAlreadyProcessed)

	snaps, err = svc.Balances(ctx, employeeID, 2025)
	require.NoError(t, err)
	for _, snap := range snaps {
		if snap.LeaveTypeID == annualID {
			assert.Equal(t, 14.0, snap.UsedDays)
			assert.Equal(t, 0.0, snap.PendingDays)
		}
	}
}

func TestLedgerUnpaidJourney(t *testing.T) {
	store, pool := newIntegrationStore(t)
	ctx := context.Background()
	svc := leave.NewService(store)

	annualID, err := svc.CreateType(ctx, leave.LeaveType{Name: "Annual Leave", Code: "ANNUAL", DefaultDays: 14})
	require.NoError(t, err)
	employeeID := createIntegrationEmployee(t, pool, "Sam Rivera")
	approverID := createIntegrationApprover(t, pool, "hr2@example.com")

	start := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	result, err := svc.Submit(ctx, leave.SubmitInput{
		EmployeeID:          employeeID,
		PrimaryTypeID:       annualID,
		StartDate:           start,
		EndDate:             start.AddDate(0, 0, 16),
		AcceptUnpaid:        true,
		UnpaidJustification: "relocation",
	})
	require.NoError(t, err)
	require.Len(t, result.RequestIDs, 1)
	require.NotEmpty(t, result.UnpaidRequestID)

	// Approve both rows of the submission: the 14-day paid entry and the
	// unpaid overflow carrying the 3-day excess.
	_, err = svc.Approve(ctx, result.RequestIDs[0], approverID, "ok")
	require.NoError(t, err)

	unpaid, err := svc.ApproveUnpaid(ctx, result.UnpaidRequestID, approverID, "approved")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, unpaid.Status)
	assert.Equal(t, 17.0, unpaid.RequestedDays)
	assert.Equal(t, 3.0, unpaid.ExcessDays)

	// The paid portion is booked exactly once, by the sibling entry row.
	requests, err := store.ListRequests(ctx, employeeID, 0, 0)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, 14.0, requests[0].Days)

	snaps, err := svc.Balances(ctx, employeeID, 2025)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, 14.0, snaps[0].UsedDays)
	assert.Equal(t, 0.0, snaps[0].RemainingDays)
}
