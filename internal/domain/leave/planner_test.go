package leave_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrleave/internal/domain/leave"
)

func newTestPlanner(t *testing.T) *leave.Planner {
	catalog, err := leave.NewCatalog(testTypes())
	require.NoError(t, err)
	return leave.NewPlanner(catalog)
}

func TestPlanPrimaryCoversFully(t *testing.T) {
	planner := newTestPlanner(t)

	plan, err := planner.Plan("e1", "annual", 5, nil, 2025, nil)
	require.NoError(t, err)

	require.Len(t, plan.Entries, 1)
	assert.Equal(t, leave.PlanEntry{LeaveTypeID: "annual", Days: 5}, plan.Entries[0])
	assert.Equal(t, 0.0, plan.UnpaidDays)
}

func TestPlanWaterfallsIntoAlternative(t *testing.T) {
	planner := newTestPlanner(t)
	rows := []leave.LeaveRequest{
		approvedReq("e1", "annual", date(2025, time.February, 3), 10),
	}

	plan, err := planner.Plan("e1", "annual", 6, []string{"medical"}, 2025, rows)
	require.NoError(t, err)

	require.Len(t, plan.Entries, 2)
	assert.Equal(t, leave.PlanEntry{LeaveTypeID: "annual", Days: 4}, plan.Entries[0])
	assert.Equal(t, leave.PlanEntry{LeaveTypeID: "medical", Days: 2}, plan.Entries[1])
	assert.Equal(t, 0.0, plan.UnpaidDays)
}

func TestPlanReportsUnpaidOverflow(t *testing.T) {
	planner := newTestPlanner(t)
	rows := []leave.LeaveRequest{
		approvedReq("e1", "annual", date(2025, time.February, 3), 12),
		approvedReq("e1", "medical", date(2025, time.March, 3), 9),
	}

	plan, err := planner.Plan("e1", "annual", 6, []string{"medical"}, 2025, rows)
	require.NoError(t, err)

	assert.Equal(t, 3.0, plan.TotalAllocated())
	assert.Equal(t, 3.0, plan.UnpaidDays)
}

// An exhausted pool contributes no zero-day entry; the waterfall moves on.
func TestPlanSkipsEmptyPools(t *testing.T) {
	planner := newTestPlanner(t)
	rows := []leave.LeaveRequest{
		approvedReq("e1", "annual", date(2025, time.February, 3), 14),
	}

	plan, err := planner.Plan("e1", "annual", 3, []string{"medical"}, 2025, rows)
	require.NoError(t, err)

	require.Len(t, plan.Entries, 1)
	assert.Equal(t, leave.PlanEntry{LeaveTypeID: "medical", Days: 3}, plan.Entries[0])
}

// Emergency aliases the Annual pool; listing Annual as an alternative after
// drawing through Emergency must not double-spend the shared pool.
func TestPlanDrawsEachAliasGroupOnce(t *testing.T) {
	planner := newTestPlanner(t)
	rows := []leave.LeaveRequest{
		approvedReq("e1", "annual", date(2025, time.February, 3), 10),
	}

	plan, err := planner.Plan("e1", "emergency", 8, []string{"annual", "medical"}, 2025, rows)
	require.NoError(t, err)

	require.Len(t, plan.Entries, 2)
	assert.Equal(t, leave.PlanEntry{LeaveTypeID: "emergency", Days: 4}, plan.Entries[0])
	assert.Equal(t, leave.PlanEntry{LeaveTypeID: "medical", Days: 4}, plan.Entries[1])
	assert.Equal(t, 0.0, plan.UnpaidDays)
}

func TestPlanAllocationAlwaysSumsToRequested(t *testing.T) {
	planner := newTestPlanner(t)
	rows := []leave.LeaveRequest{
		approvedReq("e1", "annual", date(2025, time.February, 3), 11.5),
		pendingReq("e1", "medical", date(2025, time.April, 1), 4),
	}

	for _, requested := range []float64{0.5, 2.5, 9, 30.5} {
		plan, err := planner.Plan("e1", "annual", requested, []string{"medical"}, 2025, rows)
		require.NoError(t, err)
		assert.Equal(t, requested, plan.TotalAllocated()+plan.UnpaidDays, "requested %.1f", requested)
	}
}

func TestPlanIsDeterministic(t *testing.T) {
	planner := newTestPlanner(t)
	rows := []leave.LeaveRequest{
		approvedReq("e1", "annual", date(2025, time.February, 3), 10),
	}

	first, err := planner.Plan("e1", "annual", 8, []string{"medical"}, 2025, rows)
	require.NoError(t, err)
	second, err := planner.Plan("e1", "annual", 8, []string{"medical"}, 2025, rows)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPlanValidation(t *testing.T) {
	planner := newTestPlanner(t)

	cases := []struct {
		name      string
		primary   string
		requested float64
		alts      []string
	}{
		{"zero days", "annual", 0, nil},
		{"negative days", "annual", -1, nil},
		{"over a year", "annual", 366, nil},
		{"unknown primary", "nope", 5, nil},
		{"unknown alternative", "annual", 5, []string{"nope"}},
		{"alternative duplicates primary", "annual", 5, []string{"annual"}},
		{"duplicate alternatives", "annual", 5, []string{"medical", "medical"}},
		{"aliased alternative", "annual", 5, []string{"emergency"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := planner.Plan("e1", tc.primary, tc.requested, tc.alts, 2025, nil)
			var validation *leave.ValidationError
			require.ErrorAs(t, err, &validation)
		})
	}
}
