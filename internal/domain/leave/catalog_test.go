package leave_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrleave/internal/domain/leave"
)

func strptr(s string) *string { return &s }

func testTypes() []leave.LeaveType {
	return []leave.LeaveType{
		{ID: "annual", Name: "Annual Leave", Code: "ANNUAL", DefaultDays: 14},
		{ID: "medical", Name: "Medical Leave", Code: "MEDICAL", DefaultDays: 10},
		{ID: "emergency", Name: "Emergency Leave", Code: "EMERGENCY", DefaultDays: 0, AliasGroupID: strptr("annual")},
	}
}

func TestNewCatalogResolvesAliases(t *testing.T) {
	catalog, err := leave.NewCatalog(testTypes())
	require.NoError(t, err)

	anchor, ok := catalog.AnchorID("emergency")
	require.True(t, ok)
	assert.Equal(t, "annual", anchor)

	anchor, ok = catalog.AnchorID("annual")
	require.True(t, ok)
	assert.Equal(t, "annual", anchor)

	assert.True(t, catalog.IsAnchor("annual"))
	assert.False(t, catalog.IsAnchor("emergency"))

	assert.Equal(t, []string{"annual", "emergency"}, catalog.GroupMembers("annual"))
	assert.Equal(t, []string{"medical"}, catalog.GroupMembers("medical"))
}

func TestNewCatalogRejectsDuplicateIDs(t *testing.T) {
	_, err := leave.NewCatalog([]leave.LeaveType{
		{ID: "annual", Code: "A"},
		{ID: "annual", Code: "B"},
	})
	var validation *leave.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestNewCatalogRejectsUnknownAnchor(t *testing.T) {
	_, err := leave.NewCatalog([]leave.LeaveType{
		{ID: "emergency", Code: "E", AliasGroupID: strptr("missing")},
	})
	var validation *leave.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestNewCatalogRejectsChainedAliases(t *testing.T) {
	_, err := leave.NewCatalog([]leave.LeaveType{
		{ID: "annual", Code: "A"},
		{ID: "emergency", Code: "E", AliasGroupID: strptr("annual")},
		{ID: "urgent", Code: "U", AliasGroupID: strptr("emergency")},
	})
	var validation *leave.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestCatalogAllPreservesOrder(t *testing.T) {
	catalog, err := leave.NewCatalog(testTypes())
	require.NoError(t, err)

	all := catalog.All()
	require.Len(t, all, 3)
	assert.Equal(t, "annual", all[0].ID)
	assert.Equal(t, "medical", all[1].ID)
	assert.Equal(t, "emergency", all[2].ID)
}
