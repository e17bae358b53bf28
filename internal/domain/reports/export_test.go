package reports_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrleave/internal/domain/reports"
)

func sampleRows() []reports.Row {
	return []reports.Row{
		{
			EmployeeID: "e1", EmployeeName: "Jordan Blake",
			LeaveTypeName: "Annual Leave", LeaveTypeCode: "ANNUAL",
			DefaultDays: 14, UsedDays: 5, PendingDays: 2.5, RemainingDays: 6.5,
		},
		{
			EmployeeID: "e1", EmployeeName: "Jordan Blake",
			LeaveTypeName: "Medical Leave", LeaveTypeCode: "MEDICAL",
			DefaultDays: 10, UsedDays: 0, PendingDays: 0, RemainingDays: 10,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, reports.WriteCSV(&buf, 2025, sampleRows()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "employee_id,employee_name,leave_type,code,default_days,used_days,pending_days,remaining_days", lines[0])
	assert.Equal(t, "e1,Jordan Blake,Annual Leave,ANNUAL,14,5.0,2.5,6.5", lines[1])
	assert.Equal(t, "e1,Jordan Blake,Medical Leave,MEDICAL,10,0.0,0.0,10.0", lines[2])
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, reports.WritePDF(&buf, 2025, sampleRows()))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Greater(t, buf.Len(), 1000)
}
