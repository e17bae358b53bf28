package reports

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

var csvHeader = []string{
	"employee_id", "employee_name", "leave_type", "code",
	"default_days", "used_days", "pending_days", "remaining_days",
}

// WriteCSV streams the report as CSV.
func WriteCSV(w io.Writer, year int, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.EmployeeID,
			row.EmployeeName,
			row.LeaveTypeName,
			row.LeaveTypeCode,
			fmt.Sprintf("%d", row.DefaultDays),
			fmt.Sprintf("%.1f", row.UsedDays),
			fmt.Sprintf("%.1f", row.PendingDays),
			fmt.Sprintf("%.1f", row.RemainingDays),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePDF renders the report as a landscape PDF table.
func WritePDF(w io.Writer, year int, rows []Row) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Leave Balance Report %d", year), false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, fmt.Sprintf("Leave Balance Report %d", year))
	pdf.Ln(12)

	widths := []float64{50, 55, 45, 25, 25, 25, 28, 28}
	headers := []string{"Employee ID", "Employee", "Leave Type", "Code", "Default", "Used", "Pending", "Remaining"}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 7, header, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		cells := []string{
			row.EmployeeID,
			row.EmployeeName,
			row.LeaveTypeName,
			row.LeaveTypeCode,
			fmt.Sprintf("%d", row.DefaultDays),
			fmt.Sprintf("%.1f", row.UsedDays),
			fmt.Sprintf("%.1f", row.PendingDays),
			fmt.Sprintf("%.1f", row.RemainingDays),
		}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 6, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}
