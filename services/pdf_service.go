package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"github.com/crewplex/workforce-app/models"
	"github.com/crewplex/workforce-app/staffing"
)

// PDFVariant selects which approval milestone the document reflects.
type PDFVariant string

const (
	PDFVariantUnsigned PDFVariant = "unsigned"
	PDFVariantSigned   PDFVariant = "signed"
	PDFVariantFinal    PDFVariant = "final"
)

// TimesheetPDFGenerator renders a timesheet document and returns the stored
// artifact URL. Implemented with fpdf in production; tests stub it to drive
// the rollback path.
type TimesheetPDFGenerator interface {
	Generate(ts *models.Timesheet, variant PDFVariant) (string, error)
}

// FPDFGenerator writes timesheet PDFs under a local uploads directory served
// by the router. The URL stored on the timesheet is treated as opaque by
// everything else.
type FPDFGenerator struct {
	OutputDir string
	BaseURL   string
}

func NewFPDFGenerator() *FPDFGenerator {
	return &FPDFGenerator{
		OutputDir: filepath.Join("public", "uploads", "timesheets"),
		BaseURL:   "/uploads/timesheets",
	}
}

// Generate renders the worker-hours table plus the signature blocks that
// exist at the given milestone. The timesheet must come preloaded with
// Shift.Job.Company and Shift.AssignedPersonnel (workers + time entries).
func (g *FPDFGenerator) Generate(ts *models.Timesheet, variant PDFVariant) (string, error) {
	if err := os.MkdirAll(g.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Timesheet #%d", ts.ID), false)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Timesheet")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Company: %s", ts.Shift.Job.Company.Name))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Job: %s (%s)", ts.Shift.Job.Name, ts.Shift.Job.Location))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Shift date: %s  %s - %s",
		ts.Shift.Date.Format("2006-01-02"),
		ts.Shift.StartTime.Format("15:04"),
		ts.Shift.EndTime.Format("15:04")))
	pdf.Ln(10)

	// Worker table
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(55, 7, "Worker", "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 7, "Role", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, "Clock In", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 7, "Clock Out", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 7, "Hours", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	var grandTotal float64
	for _, ap := range ts.Shift.AssignedPersonnel {
		if !staffing.IsValidAssignment(ap) {
			continue
		}
		name := fmt.Sprintf("Worker #%d", *ap.UserID)
		if ap.User != nil {
			name = ap.User.Name
		}

		if len(ap.TimeEntries) == 0 {
			pdf.CellFormat(55, 6, name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(35, 6, staffing.RoleCode(ap.RoleCode).Label(), "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, "-", "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 6, "-", "1", 0, "C", false, 0, "")
			pdf.CellFormat(25, 6, "0.00", "1", 1, "R", false, 0, "")
			continue
		}

		var workerTotal float64
		for i, entry := range ap.TimeEntries {
			rowName, rowRole := "", ""
			if i == 0 {
				rowName = name
				rowRole = staffing.RoleCode(ap.RoleCode).Label()
			}
			clockOut := "-"
			if entry.ClockOut != nil {
				clockOut = entry.ClockOut.Format("15:04")
			}
			workerTotal += entry.Hours()

			pdf.CellFormat(55, 6, rowName, "1", 0, "L", false, 0, "")
			pdf.CellFormat(35, 6, rowRole, "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, entry.ClockIn.Format("15:04"), "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 6, clockOut, "1", 0, "C", false, 0, "")
			pdf.CellFormat(25, 6, fmt.Sprintf("%.2f", entry.Hours()), "1", 1, "R", false, 0, "")
		}
		grandTotal += workerTotal
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(150, 7, "Total hours", "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 7, fmt.Sprintf("%.2f", grandTotal), "1", 1, "R", false, 0, "")
	pdf.Ln(10)

	// Signature blocks per milestone
	pdf.SetFont("Arial", "", 10)
	if variant == PDFVariantSigned || variant == PDFVariantFinal {
		sig := ""
		if ts.CompanySignature != nil {
			sig = *ts.CompanySignature
		}
		pdf.Cell(0, 6, fmt.Sprintf("Company approval: %s", sig))
		pdf.Ln(5)
		if ts.CompanyApprovedAt != nil {
			pdf.Cell(0, 6, fmt.Sprintf("Approved at: %s", ts.CompanyApprovedAt.Format("2006-01-02 15:04")))
			pdf.Ln(5)
		}
		pdf.Ln(3)
	}
	if variant == PDFVariantFinal {
		sig := ""
		if ts.ManagerSignature != nil {
			sig = *ts.ManagerSignature
		}
		pdf.Cell(0, 6, fmt.Sprintf("Manager approval: %s", sig))
		pdf.Ln(5)
		if ts.ManagerApprovedAt != nil {
			pdf.Cell(0, 6, fmt.Sprintf("Approved at: %s", ts.ManagerApprovedAt.Format("2006-01-02 15:04")))
			pdf.Ln(5)
		}
	}
	if variant == PDFVariantUnsigned {
		pdf.Cell(0, 6, "Company approval: ____________________")
		pdf.Ln(8)
		pdf.Cell(0, 6, "Manager approval: ____________________")
		pdf.Ln(5)
	}

	filename := fmt.Sprintf("timesheet-%d-%s-%s.pdf", ts.ID, variant, uuid.New().String())
	fullPath := filepath.Join(g.OutputDir, filename)
	if err := pdf.OutputFileAndClose(fullPath); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}

	return g.BaseURL + "/" + filename, nil
}
