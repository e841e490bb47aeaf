package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"careplan-backend/internal/sessions"
	"careplan-backend/internal/totals"
)

const (
	pdfMarginLeft  = 15.0
	pdfMarginTop   = 15.0
	pdfMarginRight = 15.0
	pdfPageWidth   = 210.0
	pdfContentWide = pdfPageWidth - pdfMarginLeft - pdfMarginRight
)

// BuildPDF renders a one-page affordability report for the session.
func BuildPDF(sess sessions.Session, tot totals.Result) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMarginLeft, pdfMarginTop, pdfMarginRight)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(pdfContentWide, 12, "Care Planning Summary", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(pdfContentWide, 6, fmt.Sprintf("Session %s", sess.ID), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	addFiguresTable(pdf, tot)

	if rec := sess.Recommendation; rec != nil {
		pdf.Ln(10)
		pdf.SetFont("Arial", "B", 14)
		pdf.SetTextColor(0, 51, 102)
		pdf.CellFormat(pdfContentWide, 8, "Recommended care type: "+displayOutcome(rec.Outcome), "", 1, "L", false, 0, "")
		pdf.Ln(2)
		pdf.SetFont("Arial", "", 11)
		pdf.SetTextColor(30, 30, 30)
		pdf.MultiCell(pdfContentWide, 6, rec.Narrative, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func addFiguresTable(pdf *fpdf.Fpdf, tot totals.Result) {
	rows := []struct {
		label string
		value string
	}{
		{"Monthly income", fmt.Sprintf("$%d", tot.IncomeTotal)},
		{"Monthly cost", fmt.Sprintf("$%d", tot.CostTotal)},
		{"Effective assets", fmt.Sprintf("$%d", tot.AssetsEffective)},
		{"Monthly gap", fmt.Sprintf("$%d", tot.Gap)},
		{"Runway", formatRunway(tot)},
	}

	pdf.SetFont("Arial", "", 11)
	for i, row := range rows {
		if i%2 == 0 {
			pdf.SetFillColor(240, 244, 248)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetTextColor(30, 30, 30)
		pdf.CellFormat(pdfContentWide*0.5, 8, row.label, "", 0, "L", true, 0, "")
		pdf.CellFormat(pdfContentWide*0.5, 8, row.value, "", 1, "R", true, 0, "")
	}
}

func formatRunway(tot totals.Result) string {
	if tot.MonthsRunway == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%d months (%d years, %d months)", tot.MonthsRunway, tot.RunwayYears, tot.RunwayMonths)
}

func displayOutcome(outcome string) string {
	return strings.ReplaceAll(outcome, "_", " ")
}
