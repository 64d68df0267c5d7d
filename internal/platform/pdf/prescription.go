// Package pdf renders an approved prescription as a printable A4 document.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/mediscript/mediscript/internal/platform/structured"
)

const (
	marginPt     = 50
	lineHeight   = 14
	titleSize    = 18
	subtitleSize = 10
	headingSize  = 12
	bodySize     = 10
)

// PatientDetails is the demographic block printed under the header.
type PatientDetails struct {
	Name   string
	MRN    string
	Age    string
	Gender string
	Phone  string
}

// Prescription is everything the renderer needs to lay out one document.
type Prescription struct {
	ClinicName string
	DoctorName string
	Patient    PatientDetails
	Record     *structured.Record
}

// Render produces the PDF bytes for a prescription.
func Render(p Prescription) ([]byte, error) {
	doc := gofpdf.New("P", "pt", "A4", "")
	doc.SetMargins(marginPt, marginPt, marginPt)
	doc.SetAutoPageBreak(true, marginPt)
	doc.AddPage()

	clinic := p.ClinicName
	if clinic == "" {
		clinic = "MediScript AI"
	}

	// Header
	doc.SetFont("Helvetica", "B", titleSize)
	doc.CellFormat(0, lineHeight*1.2, clinic, "", 1, "C", false, 0, "")
	doc.SetFont("Helvetica", "", subtitleSize)
	doc.CellFormat(0, lineHeight, "Prescription", "", 1, "C", false, 0, "")
	doc.Ln(lineHeight)

	// Patient details
	heading(doc, "Patient Details")
	writeDetail(doc, "Name", p.Patient.Name)
	writeDetail(doc, "MRN", p.Patient.MRN)
	writeDetail(doc, "Age", p.Patient.Age)
	writeDetail(doc, "Gender", p.Patient.Gender)
	writeDetail(doc, "Phone", p.Patient.Phone)
	doc.Ln(lineHeight / 2)

	rec := p.Record
	if rec == nil {
		rec = &structured.Record{}
	}

	if pc := rec.PresentingComplaint; pc != nil {
		heading(doc, "Presenting Complaint")
		line := pc.Summary
		if pc.Duration != nil && *pc.Duration != "" {
			line = fmt.Sprintf("%s (%s)", line, *pc.Duration)
		}
		bullet(doc, line)
		for _, s := range pc.AssociatedSymptoms {
			bullet(doc, s)
		}
		doc.Ln(lineHeight / 2)
	}

	if d := rec.Diagnosis; d != nil {
		heading(doc, "Diagnosis")
		bullet(doc, d.Primary)
		for _, alt := range d.Differential {
			bullet(doc, alt)
		}
		doc.Ln(lineHeight / 2)
	}

	if len(rec.Medications) > 0 {
		heading(doc, "Medications")
		renderMedicationTable(doc, rec.Medications)
		doc.Ln(lineHeight / 2)
	}

	if len(rec.Investigations) > 0 {
		heading(doc, "Investigations Advised")
		for _, inv := range rec.Investigations {
			line := inv.TestName
			if inv.Reason != "" {
				line = fmt.Sprintf("%s - %s", line, inv.Reason)
			}
			bullet(doc, line)
		}
		doc.Ln(lineHeight / 2)
	}

	if af := rec.AdviceAndFollowup; af != nil {
		if len(af.Advice) > 0 {
			heading(doc, "Advice")
			for _, a := range af.Advice {
				bullet(doc, a)
			}
			doc.Ln(lineHeight / 2)
		}
		if af.FollowUp != "" {
			heading(doc, "Follow-up")
			doc.SetFont("Helvetica", "", bodySize)
			doc.CellFormat(0, lineHeight, af.FollowUp, "", 1, "L", false, 0, "")
			doc.Ln(lineHeight / 2)
		}
	}

	// Signature block
	doc.Ln(lineHeight)
	doc.SetFont("Helvetica", "", bodySize)
	doc.CellFormat(0, lineHeight, "Doctor signature: _________________________", "", 1, "L", false, 0, "")
	doc.CellFormat(0, lineHeight, p.DoctorName, "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render prescription pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func heading(doc *gofpdf.Fpdf, title string) {
	doc.SetFont("Helvetica", "B", headingSize)
	doc.CellFormat(0, lineHeight, title, "", 1, "L", false, 0, "")
}

func writeDetail(doc *gofpdf.Fpdf, label, value string) {
	if value == "" {
		return
	}
	doc.SetFont("Helvetica", "", bodySize)
	doc.CellFormat(0, lineHeight*0.8, fmt.Sprintf("%s: %s", label, value), "", 1, "L", false, 0, "")
}

func bullet(doc *gofpdf.Fpdf, text string) {
	if text == "" {
		return
	}
	doc.SetFont("Helvetica", "", bodySize)
	doc.CellFormat(0, lineHeight*0.8, "- "+text, "", 1, "L", false, 0, "")
}

var medColumns = []struct {
	title string
	width float64
}{
	{"Name", 130},
	{"Dosage", 80},
	{"Frequency", 100},
	{"Duration", 80},
	{"Instructions", 105},
}

func renderMedicationTable(doc *gofpdf.Fpdf, meds []structured.Medication) {
	doc.SetFont("Helvetica", "B", bodySize)
	for _, col := range medColumns {
		doc.CellFormat(col.width, lineHeight*0.9, col.title, "", 0, "L", false, 0, "")
	}
	doc.Ln(lineHeight * 0.9)

	doc.SetFont("Helvetica", "", bodySize)
	for _, m := range meds {
		cells := []string{m.Name, m.Dosage, m.Frequency, m.Duration, m.Instructions}
		for i, col := range medColumns {
			doc.CellFormat(col.width, lineHeight*0.9, truncate(cells[i], 24), "", 0, "L", false, 0, "")
		}
		doc.Ln(lineHeight * 0.9)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
