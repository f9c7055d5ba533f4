// Package document renders downloadable documents.
package document

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// MaxLineChars bounds each rendered content line.
const MaxLineChars = 80

// WillBeneficiary is one printed beneficiary line.
type WillBeneficiary struct {
	Name         string
	Relationship string
}

// WillDocument is everything printed on a will export.
type WillDocument struct {
	Title         string
	OwnerName     string
	Content       string
	Status        string
	Beneficiaries []WillBeneficiary
	SignedAt      *time.Time
	GeneratedAt   time.Time
}

// RenderWill lays out a Letter-size PDF and returns its bytes.
func RenderWill(doc WillDocument) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetTitle(doc.Title, true)
	pdf.SetAuthor(doc.OwnerName, true)
	pdf.SetMargins(72, 72, 72)
	pdf.SetAutoPageBreak(true, 72)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 24, tr(doc.Title), "", "C", false)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 16, tr("Testator: "+doc.OwnerName), "", 1, "L", false, 0, "")
	if doc.Status != "" {
		pdf.CellFormat(0, 16, tr("Status: "+doc.Status), "", 1, "L", false, 0, "")
	}
	if doc.SignedAt != nil {
		pdf.CellFormat(0, 16, "Digitally signed: "+doc.SignedAt.UTC().Format("2 January 2006 15:04 MST"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(12)

	pdf.SetFont("Times", "", 12)
	for _, line := range ContentLines(doc.Content) {
		pdf.CellFormat(0, 16, tr(line), "", 1, "L", false, 0, "")
	}

	if len(doc.Beneficiaries) > 0 {
		pdf.Ln(16)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 18, "Beneficiaries", "", 1, "L", false, 0, "")
		pdf.SetFont("Times", "", 12)
		for _, b := range doc.Beneficiaries {
			pdf.CellFormat(0, 16, tr(fmt.Sprintf("%s: %s", b.Name, b.Relationship)), "", 1, "L", false, 0, "")
		}
	}

	generated := doc.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	pdf.Ln(24)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 12, "Generated "+generated.UTC().Format(time.RFC1123), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ContentLines splits content on newlines and truncates each line to
// MaxLineChars runes.
func ContentLines(content string) []string {
	raw := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		r := []rune(l)
		if len(r) > MaxLineChars {
			r = r[:MaxLineChars]
		}
		out = append(out, string(r))
	}
	return out
}
