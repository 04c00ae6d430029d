package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/outfitterhq/contracts-service/internal/model"
	"github.com/outfitterhq/contracts-service/internal/pricing"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

func (g *Generator) Generate(doc model.ContractDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 10, "HUNT CONTRACT", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Contract %s", doc.Contract.ID), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Status: %s", statusLabel(doc.Contract.Status)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	if doc.Hunt != nil {
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "Hunt", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 10)
		pdf.MultiCell(0, 5, doc.Hunt.Title, "", "L", false)
		detail := doc.Hunt.Species
		if doc.Hunt.Unit != "" {
			detail += ", Unit " + doc.Hunt.Unit
		}
		if doc.Hunt.Weapon != "" {
			detail += ", " + doc.Hunt.Weapon
		}
		if detail != "" {
			pdf.MultiCell(0, 5, detail, "", "L", false)
		}
		if doc.Hunt.StartAt != nil && doc.Hunt.EndAt != nil {
			pdf.MultiCell(0, 5, fmt.Sprintf("Dates: %s to %s",
				formatDate(*doc.Hunt.StartAt), formatDate(*doc.Hunt.EndAt)), "", "L", false)
		}
		pdf.Ln(2)
	}

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Client", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.MultiCell(0, 5, doc.Contract.ClientEmail, "", "L", false)
	pdf.Ln(2)

	if preamble := prosePreamble(doc.Contract.Content); preamble != "" {
		pdf.SetFont(g.fontName, "", 10)
		pdf.MultiCell(0, 5, preamble, "", "L", false)
		pdf.Ln(2)
	}

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Bill", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)

	headers := []string{"Item", "Qty", "Rate", "Amount"}
	colWidths := []float64{90, 20, 30, 30}
	drawTableRow(pdf, g.fontName, headers, colWidths, true)
	for _, line := range doc.Lines {
		row := []string{
			line.Label,
			fmt.Sprintf("%d", line.Quantity),
			"$" + pricing.FormatCents(line.RateCents),
			"$" + pricing.FormatCents(line.AmountCents),
		}
		drawTableRow(pdf, g.fontName, row, colWidths, false)
	}

	pdf.Ln(2)
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total: $%s", pricing.FormatCents(doc.Contract.TotalCents)), "", 1, "R", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Signatures", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	signatureBlock(pdf, g.fontName, "Client", doc.Contract.ClientSignedAt)
	signatureBlock(pdf, g.fontName, "Outfitter", doc.Contract.AdminSignedAt)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// prosePreamble cuts the BILL block out of the stored content; the bill is
// rendered as a table instead.
func prosePreamble(content string) string {
	if idx := strings.Index(strings.ToUpper(content), "\nBILL\n"); idx >= 0 {
		content = content[:idx]
	}
	content = strings.TrimRight(content, " \t\n-")
	return strings.TrimSpace(content)
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func signatureBlock(pdf *gofpdf.Fpdf, fontName, party string, signedAt *time.Time) {
	pdf.SetFont(fontName, "", 10)
	if signedAt != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("%s: signed %s", party, formatDate(*signedAt)), "", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(0, 6, fmt.Sprintf("%s: _________________________    Date: ____________", party), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
}

func statusLabel(status model.ContractStatus) string {
	return strings.ReplaceAll(string(status), "_", " ")
}

func formatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}
