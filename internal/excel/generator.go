package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/outfitterhq/contracts-service/internal/model"
	"github.com/outfitterhq/contracts-service/internal/pricing"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate builds the outfitter contracts workbook: a summary sheet plus one
// detail sheet per lifecycle status.
func (g *Generator) Generate(report model.ContractsReport) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, report); err != nil {
		return nil, err
	}

	usedNames := map[string]struct{}{summarySheet: {}}
	for _, group := range report.Groups {
		sheetName := buildSheetName(group.Status, usedNames)
		usedNames[sheetName] = struct{}{}

		file.NewSheet(sheetName)
		if err := g.writeDetail(file, sheetName, group); err != nil {
			return nil, err
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, report model.ContractsReport) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Outfitter")
	set("B1", report.OutfitterID.String())
	set("A2", "Generated")
	set("B2", report.GeneratedAt.Format(time.RFC3339))
	set("A3", "Contracts")
	set("B3", report.TotalContracts)
	set("A4", "Total")
	set("B4", "$"+pricing.FormatCents(report.TotalCents))

	tableRow := 6
	set(fmt.Sprintf("A%d", tableRow), "Status")
	set(fmt.Sprintf("B%d", tableRow), "Contracts")
	set(fmt.Sprintf("C%d", tableRow), "Total")

	for i, group := range report.Groups {
		row := tableRow + 1 + i
		var groupTotal int64
		for _, contract := range group.Contracts {
			groupTotal += contract.TotalCents
		}
		set(fmt.Sprintf("A%d", row), statusLabel(group.Status))
		set(fmt.Sprintf("B%d", row), len(group.Contracts))
		set(fmt.Sprintf("C%d", row), "$"+pricing.FormatCents(groupTotal))
	}
	return nil
}

func (g *Generator) writeDetail(file *excelize.File, sheet string, group model.StatusGroup) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{"Contract", "Client", "Hunt", "Guide Fee", "Add-Ons", "Total", "Completed", "Client Signed", "Admin Signed"}
	for i, header := range headers {
		column, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		set(fmt.Sprintf("%s1", column), header)
	}

	for i, contract := range group.Contracts {
		row := i + 2
		set(fmt.Sprintf("A%d", row), contract.ID.String())
		set(fmt.Sprintf("B%d", row), contract.ClientEmail)
		if contract.HuntID != nil {
			set(fmt.Sprintf("C%d", row), contract.HuntID.String())
		}
		set(fmt.Sprintf("D%d", row), "$"+pricing.FormatCents(contract.GuideFeeCents))
		set(fmt.Sprintf("E%d", row), "$"+pricing.FormatCents(contract.AddOnsCents))
		set(fmt.Sprintf("F%d", row), "$"+pricing.FormatCents(contract.TotalCents))
		set(fmt.Sprintf("G%d", row), formatTimestamp(contract.ClientCompletedAt))
		set(fmt.Sprintf("H%d", row), formatTimestamp(contract.ClientSignedAt))
		set(fmt.Sprintf("I%d", row), formatTimestamp(contract.AdminSignedAt))
	}
	return nil
}

func buildSheetName(status model.ContractStatus, used map[string]struct{}) string {
	name := statusLabel(status)
	if len(name) > 31 {
		name = name[:31]
	}
	base := name
	for i := 2; ; i++ {
		if _, taken := used[name]; !taken {
			return name
		}
		name = fmt.Sprintf("%s %d", base, i)
	}
}

func statusLabel(status model.ContractStatus) string {
	words := strings.Split(string(status), "_")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

func formatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
