package emitter

import (
	"fmt"
	"path/filepath"

	"planforge/domain/run"

	"github.com/xuri/excelize/v2"
)

// SummaryWorkbookName is the optional XLSX report written next to the
// JSON artifacts.
const SummaryWorkbookName = "generation_summary.xlsx"

var contractSheetHeader = []string{
	"Contract ID", "Question ID", "Policy Area", "Type",
	"Methods", "Efficiency", "Pass Rate", "Valid", "Emitted", "File", "Error",
}

// WriteSummaryWorkbook renders the manifest as a two-sheet workbook for
// reviewers who work outside the JSON tooling.
func (e *JSONEmitter) WriteSummaryWorkbook(m *run.Manifest) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	const contractsSheet = "Contracts"
	if err := f.SetSheetName("Sheet1", contractsSheet); err != nil {
		return "", fmt.Errorf("workbook sheet: %w", err)
	}

	for col, title := range contractSheetHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(contractsSheet, cell, title); err != nil {
			return "", fmt.Errorf("workbook header: %w", err)
		}
	}
	for i, entry := range m.Contracts {
		row := []interface{}{
			string(entry.ContractID), string(entry.QuestionID), string(entry.PolicyAreaID),
			string(entry.ContractType), entry.MethodCount, entry.EfficiencyScore,
			entry.PassRate, entry.IsValid, entry.Emitted, entry.File, entry.Error,
		}
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(contractsSheet, cell, v); err != nil {
				return "", fmt.Errorf("workbook row %d: %w", i+2, err)
			}
		}
	}

	if err := e.writeSummarySheet(f, m); err != nil {
		return "", err
	}

	path := filepath.Join(e.outputDir, SummaryWorkbookName)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook %s: %w", path, err)
	}
	e.log.Info("summary workbook written: %s", SummaryWorkbookName)
	return SummaryWorkbookName, nil
}

func (e *JSONEmitter) writeSummarySheet(f *excelize.File, m *run.Manifest) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("workbook summary sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Run ID", m.RunID},
		{"Generated At", m.GeneratedAt.String()},
		{"Generator Version", m.GeneratorVersion},
		{"Fingerprint", string(m.Fingerprint)},
		{"Total Contracts", m.Summary.TotalContracts},
		{"Valid Contracts", m.Summary.ValidContracts},
		{"Invalid Contracts", m.Summary.InvalidContracts},
		{"Emitted Contracts", m.Summary.EmittedContracts},
		{"Mean Pass Rate", m.Summary.MeanPassRate},
		{"Median Pass Rate", m.Summary.MedianPassRate},
		{"Mean Efficiency", m.Summary.MeanEfficiency},
		{"Efficiency Std Dev", m.Summary.EfficiencyStdDev},
	}
	for i, row := range rows {
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+1)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("workbook summary row %d: %w", i+1, err)
			}
		}
	}
	return nil
}
