package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-pathways/internal/recommend"
)

// Workbook sheet names.
const (
	SheetUnits   = "Units"
	SheetCareers = "Careers"
	SheetVideos  = "Videos"
)

var (
	itemHeader   = []any{"Student", "Rank", "ID", "Title", "Confidence", "Why"}
	careerHeader = []any{"Student", "Rank", "ID", "Title", "Confidence", "Why", "Evidence"}
)

// WriteWorkbook writes one row per recommended item, with a sheet per kind,
// so reviewers can filter results in a spreadsheet.
func WriteWorkbook(path string, results []recommend.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetUnits); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	for _, name := range []string{SheetCareers, SheetVideos} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	units := [][]any{itemHeader}
	careers := [][]any{careerHeader}
	videos := [][]any{itemHeader}
	for _, res := range results {
		id := res.User.ID
		for i, u := range res.Recommendations.Units {
			units = append(units, itemRow(id, i, u.Item))
		}
		for i, c := range res.Recommendations.Careers {
			careers = append(careers, append(itemRow(id, i, c.Item), strings.Join(c.Evidence, "; ")))
		}
		for i, v := range res.Recommendations.Videos {
			videos = append(videos, itemRow(id, i, v.Item))
		}
	}

	for sheet, rows := range map[string][][]any{SheetUnits: units, SheetCareers: careers, SheetVideos: videos} {
		if err := writeRows(f, sheet, rows); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func itemRow(studentID string, idx int, it recommend.Item) []any {
	return []any{studentID, idx + 1, it.ID, it.Title, string(it.Confidence), it.WhyThis}
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	if err := f.SetColWidth(sheet, "D", "D", 32); err != nil {
		return fmt.Errorf("sizing %s: %w", sheet, err)
	}
	if err := f.SetColWidth(sheet, "F", "F", 80); err != nil {
		return fmt.Errorf("sizing %s: %w", sheet, err)
	}
	return nil
}
