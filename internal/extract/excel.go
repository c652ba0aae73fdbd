package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractExcel streams every visible sheet as tab-separated rows. Blank rows
// and trailing empty cells are dropped. A workbook with several visible
// sheets gets each sheet's name as a heading line so chunks keep the
// schedule they came from.
func extractExcel(content []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var sheets []string
	for _, name := range f.GetSheetList() {
		visible, err := f.GetSheetVisible(name)
		if err != nil {
			return "", fmt.Errorf("sheet %q visibility: %w", name, err)
		}
		if visible {
			sheets = append(sheets, name)
		}
	}

	var parts []string
	for _, name := range sheets {
		lines, err := sheetLines(f, name)
		if err != nil {
			return "", err
		}
		if len(lines) == 0 {
			continue
		}
		if len(sheets) > 1 {
			lines = append([]string{name}, lines...)
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}
	return strings.Join(parts, "\n\n"), nil
}

func sheetLines(f *excelize.File, sheet string) ([]string, error) {
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		cells, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		for len(cells) > 0 && strings.TrimSpace(cells[len(cells)-1]) == "" {
			cells = cells[:len(cells)-1]
		}
		if len(cells) == 0 {
			continue
		}
		lines = append(lines, strings.Join(cells, "\t"))
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return lines, nil
}
