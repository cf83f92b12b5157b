package extractor

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/xuri/excelize/v2"
)

// maxSheetRows caps how many data rows of each sheet are rendered.
const maxSheetRows = 100

// extractSpreadsheet renders each sheet as a header line, a column-aligned
// view of the first 100 data rows, and summary statistics for every numeric
// column. If whole-sheet reading fails it falls back to a streaming
// row-by-row rendering; only when both strategies fail does the caller see
// an error.
func extractSpreadsheet(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer f.Close()

	text, err := renderWorkbook(f)
	if err == nil {
		return text, nil
	}

	return renderWorkbookRows(f)
}

// renderWorkbook is the primary strategy: whole sheets at once, aligned
// columns plus per-column statistics.
func renderWorkbook(f *excelize.File) (string, error) {
	var parts []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", err
		}

		parts = append(parts, fmt.Sprintf("--- Sheet: %s ---", sheet))

		// First row is treated as the header, then up to maxSheetRows
		// data rows.
		sample := rows
		if len(sample) > maxSheetRows+1 {
			sample = sample[:maxSheetRows+1]
		}
		if len(sample) > 0 {
			parts = append(parts, alignRows(sample))
		}

		if statsBlock := describeNumericColumns(rows); statsBlock != "" {
			parts = append(parts, "[SUMMARY STATISTICS]\n"+statsBlock)
		}
	}

	return strings.Join(parts, "\n\n"), nil
}

// renderWorkbookRows is the lower-level fallback: stream each sheet row by
// row, joining cells with " | " and skipping fully empty rows.
func renderWorkbookRows(f *excelize.File) (string, error) {
	var parts []string
	for _, sheet := range f.GetSheetList() {
		parts = append(parts, fmt.Sprintf("--- Sheet: %s ---", sheet))

		iter, err := f.Rows(sheet)
		if err != nil {
			return "", err
		}

		count := 0
		for iter.Next() && count < maxSheetRows {
			cols, err := iter.Columns()
			if err != nil {
				iter.Close()
				return "", err
			}
			if isEmptyRow(cols) {
				continue
			}
			parts = append(parts, strings.Join(cols, " | "))
			count++
		}
		if err := iter.Close(); err != nil {
			return "", err
		}
	}

	return strings.Join(parts, "\n"), nil
}

func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// alignRows renders rows with each column padded to its widest value.
func alignRows(rows [][]string) string {
	widths := make([]int, 0)
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	for r, row := range rows {
		if r > 0 {
			b.WriteByte('\n')
		}
		for i, cell := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			if i < len(row)-1 {
				b.WriteString(fmt.Sprintf("%-*s", widths[i], cell))
			} else {
				b.WriteString(cell)
			}
		}
	}
	return b.String()
}

// describeNumericColumns emits one count/mean/std/min/quartiles/max line per
// numeric column. A column is numeric when every non-empty data cell parses
// as a number and at least one value exists; the first row is the header.
func describeNumericColumns(rows [][]string) string {
	if len(rows) < 2 {
		return ""
	}
	header := rows[0]

	var lines []string
	for col, name := range header {
		values := make([]float64, 0, len(rows)-1)
		numeric := true
		for _, row := range rows[1:] {
			if col >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[col])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
			if err != nil {
				numeric = false
				break
			}
			values = append(values, v)
		}
		if !numeric || len(values) == 0 {
			continue
		}

		mean, _ := stats.Mean(values)
		std, _ := stats.StandardDeviation(values)
		minV, _ := stats.Min(values)
		q1, _ := stats.Percentile(values, 25)
		med, _ := stats.Percentile(values, 50)
		q3, _ := stats.Percentile(values, 75)
		maxV, _ := stats.Max(values)

		label := strings.TrimSpace(name)
		if label == "" {
			label = fmt.Sprintf("column %d", col+1)
		}
		lines = append(lines, fmt.Sprintf(
			"%s: count=%d mean=%.2f std=%.2f min=%.2f 25%%=%.2f 50%%=%.2f 75%%=%.2f max=%.2f",
			label, len(values), mean, std, minV, q1, med, q3, maxV))
	}

	return strings.Join(lines, "\n")
}
