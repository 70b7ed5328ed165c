package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/xuri/excelize/v2"

	"github.com/hyperifyio/gobrief/internal/format"
)

// sheet is a header row plus data rows, as read from CSV or a workbook.
type sheet struct {
	header []string
	rows   [][]string
}

func newSheet(records [][]string) sheet {
	if len(records) == 0 {
		return sheet{}
	}
	return sheet{header: records[0], rows: records[1:]}
}

type columnStats struct {
	name           string
	mean, min, max float64
}

// numericColumns returns stats for every column whose non-empty cells all
// parse as numbers. Columns without any value are skipped.
func (s sheet) numericColumns() []columnStats {
	var out []columnStats
	for i, name := range s.header {
		var sum, lo, hi float64
		n := 0
		numeric := true
		for _, row := range s.rows {
			if i >= len(row) || strings.TrimSpace(row[i]) == "" {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
			if err != nil {
				numeric = false
				break
			}
			if n == 0 || v < lo {
				lo = v
			}
			if n == 0 || v > hi {
				hi = v
			}
			sum += v
			n++
		}
		if !numeric || n == 0 {
			continue
		}
		out = append(out, columnStats{name: name, mean: sum / float64(n), min: lo, max: hi})
	}
	return out
}

// renderSample draws the first limit rows as a borderless, left-aligned table.
func (s sheet) renderSample(w io.Writer, limit int) {
	rows := s.rows
	if limit >= 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	t := tablewriter.NewWriter(w)
	t.SetHeader(s.header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetBorder(false)
	t.SetHeaderLine(false)
	t.SetColumnSeparator("")
	t.SetCenterSeparator("")
	t.SetRowSeparator("")
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, row := range rows {
		t.Append(padRow(row, len(s.header)))
	}
	t.Render()
}

func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row[:width]
	}
	out := make([]string, width)
	copy(out, row)
	return out
}

func writeStats(b *strings.Builder, stats []columnStats) {
	for _, st := range stats {
		fmt.Fprintf(b, "%s: Mean=%.2f, Min=%.2f, Max=%.2f\n", st.name, st.mean, st.min, st.max)
	}
}

func extractCSV(_ context.Context, e *Extractor, up Upload) (string, error) {
	text, _ := DecodeText(up.Data)
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return "", emptyError(format.CSV)
	}
	s := newSheet(records)
	limit := e.CSVSampleRows

	var b strings.Builder
	b.WriteString("CSV Data Summary:\n")
	fmt.Fprintf(&b, "Rows: %d, Columns: %d\n", len(s.rows), len(s.header))
	fmt.Fprintf(&b, "Column Names: %s\n\n", strings.Join(s.header, ", "))
	fmt.Fprintf(&b, "Sample Data (first %d rows):\n", limit)
	s.renderSample(&b, limit)
	if stats := s.numericColumns(); len(stats) > 0 {
		b.WriteString("\nNumeric Column Summary:\n")
		writeStats(&b, stats)
	}
	return b.String(), nil
}

// extractExcel summarizes every sheet of an xlsx workbook.
func extractExcel(_ context.Context, e *Extractor, up Upload) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(up.Data))
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	names := f.GetSheetList()
	if len(names) == 0 {
		return "", emptyError(format.Excel)
	}
	limit := e.ExcelSampleRows

	var b strings.Builder
	b.WriteString("Excel File Summary:\n")
	fmt.Fprintf(&b, "Number of sheets: %d\n\n", len(names))
	for _, name := range names {
		records, err := f.GetRows(name)
		if err != nil {
			return "", fmt.Errorf("read sheet %q: %w", name, err)
		}
		s := newSheet(records)
		fmt.Fprintf(&b, "=== Sheet: %s ===\n", name)
		fmt.Fprintf(&b, "Rows: %d, Columns: %d\n", len(s.rows), len(s.header))
		fmt.Fprintf(&b, "Column Names: %s\n\n", strings.Join(s.header, ", "))
		fmt.Fprintf(&b, "Sample Data (first %d rows):\n", limit)
		s.renderSample(&b, limit)
		if stats := s.numericColumns(); len(stats) > 0 {
			b.WriteString("\nNumeric Summary:\n")
			writeStats(&b, stats)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
