package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset is a titled table with an optional key/value summary block.
type Dataset struct {
	Title   string
	Headers []string
	Rows    []map[string]string
	Summary []SummaryLine
}

// SummaryLine is one "label: value" line printed ahead of the table.
type SummaryLine struct {
	Label string
	Value string
}

// CSVExporter renders a Dataset as CSV. Summary lines come first, followed by a blank
// record and then the table.
type CSVExporter struct{}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// ContentType of the rendered document.
func (e *CSVExporter) ContentType() string { return "text/csv; charset=utf-8" }

// Extension of the rendered document.
func (e *CSVExporter) Extension() string { return "csv" }

func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	for _, line := range data.Summary {
		if err := writer.Write([]string{line.Label, line.Value}); err != nil {
			return nil, fmt.Errorf("write csv summary: %w", err)
		}
	}
	if len(data.Summary) > 0 {
		if err := writer.Write([]string{}); err != nil {
			return nil, fmt.Errorf("write csv separator: %w", err)
		}
	}
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
