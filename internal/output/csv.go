package output

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/querylens/querylens/internal/core"
)

// CSVFormatter renders the row table as CSV with a configurable delimiter.
type CSVFormatter struct {
	Delimiter rune
}

// FormatRun renders the run's rows as CSV text.
func (f *CSVFormatter) FormatRun(result *core.RunResult) (string, error) {
	if result == nil {
		return "", nil
	}

	var sb strings.Builder
	if err := WriteCSV(&sb, result.Rows, f.Delimiter); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteCSV writes the row table to w. Empty position and suggestion fields
// stay empty rather than rendering zeros.
func WriteCSV(w io.Writer, rows []core.Row, delimiter rune) error {
	writer := csv.NewWriter(w)
	if delimiter != 0 {
		writer.Comma = delimiter
	}

	if err := writer.Write([]string{"seed", "query_sent", "position", "suggestion", "error"}); err != nil {
		return err
	}

	for _, row := range rows {
		position := ""
		if row.Position > 0 {
			position = strconv.Itoa(row.Position)
		}
		record := []string{row.Seed, row.Query, position, row.Suggestion, row.Error}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
