// Package output renders run results as tables, JSON, or CSV.
package output

import (
	"fmt"
	"strings"

	"github.com/querylens/querylens/internal/core"
)

// Format represents an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
)

// Formatter renders a completed run.
type Formatter interface {
	FormatRun(result *core.RunResult) (string, error)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatCSV):
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// ParseDelimiter maps the CSV delimiter choice to a rune. Accepts ",",
// ";", a literal tab, or the spellings "tab" and "\t".
func ParseDelimiter(value string) (rune, error) {
	switch value {
	case "", ",":
		return ',', nil
	case ";":
		return ';', nil
	case "\t", "\\t", "tab":
		return '\t', nil
	default:
		return 0, fmt.Errorf("unsupported CSV delimiter: %q", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format, delimiter rune) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatCSV:
		return &CSVFormatter{Delimiter: delimiter}
	default:
		return &TableFormatter{}
	}
}
