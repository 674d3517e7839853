package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Record is one row of tabular command output, keyed by column.
type Record map[string]any

// Cell renders a record value for a table or CSV cell. Missing values
// render as "-" in tables.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case string:
		if x == "" {
			return "-"
		}
		return x
	case decimal.Decimal:
		return x.String()
	case *decimal.Decimal:
		if x == nil {
			return "-"
		}
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func csvCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case *decimal.Decimal:
		if x == nil {
			return ""
		}
	}
	if s := Cell(v); s != "-" {
		return s
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// WriteCSV writes a header of column keys followed by one line per record.
func WriteCSV(w io.Writer, cols []Column, records []Record) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(cols))
	for _, c := range cols {
		header = append(header, c.Key)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		line := make([]string, 0, len(cols))
		for _, c := range cols {
			line = append(line, csvCell(r[c.Key]))
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes records to path as CSV.
func WriteCSVFile(path string, cols []Column, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, cols, records); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// UnsupportedFileError is returned by SaveRecords for a suffix other than
// .json or .csv.
type UnsupportedFileError struct {
	Suffix string
}

func (e *UnsupportedFileError) Error() string {
	return fmt.Sprintf("file format '%s' is not supported (supported formats: .json, .csv)", e.Suffix)
}

// SaveRecords picks JSON or CSV from the file suffix.
func SaveRecords(path string, cols []Column, records []Record) error {
	switch suffix := strings.ToLower(filepath.Ext(path)); suffix {
	case ".json":
		if records == nil {
			records = []Record{}
		}
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	case ".csv":
		return WriteCSVFile(path, cols, records)
	default:
		return &UnsupportedFileError{Suffix: suffix}
	}
}
