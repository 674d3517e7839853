package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"asa-cli/internal/appleads"
	"asa-cli/internal/naming"
	"asa-cli/internal/output"
)

const defaultListLimit = 100

func parseID(what, raw string) (int64, error) {
	trimmed := strings.TrimSpace(raw)
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("Invalid %s %q", what, raw)
	}
	return id, nil
}

// parseIDs parses positional ids in order; the first bad one is the error.
func parseIDs(args []string, what ...string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for i, raw := range args {
		label := "ID"
		if i < len(what) {
			label = what[i]
		}
		id, err := parseID(label, raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("Invalid date format: '%s'. Use YYYY-MM-DD format.", value)
	}
	return t, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("Invalid amount %q", raw)
	}
	return d, nil
}

// decimalFlag is an optional decimal flag; it stays nil until set.
type decimalFlag struct {
	value *decimal.Decimal
}

func (f *decimalFlag) String() string {
	if f.value == nil {
		return ""
	}
	return f.value.String()
}

func (f *decimalFlag) Set(raw string) error {
	d, err := parseAmount(raw)
	if err != nil {
		return err
	}
	f.value = &d
	return nil
}

func (f *decimalFlag) Type() string { return "decimal" }

func firstNonEmptyString(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// money renders "12.50 USD", or "" so tables show "-" and CSV stays empty.
func money(m *appleads.Money) string {
	if m == nil {
		return ""
	}
	return m.String()
}

func truncate(s string, max int) string {
	return naming.Truncate(s, max)
}

// optionalStatus parses a --status filter; empty means no filter.
func optionalStatus(raw string) (appleads.CampaignStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return appleads.CampaignStatus{}, nil
	}
	return appleads.ParseCampaignStatus(raw)
}

// saveRecords exports to path, reporting an unsupported suffix as a panel.
func (a *app) saveRecords(path string, cols []output.Column, records []output.Record) error {
	if err := output.SaveRecords(path, cols, records); err != nil {
		var unsupported *output.UnsupportedFileError
		if errors.As(err, &unsupported) {
			a.out.Error("Unsupported Format",
				fmt.Sprintf("File format '%s' is not supported", unsupported.Suffix),
				"Supported formats: .json, .csv")
			return errHandled
		}
		return err
	}
	return nil
}

// done prints v in json mode, otherwise a success line.
func (a *app) done(v any, format string, args ...any) error {
	if a.jsonOut() {
		return a.out.JSON(v)
	}
	a.out.Success(format, args...)
	return nil
}

func (a *app) resultPanel(v any, title string, fields ...output.Field) error {
	if a.jsonOut() {
		return a.out.JSON(v)
	}
	a.out.ResultPanel(title, fields...)
	return nil
}

// confirmed asks question unless force is set. A declined answer prints
// "Cancelled" and reports false.
func (a *app) confirmed(force bool, question string) (bool, error) {
	if force {
		return true, nil
	}
	ok, err := a.prompt.Confirm(question, false)
	if err != nil {
		return false, err
	}
	if !ok {
		a.out.Warning("Cancelled")
	}
	return ok, nil
}
