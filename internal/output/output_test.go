package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuffered(format Format) (*Output, *bytes.Buffer, *bytes.Buffer) {
	var out, errw bytes.Buffer
	return New(&out, &errw, format), &out, &errw
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, err := ParseFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	require.Error(t, err)
}

func TestMessagesCarryGlyphs(t *testing.T) {
	t.Parallel()

	o, out, errw := newBuffered(FormatTable)
	o.Success("Campaign '%s' paused", "Chippy")
	o.Warning("Cancelled")
	o.Info("Fetching")
	o.Error("API Error", "boom", "Status code: 500")

	assert.Contains(t, out.String(), "✓ Campaign 'Chippy' paused")
	assert.Contains(t, out.String(), "⚠ Cancelled")
	assert.Contains(t, out.String(), "ℹ Fetching")
	assert.Contains(t, errw.String(), "✗ API Error")
	assert.Contains(t, errw.String(), "Status code: 500")
	assert.NotContains(t, out.String(), "\x1b[", "buffers are not terminals")
}

func TestResultPanel(t *testing.T) {
	t.Parallel()

	o, out, _ := newBuffered(FormatTable)
	o.ResultPanel("Budget Updated", F("Campaign", "Chippy"), F("Daily Budget", "50.00 USD"))

	s := out.String()
	assert.Contains(t, s, "Budget Updated")
	assert.Contains(t, s, "Campaign: Chippy")
	assert.Contains(t, s, "Daily Budget: 50.00 USD")
}

func TestColumnsLabels(t *testing.T) {
	t.Parallel()

	cols := Columns([]string{"id", "serving_status", "daily_budget"}, map[string]string{"id": "ID", "serving_status": "Serving"})
	assert.Equal(t, []Column{
		{Key: "id", Label: "ID"},
		{Key: "serving_status", Label: "Serving"},
		{Key: "daily_budget", Label: "Daily Budget"},
	}, cols)
}

func TestDataFormats(t *testing.T) {
	t.Parallel()

	cols := Columns([]string{"id", "name", "status"}, map[string]string{"id": "ID"})
	records := []Record{
		{"id": int64(1), "name": "Chippy - US - Generic - EM", "status": "ENABLED"},
		{"id": int64(22), "name": "Other", "status": nil},
	}

	t.Run("table", func(t *testing.T) {
		o, out, _ := newBuffered(FormatTable)
		require.NoError(t, o.Data("Campaigns (2 all)", cols, records))
		lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
		require.Len(t, lines, 5)
		assert.Equal(t, "Campaigns (2 all)", lines[0])
		assert.Contains(t, lines[1], "ID")
		assert.Contains(t, lines[1], "|")
		assert.True(t, strings.HasPrefix(lines[2], "---"))
		assert.Contains(t, lines[3], "ENABLED")
		assert.Contains(t, lines[4], "-")
	})

	t.Run("json", func(t *testing.T) {
		o, out, _ := newBuffered(FormatJSON)
		require.NoError(t, o.Data("", cols, records))
		var got []map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "Other", got[1]["name"])
	})

	t.Run("json empty is an array", func(t *testing.T) {
		o, out, _ := newBuffered(FormatJSON)
		require.NoError(t, o.Data("", cols, nil))
		assert.Equal(t, "[]\n", out.String())
	})

	t.Run("csv", func(t *testing.T) {
		o, out, _ := newBuffered(FormatCSV)
		require.NoError(t, o.Data("", cols, records))
		assert.Equal(t, "id,name,status\n1,Chippy - US - Generic - EM,ENABLED\n22,Other,\n", out.String())
	})
}

func TestTableAlignsColumns(t *testing.T) {
	t.Parallel()

	tbl := NewTable("", "A", "Long header")
	tbl.AddRow("wide cell value", "x")
	tbl.AddDivider()
	tbl.AddRow("y", "z")

	o, out, _ := newBuffered(FormatTable)
	o.Table(tbl)
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, len(lines[0]), len(lines[2]))
	assert.Contains(t, lines[3], "·")
}

func TestSaveRecords(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cols := Columns([]string{"keyword", "spend"}, nil)
	spend := decimal.RequireFromString("12.5")
	records := []Record{{"keyword": "chippy", "spend": &spend}}

	csvPath := filepath.Join(dir, "out.csv")
	require.NoError(t, SaveRecords(csvPath, cols, records))
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "keyword,spend\nchippy,12.5\n", string(data))

	jsonPath := filepath.Join(dir, "out.JSON")
	require.NoError(t, SaveRecords(jsonPath, cols, records))
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"keyword": "chippy"`)

	err = SaveRecords(filepath.Join(dir, "out.xlsx"), cols, records)
	var unsupported *UnsupportedFileError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, ".xlsx", unsupported.Suffix)
}

func TestFormatting(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", Number(0))
	assert.Equal(t, "999", Number(999))
	assert.Equal(t, "1,000", Number(1000))
	assert.Equal(t, "-1,234,567", Number(-1234567))

	r := decimal.RequireFromString("0.12345")
	assert.Equal(t, "12.35%", Percent(&r))
	assert.Equal(t, "-", Percent(nil))
	assert.Equal(t, "5.0%", PercentFloat(0.05, 1))

	amt := decimal.RequireFromString("3")
	assert.Equal(t, "3.00 USD", Amount(&amt, "USD"))
	assert.Equal(t, "-", Amount(nil, "USD"))

	assert.Equal(t, "-", Cell(nil))
	assert.Equal(t, "-", Cell(""))
	assert.Equal(t, "1.5", Cell(1.5))
}

func TestMessagesMoveToStderrForMachineFormats(t *testing.T) {
	t.Parallel()

	o, out, errw := newBuffered(FormatJSON)
	o.Info("Retrieved %d records", 3)
	require.NoError(t, o.JSON(map[string]int{"n": 3}))

	assert.Contains(t, errw.String(), "ℹ Retrieved 3 records")
	var decoded map[string]int
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, 3, decoded["n"])
}
