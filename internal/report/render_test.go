package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeclock/internal/aggregate"
	"timeclock/internal/attendance"
	"timeclock/internal/punch"
)

func line(date, hhmm, id string, code punch.TypeCode, msg string) string {
	return "0000000001" + date + hhmm + fmt.Sprintf("%33s", id+string(code)) + msg
}

// sample has: a normal day, a long lunch with overtime, a day missing
// punches and one out-of-order day.
func sample() attendance.Report {
	content := strings.Join([]string{
		"RELATORIO DE PONTO",
		line("01012024", "0800", "111", punch.Entry1, ""),
		line("01012024", "1200", "111", punch.Exit1, ""),
		line("01012024", "1205", "111", punch.Duplicate, "dup, with comma"),
		line("01012024", "1300", "111", punch.Entry2, ""),
		line("01012024", "1700", "111", punch.Exit2, ""),
		line("01012024", "0700", "222", punch.Entry1, ""),
		line("01012024", "1200", "222", punch.Exit1, ""),
		line("01012024", "1330", "222", punch.Entry2, ""),
		line("01012024", "1900", "222", punch.Exit2, ""),
		line("01012024", "0800", "333", punch.Entry1, ""),
		line("01012024", "1200", "444", punch.Entry1, ""),
		line("01012024", "0800", "444", punch.Exit1, ""),
		line("01012024", "1300", "444", punch.Entry2, ""),
		line("01012024", "1700", "444", punch.Exit2, ""),
	}, "\n")
	return attendance.ParseFile(content, attendance.DefaultConfig())
}

// -----------------------------------------------------------------------------
// Filters and highlights
// -----------------------------------------------------------------------------

func TestApply(t *testing.T) {
	t.Parallel()

	rep := sample()
	ids := func(rows []aggregate.Row) []string {
		var out []string
		for _, r := range rows {
			out = append(out, r.Identifier)
		}
		return out
	}

	assert.Equal(t, []string{"111", "222", "333", "444"}, ids(Apply(rep.Rows, FilterAll, rep.Thresholds)))
	assert.Equal(t, []string{"222", "444"}, ids(Apply(rep.Rows, FilterLunch, rep.Thresholds)))
	assert.Equal(t, []string{"222"}, ids(Apply(rep.Rows, FilterOvertime, rep.Thresholds)))
	assert.Equal(t, []string{"333"}, ids(Apply(rep.Rows, FilterMissing, rep.Thresholds)))

	// 222 works 300+330 = 630 minutes: overtime at 600 and at 550.
	th := rep.Thresholds
	th.OvertimeThresholdMinutes = 650
	assert.Empty(t, Apply(rep.Rows, FilterOvertime, th))
}

func TestFilter_LunchBoundaryIsStrict(t *testing.T) {
	t.Parallel()

	th := aggregate.DefaultThresholds()
	assert.False(t, FilterLunch.Match(aggregate.Row{LunchMinutes: 70}, th))
	assert.True(t, FilterLunch.Match(aggregate.Row{LunchMinutes: 71}, th))
	assert.False(t, FilterOvertime.Match(aggregate.Row{TotalWorkedMinutes: 600}, th))
	assert.True(t, FilterOvertime.Match(aggregate.Row{TotalWorkedMinutes: 601}, th))
}

func TestParseFilter(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Filter{"": FilterAll, "all": FilterAll, "LUNCH": FilterLunch, "overtime": FilterOvertime, " missing ": FilterMissing} {
		got, err := ParseFilter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFilter("almoco")
	assert.Error(t, err)
}

func TestHighlights(t *testing.T) {
	t.Parallel()

	rep := sample()
	h := Highlights(rep.Rows[1], rep.Thresholds)
	assert.True(t, h.Has(HighlightLunch))
	assert.True(t, h.Has(HighlightOvertime))
	assert.False(t, h.Has(HighlightMissing))

	assert.True(t, Highlights(rep.Rows[2], rep.Thresholds).Has(HighlightMissing))
	assert.True(t, Highlights(rep.Rows[3], rep.Thresholds).Has(HighlightAnomalous))
	assert.Zero(t, Highlights(rep.Rows[0], rep.Thresholds))
}

// -----------------------------------------------------------------------------
// Renderers
// -----------------------------------------------------------------------------

func TestCells(t *testing.T) {
	t.Parallel()

	rep := sample()
	assert.Equal(t,
		[]string{"111", "01/01/2024", "08:00", "12:00", "13:00", "17:00", "01:00", "08:00", "12:05: dup, with comma"},
		Cells(rep.Rows[0], "; "))
	assert.Equal(t,
		[]string{"333", "01/01/2024", "08:00", "", "", "", "00:00", "00:00", ""},
		Cells(rep.Rows[2], "; "))

	// 444 punched Exit 1 before Entry 1: the morning interval is -04:00
	// and cancels the afternoon.
	odd := Cells(rep.Rows[3], "; ")
	assert.Equal(t, "05:00", odd[6])
	assert.Equal(t, "00:00", odd[7])
	assert.Equal(t, "punches out of order", odd[8])
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample(), FilterAll))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, "12:05: dup, with comma", rows[1][8])
	assert.Equal(t, "10:30", rows[2][7])
}

func TestWriteCSV_Filtered(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample(), FilterMissing))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "333", rows[1][0])
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	rep := sample()
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, rep, FilterLunch))

	var got struct {
		Title       string `json:"title"`
		Filter      string `json:"filter"`
		Fingerprint string `json:"fingerprint"`
		Rows        []struct {
			Identifier   string   `json:"identifier"`
			LunchMinutes int      `json:"lunch_minutes"`
			Lunch        string   `json:"lunch"`
			Worked       string   `json:"worked"`
			Highlights   []string `json:"highlights"`
		} `json:"rows"`
		MissingPunchGroups []aggregate.GroupRef `json:"missing_punch_groups"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "RELATORIO DE PONTO", got.Title)
	assert.Equal(t, "lunch", got.Filter)
	assert.Equal(t, fmt.Sprintf("%016x", rep.Fingerprint()), got.Fingerprint)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "222", got.Rows[0].Identifier)
	assert.Equal(t, 90, got.Rows[0].LunchMinutes)
	assert.Equal(t, "01:30", got.Rows[0].Lunch)
	assert.Equal(t, "10:30", got.Rows[0].Worked)
	assert.Equal(t, []string{"lunch", "overtime"}, got.Rows[0].Highlights)
	assert.Len(t, got.MissingPunchGroups, 1)
}

func TestWriteTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sample(), FilterAll))
	out := buf.String()

	assert.Contains(t, out, "RELATORIO DE PONTO")
	for _, col := range Columns {
		assert.Contains(t, out, col)
	}
	assert.Contains(t, out, "10:30")
	assert.Contains(t, out, "rows: 4 shown / 4 total")
	assert.Contains(t, out, "missing punch: 1")
	assert.Contains(t, out, "out of order: 1")
}

func TestWrite_DispatchAndFormats(t *testing.T) {
	t.Parallel()

	for _, f := range []Format{FormatTable, FormatCSV, FormatJSON} {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, f, sample(), FilterAll), f)
		assert.NotEmpty(t, buf.String(), f)
	}
	assert.Error(t, Write(&bytes.Buffer{}, Format("xml"), sample(), FilterAll))

	got, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, got)
	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}
