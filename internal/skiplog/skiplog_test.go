package skiplog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeclock/internal/parser"
)

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

// TestNew_CreatesDirFileAndHeader verifies that New creates missing parent
// directories and writes the header row immediately.
func TestNew_CreatesDirFileAndHeader(t *testing.T) {
	t.Parallel()

	// Arrange
	target := filepath.Join(t.TempDir(), "skipped", "march.skipped.csv")

	// Act
	l, closeFn, err := New(target)
	require.NoError(t, err)
	require.NoError(t, closeFn())

	// Assert
	assert.Equal(t, target, l.Path())
	rows := readAll(t, target)
	require.Len(t, rows, 1)
	assert.Equal(t, Header, rows[0])
	assert.Empty(t, l.Counts())
}

// TestAdd_WritesRowsAndCounts checks counters and CSV quoting of raw lines.
func TestAdd_WritesRowsAndCounts(t *testing.T) {
	t.Parallel()

	// Arrange
	target := filepath.Join(t.TempDir(), "skipped.csv")
	l, closeFn, err := New(target)
	require.NoError(t, err)

	wide := "0000000001" + "01012024" + "2500" + "                    123456789E01O" + "late, again"
	diags := []parser.Diagnostic{
		{Line: 3, Reason: parser.ReasonShortLine, Raw: `short, "quoted"`},
		{Line: 7, Reason: parser.ReasonBadTime, Detail: "hour 25", Raw: wide},
		{Line: 9, Reason: parser.ReasonShortLine, Raw: "tiny"},
	}

	// Act
	l.AddAll(diags)
	require.NoError(t, closeFn())

	// Assert
	rows := readAll(t, target)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"short_line", "3", "", `short, "quoted"`}, rows[1])
	assert.Equal(t, []string{"bad_time", "7", "123456789E01O", wide}, rows[2])
	assert.Equal(t, []string{"short_line", "9", "", "tiny"}, rows[3])

	assert.Equal(t, map[string]int{"short_line": 2, "bad_time": 1}, l.Counts())
	assert.Equal(t, 3, l.Total())
}

func TestCounts_ReturnsCopy(t *testing.T) {
	t.Parallel()

	l, closeFn, err := New(filepath.Join(t.TempDir(), "x.csv"))
	require.NoError(t, err)
	defer closeFn()

	l.Add(parser.Diagnostic{Line: 2, Reason: "bad_date"})
	c := l.Counts()
	c["bad_date"] = 100
	assert.Equal(t, 1, l.Counts()["bad_date"])
}

func TestNew_UnwritableDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, _, err := New(filepath.Join(blocker, "sub", "log.csv"))
	assert.Error(t, err)
}

func TestPathFor(t *testing.T) {
	t.Parallel()

	dir := filepath.Join("out", "skipped")
	tests := map[string]string{
		"exports/march.txt":                  "march.skipped.csv",
		"march":                              "march.skipped.csv",
		"https://host/exports/april.AFD.txt": "april.AFD.skipped.csv",
		"/abs/path/ponto.TXT":                "ponto.skipped.csv",
	}
	for in, want := range tests {
		assert.Equal(t, filepath.Join(dir, want), PathFor(dir, in), in)
	}
}
