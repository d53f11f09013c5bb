package parser

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeclock/internal/punch"
)

// mkLine builds a well-formed export line. The identifier and code are
// right-aligned inside the 33-column identifier field.
func mkLine(date, hhmm, id string, code punch.TypeCode, msg string) string {
	return "0000000001" + date + hhmm + fmt.Sprintf("%33s", id+string(code)) + msg
}

func TestLayout_ContiguousAndOrdered(t *testing.T) {
	t.Parallel()

	prevEnd := 0
	for _, f := range Layout {
		assert.Equalf(t, prevEnd, f.Start, "field %s must start where the previous one ended", f.Name)
		if f.End < 0 {
			assert.Equal(t, MinWidth, f.Start, "open-ended field starts at MinWidth")
			continue
		}
		prevEnd = f.End
	}
	assert.Equal(t, 33, FieldIdentifier.Len())
	assert.Equal(t, -1, FieldMessage.Len())
}

func TestSplitIdentifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		field  string
		wantID string
		want   punch.TypeCode
		ok     bool
	}{
		{"right aligned", fmt.Sprintf("%33s", "0123456789E01O"), "0123456789", punch.Entry1, true},
		{"trailing padding", "0123456789S02O     ", "0123456789", punch.Exit2, true},
		{"code only", "D00O", "", punch.Duplicate, true},
		{"unknown code kept", "  42XYZW", "42", punch.TypeCode("XYZW"), true},
		{"too short", "  E0 ", "E0", "", false},
		{"blank", strings.Repeat(" ", 33), "", "", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			id, code, ok := SplitIdentifier(tt.field)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestParseLine_WellFormed(t *testing.T) {
	t.Parallel()

	line := mkLine("01012024", "0800", "0123456789", punch.Entry1, "  Batida manual ")
	rec, err := ParseLine(line, 2, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "0000000001", rec.Registro)
	assert.Equal(t, "0123456789", rec.Identifier)
	assert.Equal(t, punch.DateKey("01/01/2024"), rec.Date)
	assert.Equal(t, punch.NewTimeOfDay(8, 0), rec.Time)
	assert.Equal(t, punch.Entry1, rec.Code)
	assert.Equal(t, "Batida manual", rec.Message)
	assert.Equal(t, 2, rec.Line)
}

func TestParseLine_ExactlyMinWidth(t *testing.T) {
	t.Parallel()

	line := mkLine("31122023", "2359", "7", punch.Exit2, "")
	require.Len(t, line, MinWidth)

	rec, err := ParseLine(line, 5, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "7", rec.Identifier)
	assert.Equal(t, "23:59", rec.Time.String())
	assert.Empty(t, rec.Message)
}

func TestParseLine_AccentedMessageKeepsColumns(t *testing.T) {
	t.Parallel()

	line := mkLine("02012024", "1200", "555", punch.Duplicate, "Marcação duplicada")
	rec, err := ParseLine(line, 3, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "Marcação duplicada", rec.Message)
	assert.Equal(t, punch.Duplicate, rec.Code)
}

func TestParseLine_ShortLine(t *testing.T) {
	t.Parallel()

	// Narrower than MinWidth: the identifier field ends at column 46.
	const short = "0000000001010120240008000123456789E01O        "

	_, err := ParseLine(short, 7, Options{Strict: true})
	var mle *MalformedLineError
	require.True(t, errors.As(err, &mle), "want MalformedLineError, got %v", err)
	assert.Equal(t, ReasonShortLine, mle.Reason)
	assert.Equal(t, 7, mle.Line)
	assert.Equal(t, len(short), mle.Width)
	assert.Contains(t, mle.Error(), "short_line")

	// Permissive mode pads and decodes strictly by position.
	rec, err := ParseLine(short, 7, Options{Strict: false})
	require.NoError(t, err)
	assert.Equal(t, punch.DateKey("01/01/2024"), rec.Date)
	assert.Equal(t, "00:08", rec.Time.String())
	assert.Equal(t, "000123456789", rec.Identifier)
	assert.Equal(t, punch.Entry1, rec.Code)
}

func TestParseLine_BadFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		line   string
		reason string
	}{
		{"letters in date", mkLine("0A012024", "0800", "1", punch.Entry1, ""), ReasonBadDate},
		{"blank year", mkLine("0101    ", "0800", "1", punch.Entry1, ""), ReasonBadDate},
		{"letters in time", mkLine("01012024", "08h0", "1", punch.Entry1, ""), ReasonBadTime},
		{"hour out of range", mkLine("01012024", "2400", "1", punch.Entry1, ""), ReasonBadTime},
		{"minute out of range", mkLine("01012024", "0860", "1", punch.Entry1, ""), ReasonBadTime},
		{"no code", "0000000001010120240800" + strings.Repeat(" ", 33), ReasonNoCode},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseLine(tt.line, 9, DefaultOptions())
			var mle *MalformedLineError
			require.True(t, errors.As(err, &mle), "want MalformedLineError, got %v", err)
			assert.Equal(t, tt.reason, mle.Reason)
		})
	}
}

func TestParseLine_CRLF(t *testing.T) {
	t.Parallel()

	rec, err := ParseLine(mkLine("01012024", "1700", "9", punch.Exit2, "ok")+"\r", 1, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "ok", rec.Message)
}
