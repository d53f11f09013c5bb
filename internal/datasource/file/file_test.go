package file

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLocalOpen covers success, a missing file and a canceled context.
func TestLocalOpen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	existing := filepath.Join(dir, "march.txt")
	require.NoError(t, os.WriteFile(existing, []byte("EMPRESA\n"), 0o644))

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	cases := []struct {
		name      string
		path      string
		ctx       context.Context
		wantErrIs error
		want      string
	}{
		{name: "reads_content", path: existing, ctx: context.Background(), want: "EMPRESA\n"},
		{name: "missing_file", path: filepath.Join(dir, "nope.txt"), ctx: context.Background(), wantErrIs: os.ErrNotExist},
		{name: "canceled_context", path: existing, ctx: canceled, wantErrIs: context.Canceled},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			l := NewLocal(tc.path)
			assert.Equal(t, tc.path, l.Path())

			rc, err := l.Open(tc.ctx)
			if tc.wantErrIs != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.wantErrIs), "got %v", err)
				assert.Nil(t, rc)
				return
			}
			require.NoError(t, err)
			defer rc.Close()
			b, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(b))
		})
	}
}

func TestReadList(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "inputs.txt")
	content := "# March exports\n\nexports/a.txt\n  exports/b.txt  \n#exports/skip.txt\nhttps://host/c.txt\n"
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))

	got, err := ReadList(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"exports/a.txt", "exports/b.txt", "https://host/c.txt"}, got)
}

func TestReadList_Missing(t *testing.T) {
	t.Parallel()

	_, err := ReadList(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
