// Package datasource resolves the inputs named on the command line (paths or
// URLs) into byte streams. Exports are read whole; a Source only has to hand
// back a reader.
package datasource

import (
	"context"
	"io"
	"strings"

	"timeclock/internal/datasource/file"
	"timeclock/internal/datasource/httpds"
)

// Source opens an export for reading. The caller closes the reader.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// IsURL reports whether ref names an HTTP(S) export.
func IsURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// For returns the Source for ref: an HTTP GET through client for http(s)
// URLs, the local file otherwise. A nil client gets httpds defaults.
func For(ref string, client *httpds.Client) Source {
	if IsURL(ref) {
		if client == nil {
			client = httpds.NewClient(httpds.Config{})
		}
		return httpds.NewSource(client, ref)
	}
	return file.NewLocal(ref)
}
