package payment

import "context"

// Sheet is a tabular store addressed by 1-based row number and header name.
// Row 1 holds the headers.
type Sheet interface {
	Name() string
	// Reload re-reads the store so each batch sees rows added since the last one.
	Reload(ctx context.Context) error
	Headers(ctx context.Context) ([]string, error)
	// Records returns every data row (row 2 onward) keyed by header.
	Records(ctx context.Context) ([]map[string]string, error)
	// AppendColumn adds a header to the end of row 1.
	AppendColumn(ctx context.Context, header string) error
	// SetCell writes a value at the given 1-based row under the named header.
	SetCell(ctx context.Context, row int, header, value string) error
	// Save flushes pending writes.
	Save(ctx context.Context) error
}
