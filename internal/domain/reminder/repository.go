// internal/domain/reminder/repository.go
package reminder

import "context"

// PropertyStore is a string key-value store holding script-style properties.
type PropertyStore interface {
	// GetProperty returns the stored value and whether it exists.
	GetProperty(ctx context.Context, key string) (string, bool, error)
	SetProperty(ctx context.Context, key, value string) error
}

// RecordStore loads and saves the date-to-event mapping.
type RecordStore interface {
	Load(ctx context.Context) (Records, error)
	Save(ctx context.Context, records Records) error
}
