package database

import (
	"context"
	"testing"

	"field_study_ops/internal/domain/reminder"
	"field_study_ops/internal/infra/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyRecordStore_RoundTrip(t *testing.T) {
	backends := map[string]reminder.PropertyStore{
		"memory": newMemoryPropertyStore(),
		"sqlite": newSQLiteStore(t),
	}

	for name, props := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := NewPropertyRecordStore(props, "", logger.Discard())

			empty, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, empty)

			want := reminder.Records{"2026-03-02": "evt-a", "2026-03-09": "evt-b"}
			require.NoError(t, store.Save(ctx, want))

			got, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			raw, ok, err := props.GetProperty(ctx, DefaultRecordsKey)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.JSONEq(t, `{"2026-03-02":"evt-a","2026-03-09":"evt-b"}`, raw)
		})
	}
}

func TestPropertyRecordStore_CorruptValue(t *testing.T) {
	ctx := context.Background()
	props := newMemoryPropertyStore()
	require.NoError(t, props.SetProperty(ctx, "custom", "{not json"))

	store := NewPropertyRecordStore(props, "custom", logger.Discard())
	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	require.NoError(t, props.SetProperty(ctx, "custom", "null"))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestPropertyRecordStore_SaveNil(t *testing.T) {
	ctx := context.Background()
	props := newMemoryPropertyStore()
	store := NewPropertyRecordStore(props, "", logger.Discard())

	require.NoError(t, store.Save(ctx, nil))
	raw, _, _ := props.GetProperty(ctx, DefaultRecordsKey)
	assert.Equal(t, "{}", raw)
}
