package store

import (
	"context"

	"github.com/i474232898/weather-history/internal/weather"
)

// PostgresOpener returns a weather.StoreOpener that opens a fresh connection
// pool per batch and closes it on release.
func PostgresOpener(cfg Config) weather.StoreOpener {
	return func(ctx context.Context) (weather.Store, func() error, error) {
		st, err := OpenPostgres(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	}
}

// MemoryOpener hands out the same MemoryStore to every batch.
func MemoryOpener(m *MemoryStore) weather.StoreOpener {
	return func(context.Context) (weather.Store, func() error, error) {
		return m, func() error { return nil }, nil
	}
}
