package companies

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Store holds the dataset currently served by the dashboard.
type Store struct {
	loader  *Loader
	logger  *slog.Logger
	current atomic.Pointer[Dataset]
}

// NewStore builds a store that starts out with the empty dataset.
func NewStore(loader *Loader, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{loader: loader, logger: logger}
	s.current.Store(Empty())
	return s
}

// Current returns the dataset being served. It is never nil.
func (s *Store) Current(context.Context) *Dataset {
	return s.current.Load()
}

// Reload fetches the dataset again. A failed reload keeps the dataset that
// is already being served.
func (s *Store) Reload(ctx context.Context) error {
	ds, err := s.loader.Load(ctx)
	if err != nil {
		s.logger.Warn("dataset reload failed, keeping current dataset", slog.Any("error", err))
		return err
	}
	prev := s.current.Swap(ds)
	if prev.Fingerprint != ds.Fingerprint {
		s.logger.Info("dataset loaded", slog.Int("companies", len(ds.Companies)), slog.String("fingerprint", ds.Fingerprint))
	}
	return nil
}

// Watch reloads the dataset every interval until ctx is done.
func (s *Store) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.Reload(ctx)
		}
	}
}
