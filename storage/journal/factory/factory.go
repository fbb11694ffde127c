package factory

import (
	"fmt"
	"sync"

	"github.com/indieinfra/ingest/config"
	"github.com/indieinfra/ingest/storage/journal"
)

// Factory builds a journal store for the provided journal config.
type Factory func(*config.Journal) (journal.Store, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register adds or replaces a journal factory for the given strategy name.
func Register(strategy string, factory Factory) {
	mu.Lock()
	registry[strategy] = factory
	mu.Unlock()
}

// Get retrieves a factory for the given strategy.
func Get(strategy string) (Factory, bool) {
	mu.RLock()
	f, ok := registry[strategy]
	mu.RUnlock()
	return f, ok
}

// Create builds a journal store using the registered factory for the configured strategy.
func Create(cfg *config.Journal) (journal.Store, error) {
	f, ok := Get(cfg.Strategy)
	if !ok {
		return nil, fmt.Errorf("unknown journal strategy %q", cfg.Strategy)
	}
	return f(cfg)
}

func init() {
	Register("noop", func(cfg *config.Journal) (journal.Store, error) {
		return &journal.NoopStore{}, nil
	})

	Register("sql", func(cfg *config.Journal) (journal.Store, error) {
		return journal.NewSQLStore(cfg.SQL)
	})

	Register("d1", func(cfg *config.Journal) (journal.Store, error) {
		return journal.NewD1Store(cfg.D1)
	})
}
