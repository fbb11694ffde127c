package factory

import (
	"fmt"
	"sync"

	"github.com/indieinfra/ingest/config"
	"github.com/indieinfra/ingest/storage/sink"
	"github.com/indieinfra/ingest/storage/sink/filesystem"
	"github.com/indieinfra/ingest/storage/sink/s3"
)

// Factory builds a sink from the full configuration; the http sink needs the
// processing block rather than the sink block.
type Factory func(*config.Config) (sink.Sink, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register adds or replaces a sink factory for the given strategy name.
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

// Create builds a sink using the registered factory for the configured strategy.
func Create(cfg *config.Config) (sink.Sink, error) {
	if f, ok := Get(cfg.Sink.Strategy); ok {
		return f(cfg)
	}

	return nil, fmt.Errorf("unknown sink strategy %q", cfg.Sink.Strategy)
}

func init() {
	Register("noop", func(cfg *config.Config) (sink.Sink, error) {
		return &sink.NoopSink{}, nil
	})
	Register("http", func(cfg *config.Config) (sink.Sink, error) {
		return sink.NewHTTPSink(&cfg.Processing, nil)
	})
	Register("s3", func(cfg *config.Config) (sink.Sink, error) {
		return s3.NewS3Sink(cfg.Sink.S3)
	})
	Register("filesystem", func(cfg *config.Config) (sink.Sink, error) {
		return filesystem.NewFilesystemSink(cfg.Sink.Filesystem)
	})
}
