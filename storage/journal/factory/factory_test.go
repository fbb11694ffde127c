package factory

import (
	"context"
	"testing"

	"github.com/indieinfra/ingest/config"
	"github.com/indieinfra/ingest/storage/journal"
)

type fakeStore struct{}

func (fakeStore) Record(context.Context, *journal.Entry) error { return nil }
func (fakeStore) List(context.Context, string) ([]*journal.Entry, error) {
	return nil, journal.ErrNotFound
}

func TestRegisterAndGet(t *testing.T) {
	Register("fake", func(cfg *config.Journal) (journal.Store, error) {
		return fakeStore{}, nil
	})

	factory, ok := Get("fake")
	if !ok {
		t.Fatalf("expected factory to be registered")
	}

	store, err := factory(&config.Journal{})
	if err != nil {
		t.Fatalf("factory returned error: %v", err)
	}
	if _, ok := store.(fakeStore); !ok {
		t.Fatalf("unexpected store type: %T", store)
	}
}

func TestCreateUnknownStrategy(t *testing.T) {
	if _, err := Create(&config.Journal{Strategy: "missing"}); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}

func TestCreateNoop(t *testing.T) {
	store, err := Create(&config.Journal{Strategy: "noop"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.(*journal.NoopStore); !ok {
		t.Fatalf("expected noop store, got %T", store)
	}
}

func TestCreateSQLWithoutBlock(t *testing.T) {
	if _, err := Create(&config.Journal{Strategy: "sql"}); err == nil {
		t.Fatalf("expected error when sql block is missing")
	}
}
