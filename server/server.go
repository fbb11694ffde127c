package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/indieinfra/ingest/config"
	"github.com/indieinfra/ingest/server/handler/job"
	"github.com/indieinfra/ingest/server/state"
	"github.com/indieinfra/ingest/server/util"
	"github.com/indieinfra/ingest/storage/journal"
	journalfactory "github.com/indieinfra/ingest/storage/journal/factory"
	"github.com/indieinfra/ingest/storage/sink"
	sinkfactory "github.com/indieinfra/ingest/storage/sink/factory"
)

const shutdownTimeout = 10 * time.Second

// StartServer serves the job endpoints until SIGINT or SIGTERM, then drains
// in-flight requests.
func StartServer(cfg *config.Config, logger util.Logger) error {
	if logger == nil {
		logger = log.Default()
	}

	st, err := initializeState(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup(st)

	bindAddress := fmt.Sprintf("%v:%v", cfg.Server.Address, cfg.Server.Port)
	listener, err := net.Listen("tcp", bindAddress)
	if err != nil {
		return fmt.Errorf("listen on %q: %w", bindAddress, err)
	}

	srv := &http.Server{
		Handler:           newMux(st),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rl := util.ForJob(logger, "")
	errCh := make(chan error, 1)
	go func() {
		rl.Infof("serving http requests on %q", listener.Addr().String())
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	rl.Infof("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func newMux(st *state.IngestState) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("POST /run", job.HandleRun(st))
	mux.Handle("GET /jobs/{id}", job.HandleGet(st))
	return mux
}

func initializeState(cfg *config.Config, logger util.Logger) (*state.IngestState, error) {
	dest, err := initializeSink(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sink: %w", err)
	}

	store, err := initializeJournal(&cfg.Journal)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize journal: %w", err)
	}

	return state.New(cfg, logger, dest, store), nil
}

func initializeSink(cfg *config.Config) (sink.Sink, error) {
	return sinkfactory.Create(cfg)
}

func initializeJournal(cfg *config.Journal) (journal.Store, error) {
	return journalfactory.Create(cfg)
}

func cleanup(st *state.IngestState) {
	if st == nil || st.Journal == nil {
		return
	}

	if c, ok := st.Journal.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Printf("failed to close journal: %v", err)
		}
	}
}
