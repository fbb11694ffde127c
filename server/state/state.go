package state

import (
	"github.com/indieinfra/ingest/config"
	"github.com/indieinfra/ingest/ingest"
	"github.com/indieinfra/ingest/server/util"
	"github.com/indieinfra/ingest/storage/journal"
	"github.com/indieinfra/ingest/storage/sink"
)

type IngestState struct {
	Cfg     *config.Config
	Logger  util.Logger
	Sink    sink.Sink
	Journal journal.Store
	Images  *ingest.Uploader
	Videos  *ingest.Uploader
}

// New wires one uploader per media kind onto the shared sink.
func New(cfg *config.Config, logger util.Logger, dest sink.Sink, store journal.Store) *IngestState {
	opts := ingest.Options{
		FetchTimeout: cfg.Processing.FetchTimeout,
		Workers:      cfg.Processing.Concurrency,
	}

	return &IngestState{
		Cfg:     cfg,
		Logger:  logger,
		Sink:    dest,
		Journal: store,
		Images:  ingest.NewUploader(ingest.KindImage, dest, opts),
		Videos:  ingest.NewUploader(ingest.KindVideo, dest, opts),
	}
}

func (st *IngestState) Uploader(kind ingest.Kind) *ingest.Uploader {
	if kind == ingest.KindImage {
		return st.Images
	}
	return st.Videos
}
