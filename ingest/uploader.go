package ingest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/indieinfra/ingest/server/util"
	"github.com/indieinfra/ingest/storage/sink"
)

const DefaultFetchTimeout = 120 * time.Second

type Options struct {
	// FetchTimeout bounds each remote retrieval. Zero means DefaultFetchTimeout.
	FetchTimeout time.Duration
	// Workers caps how many items are in flight. Values below 2 process the
	// batch strictly in input order.
	Workers int
	// Client overrides the HTTP client used for remote retrieval.
	Client *http.Client
}

// Uploader resolves descriptors of one kind to bytes and hands them to a sink.
type Uploader struct {
	kind    Kind
	dest    sink.Sink
	client  *http.Client
	workers int
	decode  func(string) ([]byte, error)
}

func NewUploader(kind Kind, dest sink.Sink, opts Options) *Uploader {
	client := opts.Client
	if client == nil {
		timeout := opts.FetchTimeout
		if timeout <= 0 {
			timeout = DefaultFetchTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	return &Uploader{
		kind:    kind,
		dest:    dest,
		client:  client,
		workers: workers,
		decode:  decodeEmbedded,
	}
}

func (u *Uploader) Kind() Kind {
	return u.kind
}

// Upload processes every item and never stops early: a failed item is recorded
// and the rest of the batch still runs. The outcome lists successes first,
// then failures, each in input order.
func (u *Uploader) Upload(ctx context.Context, items []Descriptor) *Outcome {
	if len(items) == 0 {
		return emptyOutcome(u.kind)
	}

	rl := util.LoggerOrDefault(ctx)
	rl.Infof("uploading %d %s(s)", len(items), u.kind)

	results := make([]ItemResult, len(items))

	var g errgroup.Group
	g.SetLimit(u.workers)
	for i := range items {
		g.Go(func() error {
			results[i] = u.process(ctx, i, items[i])
			if r := results[i]; !r.OK() {
				rl.Errorf("%s", r.Line(u.kind))
			}
			return nil
		})
	}
	_ = g.Wait()

	return aggregate(u.kind, results)
}

func (u *Uploader) process(ctx context.Context, index int, d Descriptor) (result ItemResult) {
	name := d.displayName()
	result = ItemResult{Index: index, Name: name}

	defer func() {
		if p := recover(); p != nil {
			result.Err = itemError(ErrUnexpected, name, fmt.Errorf("panic: %v", p))
		}
	}()

	obj, err := u.resolve(ctx, name, d)
	if err != nil {
		result.Err = classify(name, err)
		return result
	}

	loc, err := u.dest.Upload(ctx, obj)
	if err != nil {
		result.Err = itemError(ErrTransmission, name, err)
		return result
	}

	util.LoggerOrDefault(ctx).Infof("successfully uploaded %s %s to %s", u.kind, name, loc)
	return result
}

func (u *Uploader) resolve(ctx context.Context, name string, d Descriptor) (*sink.Object, error) {
	switch d.Payload() {
	case PayloadRemote:
		data, contentType, err := fetchRemote(ctx, u.client, d.URL)
		if err != nil {
			return nil, itemError(ErrRetrieval, name, err)
		}
		if contentType == "" {
			contentType = u.kind.DefaultContentType()
		}
		return &sink.Object{Name: d.Name, ContentType: contentType, Data: data}, nil

	case PayloadEmbedded:
		data, err := u.decode(d.Data)
		if err != nil {
			return nil, itemError(ErrDecode, name, err)
		}
		return &sink.Object{Name: d.Name, ContentType: u.kind.DefaultContentType(), Data: data}, nil

	default:
		return nil, itemError(ErrMalformed, name, fmt.Errorf("%s %s must have either 'url' or '%s' field", u.kind, name, u.kind.Field()))
	}
}
