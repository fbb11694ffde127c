package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/indieinfra/ingest/ingest"
	"github.com/indieinfra/ingest/server/resp"
	"github.com/indieinfra/ingest/server/state"
	"github.com/indieinfra/ingest/server/util"
	"github.com/indieinfra/ingest/storage/journal"
)

type RunRequest struct {
	Input map[string]any `json:"input"`
}

type RunResponse struct {
	ID     string          `json:"id"`
	Images *ingest.Outcome `json:"images,omitempty"`
	Videos *ingest.Outcome `json:"videos,omitempty"`
}

// batchOrder is images first, then videos; the first failing batch ends the job.
var batchOrder = []ingest.Kind{ingest.KindImage, ingest.KindVideo}

func HandleRun(st *state.IngestState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := uuid.NewString()

		var logger util.Logger = st.Logger
		if logger == nil {
			logger = log.Default()
		}
		rl := util.WithRequest(logger, r, jobID)
		// A started batch runs to completion even if the client goes away.
		ctx := util.ContextWithLogger(context.WithoutCancel(r.Context()), rl)

		if !util.RequireJSONContentType(w, r) {
			return
		}

		req, ok := readRunRequest(w, r, int64(st.Cfg.Server.Limits.MaxPayloadSize))
		if !ok {
			return
		}

		input, err := ingest.ValidateInput(req.Input)
		if err != nil {
			rl.Errorf("rejected input: %v", err)
			resp.WriteInvalidRequest(w, err.Error())
			return
		}

		out := RunResponse{ID: jobID}
		for _, kind := range batchOrder {
			items, present := input.Batch(kind)
			if !present {
				continue
			}

			outcome := st.Uploader(kind).Upload(ctx, items)
			record(ctx, st.Journal, jobID, kind, outcome)

			if outcome.Failed() {
				rl.Errorf("%s batch failed: %s", kind, outcome.Message)
				resp.WriteJobError(w, outcome.Message, outcome.Details)
				return
			}

			if kind == ingest.KindImage {
				out.Images = outcome
			} else {
				out.Videos = outcome
			}
		}

		rl.Infof("job complete")
		resp.WriteOK(w, out)
	}
}

func readRunRequest(w http.ResponseWriter, r *http.Request, limit int64) (*RunRequest, bool) {
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			resp.WriteRequestTooLarge(w, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return nil, false
		}
		resp.WriteInvalidRequest(w, fmt.Sprintf("invalid JSON body: %v", err))
		return nil, false
	}

	return &req, true
}

// record journals a batch outcome; failures are logged and never alter the response.
func record(ctx context.Context, store journal.Store, jobID string, kind ingest.Kind, outcome *ingest.Outcome) {
	if store == nil {
		return
	}

	err := store.Record(ctx, &journal.Entry{
		JobID:   jobID,
		Kind:    string(kind),
		Status:  string(outcome.Status),
		Message: outcome.Message,
		Details: outcome.Details,
	})
	if err != nil {
		util.LoggerOrDefault(ctx).Errorf("failed to journal %s outcome: %v", kind, err)
	}
}
