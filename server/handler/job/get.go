package job

import (
	"net/http"

	"github.com/indieinfra/ingest/server/handler/common"
	"github.com/indieinfra/ingest/server/resp"
	"github.com/indieinfra/ingest/server/state"
	"github.com/indieinfra/ingest/storage/journal"
)

type JobResponse struct {
	ID      string           `json:"id"`
	Entries []*journal.Entry `json:"entries"`
}

func HandleGet(st *state.IngestState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == "" {
			resp.WriteInvalidRequest(w, "job id is required")
			return
		}

		entries, err := st.Journal.List(r.Context(), id)
		if err != nil {
			common.LogAndWriteError(w, r, "get job", err)
			return
		}

		resp.WriteOK(w, JobResponse{ID: id, Entries: entries})
	}
}
