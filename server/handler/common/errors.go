package common

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/indieinfra/ingest/server/resp"
	"github.com/indieinfra/ingest/server/util"
	"github.com/indieinfra/ingest/storage/journal"
)

// LogAndWriteError logs an error with request context and maps known conditions to client responses.
func LogAndWriteError(w http.ResponseWriter, r *http.Request, op string, err error) {
	rl := util.FromContext(r.Context())
	if rl == nil {
		rl = util.WithRequest(log.Default(), r, "")
	}
	rl.Errorf("%s failed: %v", op, err)

	// Map known errors to user-friendly responses.
	switch {
	case errors.Is(err, journal.ErrNotFound):
		resp.WriteNotFound(w, "not found")
	default:
		resp.WriteInternalServerError(w, fmt.Sprintf("%s failed", op))
	}
}
