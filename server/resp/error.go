package resp

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// JobErrorResponse carries a failed batch outcome verbatim.
type JobErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details"`
}

func WriteJobError(w http.ResponseWriter, message string, details []string) {
	if details == nil {
		details = []string{}
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)

	err := json.NewEncoder(w).Encode(JobErrorResponse{
		Error:   message,
		Details: details,
	})

	if err != nil {
		http.Error(w, fmt.Errorf("Error: %q; additionally, an error was encountered while writing error response: %w", message, err).Error(), http.StatusInternalServerError)
	}
}
