// Package journal keeps an append-only record of batch outcomes per job.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound indicates that no entries exist for a job.
var ErrNotFound = errors.New("journal entry not found")

// Entry is the recorded outcome of one batch within a job.
type Entry struct {
	JobID     string    `json:"job_id"`
	Kind      string    `json:"kind"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Details   []string  `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

type Store interface {
	Record(ctx context.Context, e *Entry) error
	List(ctx context.Context, jobID string) ([]*Entry, error)
}

func encodeDetails(details []string) (string, error) {
	if details == nil {
		details = []string{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeDetails(raw string) ([]string, error) {
	var details []string
	if err := json.Unmarshal([]byte(raw), &details); err != nil {
		return nil, err
	}
	return details, nil
}
