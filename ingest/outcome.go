package ingest

import (
	"errors"
	"fmt"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ErrorKind classifies a per-item failure.
type ErrorKind string

const (
	ErrRetrieval    ErrorKind = "retrieval"
	ErrDecode       ErrorKind = "decode"
	ErrMalformed    ErrorKind = "malformed"
	ErrTransmission ErrorKind = "transmission"
	ErrUnexpected   ErrorKind = "unexpected"
)

// ItemError is a failure confined to a single descriptor.
type ItemError struct {
	Kind ErrorKind
	Name string
	Err  error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s error for %s: %v", e.Kind, e.Name, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

func itemError(kind ErrorKind, name string, err error) *ItemError {
	return &ItemError{Kind: kind, Name: name, Err: err}
}

// classify turns any error into an ItemError, treating unknown causes as unexpected.
func classify(name string, err error) *ItemError {
	var ie *ItemError
	if errors.As(err, &ie) {
		return ie
	}
	return itemError(ErrUnexpected, name, err)
}

// ItemResult is the tagged record for one processed descriptor.
type ItemResult struct {
	Index int
	Name  string
	Err   *ItemError
}

func (r ItemResult) OK() bool {
	return r.Err == nil
}

// Line renders the result the way it appears in an outcome's details.
func (r ItemResult) Line(kind Kind) string {
	if r.Err == nil {
		return fmt.Sprintf("Successfully uploaded %s", r.Name)
	}

	switch r.Err.Kind {
	case ErrRetrieval:
		return fmt.Sprintf("Error downloading %s from URL for %s: %v", kind, r.Name, r.Err.Err)
	case ErrDecode:
		return fmt.Sprintf("Error decoding base64 for %s: %v", r.Name, r.Err.Err)
	case ErrTransmission:
		return fmt.Sprintf("Error uploading %s to processing server: %v", r.Name, r.Err.Err)
	default:
		return fmt.Sprintf("Unexpected error uploading %s: %v", r.Name, r.Err.Err)
	}
}

// Outcome is the single aggregated result of a batch.
type Outcome struct {
	Status  Status       `json:"status"`
	Message string       `json:"message"`
	Details []string     `json:"details"`
	Items   []ItemResult `json:"-"`
}

func (o *Outcome) Failed() bool {
	return o.Status == StatusError
}

// Failures returns the failed items in input order.
func (o *Outcome) Failures() []ItemResult {
	var out []ItemResult
	for _, r := range o.Items {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

func emptyOutcome(kind Kind) *Outcome {
	return &Outcome{
		Status:  StatusSuccess,
		Message: fmt.Sprintf("No %s to upload", kind.plural()),
		Details: []string{},
	}
}

// aggregate groups success lines ahead of error lines, each group in input order.
func aggregate(kind Kind, results []ItemResult) *Outcome {
	successes := make([]string, 0, len(results))
	var failures []string

	for _, r := range results {
		if r.OK() {
			successes = append(successes, r.Line(kind))
		} else {
			failures = append(failures, r.Line(kind))
		}
	}

	if len(failures) > 0 {
		return &Outcome{
			Status:  StatusError,
			Message: fmt.Sprintf("Some %s failed to upload", kind.plural()),
			Details: append(successes, failures...),
			Items:   results,
		}
	}

	return &Outcome{
		Status:  StatusSuccess,
		Message: fmt.Sprintf("All %s uploaded successfully", kind.plural()),
		Details: successes,
		Items:   results,
	}
}
