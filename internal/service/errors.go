package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pocket-crm/analytics-api/internal/repository"
)

// Report service errors
var (
	// ErrFetchAborted is returned when a record fetch was cancelled or timed out
	ErrFetchAborted = errors.New("record fetch aborted")

	// ErrFetchFailed is returned when the record store failed to answer a fetch
	ErrFetchFailed = errors.New("record fetch failed")

	// ErrUnknownReport is returned when a report name is not one of the known reports
	ErrUnknownReport = errors.New("unknown report")

	// ErrCampaignNotFound is returned when a campaign id matches no campaign
	ErrCampaignNotFound = errors.New("campaign not found")
)

// FetchError reports which input of which report could not be read.
// It matches both its kind (ErrFetchAborted or ErrFetchFailed) and the underlying cause.
type FetchError struct {
	Report string
	Entity repository.Entity
	Kind   error
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s report: %v: %s: %v", e.Report, e.Kind, e.Entity, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func newFetchError(report string, entity repository.Entity, err error) *FetchError {
	kind := ErrFetchFailed
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		kind = ErrFetchAborted
	}
	return &FetchError{Report: report, Entity: entity, Kind: kind, Err: err}
}
