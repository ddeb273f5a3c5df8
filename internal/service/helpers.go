package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/modbuild/pulse/internal/contract"
	"github.com/modbuild/pulse/internal/repository"
)

var errInvalidRequest = errors.New("invalid request")

func invalid(err error) error {
	return fmt.Errorf("%w: %v", errInvalidRequest, err)
}

// errorCode classifies a scorer failure. Anything that is not a bad request
// or a missing record is a failed fetch.
func errorCode(err error) contract.ErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, errInvalidRequest):
		return contract.ErrInvalidRequest
	case errors.Is(err, repository.ErrNotFound):
		return contract.ErrNotFound
	}
	return contract.ErrFetchFailed
}

// failWith pairs a default metric with err, classifying it for callers.
func failWith[T any](fallback T, err error) contract.Result[T] {
	return contract.Fail(fallback, errorCode(err), err)
}

// values copies repository records into the value slices the scorers take.
func values[T any](ptrs []*T) []T {
	out := make([]T, 0, len(ptrs))
	for _, p := range ptrs {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

// dayBounds returns the first and last instant of t's calendar day in t's location.
func dayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}
