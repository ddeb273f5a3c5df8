package contract

import "fmt"

type ErrorCode string

const (
	ErrFetchFailed    ErrorCode = "FETCH_FAILED"
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrNotFound       ErrorCode = "NOT_FOUND"
)

// ResultError describes why a metric fell back to its default value.
type ResultError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Result is the {data, error} envelope every metric is delivered in. When
// Error is set, Data still holds a usable default metric.
type Result[T any] struct {
	Data  T            `json:"data"`
	Error *ResultError `json:"error"`
}

// OK wraps a successfully computed metric.
func OK[T any](data T) Result[T] {
	return Result[T]{Data: data}
}

// Fail wraps a default metric together with the error that forced it.
func Fail[T any](fallback T, code ErrorCode, err error) Result[T] {
	return Result[T]{Data: fallback, Error: &ResultError{Code: code, Message: err.Error()}}
}

// Err returns the envelope's error as a Go error, or nil.
func (r Result[T]) Err() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}
