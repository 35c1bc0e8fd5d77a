package service

import (
	"errors"
	"fmt"
)

// ErrNotFound matches every NotFoundError with errors.Is
var ErrNotFound = errors.New("not found")

// NotFoundError reports that a symbol has no data for a dataset.
// Every other error returned by the service is an internal failure.
type NotFoundError struct {
	Symbol  string
	Dataset string
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(symbol, dataset, format string) error {
	return &NotFoundError{
		Symbol:  symbol,
		Dataset: dataset,
		Message: fmt.Sprintf(format, symbol),
	}
}
