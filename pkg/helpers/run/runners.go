package run

import (
	"errors"
	"fmt"
)

//ErrPanic marks errors recovered from a panic that did not carry an error value.
var ErrPanic = errors.New("panic")

//WithError runs fn and turns a panic into its returned error.
func WithError(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fromPanic(p)
		}
	}()

	return fn()
}

//Stage runs fn like WithError and prefixes a failure with the stage name.
func Stage(name string, fn func() error) error {
	if err := WithError(fn); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

//AsyncWithError runs fn in a new goroutine; the channel receives exactly one result.
func AsyncWithError(fn func() error) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- WithError(fn)
	}()

	return errCh
}

func fromPanic(p any) error {
	if perr, ok := p.(error); ok {
		return perr
	}
	return fmt.Errorf("%w: %v", ErrPanic, p)
}
