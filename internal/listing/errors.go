package listing

import (
	"errors"
	"fmt"
)

//ErrMalformedListing matches every *MalformedListingError with errors.Is.
var ErrMalformedListing = errors.New("malformed listing")

//MalformedListingError reports a data row that cannot be tokenized.
//It aborts the parse of the whole side.
type MalformedListingError struct {
	Line   int // 1-based
	Row    string
	Reason string
}

func (e *MalformedListingError) Error() string {
	return fmt.Sprintf("malformed listing at line %d: %s: %q", e.Line, e.Reason, e.Row)
}

func (e *MalformedListingError) Is(target error) bool {
	return target == ErrMalformedListing
}
