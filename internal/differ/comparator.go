package differ

import (
	"fmt"
	"strings"

	"treesync/internal/model"
)

//Comparator decides whether file a, matched by name with file b on the other side, is newer than b.
//Newer(a, b) and Newer(b, a) must never both be true.
type Comparator interface {
	Newer(a, b model.Entry) bool
}

const (
	SizeAndTimeName = "size-and-time"
	TimeOnlyName    = "time"
	SizeOnlyName    = "size"
)

//SizeAndTime is the default heuristic: a strictly later mtime counts only when the sizes differ too.
//Copy and archive tools often touch mtimes without changing content; the price is that
//same-size edits are never reported.
type SizeAndTime struct{}

func (SizeAndTime) Newer(a, b model.Entry) bool {
	return a.ModTime.After(b.ModTime) && a.Size != b.Size
}

//TimeOnly reports any strictly later mtime.
type TimeOnly struct{}

func (TimeOnly) Newer(a, b model.Entry) bool {
	return a.ModTime.After(b.ModTime)
}

//SizeOnly reports any size difference. It is attributed to the side with the later mtime,
//or to the larger file when the mtimes are equal.
type SizeOnly struct{}

func (SizeOnly) Newer(a, b model.Entry) bool {
	if a.Size == b.Size {
		return false
	}
	if a.ModTime.Equal(b.ModTime) {
		return a.Size > b.Size
	}
	return a.ModTime.After(b.ModTime)
}

//ComparatorByName resolves a comparator from its configuration name. Empty means the default.
func ComparatorByName(name string) (Comparator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", SizeAndTimeName:
		return SizeAndTime{}, nil
	case TimeOnlyName:
		return TimeOnly{}, nil
	case SizeOnlyName:
		return SizeOnly{}, nil
	}
	return nil, fmt.Errorf("unknown comparator %q", name)
}
