package differ

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"treesync/internal/model"
)

func TestComparators(t *testing.T) {
	dir := model.NewDirectory(1, "./d", t0)
	file := func(size int64, mod time.Time) model.Entry { return model.NewFile(1, dir, "f", mod, size) }
	later := t0.Add(time.Hour)

	tests := []struct {
		name string
		cmp  Comparator
		a, b model.Entry
		want bool
	}{
		{name: "size-and-time newer and resized", cmp: SizeAndTime{}, a: file(2, later), b: file(1, t0), want: true},
		{name: "size-and-time same size", cmp: SizeAndTime{}, a: file(1, later), b: file(1, t0), want: false},
		{name: "size-and-time older", cmp: SizeAndTime{}, a: file(2, t0), b: file(1, later), want: false},
		{name: "time newer", cmp: TimeOnly{}, a: file(1, later), b: file(1, t0), want: true},
		{name: "time equal", cmp: TimeOnly{}, a: file(1, t0), b: file(2, t0), want: false},
		{name: "size equal", cmp: SizeOnly{}, a: file(1, later), b: file(1, t0), want: false},
		{name: "size later mtime", cmp: SizeOnly{}, a: file(1, later), b: file(2, t0), want: true},
		{name: "size equal mtime larger", cmp: SizeOnly{}, a: file(3, t0), b: file(2, t0), want: true},
		{name: "size equal mtime smaller", cmp: SizeOnly{}, a: file(2, t0), b: file(3, t0), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.cmp.Newer(tt.a, tt.b))
			if tt.want {
				require.False(t, tt.cmp.Newer(tt.b, tt.a), "newer must be exclusive")
			}
		})
	}
}

func TestComparatorByName(t *testing.T) {
	tests := []struct {
		name    string
		want    Comparator
		wantErr bool
	}{
		{name: "", want: SizeAndTime{}},
		{name: "size-and-time", want: SizeAndTime{}},
		{name: "TIME", want: TimeOnly{}},
		{name: "size", want: SizeOnly{}},
		{name: "hash", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComparatorByName(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
