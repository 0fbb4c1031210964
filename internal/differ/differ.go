//Package differ classifies the directories and files of two trees.
//
//The comparison runs in two asymmetric passes. The first walks the left directories: unmatched
//ones are only in left, matched ones get their files compared by name in both directions.
//The second walks the right directories and collects those absent from the left.
//Nothing here fails on well-formed trees: "not found" is a classification, not an error.
package differ

import (
	"errors"

	mapset "github.com/deckarep/golang-set/v2"

	"treesync/internal/model"
)

var ErrNilTree = errors.New("differ: tree must not be nil")

type options struct {
	comparator Comparator
}

type Option func(*options)

//WithComparator replaces the default SizeAndTime comparator.
func WithComparator(c Comparator) Option {
	return func(o *options) {
		if c != nil {
			o.comparator = c
		}
	}
}

//Diff compares left with right. Both trees are only read.
func Diff(left, right *model.Tree, opts ...Option) (*Classification, error) {
	if left == nil || right == nil {
		return nil, ErrNilTree
	}
	o := options{comparator: SizeAndTime{}}
	for _, opt := range opts {
		opt(&o)
	}

	d := &differ{
		left:    left,
		right:   right,
		cmp:     o.comparator,
		result:  newClassification(),
		matched: mapset.NewThreadUnsafeSet[int](),
	}
	d.leftToRight()
	d.rightToLeft()
	return d.result, nil
}

type differ struct {
	left, right *model.Tree
	cmp         Comparator
	result      *Classification
	matched     mapset.Set[int] // ids of right directories whose files were already walked
}

func (d *differ) leftToRight() {
	for _, leftDir := range d.left.Directories {
		rightDir, found := d.right.DirectoryByPath(leftDir.Path)
		if !found {
			d.result.OnlyInLeft.addMissing(leftDir, d.left.FilesOf(leftDir.ID))
			continue
		}

		for _, lf := range d.left.FilesOf(leftDir.ID) {
			rf, ok := d.right.FileByName(rightDir.ID, lf.Name)
			switch {
			case !ok:
				d.result.OnlyInLeft.addFile(leftDir, lf)
			case d.cmp.Newer(lf, rf):
				d.result.NewerInLeft.addFile(leftDir, lf)
			}
		}

		if !d.matched.Add(rightDir.ID) {
			continue
		}
		for _, rf := range d.right.FilesOf(rightDir.ID) {
			lf, ok := d.left.FileByName(leftDir.ID, rf.Name)
			switch {
			case !ok:
				d.result.OnlyInRight.addFile(rightDir, rf)
			case d.cmp.Newer(rf, lf):
				d.result.NewerInRight.addFile(rightDir, rf)
			}
		}
	}
}

func (d *differ) rightToLeft() {
	for _, rightDir := range d.right.Directories {
		if _, found := d.left.DirectoryByPath(rightDir.Path); !found {
			d.result.OnlyInRight.addMissing(rightDir, d.right.FilesOf(rightDir.ID))
		}
	}
}
