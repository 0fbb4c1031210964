//Package plan turns a classification into an ordered synchronization plan.
//
//For every directory group the directory-level operation comes before the file operations of
//that directory, so a mkdir always precedes the copies that fill it.
package plan

import (
	"errors"
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"treesync/internal/differ"
	"treesync/internal/model"
)

var (
	ErrNilClassification = errors.New("plan: classification must not be nil")
	ErrNilWriter         = errors.New("plan: writer must not be nil")
)

//Emit writes the plan of c into w: a header, one section per category, then the total.
func Emit(c *differ.Classification, policy Policy, target Target, w Writer) (Summary, error) {
	if c == nil {
		return Summary{}, ErrNilClassification
	}
	if w == nil {
		return Summary{}, ErrNilWriter
	}
	if err := policy.Validate(); err != nil {
		return Summary{}, err
	}
	if err := target.Validate(); err != nil {
		return Summary{}, err
	}
	target = target.normalized()

	e := &emitter{policy: policy, target: target, w: w}
	if err := w.Header(Header{Target: target}); err != nil {
		return Summary{}, fmt.Errorf("cannot write header: %w", err)
	}

	var total Summary
	for _, cat := range model.Categories {
		s, err := e.section(cat, c.Bucket(cat))
		if err != nil {
			return Summary{}, fmt.Errorf("cannot write section %s: %w", cat, err)
		}
		total.add(s)
	}

	if err := w.End(total); err != nil {
		return Summary{}, fmt.Errorf("cannot write summary: %w", err)
	}
	return total, nil
}

//Build emits the plan into a Recorder and returns it.
func Build(c *differ.Classification, policy Policy, target Target) (*Plan, error) {
	rec := NewRecorder()
	if _, err := Emit(c, policy, target, rec); err != nil {
		return nil, err
	}
	return rec.Plan(), nil
}

type emitter struct {
	policy Policy
	target Target
	w      Writer
	seq    uint64
}

func (e *emitter) section(cat model.Category, bucket *differ.Bucket) (Summary, error) {
	dirAction := e.policy.DirectoryAction(cat)
	fileAction := e.policy.FileAction(cat)
	if err := e.w.BeginSection(Section{Category: cat, DirectoryAction: dirAction, FileAction: fileAction}); err != nil {
		return Summary{}, err
	}

	groups := bucket.Groups()
	deleted := mapset.NewThreadUnsafeSet[string]()
	summary := Summary{Directories: len(groups)}

	for i, g := range groups {
		marker := DirectoryMarker{Category: cat, Directory: g.Directory, Missing: g.Missing, Index: i + 1, Total: len(groups)}
		if err := e.w.Directory(marker); err != nil {
			return Summary{}, err
		}

		if g.Missing && dirAction != model.ActionNone {
			if err := e.operation(cat, g.Directory.Path, g.Directory, dirAction); err != nil {
				return Summary{}, err
			}
			summary.Operations++
			if dirAction == model.ActionDelete && e.policy.PruneDeletes {
				deleted.Add(g.Directory.Path)
			}
		}

		for _, f := range g.Files {
			if err := e.w.File(FileMarker{Category: cat, File: f, Index: i + 1, Total: len(groups)}); err != nil {
				return Summary{}, err
			}
			summary.Files++
			summary.Bytes += f.Size

			if fileAction == model.ActionNone {
				continue
			}
			if fileAction == model.ActionDelete && underAny(deleted, f.Path) {
				continue
			}
			if err := e.operation(cat, g.Directory.Path, f, fileAction); err != nil {
				return Summary{}, err
			}
			summary.Operations++
		}
	}

	if err := e.w.EndSection(SectionSummary{Category: cat, Summary: summary}); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

func (e *emitter) operation(cat model.Category, dir string, entry model.Entry, action model.Action) error {
	e.seq++
	return e.w.Operation(model.Operation{
		Seq:       e.seq,
		Category:  cat,
		Directory: dir,
		Entry:     entry,
		Action:    action,
		Direction: cat.Destination(action),
		Locality:  e.target.Locality,
	})
}

//underAny reports whether p lies below one of the directory paths in dirs.
func underAny(dirs mapset.Set[string], p string) bool {
	if dirs.Cardinality() == 0 {
		return false
	}
	for i := strings.LastIndex(p, "/"); i > 0; i = strings.LastIndex(p, "/") {
		p = p[:i]
		if dirs.Contains(p) {
			return true
		}
	}
	return false
}
