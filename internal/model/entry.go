package model

import (
	"path"
	"strings"
	"time"
)

//RootID is the parent id of every directory entry: directories are not nested in a tree.
const RootID = 0

//EntryKind distinguishes directory entries from file entries.
type EntryKind string

const (
	KindDirectory EntryKind = "directory"
	KindFile      EntryKind = "file"
)

//Entry is one filesystem object parsed from a listing of one side.
type Entry struct {
	ID        int       `json:"id" yaml:"id"`
	ParentID  int       `json:"parentId" yaml:"parentId"`
	Kind      EntryKind `json:"kind" yaml:"kind"`
	Path      string    `json:"path" yaml:"path"`
	Name      string    `json:"name" yaml:"name"`
	Extension string    `json:"extension,omitempty" yaml:"extension,omitempty"`
	Hidden    bool      `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	ModTime   time.Time `json:"modTime" yaml:"modTime"`
	Size      int64     `json:"size" yaml:"size"` // in bytes, -1 for directories
}

//NewDirectory creates a directory entry from a listing header path.
func NewDirectory(id int, dirPath string, modTime time.Time) Entry {
	e := newEntry(id, RootID, KindDirectory, dirPath, modTime)
	e.Size = -1
	return e
}

//NewFile creates a file entry owned by the given directory.
func NewFile(id int, parent Entry, name string, modTime time.Time, size int64) Entry {
	e := newEntry(id, parent.ID, KindFile, parent.Path+"/"+name, modTime)
	e.Size = size
	return e
}

func newEntry(id, parentID int, kind EntryKind, fullPath string, modTime time.Time) Entry {
	p := NormalizePath(fullPath)
	name := p
	if i := strings.LastIndex(p, "/"); i >= 0 {
		name = p[i+1:]
	}
	return Entry{
		ID:        id,
		ParentID:  parentID,
		Kind:      kind,
		Path:      p,
		Name:      name,
		Extension: strings.TrimPrefix(path.Ext(name), "."),
		Hidden:    strings.HasPrefix(name, ".") && name != "." && name != "..",
		ModTime:   modTime,
	}
}

func (e Entry) IsDir() bool {
	return e.Kind == KindDirectory
}

//Dir returns the path of the directory containing the entry.
func (e Entry) Dir() string {
	if i := strings.LastIndex(e.Path, "/"); i >= 0 {
		return e.Path[:i]
	}
	return ""
}

//RelPath returns the path with the leading "." of the listing root removed, e.g. "./a/x" -> "/a/x".
func (e Entry) RelPath() string {
	return strings.TrimPrefix(e.Path, ".")
}

//NormalizePath converts Windows separators to slashes.
func NormalizePath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
