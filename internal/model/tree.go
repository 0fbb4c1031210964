package model

//Tree holds every entry parsed for one side. It is built once and then only read,
//so the lookup indexes need no locking.
type Tree struct {
	Directories []Entry
	Files       []Entry

	dirsByPath  map[string]int
	filesByDir  map[int][]int
	fileIndexes map[fileKey]int
}

type fileKey struct {
	parentID int
	name     string
}

//NewTree builds a tree and its lookup indexes.
//When two headers share a path the first one wins the path lookup, like a linear scan would.
func NewTree(dirs, files []Entry) *Tree {
	t := &Tree{
		Directories: dirs,
		Files:       files,
		dirsByPath:  make(map[string]int, len(dirs)),
		filesByDir:  make(map[int][]int, len(dirs)),
		fileIndexes: make(map[fileKey]int, len(files)),
	}
	for i, d := range dirs {
		if _, ok := t.dirsByPath[d.Path]; !ok {
			t.dirsByPath[d.Path] = i
		}
	}
	for i, f := range files {
		t.filesByDir[f.ParentID] = append(t.filesByDir[f.ParentID], i)
		key := fileKey{parentID: f.ParentID, name: f.Name}
		if _, ok := t.fileIndexes[key]; !ok {
			t.fileIndexes[key] = i
		}
	}
	return t
}

//DirectoryByPath returns the first directory with exactly this path.
func (t *Tree) DirectoryByPath(path string) (Entry, bool) {
	i, ok := t.dirsByPath[path]
	if !ok {
		return Entry{}, false
	}
	return t.Directories[i], true
}

//FilesOf returns the files owned by the directory id, in listing order.
func (t *Tree) FilesOf(dirID int) []Entry {
	idx := t.filesByDir[dirID]
	files := make([]Entry, 0, len(idx))
	for _, i := range idx {
		files = append(files, t.Files[i])
	}
	return files
}

//FileByName finds a file by its base name inside the directory id.
func (t *Tree) FileByName(dirID int, name string) (Entry, bool) {
	i, ok := t.fileIndexes[fileKey{parentID: dirID, name: name}]
	if !ok {
		return Entry{}, false
	}
	return t.Files[i], true
}

func (t *Tree) Len() int {
	return len(t.Directories) + len(t.Files)
}

//TotalSize sums the sizes of all files.
func (t *Tree) TotalSize() int64 {
	var total int64
	for _, f := range t.Files {
		total += f.Size
	}
	return total
}
