package differ

import "treesync/internal/model"

//Group is a directory of one side together with the files classified under it.
type Group struct {
	Directory model.Entry   `json:"directory" yaml:"directory"`
	Missing   bool          `json:"missing" yaml:"missing"` // the directory is absent from the other side
	Files     []model.Entry `json:"files" yaml:"files"`
}

func (g Group) TotalSize() int64 {
	var total int64
	for _, f := range g.Files {
		total += f.Size
	}
	return total
}

//Bucket is one classification set. Groups keep discovery order and a directory owns at most one group.
type Bucket struct {
	groups []*Group
	index  map[int]int // directory id -> position in groups
}

func newBucket() *Bucket {
	return &Bucket{index: make(map[int]int)}
}

func (b *Bucket) group(dir model.Entry) *Group {
	if i, ok := b.index[dir.ID]; ok {
		return b.groups[i]
	}
	g := &Group{Directory: dir}
	b.index[dir.ID] = len(b.groups)
	b.groups = append(b.groups, g)
	return g
}

func (b *Bucket) addMissing(dir model.Entry, files []model.Entry) {
	g := b.group(dir)
	g.Missing = true
	g.Files = append(g.Files, files...)
}

func (b *Bucket) addFile(dir model.Entry, file model.Entry) {
	g := b.group(dir)
	g.Files = append(g.Files, file)
}

//Groups returns a copy of the groups in discovery order.
func (b *Bucket) Groups() []Group {
	out := make([]Group, 0, len(b.groups))
	for _, g := range b.groups {
		files := make([]model.Entry, len(g.Files))
		copy(files, g.Files)
		out = append(out, Group{Directory: g.Directory, Missing: g.Missing, Files: files})
	}
	return out
}

//Directories returns the directories absent from the other side.
func (b *Bucket) Directories() []model.Entry {
	var out []model.Entry
	for _, g := range b.groups {
		if g.Missing {
			out = append(out, g.Directory)
		}
	}
	return out
}

//Files returns every classified file, grouped by directory.
func (b *Bucket) Files() []model.Entry {
	var out []model.Entry
	for _, g := range b.groups {
		out = append(out, g.Files...)
	}
	return out
}

func (b *Bucket) IsEmpty() bool {
	for _, g := range b.groups {
		if g.Missing || len(g.Files) > 0 {
			return false
		}
	}
	return true
}

//Classification is the output of Diff: the four buckets of both sides.
type Classification struct {
	OnlyInLeft   *Bucket
	NewerInLeft  *Bucket
	OnlyInRight  *Bucket
	NewerInRight *Bucket
}

func newClassification() *Classification {
	return &Classification{
		OnlyInLeft:   newBucket(),
		NewerInLeft:  newBucket(),
		OnlyInRight:  newBucket(),
		NewerInRight: newBucket(),
	}
}

//Bucket returns the bucket of a category.
func (c *Classification) Bucket(cat model.Category) *Bucket {
	switch cat {
	case model.OnlyInLeft:
		return c.OnlyInLeft
	case model.NewerInLeft:
		return c.NewerInLeft
	case model.OnlyInRight:
		return c.OnlyInRight
	case model.NewerInRight:
		return c.NewerInRight
	}
	return nil
}

func (c *Classification) IsEmpty() bool {
	return c.OnlyInLeft.IsEmpty() && c.NewerInLeft.IsEmpty() &&
		c.OnlyInRight.IsEmpty() && c.NewerInRight.IsEmpty()
}
