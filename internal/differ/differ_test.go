package differ

import (
	"testing"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/require"

	"treesync/internal/model"
)

var t0 = time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)

type fileSpec struct {
	name    string
	size    int64
	modTime time.Time
}

//buildTree creates a tree from directory paths mapped to their files, keeping dirs order.
func buildTree(dirs []string, files map[string][]fileSpec) *model.Tree {
	var (
		dirEntries  []model.Entry
		fileEntries []model.Entry
	)
	for i, p := range dirs {
		dir := model.NewDirectory(i+1, p, t0)
		dirEntries = append(dirEntries, dir)
		for j, f := range files[p] {
			fileEntries = append(fileEntries, model.NewFile(j+1, dir, f.name, f.modTime, f.size))
		}
	}
	return model.NewTree(dirEntries, fileEntries)
}

func names(entries []model.Entry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestDiffScenario(t *testing.T) {
	requires := require.New(t)

	left := buildTree([]string{"./a"}, map[string][]fileSpec{
		"./a": {{name: "x.txt", size: 10, modTime: t0}},
	})
	right := buildTree([]string{"./a"}, map[string][]fileSpec{
		"./a": {
			{name: "x.txt", size: 12, modTime: t0.Add(time.Hour)},
			{name: "y.txt", size: 5, modTime: t0},
		},
	})

	c, err := Diff(left, right)
	requires.NoError(err)

	requires.Equal([]string{"y.txt"}, names(c.OnlyInRight.Files()))
	requires.Equal([]string{"x.txt"}, names(c.NewerInRight.Files()))
	requires.Empty(c.OnlyInRight.Directories())
	requires.Empty(c.NewerInRight.Directories())
	requires.True(c.OnlyInLeft.IsEmpty())
	requires.True(c.NewerInLeft.IsEmpty())

	groups := c.OnlyInRight.Groups()
	requires.Len(groups, 1)
	requires.Equal("./a", groups[0].Directory.Path)
	requires.False(groups[0].Missing)
}

func TestDiffIdentity(t *testing.T) {
	tree := buildTree([]string{".", "./a", "./a/b"}, map[string][]fileSpec{
		".":     {{name: "README", size: 1, modTime: t0}},
		"./a":   {{name: "x", size: 2, modTime: t0}, {name: "y", size: 3, modTime: t0.Add(time.Minute)}},
		"./a/b": {{name: "z", size: 4, modTime: t0}},
	})

	c, err := Diff(tree, tree)
	require.NoError(t, err)
	require.True(t, c.IsEmpty())
	for _, cat := range model.Categories {
		require.Empty(t, c.Bucket(cat).Directories(), cat.String())
		require.Empty(t, c.Bucket(cat).Files(), cat.String())
	}
}

func TestDiffMissingDirectories(t *testing.T) {
	requires := require.New(t)

	left := buildTree([]string{"./shared", "./left-only"}, map[string][]fileSpec{
		"./left-only": {{name: "a", size: 1, modTime: t0}, {name: "b", size: 2, modTime: t0}},
	})
	right := buildTree([]string{"./right-only", "./shared"}, map[string][]fileSpec{
		"./right-only": {{name: "c", size: 3, modTime: t0}},
	})

	c, err := Diff(left, right)
	requires.NoError(err)

	requires.Equal([]string{"left-only"}, names(c.OnlyInLeft.Directories()))
	requires.Equal([]string{"a", "b"}, names(c.OnlyInLeft.Files()))
	requires.Equal([]string{"right-only"}, names(c.OnlyInRight.Directories()))
	requires.Equal([]string{"c"}, names(c.OnlyInRight.Files()))
	requires.True(c.OnlyInRight.Groups()[0].Missing)
	requires.Equal(int64(3), c.OnlyInLeft.Groups()[0].TotalSize())
}

func TestDiffDirectoryIsGroupedOnce(t *testing.T) {
	requires := require.New(t)

	left := buildTree([]string{"./a"}, map[string][]fileSpec{
		"./a": {
			{name: "1", size: 1, modTime: t0},
			{name: "2", size: 1, modTime: t0},
			{name: "3", size: 9, modTime: t0.Add(time.Hour)},
			{name: "4", size: 9, modTime: t0.Add(time.Hour)},
		},
	})
	right := buildTree([]string{"./a"}, map[string][]fileSpec{
		"./a": {{name: "3", size: 1, modTime: t0}, {name: "4", size: 1, modTime: t0}},
	})

	c, err := Diff(left, right)
	requires.NoError(err)

	requires.Len(c.OnlyInLeft.Groups(), 1)
	requires.Equal([]string{"1", "2"}, names(c.OnlyInLeft.Files()))
	requires.Len(c.NewerInLeft.Groups(), 1)
	requires.Equal([]string{"3", "4"}, names(c.NewerInLeft.Files()))
	requires.Empty(c.NewerInLeft.Directories())
}

func TestDiffDuplicateHeadersWalkRightFilesOnce(t *testing.T) {
	left := buildTree([]string{"./a", "./a"}, nil)
	right := buildTree([]string{"./a"}, map[string][]fileSpec{
		"./a": {{name: "only-right", size: 1, modTime: t0}},
	})

	c, err := Diff(left, right)
	require.NoError(t, err)
	require.Equal(t, []string{"only-right"}, names(c.OnlyInRight.Files()))
}

func TestDiffSizeGuardedHeuristic(t *testing.T) {
	tests := []struct {
		name       string
		left       fileSpec
		right      fileSpec
		wantLeft   bool
		wantRights bool
	}{
		{name: "same size, newer left", left: fileSpec{"f", 5, t0.Add(time.Hour)}, right: fileSpec{"f", 5, t0}},
		{name: "same size, newer right", left: fileSpec{"f", 5, t0}, right: fileSpec{"f", 5, t0.Add(time.Hour)}},
		{name: "different size, same time", left: fileSpec{"f", 5, t0}, right: fileSpec{"f", 6, t0}},
		{name: "newer and bigger left", left: fileSpec{"f", 8, t0.Add(time.Hour)}, right: fileSpec{"f", 5, t0}, wantLeft: true},
		{name: "newer and smaller right", left: fileSpec{"f", 8, t0}, right: fileSpec{"f", 5, t0.Add(time.Second)}, wantRights: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requires := require.New(t)
			left := buildTree([]string{"./d"}, map[string][]fileSpec{"./d": {tt.left}})
			right := buildTree([]string{"./d"}, map[string][]fileSpec{"./d": {tt.right}})

			c, err := Diff(left, right)
			requires.NoError(err)
			requires.Equal(tt.wantLeft, len(c.NewerInLeft.Files()) == 1)
			requires.Equal(tt.wantRights, len(c.NewerInRight.Files()) == 1)
			requires.False(len(c.NewerInLeft.Files()) == 1 && len(c.NewerInRight.Files()) == 1)
			requires.True(c.OnlyInLeft.IsEmpty())
			requires.True(c.OnlyInRight.IsEmpty())
		})
	}
}

func TestDiffProperties(t *testing.T) {
	requires := require.New(t)

	left := buildTree([]string{".", "./a", "./b", "./l"}, map[string][]fileSpec{
		".":   {{name: "r", size: 1, modTime: t0}},
		"./a": {{name: "x", size: 1, modTime: t0}, {name: "y", size: 2, modTime: t0.Add(time.Hour)}},
		"./b": {{name: "k", size: 5, modTime: t0}},
		"./l": {{name: "m", size: 5, modTime: t0}},
	})
	right := buildTree([]string{"./a", ".", "./r", "./b"}, map[string][]fileSpec{
		".":   {{name: "r", size: 3, modTime: t0.Add(time.Minute)}, {name: "s", size: 1, modTime: t0}},
		"./a": {{name: "y", size: 3, modTime: t0}},
		"./r": {{name: "n", size: 5, modTime: t0}},
	})

	c, err := Diff(left, right)
	requires.NoError(err)

	checkOnly := func(b *Bucket, other *model.Tree) {
		for _, d := range b.Directories() {
			_, found := other.DirectoryByPath(d.Path)
			requires.False(found, d.Path)
		}
		for _, g := range b.Groups() {
			otherDir, found := other.DirectoryByPath(g.Directory.Path)
			requires.Equal(!g.Missing, found)
			for _, f := range g.Files {
				requires.Equal(g.Directory.ID, f.ParentID, "file must be contained in its group directory")
				if found {
					_, exists := other.FileByName(otherDir.ID, f.Name)
					requires.False(exists, f.Path)
				}
			}
		}
	}
	checkOnly(c.OnlyInLeft, right)
	checkOnly(c.OnlyInRight, left)

	requires.Equal([]string{"l"}, names(c.OnlyInLeft.Directories()))
	requires.Equal([]string{"x", "k", "m"}, names(c.OnlyInLeft.Files()))
	requires.Equal([]string{"y"}, names(c.NewerInLeft.Files()))
	requires.Equal([]string{"r"}, names(c.NewerInRight.Files()))
	requires.Equal([]string{"r"}, names(c.OnlyInRight.Directories()))
	requires.Equal([]string{"s", "n"}, names(c.OnlyInRight.Files()))

	newerLeft := mapset.NewSet[string]()
	for _, f := range c.NewerInLeft.Files() {
		newerLeft.Add(f.Path)
	}
	for _, f := range c.NewerInRight.Files() {
		requires.False(newerLeft.Contains(f.Path), "a pair is never newer on both sides")
	}
}

func TestDiffNilTree(t *testing.T) {
	tree := buildTree(nil, nil)

	_, err := Diff(nil, tree)
	require.ErrorIs(t, err, ErrNilTree)
	_, err = Diff(tree, nil)
	require.ErrorIs(t, err, ErrNilTree)

	c, err := Diff(tree, tree)
	require.NoError(t, err)
	require.True(t, c.IsEmpty())
}

func TestDiffWithComparator(t *testing.T) {
	left := buildTree([]string{"./d"}, map[string][]fileSpec{"./d": {{"f", 5, t0.Add(time.Hour)}}})
	right := buildTree([]string{"./d"}, map[string][]fileSpec{"./d": {{"f", 5, t0}}})

	c, err := Diff(left, right, WithComparator(TimeOnly{}))
	require.NoError(t, err)
	require.Equal(t, []string{"f"}, names(c.NewerInLeft.Files()))

	c, err = Diff(left, right, WithComparator(nil))
	require.NoError(t, err)
	require.True(t, c.NewerInLeft.IsEmpty(), "nil keeps the default comparator")
}

func TestBucketGroupsAreCopies(t *testing.T) {
	left := buildTree([]string{"./a"}, map[string][]fileSpec{"./a": {{"f", 1, t0}}})
	c, err := Diff(left, buildTree(nil, nil))
	require.NoError(t, err)

	groups := c.OnlyInLeft.Groups()
	groups[0].Files[0].Name = "changed"
	require.Equal(t, []string{"f"}, names(c.OnlyInLeft.Files()))
}
