package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"treesync/internal/log"
	"treesync/internal/model"
	"treesync/internal/plan"
)

func writeConfig(t *testing.T, cfg map[string]any) string {
	t.Helper()
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "treesync.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func newViper(t *testing.T, args ...string) *viper.Viper {
	t.Helper()
	fs := pflag.NewFlagSet("treesync", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))

	v := viper.New()
	require.NoError(t, BindFlags(v, fs))
	return v
}

func TestLoadDefaults(t *testing.T) {
	requires := require.New(t)

	v := newViper(t)
	v.Set(KeyLeft, "left.lst")
	v.Set(KeyRight, "right.lst")

	stg, err := Load(v)
	requires.NoError(err)
	requires.Empty(stg.Exclude)
	stg.Exclude = nil
	requires.Equal(&Settings{
		LeftListing:  "left.lst",
		RightListing: "right.lst",
		Format:       plan.FormatScript,
		Policy:       plan.NoopPolicy(),
		Target:       plan.Target{Locality: model.Local, SSHPort: plan.DefaultSSHPort},
		Comparator:   "size-and-time",
		LogLevel:     log.InfoLevel,
	}, stg)
}

func TestLoadConfigFile(t *testing.T) {
	requires := require.New(t)

	path := writeConfig(t, map[string]any{
		"left":       "l.lst",
		"right":      "r.lst",
		"output":     "sync.sh",
		"comparator": "time",
		"exclude":    []string{"**/.git/**", "tmp/*"},
		"log_level":  "DEBUG",
		"policy": map[string]any{
			"only_in_left_dirs":    "create",
			"only_in_left_files":   "COPY",
			"only_in_right_dirs":   "delete",
			"only_in_right_files":  "delete",
			"newer_in_left_files":  "copy",
			"newer_in_right_files": "donothing",
			"prune_deletes":        true,
		},
		"target": map[string]any{
			"locality":   "remote",
			"ssh_user":   "deploy",
			"ssh_host":   "backup.example.org",
			"ssh_port":   2222,
			"left_root":  "/srv/data",
			"right_root": "/backup/data",
		},
	})

	stg, err := Load(newViper(t, "--config", path))
	requires.NoError(err)

	requires.Equal("l.lst", stg.LeftListing)
	requires.Equal("r.lst", stg.RightListing)
	requires.Equal("sync.sh", stg.Output)
	requires.Equal("time", stg.Comparator)
	requires.Equal([]string{"**/.git/**", "tmp/*"}, stg.Exclude)
	requires.Equal(log.Level(log.DebugLevel), stg.LogLevel)
	requires.Equal(plan.Policy{
		OnlyInLeftDirs:    model.ActionCreate,
		OnlyInLeftFiles:   model.ActionCopy,
		OnlyInRightDirs:   model.ActionDelete,
		OnlyInRightFiles:  model.ActionDelete,
		NewerInLeftFiles:  model.ActionCopy,
		NewerInRightFiles: model.ActionNone,
		PruneDeletes:      true,
	}, stg.Policy)
	requires.Equal(plan.Target{
		Locality:  model.Remote,
		SSHUser:   "deploy",
		SSHHost:   "backup.example.org",
		SSHPort:   2222,
		LeftRoot:  "/srv/data",
		RightRoot: "/backup/data",
	}, stg.Target)
}

func TestLoadPrecedence(t *testing.T) {
	requires := require.New(t)

	path := writeConfig(t, map[string]any{
		"left":   "l.lst",
		"right":  "r.lst",
		"format": "yaml",
		"policy": map[string]any{"only_in_right_files": "delete", "newer_in_right_files": "delete"},
	})
	t.Setenv("TREESYNC_POLICY_ONLY_IN_RIGHT_FILES", "copy")
	t.Setenv("TREESYNC_FORMAT", "json")

	stg, err := Load(newViper(t, "--config", path, "--format", "script"))
	requires.NoError(err)
	requires.Equal(plan.FormatScript, stg.Format)
	requires.Equal(model.ActionCopy, stg.Policy.OnlyInRightFiles)
	requires.Equal(model.ActionDelete, stg.Policy.NewerInRightFiles)
}

func TestLoadFlags(t *testing.T) {
	requires := require.New(t)

	v := newViper(t, "--format=json", "--only-in-right-files=copy", "--newer-in-right-files=copy",
		"--exclude=**/*.tmp", "--log2std", "--loglvl=warn")
	v.Set(KeyLeft, "l.lst")
	v.Set(KeyRight, "r.lst")

	stg, err := Load(v)
	requires.NoError(err)
	requires.Equal(plan.FormatJSON, stg.Format)
	requires.Equal(model.ActionCopy, stg.Policy.OnlyInRightFiles)
	requires.Equal(model.ActionCopy, stg.Policy.NewerInRightFiles)
	requires.Equal([]string{"**/*.tmp"}, stg.Exclude)
	requires.True(stg.LogToStd)
	requires.Equal(log.Level(log.WarnLevel), stg.LogLevel)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		left string
	}{
		{name: "missing right", args: nil, left: "l.lst"},
		{name: "same listings", args: nil, left: "r.lst"},
		{name: "bad level", args: []string{"--loglvl=nope"}, left: "l.lst"},
		{name: "bad format", args: []string{"--format=xml"}, left: "l.lst"},
		{name: "bad comparator", args: []string{"--comparator=hash"}, left: "l.lst"},
		{name: "bad exclude", args: []string{"--exclude=a/["}, left: "l.lst"},
		{name: "unknown action", args: []string{"--only-in-left-files=move"}, left: "l.lst"},
		{name: "copy directories", args: []string{"--only-in-left-dirs=copy"}, left: "l.lst"},
		{name: "remote without host", args: []string{"--locality=remote", "--ssh-user=u"}, left: "l.lst"},
		{name: "unknown locality", args: []string{"--locality=moon"}, left: "l.lst"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper(t, tt.args...)
			v.Set(KeyLeft, tt.left)
			if tt.name != "missing right" {
				v.Set(KeyRight, "r.lst")
			}
			_, err := Load(v)
			require.Error(t, err)
		})
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(newViper(t, "--config", filepath.Join(t.TempDir(), "absent.yaml")))
	require.Error(t, err)
}

func TestValidateListings(t *testing.T) {
	fs := memfs.New()
	files := map[string][]byte{
		"listings/left.lst":  []byte("./a:\ntotal 4\n-rw-r--r-- 1 u g 10 Mar  5 10:00 x.txt\n"),
		"listings/empty.lst": nil,
		"listings/blob.bin":  {0x00, 0x01, 0x02, 0x03, 0xff, 0xfe, 0x00, 0x00, 0x10, 0x80},
	}
	for path, content := range files {
		f, err := fs.Create(path)
		require.NoError(t, err)
		_, err = f.Write(content)
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}
	require.NoError(t, fs.MkdirAll("listings/dir", 0o755))

	tests := []struct {
		name    string
		right   string
		wantErr bool
	}{
		{name: "missing", right: "listings/right.lst", wantErr: true},
		{name: "directory", right: "listings/dir", wantErr: true},
		{name: "binary", right: "listings/blob.bin", wantErr: true},
		{name: "empty", right: "listings/empty.lst"},
		{name: "valid", right: "listings/left.lst"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stg := &Settings{LeftListing: "listings/left.lst", RightListing: tt.right}
			err := stg.ValidateListings(fs)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
