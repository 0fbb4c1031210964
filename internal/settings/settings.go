package settings

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"treesync/internal/differ"
	"treesync/internal/log"
	"treesync/internal/model"
	"treesync/internal/plan"
)

const EnvPrefix = "TREESYNC"

//Configuration keys. Nested keys map to env vars with "." replaced by "_", e.g. TREESYNC_POLICY_ONLY_IN_LEFT_FILES.
const (
	KeyConfig     = "config"
	KeyLeft       = "left"
	KeyRight      = "right"
	KeyOutput     = "output"
	KeyFormat     = "format"
	KeyComparator = "comparator"
	KeyExclude    = "exclude"
	KeyLogLevel   = "log_level"
	KeyLogToStd   = "log2std"

	KeyOnlyInLeftDirs    = "policy.only_in_left_dirs"
	KeyOnlyInLeftFiles   = "policy.only_in_left_files"
	KeyOnlyInRightDirs   = "policy.only_in_right_dirs"
	KeyOnlyInRightFiles  = "policy.only_in_right_files"
	KeyNewerInLeftFiles  = "policy.newer_in_left_files"
	KeyNewerInRightFiles = "policy.newer_in_right_files"
	KeyPruneDeletes      = "policy.prune_deletes"

	KeyLocality  = "target.locality"
	KeySSHUser   = "target.ssh_user"
	KeySSHHost   = "target.ssh_host"
	KeySSHPort   = "target.ssh_port"
	KeyLeftRoot  = "target.left_root"
	KeyRightRoot = "target.right_root"
)

type Settings struct {
	LeftListing  string      `mapstructure:"left"`
	RightListing string      `mapstructure:"right"`
	Output       string      `mapstructure:"output"` // empty means stdout
	Format       plan.Format `mapstructure:"format"`
	Policy       plan.Policy `mapstructure:"policy"`
	Target       plan.Target `mapstructure:"target"`
	Comparator   string      `mapstructure:"comparator"`
	Exclude      []string    `mapstructure:"exclude"`
	LogLevel     log.Level   `mapstructure:"log_level"`
	LogToStd     bool        `mapstructure:"log2std"`
}

//flagKeys maps command line flag names to configuration keys.
var flagKeys = map[string]string{
	"config":               KeyConfig,
	"output":               KeyOutput,
	"format":               KeyFormat,
	"comparator":           KeyComparator,
	"exclude":              KeyExclude,
	"loglvl":               KeyLogLevel,
	"log2std":              KeyLogToStd,
	"only-in-left-dirs":    KeyOnlyInLeftDirs,
	"only-in-left-files":   KeyOnlyInLeftFiles,
	"only-in-right-dirs":   KeyOnlyInRightDirs,
	"only-in-right-files":  KeyOnlyInRightFiles,
	"newer-in-left-files":  KeyNewerInLeftFiles,
	"newer-in-right-files": KeyNewerInRightFiles,
	"prune-deletes":        KeyPruneDeletes,
	"locality":             KeyLocality,
	"ssh-user":             KeySSHUser,
	"ssh-host":             KeySSHHost,
	"ssh-port":             KeySSHPort,
	"left-root":            KeyLeftRoot,
	"right-root":           KeyRightRoot,
}

//RegisterFlags defines every command line flag of the plan command.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "path of a YAML or JSON configuration file")
	fs.StringP("output", "o", "", "file the plan is written to, stdout if empty")
	fs.StringP("format", "f", string(plan.FormatScript), "plan format: script, json or yaml")
	fs.String("comparator", differ.SizeAndTimeName,
		fmt.Sprintf("how matched files are compared: %s, %s or %s", differ.SizeAndTimeName, differ.TimeOnlyName, differ.SizeOnlyName))
	fs.StringSlice("exclude", nil, "doublestar patterns of paths left out of both listings")
	fs.String("loglvl", log.InfoLevel,
		fmt.Sprintf("level of logging, permitted values are: %v, %v, %v, %v",
			log.DebugLevel, log.InfoLevel, log.WarnLevel, log.ErrorLevel))
	fs.Bool("log2std", false, "if true, logs are human readable console lines, otherwise JSON")

	actions := "none, create, copy or delete"
	fs.String("only-in-left-dirs", string(model.ActionNone), "action for directories only in the left tree: "+actions)
	fs.String("only-in-left-files", string(model.ActionNone), "action for files only in the left tree: "+actions)
	fs.String("only-in-right-dirs", string(model.ActionNone), "action for directories only in the right tree: "+actions)
	fs.String("only-in-right-files", string(model.ActionNone), "action for files only in the right tree: "+actions)
	fs.String("newer-in-left-files", string(model.ActionNone), "action for files newer in the left tree: "+actions)
	fs.String("newer-in-right-files", string(model.ActionNone), "action for files newer in the right tree: "+actions)
	fs.Bool("prune-deletes", false, "skip file deletes below a directory that is deleted recursively")

	fs.String("locality", string(model.Local), "where the destination side lives: local or remote")
	fs.String("ssh-user", "", "ssh user of a remote destination")
	fs.String("ssh-host", "", "ssh host of a remote destination")
	fs.Int("ssh-port", plan.DefaultSSHPort, "ssh port of a remote destination")
	fs.String("left-root", "", "root directory of the left tree, taken from $LEFTDIR at run time if empty")
	fs.String("right-root", "", "root directory of the right tree, taken from $RIGHTDIR at run time if empty")
}

//BindFlags binds the flags defined by RegisterFlags to v. Unknown flags are ignored.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("cannot bind flag %q: %w", name, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyLeft, "")
	v.SetDefault(KeyRight, "")
	v.SetDefault(KeyOutput, "")
	v.SetDefault(KeyFormat, string(plan.FormatScript))
	v.SetDefault(KeyComparator, differ.SizeAndTimeName)
	v.SetDefault(KeyExclude, []string{})
	v.SetDefault(KeyLogLevel, log.InfoLevel)
	v.SetDefault(KeyLogToStd, false)
	for _, key := range []string{KeyOnlyInLeftDirs, KeyOnlyInLeftFiles, KeyOnlyInRightDirs,
		KeyOnlyInRightFiles, KeyNewerInLeftFiles, KeyNewerInRightFiles} {
		v.SetDefault(key, string(model.ActionNone))
	}
	v.SetDefault(KeyPruneDeletes, false)
	v.SetDefault(KeyLocality, string(model.Local))
	v.SetDefault(KeySSHUser, "")
	v.SetDefault(KeySSHHost, "")
	v.SetDefault(KeySSHPort, plan.DefaultSSHPort)
	v.SetDefault(KeyLeftRoot, "")
	v.SetDefault(KeyRightRoot, "")
}

//Load reads the settings from v: bound flags first, then TREESYNC_* env vars, then the config file, then defaults.
func Load(v *viper.Viper) (*Settings, error) {
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path := v.GetString(KeyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config read %q: %w", path, err)
		}
	}

	stg := new(Settings)
	if err := v.Unmarshal(stg); err != nil {
		return nil, fmt.Errorf("cannot decode settings: %w", err)
	}
	if err := stg.normalize(); err != nil {
		return nil, err
	}
	if err := stg.Validate(); err != nil {
		return nil, err
	}
	return stg, nil
}

//normalize resolves the user-facing spellings of enum values, e.g. "COPY" or "donothing".
func (stg *Settings) normalize() error {
	format, err := plan.ParseFormat(string(stg.Format))
	if err != nil {
		return err
	}
	stg.Format = format

	actions := []*model.Action{
		&stg.Policy.OnlyInLeftDirs, &stg.Policy.OnlyInLeftFiles,
		&stg.Policy.OnlyInRightDirs, &stg.Policy.OnlyInRightFiles,
		&stg.Policy.NewerInLeftFiles, &stg.Policy.NewerInRightFiles,
	}
	for _, a := range actions {
		if *a, err = model.ParseAction(string(*a)); err != nil {
			return fmt.Errorf("%w: %v", plan.ErrInvalidPolicy, err)
		}
	}

	if stg.Target.Locality, err = model.ParseLocality(string(stg.Target.Locality)); err != nil {
		return fmt.Errorf("%w: %v", plan.ErrInvalidTarget, err)
	}

	stg.LogLevel = log.Level(strings.ToLower(string(stg.LogLevel)))
	stg.Comparator = strings.ToLower(strings.TrimSpace(stg.Comparator))
	return nil
}

func (stg *Settings) Validate() error {
	if stg.LeftListing == "" || stg.RightListing == "" {
		return errors.New("both listings (left and right) must be set")
	}
	if stg.LeftListing == stg.RightListing {
		return errors.New("the listings for synchronization cannot be the same")
	}
	if !stg.LogLevel.IsValid() {
		return fmt.Errorf("logging level %q does not exist", stg.LogLevel)
	}
	if _, err := plan.ParseFormat(string(stg.Format)); err != nil {
		return err
	}
	if _, err := differ.ComparatorByName(stg.Comparator); err != nil {
		return err
	}
	for _, pattern := range stg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("exclude pattern %q is malformed", pattern)
		}
	}
	if err := stg.Policy.Validate(); err != nil {
		return err
	}
	return stg.Target.Validate()
}

//ValidateListings checks that both listings are readable files of fs.
func (stg *Settings) ValidateListings(fs billy.Filesystem) error {
	if err := validateListingPath(fs, stg.LeftListing); err != nil {
		return fmt.Errorf("the left listing is invalid: %w", err)
	}
	if err := validateListingPath(fs, stg.RightListing); err != nil {
		return fmt.Errorf("the right listing is invalid: %w", err)
	}
	return nil
}

func validateListingPath(fs billy.Filesystem, path string) error {
	info, err := fs.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("path %q is a directory, not a listing file", path)
	}
	if info.Size() == 0 {
		return nil
	}

	f, err := fs.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, sniffSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return err
	}
	if mt := mimetype.Detect(buf[:n]); !isText(mt) {
		return fmt.Errorf("path %q holds %s content, not a text listing", path, mt)
	}
	return nil
}

const sniffSize = 3072

func isText(mt *mimetype.MIME) bool {
	for ; mt != nil; mt = mt.Parent() {
		if mt.Is("text/plain") {
			return true
		}
	}
	return false
}
