package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"treesync/internal/log"
	"treesync/internal/plan"
	"treesync/internal/settings"
	"treesync/internal/syncer"
	"treesync/pkg/helpers/iout"
	"treesync/pkg/helpers/run"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [LEFT_LISTING RIGHT_LISTING]",
		Short: "Write the synchronization plan of two listings",
		Example: "  treesync plan left.lst right.lst --only-in-right-files=copy --newer-in-right-files=copy\n" +
			"  treesync plan -c treesync.yaml -o sync.sh",
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stg, err := loadSettings(cmd, args)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			logger, err := log.New(stg.LogLevel, stg.LogToStd)
			if err != nil {
				return fmt.Errorf("cannot create logger: %w", err)
			}
			defer logger.Sync()

			fs := osfs.New("/")
			if err := stg.ValidateListings(fs); err != nil {
				return err
			}

			ctx := cmd.Context()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case err := <-run.AsyncWithError(func() error { return writePlan(ctx, logger, *stg, fs, cmd.OutOrStdout()) }):
				return err
			}
		},
	}
	cmd.Flags().SortFlags = false
	settings.RegisterFlags(cmd.Flags())
	return cmd
}

//loadSettings merges the positional listings, flags, env and config file.
//Listing and output paths are made absolute because the filesystem is rooted at "/".
func loadSettings(cmd *cobra.Command, args []string) (*settings.Settings, error) {
	v := viper.New()
	if err := settings.BindFlags(v, cmd.Flags()); err != nil {
		return nil, err
	}
	if len(args) > 0 {
		v.Set(settings.KeyLeft, args[0])
	}
	if len(args) > 1 {
		v.Set(settings.KeyRight, args[1])
	}

	stg, err := settings.Load(v)
	if err != nil {
		return nil, err
	}
	for _, p := range []*string{&stg.LeftListing, &stg.RightListing, &stg.Output} {
		if *p == "" {
			continue
		}
		if *p, err = filepath.Abs(*p); err != nil {
			return nil, fmt.Errorf("path %q cannot be converted to absolute: %w", *p, err)
		}
	}
	return stg, nil
}

//writePlan builds the whole plan before writing anything, so a failed run leaves no partial output.
func writePlan(ctx context.Context, logger log.Logger, stg settings.Settings, fs billy.Filesystem, stdout io.Writer) error {
	p, _, err := syncer.New(logger, stg, syncer.WithFilesystem(fs)).Build(ctx)
	if err != nil {
		return err
	}

	encode := func(w io.Writer) error { return plan.Encode(p, stg.Format, w) }
	if stg.Output == "" {
		return encode(stdout)
	}

	perm := os.FileMode(0o644)
	if stg.Format == plan.FormatScript {
		perm = 0o755
	}
	if err := iout.WriteFile(fs, stg.Output, perm, encode); err != nil {
		return fmt.Errorf("cannot write plan to %q: %w", stg.Output, err)
	}
	logger.Info("plan written", log.String("path", stg.Output), log.String("format", string(stg.Format)))
	return nil
}
