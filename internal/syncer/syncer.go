package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"golang.org/x/sync/errgroup"

	"treesync/internal/differ"
	"treesync/internal/listing"
	"treesync/internal/log"
	"treesync/internal/model"
	"treesync/internal/plan"
	"treesync/internal/settings"
	"treesync/pkg/helpers/run"
)

var ErrNilWriter = errors.New("syncer: writer must not be nil")

//Result describes one completed run.
type Result struct {
	Left    listing.Stats
	Right   listing.Stats
	Summary plan.Summary
}

//Syncer chains the stages: parse both listings, diff the trees, emit the plan.
type Syncer struct {
	log      log.Logger
	settings settings.Settings
	fs       billy.Filesystem
	now      func() time.Time
}

type Option func(*Syncer)

//WithFilesystem sets where the listings are read from. The default is the OS filesystem rooted at "/",
//which expects absolute listing paths.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(s *Syncer) { s.fs = fs }
}

//WithClock sets the time source handed to both parsers.
func WithClock(now func() time.Time) Option {
	return func(s *Syncer) { s.now = now }
}

func New(logger log.Logger, stg settings.Settings, opts ...Option) *Syncer {
	s := &Syncer{log: logger, settings: stg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.fs == nil {
		s.fs = osfs.New("/")
	}
	return s
}

//Run writes the plan into w. Both listings must parse before anything is diffed or written.
func (s *Syncer) Run(ctx context.Context, w plan.Writer) (Result, error) {
	if w == nil {
		return Result{}, ErrNilWriter
	}
	start := time.Now()

	comparator, err := differ.ComparatorByName(s.settings.Comparator)
	if err != nil {
		return Result{}, err
	}

	var (
		res         Result
		left, right *model.Tree
	)
	if err := s.parseBoth(ctx, &left, &right, &res); err != nil {
		s.log.Error("cannot parse listings", log.Cause(err))
		return Result{}, err
	}
	s.log.Info("listings parsed",
		log.Int("leftDirectories", res.Left.Directories), log.Int("leftFiles", res.Left.Files),
		log.Int("rightDirectories", res.Right.Directories), log.Int("rightFiles", res.Right.Files))

	var c *differ.Classification
	err = run.Stage("diff", func() (err error) {
		c, err = differ.Diff(left, right, differ.WithComparator(comparator))
		return err
	})
	if err != nil {
		return Result{}, err
	}
	if c.IsEmpty() {
		s.log.Info("trees are in sync")
	}

	err = run.Stage("emit", func() (err error) {
		res.Summary, err = plan.Emit(c, s.settings.Policy, s.settings.Target, w)
		return err
	})
	if err != nil {
		return Result{}, err
	}

	s.log.Info("plan emitted",
		log.Int("operations", res.Summary.Operations),
		log.Int("files", res.Summary.Files),
		log.String("bytes", humanize.Bytes(uint64(max(res.Summary.Bytes, 0)))),
		log.Duration("took", time.Since(start)))
	return res, nil
}

//Build runs the pipeline into a Recorder and returns the structured plan.
func (s *Syncer) Build(ctx context.Context) (*plan.Plan, Result, error) {
	rec := plan.NewRecorder()
	res, err := s.Run(ctx, rec)
	if err != nil {
		return nil, Result{}, err
	}
	return rec.Plan(), res, nil
}

//parseBoth parses the two listings concurrently; the first failure cancels the other side.
func (s *Syncer) parseBoth(ctx context.Context, left, right **model.Tree, res *Result) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return run.Stage("parse left listing", func() (err error) {
			*left, res.Left, err = s.parse(gctx, model.Left, s.settings.LeftListing)
			return err
		})
	})
	g.Go(func() error {
		return run.Stage("parse right listing", func() (err error) {
			*right, res.Right, err = s.parse(gctx, model.Right, s.settings.RightListing)
			return err
		})
	})
	return g.Wait()
}

func (s *Syncer) parse(ctx context.Context, side model.Direction, path string) (*model.Tree, listing.Stats, error) {
	p, err := listing.New(
		listing.WithLogger(s.log),
		listing.WithClock(s.now),
		listing.WithExclude(s.settings.Exclude...),
	)
	if err != nil {
		return nil, listing.Stats{}, err
	}

	s.log.Debug("parsing listing", log.String("side", string(side)), log.String("path", path))
	tree, stats, err := p.ParseFile(ctx, s.fs, path)
	if err != nil {
		return nil, listing.Stats{}, err
	}
	if stats.DateFallbacks > 0 {
		s.log.Warn(fmt.Sprintf("%d dates of the %s listing fell back to the current time", stats.DateFallbacks, side),
			log.String("path", path))
	}
	return tree, stats, nil
}
