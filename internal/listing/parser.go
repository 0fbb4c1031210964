//Package listing turns the text of a recursive "ls -la" style listing into a model.Tree.
//
//A section starts with a line beginning with "." (the directory path, ":" removed), is followed
//by a "total N" line and by data rows, and ends with a blank line or EOF.
package listing

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5"

	"treesync/internal/log"
	"treesync/internal/model"
	"treesync/pkg/helpers/iout"
)

const (
	minRowFields = 8
	maxLineSize  = 1024 * 1024
)

var multiSpaces = regexp.MustCompile(`[ ]{2,}`)

//Stats counts what a parse did besides producing entries.
type Stats struct {
	Directories        int
	Files              int
	SkippedDirectories int // "d" rows, sub-directories are only known by their own header
	Excluded           int
	DateFallbacks      int
}

type Parser struct {
	log     log.Logger
	now     func() time.Time
	exclude []string
}

type Option func(*Parser)

func WithLogger(logger log.Logger) Option {
	return func(p *Parser) { p.log = logger }
}

//WithClock sets the time source used for directory mtimes, "HH:MM" years and date fallbacks.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

//WithExclude drops entries whose path, without the leading "./", matches any doublestar pattern.
func WithExclude(patterns ...string) Option {
	return func(p *Parser) { p.exclude = append(p.exclude, patterns...) }
}

func New(opts ...Option) (*Parser, error) {
	p := &Parser{log: log.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	for _, pattern := range p.exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	return p, nil
}

//Parse reads a whole listing with a parser built from opts.
func Parse(r io.Reader, opts ...Option) (*model.Tree, error) {
	p, err := New(opts...)
	if err != nil {
		return nil, err
	}
	tree, _, err := p.Parse(r)
	return tree, err
}

//ParseFile opens the listing at path in fs and parses it. The read stops when ctx is done.
func (p *Parser) ParseFile(ctx context.Context, fs billy.Filesystem, path string) (*model.Tree, Stats, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("cannot open listing %q: %w", path, err)
	}
	defer f.Close()

	tree, stats, err := p.Parse(iout.NewReaderWithContext(ctx, f))
	if err != nil {
		return nil, Stats{}, fmt.Errorf("cannot parse listing %q: %w", path, err)
	}
	return tree, stats, nil
}

//Parse reads the listing in a single forward pass.
//A malformed row aborts the parse: a partially built tree is never returned.
func (p *Parser) Parse(r io.Reader) (*model.Tree, Stats, error) {
	s := &lineScanner{sc: bufio.NewScanner(r)}
	s.sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		stats Stats
		dirs  []model.Entry
		files []model.Entry
	)

	for {
		line, ok := s.next()
		if !ok {
			break
		}
		if !strings.HasPrefix(line, ".") {
			continue
		}

		dir := model.NewDirectory(len(dirs)+1, strings.ReplaceAll(line, ":", ""), p.now())
		excluded := p.isExcluded(dir.Path)

		s.next() // "total N"

		fileID := 1
		for {
			row, ok := s.next()
			if !ok || strings.TrimSpace(row) == "" {
				break
			}

			r, err := p.parseRow(row, s.line, dir)
			if err != nil {
				return nil, Stats{}, err
			}
			if r.dateFallback {
				stats.DateFallbacks++
			}
			switch {
			case r.isDir:
				stats.SkippedDirectories++
			case excluded || p.isExcluded(r.file.Path):
				stats.Excluded++
			default:
				r.file.ID = fileID
				files = append(files, r.file)
				fileID++
			}
		}

		if excluded {
			stats.Excluded++
			continue
		}
		p.log.Debug("directory parsed", log.String("path", dir.Path), log.Int("files", fileID-1))
		dirs = append(dirs, dir)
	}
	if err := s.sc.Err(); err != nil {
		return nil, Stats{}, fmt.Errorf("cannot read listing: %w", err)
	}

	stats.Directories = len(dirs)
	stats.Files = len(files)
	return model.NewTree(dirs, files), stats, nil
}

type parsedRow struct {
	file         model.Entry
	isDir        bool
	dateFallback bool
}

//parseRow tokenizes one data row: permissions, links, owner, group, size, month, day,
//time-or-year, then the name which may contain spaces.
func (p *Parser) parseRow(row string, line int, dir model.Entry) (parsedRow, error) {
	fields := strings.Split(multiSpaces.ReplaceAllString(row, " "), " ")
	if len(fields) < minRowFields {
		return parsedRow{}, &MalformedListingError{
			Line:   line,
			Row:    row,
			Reason: fmt.Sprintf("expected at least %d fields, got %d", minRowFields, len(fields)),
		}
	}

	size, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return parsedRow{}, &MalformedListingError{Line: line, Row: row, Reason: "invalid size " + strconv.Quote(fields[4])}
	}

	var res parsedRow
	if strings.HasPrefix(row, "d") {
		res.isDir = true
		return res, nil
	}

	now := p.now()
	if _, known := resolveMonth(fields[5]); !known {
		p.log.Warn("unrecognized month", log.Int("line", line), log.String("month", fields[5]))
	}
	modTime, err := assembleDate(fields[6], fields[5], fields[7], now)
	if err != nil {
		p.log.Warn("cannot assemble date, using current time",
			log.Int("line", line),
			log.String("day", fields[6]),
			log.String("month", fields[5]),
			log.String("year", fields[7]),
			log.Cause(err),
		)
		modTime = now
		res.dateFallback = true
	}

	name := ""
	if len(fields) > minRowFields {
		name = strings.Join(fields[minRowFields:], " ")
	}
	res.file = model.NewFile(0, dir, name, modTime, size)
	return res, nil
}

func (p *Parser) isExcluded(path string) bool {
	rel := strings.TrimPrefix(path, "./")
	for _, pattern := range p.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

//lineScanner tracks the current line number and strips carriage returns.
type lineScanner struct {
	sc   *bufio.Scanner
	line int
}

func (s *lineScanner) next() (string, bool) {
	if !s.sc.Scan() {
		return "", false
	}
	s.line++
	return strings.TrimRight(s.sc.Text(), "\r"), true
}
