package plan

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatScript Format = "script"
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
)

var ErrUnknownFormat = errors.New("unknown plan format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatScript:
		return FormatScript, nil
	case FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

//Encode renders a recorded plan. The script format replays the records into a ScriptWriter.
func Encode(p *Plan, format Format, w io.Writer) error {
	switch format {
	case FormatScript:
		return Replay(p, NewScriptWriter(w))
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

//Replay writes the records of p into w in their original order.
func Replay(p *Plan, w Writer) error {
	for _, r := range p.Records {
		var err error
		switch r.Kind {
		case RecordHeader:
			err = w.Header(*r.Header)
		case RecordSection:
			err = w.BeginSection(*r.Section)
		case RecordDirectory:
			err = w.Directory(*r.Directory)
		case RecordFile:
			err = w.File(*r.File)
		case RecordOperation:
			err = w.Operation(*r.Operation)
		case RecordSectionSummary:
			err = w.EndSection(*r.SectionSummary)
		default:
			err = fmt.Errorf("unknown record kind %q", r.Kind)
		}
		if err != nil {
			return err
		}
	}
	return w.End(p.Summary)
}
