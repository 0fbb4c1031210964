package plan

import "treesync/internal/model"

type RecordKind string

const (
	RecordHeader         RecordKind = "header"
	RecordSection        RecordKind = "section"
	RecordDirectory      RecordKind = "directory"
	RecordFile           RecordKind = "file"
	RecordOperation      RecordKind = "operation"
	RecordSectionSummary RecordKind = "section-summary"
)

//Record is one element of a plan. Exactly one of the payload fields matching Kind is set.
type Record struct {
	Kind           RecordKind       `json:"kind" yaml:"kind"`
	Header         *Header          `json:"header,omitempty" yaml:"header,omitempty"`
	Section        *Section         `json:"section,omitempty" yaml:"section,omitempty"`
	Directory      *DirectoryMarker `json:"directory,omitempty" yaml:"directory,omitempty"`
	File           *FileMarker      `json:"file,omitempty" yaml:"file,omitempty"`
	Operation      *model.Operation `json:"operation,omitempty" yaml:"operation,omitempty"`
	SectionSummary *SectionSummary  `json:"sectionSummary,omitempty" yaml:"sectionSummary,omitempty"`
}

//Plan is the ordered output of the emitter.
type Plan struct {
	Target  Target   `json:"target" yaml:"target"`
	Records []Record `json:"records" yaml:"records"`
	Summary Summary  `json:"summary" yaml:"summary"`
}

//Operations returns the operations of the plan in emission order.
func (p *Plan) Operations() []model.Operation {
	var ops []model.Operation
	for _, r := range p.Records {
		if r.Kind == RecordOperation {
			ops = append(ops, *r.Operation)
		}
	}
	return ops
}

//Sections returns the per-category summaries.
func (p *Plan) Sections() []SectionSummary {
	var out []SectionSummary
	for _, r := range p.Records {
		if r.Kind == RecordSectionSummary {
			out = append(out, *r.SectionSummary)
		}
	}
	return out
}

//Recorder is a Writer keeping every record in memory.
type Recorder struct {
	plan Plan
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Plan() *Plan {
	p := r.plan
	p.Records = append([]Record(nil), r.plan.Records...)
	return &p
}

func (r *Recorder) Header(h Header) error {
	r.plan.Target = h.Target
	r.plan.Records = append(r.plan.Records, Record{Kind: RecordHeader, Header: &h})
	return nil
}

func (r *Recorder) BeginSection(s Section) error {
	r.plan.Records = append(r.plan.Records, Record{Kind: RecordSection, Section: &s})
	return nil
}

func (r *Recorder) Directory(m DirectoryMarker) error {
	r.plan.Records = append(r.plan.Records, Record{Kind: RecordDirectory, Directory: &m})
	return nil
}

func (r *Recorder) File(m FileMarker) error {
	r.plan.Records = append(r.plan.Records, Record{Kind: RecordFile, File: &m})
	return nil
}

func (r *Recorder) Operation(op model.Operation) error {
	r.plan.Records = append(r.plan.Records, Record{Kind: RecordOperation, Operation: &op})
	return nil
}

func (r *Recorder) EndSection(s SectionSummary) error {
	r.plan.Records = append(r.plan.Records, Record{Kind: RecordSectionSummary, SectionSummary: &s})
	return nil
}

func (r *Recorder) End(total Summary) error {
	r.plan.Summary = total
	return nil
}
