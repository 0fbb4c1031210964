package plan

import "treesync/internal/model"

//Writer is the sink the emitter writes ordered plan records to.
//Implementations render them (ScriptWriter) or keep them (Recorder).
type Writer interface {
	Header(h Header) error
	BeginSection(s Section) error
	Directory(m DirectoryMarker) error
	File(m FileMarker) error
	Operation(op model.Operation) error
	EndSection(s SectionSummary) error
	End(total Summary) error
}

type Header struct {
	Target Target `json:"target" yaml:"target"`
}

type Section struct {
	Category        model.Category `json:"category" yaml:"category"`
	DirectoryAction model.Action   `json:"directoryAction" yaml:"directoryAction"`
	FileAction      model.Action   `json:"fileAction" yaml:"fileAction"`
}

//DirectoryMarker announces a directory group; Index is 1-based.
type DirectoryMarker struct {
	Category  model.Category `json:"category" yaml:"category"`
	Directory model.Entry    `json:"directory" yaml:"directory"`
	Missing   bool           `json:"missing" yaml:"missing"`
	Index     int            `json:"index" yaml:"index"`
	Total     int            `json:"total" yaml:"total"`
}

//FileMarker announces a file; Index and Total are those of its directory group.
type FileMarker struct {
	Category model.Category `json:"category" yaml:"category"`
	File     model.Entry    `json:"file" yaml:"file"`
	Index    int            `json:"index" yaml:"index"`
	Total    int            `json:"total" yaml:"total"`
}

type Summary struct {
	Directories int   `json:"directories" yaml:"directories"`
	Files       int   `json:"files" yaml:"files"`
	Bytes       int64 `json:"bytes" yaml:"bytes"` // sizes of every file considered, acted upon or not
	Operations  int   `json:"operations" yaml:"operations"`
}

func (s *Summary) add(o Summary) {
	s.Directories += o.Directories
	s.Files += o.Files
	s.Bytes += o.Bytes
	s.Operations += o.Operations
}

type SectionSummary struct {
	Category model.Category `json:"category" yaml:"category"`
	Summary  `yaml:",inline"`
}
