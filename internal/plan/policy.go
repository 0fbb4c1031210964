package plan

import (
	"errors"
	"fmt"

	"treesync/internal/model"
)

var (
	ErrInvalidPolicy = errors.New("invalid policy")
	ErrInvalidTarget = errors.New("invalid target")
)

//Policy tells what to do for each of the six relationship categories.
//Every field must be set explicitly: an empty action is a programming error, use model.ActionNone.
type Policy struct {
	OnlyInLeftDirs    model.Action `json:"onlyInLeftDirs" yaml:"only_in_left_dirs" mapstructure:"only_in_left_dirs"`
	OnlyInLeftFiles   model.Action `json:"onlyInLeftFiles" yaml:"only_in_left_files" mapstructure:"only_in_left_files"`
	OnlyInRightDirs   model.Action `json:"onlyInRightDirs" yaml:"only_in_right_dirs" mapstructure:"only_in_right_dirs"`
	OnlyInRightFiles  model.Action `json:"onlyInRightFiles" yaml:"only_in_right_files" mapstructure:"only_in_right_files"`
	NewerInLeftFiles  model.Action `json:"newerInLeftFiles" yaml:"newer_in_left_files" mapstructure:"newer_in_left_files"`
	NewerInRightFiles model.Action `json:"newerInRightFiles" yaml:"newer_in_right_files" mapstructure:"newer_in_right_files"`

	//PruneDeletes skips file deletes below a directory whose recursive delete is already in the plan.
	PruneDeletes bool `json:"pruneDeletes" yaml:"prune_deletes" mapstructure:"prune_deletes"`
}

//NoopPolicy does nothing for every category.
func NoopPolicy() Policy {
	return Policy{
		OnlyInLeftDirs:    model.ActionNone,
		OnlyInLeftFiles:   model.ActionNone,
		OnlyInRightDirs:   model.ActionNone,
		OnlyInRightFiles:  model.ActionNone,
		NewerInLeftFiles:  model.ActionNone,
		NewerInRightFiles: model.ActionNone,
	}
}

//DirectoryAction returns the directory-level action of a category. Newer categories never act on directories.
func (p Policy) DirectoryAction(cat model.Category) model.Action {
	switch cat {
	case model.OnlyInLeft:
		return p.OnlyInLeftDirs
	case model.OnlyInRight:
		return p.OnlyInRightDirs
	}
	return model.ActionNone
}

func (p Policy) FileAction(cat model.Category) model.Action {
	switch cat {
	case model.OnlyInLeft:
		return p.OnlyInLeftFiles
	case model.OnlyInRight:
		return p.OnlyInRightFiles
	case model.NewerInLeft:
		return p.NewerInLeftFiles
	case model.NewerInRight:
		return p.NewerInRightFiles
	}
	return model.ActionNone
}

func (p Policy) Validate() error {
	dirs := []struct {
		name   string
		action model.Action
	}{
		{"only_in_left_dirs", p.OnlyInLeftDirs},
		{"only_in_right_dirs", p.OnlyInRightDirs},
	}
	for _, d := range dirs {
		switch d.action {
		case model.ActionNone, model.ActionCreate, model.ActionDelete:
		default:
			return fmt.Errorf("%w: %s: action %q is not allowed for directories", ErrInvalidPolicy, d.name, d.action)
		}
	}

	files := []struct {
		name   string
		action model.Action
	}{
		{"only_in_left_files", p.OnlyInLeftFiles},
		{"only_in_right_files", p.OnlyInRightFiles},
		{"newer_in_left_files", p.NewerInLeftFiles},
		{"newer_in_right_files", p.NewerInRightFiles},
	}
	for _, f := range files {
		switch f.action {
		case model.ActionNone, model.ActionCopy, model.ActionDelete:
		default:
			return fmt.Errorf("%w: %s: action %q is not allowed for files", ErrInvalidPolicy, f.name, f.action)
		}
	}
	return nil
}
