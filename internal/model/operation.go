package model

import (
	"fmt"
	"strings"
)

//Action is what a plan does about one difference.
type Action string

const (
	ActionNone   Action = "none"
	ActionCreate Action = "create"
	ActionCopy   Action = "copy"
	ActionDelete Action = "delete"
)

//ParseAction accepts the action names case-insensitively; "donothing" is an alias of "none".
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "donothing":
		return ActionNone, nil
	case "create":
		return ActionCreate, nil
	case "copy":
		return ActionCopy, nil
	case "delete":
		return ActionDelete, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

func (a Action) IsValid() bool {
	switch a {
	case ActionNone, ActionCreate, ActionCopy, ActionDelete:
		return true
	}
	return false
}

//Direction names a side of the synchronization. In an operation it is the destination side.
type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
)

func (d Direction) Opposite() Direction {
	if d == Left {
		return Right
	}
	return Left
}

//Locality selects between direct shell commands and ssh/scp wrapped ones.
type Locality string

const (
	Local  Locality = "local"
	Remote Locality = "remote"
)

func ParseLocality(s string) (Locality, error) {
	switch Locality(strings.ToLower(strings.TrimSpace(s))) {
	case "", Local:
		return Local, nil
	case Remote:
		return Remote, nil
	}
	return "", fmt.Errorf("unknown locality %q", s)
}

//Relation is how an entry of one side relates to the other side.
type Relation string

const (
	RelationOnlyIn  Relation = "only-in"
	RelationNewerIn Relation = "newer-in"
)

//Category is one classification section: a relation observed on a side.
type Category struct {
	Relation Relation  `json:"relation" yaml:"relation"`
	Side     Direction `json:"side" yaml:"side"`
}

var (
	OnlyInLeft   = Category{Relation: RelationOnlyIn, Side: Left}
	NewerInLeft  = Category{Relation: RelationNewerIn, Side: Left}
	OnlyInRight  = Category{Relation: RelationOnlyIn, Side: Right}
	NewerInRight = Category{Relation: RelationNewerIn, Side: Right}
)

//Categories lists the sections in plan order.
var Categories = []Category{OnlyInLeft, NewerInLeft, OnlyInRight, NewerInRight}

func (c Category) String() string {
	return string(c.Relation) + "-" + string(c.Side)
}

//Destination returns the side an action on this category writes to.
//Creating or copying fills the other side, deleting removes the classified entry itself.
func (c Category) Destination(a Action) Direction {
	if a == ActionDelete {
		return c.Side
	}
	return c.Side.Opposite()
}

//Operation is one step of a synchronization plan.
type Operation struct {
	Seq       uint64    `json:"seq" yaml:"seq"`
	Category  Category  `json:"category" yaml:"category"`
	Directory string    `json:"directory" yaml:"directory"` // directory context
	Entry     Entry     `json:"entry" yaml:"entry"`
	Action    Action    `json:"action" yaml:"action"`
	Direction Direction `json:"direction" yaml:"direction"`
	Locality  Locality  `json:"locality" yaml:"locality"`
}

func (op Operation) IsDirectoryLevel() bool {
	return op.Entry.IsDir()
}

//Source returns the side data is read from, only meaningful for copies.
func (op Operation) Source() Direction {
	return op.Direction.Opposite()
}
