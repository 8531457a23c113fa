package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Command is the declaration of a routine command: a behavior guarded by
// AND-ed conditions, one trigger mode and zero or more tags.
//
// The Declare* methods are chainable and are meant to be called while the
// routine is being assembled, before the command is registered. Runtime state
// (the trigger latch, tag latches, whether the command is active) is owned by
// the scheduler, not by the declaration.
type Command struct {
	Name     string
	Behavior Behavior

	conditions   []Condition
	mode         Mode
	tags         []Tag
	requirements []string
	errs         []error
}

// NewCommand declares a command running b. The trigger mode defaults to LevelTrue.
func NewCommand(name string, b Behavior) *Command {
	return &Command{
		Name:     name,
		Behavior: b,
		mode:     LevelTrue,
	}
}

// DeclareCondition replaces the command's conditions. All of them are
// evaluated every tick and AND-combined.
func (c *Command) DeclareCondition(conds ...Condition) *Command {
	c.conditions = append([]Condition(nil), conds...)
	return c
}

// DeclareTriggerMode sets how the conjunction becomes a run decision.
func (c *Command) DeclareTriggerMode(m Mode) *Command {
	if !m.Valid() {
		c.errs = append(c.errs, fmt.Errorf("%w: %s", ErrInvalidMode, m))
	}
	c.mode = m
	return c
}

// DeclareTags replaces the command's tags.
func (c *Command) DeclareTags(tags ...Tag) *Command {
	c.tags = append([]Tag(nil), tags...)
	return c
}

// Requires records resource requirements. They are passed through untouched.
func (c *Command) Requires(reqs ...string) *Command {
	c.requirements = append(c.requirements, reqs...)
	return c
}

// Conditions returns a copy of the declared conditions.
func (c *Command) Conditions() []Condition {
	return append([]Condition(nil), c.conditions...)
}

// Mode returns the declared trigger mode.
func (c *Command) Mode() Mode { return c.mode }

// Tags returns a copy of the declared tags.
func (c *Command) Tags() []Tag {
	return append([]Tag(nil), c.tags...)
}

// Requirements returns a copy of the declared resource requirements.
func (c *Command) Requirements() []string {
	return append([]string(nil), c.requirements...)
}

// HasTag reports whether t was declared on the command.
func (c *Command) HasTag(t Tag) bool {
	for _, tag := range c.tags {
		if tag == t {
			return true
		}
	}
	return false
}

// Validate reports configuration errors found in the declaration.
func (c *Command) Validate() error {
	if c == nil {
		return ErrNilCommand
	}
	errs := append([]error(nil), c.errs...)
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, ErrUnnamedCommand)
	}
	if c.Behavior == nil {
		errs = append(errs, ErrNilBehavior)
	}
	if len(c.conditions) == 0 {
		errs = append(errs, ErrNoConditions)
	}
	for i, cond := range c.conditions {
		if cond == nil {
			errs = append(errs, fmt.Errorf("%w: index %d", ErrNilCondition, i))
		}
	}
	if !c.mode.Valid() && len(c.errs) == 0 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidMode, c.mode))
	}
	for _, t := range c.tags {
		if !t.Valid() {
			errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidTag, t))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("command %q: %w", c.Name, errors.Join(errs...))
}
