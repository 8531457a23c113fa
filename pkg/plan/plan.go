package plan

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aretw0/routine/pkg/domain"
	"github.com/aretw0/routine/pkg/registry"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidPlan      = errors.New("invalid plan")
	ErrInvalidCondition = errors.New("invalid condition expression")
)

// Plan is the YAML document describing one routine.
type Plan struct {
	Name         string        `yaml:"name"`
	Budget       time.Duration `yaml:"budget"`
	Period       time.Duration `yaml:"period"`
	ResumePolicy string        `yaml:"resume_policy"`
	Default      BehaviorSpec  `yaml:"default"`
	Commands     []CommandSpec `yaml:"commands"`
}

// BehaviorSpec selects a registry behavior and its parameters.
type BehaviorSpec struct {
	Behavior string         `yaml:"behavior"`
	Params   map[string]any `yaml:"params"`
}

// CommandSpec declares one routine command.
type CommandSpec struct {
	Name         string `yaml:"name"`
	BehaviorSpec `yaml:",inline"`
	When         []string `yaml:"when"`
	Mode         string   `yaml:"mode"`
	Tags         []string `yaml:"tags"`
	Requires     []string `yaml:"requires"`
}

// Load decodes a plan. Unknown fields are rejected.
func Load(r io.Reader) (*Plan, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var p Plan
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidPlan)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	return &p, nil
}

// LoadFile reads and decodes the plan at path.
func LoadFile(path string) (*Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if p.Name == "" {
		p.Name = path
	}
	return p, nil
}

// ParsedMode returns the parsed trigger mode (default level_true).
func (c CommandSpec) ParsedMode() (domain.Mode, error) {
	if c.Mode == "" {
		return domain.LevelTrue, nil
	}
	return domain.ParseMode(c.Mode)
}

// ParsedTags returns the parsed tags.
func (c CommandSpec) ParsedTags() ([]domain.Tag, error) {
	tags := make([]domain.Tag, 0, len(c.Tags))
	for _, s := range c.Tags {
		t, err := domain.ParseTag(s)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// Validate checks the plan against reg without building anything that runs.
// All problems are reported together.
func (p *Plan) Validate(reg *registry.Registry) error {
	var errs []error
	if p.Budget < 0 {
		errs = append(errs, fmt.Errorf("%w: %s", domain.ErrInvalidBudget, p.Budget))
	}
	if p.Period < 0 {
		errs = append(errs, fmt.Errorf("period must not be negative: %s", p.Period))
	}
	if _, err := domain.ParseResumePolicy(p.ResumePolicy); err != nil {
		errs = append(errs, err)
	}

	if p.Default.Behavior == "" {
		errs = append(errs, domain.ErrNoDefaultBehavior)
	} else if !reg.Has(p.Default.Behavior) {
		errs = append(errs, fmt.Errorf("default: %w: %s", registry.ErrUnknownBehavior, p.Default.Behavior))
	}

	seen := make(map[string]bool, len(p.Commands))
	for i, c := range p.Commands {
		label := c.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		if err := c.validate(reg); err != nil {
			errs = append(errs, fmt.Errorf("command %s: %w", label, err))
		}
		if c.Name == "" {
			continue
		}
		if seen[c.Name] || c.Name == domain.DefaultCommandName {
			errs = append(errs, fmt.Errorf("%w: %q", domain.ErrDuplicateCommand, c.Name))
		}
		seen[c.Name] = true
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidPlan, errors.Join(errs...))
}

func (c CommandSpec) validate(reg *registry.Registry) error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, domain.ErrUnnamedCommand)
	}
	if c.Behavior == "" {
		errs = append(errs, domain.ErrNilBehavior)
	} else if !reg.Has(c.Behavior) {
		errs = append(errs, fmt.Errorf("%w: %s", registry.ErrUnknownBehavior, c.Behavior))
	}
	if len(c.When) == 0 {
		errs = append(errs, domain.ErrNoConditions)
	}
	for _, src := range c.When {
		if _, err := compile(src); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := c.ParsedMode(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.ParsedTags(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
