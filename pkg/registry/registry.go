package registry

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/routine/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Factory builds a fresh behavior from plan parameters.
// Every call must return a new instance: behaviors carry per-command state.
type Factory func(params map[string]any) (domain.Behavior, error)

// Registry manages the available behaviors by name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	logger    *slog.Logger
}

// Option configures the Registry.
type Option func(*Registry)

// WithLogger sets the logger handed to built-in behaviors that log.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates a new empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewDefault creates a registry with the built-in behaviors registered.
func NewDefault(opts ...Option) *Registry {
	r := NewRegistry(opts...)
	r.registerBuiltins()
	return r
}

// Register adds a factory to the registry.
// If a factory with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = fn
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build looks up a factory by name and builds a behavior.
// Returns ErrUnknownBehavior if the name is not registered.
func (r *Registry) Build(name string, params map[string]any) (domain.Behavior, error) {
	r.mu.RLock()
	fn, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBehavior, name)
	}

	b, err := fn(params)
	if err != nil {
		return nil, fmt.Errorf("behavior %s: %w", name, err)
	}
	if b == nil {
		return nil, fmt.Errorf("behavior %s: %w", name, domain.ErrNilBehavior)
	}
	return b, nil
}

// DecodeParams decodes plan parameters into a typed config struct using
// "mapstructure" tags. Unknown keys are rejected and scalar types are coerced
// (YAML "3" decodes into an int field).
func DecodeParams(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}
