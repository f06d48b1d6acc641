package registry

import (
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/structfmt/errors"
	"github.com/wippyai/structfmt/format"
	"github.com/wippyai/structfmt/layout"
)

// Registry maps struct names to formats. It is safe for concurrent use.
type Registry struct {
	specs    map[string]*format.Spec
	layouts  map[string]*layout.Layout
	order    []string
	platform layout.Platform
	mu       sync.RWMutex
}

// Option configures a Registry.
type Option func(*Registry)

// WithPlatform selects the C ABI for native-mode definitions. Default is
// layout.Host.
func WithPlatform(p layout.Platform) Option {
	return func(r *Registry) {
		r.platform = p
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		specs:    make(map[string]*format.Spec),
		layouts:  make(map[string]*layout.Layout),
		platform: layout.Host,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Define registers a struct. The format is parsed immediately; nested
// references are resolved on first use, so definitions may come in any
// order.
func (r *Registry) Define(name, source string) error {
	if !format.ValidName(name) {
		return errors.InvalidInput(errors.PhaseRegistry,
			fmt.Sprintf("struct name %q must be one or more ASCII letters", name))
	}
	spec, err := format.Parse(source)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.specs[name]; exists {
		return errors.InvalidInput(errors.PhaseRegistry, fmt.Sprintf("struct %q already defined", name))
	}
	r.specs[name] = spec
	r.order = append(r.order, name)

	Logger().Debug("struct defined",
		zap.String("name", name),
		zap.String("format", spec.String()))
	return nil
}

// MustDefine is like Define but panics on error.
func (r *Registry) MustDefine(name, source string) *Registry {
	if err := r.Define(name, source); err != nil {
		panic(err)
	}
	return r
}

// Names returns the defined names in definition order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Spec returns the parsed format of a struct.
func (r *Registry) Spec(name string) (*format.Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[name]
	return spec, ok
}

// Platform returns the platform definitions are resolved for.
func (r *Registry) Platform() layout.Platform {
	return r.platform
}

// Layout resolves a struct, caching the result.
func (r *Registry) Layout(name string) (*layout.Layout, error) {
	return r.resolve(name, nil)
}

// Lookup implements layout.Resolver.
func (r *Registry) Lookup(name string) (*layout.Layout, error) {
	return r.resolve(name, nil)
}

// Check resolves every definition and returns the first failure in
// definition order.
func (r *Registry) Check() error {
	for _, name := range r.Names() {
		if _, err := r.resolve(name, nil); err != nil {
			return err
		}
	}
	return nil
}

// resolve computes the layout of name. chain holds the structs currently
// being resolved above it and detects by-value cycles.
func (r *Registry) resolve(name string, chain []string) (*layout.Layout, error) {
	r.mu.RLock()
	cached, ok := r.layouts[name]
	spec, defined := r.specs[name]
	r.mu.RUnlock()

	if ok {
		return cached, nil
	}
	if !defined {
		return nil, errors.UnknownStruct(errors.PhaseRegistry, chain, name)
	}
	if slices.Contains(chain, name) {
		return nil, errors.CyclicReference(append(slices.Clone(chain), name))
	}

	chain = append(slices.Clone(chain), name)
	nested := layout.ResolverFunc(func(ref string) (*layout.Layout, error) {
		return r.resolve(ref, chain)
	})
	l, err := layout.Resolve(spec, nested, layout.WithPlatform(r.platform))
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if existing, ok := r.layouts[name]; ok {
		l = existing
	} else {
		r.layouts[name] = l
	}
	r.mu.Unlock()

	Logger().Debug("struct resolved",
		zap.String("name", name),
		zap.String("platform", r.platform.Name),
		zap.Int("size", l.Size()),
		zap.Int("align", l.Align()))
	return l, nil
}
