package structfmt

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/structfmt/layout"
)

// Compiler memoizes compiled formats. It is safe for concurrent use.
type Compiler struct {
	opts  options
	cache sync.Map // format source -> *Struct
}

// NewCompiler creates a compiler; opts apply to every Compile call, so the
// format source alone keys the cache.
func NewCompiler(opts ...Option) *Compiler {
	return &Compiler{opts: buildOptions(opts)}
}

// Compile returns the cached Struct for source, compiling it on first use.
// Failures are not cached.
func (c *Compiler) Compile(source string) (*Struct, error) {
	if cached, ok := c.cache.Load(source); ok {
		return cached.(*Struct), nil
	}

	s, err := compile(source, c.opts)
	if err != nil {
		return nil, err
	}

	actual, loaded := c.cache.LoadOrStore(source, s)
	if !loaded {
		Logger().Debug("format cached",
			zap.String("format", source),
			zap.String("platform", c.Platform().Name))
	}
	return actual.(*Struct), nil
}

// MustCompile is like Compile but panics on error.
func (c *Compiler) MustCompile(source string) *Struct {
	s, err := c.Compile(source)
	if err != nil {
		panic(err)
	}
	return s
}

// Platform returns the platform native formats are laid out for.
func (c *Compiler) Platform() layout.Platform {
	if c.opts.platform != nil {
		return *c.opts.platform
	}
	return layout.Host
}
