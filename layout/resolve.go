package layout

import (
	"fmt"

	"github.com/wippyai/structfmt/errors"
	"github.com/wippyai/structfmt/format"
	"github.com/wippyai/structfmt/internal/abi"
)

const (
	// MaxSize bounds the byte size of a layout.
	MaxSize = 1 << 30
	// MaxEntries bounds the number of entries a layout expands to.
	MaxEntries = 1 << 20
)

// Resolver looks up nested struct layouts by name.
type Resolver interface {
	Lookup(name string) (*Layout, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(name string) (*Layout, error)

func (f ResolverFunc) Lookup(name string) (*Layout, error) {
	return f(name)
}

// Option configures Resolve.
type Option func(*config)

type config struct {
	platform Platform
}

// WithPlatform selects the C ABI for native-mode layouts. Default is Host.
func WithPlatform(p Platform) Option {
	return func(c *config) {
		c.platform = p
	}
}

// Resolve computes the layout of spec. Nested struct names are looked up
// through r, which may be nil when spec has none.
func Resolve(spec *format.Spec, r Resolver, opts ...Option) (*Layout, error) {
	cfg := config{platform: Host}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := calculator{
		spec:     spec,
		resolver: r,
		platform: cfg.platform,
		aligned:  spec.Mode.Aligned(),
		maxAlign: 1,
	}
	if err := c.run(); err != nil {
		return nil, err
	}

	size := c.offset
	if c.aligned {
		c.pad(abi.AlignTo(c.offset, c.maxAlign))
		size = c.offset
	}
	if size > MaxSize {
		return nil, errors.Overflow(errors.PhaseResolve, nil,
			fmt.Sprintf("layout size %d exceeds %d", size, MaxSize))
	}

	align := 1
	if c.aligned {
		align = c.maxAlign
	}
	return &Layout{
		spec:     spec,
		platform: cfg.platform,
		order:    spec.Mode.ByteOrder(cfg.platform.ByteOrder),
		entries:  c.entries,
		fields:   c.fields,
		size:     size,
		align:    align,
		slots:    c.slot,
	}, nil
}

type calculator struct {
	spec     *format.Spec
	resolver Resolver
	entries  []Entry
	fields   []FieldInfo
	platform Platform
	offset   int
	maxAlign int
	slot     int
	aligned  bool
}

func (c *calculator) run() error {
	c.entries = make([]Entry, 0, len(c.spec.Codes))
	c.fields = make([]FieldInfo, 0, len(c.spec.Codes))

	for i, code := range c.spec.Codes {
		size, align, nested, err := c.element(i, code)
		if err != nil {
			return err
		}
		if !c.aligned {
			align = 1
		}

		start := c.offset
		c.pad(abi.AlignTo(c.offset, align))
		c.maxAlign = max(c.maxAlign, align)
		fieldStart := c.offset

		total, ok := abi.SafeMul(code.Repeat, size)
		if ok {
			total, ok = abi.SafeAdd(c.offset, total)
		}
		if !ok || total > MaxSize {
			return c.spanned(errors.Overflow(errors.PhaseResolve, codePath(i),
				fmt.Sprintf("layout size exceeds %d bytes", MaxSize)), code)
		}

		switch {
		case code.Repeat == 0:
			// zero-length: alignment only
		case code.Tag == format.TagPad:
			c.add(Entry{Code: i, Tag: code.Tag, Size: code.Repeat, Align: 1, Slot: -1})
		case code.Tag == format.TagBytes:
			c.add(Entry{Code: i, Tag: code.Tag, Size: code.Repeat, Align: 1, Slot: c.slot})
			c.slot++
		default:
			if len(c.entries)+code.Repeat > MaxEntries {
				return c.spanned(errors.Overflow(errors.PhaseResolve, codePath(i),
					fmt.Sprintf("layout expands to more than %d fields", MaxEntries)), code)
			}
			for range code.Repeat {
				c.add(Entry{Code: i, Tag: code.Tag, Size: size, Align: align, Slot: c.slot, Nested: nested})
				c.slot++
			}
		}

		c.fields = append(c.fields, FieldInfo{
			Code:    code,
			Offset:  fieldStart,
			Padding: fieldStart - start,
			Size:    c.offset - fieldStart,
		})
	}
	return nil
}

// element returns the size and alignment of one element of code.
func (c *calculator) element(i int, code format.Code) (int, int, *Layout, error) {
	if code.Tag == format.TagNested {
		nested, err := c.lookup(i, code)
		if err != nil {
			return 0, 0, nil, err
		}
		return nested.Size(), nested.Align(), nested, nil
	}

	if code.Tag.NativeOnly() && !c.spec.Mode.NativeSizes() {
		return 0, 0, nil, c.spanned(errors.ModeMismatch(codePath(i), code.Tag.String(), c.spec.Mode.Char()), code)
	}

	if c.spec.Mode.NativeSizes() {
		return c.platform.Size(code.Tag), c.platform.Align(code.Tag), nil, nil
	}
	return code.Tag.StandardSize(), 1, nil, nil
}

func (c *calculator) lookup(i int, code format.Code) (*Layout, error) {
	if c.resolver == nil {
		return nil, c.spanned(errors.UnknownStruct(errors.PhaseResolve, codePath(i), code.Name), code)
	}
	nested, err := c.resolver.Lookup(code.Name)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			return nil, e
		}
		return nil, c.spanned(errors.New(errors.PhaseResolve, errors.KindUnknownStruct).
			Path(codePath(i)...).
			Value(code.Name).
			Cause(err).
			Detail("lookup of struct %q failed", code.Name).
			Build(), code)
	}
	if nested == nil {
		return nil, c.spanned(errors.UnknownStruct(errors.PhaseResolve, codePath(i), code.Name), code)
	}
	return nested, nil
}

// pad advances to target, recording the gap as an implicit entry.
func (c *calculator) pad(target int) {
	if target > c.offset {
		c.add(Entry{Code: -1, Tag: format.TagPad, Size: target - c.offset, Align: 1, Slot: -1, Implicit: true})
	}
}

func (c *calculator) add(e Entry) {
	e.Offset = c.offset
	c.entries = append(c.entries, e)
	c.offset += e.Size
}

func (c *calculator) spanned(err *errors.Error, code format.Code) *errors.Error {
	span := code.Span
	err.Source = c.spec.Source
	err.Span = &span
	return err
}

func codePath(i int) []string {
	return []string{fmt.Sprintf("code[%d]", i)}
}
