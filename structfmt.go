package structfmt

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/wippyai/structfmt/codec"
	"github.com/wippyai/structfmt/errors"
	"github.com/wippyai/structfmt/format"
	"github.com/wippyai/structfmt/layout"
	"github.com/wippyai/structfmt/registry"
)

// Option configures Compile.
type Option func(*options)

type options struct {
	resolver layout.Resolver
	registry *registry.Registry
	platform *layout.Platform
}

// WithRegistry resolves nested struct names through reg. Unless
// WithPlatform is also given, the registry's platform is used. A format
// that references registry structs must be compiled for the registry's
// ABI.
func WithRegistry(reg *registry.Registry) Option {
	return func(o *options) {
		o.resolver = reg
		o.registry = reg
		if o.platform == nil {
			p := reg.Platform()
			o.platform = &p
		}
	}
}

// WithResolver resolves nested struct names through r.
func WithResolver(r layout.Resolver) Option {
	return func(o *options) {
		o.resolver = r
		o.registry = nil
	}
}

// WithPlatform selects the C ABI for native-mode formats. Combined with
// WithRegistry, formats that reference registry structs fail unless the
// registry uses the same ABI.
func WithPlatform(p layout.Platform) Option {
	return func(o *options) {
		o.platform = &p
	}
}

func buildOptions(opts []Option) options {
	var o options
	// WithPlatform wins over a registry's platform regardless of order.
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Struct is a compiled format. It is immutable and safe for concurrent use.
type Struct struct {
	layout *layout.Layout
}

// Compile parses and lays out a format string.
func Compile(source string, opts ...Option) (*Struct, error) {
	o := buildOptions(opts)
	return compile(source, o)
}

func compile(source string, o options) (*Struct, error) {
	spec, err := format.Parse(source)
	if err != nil {
		return nil, err
	}
	var lopts []layout.Option
	if o.platform != nil {
		if o.registry != nil && len(spec.References()) > 0 && !o.platform.SameABI(o.registry.Platform()) {
			return nil, errors.InvalidInput(errors.PhaseResolve, fmt.Sprintf(
				"platform %s does not match registry platform %s; nested structs would mix ABIs",
				o.platform.Name, o.registry.Platform().Name))
		}
		lopts = append(lopts, layout.WithPlatform(*o.platform))
	}
	l, err := layout.Resolve(spec, o.resolver, lopts...)
	if err != nil {
		return nil, err
	}

	Logger().Debug("format compiled",
		zap.String("format", spec.String()),
		zap.Stringer("mode", spec.Mode),
		zap.String("platform", l.Platform().Name),
		zap.Int("size", l.Size()),
		zap.Int("slots", l.Slots()))
	return &Struct{layout: l}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(source string, opts ...Option) *Struct {
	s, err := Compile(source, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// FromLayout wraps an already resolved layout.
func FromLayout(l *layout.Layout) *Struct {
	return &Struct{layout: l}
}

func (s *Struct) Layout() *layout.Layout { return s.layout }

// Size is the packed size in bytes.
func (s *Struct) Size() int { return s.layout.Size() }

func (s *Struct) Align() int { return s.layout.Align() }

// Slots is the number of values Pack takes.
func (s *Struct) Slots() int { return s.layout.Slots() }

// Format returns the source format string.
func (s *Struct) Format() string { return s.layout.Format() }

// Fields describes each code of the format.
func (s *Struct) Fields() []layout.FieldInfo { return s.layout.Fields() }

func (s *Struct) String() string { return s.layout.String() }

// Pack encodes values, one per slot.
func (s *Struct) Pack(values ...any) ([]byte, error) {
	return codec.Pack(s.layout, values)
}

// PackInto encodes values into dst, which must be exactly Size() bytes.
func (s *Struct) PackInto(dst []byte, values ...any) error {
	return codec.PackInto(s.layout, dst, values)
}

// Unpack decodes a buffer of exactly Size() bytes.
func (s *Struct) Unpack(buf []byte) ([]any, error) {
	return codec.Unpack(s.layout, buf)
}

// UnpackPrefix decodes the first Size() bytes of buf.
func (s *Struct) UnpackPrefix(buf []byte) ([]any, error) {
	return codec.UnpackPrefix(s.layout, buf)
}

// UnpackAll decodes buf as consecutive records.
func (s *Struct) UnpackAll(buf []byte) ([][]any, error) {
	return codec.UnpackAll(s.layout, buf)
}

// ReadValues reads exactly one record from r. It returns io.EOF unwrapped
// when r is exhausted before the first byte. Zero-size layouts are
// rejected since they would never reach io.EOF.
func (s *Struct) ReadValues(r io.Reader) ([]any, error) {
	if s.layout.Size() == 0 {
		return nil, errors.InvalidInput(errors.PhaseUnpack, "cannot read zero-size records from a stream")
	}
	buf := make([]byte, s.layout.Size())
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return nil, errors.New(errors.PhaseUnpack, errors.KindBufferSizeMismatch).
				Cause(err).
				Detail("record truncated, layout needs %d bytes", s.layout.Size()).
				Build()
		}
		return nil, errors.Wrap(errors.PhaseUnpack, errors.KindInvalidInput, err, "read record")
	}
	return codec.Unpack(s.layout, buf)
}

// WriteValues packs values and writes the record to w.
func (s *Struct) WriteValues(w io.Writer, values ...any) error {
	buf, err := codec.Pack(s.layout, values)
	if err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return errors.Wrap(errors.PhasePack, errors.KindInvalidInput, err, "write record")
	}
	return nil
}
