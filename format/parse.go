package format

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/wippyai/structfmt/errors"
)

// MaxRepeat bounds a single repeat count.
const MaxRepeat = 1 << 30

// formatGrammar is the participle grammar for format strings.
// Examples: "<2if?", "@bhl 3s", "i2`Inner`"
//
//nolint:govet // participle grammar tags are not standard struct tags
type formatGrammar struct {
	Modifier *modifierGrammar `parser:"@@?"`
	Codes    []*codeGrammar   `parser:"@@*"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type modifierGrammar struct {
	Pos  lexer.Position
	Char string `parser:"@Modifier"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type codeGrammar struct {
	Pos  lexer.Position
	Text string `parser:"@Code"`
}

// formatLexer tokenizes a whole code (repeat and type) as one token, so a
// space between the two never lexes.
var formatLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Modifier", Pattern: `[@=<>!]`},
	{Name: "Code", Pattern: "[0-9]*(?:[x?bBhHiIlLqQnNfds]|`[A-Za-z]+`)"},
	{Name: "Space", Pattern: ` +`},
})

var formatParser = participle.MustBuild[formatGrammar](
	participle.Lexer(formatLexer),
	participle.Elide("Space"),
)

// Parse parses a format string.
func Parse(source string) (*Spec, error) {
	spec := &Spec{Source: source, Mode: ModeNative}
	if strings.Trim(source, " ") == "" {
		return spec, nil
	}

	parsed, err := formatParser.ParseString("", source)
	if err != nil {
		return nil, malformed(source, err)
	}

	if parsed.Modifier != nil {
		if off := parsed.Modifier.Pos.Offset; off != 0 {
			return nil, errors.MalformedFormat(source, Span{Start: off, End: off + 1},
				"byte-order modifier must come first", nil)
		}
		spec.Mode, _ = ModeFor(parsed.Modifier.Char[0])
		spec.Explicit = true
	}

	spec.Codes = make([]Code, 0, len(parsed.Codes))
	for _, c := range parsed.Codes {
		code, err := decodeCode(source, c)
		if err != nil {
			return nil, err
		}
		spec.Codes = append(spec.Codes, code)
	}
	return spec, nil
}

// MustParse is like Parse but panics on error.
func MustParse(source string) *Spec {
	spec, err := Parse(source)
	if err != nil {
		panic(err)
	}
	return spec
}

func decodeCode(source string, c *codeGrammar) (Code, error) {
	text := c.Text
	off := c.Pos.Offset
	code := Code{
		Span:   Span{Start: off, End: off + len(text)},
		Repeat: 1,
	}

	digits := 0
	for digits < len(text) && text[digits] >= '0' && text[digits] <= '9' {
		digits++
	}
	if digits > 0 {
		n, err := strconv.Atoi(text[:digits])
		if err != nil || n > MaxRepeat {
			return Code{}, errors.MalformedFormat(source, Span{Start: off, End: off + digits},
				fmt.Sprintf("repeat count exceeds %d", MaxRepeat), nil)
		}
		code.Repeat = n
		code.Counted = true
	}

	rest := text[digits:]
	if rest[0] == '`' {
		code.Tag = TagNested
		code.Name = rest[1 : len(rest)-1]
		return code, nil
	}
	code.Tag, _ = TagFor(rest[0])
	return code, nil
}

// malformed converts a participle error into a MalformedFormat error
// pointing at the first byte the grammar could not accept.
func malformed(source string, err error) *errors.Error {
	perr, ok := err.(participle.Error)
	if !ok {
		return errors.MalformedFormat(source, Span{End: len(source)}, "invalid format", err)
	}
	off := perr.Position().Offset
	detail, span := describe(source, off)
	return errors.MalformedFormat(source, span, detail, err)
}

func describe(source string, off int) (string, Span) {
	if off >= len(source) {
		return "unexpected end of format", Span{Start: len(source), End: len(source)}
	}

	start := off
	for off < len(source) && source[off] >= '0' && source[off] <= '9' {
		off++
	}
	if off > start {
		switch {
		case off == len(source):
			return "repeat count without a type character", Span{Start: start, End: off}
		case source[off] == ' ':
			return "space between repeat count and type character", Span{Start: start, End: off + 1}
		}
	}

	c := source[off]
	switch {
	case c == '`':
		end := strings.IndexByte(source[off+1:], '`')
		if end < 0 {
			return "unterminated struct name", Span{Start: off, End: len(source)}
		}
		return "struct name must be one or more letters", Span{Start: off, End: off + end + 2}
	case strings.IndexByte("@=<>!", c) >= 0:
		return "byte-order modifier must come first", Span{Start: off, End: off + 1}
	}
	r, width := utf8.DecodeRuneInString(source[off:])
	return fmt.Sprintf("unknown type character %q", r), Span{Start: off, End: off + width}
}
