package format

import (
	"strconv"
	"strings"

	"github.com/wippyai/structfmt/errors"
)

// Span is a half-open byte range of the format source.
type Span = errors.Span

// Code is one parsed format code.
type Code struct {
	Name    string // struct name for TagNested
	Span    Span
	Repeat  int
	Tag     Tag
	Counted bool // repeat count was written explicitly
}

func (c Code) String() string {
	var b strings.Builder
	if c.Counted {
		b.WriteString(strconv.Itoa(c.Repeat))
	}
	if c.Tag == TagNested {
		b.WriteByte('`')
		b.WriteString(c.Name)
		b.WriteByte('`')
	} else {
		b.WriteByte(c.Tag.Char())
	}
	return b.String()
}

// Spec is a parsed format string. It is immutable once returned by Parse.
type Spec struct {
	Source   string
	Codes    []Code
	Mode     Mode
	Explicit bool // modifier was written
}

// String returns the canonical form: the modifier if one was written and
// the codes without spaces.
func (s *Spec) String() string {
	var b strings.Builder
	if s.Explicit {
		b.WriteByte(s.Mode.Char())
	}
	for _, c := range s.Codes {
		b.WriteString(c.String())
	}
	return b.String()
}

// References returns the distinct nested struct names in order of first use.
func (s *Spec) References() []string {
	var names []string
	seen := make(map[string]struct{})
	for _, c := range s.Codes {
		if c.Tag != TagNested {
			continue
		}
		if _, ok := seen[c.Name]; ok {
			continue
		}
		seen[c.Name] = struct{}{}
		names = append(names, c.Name)
	}
	return names
}

// Concat joins format fragments into one source. A modifier is only valid
// at the start of the first fragment.
func Concat(fragments ...string) string {
	return strings.Join(fragments, "")
}

// ValidName reports whether name can be referenced from a format string.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
