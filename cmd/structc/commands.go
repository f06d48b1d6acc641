package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wippyai/structfmt/errors"
	"github.com/wippyai/structfmt/format"
	"github.com/wippyai/structfmt/layout"
	"github.com/wippyai/structfmt/witlayout"
)

// LayoutCmd prints the entry table of a format.
type LayoutCmd struct {
	Format string `arg:"" help:"Format string, e.g. '@bhl'"`
}

func (c *LayoutCmd) Run(g *Globals) error {
	s, err := g.compile(c.Format)
	if err != nil {
		return err
	}
	writeLayout(g.Out, s.Layout())
	return nil
}

// PackCmd packs leaf values, nested structs flattened in order.
type PackCmd struct {
	Format string   `arg:"" help:"Format string"`
	Values []string `arg:"" optional:"" help:"One value per leaf field"`
}

func (c *PackCmd) Run(g *Globals) error {
	s, err := g.compile(c.Format)
	if err != nil {
		return err
	}
	l := s.Layout()
	if want := leafCount(l); len(c.Values) != want {
		return errors.New(errors.PhasePack, errors.KindArityMismatch).
			Value(len(c.Values)).
			Detail("got %d values, %q takes %d", len(c.Values), l.Format(), want).
			Build()
	}
	values, _, err := parseValues(l, c.Values, nil)
	if err != nil {
		return err
	}
	buf, err := s.Pack(values...)
	if err != nil {
		return err
	}
	fmt.Fprintln(g.Out, hex.EncodeToString(buf))
	return nil
}

// UnpackCmd decodes hex bytes.
type UnpackCmd struct {
	Format string `arg:"" help:"Format string"`
	Hex    string `arg:"" help:"Hex bytes; whitespace is ignored"`
	All    bool   `name:"all" short:"a" help:"Decode consecutive records"`
}

func (c *UnpackCmd) Run(g *Globals) error {
	s, err := g.compile(c.Format)
	if err != nil {
		return err
	}
	buf, err := hex.DecodeString(strings.Join(strings.Fields(c.Hex), ""))
	if err != nil {
		return errors.Wrap(errors.PhaseUnpack, errors.KindInvalidInput, err, "decode hex")
	}

	if !c.All {
		values, err := s.Unpack(buf)
		if err != nil {
			return err
		}
		writeValues(g.Out, s.Layout(), values, "")
		return nil
	}

	records, err := s.UnpackAll(buf)
	if err != nil {
		return err
	}
	for i, values := range records {
		if i > 0 {
			fmt.Fprintln(g.Out)
		}
		fmt.Fprintf(g.Out, "record %d:\n", i)
		writeValues(g.Out, s.Layout(), values, "")
	}
	return nil
}

// WitCmd prints the WIT record for a format.
type WitCmd struct {
	Format string `arg:"" help:"Format string"`
	Name   string `name:"name" short:"n" default:"packed" help:"Record name"`
}

func (c *WitCmd) Run(g *Globals) error {
	s, err := g.compile(c.Format)
	if err != nil {
		return err
	}
	td, err := witlayout.Record(c.Name, s.Layout())
	if err != nil {
		return err
	}
	fmt.Fprint(g.Out, witlayout.Render(td))
	if err := witlayout.Compatible(s.Layout()); err != nil {
		fmt.Fprintf(g.Out, "\n// not canonical ABI compatible: %v\n", err)
	} else {
		fmt.Fprintln(g.Out, "\n// canonical ABI compatible")
	}
	return nil
}

// writeLayout prints l's entries, then each nested layout once.
func writeLayout(w io.Writer, l *layout.Layout) {
	seen := map[*layout.Layout]bool{l: true}
	writeTable(w, l)

	queue := []*layout.Layout{l}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range cur.Entries() {
			if e.Nested == nil || seen[e.Nested] {
				continue
			}
			seen[e.Nested] = true
			queue = append(queue, e.Nested)
			fmt.Fprintf(w, "\nstruct %s:\n", cur.Spec().Codes[e.Code].Name)
			writeTable(w, e.Nested)
		}
	}
}

func writeTable(w io.Writer, l *layout.Layout) {
	fmt.Fprintln(w, l.String())
	fmt.Fprintf(w, "%-8s%-6s%-6s%s\n", "OFFSET", "SIZE", "SLOT", "TYPE")
	for _, e := range l.Entries() {
		slot := "-"
		if e.Slot >= 0 {
			slot = strconv.Itoa(e.Slot)
		}
		fmt.Fprintf(w, "%-8d%-6d%-6s%s\n", e.Offset, e.Size, slot, entryType(l, e))
	}
}

func entryType(l *layout.Layout, e layout.Entry) string {
	switch {
	case e.Implicit:
		return "(padding)"
	case e.Tag == format.TagBytes:
		return "bytes[" + strconv.Itoa(e.Size) + "]"
	case e.Tag == format.TagNested:
		return "struct " + l.Spec().Codes[e.Code].Name
	}
	return e.Tag.String()
}

func leafCount(l *layout.Layout) int {
	n := 0
	for i := 0; i < l.NumEntries(); i++ {
		e := l.EntryAt(i)
		switch {
		case e.IsPadding():
		case e.Nested != nil:
			n += leafCount(e.Nested)
		default:
			n++
		}
	}
	return n
}

// parseValues converts leaf arguments to the Go values Pack expects and
// returns the arguments it did not consume.
func parseValues(l *layout.Layout, args []string, path []string) ([]any, []string, error) {
	values := make([]any, l.Slots())
	for i := 0; i < l.NumEntries(); i++ {
		e := l.EntryAt(i)
		if e.IsPadding() {
			continue
		}
		slotPath := append(path[:len(path):len(path)], "["+strconv.Itoa(e.Slot)+"]")
		if e.Nested != nil {
			nested, rest, err := parseValues(e.Nested, args, slotPath)
			if err != nil {
				return nil, nil, err
			}
			values[e.Slot], args = nested, rest
			continue
		}
		v, err := parseLeaf(e, args[0], slotPath)
		if err != nil {
			return nil, nil, err
		}
		values[e.Slot], args = v, args[1:]
	}
	return values, args, nil
}

func parseLeaf(e layout.Entry, s string, path []string) (any, error) {
	var (
		v   any
		err error
	)
	switch {
	case e.Tag == format.TagBytes:
		return []byte(s), nil
	case e.Tag == format.TagBool:
		v, err = strconv.ParseBool(s)
	case e.Tag.IsFloat():
		v, err = strconv.ParseFloat(s, 64)
	case e.Tag.IsSigned():
		v, err = strconv.ParseInt(s, 0, 64)
	default:
		v, err = strconv.ParseUint(s, 0, 64)
	}
	if err == nil {
		return v, nil
	}

	kind := errors.KindTypeMismatch
	if errors.Is(err, strconv.ErrRange) {
		kind = errors.KindValueOutOfRange
	}
	return nil, errors.New(errors.PhasePack, kind).
		Path(path...).
		GoType("string").
		Tag(e.Tag.String()).
		Value(s).
		Cause(err).
		Detail("cannot parse %q", s).
		Build()
}

// writeValues prints one line per leaf value, nested slots as [i].[j].
func writeValues(w io.Writer, l *layout.Layout, values []any, prefix string) {
	for i := 0; i < l.NumEntries(); i++ {
		e := l.EntryAt(i)
		if e.IsPadding() {
			continue
		}
		path := prefix + "[" + strconv.Itoa(e.Slot) + "]"
		if e.Nested != nil {
			writeValues(w, e.Nested, values[e.Slot].([]any), path+".")
			continue
		}
		fmt.Fprintf(w, "%-10s%-10s%s\n", path, entryType(l, e), formatValue(values[e.Slot]))
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case []byte:
		return strconv.Quote(string(x))
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}
