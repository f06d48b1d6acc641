package registry

import (
	"strings"
	"sync"
	"testing"

	"github.com/wippyai/structfmt/errors"
	"github.com/wippyai/structfmt/layout"
)

func TestDefine(t *testing.T) {
	r := New(WithPlatform(layout.LP64))

	if err := r.Define("Point", "ii"); err != nil {
		t.Fatalf("Define: %v", err)
	}
	if err := r.Define("Point", "hh"); !errors.Is(err, &errors.Error{Kind: errors.KindInvalidInput}) {
		t.Errorf("duplicate Define error = %v, want invalid input", err)
	}
	if err := r.Define("bad name", "i"); err == nil {
		t.Error("Define with invalid name should fail")
	}
	if err := r.Define("Broken", "3 i"); !errors.Is(err, errors.ErrMalformedFormat) {
		t.Errorf("Define with malformed format error = %v", err)
	}

	names := r.Names()
	if len(names) != 1 || names[0] != "Point" {
		t.Errorf("Names() = %v, want [Point]", names)
	}
	if spec, ok := r.Spec("Point"); !ok || spec.String() != "ii" {
		t.Errorf("Spec(Point) = %v, %v", spec, ok)
	}
}

func TestLayout_Nested(t *testing.T) {
	r := New(WithPlatform(layout.LP64))
	// reference before definition
	r.MustDefine("LowestTurtle", "i2`LowerTurtle`")
	r.MustDefine("LowerTurtle", "bQh")

	l, err := r.Layout("LowestTurtle")
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if l.Size() != 56 || l.Slots() != 3 {
		t.Errorf("LowestTurtle size/slots = %d/%d, want 56/3", l.Size(), l.Slots())
	}

	again, _ := r.Layout("LowestTurtle")
	if again != l {
		t.Error("Layout should return the cached layout")
	}

	lower, _ := r.Lookup("LowerTurtle")
	if l.EntryAt(2).Nested != lower {
		t.Error("nested entry should share the cached LowerTurtle layout")
	}
}

func TestLayout_Unknown(t *testing.T) {
	r := New()
	if _, err := r.Layout("Nope"); !errors.Is(err, errors.ErrUnknownStruct) {
		t.Errorf("error = %v, want unknown struct", err)
	}

	r.MustDefine("Outer", "i`Inner`")
	if _, err := r.Layout("Outer"); !errors.Is(err, errors.ErrUnknownStruct) {
		t.Errorf("error = %v, want unknown struct", err)
	}
	if err := r.Check(); err == nil {
		t.Error("Check should report the missing struct")
	}

	r.MustDefine("Inner", "b")
	if _, err := r.Layout("Outer"); err != nil {
		t.Errorf("Layout after defining Inner: %v", err)
	}
}

func TestLayout_Cycles(t *testing.T) {
	tests := []struct {
		name  string
		defs  [][2]string
		start string
		chain string
	}{
		{"self", [][2]string{{"A", "i`A`"}}, "A", "A -> A"},
		{"mutual", [][2]string{{"A", "`B`"}, {"B", "h`A`"}}, "A", "A -> B -> A"},
		{"deep", [][2]string{{"A", "`B`"}, {"B", "`C`"}, {"C", "2`B`"}}, "A", "A -> B -> C -> B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			for _, d := range tt.defs {
				r.MustDefine(d[0], d[1])
			}
			_, err := r.Layout(tt.start)
			if !errors.Is(err, errors.ErrCyclicReference) {
				t.Fatalf("error = %v, want cyclic reference", err)
			}
			if !strings.Contains(err.Error(), tt.chain) {
				t.Errorf("error %q should contain chain %q", err, tt.chain)
			}
		})
	}

	t.Run("diamond is not a cycle", func(t *testing.T) {
		r := New(WithPlatform(layout.LP64))
		r.MustDefine("Leaf", "i")
		r.MustDefine("Left", "`Leaf`")
		r.MustDefine("Right", "`Leaf`")
		r.MustDefine("Top", "`Left``Right`")
		l, err := r.Layout("Top")
		if err != nil {
			t.Fatalf("Layout: %v", err)
		}
		if l.Size() != 8 {
			t.Errorf("Size() = %d, want 8", l.Size())
		}
	})
}

func TestLayout_Concurrent(t *testing.T) {
	r := New(WithPlatform(layout.Wasm32))
	r.MustDefine("Leaf", "bq")
	r.MustDefine("Tree", "3`Leaf`")

	var wg sync.WaitGroup
	results := make([]*layout.Layout, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l, err := r.Layout("Tree")
			if err != nil {
				t.Errorf("Layout: %v", err)
				return
			}
			results[i] = l
		}(i)
	}
	wg.Wait()

	for i, l := range results {
		if l != results[0] {
			t.Errorf("result %d is a different layout instance", i)
		}
	}
	if results[0].Size() != 48 {
		t.Errorf("Size() = %d, want 48", results[0].Size())
	}
}

func TestLoadYAML(t *testing.T) {
	r, err := LoadFile("testdata/turtles.yaml")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if r.Platform().Name != "lp64" {
		t.Errorf("Platform = %q, want lp64", r.Platform().Name)
	}
	names := r.Names()
	want := []string{"LowestTurtle", "LowerTurtle", "Header"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("Names() = %v, want %v", names, want)
	}
	l, err := r.Layout("Header")
	if err != nil || l.Size() != 12 {
		t.Errorf("Header = %v, %v; want 12 bytes", l, err)
	}

	t.Run("option overrides file platform", func(t *testing.T) {
		r, err := LoadFile("testdata/turtles.yaml", WithPlatform(layout.Wasm32))
		if err != nil {
			t.Fatalf("LoadFile: %v", err)
		}
		if r.Platform().Name != "wasm32" {
			t.Errorf("Platform = %q, want wasm32", r.Platform().Name)
		}
	})
}

func TestLoadYAML_Errors(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		detail string
	}{
		{"unknown platform", "platform: vax\n", "unknown platform"},
		{"unknown key", "platfrom: lp64\n", "decode definitions"},
		{"structs not mapping", "structs: [a, b]\n", "must be a mapping"},
		{"format not string", "structs:\n  A: [1]\n", "format must be a string"},
		{"bad format", "structs:\n  A: \"3 i\"\n", `struct "A" (line 2)`},
		{"dangling reference", "structs:\n  A: \"`B`\"\n", "resolve definitions"},
		{"cycle", "structs:\n  A: \"`A`\"\n", "resolve definitions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadYAML(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatal("LoadYAML should fail")
			}
			e, ok := err.(*errors.Error)
			if !ok || e.Phase != errors.PhaseLoad {
				t.Fatalf("error = %v, want load phase error", err)
			}
			if !strings.Contains(err.Error(), tt.detail) {
				t.Errorf("error %q should contain %q", err, tt.detail)
			}
		})
	}

	t.Run("cause is preserved", func(t *testing.T) {
		_, err := LoadYAML(strings.NewReader("structs:\n  A: \"`A`\"\n"))
		if !errors.Is(err, errors.ErrCyclicReference) {
			t.Errorf("error = %v, should wrap cyclic reference", err)
		}
	})
}

func TestLoadYAML_Empty(t *testing.T) {
	r, err := LoadYAML(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	if len(r.Names()) != 0 {
		t.Errorf("Names() = %v, want none", r.Names())
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile("testdata/missing.yaml"); err == nil {
		t.Error("LoadFile of a missing file should fail")
	}
}
