package registry

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/structfmt/errors"
	"github.com/wippyai/structfmt/layout"
)

// document is the definitions file schema.
type document struct {
	Platform string    `yaml:"platform"`
	Structs  yaml.Node `yaml:"structs"`
}

// LoadYAML reads definitions and checks that every struct resolves. The
// file's platform applies first, so a WithPlatform option overrides it.
func LoadYAML(in io.Reader, opts ...Option) (*Registry, error) {
	dec := yaml.NewDecoder(in)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, errors.Load("decode definitions", err)
	}

	if doc.Platform != "" {
		p, ok := layout.PlatformByName(doc.Platform)
		if !ok {
			return nil, errors.Load(fmt.Sprintf("unknown platform %q", doc.Platform), nil)
		}
		opts = append([]Option{WithPlatform(p)}, opts...)
	}
	r := New(opts...)

	switch doc.Structs.Kind {
	case 0:
	case yaml.MappingNode:
		content := doc.Structs.Content
		for i := 0; i+1 < len(content); i += 2 {
			key, val := content[i], content[i+1]
			if val.Kind != yaml.ScalarNode {
				return nil, errors.Load(fmt.Sprintf("struct %q (line %d): format must be a string", key.Value, val.Line), nil)
			}
			if err := r.Define(key.Value, val.Value); err != nil {
				return nil, errors.Load(fmt.Sprintf("struct %q (line %d)", key.Value, key.Line), err)
			}
		}
	default:
		return nil, errors.Load(fmt.Sprintf("structs (line %d) must be a mapping of name to format", doc.Structs.Line), nil)
	}

	if err := r.Check(); err != nil {
		return nil, errors.Load("resolve definitions", err)
	}

	Logger().Debug("definitions loaded",
		zap.String("platform", r.platform.Name),
		zap.Int("structs", len(r.Names())))
	return r, nil
}

// LoadFile reads definitions from a YAML file.
func LoadFile(path string, opts ...Option) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Load("open definitions file", err)
	}
	defer f.Close()
	return LoadYAML(f, opts...)
}
