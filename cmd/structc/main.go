// Command structc inspects, packs and unpacks binary struct formats.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/wippyai/structfmt"
	"github.com/wippyai/structfmt/layout"
	"github.com/wippyai/structfmt/registry"
)

// CLI defines the command-line interface for structc.
type CLI struct {
	Globals

	Layout  LayoutCmd  `cmd:"" help:"Print the byte layout of a format"`
	Pack    PackCmd    `cmd:"" help:"Pack values and print the bytes as hex"`
	Unpack  UnpackCmd  `cmd:"" help:"Unpack hex bytes and print the values"`
	Wit     WitCmd     `cmd:"" help:"Print the WIT record for a format"`
	Explore ExploreCmd `cmd:"" help:"Edit a format interactively and watch its layout"`
}

// Globals holds the flags shared by every command.
type Globals struct {
	Out      io.Writer           `kong:"-"`
	compiler *structfmt.Compiler `kong:"-"`
	Defs     string              `name:"defs" short:"d" help:"YAML file of named struct definitions" type:"existingfile"`
	Platform string              `name:"platform" short:"p" help:"Platform for native layouts (host, lp64, llp64, ilp32, i386, wasm32)"`
	Verbose  bool                `name:"verbose" short:"v" help:"Log layout compilation"`
}

// compile builds source with the registry and platform the flags select.
func (g *Globals) compile(source string) (*structfmt.Struct, error) {
	if g.compiler == nil {
		c, err := g.newCompiler()
		if err != nil {
			return nil, err
		}
		g.compiler = c
	}
	return g.compiler.Compile(source)
}

func (g *Globals) newCompiler() (*structfmt.Compiler, error) {
	var opts []structfmt.Option
	var regOpts []registry.Option
	if g.Platform != "" {
		p, ok := layout.PlatformByName(g.Platform)
		if !ok {
			return nil, fmt.Errorf("unknown platform %q (known: %v)", g.Platform, layout.PlatformNames())
		}
		opts = append(opts, structfmt.WithPlatform(p))
		regOpts = append(regOpts, registry.WithPlatform(p))
	}
	if g.Defs != "" {
		reg, err := registry.LoadFile(g.Defs, regOpts...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, structfmt.WithRegistry(reg))
	}
	return structfmt.NewCompiler(opts...), nil
}

func run(args []string, out io.Writer) error {
	cli := CLI{Globals: Globals{Out: out}}
	parser, err := kong.New(&cli,
		kong.Name("structc"),
		kong.Description("Binary struct layout compiler"),
		kong.UsageOnError(),
		kong.Writers(out, out),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	if cli.Verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer logger.Sync()
		structfmt.SetLogger(logger)
		registry.SetLogger(logger)
	}
	return ctx.Run(&cli.Globals)
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
