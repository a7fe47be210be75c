// Package generate implements the wit-bindgen-c "generate" subcommand.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/bytecodealliance/wit-bindgen-c/internal/oci"
	"github.com/bytecodealliance/wit-bindgen-c/internal/relpath"
	"github.com/bytecodealliance/wit-bindgen-c/internal/witcli"
	"github.com/bytecodealliance/wit-bindgen-c/wit"
	"github.com/bytecodealliance/wit-bindgen-c/wit/bindgen"
)

// Command is the CLI command for generate.
var Command = &cli.Command{
	Name:    "generate",
	Aliases: []string{"c"},
	Usage:   "generate C bindings from WIT (WebAssembly Interface Types)",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "world",
			Aliases:  []string{"w"},
			Value:    "",
			OnlyOnce: true,
			Config:   cli.StringConfig{TrimSpace: true},
			Usage:    "WIT world to generate, otherwise generate all worlds",
		},
		&cli.StringFlag{
			Name:      "out",
			Aliases:   []string{"o"},
			Value:     ".",
			TakesFile: true,
			OnlyOnce:  true,
			Config:    cli.StringConfig{TrimSpace: true},
			Usage:     "output directory",
		},
		&cli.StringFlag{
			Name:     "cm",
			Value:    "",
			OnlyOnce: true,
			Config:   cli.StringConfig{TrimSpace: true},
			Usage:    "unused; accepted for flag compatibility with wit-bindgen-go",
		},
		&cli.BoolFlag{
			Name:  "versioned",
			Usage: "file output under a per-package-version subdirectory",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "log progress to stderr",
		},
	},
	Action: action,
}

type config struct {
	out       string
	outPerm   os.FileMode
	world     string
	versioned bool
	forceWIT  bool
	verbose   bool
	path      string
}

func action(ctx context.Context, cmd *cli.Command) error {
	cfg, err := parseFlags(cmd)
	if err != nil {
		return err
	}
	log := witcli.Logger(cfg.verbose, false)

	res, err := loadWITModule(ctx, cfg)
	if err != nil {
		return err
	}

	targets, err := selectInterfaces(res, cfg.world)
	if err != nil {
		return err
	}
	log.Info("resolved targets", "count", len(targets))

	banner := generatedBanner(cfg.out)

	for _, t := range targets {
		header, impl, err := bindgen.Generate(res, t.iface, t.direction)
		if err != nil {
			return fmt.Errorf("generating %s: %w", t.name(), err)
		}
		header = append([]byte(banner), header...)
		impl = append([]byte(banner), impl...)
		if err := writeArtifacts(cfg, log, t, header, impl); err != nil {
			return err
		}
	}
	return nil
}

// generatedBanner returns the "Code generated... DO NOT EDIT" header
// prepended to every emitted file. When out sits inside a Go module (the
// common case: generated C bindings vendored into a cgo package) the
// banner names that module, resolved the same way the Go-target generator
// resolves an output directory's import path.
func generatedBanner(out string) string {
	comment := "/* Code generated by wit-bindgen-c. DO NOT EDIT. */\n"
	if modpath, err := witcli.ModulePath(out); err == nil {
		comment = fmt.Sprintf("/* Code generated by wit-bindgen-c for %s. DO NOT EDIT. */\n", modpath)
	}
	return comment
}

func parseFlags(cmd *cli.Command) (*config, error) {
	out, err := relpath.Abs(cmd.String("out"))
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(out)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", out)
	}

	path, err := witcli.LoadPath(cmd.Args().Slice()...)
	if err != nil {
		return nil, err
	}

	return &config{
		out:       out,
		outPerm:   info.Mode().Perm(),
		world:     cmd.String("world"),
		versioned: cmd.Bool("versioned"),
		forceWIT:  cmd.Bool("force-wit"),
		verbose:   cmd.Bool("verbose"),
		path:      path,
	}, nil
}

func loadWITModule(ctx context.Context, cfg *config) (*wit.Resolve, error) {
	if oci.IsOCIPath(cfg.path) {
		fmt.Fprintf(os.Stderr, "Fetching OCI artifact %s\n", cfg.path)
		buf, err := oci.PullWIT(ctx, cfg.path)
		if err != nil {
			return nil, err
		}
		return wit.ParseWIT(buf.Bytes())
	}
	return witcli.LoadWIT(ctx, cfg.forceWIT, cfg.path)
}

// target is one interface this invocation must emit bindings for, bound to
// the direction it plays in the world that referenced it.
type target struct {
	iface     *wit.Interface
	direction wit.Direction
}

func (t target) name() string {
	if t.iface.Name != nil {
		return *t.iface.Name
	}
	return "<anonymous>"
}

// selectInterfaces walks res.Worlds, collecting one target per interface
// reachable from a world's imports or exports. If world is non-empty, only
// the matching world is walked. An interface referenced from more than one
// world keeps the direction of the first world that reaches it.
func selectInterfaces(res *wit.Resolve, world string) ([]target, error) {
	var targets []target
	seen := make(map[*wit.Interface]bool)
	found := world == ""

	add := func(direction wit.Direction) func(string, wit.WorldItem) bool {
		return func(_ string, item wit.WorldItem) bool {
			if ref, ok := item.(*wit.InterfaceRef); ok && !seen[ref.Interface] {
				seen[ref.Interface] = true
				targets = append(targets, target{iface: ref.Interface, direction: direction})
			}
			return true
		}
	}

	for _, w := range res.Worlds {
		if world != "" && w.Name != world {
			continue
		}
		found = true
		w.Imports.All()(add(wit.Imported))
		w.Exports.All()(add(wit.Exported))
	}
	if !found {
		return nil, fmt.Errorf("world %q not found", world)
	}
	return targets, nil
}

func writeArtifacts(cfg *config, log *slog.Logger, t target, header, impl []byte) error {
	dir := cfg.out
	if cfg.versioned {
		if v := t.iface.WITPackage().Name.Version; v != nil {
			dir = filepath.Join(dir, "v"+v.String())
		}
	}
	if err := os.MkdirAll(dir, cfg.outPerm); err != nil {
		return err
	}

	base := kebabName(t.iface)
	hPath := filepath.Join(dir, base+".h")
	cPath := filepath.Join(dir, base+".c")

	if err := os.WriteFile(hPath, header, cfg.outPerm); err != nil {
		return err
	}
	log.Info("generated file", "path", relpath.Rel(cfg.out, hPath))
	if err := os.WriteFile(cPath, impl, cfg.outPerm); err != nil {
		return err
	}
	log.Info("generated file", "path", relpath.Rel(cfg.out, cPath))

	noteComponentTypeObject(log, t, base)
	return nil
}

// noteComponentTypeObject reminds the caller that "<iface>_component_type.o"
// is not produced here: the binary blob it holds, and the tool that embeds
// it, are an external collaborator this package doesn't implement or shell
// out to (see (*bindgen.Generator).linkingSymbol for the weak-reference
// symbol the implementation already emits for it to link against).
func noteComponentTypeObject(log *slog.Logger, t target, base string) {
	log.Info("component type object not generated; link it in separately",
		"interface", t.name(), "expected_file", base+"_component_type.o")
}

// kebabName returns the file-base name for iface. WIT interface
// identifiers are already kebab-case by convention.
func kebabName(iface *wit.Interface) string {
	if iface.Name == nil {
		return "iface"
	}
	return *iface.Name
}
