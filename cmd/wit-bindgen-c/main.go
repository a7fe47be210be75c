// Command wit-bindgen-c lowers a resolved WIT document into C guest
// bindings for the WebAssembly Component Model canonical ABI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/bytecodealliance/wit-bindgen-c/cmd/wit-bindgen-c/cmd/generate"
	"github.com/bytecodealliance/wit-bindgen-c/internal/witcli"
)

func main() {
	cmd := &cli.Command{
		Name:  "wit-bindgen-c",
		Usage: "generate C bindings from a WIT (WebAssembly Interface Types) document",
		Commands: []*cli.Command{
			generate.Command,
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force-wit",
				Usage: "force loading WIT via wasm-tools",
			},
		},
		Version: witcli.Version(),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
