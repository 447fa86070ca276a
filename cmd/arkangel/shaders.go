package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/lonnibesancon/Arkangel/npr"
)

type shadersArgs struct {
	out      string
	compress bool
}

func createShadersCommand() *command {
	args := shadersArgs{}

	flags := flag.NewFlagSet("shaders", flag.ExitOnError)
	flags.StringVar(&args.out, "out", args.out, "export the built-in programs into this directory")
	flags.StringVar(&args.out, "o", args.out, "shorthand for out")
	flags.BoolVar(&args.compress, "lz4", args.compress, "write lz4 compressed .glsl.lz4 files")

	return &command{
		Name: "shaders",
		Help: "list or export the built-in programs",
		Run: func(self *command) {
			if args.out == "" {
				listShaders()
				return
			}
			harderr(exportShaders(args))
		},
		Flags: flags,
	}
}

func listShaders() {
	fetch := npr.EmbeddedSources()
	for _, name := range npr.BuiltinProgramNames() {
		src, err := fetch.Fetch(name)
		harderr(err)
		fmt.Printf("%-24s %6d bytes\n", name, len(src))
	}
}

func exportShaders(args shadersArgs) error {
	if err := os.MkdirAll(args.out, 0o755); err != nil {
		return err
	}
	fetch := npr.EmbeddedSources()
	for _, name := range npr.BuiltinProgramNames() {
		src, err := fetch.Fetch(name)
		if err != nil {
			return err
		}
		if err := writeShader(filepath.Join(args.out, name), src, args.compress); err != nil {
			return fmt.Errorf("export %s: %w", name, err)
		}
	}
	return nil
}

func writeShader(base, src string, compress bool) (err error) {
	path := base + ".glsl"
	if compress {
		path += ".lz4"
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	if compress {
		return npr.WriteCompressed(f, src)
	}
	_, err = f.WriteString(src)
	return err
}

type paramsArgs struct {
	paramArgs
}

func createParamsCommand() *command {
	args := paramsArgs{}

	flags := flag.NewFlagSet("params", flag.ExitOnError)
	registerParamFlags(flags, &args.paramArgs)

	return &command{
		Name: "params",
		Help: "print the resolved parameters as json",
		Run: func(self *command) {
			p, err := args.parameters()
			harderr(err)
			harderr(p.Save(os.Stdout))
		},
		Flags: flags,
	}
}
