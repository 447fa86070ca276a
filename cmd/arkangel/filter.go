package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.uber.org/multierr"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/lonnibesancon/Arkangel/npr"
	"github.com/lonnibesancon/Arkangel/surface"
)

type impl string

const (
	implGl impl = "gl"
	implSw impl = "software"
)

func (i *impl) String() string {
	return string(*i)
}

func (i *impl) Set(s string) error {
	switch impl(s) {
	case implGl:
		*i = implGl
	case implSw:
		*i = implSw
	default:
		return fmt.Errorf("%s is not a valid implementation", s)
	}
	return nil
}

// assignments collects repeated -set name=value flags.
type assignments []string

func (a *assignments) String() string {
	return strings.Join(*a, ",")
}

func (a *assignments) Set(s string) error {
	name, _, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("%q is not of the form name=value", s)
	}
	if _, known := npr.KindOf(name); !known {
		return fmt.Errorf("%w: %q", npr.ErrUnknownParameter, name)
	}
	*a = append(*a, s)
	return nil
}

type paramArgs struct {
	file string
	loa  int
	ee   int
	sets assignments
}

func registerParamFlags(flags *flag.FlagSet, args *paramArgs) {
	flags.StringVar(&args.file, "params", args.file, "a json file with parameter values")
	flags.IntVar(&args.loa, "loa", args.loa, "the level of abstraction preset from 1 to 9")
	flags.IntVar(&args.ee, "ee", args.ee, "the edge emphasis preset from 1 to 9")
	flags.Var(&args.sets, "set", "a parameter override as name=value, may be repeated")
}

// parameters layers the defaults, the file, the presets and the overrides in that order.
func (args *paramArgs) parameters() (*npr.Parameters, error) {
	p := npr.NewParameters()
	if args.file != "" {
		f, err := os.Open(args.file)
		if err != nil {
			return nil, err
		}
		p, err = npr.LoadParameters(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", args.file, err)
		}
	}
	if args.loa != 0 {
		p.SetAbstraction(args.loa)
	}
	if args.ee != 0 {
		p.SetEdgeEmphasis(args.ee)
	}
	for _, s := range args.sets {
		name, value, _ := strings.Cut(s, "=")
		if err := p.SetString(name, value); err != nil {
			return nil, err
		}
	}
	return p, nil
}

type filterArgs struct {
	paramArgs
	impl    impl
	result  string
	out     string
	ext     string
	suffix  string
	shaders string
	workers int
	debug   bool
	glDebug bool
}

func createFilterCommand() *command {
	args := filterArgs{
		impl:   implGl,
		ext:    ".png",
		suffix: "_npr",
	}

	flags := flag.NewFlagSet("filter", flag.ExitOnError)
	registerParamFlags(flags, &args.paramArgs)
	flags.Var(&args.impl, "impl", "the rendering implementation; gl or software")
	flags.StringVar(&args.result, "result", args.result, "the result to write; original, bf_n_e, bf_n_a, dog, cq or result")
	flags.StringVar(&args.out, "out", args.out, "the output directory")
	flags.StringVar(&args.out, "o", args.out, "shorthand for out")
	flags.StringVar(&args.ext, "ext", args.ext, "the result file extension; .png, .bmp or .tiff")
	flags.StringVar(&args.suffix, "suffix", args.suffix, "the result file suffix")
	flags.StringVar(&args.shaders, "shaders", args.shaders, "a directory with program sources overriding the built-in ones")
	flags.IntVar(&args.workers, "workers", args.workers, "the goroutines per draw of the software implementation, 0 for all cores")
	flags.BoolVar(&args.debug, "debug", args.debug, "enables debug logging")
	flags.BoolVar(&args.glDebug, "gldebug", args.glDebug, "enables the OpenGL debug output")

	return &command{
		Name: "filter",
		Help: "stylize images into a cartoon like rendering",
		Run: func(self *command) {
			if self.Flags.NArg() < 1 {
				printCommandUsage(self, " file-glob...")
			}
			logger = initLogger(args.debug)
			if args.out == "" {
				var err error
				args.out, err = os.Getwd()
				harderr(err)
			}
			harderr(runFilter(args, gatherInputFiles(self.Flags.Args())))
		},
		Flags: flags,
	}
}

func openEngine(args filterArgs) (*npr.Engine, error) {
	enc, err := npr.EncoderFor(args.ext)
	if err != nil {
		return nil, err
	}
	opts := []npr.Option{
		npr.WithLogger(logger),
		npr.WithEncoder(enc),
	}
	if args.shaders != "" {
		opts = append(opts, npr.WithSources(npr.Overlay(npr.DirSources(args.shaders), npr.EmbeddedSources())))
	}

	if args.impl == implGl {
		e := npr.NewEngine(npr.OpenGL(surface.OpenGLOptions{Debug: args.glDebug}), opts...)
		if e.Err() == nil {
			logger.Info("Using OpenGL implementation")
			return e, nil
		}
		logger.Warn("Falling back to software implementation")
	}
	e := npr.NewEngine(npr.Software(surface.SoftwareOptions{Workers: args.workers}), opts...)
	logger.Info("Using software implementation")
	return e, e.Err()
}

func runFilter(args filterArgs, inputFiles []string) (err error) {
	// the GL context is bound to the thread that creates it
	runtime.LockOSThread()

	p, err := args.parameters()
	if err != nil {
		return err
	}
	if args.result != "" {
		if err := p.Set(npr.ResultType, args.result); err != nil {
			return err
		}
	}

	e, err := openEngine(args)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, e.Release())
	}()

	success := 0
	start := time.Now()
	for i, path := range inputFiles {
		log := logger.WithField("file", filepath.ToSlash(filepath.Clean(path)))
		log.Infof("Processing file %d/%d", i+1, len(inputFiles))
		outPath := filepath.Join(args.out, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+args.suffix+args.ext)
		if softerr(filterFile(e, p, path, outPath)) {
			continue
		}
		success++
	}
	logger.WithField("elapsed", time.Since(start)).Infof("Filtered %d/%d files", success, len(inputFiles))
	return nil
}

func filterFile(e *npr.Engine, p *npr.Parameters, inPath, outPath string) (err error) {
	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(in))

	img, format, err := image.Decode(in)
	if err != nil {
		return fmt.Errorf("decode %s: %w", inPath, err)
	}
	logger.WithField("format", format).Debugf("decoded %dx%d image", img.Bounds().Dx(), img.Bounds().Dy())

	data, err := e.Filter(img, p)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("%s has no pixels", inPath)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(out))
	_, err = out.Write(data)
	return err
}
