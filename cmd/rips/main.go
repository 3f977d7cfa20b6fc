// Command rips loads, transforms and saves images with libvips.
//
// Usage:
//
//	rips [global flags] <command> [flags] args...
//
// Commands:
//
//	version                          print wrapper and libvips versions
//	info    <in>                     print size, bands and band format
//	resize  [-w N] [-h N] [-scale F] [-kernel K] <in> <out>
//	crop    -left N -top N -w N -h N <in> <out>
//	rotate  -angle 90|180|270 <in> <out>
//	convert <in> <out>               re-encode; the suffix of out picks the format
//	batch   <manifest.yaml>          run a YAML batch manifest
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hsiuhsiu/rips-go/internal/batch"
	"github.com/hsiuhsiu/rips-go/pkg/rips"
	"github.com/hsiuhsiu/rips-go/pkg/rips/logging"
)

var errUsage = errors.New("usage")

type app struct {
	stdout  io.Writer
	stderr  io.Writer
	log     *logrus.Logger
	initCfg batch.InitConfig
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{stdout: os.Stdout, stderr: os.Stderr, log: logrus.New()}
	err := a.run(ctx, os.Args[1:])
	rips.Shutdown()
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "rips: %v\n", err)
		}
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rips", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	var (
		name       = fs.String("name", rips.DefaultProgramName, "program name reported to libvips")
		leakChecks = fs.Bool("leak-checks", false, "enable libvips leak checking")
		verbose    = fs.Bool("v", false, "verbose logging")
	)
	fs.Usage = func() {
		fmt.Fprintln(a.stderr, "usage: rips [-name N] [-leak-checks] [-v] <version|info|resize|crop|rotate|convert|batch> ...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	a.log.SetOutput(a.stderr)
	if *verbose {
		a.log.SetLevel(logrus.DebugLevel)
	}
	a.initCfg = batch.InitConfig{Name: *name}
	if isSet(fs, "leak-checks") {
		a.initCfg.LeakChecks = leakChecks
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errUsage
	}

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "version":
		return a.version()
	case "info":
		return a.info(cmdArgs)
	case "resize":
		return a.resize(cmdArgs)
	case "crop":
		return a.crop(cmdArgs)
	case "rotate":
		return a.rotate(cmdArgs)
	case "convert":
		return a.convert(cmdArgs)
	case "batch":
		return a.batch(ctx, cmdArgs)
	default:
		fmt.Fprintf(a.stderr, "rips: unknown command %q\n", cmd)
		fs.Usage()
		return errUsage
	}
}

func isSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// subcommand parses flags for one command and checks the positional count.
func (a *app) subcommand(name, usage string, args []string, npos int, define func(*flag.FlagSet)) ([]string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "usage: rips %s %s\n", name, usage)
		fs.PrintDefaults()
	}
	if define != nil {
		define(fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}
	if fs.NArg() != npos {
		fs.Usage()
		return nil, errUsage
	}
	return fs.Args(), nil
}

func (a *app) initialize() error {
	return rips.InitializeWithOptions(a.initCfg.Options().WithLogger(logging.NewLogrus(a.log)))
}

func (a *app) version() error {
	fmt.Fprintf(a.stdout, "rips %s\n", rips.WrapperVersion())
	fmt.Fprintf(a.stdout, "libvips %s\n", rips.UpstreamVersion())
	return nil
}

func (a *app) info(args []string) error {
	pos, err := a.subcommand("info", "<in>", args, 1, nil)
	if err != nil {
		return err
	}
	if err := a.initialize(); err != nil {
		return err
	}
	img, err := rips.NewImageFromFile(pos[0])
	if err != nil {
		return err
	}
	defer img.Close()

	fmt.Fprintf(a.stdout, "%s: %dx%d, %d bands, %s\n", pos[0], img.Width(), img.Height(), img.Bands(), img.Format())
	return nil
}

// transform loads in, applies op and writes the result to out.
func (a *app) transform(in, out string, op func(*rips.Image) (*rips.Image, error)) error {
	if err := a.initialize(); err != nil {
		return err
	}
	img, err := rips.NewImageFromFile(in)
	if err != nil {
		return err
	}
	defer img.Close()

	res, err := op(img)
	if err != nil {
		return err
	}
	defer res.Close()

	if err := res.WriteToFile(out); err != nil {
		return err
	}
	a.log.WithFields(logrus.Fields{"in": in, "out": out, "width": res.Width(), "height": res.Height()}).Debug("wrote image")
	return nil
}

func (a *app) resize(args []string) error {
	var (
		w, h   int
		scale  float64
		kernel string
	)
	pos, err := a.subcommand("resize", "[-w N] [-h N] [-scale F] [-kernel K] <in> <out>", args, 2, func(fs *flag.FlagSet) {
		fs.IntVar(&w, "w", 0, "target width")
		fs.IntVar(&h, "h", 0, "target height")
		fs.Float64Var(&scale, "scale", 0, "scale factor, used when no size is given")
		fs.StringVar(&kernel, "kernel", "", "resampling kernel (nearest, linear, cubic, mitchell, lanczos2, lanczos3)")
	})
	if err != nil {
		return err
	}

	var opts []rips.ResizeOption
	if kernel != "" {
		k, err := rips.ParseKernel(kernel)
		if err != nil {
			return err
		}
		opts = append(opts, rips.WithKernel(k))
	}

	return a.transform(pos[0], pos[1], func(img *rips.Image) (*rips.Image, error) {
		if w <= 0 && h <= 0 && scale > 0 {
			return img.Resize(scale, opts...)
		}
		return img.ResizeTo(w, h, opts...)
	})
}

func (a *app) crop(args []string) error {
	var left, top, w, h int
	pos, err := a.subcommand("crop", "-left N -top N -w N -h N <in> <out>", args, 2, func(fs *flag.FlagSet) {
		fs.IntVar(&left, "left", 0, "left edge")
		fs.IntVar(&top, "top", 0, "top edge")
		fs.IntVar(&w, "w", 0, "width")
		fs.IntVar(&h, "h", 0, "height")
	})
	if err != nil {
		return err
	}
	return a.transform(pos[0], pos[1], func(img *rips.Image) (*rips.Image, error) {
		return img.Crop(left, top, w, h)
	})
}

func (a *app) rotate(args []string) error {
	var angle string
	pos, err := a.subcommand("rotate", "-angle 90|180|270 <in> <out>", args, 2, func(fs *flag.FlagSet) {
		fs.StringVar(&angle, "angle", "90", "clockwise rotation")
	})
	if err != nil {
		return err
	}
	ang, err := rips.ParseAngle(angle)
	if err != nil {
		return err
	}
	return a.transform(pos[0], pos[1], func(img *rips.Image) (*rips.Image, error) {
		return img.Rotate(ang)
	})
}

func (a *app) convert(args []string) error {
	pos, err := a.subcommand("convert", "<in> <out>", args, 2, nil)
	if err != nil {
		return err
	}
	if err := a.initialize(); err != nil {
		return err
	}
	img, err := rips.NewImageFromFile(pos[0])
	if err != nil {
		return err
	}
	defer img.Close()
	return img.WriteToFile(pos[1])
}

func (a *app) batch(ctx context.Context, args []string) error {
	var progress bool
	pos, err := a.subcommand("batch", "[-progress] <manifest.yaml>", args, 1, func(fs *flag.FlagSet) {
		fs.BoolVar(&progress, "progress", true, "show a progress bar")
	})
	if err != nil {
		return err
	}

	m, err := batch.Load(pos[0])
	if err != nil {
		return err
	}
	// Flags fill in what the manifest leaves unset.
	if m.Init.Name == "" {
		m.Init.Name = a.initCfg.Name
	}
	if m.Init.LeakChecks == nil {
		m.Init.LeakChecks = a.initCfg.LeakChecks
	}

	r := &batch.Runner{Logger: logging.NewLogrus(a.log)}
	if progress {
		r.Progress = a.stderr
	}
	report, err := r.Run(ctx, m)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%d succeeded, %d failed in %s\n", report.Succeeded, len(report.Failed), report.Elapsed.Round(time.Millisecond))
	return report.Err()
}
