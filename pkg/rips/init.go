package rips

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/hsiuhsiu/rips-go/pkg/rips/internal/backend"
	"github.com/hsiuhsiu/rips-go/pkg/rips/internal/vararg"
	"github.com/hsiuhsiu/rips-go/pkg/rips/logging"
)

// DefaultProgramName is passed to libvips when no name is configured.
const DefaultProgramName = "rips"

// ErrShutdown is returned by constructors and image operations once
// Shutdown has run.
var ErrShutdown = errors.New("rips: library has been shut down")

// InitOptions configures process-wide libvips initialization. The zero value
// uses the defaults. Options only take effect when they reach the first
// initialization; they must precede first use.
type InitOptions struct {
	name       vararg.Optional[string]
	leakChecks vararg.Optional[bool]
	logger     logging.Logger
}

// WithName sets the program name reported to libvips.
func (o InitOptions) WithName(name string) InitOptions {
	o.name = vararg.Some(name)
	return o
}

// WithLeakChecks turns libvips leak checking on or off. When not set the
// library default is kept.
func (o InitOptions) WithLeakChecks(on bool) InitOptions {
	o.leakChecks = vararg.Some(on)
	return o
}

// WithLogger routes rips and libvips log output to l.
func (o InitOptions) WithLogger(l logging.Logger) InitOptions {
	o.logger = l
	return o
}

// Name returns the program name that initialization will use.
func (o InitOptions) Name() string {
	return o.name.Or(DefaultProgramName)
}

// initGuard runs native initialization at most once. Concurrent callers block
// until the winner finishes and then all observe its result. It also fences
// native calls against shutdown: calls run under live held shared, and
// shutdown takes it exclusively.
type initGuard struct {
	once     sync.Once
	ran      atomic.Bool
	err      error
	started  atomic.Bool
	shutOnce sync.Once
	shut     atomic.Bool
	live     sync.RWMutex
}

// initialize validates opts only while no initialization has run; after
// that every call returns the settled result.
func (g *initGuard) initialize(opts InitOptions, start func(InitOptions) error) error {
	if !g.ran.Load() {
		if err := checkString(opts.Name()); err != nil {
			return err
		}
	}
	return g.ensure(opts, start)
}

func (g *initGuard) ensure(opts InitOptions, start func(InitOptions) error) error {
	if g.shut.Load() {
		return opaqueError(ErrShutdown)
	}
	g.once.Do(func() {
		g.err = start(opts)
		if g.err == nil {
			g.started.Store(true)
		}
		g.ran.Store(true)
	})
	return g.err
}

// enter runs fn unless shutdown has happened. Shutdown waits for fn to
// return.
func (g *initGuard) enter(fn func() error) error {
	g.live.RLock()
	defer g.live.RUnlock()
	if g.shut.Load() {
		return opaqueError(ErrShutdown)
	}
	return fn()
}

// shutdown marks the guard terminal and runs stop if initialization
// succeeded. Only the first call has any effect.
func (g *initGuard) shutdown(stop func()) {
	g.shutOnce.Do(func() {
		g.live.Lock()
		defer g.live.Unlock()

		g.shut.Store(true)
		// Consume the once so a late ensure cannot initialize again.
		g.once.Do(func() {
			g.err = opaqueError(ErrShutdown)
			g.ran.Store(true)
		})
		if g.started.Load() {
			stop()
		}
	})
}

var guard initGuard

// Initialize initializes libvips with default options. Every constructor
// calls it, so an explicit call is only needed to surface init errors early.
func Initialize() error {
	return InitializeWithOptions(InitOptions{})
}

// InitializeWithOptions initializes libvips with opts if no initialization
// has happened yet; otherwise it returns the result of the earlier one and
// opts are ignored.
func InitializeWithOptions(opts InitOptions) error {
	return guard.initialize(opts, startNative)
}

// Shutdown releases libvips global state. The same teardown is registered
// with the C atexit, but Go programs do not exit through libc, so call
// Shutdown before exiting when a clean teardown matters. Shutdown waits for
// in-flight operations; afterwards constructors and operations on existing
// images fail with ErrShutdown.
func Shutdown() {
	guard.shutdown(func() {
		backend.Shutdown()
		logger().Info(context.Background(), "libvips shut down", "live_buffers", backend.Retained())
	})
}

func startNative(opts InitOptions) error {
	if opts.logger != nil {
		setLogger(opts.logger)
	}
	backend.SetLogSink(forwardNativeLog)

	if err := backend.Init(opts.Name()); err != nil {
		return remapError(err)
	}
	if on, ok := opts.leakChecks.Get(); ok {
		backend.LeakSet(on)
	}
	if err := backend.RegisterShutdown(); err != nil {
		return remapError(err)
	}

	logger().Info(context.Background(), "libvips initialized",
		"program", opts.Name(),
		"version", backend.Version(),
		"leak_checks", opts.leakChecks.String())
	return nil
}

type loggerBox struct{ l logging.Logger }

var activeLogger atomic.Pointer[loggerBox]

func setLogger(l logging.Logger) {
	activeLogger.Store(&loggerBox{l: l})
}

func logger() logging.Logger {
	if b := activeLogger.Load(); b != nil {
		return b.l
	}
	return logging.Nop()
}

type logLevel int

const (
	levelDebug logLevel = iota
	levelInfo
	levelWarn
	levelError
)

// glibLevel maps GLib log level flags to a logger level.
func glibLevel(flags int) logLevel {
	switch {
	case flags&backend.LogLevelCritical != 0:
		return levelError
	case flags&backend.LogLevelWarning != 0:
		return levelWarn
	case flags&(backend.LogLevelMessage|backend.LogLevelInfo) != 0:
		return levelInfo
	default:
		return levelDebug
	}
}

func logAt(l logging.Logger, level logLevel, msg string, args ...any) {
	ctx := context.Background()
	switch level {
	case levelError:
		l.Error(ctx, msg, args...)
	case levelWarn:
		l.Warn(ctx, msg, args...)
	case levelInfo:
		l.Info(ctx, msg, args...)
	default:
		l.Debug(ctx, msg, args...)
	}
}

func forwardNativeLog(domain string, flags int, message string) {
	logAt(logger(), glibLevel(flags), message, "domain", domain)
}
