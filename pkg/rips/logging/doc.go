// Package logging provides the logging facade used by rips.
//
// The Logger interface is a small, context-aware subset of log/slog so that
// applications can route rips and libvips messages into whatever they
// already use:
//
//	type Logger interface {
//	    Debug(ctx context.Context, msg string, args ...any)
//	    Info(ctx context.Context, msg string, args ...any)
//	    Warn(ctx context.Context, msg string, args ...any)
//	    Error(ctx context.Context, msg string, args ...any)
//	    With(args ...any) Logger
//	}
//
// # Backends
//
//	// slog (nil binds to slog.Default())
//	logger := logging.New(nil)
//
//	// logrus
//	logger := logging.NewLogrus(logrus.StandardLogger())
//
//	// discard everything
//	logger := logging.Nop()
//
// Pass the logger to rips through InitOptions before the first image is
// created:
//
//	rips.InitializeWithOptions(rips.InitOptions{}.WithLogger(logger))
//
// Arguments follow slog conventions: alternating keys and values.
package logging
