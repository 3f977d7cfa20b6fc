package backend

import "sync/atomic"

// GLib log levels forwarded from the "VIPS" log domain.
const (
	LogLevelCritical = 1 << 3
	LogLevelWarning  = 1 << 4
	LogLevelMessage  = 1 << 5
	LogLevelInfo     = 1 << 6
	LogLevelDebug    = 1 << 7
)

// LogSink receives messages libvips logs through GLib.
type LogSink func(domain string, level int, message string)

var sink atomic.Pointer[LogSink]

// SetLogSink installs s as the receiver of libvips log messages. A nil sink
// drops them.
func SetLogSink(s LogSink) {
	if s == nil {
		sink.Store(nil)
		return
	}
	sink.Store(&s)
}

func emitLog(domain string, level int, message string) {
	if s := sink.Load(); s != nil {
		(*s)(domain, level, message)
	}
}
