package common

import "log"

// LogSink receives diagnostic output from engine components. The engine holds
// no process-wide logger; components accept a sink through their builder
// options so the transform/render core stays independently testable.
type LogSink interface {
	// Debugf logs a formatted debug message.
	//
	// Parameters:
	//   - format: printf-style format string
	//   - args: format arguments
	Debugf(format string, args ...any)

	// Warnf logs a formatted warning. Used for recoverable conditions such as
	// inverting a singular matrix.
	//
	// Parameters:
	//   - format: printf-style format string
	//   - args: format arguments
	Warnf(format string, args ...any)

	// Errorf logs a formatted error.
	//
	// Parameters:
	//   - format: printf-style format string
	//   - args: format arguments
	Errorf(format string, args ...any)
}

type nopSink struct{}

func (nopSink) Debugf(string, ...any) {}
func (nopSink) Warnf(string, ...any)  {}
func (nopSink) Errorf(string, ...any) {}

// NopSink returns a LogSink that discards all messages. Components default to
// this when no sink is injected.
//
// Returns:
//   - LogSink: a sink that drops everything
func NopSink() LogSink {
	return nopSink{}
}

type stdSink struct{}

func (stdSink) Debugf(format string, args ...any) {
	log.Printf("[debug] "+format, args...)
}

func (stdSink) Warnf(format string, args ...any) {
	log.Printf("[warn] "+format, args...)
}

func (stdSink) Errorf(format string, args ...any) {
	log.Printf("[error] "+format, args...)
}

// StdSink returns a LogSink backed by the standard library logger. Intended
// for hosts and examples; library code should never construct one itself.
//
// Returns:
//   - LogSink: a sink writing through log.Printf
func StdSink() LogSink {
	return stdSink{}
}
