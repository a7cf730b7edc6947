// Package log provides the leveled diagnostic output used throughout
// lopper: plain DEBUG/TRACE helpers gated by package-level switches,
// and stdout/stderr printfs that the CLI wires to -v verbosity.
package log

import (
	"fmt"
	"os"
)

// DebugOn enables DEBUG() output. Toggled by a single -v.
var DebugOn bool

// TraceOn enables TRACE() output. Toggled by -v -v (or more).
var TraceOn bool

// exit is what Fatal calls to terminate the process; tests substitute
// it to avoid killing the test binary.
var exit = os.Exit

// DEBUG prints a formatted debug line to stderr when DebugOn is set.
func DEBUG(format string, args ...interface{}) {
	if DebugOn {
		fmt.Fprintf(os.Stderr, "[DBG+] "+format+"\n", args...)
	}
}

// TRACE prints a formatted trace line to stderr when TraceOn is set.
// Trace is noisier than debug and is meant for selector/interpreter
// step-by-step tracing.
func TRACE(format string, args ...interface{}) {
	if TraceOn {
		fmt.Fprintf(os.Stderr, "[DBG++] "+format+"\n", args...)
	}
}

// Printf writes an unconditional formatted line to stdout.
func Printf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, format, args...)
}

// PrintfStdErr writes an unconditional formatted line to stderr. Used
// for warnings and errors so they survive output redirection.
func PrintfStdErr(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
}

// Fatal prints a formatted error line to stderr and exits with code 1.
func Fatal(format string, args ...interface{}) {
	PrintfStdErr(format+"\n", args...)
	exit(1)
}
