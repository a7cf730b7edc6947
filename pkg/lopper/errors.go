package lopper

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/starkandwayne/goutils/ansi"

	"github.com/sdt-tools/lopper/log"
)

// ErrorKind enumerates the error kinds the engine can report.
type ErrorKind string

const (
	// MissingInput: no SDT file, or a referenced auxiliary file absent.
	MissingInput ErrorKind = "missing-input"
	// CompileFailure: the external dtc/cpp subprocess failed.
	CompileFailure ErrorKind = "compile-failure"
	// ParseFailure: the front-end could not parse a source.
	ParseFailure ErrorKind = "parse-failure"
	// InvariantViolation: e.g. an unresolved phandle in strict mode.
	InvariantViolation ErrorKind = "invariant-violation"
	// LopMalformed: a required property is absent from a lop.
	LopMalformed ErrorKind = "lop-malformed"
	// AssistLoadFailure: a `load` lop's assist module could not be registered.
	AssistLoadFailure ErrorKind = "assist-load-failure"
	// AssistRuntimeFailure: an assist callback returned an error.
	AssistRuntimeFailure ErrorKind = "assist-runtime-failure"
	// OutputExistsNoForce: an output lop's target file exists and -f was not given.
	OutputExistsNoForce ErrorKind = "output-exists-no-force"
)

// LopperError is the structured error type for all engine operations:
// a kind, a message, the path it occurred at (if any), and an
// optional cause.
type LopperError struct {
	Kind    ErrorKind
	Message string
	Path    string
	Cause   error
}

func (e *LopperError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s at %s: %s", e.Kind, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *LopperError) Unwrap() error { return e.Cause }

// NewError builds a LopperError of the given kind.
func NewError(kind ErrorKind, path, message string, cause error) *LopperError {
	return &LopperError{Kind: kind, Message: message, Path: path, Cause: cause}
}

// AppendError folds err into acc using hashicorp/go-multierror. A nil
// acc is allocated lazily.
func AppendError(acc *multierror.Error, err error) *multierror.Error {
	if err == nil {
		return acc
	}
	return multierror.Append(acc, err)
}

// werrorEnabled is set by the engine/CLI; WarningError consults it so a
// single flag governs whether warnings are fatal everywhere.
var werrorEnabled bool

// SetWError toggles whether warnings are promoted to fatal errors.
func SetWError(on bool) { werrorEnabled = on }

// WError reports the current --werror setting.
func WError() bool { return werrorEnabled }

// WarningError is a non-fatal condition that prints to stderr unless
// silenced, and becomes a hard error under --werror: any failure in
// an assist callback is a warning, and werror promotes every warning
// to a fatal error.
type WarningError struct {
	message string
}

// NewWarning builds and immediately prints (unless silenced) a warning.
// If --werror is set, it returns a non-nil error the caller should
// propagate instead of continuing best-effort.
func NewWarning(format string, args ...interface{}) error {
	w := WarningError{message: fmt.Sprintf(format, args...)}
	if !silenceWarnings {
		log.PrintfStdErr(ansi.Sprintf("@Y{warning:} %s\n", w.message))
	}
	if werrorEnabled {
		return &w
	}
	return nil
}

func (w *WarningError) Error() string { return w.message }

var silenceWarnings bool

// SilenceWarnings suppresses warning output (used by tests and -q-style
// quiet runs); warnings still become fatal under --werror.
func SilenceWarnings(should bool) { silenceWarnings = should }
