package helpers

import (
	"fmt"

	"github.com/tcoulter/evmscript/pkg/ir"
)

// InputValidationError reports a malformed helper call: a value too large,
// the wrong byte length for a fixed-width push, a raw Action passed where
// only data is accepted, and so on. It always carries the calling script's
// source position when one is available.
type InputValidationError struct {
	Helper string
	Loc    ir.SourceLoc
	Msg    string
}

func (e *InputValidationError) Error() string {
	if e.Loc.Line == 0 && e.Loc.Column == 0 {
		return fmt.Sprintf("%s(): %s", e.Helper, e.Msg)
	}
	return fmt.Sprintf("%s(): %s (at %d:%d)", e.Helper, e.Msg, e.Loc.Line, e.Loc.Column)
}

func invalid(helper string, loc ir.SourceLoc, format string, args ...any) error {
	return &InputValidationError{Helper: helper, Loc: loc, Msg: fmt.Sprintf(format, args...)}
}

// NewInputValidationError is the exported form of invalid(), for callers
// outside this package (the host adapter's argument conversion) that need
// to raise the same error kind.
func NewInputValidationError(helper string, loc ir.SourceLoc, format string, args ...any) error {
	return invalid(helper, loc, format, args...)
}

// CompositionError reports an illegal use of an Action result: passing it
// where raw data is required, or a parent-linkage conflict surfaced from
// the ir package.
type CompositionError struct {
	Helper string
	Loc    ir.SourceLoc
	Msg    string
}

func (e *CompositionError) Error() string {
	if e.Loc.Line == 0 && e.Loc.Column == 0 {
		return fmt.Sprintf("%s(): %s", e.Helper, e.Msg)
	}
	return fmt.Sprintf("%s(): %s (at %d:%d)", e.Helper, e.Msg, e.Loc.Line, e.Loc.Column)
}

func composition(helper string, loc ir.SourceLoc, format string, args ...any) error {
	return &CompositionError{Helper: helper, Loc: loc, Msg: fmt.Sprintf(format, args...)}
}
