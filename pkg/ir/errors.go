package ir

import "fmt"

// StackReferenceError reports a stack reference the processor could not
// lower: a slot no longer on the simulated stack, a depth beyond
// DUP16/SWAP16's reach, or a swap index out of range.
type StackReferenceError struct {
	Loc SourceLoc
	Msg string
}

func (e *StackReferenceError) Error() string {
	if e.Loc.Line == 0 && e.Loc.Column == 0 {
		return fmt.Sprintf("stack reference error: %s", e.Msg)
	}
	return fmt.Sprintf("stack reference error: %s (at %d:%d)", e.Msg, e.Loc.Line, e.Loc.Column)
}

// NewStackReferenceError builds a StackReferenceError from a loc and a
// formatted message.
func NewStackReferenceError(loc SourceLoc, format string, args ...any) error {
	return &StackReferenceError{Loc: loc, Msg: fmt.Sprintf(format, args...)}
}

// InternalError reports a defect in the compiler rather than the script:
// a bare stack reference or Action reaching hex emission unlowered, an
// action with no emitted content, an odd total byte count, a resolved
// jump offset wider than the fixed 2-byte pointer encoding.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("evmscript: internal: %s", e.Msg)
}

// NewInternalError builds an InternalError from a formatted message.
func NewInternalError(format string, args ...any) error {
	return &InternalError{Msg: fmt.Sprintf(format, args...)}
}

// LabelResolutionError reports $ptr(name) referring to a name that is not
// bound to an ActionPointer after script evaluation finished.
type LabelResolutionError struct {
	Name string
}

func (e *LabelResolutionError) Error() string {
	return fmt.Sprintf("evmscript: $ptr(%q) refers to a name that is not bound to an action pointer after script evaluation", e.Name)
}
