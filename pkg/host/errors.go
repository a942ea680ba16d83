package host

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dop251/goja"
)

// frameRe matches one rendered goja.StackFrame line, as produced by
// (*goja.Exception).String(): "<func> (<file>:<line>:<col>(<pc>))" when
// the frame belongs to a named function, or bare "<file>:<line>:<col>(<pc>)"
// for anonymous script-level frames. Native frames ("native" or
// "<func> (native)") don't match and are treated as unresolvable.
var frameRe = regexp.MustCompile(`^(?:(.+) \()?([^:()]*):(\d+):(\d+)\(\d+\)\)?$`)

// PrunedError wraps a script-time syntax or runtime error (the
// HostEvaluator error kind): a goja compile error or a thrown JS
// exception, with its stack trace trimmed to the frames belonging to the
// user's own script. Line numbers in Stack are already shifted back to the
// user's own source, with the installed preamble subtracted out; a compile
// error's Message keeps the positions goja reported against the combined
// preamble+script source.
type PrunedError struct {
	Message string
	stack   []string
}

func (e *PrunedError) Error() string {
	if len(e.stack) == 0 {
		return fmt.Sprintf("evmscript: %s", e.Message)
	}
	return fmt.Sprintf("evmscript: %s\n%s", e.Message, strings.Join(e.stack, "\n"))
}

// Stack returns the pruned, user-visible stack trace, one frame per line.
func (e *PrunedError) Stack() []string { return e.stack }

// newPrunedError builds a PrunedError from a goja exception, rewriting
// every frame's line number by -preambleLines and discarding frames that
// belong to the preamble itself (line <= 0 after rewriting).
//
// goja.Exception does not expose its []StackFrame directly in the pinned
// goja version, so the frames are recovered from the same rendering its
// String() method already produces internally, via frameRe.
func newPrunedError(exc *goja.Exception, preambleLines int) *PrunedError {
	val := exc.Value()
	msg := val.String()

	var frames []string
	for _, raw := range strings.Split(exc.String(), "\n") {
		trimmed := strings.TrimPrefix(raw, "\tat ")
		if trimmed == raw {
			continue
		}
		m := frameRe.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		lineNum, _ := strconv.Atoi(m[3])
		col, _ := strconv.Atoi(m[4])
		line := lineNum - preambleLines
		if line <= 0 {
			continue
		}
		name := m[1]
		if name == "" {
			name = "<anonymous>"
		}
		frames = append(frames, fmt.Sprintf("  at %s (%d:%d)", name, line, col))
	}
	return &PrunedError{Message: msg, stack: frames}
}

// newCompileError wraps a goja.Compile failure. Its message is kept as goja
// reports it, so any position in it counts lines of the combined
// (preamble+script) source; it is not shifted by preambleLines.
func newCompileError(err error, preambleLines int) *PrunedError {
	return &PrunedError{Message: err.Error()}
}
