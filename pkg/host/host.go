// Package host drives a goja ECMAScript runtime as the scripting host the
// helper catalogue is embedded in: it installs every helper under a
// collision-resistant internal name, evaluates the user's script, prunes
// any thrown exception to the user's own frames, and promotes surviving
// bare-assignment globals whose value is an Action result to jump
// destinations.
package host

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"github.com/google/uuid"

	"github.com/tcoulter/evmscript/pkg/helpers"
	"github.com/tcoulter/evmscript/pkg/ir"
	"github.com/tcoulter/evmscript/pkg/runtimectx"
)

// defaultFilename is used when Run is given an empty filename.
const defaultFilename = "bytecode"

// scriptFilename appends the marker suffix goja reports in stack frames to
// name, so a user-visible stack trace is still clearly host-compiled code
// even when name is a real file path.
func scriptFilename(name string) string {
	if name == "" {
		name = defaultFilename
	}
	return name + "[evm]"
}

// Result is the outcome of evaluating one script: the runtime context the
// helper catalogue wrote into, and the namespace of surviving
// Action-valued bare-assignment globals promoted to jump destinations
// (resolved by $ptr at hex-emission time).
type Result struct {
	Context   *runtimectx.Context
	Namespace map[string]*ir.Action
}

// Run evaluates source as a script in a fresh goja runtime, with extra
// bound under their given names before the script runs, and returns the
// resulting runtime context and namespace. filename is used only to label
// reported stack positions; an empty filename falls back to "bytecode".
func Run(source string, extraBindings map[string]any, filename string) (*Result, error) {
	rt := goja.New()
	ctx := runtimectx.New()
	cat := helpers.New(ctx)

	for name, v := range extraBindings {
		rt.Set(name, v)
	}

	preamble, preambleLines, err := install(rt, cat)
	if err != nil {
		return nil, err
	}

	combined := preamble + source
	prog, err := goja.Compile(scriptFilename(filename), combined, false)
	if err != nil {
		return nil, newCompileError(err, preambleLines)
	}

	if _, err := rt.RunProgram(prog); err != nil {
		if exc, ok := err.(*goja.Exception); ok {
			return nil, newPrunedError(exc, preambleLines)
		}
		return nil, fmt.Errorf("evmscript: %w", err)
	}

	namespace := promote(rt)
	return &Result{Context: ctx, Namespace: namespace}, nil
}

// promote walks the global object for bare-assignment bindings (const/let
// top-level declarations never reach the global object in goja, so
// anything found here was either an extra binding or a script-level
// `name = push(...)` assignment) and marks every Action-valued one a jump
// destination, per the host adapter's label-promotion step.
func promote(rt *goja.Runtime) map[string]*ir.Action {
	namespace := make(map[string]*ir.Action)
	global := rt.GlobalObject()
	for _, key := range global.Keys() {
		if strings.HasPrefix(key, "_") {
			continue
		}
		refs, ok := global.Get(key).Export().([]*ir.RelativeStackReference)
		if !ok || len(refs) == 0 || refs[0] == nil {
			continue
		}
		action := refs[0].Owner
		action.IsJumpDestination = true
		namespace[key] = action
	}
	return namespace
}

// idPrefix returns a short collision-resistant token used to namespace
// every helper's internal binding name for one compile.
func idPrefix() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}
