package helpers

import (
	"github.com/tcoulter/evmscript/pkg/ir"
	"github.com/tcoulter/evmscript/pkg/opcode"
	"github.com/tcoulter/evmscript/pkg/runtimectx"
)

// Catalogue binds every helper primitive to a single script evaluation's
// runtime context. The host adapter constructs one Catalogue per compile
// and exposes its methods (and the package-level expression functions) as
// the script's host namespace.
type Catalogue struct {
	ctx *runtimectx.Context
}

// New returns a Catalogue writing into ctx.
func New(ctx *runtimectx.Context) *Catalogue {
	return &Catalogue{ctx: ctx}
}

// newAction creates a fresh top-level Action and registers it with the
// context. Helpers call this first, append their IR items, then return the
// Action's Pointer to the caller.
func (c *Catalogue) newAction(name string, loc ir.SourceLoc) *ir.Action {
	a := ir.NewAction(name, loc)
	c.ctx.Push(a)
	return a
}

// compose resolves an Action-typed argument against the calling Action:
// if both were authored on the same source line - the ordinary case of a
// helper call nested directly inside another, e.g. add(push(1), push(2))
// - the argument was never bound to a name and is adopted as a child,
// inlining its instructions at this position. If the argument was authored
// on an earlier line - the case of a name bound by an earlier statement
// and referenced later, e.g. mainloop = push(1); ...; jumpi(mainloop) - it
// is left untouched and the caller must fall back to referencing it by
// pointer instead.
func (c *Catalogue) compose(caller *ir.Action, arg ActionParam) (inlined bool, err error) {
	if arg.Loc.Line != caller.SourceLoc.Line {
		return false, nil
	}
	if err := caller.AddChild(arg.Action); err != nil {
		return false, composition("compose", caller.SourceLoc, "%v", err)
	}
	caller.Append(arg.Action)
	return true, nil
}

// appendParam appends p to a's instruction stream, applying the
// composition rule when p is an ActionParam authored on the same source
// line as a, and falling back to the Action's 2-byte pointer encoding
// otherwise.
func (c *Catalogue) appendParam(helper string, a *ir.Action, p Param) error {
	switch v := p.(type) {
	case ActionParam:
		inlined, err := c.compose(a, v)
		if err != nil {
			return err
		}
		if inlined {
			return nil
		}
	case RefParam:
		// A stack reference used as a plain argument is read, not
		// consumed, unless the helper explicitly asks for destructive
		// semantics (stack.go's Set does that itself).
		a.Append(&ir.StackRef{Ref: v.Ref, Kind: ir.KindDup})
		return nil
	}
	val, err := valueOf(helper, a.SourceLoc, p)
	if err != nil {
		return err
	}
	a.Append(ir.Op{Code: opcode.PushN(val.ByteLength())}, val)
	return nil
}
