package helpers

import (
	"github.com/tcoulter/evmscript/pkg/ir"
)

// Dup copies ref to the top of the stack via DUPn, lowered by the
// processor's stack simulation pass.
func (c *Catalogue) Dup(loc ir.SourceLoc, ref *ir.RelativeStackReference) (*ir.Action, error) {
	a := c.newAction("dup", loc)
	if ref == nil {
		return nil, invalid("dup", loc, "a stack reference is required")
	}
	a.Append(&ir.StackRef{Ref: ref, Kind: ir.KindDup})
	return a, nil
}

// Set overwrites ref's slot in place with v, via a HotSwap lowering that
// exchanges the slot with the top of stack and pops the old value, without
// permuting the processor's notion of which logical value is now on top.
func (c *Catalogue) Set(loc ir.SourceLoc, ref *ir.RelativeStackReference, v Param) (*ir.Action, error) {
	a := c.newAction("set", loc)
	if ref == nil {
		return nil, invalid("set", loc, "a stack reference is required")
	}
	if err := c.appendParam("set", a, v); err != nil {
		return nil, err
	}
	a.Append(&ir.StackRef{Ref: ref, Kind: ir.KindHotSwap})
	return a, nil
}
