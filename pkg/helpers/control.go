package helpers

import (
	"math/big"
	"sort"

	"github.com/tcoulter/evmscript/pkg/ir"
	"github.com/tcoulter/evmscript/pkg/opcode"
)

// Jump emits PUSH2 target; JUMP. target may be omitted (nil), in which
// case the jump destination is expected to already be on the stack.
func (c *Catalogue) Jump(loc ir.SourceLoc, target Param) (*ir.Action, error) {
	a := c.newAction("jump", loc)
	if target != nil {
		if err := c.appendParam("jump", a, target); err != nil {
			return nil, err
		}
	}
	a.Append(ir.Op{Code: opcode.JUMP})
	return a, nil
}

// Jumpi emits PUSH2 target; JUMPI, with the branch condition expected
// already on the stack beneath the pushed target.
func (c *Catalogue) Jumpi(loc ir.SourceLoc, target Param) (*ir.Action, error) {
	a := c.newAction("jumpi", loc)
	if target != nil {
		if err := c.appendParam("jumpi", a, target); err != nil {
			return nil, err
		}
	}
	a.Append(ir.Op{Code: opcode.JUMPI})
	return a, nil
}

// Selector returns the function selector of sig - the first 4 bytes of
// Keccak256 over sig exactly as given - as a minimal-length Literal, so a
// selector with leading zero bytes is shorter than 4 bytes. sig is not
// canonicalized: parameter names, the "function" keyword and a returns
// clause are all hashed along with the rest.
func Selector(sig string) (*ir.Literal, error) {
	digest := Keccak256([]byte(sig))
	return ir.NewLiteral(new(big.Int).SetBytes(digest[:4]))
}

// Dispatch builds the selector-routing prologue: for every (signature,
// target) pair, in a deterministic signature-sorted order, it emits
// calldataload(0,4); PUSH4 sig; EQ; PUSH2 ptr; JUMPI. No default case is
// emitted; calls that match nothing fall through. target is a 2-byte
// Hexable - either an already-known Action's Pointer() or a LabelPointer
// from $ptr, since a dispatch table is ordinarily built before the
// handlers it routes to are defined.
func (c *Catalogue) Dispatch(loc ir.SourceLoc, routes map[string]ir.Hexable) (*ir.Action, error) {
	a := c.newAction("dispatch", loc)

	sigs := make([]string, 0, len(routes))
	for sig := range routes {
		sigs = append(sigs, sig)
	}
	sort.Strings(sigs)

	zero, err := ir.NewLiteral(big.NewInt(0))
	if err != nil {
		return nil, err
	}

	for _, sig := range sigs {
		target := routes[sig]
		sel, err := Selector(sig)
		if err != nil {
			return nil, invalid("dispatch", loc, "signature %q: %v", sig, err)
		}
		a.Append(ir.Op{Code: opcode.PushN(1)}, zero, ir.Op{Code: opcode.CALLDATALOAD})
		shift, err := ir.NewLiteral(big.NewInt(224)) // (32-4)*8
		if err != nil {
			return nil, err
		}
		a.Append(ir.Op{Code: opcode.PushN(shift.ByteLength())}, shift, ir.Op{Code: opcode.SHR})
		a.Append(ir.Op{Code: opcode.PushN(4)}, ir.Padded{Inner: sel, Unit: 4, Side: ir.PadLeft})
		a.Append(ir.Op{Code: opcode.EQ})
		a.Append(ir.Op{Code: opcode.PushN(2)}, target)
		a.Append(ir.Op{Code: opcode.JUMPI})
	}
	return a, nil
}

// Revert emits REVERT, with reason alloc'd as the ABI-encoded Error(string)
// panic payload first when supplied.
func (c *Catalogue) Revert(loc ir.SourceLoc, reason ir.Hexable) (*ir.Action, error) {
	a := c.newAction("revert", loc)
	if reason != nil {
		selector, err := ir.NewLiteral(big.NewInt(0x08c379a0))
		if err != nil {
			return nil, err
		}
		offset := ir.Padded{Inner: mustLiteral(32), Unit: 32, Side: ir.PadLeft}
		payload := ir.Concat{Items: []ir.Hexable{
			ir.Padded{Inner: selector, Unit: 4, Side: ir.PadLeft},
			offset,
			ir.SolidityString{Inner: reason},
		}}
		allocAction, err := c.Alloc(loc, ValueParam{Value: payload}, true)
		if err != nil {
			return nil, err
		}
		if err := a.AddChild(allocAction); err != nil {
			return nil, composition("revert", loc, "%v", err)
		}
		a.Append(allocAction)
	} else {
		a.Append(ir.Op{Code: opcode.PushN(1)}, mustLiteral(0))
		a.Append(ir.Op{Code: opcode.PushN(1)}, mustLiteral(0))
	}
	a.Append(ir.Op{Code: opcode.REVERT})
	return a, nil
}

func mustLiteral(n int64) *ir.Literal {
	l, err := ir.NewLiteral(big.NewInt(n))
	if err != nil {
		panic(err)
	}
	return l
}

// AssertNonPayable emits CALLVALUE; ISZERO; PUSH2 skip; JUMPI; then either
// revert(reason) or bail() when value was sent; then the skip destination.
func (c *Catalogue) AssertNonPayable(loc ir.SourceLoc, reason ir.Hexable) (*ir.Action, error) {
	a := c.newAction("assertNonPayable", loc)
	skip := ir.NewAction("assertNonPayable_skip", loc)
	skip.IsJumpDestination = true

	a.Append(ir.Op{Code: opcode.CALLVALUE}, ir.Op{Code: opcode.ISZERO})
	a.Append(ir.Op{Code: opcode.PushN(2)}, skip.Pointer())
	a.Append(ir.Op{Code: opcode.JUMPI})

	var failure *ir.Action
	var err error
	if reason != nil {
		failure, err = c.Revert(loc, reason)
	} else {
		failure, err = c.Bail(loc)
	}
	if err != nil {
		return nil, err
	}
	if err := a.AddChild(failure); err != nil {
		return nil, composition("assertNonPayable", loc, "%v", err)
	}
	a.Append(failure)

	if err := a.AddChild(skip); err != nil {
		return nil, composition("assertNonPayable", loc, "%v", err)
	}
	a.Append(skip)
	return a, nil
}

// Assert is the inverse of AssertNonPayable: it expects a boolean condition
// already on the stack, jumping over the failure branch when it is
// truthy.
func (c *Catalogue) Assert(loc ir.SourceLoc, reason ir.Hexable) (*ir.Action, error) {
	a := c.newAction("assert", loc)
	skip := ir.NewAction("assert_skip", loc)
	skip.IsJumpDestination = true

	a.Append(ir.Op{Code: opcode.PushN(2)}, skip.Pointer())
	a.Append(ir.Op{Code: opcode.JUMPI})

	var failure *ir.Action
	var err error
	if reason != nil {
		failure, err = c.Revert(loc, reason)
	} else {
		failure, err = c.Bail(loc)
	}
	if err != nil {
		return nil, err
	}
	if err := a.AddChild(failure); err != nil {
		return nil, composition("assert", loc, "%v", err)
	}
	a.Append(failure)

	if err := a.AddChild(skip); err != nil {
		return nil, composition("assert", loc, "%v", err)
	}
	a.Append(skip)
	return a, nil
}

// Bail emits the minimal PUSH1 0x00; DUP1; REVERT failure sequence, used
// whenever no revert reason was supplied.
func (c *Catalogue) Bail(loc ir.SourceLoc) (*ir.Action, error) {
	a := c.newAction("bail", loc)
	a.Append(ir.Op{Code: opcode.PushN(1)}, mustLiteral(0))
	a.Append(ir.Op{Code: opcode.DupN(1)})
	a.Append(ir.Op{Code: opcode.REVERT})
	return a, nil
}
