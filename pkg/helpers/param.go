// Package helpers implements the catalogue of functions a script's host
// namespace exposes: push/alloc primitives, control-flow helpers, default
// per-opcode wrappers, and the $-prefixed expression builders. Every
// catalogue function is plain Go, taking and returning the ir package's
// value tree and Action types; the host package is the only place that
// knows how to get values in and out of a scripting runtime.
package helpers

import (
	"math/big"

	"github.com/tcoulter/evmscript/pkg/ir"
)

// Param is the sum type of a single helper-call argument after the host
// adapter has classified it: a literal/expression value, a reference to
// another helper call's Action, or a destructured stack slot.
type Param interface {
	isParam()
}

// ValueParam wraps a Hexable that should be treated as plain data: a
// literal, or the result of an expression helper like $concat or $pad.
type ValueParam struct {
	Value ir.Hexable
}

func (ValueParam) isParam() {}

// ActionParam wraps the Action produced by a previous Action-producing
// helper call, along with the source position that call was made at. The
// composition rule (see Catalogue.compose) uses Loc to decide whether the
// argument should be inlined as a child or kept as a standalone pointer.
type ActionParam struct {
	Action *ir.Action
	Loc    ir.SourceLoc
}

func (ActionParam) isParam() {}

// RefParam wraps a stack slot obtained by destructuring a prior helper
// call's result, e.g. `[a, b] = push(1)`.
type RefParam struct {
	Ref *ir.RelativeStackReference
}

func (RefParam) isParam() {}

// Int is a convenience constructor for a ValueParam wrapping a small
// integer literal.
func Int(n int64) (Param, error) {
	lit, err := ir.NewLiteral(big.NewInt(n))
	if err != nil {
		return nil, err
	}
	return ValueParam{Value: lit}, nil
}

// BigInt wraps an arbitrary-precision literal.
func BigInt(v *big.Int) (Param, error) {
	lit, err := ir.NewLiteral(v)
	if err != nil {
		return nil, err
	}
	return ValueParam{Value: lit}, nil
}

// valueOf extracts the Hexable backing p, treating an ActionParam as its
// Action's 2-byte pointer encoding (the "its 2-byte PUSH is used" rule for
// helpers that accept either data or a jump target) and a RefParam as an
// error, since raw stack references are never valid in a plain data
// position.
func valueOf(helper string, loc ir.SourceLoc, p Param) (ir.Hexable, error) {
	switch v := p.(type) {
	case ValueParam:
		return v.Value, nil
	case ActionParam:
		return ir.NewActionPointer(v.Action), nil
	case RefParam:
		return nil, invalid(helper, loc, "a destructured stack reference cannot be used as a data value")
	default:
		return nil, invalid(helper, loc, "unrecognized argument type %T", p)
	}
}
