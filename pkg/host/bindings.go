package host

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"

	"github.com/tcoulter/evmscript/pkg/helpers"
	"github.com/tcoulter/evmscript/pkg/ir"
	"github.com/tcoulter/evmscript/pkg/opcode"
)

// callerLoc captures the position of the JS call site that is currently
// invoking a bound Go function, shifted back into the user's own script
// coordinates by subtracting the installed preamble's line count.
func callerLoc(rt *goja.Runtime, preambleLines int) ir.SourceLoc {
	// The bound Go function's own frame carries no script position; the
	// first frame that has one is the JS call site.
	for _, frame := range rt.CaptureCallStack(0, nil) {
		pos := frame.Position()
		if pos.Line > 0 {
			return ir.SourceLoc{Line: pos.Line - preambleLines, Column: pos.Column}
		}
	}
	return ir.SourceLoc{}
}

func throw(rt *goja.Runtime, err error) {
	panic(rt.NewGoError(err))
}

func actionResult(rt *goja.Runtime, a *ir.Action, err error) goja.Value {
	if err != nil {
		throw(rt, err)
	}
	return rt.ToValue(a.VirtualStack[:])
}

// install registers every helper under a collision-resistant internal
// name and builds the `const <public> = <internal>;` preamble aliasing
// each back to its public name, returning the preamble text and its line
// count.
func install(rt *goja.Runtime, cat *helpers.Catalogue) (string, int, error) {
	var preambleLines int
	pl := &preambleLines
	loc := func() ir.SourceLoc { return callerLoc(rt, *pl) }

	var sb strings.Builder
	reserved := map[string]bool{}
	register := func(name string, fn func(goja.FunctionCall) goja.Value) {
		if reserved[name] {
			return
		}
		reserved[name] = true
		internal := "__evmscript_" + idPrefix() + "_" + name
		rt.Set(internal, fn)
		sb.WriteString("const ")
		sb.WriteString(name)
		sb.WriteString(" = ")
		sb.WriteString(internal)
		sb.WriteString(";\n")
	}

	register("push", func(call goja.FunctionCall) goja.Value {
		l := loc()
		p, err := toParam("push", l, call.Argument(0))
		if err != nil {
			throw(rt, err)
		}
		a, err := cat.Push(l, p)
		return actionResult(rt, a, err)
	})

	for n := 1; n <= 32; n++ {
		n := n
		register(fmt.Sprintf("push%d", n), func(call goja.FunctionCall) goja.Value {
			l := loc()
			p, err := toParam(fmt.Sprintf("push%d", n), l, call.Argument(0))
			if err != nil {
				throw(rt, err)
			}
			a, err := cat.PushN(l, n, p)
			return actionResult(rt, a, err)
		})
	}

	register("alloc", func(call goja.FunctionCall) goja.Value {
		l := loc()
		p, err := toParam("alloc", l, call.Argument(0))
		if err != nil {
			throw(rt, err)
		}
		pushOffsets := boolArg(call, 1, false)
		a, err := cat.Alloc(l, p, pushOffsets)
		return actionResult(rt, a, err)
	})

	register("allocUnsafe", func(call goja.FunctionCall) goja.Value {
		l := loc()
		p, err := toParam("allocUnsafe", l, call.Argument(0))
		if err != nil {
			throw(rt, err)
		}
		a, err := cat.AllocUnsafe(l, p)
		return actionResult(rt, a, err)
	})

	register("allocStack", func(call goja.FunctionCall) goja.Value {
		l := loc()
		n := 0
		var ref *ir.RelativeStackReference
		switch x := call.Argument(0).Export().(type) {
		case int64:
			n = int(x)
		case *ir.RelativeStackReference:
			ref = x
		default:
			throw(rt, helpers.NewInputValidationError("allocStack", l, "first argument must be a count or a stack reference, got %T", x))
		}
		pushOffsets := boolArg(call, 1, false)
		a, err := cat.AllocStack(l, n, ref, pushOffsets)
		return actionResult(rt, a, err)
	})

	register("pushCallDataOffsets", func(call goja.FunctionCall) goja.Value {
		l := loc()
		types, err := abiTypesArg(call.Argument(0))
		if err != nil {
			throw(rt, err)
		}
		a, err := cat.PushCallDataOffsets(l, types)
		return actionResult(rt, a, err)
	})

	register("pushCallDataOffsetsReverse", func(call goja.FunctionCall) goja.Value {
		l := loc()
		types, err := abiTypesArg(call.Argument(0))
		if err != nil {
			throw(rt, err)
		}
		a, err := cat.PushCallDataOffsetsReverse(l, types)
		return actionResult(rt, a, err)
	})

	register("calldataload", func(call goja.FunctionCall) goja.Value {
		l := loc()
		var offset helpers.Param
		if !goja.IsUndefined(call.Argument(0)) {
			p, err := toParam("calldataload", l, call.Argument(0))
			if err != nil {
				throw(rt, err)
			}
			offset = p
		}
		length := 32
		if !goja.IsUndefined(call.Argument(1)) {
			length = int(call.Argument(1).ToInteger())
		}
		a, err := cat.CalldataLoad(l, offset, length)
		return actionResult(rt, a, err)
	})

	register("jump", func(call goja.FunctionCall) goja.Value {
		l := loc()
		target, err := optionalParam("jump", l, call.Argument(0))
		if err != nil {
			throw(rt, err)
		}
		a, err := cat.Jump(l, target)
		return actionResult(rt, a, err)
	})

	register("jumpi", func(call goja.FunctionCall) goja.Value {
		l := loc()
		target, err := optionalParam("jumpi", l, call.Argument(0))
		if err != nil {
			throw(rt, err)
		}
		a, err := cat.Jumpi(l, target)
		return actionResult(rt, a, err)
	})

	register("dispatch", func(call goja.FunctionCall) goja.Value {
		l := loc()
		routes, err := routesArg(rt, "dispatch", l, call.Argument(0))
		if err != nil {
			throw(rt, err)
		}
		a, err := cat.Dispatch(l, routes)
		return actionResult(rt, a, err)
	})

	register("revert", func(call goja.FunctionCall) goja.Value {
		l := loc()
		reason, err := hexableArg("revert", l, call.Argument(0))
		if err != nil {
			throw(rt, err)
		}
		a, err := cat.Revert(l, reason)
		return actionResult(rt, a, err)
	})

	register("assertNonPayable", func(call goja.FunctionCall) goja.Value {
		l := loc()
		reason, err := hexableArg("assertNonPayable", l, call.Argument(0))
		if err != nil {
			throw(rt, err)
		}
		a, err := cat.AssertNonPayable(l, reason)
		return actionResult(rt, a, err)
	})

	register("assert", func(call goja.FunctionCall) goja.Value {
		l := loc()
		reason, err := hexableArg("assert", l, call.Argument(0))
		if err != nil {
			throw(rt, err)
		}
		a, err := cat.Assert(l, reason)
		return actionResult(rt, a, err)
	})

	register("bail", func(call goja.FunctionCall) goja.Value {
		l := loc()
		a, err := cat.Bail(l)
		return actionResult(rt, a, err)
	})

	register("set", func(call goja.FunctionCall) goja.Value {
		l := loc()
		ref, err := refArg("set", l, call.Argument(0))
		if err != nil {
			throw(rt, err)
		}
		v, err := toParam("set", l, call.Argument(1))
		if err != nil {
			throw(rt, err)
		}
		a, err := cat.Set(l, ref, v)
		return actionResult(rt, a, err)
	})

	register("dup", func(call goja.FunctionCall) goja.Value {
		l := loc()
		ref, err := refArg("dup", l, call.Argument(0))
		if err != nil {
			throw(rt, err)
		}
		a, err := cat.Dup(l, ref)
		return actionResult(rt, a, err)
	})

	register("label", func(call goja.FunctionCall) goja.Value {
		l := loc()
		name := call.Argument(0).String()
		a := cat.Label(l, name)
		return actionResult(rt, a, nil)
	})

	register("comment", func(call goja.FunctionCall) goja.Value {
		cat.Comment(call.Argument(0).String())
		return goja.Undefined()
	})

	for n := 1; n <= 16; n++ {
		n := n
		register(fmt.Sprintf("dup%d", n), func(call goja.FunctionCall) goja.Value {
			l := loc()
			a, err := cat.RawOpcode(l, opcode.DupN(n))
			return actionResult(rt, a, err)
		})
		register(fmt.Sprintf("swap%d", n), func(call goja.FunctionCall) goja.Value {
			l := loc()
			a, err := cat.RawOpcode(l, opcode.SwapN(n))
			return actionResult(rt, a, err)
		})
	}

	register("$ptr", func(call goja.FunctionCall) goja.Value {
		return rt.ToValue(helpers.ExprPtr(call.Argument(0).String()))
	})

	register("$concat", func(call goja.FunctionCall) goja.Value {
		l := loc()
		parts, err := toParams("$concat", l, call.Arguments)
		if err != nil {
			throw(rt, err)
		}
		v, err := helpers.ExprConcat(l, parts...)
		if err != nil {
			throw(rt, err)
		}
		return rt.ToValue(v)
	})

	register("$jumpmap", func(call goja.FunctionCall) goja.Value {
		names := make([]string, len(call.Arguments))
		for i, a := range call.Arguments {
			names[i] = a.String()
		}
		return rt.ToValue(helpers.ExprJumpMap(names))
	})

	register("$bytelen", func(call goja.FunctionCall) goja.Value {
		l := loc()
		p, err := toParam("$bytelen", l, call.Argument(0))
		if err != nil {
			throw(rt, err)
		}
		v, err := helpers.ExprByteLen(l, p)
		if err != nil {
			throw(rt, err)
		}
		return rt.ToValue(v)
	})

	register("$hex", func(call goja.FunctionCall) goja.Value {
		v, err := helpers.ExprHex(call.Argument(0).String())
		if err != nil {
			throw(rt, err)
		}
		return rt.ToValue(v)
	})

	register("$pad", func(call goja.FunctionCall) goja.Value {
		l := loc()
		p, err := toParam("$pad", l, call.Argument(0))
		if err != nil {
			throw(rt, err)
		}
		unit := int(call.Argument(1).ToInteger())
		side := ir.PadLeft
		if strings.EqualFold(call.Argument(2).String(), "right") {
			side = ir.PadRight
		}
		v, err := helpers.ExprPad(l, p, unit, side)
		if err != nil {
			throw(rt, err)
		}
		return rt.ToValue(v)
	})

	register("$selector", func(call goja.FunctionCall) goja.Value {
		v, err := helpers.ExprSelector(call.Argument(0).String())
		if err != nil {
			throw(rt, err)
		}
		return rt.ToValue(v)
	})

	register("$keccak256", func(call goja.FunctionCall) goja.Value {
		l := loc()
		p, err := toParam("$keccak256", l, call.Argument(0))
		if err != nil {
			throw(rt, err)
		}
		v, err := helpers.ExprKeccak256(l, p)
		if err != nil {
			throw(rt, err)
		}
		return rt.ToValue(v)
	})

	register("$", func(call goja.FunctionCall) goja.Value {
		cat.ConfigSet(call.Argument(0).String(), call.Argument(1).Export())
		return goja.Undefined()
	})

	for name, op := range helpers.DefaultOpcodeNames() {
		op := op
		name := name
		register(name, func(call goja.FunctionCall) goja.Value {
			l := loc()
			args, err := toParams(name, l, call.Arguments)
			if err != nil {
				throw(rt, err)
			}
			a, err := cat.DefaultOpcodeHelper(l, op, args)
			return actionResult(rt, a, err)
		})
	}

	preambleLines = strings.Count(sb.String(), "\n")
	return sb.String(), preambleLines, nil
}

func boolArg(call goja.FunctionCall, idx int, def bool) bool {
	v := call.Argument(idx)
	if goja.IsUndefined(v) {
		return def
	}
	return v.ToBoolean()
}

func refArg(helper string, loc ir.SourceLoc, v goja.Value) (*ir.RelativeStackReference, error) {
	ref, ok := v.Export().(*ir.RelativeStackReference)
	if !ok {
		return nil, helpers.NewInputValidationError(helper, loc, "argument must be a destructured stack reference, got %T", v.Export())
	}
	return ref, nil
}

func optionalParam(helper string, loc ir.SourceLoc, v goja.Value) (helpers.Param, error) {
	if goja.IsUndefined(v) {
		return nil, nil
	}
	return toParam(helper, loc, v)
}

func hexableArg(helper string, loc ir.SourceLoc, v goja.Value) (ir.Hexable, error) {
	if goja.IsUndefined(v) {
		return nil, nil
	}
	switch x := v.Export().(type) {
	case ir.Hexable:
		return x, nil
	case string:
		return helpers.ExprHex(x)
	default:
		p, err := toParam(helper, loc, v)
		if err != nil {
			return nil, err
		}
		switch pv := p.(type) {
		case helpers.ValueParam:
			return pv.Value, nil
		default:
			return nil, helpers.NewInputValidationError(helper, loc, "argument cannot be used as reason data")
		}
	}
}

var abiTypeNames = map[string]helpers.AbiType{
	"uint":  helpers.AbiUint,
	"bytes": helpers.AbiBytes,
}

func abiTypesArg(v goja.Value) ([]helpers.AbiType, error) {
	items, ok := v.Export().([]interface{})
	if !ok {
		return nil, fmt.Errorf("evmscript: expected an array of abi type names")
	}
	out := make([]helpers.AbiType, len(items))
	for i, item := range items {
		name, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("evmscript: abi type %d is not a string", i)
		}
		t, ok := abiTypeNames[name]
		if !ok {
			return nil, fmt.Errorf("evmscript: unrecognized abi type %q", name)
		}
		out[i] = t
	}
	return out, nil
}

// routesArg converts dispatch()'s {signature: target} argument into the
// catalogue's map[string]ir.Hexable, where each target may be either a
// forward-declared $ptr(name) (a LabelPointer) or the result of a helper
// call made earlier and held by reference (an Action's published slots).
func routesArg(rt *goja.Runtime, helper string, loc ir.SourceLoc, v goja.Value) (map[string]ir.Hexable, error) {
	obj := v.ToObject(rt)
	if obj == nil {
		return nil, helpers.NewInputValidationError(helper, loc, "dispatch() expects an object of signature -> target routes")
	}
	routes := make(map[string]ir.Hexable)
	for _, sig := range obj.Keys() {
		p, err := toParam(helper, loc, obj.Get(sig))
		if err != nil {
			return nil, err
		}
		switch x := p.(type) {
		case helpers.ValueParam:
			routes[sig] = x.Value
		case helpers.ActionParam:
			routes[sig] = x.Action.Pointer()
		default:
			return nil, helpers.NewInputValidationError(helper, loc, "dispatch() route %q cannot be used as a jump target", sig)
		}
	}
	return routes, nil
}
