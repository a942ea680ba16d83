package host

import (
	"math/big"
	"strings"

	"github.com/dop251/goja"

	"github.com/tcoulter/evmscript/pkg/helpers"
	"github.com/tcoulter/evmscript/pkg/ir"
)

// toParam classifies a single JS argument into the helper catalogue's
// Param sum type. The classification is driven entirely by what the
// argument exports to as a Go value, which is what lets a script pass a
// raw number, a "0x..."-prefixed hex string, the return value of a prior
// Action-producing helper call (exported as that Action's full
// VirtualStack slice), a single destructured stack slot (exported as a
// lone *ir.RelativeStackReference), or the result of an expression helper
// like $pad/$concat (exported as whatever concrete ir.Hexable it built).
func toParam(helper string, loc ir.SourceLoc, v goja.Value) (helpers.Param, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, helpers.NewInputValidationError(helper, loc, "argument is undefined or null")
	}

	exported := v.Export()
	switch x := exported.(type) {
	case []*ir.RelativeStackReference:
		if len(x) == 0 || x[0] == nil {
			return nil, helpers.NewInputValidationError(helper, loc, "action result has no published stack slots")
		}
		owner := x[0].Owner
		return helpers.ActionParam{Action: owner, Loc: owner.SourceLoc}, nil
	case *ir.RelativeStackReference:
		return helpers.RefParam{Ref: x}, nil
	case ir.Hexable:
		return helpers.ValueParam{Value: x}, nil
	case int64:
		return helpers.Int(x)
	case float64:
		if x != float64(int64(x)) {
			return nil, helpers.NewInputValidationError(helper, loc, "numeric argument %v is not an integer", x)
		}
		return helpers.Int(int64(x))
	case *big.Int:
		return helpers.BigInt(x)
	case string:
		return paramFromString(helper, loc, x)
	default:
		return nil, helpers.NewInputValidationError(helper, loc, "argument of type %T is not a valid literal, hex string, action result, or stack reference", exported)
	}
}

// paramFromString accepts only a "0x"-prefixed hex literal; an arbitrary
// text string must go through $hex instead, which is the only helper that
// treats a plain string as UTF-8 byte data.
func paramFromString(helper string, loc ir.SourceLoc, s string) (helpers.Param, error) {
	if !strings.HasPrefix(s, "0x") {
		return nil, helpers.NewInputValidationError(helper, loc, "string %q is not a hex literal; use $hex() for text data", s)
	}
	digits := strings.TrimPrefix(s, "0x")
	if digits == "" {
		digits = "0"
	}
	n, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, helpers.NewInputValidationError(helper, loc, "string %q is not a valid hex literal", s)
	}
	return helpers.BigInt(n)
}

// toParams converts every argument in args.
func toParams(helper string, loc ir.SourceLoc, args []goja.Value) ([]helpers.Param, error) {
	out := make([]helpers.Param, len(args))
	for i, a := range args {
		p, err := toParam(helper, loc, a)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}
