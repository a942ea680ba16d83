package helpers

import (
	"strings"

	"github.com/tcoulter/evmscript/pkg/ir"
	"github.com/tcoulter/evmscript/pkg/opcode"
)

// reservedRenames maps an opcode mnemonic to the host-namespace name it is
// exposed under instead, when the mnemonic collides with a scripting
// language keyword.
var reservedRenames = map[string]string{
	"RETURN": "ret",
}

// DefaultName returns the lowercase host-namespace name op is registered
// under, applying the reserved-keyword substitution table.
func DefaultName(op opcode.Opcode) string {
	mnemonic := op.String()
	if renamed, ok := reservedRenames[mnemonic]; ok {
		return renamed
	}
	return strings.ToLower(mnemonic)
}

// DefaultOpcodeNames returns every opcode's host-namespace name, for the
// host adapter to auto-register a wrapper per entry. PUSHn/DUPn/SWAPn are
// excluded: those families are covered by the dedicated pushN/dup/set
// helpers instead of a one-opcode-one-name wrapper.
func DefaultOpcodeNames() map[string]opcode.Opcode {
	out := make(map[string]opcode.Opcode)
	for _, op := range opcode.AllOpcodes() {
		if _, ok := op.IsPushN(); ok || _isDupOrSwap(op) {
			continue
		}
		out[DefaultName(op)] = op
	}
	return out
}

func _isDupOrSwap(op opcode.Opcode) bool {
	if _, ok := op.IsDup(); ok {
		return true
	}
	if _, ok := op.IsSwap(); ok {
		return true
	}
	return false
}

// DefaultOpcodeHelper builds the Action for a bare opcode wrapper: each
// arg is appended in order (applying the composition rule for Action
// arguments), followed by the opcode byte itself. This lets a script write
// add(push(1), push(2)) as shorthand for pushing both operands and then
// emitting ADD.
func (c *Catalogue) DefaultOpcodeHelper(loc ir.SourceLoc, op opcode.Opcode, args []Param) (*ir.Action, error) {
	a := c.newAction(DefaultName(op), loc)
	for _, arg := range args {
		if err := c.appendParam(DefaultName(op), a, arg); err != nil {
			return nil, err
		}
	}
	a.Append(ir.Op{Code: op})
	return a, nil
}

// RawOpcode builds the literal dup1..dup16/swap1..swap16 helpers excluded
// from DefaultOpcodeNames: a single bare opcode byte with no tracked
// stack reference, for scripts that manipulate the stack manually by
// depth rather than through the named-handle dup()/set() helpers.
func (c *Catalogue) RawOpcode(loc ir.SourceLoc, op opcode.Opcode) (*ir.Action, error) {
	a := c.newAction(DefaultName(op), loc)
	a.Append(ir.Op{Code: op})
	return a, nil
}

// Label creates a named, empty Action marked as a jump destination, for
// scripts that want to establish a target before the code that jumps to
// it is known, e.g. `top = label(); ...; jump(top)`.
func (c *Catalogue) Label(loc ir.SourceLoc, name string) *ir.Action {
	a := c.newAction(name, loc)
	a.IsJumpDestination = true
	return a
}

// Comment is a no-op helper: it exists purely so a script can leave an
// annotation in source without it affecting the compiled program.
func (c *Catalogue) Comment(string) {}
