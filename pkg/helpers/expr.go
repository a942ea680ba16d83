package helpers

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"golang.org/x/crypto/sha3"

	"github.com/tcoulter/evmscript/pkg/ir"
)

// Keccak256 hashes data, the one piece of cryptography the catalogue
// itself needs (dispatch's selector computation and the $selector/
// $keccak256 expression helpers).
func Keccak256(data []byte) [32]byte {
	var out [32]byte
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	copy(out[:], h.Sum(nil))
	return out
}

// ExprPtr builds a deferred LabelPointer to name, resolved against the
// surviving host namespace at hex-emission time.
func ExprPtr(name string) ir.Hexable {
	return ir.LabelPointer{Name: name}
}

// ExprConcat concatenates a list of value-position parameters.
func ExprConcat(loc ir.SourceLoc, parts ...Param) (ir.Hexable, error) {
	items := make([]ir.Hexable, len(parts))
	for i, p := range parts {
		v, err := valueOf("$concat", loc, p)
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return ir.Concat{Items: items}, nil
}

// ExprJumpMap builds a JumpMap of LabelPointers to names, in the given
// order, right-padded to the next multiple of 32 bytes.
func ExprJumpMap(names []string) ir.Hexable {
	labels := make([]ir.LabelPointer, len(names))
	for i, n := range names {
		labels[i] = ir.LabelPointer{Name: n}
	}
	return ir.JumpMap{Labels: labels}
}

// ExprByteLen returns v's byte length as a Literal, for scripts that need
// to compute an offset or length arithmetically rather than hardcode it.
func ExprByteLen(loc ir.SourceLoc, v Param) (ir.Hexable, error) {
	val, err := valueOf("$bytelen", loc, v)
	if err != nil {
		return nil, err
	}
	return ir.NewLiteral(big.NewInt(int64(val.ByteLength())))
}

// ExprHex parses s, which may be a "0x"-prefixed hex string or a plain
// UTF-8 string literal (encoded byte-for-byte, as revert reason strings
// are), into a raw byte Hexable.
func ExprHex(s string) (ir.Hexable, error) {
	if len(s) >= 2 && s[0:2] == "0x" {
		b, err := hex.DecodeString(s[2:])
		if err != nil {
			return nil, fmt.Errorf("evmscript: $hex(%q): %w", s, err)
		}
		return rawHex{data: b}, nil
	}
	return rawHex{data: []byte(s)}, nil
}

// rawHex is a fixed byte sequence with no further structure, used as the
// Hexable backing $hex's decoded bytes.
type rawHex struct {
	data []byte
}

func (r rawHex) ByteLength() int { return len(r.data) }

func (r rawHex) ToHex(ctx *ir.EmitContext) (string, error) {
	return hex.EncodeToString(r.data), nil
}

// ExprPad rounds v up to the next multiple of unit bytes, padding on side.
func ExprPad(loc ir.SourceLoc, v Param, unit int, side ir.PadSide) (ir.Hexable, error) {
	val, err := valueOf("$pad", loc, v)
	if err != nil {
		return nil, err
	}
	if unit < 1 {
		return nil, invalid("$pad", loc, "unit must be at least 1, got %d", unit)
	}
	return ir.Padded{Inner: val, Unit: unit, Side: side}, nil
}

// ExprSelector returns the function selector of sig (see Selector),
// left-padded to exactly 4 bytes.
func ExprSelector(sig string) (ir.Hexable, error) {
	sel, err := Selector(sig)
	if err != nil {
		return nil, err
	}
	return ir.Padded{Inner: sel, Unit: 4, Side: ir.PadLeft}, nil
}

// ExprKeccak256 returns the full 32-byte Keccak256 digest of v.
func ExprKeccak256(loc ir.SourceLoc, v Param) (ir.Hexable, error) {
	val, err := valueOf("$keccak256", loc, v)
	if err != nil {
		return nil, err
	}
	hexStr, err := val.ToHex(nil)
	if err != nil {
		return nil, err
	}
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, fmt.Errorf("evmscript: internal: $keccak256 operand hex not well-formed: %w", err)
	}
	digest := Keccak256(raw)
	return ir.NewLiteral(new(big.Int).SetBytes(digest[:]))
}

// ConfigSet implements the bare $("key", value) helper, which sets a
// process-level config flag on the runtime context rather than producing
// an Action.
func (c *Catalogue) ConfigSet(key string, value any) {
	c.ctx.SetConfig(key, value)
}
