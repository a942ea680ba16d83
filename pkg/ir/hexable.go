// Package ir implements the hexable value tree and the Action container
// described by the compiler's intermediate representation: literal
// integers, opcode references, pointer placeholders, byte/word slices,
// padded values, concatenations, string encodings, jump tables, and
// stack-reference markers, together with the Action type that groups them.
package ir

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/tcoulter/evmscript/pkg/opcode"
)

// Hexable is the tagged union of IR leaf and composite values. Every
// variant must be pure and side-effect free in ByteLength, since the
// processor calls it repeatedly while computing byte offsets.
type Hexable interface {
	// ByteLength returns the number of bytes this value encodes to.
	ByteLength() int
	// ToHex returns exactly 2*ByteLength() hex digits. ctx supplies the
	// surviving host namespace (for LabelPointer) and the resolved byte
	// offset of every Action (for ActionPointer); both may be nil for
	// values that don't need them.
	ToHex(ctx *EmitContext) (string, error)
}

// EmitContext carries the two pieces of state hex emission needs beyond the
// value tree itself.
type EmitContext struct {
	// Namespace maps a surviving host binding name to the Action it points
	// to, for LabelPointer resolution.
	Namespace map[string]*Action
	// Offsets maps an Action to the byte offset of its first emitted byte
	// (including its JUMPDEST, if any), for ActionPointer resolution.
	Offsets map[*Action]int
}

func roundUp(n, unit int) int {
	if n <= 0 {
		return 0
	}
	return ((n + unit - 1) / unit) * unit
}

func hexUpper(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

// Literal is a raw u256 integer. Its byte length is the minimal big-endian
// encoding length, with zero encoded as a single 0x00 byte.
type Literal struct {
	Value *big.Int
}

var maxU256 = new(big.Int).Lsh(big.NewInt(1), 256)

// NewLiteral validates that v fits in the VM's 256-bit word and returns a
// Literal wrapping it.
func NewLiteral(v *big.Int) (*Literal, error) {
	if v.Sign() < 0 {
		return nil, fmt.Errorf("evmscript: literal %s is negative, only unsigned 256-bit values are supported", v.String())
	}
	if v.Cmp(maxU256) >= 0 {
		return nil, fmt.Errorf("evmscript: literal %s does not fit in 256 bits", v.String())
	}
	return &Literal{Value: v}, nil
}

func (l *Literal) ByteLength() int {
	if l.Value.Sign() == 0 {
		return 1
	}
	return (l.Value.BitLen() + 7) / 8
}

func (l *Literal) ToHex(ctx *EmitContext) (string, error) {
	buf := make([]byte, l.ByteLength())
	l.Value.FillBytes(buf)
	return hexUpper(buf), nil
}

// Op is a single opcode byte.
type Op struct {
	Code opcode.Opcode
}

func (o Op) ByteLength() int { return 1 }

func (o Op) ToHex(ctx *EmitContext) (string, error) {
	return hexUpper([]byte{byte(o.Code)}), nil
}

// Concat concatenates a list of Hexables; its length is the sum of theirs.
type Concat struct {
	Items []Hexable
}

func (c Concat) ByteLength() int {
	total := 0
	for _, it := range c.Items {
		total += it.ByteLength()
	}
	return total
}

func (c Concat) ToHex(ctx *EmitContext) (string, error) {
	var sb strings.Builder
	for i, it := range c.Items {
		s, err := it.ToHex(ctx)
		if err != nil {
			return "", fmt.Errorf("concat item %d: %w", i, err)
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

// ByteRange is a sub-slice of inner's byte encoding, right-padded with
// 0x00 when the slice extends past inner's own length.
type ByteRange struct {
	Inner      Hexable
	Start, Len int
}

// WordRange is a ByteRange expressed in 32-byte words.
func WordRange(inner Hexable, wordStart, wordLen int) ByteRange {
	return ByteRange{Inner: inner, Start: 32 * wordStart, Len: 32 * wordLen}
}

func (b ByteRange) ByteLength() int { return b.Len }

func (b ByteRange) ToHex(ctx *EmitContext) (string, error) {
	innerHex, err := b.Inner.ToHex(ctx)
	if err != nil {
		return "", err
	}
	innerBytes, err := hex.DecodeString(innerHex)
	if err != nil {
		return "", fmt.Errorf("evmscript: internal: inner hex not well-formed: %w", err)
	}
	out := make([]byte, b.Len)
	for i := 0; i < b.Len; i++ {
		src := b.Start + i
		if src >= 0 && src < len(innerBytes) {
			out[i] = innerBytes[src]
		}
	}
	return hexUpper(out), nil
}

// PadSide selects which side of a Padded value receives the zero bytes.
type PadSide int

const (
	PadLeft PadSide = iota
	PadRight
)

// Padded rounds inner's visible byte length up to the next multiple of
// Unit bytes, padding with zero bytes on the given Side.
type Padded struct {
	Inner Hexable
	Unit  int
	Side  PadSide
}

func (p Padded) target() int {
	inner := p.Inner.ByteLength()
	if inner == 0 {
		return 0
	}
	return roundUp(inner, p.Unit)
}

func (p Padded) ByteLength() int { return p.target() }

func (p Padded) ToHex(ctx *EmitContext) (string, error) {
	innerHex, err := p.Inner.ToHex(ctx)
	if err != nil {
		return "", err
	}
	innerBytes, err := hex.DecodeString(innerHex)
	if err != nil {
		return "", fmt.Errorf("evmscript: internal: inner hex not well-formed: %w", err)
	}
	padLen := p.target() - len(innerBytes)
	if padLen < 0 {
		padLen = 0
	}
	zeros := make([]byte, padLen)
	var out []byte
	if p.Side == PadLeft {
		out = append(zeros, innerBytes...)
	} else {
		out = append(append([]byte{}, innerBytes...), zeros...)
	}
	return hexUpper(out), nil
}

// SolidityString is a 32-byte big-endian length prefix followed by inner's
// bytes, right-padded to the next multiple of 32.
type SolidityString struct {
	Inner Hexable
}

func (s SolidityString) ByteLength() int {
	return 32 + roundUp(s.Inner.ByteLength(), 32)
}

func (s SolidityString) ToHex(ctx *EmitContext) (string, error) {
	innerLen := s.Inner.ByteLength()
	prefix := make([]byte, 32)
	new(big.Int).SetInt64(int64(innerLen)).FillBytes(prefix)

	innerHex, err := s.Inner.ToHex(ctx)
	if err != nil {
		return "", err
	}
	innerBytes, err := hex.DecodeString(innerHex)
	if err != nil {
		return "", fmt.Errorf("evmscript: internal: inner hex not well-formed: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(prefix)
	buf.Write(innerBytes)
	buf.Write(make([]byte, roundUp(innerLen, 32)-innerLen))
	return hexUpper(buf.Bytes()), nil
}

// LabelPointer is a deferred reference to a name in the surviving host
// namespace, resolved to an ActionPointer at hex-emission time.
type LabelPointer struct {
	Name string
}

func (l LabelPointer) ByteLength() int { return 2 }

func (l LabelPointer) ToHex(ctx *EmitContext) (string, error) {
	if ctx == nil || ctx.Namespace == nil {
		return "", NewInternalError("$ptr(%q) could not be resolved: no namespace available", l.Name)
	}
	action, ok := ctx.Namespace[l.Name]
	if !ok {
		return "", &LabelResolutionError{Name: l.Name}
	}
	return (&ActionPointer{action: action}).ToHex(ctx)
}

// JumpMap concatenates a list of LabelPointers, right-padded to the next
// multiple of 32 bytes.
type JumpMap struct {
	Labels []LabelPointer
}

func (j JumpMap) ByteLength() int { return roundUp(2*len(j.Labels), 32) }

func (j JumpMap) ToHex(ctx *EmitContext) (string, error) {
	var buf strings.Builder
	for i, l := range j.Labels {
		s, err := l.ToHex(ctx)
		if err != nil {
			return "", fmt.Errorf("jumpmap label %d: %w", i, err)
		}
		buf.WriteString(s)
	}
	have := 2 * len(j.Labels)
	total := j.ByteLength()
	buf.WriteString(strings.Repeat("00", total-have))
	return strings.ToUpper(buf.String()), nil
}
