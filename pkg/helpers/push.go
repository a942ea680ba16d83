package helpers

import (
	"math/big"

	"github.com/tcoulter/evmscript/pkg/ir"
	"github.com/tcoulter/evmscript/pkg/opcode"
)

// Push emits a single PUSHn of v's minimal encoding.
func (c *Catalogue) Push(loc ir.SourceLoc, v Param) (*ir.Action, error) {
	a := c.newAction("push", loc)
	val, err := valueOf("push", loc, v)
	if err != nil {
		return nil, err
	}
	if val.ByteLength() == 0 || val.ByteLength() > 32 {
		return nil, invalid("push", loc, "value is %d bytes, push operands must be 1-32 bytes", val.ByteLength())
	}
	a.Append(ir.Op{Code: opcode.PushN(val.ByteLength())}, val)
	return a, nil
}

// PushN emits PUSHn with exactly n bytes, rejecting a value whose encoding
// is not exactly n bytes long; it backs the fixed-width family of push
// helpers (push1..push32).
func (c *Catalogue) PushN(loc ir.SourceLoc, n int, v Param) (*ir.Action, error) {
	a := c.newAction("push", loc)
	val, err := valueOf("pushN", loc, v)
	if err != nil {
		return nil, err
	}
	if n < 1 || n > 32 {
		return nil, invalid("pushN", loc, "n must be 1-32, got %d", n)
	}
	if val.ByteLength() != n {
		return nil, invalid("pushN", loc, "value is %d bytes, push%d takes exactly %d", val.ByteLength(), n, n)
	}
	a.Append(ir.Op{Code: opcode.PushN(n)}, ir.Padded{Inner: val, Unit: n, Side: ir.PadLeft})
	return a, nil
}

// Alloc materializes v into memory one 32-byte word at a time via a chain
// of MSIZE/PUSHn/MSTORE; the final partial word is shifted into place with
// SHL rather than padded, to avoid emitting wasted zero bytes. When
// pushOffsets is true the resulting stack is [memOffset, byteLen, ...].
func (c *Catalogue) Alloc(loc ir.SourceLoc, v Param, pushOffsets bool) (*ir.Action, error) {
	a := c.newAction("alloc", loc)
	val, err := valueOf("alloc", loc, v)
	if err != nil {
		return nil, err
	}

	total := val.ByteLength()
	words := (total + 31) / 32

	// MSIZE before the first word is the allocation's base offset: DUP2
	// hands a copy to that word's MSTORE and the original stays on the
	// stack. Each later word reads MSIZE again as its own write offset.
	for w := 0; w < words; w++ {
		start := w * 32
		length := 32
		if start+length > total {
			length = total - start
		}
		chunk := ir.ByteRange{Inner: val, Start: start, Len: length}

		if w == 0 {
			a.Append(ir.Op{Code: opcode.MSIZE})
		}
		if length == 32 {
			a.Append(ir.Op{Code: opcode.PushN(32)}, chunk)
		} else {
			shift, err := ir.NewLiteral(big.NewInt(int64((32 - length) * 8)))
			if err != nil {
				return nil, err
			}
			a.Append(ir.Op{Code: opcode.PushN(length)}, chunk)
			a.Append(ir.Op{Code: opcode.PushN(shift.ByteLength())}, shift)
			a.Append(ir.Op{Code: opcode.SHL})
		}
		if w == 0 {
			a.Append(ir.Op{Code: opcode.DupN(2)}, ir.Op{Code: opcode.MSTORE})
		} else {
			a.Append(ir.Op{Code: opcode.MSIZE}, ir.Op{Code: opcode.MSTORE})
		}
	}

	if pushOffsets {
		lenLit, err := ir.NewLiteral(big.NewInt(int64(total)))
		if err != nil {
			return nil, err
		}
		a.Append(ir.Op{Code: opcode.PushN(lenLit.ByteLength())}, lenLit, ir.Op{Code: opcode.SwapN(1)})
	} else {
		a.Append(ir.Op{Code: opcode.POP})
	}
	return a, nil
}

// AllocUnsafe embeds v as a raw bytecode blob deferred to the tail of the
// program and copies it into memory at runtime via CODECOPY, trading a
// dependency on the blob's resolved byte offset for cheaper gas than Alloc.
func (c *Catalogue) AllocUnsafe(loc ir.SourceLoc, v Param) (*ir.Action, error) {
	a := c.newAction("allocUnsafe", loc)
	val, err := valueOf("allocUnsafe", loc, v)
	if err != nil {
		return nil, err
	}

	blob := ir.NewAction("allocUnsafe_blob", loc)
	blob.IsTail = true
	blob.Append(val)
	c.ctx.Push(blob)

	lenLit, err := ir.NewLiteral(big.NewInt(int64(val.ByteLength())))
	if err != nil {
		return nil, err
	}
	a.Append(ir.Op{Code: opcode.PushN(lenLit.ByteLength())}, lenLit)
	a.Append(ir.Op{Code: opcode.MSIZE})
	a.Append(ir.Op{Code: opcode.DupN(2)})
	a.Append(ir.Op{Code: opcode.PushN(2)}, blob.Pointer())
	a.Append(ir.Op{Code: opcode.DupN(3)})
	a.Append(ir.Op{Code: opcode.CODECOPY})
	return a, nil
}

// AllocStack writes n existing stack items into fresh memory, or - when ref
// is a destructured stack reference instead of an integer - copies that
// one slot into memory without consuming the original.
func (c *Catalogue) AllocStack(loc ir.SourceLoc, n int, ref *ir.RelativeStackReference, pushOffsets bool) (*ir.Action, error) {
	a := c.newAction("allocStack", loc)

	if ref != nil {
		a.Append(&ir.StackRef{Ref: ref, Kind: ir.KindDup})
		a.Append(ir.Op{Code: opcode.MSIZE}, ir.Op{Code: opcode.MSTORE})
	} else {
		if n < 1 {
			return nil, invalid("allocStack", loc, "n must be at least 1, got %d", n)
		}
		for i := 0; i < n; i++ {
			a.Append(ir.Op{Code: opcode.MSIZE}, ir.Op{Code: opcode.MSTORE})
		}
	}

	if pushOffsets {
		width := n
		if ref != nil {
			width = 1
		}
		lenLit, err := ir.NewLiteral(big.NewInt(int64(32 * width)))
		if err != nil {
			return nil, err
		}
		a.Append(ir.Op{Code: opcode.MSIZE})
		a.Append(ir.Op{Code: opcode.PushN(lenLit.ByteLength())}, lenLit)
	}
	return a, nil
}

// AbiType names the calldata argument shapes pushCallDataOffsets[Reverse]
// understands.
type AbiType int

const (
	AbiUint AbiType = iota
	AbiBytes
)

// PushCallDataOffsets emits the stack-preparation prologue that decodes an
// EVM ABI-encoded call, arranging the first argument on top of the stack.
func (c *Catalogue) PushCallDataOffsets(loc ir.SourceLoc, types []AbiType) (*ir.Action, error) {
	return c.pushCallDataOffsets(loc, types, false)
}

// PushCallDataOffsetsReverse is PushCallDataOffsets with the last argument
// left on top instead of the first.
func (c *Catalogue) PushCallDataOffsetsReverse(loc ir.SourceLoc, types []AbiType) (*ir.Action, error) {
	return c.pushCallDataOffsets(loc, types, true)
}

func (c *Catalogue) pushCallDataOffsets(loc ir.SourceLoc, types []AbiType, reverse bool) (*ir.Action, error) {
	a := c.newAction("pushCallDataOffsets", loc)

	order := make([]int, len(types))
	for i := range order {
		order[i] = i
	}
	if reverse {
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
	}

	seed := int64(4) // past the 4-byte selector
	if reverse {
		seed = int64(4 + 32*(len(types)-1))
	}
	seedLit, err := ir.NewLiteral(big.NewInt(seed))
	if err != nil {
		return nil, err
	}
	a.Append(ir.Op{Code: opcode.PushN(seedLit.ByteLength())}, seedLit)

	for _, idx := range order {
		switch types[idx] {
		case AbiUint:
			a.Append(ir.Op{Code: opcode.DupN(1)}, ir.Op{Code: opcode.CALLDATALOAD}, ir.Op{Code: opcode.SwapN(1)})
		case AbiBytes:
			// Resolve the word-offset-to-the-pointer into the absolute
			// data start and the decoded length, leaving both on the
			// stack above the running cursor: DUP1 CALLDATALOAD DUP2 ADD
			// DUP1 CALLDATALOAD SWAP1 PUSH1 0x20 ADD SWAP2.
			a.Append(
				ir.Op{Code: opcode.DupN(1)}, ir.Op{Code: opcode.CALLDATALOAD},
				ir.Op{Code: opcode.DupN(2)}, ir.Op{Code: opcode.ADD},
				ir.Op{Code: opcode.DupN(1)}, ir.Op{Code: opcode.CALLDATALOAD},
				ir.Op{Code: opcode.SwapN(1)},
			)
			thirtyTwo, err := ir.NewLiteral(big.NewInt(32))
			if err != nil {
				return nil, err
			}
			a.Append(ir.Op{Code: opcode.PushN(1)}, thirtyTwo, ir.Op{Code: opcode.ADD}, ir.Op{Code: opcode.SwapN(2)})
		default:
			return nil, invalid("pushCallDataOffsets", loc, "unrecognized abi type %v", types[idx])
		}
	}
	a.Append(ir.Op{Code: opcode.POP})
	return a, nil
}

// CalldataLoad loads len bytes of calldata starting at offset (default the
// top of stack, when offset is nil), right-shifting when len < 32 so the
// value lands right-aligned in the word.
func (c *Catalogue) CalldataLoad(loc ir.SourceLoc, offset Param, length int) (*ir.Action, error) {
	a := c.newAction("calldataload", loc)
	if length <= 0 || length > 32 {
		return nil, invalid("calldataload", loc, "len must be 1-32, got %d", length)
	}
	if offset != nil {
		if err := c.appendParam("calldataload", a, offset); err != nil {
			return nil, err
		}
	}
	a.Append(ir.Op{Code: opcode.CALLDATALOAD})
	if length < 32 {
		shift, err := ir.NewLiteral(big.NewInt(int64((32 - length) * 8)))
		if err != nil {
			return nil, err
		}
		a.Append(ir.Op{Code: opcode.PushN(shift.ByteLength())}, shift, ir.Op{Code: opcode.SHR})
	}
	return a, nil
}
