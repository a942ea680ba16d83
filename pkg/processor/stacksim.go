package processor

import (
	"fmt"

	"github.com/tcoulter/evmscript/pkg/ir"
	"github.com/tcoulter/evmscript/pkg/opcode"
)

// maxStackDepth mirrors the VM's own limit on how deep a DUP/SWAP can
// reach: sixteen items below (and including) the top.
const maxStackDepth = 16

// simStack is the processor's symbolic model of the runtime stack: a
// front-is-top slice of the RelativeStackReference identities currently
// occupying each position, with nil marking an untracked value (the
// result of a generic opcode or a dup, whose identity nothing downstream
// is expected to reference by name).
type simStack []*ir.RelativeStackReference

func (s simStack) indexOf(ref *ir.RelativeStackReference) int {
	for i, r := range s {
		if r == ref {
			return i
		}
	}
	return -1
}

// Lower walks items, resolving every *ir.StackRef to a concrete DUPn/SWAPn
// Op, tracking the Action each item's net push/pop leaves on top, and
// recording each Action's resolved byte offset (starting at base) into
// offsets. It returns the fully-lowered Hexable stream and the total byte
// length consumed.
func Lower(items []ir.Item, base int, offsets map[*ir.Action]int) ([]ir.Hexable, int, error) {
	out := make([]ir.Hexable, 0, len(items))
	var stack simStack
	byteOffset := base
	startHeight := make(map[*ir.Action]int)

	for i, item := range items {
		switch v := item.(type) {
		case *ir.StackRef:
			lowered, newStack, err := lowerRef(stack, v)
			if err != nil {
				return nil, 0, fmt.Errorf("item %d: %w", i, err)
			}
			if lowered != nil {
				out = append(out, *lowered)
				byteOffset += lowered.ByteLength()
			}
			if v.Kind == ir.KindHotSwap {
				// set(): discard the old slot value the SWAP brought up.
				pop := ir.Op{Code: opcode.POP}
				out = append(out, pop)
				byteOffset += pop.ByteLength()
			}
			stack = newStack
		case ir.Op:
			stack = applyStackDelta(stack, v.Code)
			out = append(out, v)
			byteOffset += v.ByteLength()
		case actionStart:
			offsets[v.action] = byteOffset
			startHeight[v.action] = len(stack)
		case actionEnd:
			stack = publish(stack, v.action, startHeight[v.action])
		case ir.Hexable:
			out = append(out, v)
			byteOffset += v.ByteLength()
		default:
			return nil, 0, fmt.Errorf("item %d: unexpected lowered item type %T", i, item)
		}
	}
	return out, byteOffset, nil
}

func lowerRef(stack simStack, ref *ir.StackRef) (*ir.Op, simStack, error) {
	switch ref.Kind {
	case ir.KindDup:
		depth := stack.indexOf(ref.Ref)
		if depth < 0 {
			return nil, nil, ir.NewStackReferenceError(ref.Ref.Owner.SourceLoc, "stack reference to %q slot %d is not reachable from the current stack", ref.Ref.Owner.Name, ref.Ref.Slot)
		}
		if depth >= maxStackDepth {
			return nil, nil, ir.NewStackReferenceError(ref.Ref.Owner.SourceLoc, "stack reference to %q slot %d is %d deep, beyond DUP16's reach", ref.Ref.Owner.Name, ref.Ref.Slot, depth)
		}
		// The new top-of-stack slot takes on the duplicated reference's
		// own identity, not a fresh one, so that chains of dup() calls
		// against the same handle keep resolving correctly.
		newStack := append(simStack{ref.Ref}, stack...)
		op := ir.Op{Code: opcode.DupN(depth + 1)}
		return &op, newStack, nil

	case ir.KindSwap:
		depth := stack.indexOf(ref.Ref)
		if depth < 0 {
			return nil, nil, ir.NewStackReferenceError(ref.Ref.Owner.SourceLoc, "stack reference to %q slot %d is not reachable from the current stack", ref.Ref.Owner.Name, ref.Ref.Slot)
		}
		if depth == 0 {
			return nil, nil, ir.NewStackReferenceError(ref.Ref.Owner.SourceLoc, "stack reference to %q slot %d is already on top of stack: SWAP0 does not exist", ref.Ref.Owner.Name, ref.Ref.Slot)
		}
		if depth > maxStackDepth {
			return nil, nil, ir.NewStackReferenceError(ref.Ref.Owner.SourceLoc, "stack reference to %q slot %d is %d deep, beyond SWAP16's reach", ref.Ref.Owner.Name, ref.Ref.Slot, depth)
		}
		newStack := append(simStack{}, stack...)
		newStack[0], newStack[depth] = newStack[depth], newStack[0]
		op := ir.Op{Code: opcode.SwapN(depth)}
		return &op, newStack, nil

	case ir.KindHotSwap:
		depth := stack.indexOf(ref.Ref)
		if depth <= 0 {
			return nil, nil, ir.NewStackReferenceError(ref.Ref.Owner.SourceLoc, "set() target %q slot %d was not found beneath the pushed value", ref.Ref.Owner.Name, ref.Ref.Slot)
		}
		if depth > maxStackDepth {
			return nil, nil, ir.NewStackReferenceError(ref.Ref.Owner.SourceLoc, "set() target %q slot %d is %d deep, beyond SWAP16's reach", ref.Ref.Owner.Name, ref.Ref.Slot, depth)
		}
		// The physical SWAP exchanges positions 0 and depth, and Lower
		// follows it with a POP of the old value now on top. Bookkeeping
		// therefore drops the top entry instead of permuting: ref's
		// identity already denotes that slot permanently, and the
		// caller of set() does not expect the pushed value to remain
		// addressable afterward.
		newStack := append(simStack{}, stack[1:]...)
		op := ir.Op{Code: opcode.SwapN(depth)}
		return &op, newStack, nil

	default:
		return nil, nil, fmt.Errorf("unrecognized stack reference kind %v", ref.Kind)
	}
}

// publish relabels the slots a's own code actually left on top of the
// stack with a's published VirtualStack identities, in order, so that
// later references to a's slots resolve correctly regardless of whether a
// was top-level or was itself inlined as a child of something else. Only
// the net-new depth a produced (its height now minus its height when it
// started) is relabeled; everything beneath that keeps whatever identity
// an earlier action already gave it. An action that net-consumed rather
// than produced (e.g. a bare pop) publishes nothing.
func publish(stack simStack, a *ir.Action, startHeight int) simStack {
	net := len(stack) - startHeight
	if net <= 0 {
		return stack
	}
	k := net
	if k > len(a.VirtualStack) {
		k = len(a.VirtualStack)
	}
	if k > len(stack) {
		k = len(stack)
	}
	newStack := append(simStack{}, stack...)
	for i := 0; i < k; i++ {
		newStack[i] = a.VirtualStack[i]
	}
	return newStack
}

// applyStackDelta advances the symbolic stack past a plain opcode: pops
// consumed items, then pushes untracked (nil) entries for whatever it
// produces.
func applyStackDelta(stack simStack, op opcode.Opcode) simStack {
	consumed, produced := opcode.MustLookup(op).Removed, opcode.MustLookup(op).Added
	if int(consumed) > len(stack) {
		consumed = uint8(len(stack))
	}
	rest := stack[consumed:]
	newStack := make(simStack, 0, len(rest)+int(produced))
	for i := uint8(0); i < produced; i++ {
		newStack = append(newStack, nil)
	}
	newStack = append(newStack, rest...)
	return newStack
}
