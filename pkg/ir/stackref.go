package ir

import "fmt"


// RelativeStackReference is a slot marker an Action publishes: an identity,
// not a value. Two stack items share an identity iff they are the same
// logical slot carried forward by opcodes. It must be lowered to a
// concrete DUPn/SWAPn opcode by the processor before hex emission; calling
// ToHex on a bare reference is always a fatal internal error. ByteLength is
// safe to call unlowered, since every lowering of a reference occupies
// exactly one opcode byte.
type RelativeStackReference struct {
	Owner *Action
	Slot  int
}

func (r *RelativeStackReference) ByteLength() int { return 1 }

func (r *RelativeStackReference) ToHex(ctx *EmitContext) (string, error) {
	return "", NewInternalError("bare stack reference (owner=%q slot=%d) reached hex emission without being lowered", r.Owner.Name, r.Slot)
}

// StackRefKind selects how the processor lowers a StackRef: as a copy
// (DUP), a permuting exchange (SWAP), or a non-permuting exchange used by
// set() to overwrite a slot in place (HotSwap).
type StackRefKind int

const (
	// KindDup copies the referenced slot to the top via DUPn.
	KindDup StackRefKind = iota
	// KindSwap exchanges the referenced slot with the top via SWAPn, and
	// permutes the processor's logical stack bookkeeping to match.
	KindSwap
	// KindHotSwap exchanges via SWAPn like KindSwap and is followed by a
	// POP of the old value; the processor skips the stack-permutation step
	// and drops the top entry instead: used by set() to overwrite a slot
	// without disturbing which logical value the caller believes is on
	// top afterward.
	KindHotSwap
)

func (k StackRefKind) String() string {
	switch k {
	case KindDup:
		return "dup"
	case KindSwap:
		return "swap"
	case KindHotSwap:
		return "hotswap"
	default:
		return fmt.Sprintf("StackRefKind(%d)", int(k))
	}
}

// StackRef wraps a RelativeStackReference with the lowering the helper
// catalogue requested for it. It is a placeholder IR item consumed by the
// processor's stack simulation pass, which replaces it in the flattened
// stream with the concrete Op it lowers to.
type StackRef struct {
	Ref  *RelativeStackReference
	Kind StackRefKind
}

func (s *StackRef) ByteLength() int { return 1 }

func (s *StackRef) ToHex(ctx *EmitContext) (string, error) {
	return "", NewInternalError("unlowered %s stack reference (owner=%q slot=%d) reached hex emission", s.Kind, s.Ref.Owner.Name, s.Ref.Slot)
}
