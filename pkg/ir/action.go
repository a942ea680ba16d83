package ir

import (
	"fmt"
	"sync/atomic"
)

// idCounter is the process-wide monotonic source of Action ids. It must
// never be reset mid-compile; wraparound after 2^32 is not a practical
// concern (spec §5).
var idCounter atomic.Uint64

// NextActionID returns the next globally unique Action id.
func NextActionID() uint32 {
	return uint32(idCounter.Add(1))
}

// SourceLoc is the script line/column a helper call was made at, captured
// by the host adapter for every Action it constructs.
type SourceLoc struct {
	Line   int
	Column int
}

// Item is either a Hexable value or a nested *Action (a child action whose
// intermediate instructions are inlined in place by the processor's
// flatten pass). It exists because a single Action's instruction stream is
// a mix of both, per the composition rule in the helper catalogue.
type Item any

// Action is a named, ordered container of IR items. It publishes a
// fixed-size virtual stack of RelativeStackReferences for consumption by
// later actions, mirroring a real opcode sequence's effect on the runtime
// stack without actually running it.
type Action struct {
	ID                uint32
	Name              string
	IsJumpDestination bool
	Parent            *Action
	Intermediate      []Item
	VirtualStack      [16]*RelativeStackReference
	SourceLoc         SourceLoc
	IsTail            bool // true if this Action belongs in the tail bucket (data blobs)
}

// NewAction creates an Action with a fresh id and a fully populated
// 16-slot virtual stack, each slot a distinct RelativeStackReference
// owned by this Action.
func NewAction(name string, loc SourceLoc) *Action {
	a := &Action{
		ID:        NextActionID(),
		Name:      name,
		SourceLoc: loc,
	}
	for i := 0; i < 16; i++ {
		a.VirtualStack[i] = &RelativeStackReference{Owner: a, Slot: i}
	}
	return a
}

// AddChild adopts child as a child of a, recording parent linkage. Parent
// linkage is immutable: adopting an already-parented child is a fatal
// composition error.
func (a *Action) AddChild(child *Action) error {
	if child.Parent != nil && child.Parent != a {
		return fmt.Errorf("evmscript: composition error: action %q (id %d) is already a child of %q (id %d), cannot also become a child of %q (id %d)",
			child.Name, child.ID, child.Parent.Name, child.Parent.ID, a.Name, a.ID)
	}
	child.Parent = a
	return nil
}

// Append adds an item (a Hexable value or a nested *Action) to a's
// instruction stream.
func (a *Action) Append(items ...Item) {
	a.Intermediate = append(a.Intermediate, items...)
}

// Empty reports whether the action has no instructions at all.
func (a *Action) Empty() bool {
	return len(a.Intermediate) == 0
}

// Pointer returns a 2-byte ActionPointer that resolves to this Action's
// byte offset at emission time.
func (a *Action) Pointer() *ActionPointer {
	return &ActionPointer{action: a}
}

// ActionPointer is the opaque handle exposed to helper callers. It exposes
// the underlying Action and an iterator (via StackRefs) over the Action's
// 16 published RelativeStackReferences, which the host's array-destructure
// idiom pulls the first N of.
type ActionPointer struct {
	action *Action
}

// NewActionPointer wraps action in a pointer handle.
func NewActionPointer(action *Action) *ActionPointer {
	return &ActionPointer{action: action}
}

// Action returns the Action this pointer refers to.
func (p *ActionPointer) Action() *Action { return p.action }

// StackRefs returns the Action's 16 stack references in order, index 0
// being the top of the stack as produced by the Action.
func (p *ActionPointer) StackRefs() [16]*RelativeStackReference {
	return p.action.VirtualStack
}

// ByteLength of an ActionPointer is fixed at 2 bytes: pointers are always
// encoded as a big-endian byte offset.
func (p *ActionPointer) ByteLength() int { return 2 }

func (p *ActionPointer) ToHex(ctx *EmitContext) (string, error) {
	if ctx == nil || ctx.Offsets == nil {
		return "", NewInternalError("action %q (id %d) has no resolved byte offset", p.action.Name, p.action.ID)
	}
	offset, ok := ctx.Offsets[p.action]
	if !ok {
		return "", NewInternalError("action %q (id %d) has no resolved byte offset", p.action.Name, p.action.ID)
	}
	if offset < 0 || offset > 0xFFFF {
		return "", NewInternalError("jump target 0x%X for action %q exceeds the 2-byte pointer width", offset, p.action.Name)
	}
	return fmt.Sprintf("%04X", offset), nil
}
