// Package processor implements the four-pass ActionProcessor: flatten,
// stack simulation and reference lowering, byte-offset computation, and
// hex emission. It is the only package that turns the Action/Hexable tree
// built by the helper catalogue into an actual opcode stream.
package processor

import (
	"github.com/tcoulter/evmscript/pkg/ir"
	"github.com/tcoulter/evmscript/pkg/opcode"
)

// actionStart is a non-emitting marker inserted immediately before an
// Action's own content (including its JUMPDEST, if any). Lower reads it
// to record the byte offset ActionPointers resolve to.
type actionStart struct {
	action *ir.Action
}

// actionEnd is a non-emitting marker inserted immediately after an
// Action's own content (including any inlined children). The stack
// simulation pass uses it to relabel the top of the symbolic stack with
// the Action's 16 published slots, regardless of whether the Action is
// top-level or was itself inlined as someone else's child.
type actionEnd struct {
	action *ir.Action
}

// flatStream is the depth-first inlined instruction stream for one bucket
// (the main program, or the tail data blobs), still containing StackRef
// placeholders and actionStart/actionEnd markers.
type flatStream struct {
	items []ir.Item
}

func newFlatStream() *flatStream {
	return &flatStream{}
}

func (f *flatStream) visit(a *ir.Action, visited map[*ir.Action]bool) error {
	if visited[a] {
		return nil
	}
	visited[a] = true

	if a.Empty() && !a.IsJumpDestination {
		return ir.NewInternalError("action %q (id %d) has no instructions and is not a jump destination", a.Name, a.ID)
	}

	f.items = append(f.items, actionStart{action: a})
	if a.IsJumpDestination {
		f.items = append(f.items, ir.Op{Code: opcode.JUMPDEST})
	}
	for _, item := range a.Intermediate {
		switch v := item.(type) {
		case *ir.Action:
			if err := f.visit(v, visited); err != nil {
				return err
			}
		case ir.Hexable:
			f.items = append(f.items, v)
		default:
			return ir.NewInternalError("action %q contains an intermediate item of unexpected type %T", a.Name, item)
		}
	}
	f.items = append(f.items, actionEnd{action: a})
	return nil
}

// Flatten walks mainActions (in order) and tailActions (in order),
// skipping any Action that has already been adopted as a child (it will
// be reached transitively through its parent), and returns the two
// resulting flat streams.
func Flatten(mainActions, tailActions []*ir.Action) (main, tail *flatStream, err error) {
	main = newFlatStream()
	visited := make(map[*ir.Action]bool)
	for _, a := range mainActions {
		if a.Parent != nil {
			continue
		}
		if err := main.visit(a, visited); err != nil {
			return nil, nil, err
		}
	}

	tail = newFlatStream()
	tailVisited := make(map[*ir.Action]bool)
	for _, a := range tailActions {
		if a.Parent != nil {
			continue
		}
		if err := tail.visit(a, tailVisited); err != nil {
			return nil, nil, err
		}
	}
	return main, tail, nil
}
