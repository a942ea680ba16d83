package processor

import (
	"fmt"
	"strings"

	"github.com/tcoulter/evmscript/pkg/ir"
)

// Result is the output of a full Process call: the finished hex string
// (without the "0x" prefix) and the resolved byte offset of every Action,
// for callers (the deployable-mode wrapper, diagnostics) that need to
// reason about the compiled layout afterward.
type Result struct {
	Hex     string
	Offsets map[*ir.Action]int
}

// Process runs the full four-pass pipeline: flatten, lower, and emit. ns
// is the surviving host namespace, used to resolve $ptr(name) references.
func Process(mainActions, tailActions []*ir.Action, ns map[string]*ir.Action) (*Result, error) {
	mainStream, tailStream, err := Flatten(mainActions, tailActions)
	if err != nil {
		return nil, err
	}

	offsets := make(map[*ir.Action]int)
	mainItems, mainLen, err := Lower(mainStream.items, 0, offsets)
	if err != nil {
		return nil, fmt.Errorf("evmscript: %w", err)
	}
	tailItems, _, err := Lower(tailStream.items, mainLen, offsets)
	if err != nil {
		return nil, fmt.Errorf("evmscript: %w", err)
	}

	ctx := &ir.EmitContext{Namespace: ns, Offsets: offsets}

	var sb strings.Builder
	for i, item := range append(mainItems, tailItems...) {
		s, err := item.ToHex(ctx)
		if err != nil {
			return nil, fmt.Errorf("evmscript: emitting item %d: %w", i, err)
		}
		if len(s)%2 != 0 {
			return nil, ir.NewInternalError("item %d produced an odd number of hex digits (%q)", i, s)
		}
		sb.WriteString(strings.ToUpper(s))
	}

	return &Result{Hex: sb.String(), Offsets: offsets}, nil
}
