package processor

import (
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/tcoulter/evmscript/pkg/ir"
	"github.com/tcoulter/evmscript/pkg/opcode"
)

// DebugRecord is one resolved instruction in the flattened, offset-assigned
// stream: its byte offset, mnemonic, and the hex-encoded operand bytes that
// immediately follow it (empty for a bare opcode with no operand).
type DebugRecord struct {
	Offset   int    `cbor:"offset"`
	Mnemonic string `cbor:"mnemonic"`
	Operand  string `cbor:"operand,omitempty"`
}

// Debug re-runs flatten and lower (never emit's upstream caller, so this has
// no effect on the compiled hex) and CBOR-encodes the resulting instruction
// list. It exists purely for external tooling that wants the post-flatten,
// pre-emit IR without re-parsing the hex string; preprocess never calls it.
func Debug(mainActions, tailActions []*ir.Action, ns map[string]*ir.Action) ([]byte, error) {
	records, err := debugRecords(mainActions, tailActions, ns)
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(records)
}

func debugRecords(mainActions, tailActions []*ir.Action, ns map[string]*ir.Action) ([]DebugRecord, error) {
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

	var records []DebugRecord
	var cur *DebugRecord
	offset := 0
	for i, item := range append(mainItems, tailItems...) {
		s, err := item.ToHex(ctx)
		if err != nil {
			return nil, fmt.Errorf("evmscript: emitting item %d: %w", i, err)
		}
		if op, ok := item.(ir.Op); ok {
			if cur != nil {
				records = append(records, *cur)
			}
			cur = &DebugRecord{Offset: offset, Mnemonic: opcode.MustLookup(op.Code).Mnemonic}
		} else if cur != nil {
			cur.Operand += strings.ToUpper(s)
		}
		offset += len(s) / 2
	}
	if cur != nil {
		records = append(records, *cur)
	}
	return records, nil
}
