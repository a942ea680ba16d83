package runtimectx

import (
	"testing"

	"github.com/tcoulter/evmscript/pkg/ir"
)

func TestPushRoutesByTailFlag(t *testing.T) {
	ctx := New()
	normal := ir.NewAction("normal", ir.SourceLoc{})
	tail := ir.NewAction("tail", ir.SourceLoc{})
	tail.IsTail = true

	ctx.Push(normal)
	ctx.Push(tail)

	actions := ctx.Actions()
	tailActions := ctx.TailActions()

	if len(actions) != 1 || actions[0] != normal {
		t.Errorf("expected main bucket to contain only %q, got %v", normal.Name, actions)
	}
	if len(tailActions) != 1 || tailActions[0] != tail {
		t.Errorf("expected tail bucket to contain only %q, got %v", tail.Name, tailActions)
	}
}

func TestPushPreservesOrder(t *testing.T) {
	ctx := New()
	a := ir.NewAction("a", ir.SourceLoc{})
	b := ir.NewAction("b", ir.SourceLoc{})
	ctx.Push(a)
	ctx.Push(b)

	got := ctx.Actions()
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("push order not preserved: %v", got)
	}
}

func TestConfigBoolDefaultsFalse(t *testing.T) {
	ctx := New()
	if ctx.ConfigBool("deployable") {
		t.Errorf("unset config key should default to false")
	}
	ctx.SetConfig("deployable", true)
	if !ctx.ConfigBool("deployable") {
		t.Errorf("expected deployable to be true after SetConfig")
	}
}

func TestActionsReturnsCopy(t *testing.T) {
	ctx := New()
	ctx.Push(ir.NewAction("a", ir.SourceLoc{}))
	got := ctx.Actions()
	got[0] = nil
	if ctx.Actions()[0] == nil {
		t.Errorf("Actions() should return an independent copy")
	}
}
