package processor_test

import (
	"strings"
	"testing"

	"github.com/tcoulter/evmscript/pkg/helpers"
	"github.com/tcoulter/evmscript/pkg/ir"
	"github.com/tcoulter/evmscript/pkg/processor"
	"github.com/tcoulter/evmscript/pkg/runtimectx"
)

func TestTrivialPush(t *testing.T) {
	ctx := runtimectx.New()
	cat := helpers.New(ctx)
	v, _ := helpers.Int(1)
	if _, err := cat.Push(ir.SourceLoc{Line: 1}, v); err != nil {
		t.Fatal(err)
	}

	res, err := processor.Process(ctx.Actions(), ctx.TailActions(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Hex != "6001" {
		t.Errorf("Process() = %q, want %q", res.Hex, "6001")
	}
}

func TestNamedForwardPointer(t *testing.T) {
	ctx := runtimectx.New()
	cat := helpers.New(ctx)

	loopLoc := ir.SourceLoc{Line: 1}
	loop := cat.Label(loopLoc, "mainloop")
	one, _ := helpers.Int(1)
	pushAction, err := cat.Push(ir.SourceLoc{Line: 2}, one)
	if err != nil {
		t.Fatal(err)
	}
	loop.Append(pushAction)
	if err := loop.AddChild(pushAction); err != nil {
		t.Fatal(err)
	}

	jumpAction, err := cat.Jump(ir.SourceLoc{Line: 3}, helpers.ActionParam{Action: loop, Loc: loopLoc})
	if err != nil {
		t.Fatal(err)
	}
	_ = jumpAction

	ns := map[string]*ir.Action{"mainloop": loop}
	res, err := processor.Process(ctx.Actions(), ctx.TailActions(), ns)
	if err != nil {
		t.Fatal(err)
	}
	// JUMPDEST(5B) PUSH1 01(6001) PUSH2 0000(610000) JUMP(56)
	want := "5B600161000056"
	if res.Hex != want {
		t.Errorf("Process() = %q, want %q", res.Hex, want)
	}
}

func TestRevertWithReasonDecodesToErrorSelector(t *testing.T) {
	ctx := runtimectx.New()
	cat := helpers.New(ctx)
	reason, err := helpers.ExprHex("Price is not valid")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cat.Revert(ir.SourceLoc{Line: 1}, reason); err != nil {
		t.Fatal(err)
	}

	res, err := processor.Process(ctx.Actions(), ctx.TailActions(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(res.Hex, "") {
		t.Fatal("unreachable")
	}
	if !strings.Contains(res.Hex, "08C379A0") {
		t.Errorf("expected the Error(string) selector 08c379a0 in %q", res.Hex)
	}
	if !strings.HasSuffix(res.Hex, "FD") {
		t.Errorf("expected trailing REVERT (FD), got %q", res.Hex)
	}
}

func TestDupSwapLoopSample(t *testing.T) {
	ctx := runtimectx.New()
	cat := helpers.New(ctx)

	loc := ir.SourceLoc{Line: 1}
	zero, _ := helpers.Int(0)
	counter, err := cat.Push(loc, zero)
	if err != nil {
		t.Fatal(err)
	}
	ref := counter.VirtualStack[0]

	loopLoc := ir.SourceLoc{Line: 2}
	loop := cat.Label(loopLoc, "loop")
	dupAction, err := cat.Dup(ir.SourceLoc{Line: 3}, ref)
	if err != nil {
		t.Fatal(err)
	}
	loop.Append(dupAction)
	if err := loop.AddChild(dupAction); err != nil {
		t.Fatal(err)
	}

	res, err := processor.Process(ctx.Actions(), ctx.TailActions(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Hex == "" {
		t.Fatal("expected non-empty hex output")
	}
}

func TestDupReachesBeneathLaterIndependentPushes(t *testing.T) {
	ctx := runtimectx.New()
	cat := helpers.New(ctx)

	zero, _ := helpers.Int(0)
	first, err := cat.Push(ir.SourceLoc{Line: 1}, zero)
	if err != nil {
		t.Fatal(err)
	}
	one, _ := helpers.Int(1)
	if _, err := cat.Push(ir.SourceLoc{Line: 2}, one); err != nil {
		t.Fatal(err)
	}
	two, _ := helpers.Int(2)
	if _, err := cat.Push(ir.SourceLoc{Line: 3}, two); err != nil {
		t.Fatal(err)
	}

	// first is two independent pushes deep; each later push must publish
	// only its own slot, not stomp first's slot 0.
	if _, err := cat.Dup(ir.SourceLoc{Line: 4}, first.VirtualStack[0]); err != nil {
		t.Fatal(err)
	}

	res, err := processor.Process(ctx.Actions(), ctx.TailActions(), nil)
	if err != nil {
		t.Fatal(err)
	}
	// PUSH1 00, PUSH1 01, PUSH1 02, DUP3 (first is 2 deep below the top)
	want := "6000" + "6001" + "6002" + "82"
	if res.Hex != want {
		t.Errorf("Process() = %q, want %q", res.Hex, want)
	}
}

func TestSeventeenSequentialPushesExceedsDupDepth(t *testing.T) {
	ctx := runtimectx.New()
	cat := helpers.New(ctx)

	var first *ir.Action
	for i := 0; i < 17; i++ {
		v, _ := helpers.Int(int64(i))
		a, err := cat.Push(ir.SourceLoc{Line: i + 1}, v)
		if err != nil {
			t.Fatal(err)
		}
		if i == 0 {
			first = a
		}
	}

	dupLoc := ir.SourceLoc{Line: 100}
	if _, err := cat.Dup(dupLoc, first.VirtualStack[0]); err != nil {
		t.Fatal(err)
	}

	if _, err := processor.Process(ctx.Actions(), ctx.TailActions(), nil); err == nil {
		t.Errorf("expected an error: the first push is 17 deep, beyond DUP16's reach")
	}
}

func TestEmptyActionWithoutJumpDestinationIsRejected(t *testing.T) {
	ctx := runtimectx.New()
	a := ir.NewAction("nothing", ir.SourceLoc{})
	ctx.Push(a)

	if _, err := processor.Process(ctx.Actions(), ctx.TailActions(), nil); err == nil {
		t.Errorf("expected an error for an empty, non-jump-destination action")
	}
}
