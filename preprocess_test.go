package evmscript

import (
	"encoding/hex"
	"strings"
	"testing"
)

func TestTrivialPushScenario(t *testing.T) {
	out, err := Preprocess(`push("0xff");`, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if out != "0x60FF" {
		t.Errorf("Preprocess() = %q, want %q", out, "0x60FF")
	}
}

func TestNamedForwardPointerScenario(t *testing.T) {
	src := `
jump($ptr("main"));
push(0x01);
push(0x01);
main = push(0x02);
`
	out, err := Preprocess(src, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	want := "0x61000856600160015B6002"
	if out != want {
		t.Errorf("Preprocess() = %q, want %q", out, want)
	}
}

func TestDeployableLoopScenario(t *testing.T) {
	src := `
$("deployable", true);
const TIMES = 5;
push(0);
mainloop = push(1);
add();
dup1();
push(TIMES);
gt();
jumpi(mainloop);
stop();
`
	out, err := Preprocess(src, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	want := "0x341561000A57600080FD5B600F59816100158239F360005B600101806005116100025700"
	if out != want {
		t.Errorf("Preprocess() = %q, want %q", out, want)
	}
}

func TestRevertWithReasonScenario(t *testing.T) {
	out, err := Preprocess(`revert($hex("Price is not valid"));`, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(out, "0x"))
	if err != nil {
		t.Fatalf("output is not valid hex: %v", err)
	}
	if !strings.Contains(string(raw), "Price is not valid") {
		t.Errorf("expected the revert payload to embed the literal reason string, got %x", raw)
	}
	if !strings.Contains(out, "08C379A0") {
		t.Errorf("expected the Error(string) selector 0x08c379a0 in the revert payload, got %s", out)
	}
	if !strings.HasSuffix(out, "FD") {
		t.Errorf("expected the program to end in REVERT (0xFD), got %s", out)
	}
}

func TestFunctionDispatchScenario(t *testing.T) {
	src := `
dispatch({"function foo(address _addr) returns (address)": $ptr("tag")});
stop();
tag = calldataload(4, 20);
ret();
`
	out, err := Preprocess(src, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "0x") {
		t.Errorf("expected a hex-prefixed program, got %s", out)
	}
	if len(out)%2 != 0 {
		t.Errorf("expected an even number of hex characters, got %d", len(out))
	}
}

func TestJumpMapByteLengthScenario(t *testing.T) {
	three, err := Preprocess(`push($jumpmap("a", "b", "c")); a = label(); b = label(); c = label();`, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	// 3 labels * 2 bytes = 6, rounded up to the next multiple of 32 = 32
	// bytes, emitted behind a PUSH32.
	if !strings.HasPrefix(three, "0x7F") {
		t.Errorf("expected PUSH32 for a 3-label jump map, got %s", three)
	}

	names := make([]string, 18)
	for i := range names {
		names[i] = "l"
	}
	// 18 labels * 2 bytes = 36, rounded up to 64 bytes: wider than any
	// single PUSHn can hold as one stack word, so push() itself must
	// reject it; alloc() writes it word-by-word into memory instead.
	pushSrc := "push($jumpmap(" + strings.Join(quoteAll(names), ", ") + "));"
	if _, err := Preprocess(pushSrc, nil, ""); err == nil {
		t.Errorf("expected push() of a 64-byte value to fail")
	}

	allocSrc := "alloc($jumpmap(" + strings.Join(quoteAll(names), ", ") + ")); l = label();"
	if _, err := Preprocess(allocSrc, nil, ""); err != nil {
		t.Errorf("alloc() of a 64-byte jump map should succeed, got %v", err)
	}
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = `"` + n + `"`
	}
	return out
}
