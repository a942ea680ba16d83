package ir

import (
	"math/big"
	"testing"

	"github.com/tcoulter/evmscript/pkg/opcode"
)

func lit(n int64) *Literal {
	l, err := NewLiteral(big.NewInt(n))
	if err != nil {
		panic(err)
	}
	return l
}

func TestLiteralZero(t *testing.T) {
	l := lit(0)
	if l.ByteLength() != 1 {
		t.Fatalf("Literal(0).ByteLength() = %d, want 1", l.ByteLength())
	}
	hexStr, err := l.ToHex(nil)
	if err != nil {
		t.Fatal(err)
	}
	if hexStr != "00" {
		t.Errorf("Literal(0).ToHex() = %q, want %q", hexStr, "00")
	}
}

func TestLiteralByteLengthIdempotent(t *testing.T) {
	l := lit(0x1234)
	a := l.ByteLength()
	b := l.ByteLength()
	if a != b {
		t.Errorf("ByteLength not idempotent: %d != %d", a, b)
	}
}

func TestLiteralRejectsOversized(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 256)
	if _, err := NewLiteral(huge); err == nil {
		t.Errorf("expected error for 2^256, got nil")
	}
	if _, err := NewLiteral(big.NewInt(-1)); err == nil {
		t.Errorf("expected error for negative literal, got nil")
	}
}

func TestOpToHex(t *testing.T) {
	o := Op{Code: opcode.ADD}
	s, err := o.ToHex(nil)
	if err != nil {
		t.Fatal(err)
	}
	if s != "01" {
		t.Errorf("Op(ADD).ToHex() = %q, want %q", s, "01")
	}
}

func TestConcat(t *testing.T) {
	c := Concat{Items: []Hexable{lit(0x60), lit(0x01)}}
	if c.ByteLength() != 2 {
		t.Fatalf("ByteLength = %d, want 2", c.ByteLength())
	}
	s, err := c.ToHex(nil)
	if err != nil {
		t.Fatal(err)
	}
	if s != "6001" {
		t.Errorf("Concat.ToHex() = %q, want %q", s, "6001")
	}
}

func TestByteRangePadsPastEnd(t *testing.T) {
	inner := lit(0xAABBCC) // 3 bytes: AA BB CC
	br := ByteRange{Inner: inner, Start: 1, Len: 4}
	if br.ByteLength() != 4 {
		t.Fatalf("ByteLength = %d, want 4", br.ByteLength())
	}
	s, err := br.ToHex(nil)
	if err != nil {
		t.Fatal(err)
	}
	if s != "BBCC0000" {
		t.Errorf("ByteRange.ToHex() = %q, want %q", s, "BBCC0000")
	}
}

func TestWordRange(t *testing.T) {
	inner := Padded{Inner: lit(1), Unit: 32, Side: PadLeft}
	wr := WordRange(inner, 0, 1)
	if wr.ByteLength() != 32 {
		t.Fatalf("ByteLength = %d, want 32", wr.ByteLength())
	}
}

func TestPaddedLeftAndRight(t *testing.T) {
	left := Padded{Inner: lit(1), Unit: 4, Side: PadLeft}
	s, err := left.ToHex(nil)
	if err != nil {
		t.Fatal(err)
	}
	if s != "00000001" {
		t.Errorf("Padded left = %q, want %q", s, "00000001")
	}

	right := Padded{Inner: lit(1), Unit: 4, Side: PadRight}
	s, err = right.ToHex(nil)
	if err != nil {
		t.Fatal(err)
	}
	if s != "01000000" {
		t.Errorf("Padded right = %q, want %q", s, "01000000")
	}
}

func TestSolidityStringLength(t *testing.T) {
	inner := &rawBytes{data: []byte("Price is not valid")} // 18 bytes
	ss := SolidityString{Inner: inner}
	want := 32 + 32 // round_up(18,32) == 32
	if ss.ByteLength() != want {
		t.Fatalf("ByteLength = %d, want %d", ss.ByteLength(), want)
	}
	s, err := ss.ToHex(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(s) != ss.ByteLength()*2 {
		t.Errorf("hex length = %d, want %d", len(s), ss.ByteLength()*2)
	}
}

func TestJumpMapByteLength(t *testing.T) {
	jm3 := JumpMap{Labels: []LabelPointer{{Name: "a"}, {Name: "b"}, {Name: "c"}}}
	if jm3.ByteLength() != 32 {
		t.Errorf("3-label JumpMap ByteLength = %d, want 32", jm3.ByteLength())
	}

	labels := make([]LabelPointer, 18)
	for i := range labels {
		labels[i] = LabelPointer{Name: "l"}
	}
	jm18 := JumpMap{Labels: labels}
	if jm18.ByteLength() != 64 {
		t.Errorf("18-label JumpMap ByteLength = %d, want 64", jm18.ByteLength())
	}
}

func TestBareStackReferenceToHexFails(t *testing.T) {
	a := NewAction("x", SourceLoc{})
	ref := a.VirtualStack[0]
	if _, err := ref.ToHex(nil); err == nil {
		t.Errorf("expected fatal error calling ToHex on a bare stack reference")
	}
	if ref.ByteLength() != 1 {
		t.Errorf("ByteLength of unlowered reference should be 1, got %d", ref.ByteLength())
	}
}

func TestUnlowoweredStackRefToHexFails(t *testing.T) {
	a := NewAction("x", SourceLoc{})
	sr := &StackRef{Ref: a.VirtualStack[0], Kind: KindDup}
	if _, err := sr.ToHex(nil); err == nil {
		t.Errorf("expected fatal error calling ToHex on an unlowered StackRef")
	}
}

func TestLabelPointerUnresolved(t *testing.T) {
	lp := LabelPointer{Name: "missing"}
	ctx := &EmitContext{Namespace: map[string]*Action{}}
	if _, err := lp.ToHex(ctx); err == nil {
		t.Errorf("expected error resolving unbound label")
	}
}

func TestActionPointerOffsetOutOfRange(t *testing.T) {
	a := NewAction("x", SourceLoc{})
	ptr := a.Pointer()
	ctx := &EmitContext{Offsets: map[*Action]int{a: 0x10000}}
	if _, err := ptr.ToHex(ctx); err == nil {
		t.Errorf("expected error for offset >= 2^16")
	}
}

// rawBytes is a tiny test-only Hexable wrapping a literal byte slice, used
// to exercise composite variants without pulling in the helper catalogue.
type rawBytes struct {
	data []byte
}

func (r *rawBytes) ByteLength() int { return len(r.data) }

func (r *rawBytes) ToHex(ctx *EmitContext) (string, error) {
	return hexUpper(r.data), nil
}
