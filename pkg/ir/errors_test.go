package ir

import "testing"

func TestStackReferenceErrorIncludesLocationWhenSet(t *testing.T) {
	err := NewStackReferenceError(SourceLoc{Line: 3, Column: 7}, "slot %d unreachable", 2)
	want := "stack reference error: slot 2 unreachable (at 3:7)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestStackReferenceErrorOmitsLocationWhenZero(t *testing.T) {
	err := NewStackReferenceError(SourceLoc{}, "slot %d unreachable", 2)
	want := "stack reference error: slot 2 unreachable"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestLabelResolutionErrorMessage(t *testing.T) {
	err := &LabelResolutionError{Name: "mainloop"}
	want := `evmscript: $ptr("mainloop") refers to a name that is not bound to an action pointer after script evaluation`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
