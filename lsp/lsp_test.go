package lsp

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ---------------------------------------------------------------------------
// diagnosticsFor
// ---------------------------------------------------------------------------

func TestDiagnosticsFor_ValidScriptHasNone(t *testing.T) {
	diagnostics := diagnosticsFor(`push($hex(1));`, "ok.js")
	if len(diagnostics) != 0 {
		t.Fatalf("diagnosticsFor(valid) = %d diagnostics, want 0", len(diagnostics))
	}
}

func TestDiagnosticsFor_CompileErrorYieldsOneDiagnostic(t *testing.T) {
	diagnostics := diagnosticsFor(`push(notDefined());`, "bad.js")
	if len(diagnostics) != 1 {
		t.Fatalf("diagnosticsFor(invalid) = %d diagnostics, want 1", len(diagnostics))
	}

	d := diagnostics[0]
	if d.Message == "" {
		t.Error("diagnostic message should not be empty")
	}
	if d.Severity == nil || *d.Severity != protocol.DiagnosticSeverityError {
		t.Error("diagnostic severity should be Error")
	}
	if d.Source == nil || *d.Source != serverName {
		t.Errorf("diagnostic source = %v, want %q", d.Source, serverName)
	}
	wantZero := protocol.Position{Line: 0, Character: 0}
	if d.Range.Start != wantZero || d.Range.End != wantZero {
		t.Errorf("diagnostic range = %+v, want zero range at the first line", d.Range)
	}
}

func TestDiagnosticsFor_NeverBatchesMultipleErrors(t *testing.T) {
	// Two independent failures in one script still surface as a single
	// diagnostic - the host adapter stops at the first error.
	diagnostics := diagnosticsFor(`notDefined(); alsoNotDefined();`, "bad.js")
	if len(diagnostics) != 1 {
		t.Fatalf("diagnosticsFor = %d diagnostics, want exactly 1", len(diagnostics))
	}
}

// ---------------------------------------------------------------------------
// document store
// ---------------------------------------------------------------------------

func TestServer_DocumentStore(t *testing.T) {
	s := New()

	s.mu.Lock()
	s.docs["file:///test.js"] = "push($hex(1));"
	s.mu.Unlock()

	s.mu.Lock()
	text, ok := s.docs["file:///test.js"]
	s.mu.Unlock()
	if !ok {
		t.Fatal("document should be stored")
	}
	if text != "push($hex(1));" {
		t.Errorf("document text = %q, want %q", text, "push($hex(1));")
	}

	s.mu.Lock()
	delete(s.docs, "file:///test.js")
	s.mu.Unlock()

	s.mu.Lock()
	_, ok = s.docs["file:///test.js"]
	s.mu.Unlock()
	if ok {
		t.Error("document should be removed after close")
	}
}

// ---------------------------------------------------------------------------
// misc helpers
// ---------------------------------------------------------------------------

func TestBoolPtr(t *testing.T) {
	p := boolPtr(true)
	if p == nil || *p != true {
		t.Errorf("boolPtr(true) = %v, want pointer to true", p)
	}

	p = boolPtr(false)
	if p == nil || *p != false {
		t.Errorf("boolPtr(false) = %v, want pointer to false", p)
	}
}

func TestNew_WiresHandlerAndServer(t *testing.T) {
	s := New()
	if s.handler.Initialize == nil {
		t.Error("handler.Initialize should be wired")
	}
	if s.handler.TextDocumentDidOpen == nil {
		t.Error("handler.TextDocumentDidOpen should be wired")
	}
	if s.handler.TextDocumentDidChange == nil {
		t.Error("handler.TextDocumentDidChange should be wired")
	}
	if s.server == nil {
		t.Error("New should construct the underlying glsp server")
	}
}
