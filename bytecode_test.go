package hbcht

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// allOpcodesProgram builds a Program exercising every opcode at least
// once, with valid entry offsets and jump targets, for round-trip tests.
func allOpcodesProgram() *Program {
	return &Program{
		Instrs: []Instr{
			{Op: OpDec, Arg: 3},      // 0
			{Op: OpInc, Arg: 2},      // 1
			{Op: OpPrevCell, Arg: 1}, // 2
			{Op: OpNextCell, Arg: 4}, // 3
			{Op: OpIf, Arg: 6},       // 4
			{Op: OpGoto, Arg: 0},     // 5
			{Op: OpExit},             // 6
		},
		Entries:      EntryTable{Right: 1, Down: 2, Left: 3},
		InputAsText:  true,
		OutputAsText: false,
	}
}

func TestBytecodeRoundTrip(t *testing.T) {
	p := allOpcodesProgram()
	raw := p.EmitBytecode()

	got, err := LoadBytecode(raw, Options{})
	if err != nil {
		t.Fatalf("LoadBytecode: %v", err)
	}
	if diff := cmp.Diff(p.Instrs, got.Instrs); diff != "" {
		t.Errorf("Instrs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(p.Entries, got.Entries); diff != "" {
		t.Errorf("Entries mismatch (-want +got):\n%s", diff)
	}
	if got.InputAsText != p.InputAsText || got.OutputAsText != p.OutputAsText {
		t.Errorf("text flags = (%v,%v), want (%v,%v)",
			got.InputAsText, got.OutputAsText, p.InputAsText, p.OutputAsText)
	}
}

func TestBytecodeHeaderLayout(t *testing.T) {
	p := &Program{Instrs: []Instr{{Op: OpExit}}, InputAsText: true, OutputAsText: true}
	raw := p.EmitBytecode()

	if raw[0] != 0x01 {
		t.Errorf("raw[0] = %#x, want 0x01", raw[0])
	}
	if string(raw[1:6]) != "hbcht" {
		t.Errorf("raw[1:6] = %q, want %q", raw[1:6], "hbcht")
	}
	if raw[6] != 1 {
		t.Errorf("raw[6] (version) = %d, want 1", raw[6])
	}
	if raw[7] != 0x02 {
		t.Errorf("raw[7] = %#x, want 0x02", raw[7])
	}
	if raw[8] != 0x01 {
		t.Errorf("raw[8] (input-as-text) = %#x, want 0x01", raw[8])
	}
	if raw[9] != 0x01 {
		t.Errorf("raw[9] (output-as-text) = %#x, want 0x01", raw[9])
	}
}

func TestOptionsOverrideBytecodeHeaderFlags(t *testing.T) {
	p := &Program{Instrs: []Instr{{Op: OpExit}}, InputAsText: true, OutputAsText: true}
	raw := p.EmitBytecode()

	no := false
	got, err := LoadBytecode(raw, Options{InputAsText: &no, OutputAsText: &no})
	if err != nil {
		t.Fatalf("LoadBytecode: %v", err)
	}
	if got.InputAsText || got.OutputAsText {
		t.Fatalf("text flags = (%v,%v), want both false (opts should override header)",
			got.InputAsText, got.OutputAsText)
	}
}

func TestLoadBytecodeRejectsBadMagic(t *testing.T) {
	raw := allOpcodesProgram().EmitBytecode()
	raw[0] = 0xff
	_, err := LoadBytecode(raw, Options{})
	herr, ok := err.(*Error)
	if !ok || herr.Kind != KindCorruptBytecode {
		t.Fatalf("err = %v, want KindCorruptBytecode", err)
	}
}

func TestLoadBytecodeRejectsUnsupportedVersion(t *testing.T) {
	raw := allOpcodesProgram().EmitBytecode()
	raw[6] = 99
	_, err := LoadBytecode(raw, Options{})
	herr, ok := err.(*Error)
	if !ok || herr.Kind != KindUnsupportedBytecodeVersion {
		t.Fatalf("err = %v, want KindUnsupportedBytecodeVersion", err)
	}
}

func TestLoadBytecodeRejectsTruncatedStream(t *testing.T) {
	raw := allOpcodesProgram().EmitBytecode()
	raw = raw[:len(raw)-3] // chop mid-instruction
	_, err := LoadBytecode(raw, Options{})
	herr, ok := err.(*Error)
	if !ok || herr.Kind != KindCorruptBytecode {
		t.Fatalf("err = %v, want KindCorruptBytecode", err)
	}
}

func TestLoadBytecodeRejectsOutOfRangeEntry(t *testing.T) {
	p := &Program{Instrs: []Instr{{Op: OpExit}}, Entries: EntryTable{Right: 5}}
	raw := p.EmitBytecode()
	_, err := LoadBytecode(raw, Options{})
	herr, ok := err.(*Error)
	if !ok || herr.Kind != KindTargetOutOfRange {
		t.Fatalf("err = %v, want KindTargetOutOfRange", err)
	}
}

func TestLoadBytecodeRejectsOutOfRangeJumpTarget(t *testing.T) {
	p := &Program{Instrs: []Instr{{Op: OpGoto, Arg: 9}, {Op: OpExit}}}
	raw := p.EmitBytecode()
	_, err := LoadBytecode(raw, Options{})
	herr, ok := err.(*Error)
	if !ok || herr.Kind != KindCorruptBytecode {
		t.Fatalf("err = %v, want KindCorruptBytecode", err)
	}
}

func TestLooksLikeBytecodeDetectsMagic(t *testing.T) {
	raw := allOpcodesProgram().EmitBytecode()
	if !looksLikeBytecode(raw) {
		t.Fatalf("looksLikeBytecode(valid bytecode) = false, want true")
	}
	if looksLikeBytecode([]byte("o#\n")) {
		t.Fatalf("looksLikeBytecode(source text) = true, want false")
	}
	if looksLikeBytecode(nil) {
		t.Fatalf("looksLikeBytecode(nil) = true, want false")
	}
}

func TestLoadDispatchesOnMagic(t *testing.T) {
	raw := allOpcodesProgram().EmitBytecode()
	p, err := Load(raw, Options{})
	if err != nil {
		t.Fatalf("Load(bytecode): %v", err)
	}
	if len(p.Instrs) != 7 {
		t.Fatalf("Instrs len = %d, want 7", len(p.Instrs))
	}

	_, err = Load(nil, Options{})
	herr, ok := err.(*Error)
	if !ok || herr.Kind != KindNoProgramData {
		t.Fatalf("Load(nil) err = %v, want KindNoProgramData", err)
	}
}
