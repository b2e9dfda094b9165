package hbcht

import (
	"reflect"
	"testing"
)

func TestLoadBoard(t *testing.T) {
	lines := [][]byte{
		[]byte(".o."),
		[]byte("^#v"),
	}
	b, err := loadBoard(lines)
	if err != nil {
		t.Fatalf("loadBoard: %v", err)
	}
	if b.Height != 2 {
		t.Fatalf("Height = %d, want 2", b.Height)
	}
	if b.CarPos != (Pos{X: 1, Y: 0}) {
		t.Fatalf("CarPos = %v, want {1 0}", b.CarPos)
	}
	if b.at(1, 0) != TileEmpty {
		t.Errorf("car's own cell = %v, want TileEmpty", b.at(1, 0))
	}
	if b.at(1, 1) != TileExit {
		t.Errorf("at(1,1) = %v, want TileExit", b.at(1, 1))
	}
	if b.at(0, 1) != TileInc {
		t.Errorf("at(0,1) = %v, want TileInc", b.at(0, 1))
	}
	if got := b.at(5, 1); got != TileEmpty {
		t.Errorf("out-of-row access = %v, want TileEmpty", got)
	}
}

func TestLoadBoardRequiresExactlyOneCarAndExit(t *testing.T) {
	cases := []struct {
		name  string
		lines [][]byte
		kind  Kind
	}{
		{"no car", [][]byte{[]byte("..#")}, KindNoCar},
		{"no exit", [][]byte{[]byte("o..")}, KindNoExit},
		{"two cars", [][]byte{[]byte("o.o"), []byte("..#")}, KindMultipleCars},
		{"two exits", [][]byte{[]byte("o.#"), []byte("..#")}, KindMultipleExits},
		{"empty", nil, KindNoSourceCode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadBoard(tc.lines)
			if err == nil {
				t.Fatalf("expected error %s, got nil", tc.kind)
			}
			herr, ok := err.(*Error)
			if !ok || herr.Kind != tc.kind {
				t.Fatalf("err = %v, want Kind %s", err, tc.kind)
			}
		})
	}
}

func TestSplitSourceCommentsAndBlankLines(t *testing.T) {
	src := []byte("  o#  ; trailing comment\n\n  ; full-line comment\n  ^v\n")
	lines, _, _, err := splitSource(src, Options{})
	if err != nil {
		t.Fatalf("splitSource: %v", err)
	}
	want := [][]byte{[]byte("o#"), []byte("^v")}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("lines = %q, want %q", lines, want)
	}
}

func TestSplitSourceDirectivesSetFlags(t *testing.T) {
	src := []byte("@intext\n@outtext\no#\n")
	_, inputAsText, outputAsText, err := splitSource(src, Options{})
	if err != nil {
		t.Fatalf("splitSource: %v", err)
	}
	if !inputAsText || !outputAsText {
		t.Fatalf("inputAsText=%v outputAsText=%v, want both true", inputAsText, outputAsText)
	}
}

func TestSplitSourceCallerOverrideBeatsDirective(t *testing.T) {
	no := false
	src := []byte("@intext\no#\n")
	_, inputAsText, _, err := splitSource(src, Options{InputAsText: &no})
	if err != nil {
		t.Fatalf("splitSource: %v", err)
	}
	if inputAsText {
		t.Fatalf("inputAsText = true, want false (caller override must win over @intext)")
	}
}

func TestDedentStripsCommonIndent(t *testing.T) {
	lines := [][]byte{[]byte("    o#"), []byte("      ^v")}
	got := dedent(lines)
	want := [][]byte{[]byte("o#"), []byte("  ^v")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("dedent = %q, want %q", got, want)
	}
}

func TestDedentNoOpWhenAnyLineUnindented(t *testing.T) {
	lines := [][]byte{[]byte("o#"), []byte("  ^v")}
	got := dedent(lines)
	if !reflect.DeepEqual(got, lines) {
		t.Fatalf("dedent changed unindented input: got %q", got)
	}
}
