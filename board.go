package hbcht

import (
	"bytes"
)

// Board is a rectangular grid of tiles loaded from source text. Rows may
// be shorter than the widest row; an access past a row's own end is
// TileEmpty, not wrapped.
type Board struct {
	Rows   [][]Tile
	Height int
	CarPos Pos
}

// Pos is a board coordinate, x = column, y = row.
type Pos struct {
	X, Y int
}

// rowLen returns the length of row y, or 0 if y is out of range (callers
// always wrap y modulo Height first, so this only guards pathological
// zero-height boards).
func (b *Board) rowLen(y int) int {
	if y < 0 || y >= len(b.Rows) {
		return 0
	}
	return len(b.Rows[y])
}

// at returns the tile at (x, y), treating any x past the row's own end
// as TileEmpty. y is assumed already wrapped modulo Height.
func (b *Board) at(x, y int) Tile {
	row := b.Rows[y]
	if x < 0 || x >= len(row) {
		return TileEmpty
	}
	return row[x]
}

// loadBoard parses de-commented, de-indented board lines (one []byte per
// row, already stripped of the @intext/@outtext directive lines) into a
// Board, verifying exactly one Car and one Exit tile.
func loadBoard(lines [][]byte) (*Board, error) {
	if len(lines) == 0 {
		return nil, newError(KindNoSourceCode, "no source code")
	}

	b := &Board{Rows: make([][]Tile, len(lines)), Height: len(lines)}
	hasCar, hasExit := false, false

	for y, line := range lines {
		row := make([]Tile, len(line))
		for x, c := range line {
			t := tileFromByte(c)
			switch t {
			case TileCar:
				if hasCar {
					return nil, newError(KindMultipleCars, "program can only have one car")
				}
				hasCar = true
				b.CarPos = Pos{X: x, Y: y}
				row[x] = TileEmpty // the car's own cell walks as empty
			case TileExit:
				if hasExit {
					return nil, newError(KindMultipleExits, "program can only have one exit")
				}
				hasExit = true
				row[x] = t
			default:
				row[x] = t
			}
		}
		b.Rows[y] = row
	}

	if !hasCar {
		return nil, newError(KindNoCar, "program must have one car")
	}
	if !hasExit {
		return nil, newError(KindNoExit, "program must have one exit")
	}
	return b, nil
}

// splitSource performs line splitting, @intext/@outtext directive
// handling, comment stripping, blank-line dropping, and common-indent
// removal, per spec.md §4.1. opts carries any caller-set text-mode
// overrides; the two returned bools are the resolved flags after
// directives have been applied (caller override always wins).
func splitSource(data []byte, opts Options) (lines [][]byte, inputAsText, outputAsText bool, err error) {
	if len(data) == 0 {
		return nil, false, false, newError(KindNoSourceCode, "no source code")
	}

	inputAsText = opts.InputAsText != nil && *opts.InputAsText
	outputAsText = opts.OutputAsText != nil && *opts.OutputAsText
	intextSeen, outtextSeen := opts.InputAsText != nil, opts.OutputAsText != nil

	var kept [][]byte
	for _, raw := range bytes.Split(data, []byte("\n")) {
		switch {
		case bytes.HasPrefix(raw, []byte("@intext")):
			if !intextSeen {
				inputAsText = true
			}
			intextSeen = true
			continue
		case bytes.HasPrefix(raw, []byte("@outtext")):
			if !outtextSeen {
				outputAsText = true
			}
			outtextSeen = true
			continue
		}

		line := raw
		if i := bytes.IndexByte(line, ';'); i >= 0 {
			line = line[:i]
		}
		line = bytes.TrimRight(line, " \t\r")
		if len(line) == 0 {
			continue
		}
		kept = append(kept, line)
	}

	if len(kept) == 0 {
		return nil, inputAsText, outputAsText, newError(KindNoSourceCode, "no source code")
	}

	dedented := dedent(kept)
	return dedented, inputAsText, outputAsText, nil
}

// dedent removes the minimum common leading-whitespace count from every
// line. If any line has zero leading whitespace, no de-indenting occurs.
func dedent(lines [][]byte) [][]byte {
	minIndent := -1
	for _, line := range lines {
		n := leadingWhitespace(line)
		if n == 0 {
			return lines
		}
		if minIndent == -1 || n < minIndent {
			minIndent = n
		}
	}
	if minIndent <= 0 {
		return lines
	}
	out := make([][]byte, len(lines))
	for i, line := range lines {
		out[i] = line[minIndent:]
	}
	return out
}

func leadingWhitespace(line []byte) int {
	n := 0
	for n < len(line) && (line[n] == ' ' || line[n] == '\t') {
		n++
	}
	return n
}
