// Package hbcht is a reference implementation of Half-Broken Car in Heavy
// Traffic, an esoteric two-dimensional programming language in which a
// car moves across a grid of tiles, bouncing off redirectors and
// mutating an infinite integer tape.
//
// It both interprets hbcht source directly and lowers it into a compact
// bytecode and into portable Python and C source that preserve the same
// execution semantics, including the four-way nondeterministic entry
// point.
package hbcht

// Options carries the two caller-settable text-mode overrides. A nil
// field means "unset": the source's @intext/@outtext directives (or the
// bytecode header's flags) decide instead. A non-nil field always wins
// over the directive/header, per spec.md §9.
type Options struct {
	InputAsText  *bool
	OutputAsText *bool
}

// LoadSource parses hbcht source text into a Program by running the
// board loader and then the board walker (spec.md §4.1, §4.2).
func LoadSource(data []byte, opts Options) (*Program, error) {
	lines, inputAsText, outputAsText, err := splitSource(data, opts)
	if err != nil {
		return nil, err
	}

	board, err := loadBoard(lines)
	if err != nil {
		return nil, err
	}

	p, err := lower(board)
	if err != nil {
		return nil, err
	}
	p.InputAsText = inputAsText
	p.OutputAsText = outputAsText
	return p, nil
}

// Load parses either hbcht source or an hbcht bytecode container,
// dispatching on the bytecode magic header (spec.md §4.4's "header
// test").
func Load(data []byte, opts Options) (*Program, error) {
	if len(data) == 0 {
		return nil, newError(KindNoProgramData, "no program data")
	}
	if looksLikeBytecode(data) {
		return LoadBytecode(data, opts)
	}
	return LoadSource(data, opts)
}
