package hbcht

import (
	"math/rand"
	"sort"
	"time"
)

// Tape is the sparse integer-to-integer cell map described in spec.md §3.
// Absent keys default to 0. Created fresh at the start of every Run and
// discarded at the end — the interpreter never shares a tape across
// calls.
type Tape map[int]int

// Cell is one (index, value) pair of a run's final, nonzero-valued tape,
// sorted by index ascending.
type Cell struct {
	Index int
	Value int64
}

// Run executes the program from the given starting direction (or, if dir
// is nil, a direction chosen uniformly at random by rng) over a fresh
// tape seeded with inputs at indices 0..len(inputs)-1, returning the
// sorted nonzero cells (spec.md §4.3).
//
// rng may be nil, in which case Run defaults to a time-seeded source —
// callers that need deterministic direction selection in tests should
// inject their own *rand.Rand (spec.md §9, "randomness as a capability").
func (p *Program) Run(inputs []int64, dir *Direction, rng *rand.Rand) ([]Cell, error) {
	for _, v := range inputs {
		if v < 0 {
			return nil, newError(KindNegativeInput, "input values must be non-negative")
		}
	}

	chosen, err := p.resolveDirection(dir, rng)
	if err != nil {
		return nil, err
	}

	tape := make(Tape, len(inputs))
	for i, v := range inputs {
		tape[i] = int(v)
	}

	j := p.Entries.offset(chosen)
	i := 0
	for {
		if j < 0 || j >= len(p.Instrs) {
			return nil, wrapError(KindCorruptBytecode, nil, "instruction pointer %d out of range [0, %d)", j, len(p.Instrs))
		}
		in := p.Instrs[j]
		switch in.Op {
		case OpDec:
			tape[i] -= in.Arg
			j++
		case OpInc:
			tape[i] += in.Arg
			j++
		case OpPrevCell:
			i -= in.Arg
			j++
		case OpNextCell:
			i += in.Arg
			j++
		case OpIf:
			if tape[i] != tape[i-1] {
				j = in.Arg
			} else {
				j++
			}
		case OpGoto:
			j = in.Arg
		case OpExit:
			return tapeToCells(tape), nil
		}
	}
}

// RunAll runs the four entries sequentially (spec.md §5: no concurrent
// execution of paths) and returns their four result lists, keyed by
// Direction.
func (p *Program) RunAll(inputs []int64) (map[Direction][]Cell, error) {
	out := make(map[Direction][]Cell, 4)
	for _, d := range allDirections {
		d := d
		cells, err := p.Run(inputs, &d, nil)
		if err != nil {
			return nil, err
		}
		out[d] = cells
	}
	return out, nil
}

func (p *Program) resolveDirection(dir *Direction, rng *rand.Rand) (Direction, error) {
	if dir != nil {
		switch *dir {
		case DirUp, DirRight, DirDown, DirLeft:
			return *dir, nil
		default:
			return 0, newError(KindInvalidDirection, "invalid direction %v", *dir)
		}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return allDirections[rng.Intn(len(allDirections))], nil
}

func tapeToCells(tape Tape) []Cell {
	cells := make([]Cell, 0, len(tape))
	for idx, v := range tape {
		if v != 0 {
			cells = append(cells, Cell{Index: idx, Value: int64(v)})
		}
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Index < cells[j].Index })
	return cells
}
