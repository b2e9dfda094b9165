package hbcht

import (
	"github.com/golang/glog"
	"github.com/samber/lo"
)

// perpendicularRight returns the heading the car takes into an If tile's
// "true" branch: a 90-degree turn to the right of the incoming direction.
func perpendicularRight(d Direction) Direction {
	switch d {
	case DirUp:
		return DirRight
	case DirRight:
		return DirDown
	case DirDown:
		return DirLeft
	case DirLeft:
		return DirUp
	default:
		return d
	}
}

// walkState is the mutable bookkeeping shared across all four top-level
// walks and every recursive If branch. pos_ids/xys in spec.md §3/§9.
type walkState struct {
	board   *Board
	instrs  []Instr
	posIDs  map[Pos]int // board coordinate -> instruction index it generated
	xys     []Pos       // parallel stack of coordinates for cancellation/cleanup
}

// lower walks the board from its Car tile along all four initial
// directions, in the fixed order Up, Right, Down, Left, producing the
// complete IR and entry table. This is the sole entry point of the
// board walker / lowering component (spec.md §4.2).
func lower(b *Board) (*Program, error) {
	ws := &walkState{
		board:  b,
		posIDs: make(map[Pos]int),
	}

	var entries EntryTable
	for i, dir := range allDirections {
		if i > 0 {
			beg := len(ws.instrs)
			switch dir {
			case DirRight:
				entries.Right = beg
			case DirDown:
				entries.Down = beg
			case DirLeft:
				entries.Left = beg
			}
		}
		glog.V(1).Infof("hbcht: entering path direction=%s offset=%d", dir, len(ws.instrs))
		if err := ws.walkPath(b.CarPos, dir); err != nil {
			return nil, err
		}
	}

	return &Program{Instrs: ws.instrs, Entries: entries}, nil
}

// walkPath walks a single straight-line path starting at pos heading
// direc, appending to ws.instrs, until it reaches Exit, a Goto (join),
// or (for a recursive If branch) falls off the end of its caller.
func (ws *walkState) walkPath(pos Pos, direc Direction) error {
	x, y := pos.X, pos.Y
	beginOffset := len(ws.instrs)

	for {
		var t Tile
		for {
			switch direc {
			case DirUp:
				y = mod(y-1, ws.board.Height)
			case DirDown:
				y = mod(y+1, ws.board.Height)
			case DirRight:
				x = mod(x+1, ws.board.rowLen(y))
			case DirLeft:
				x = mod(x-1, ws.board.rowLen(y))
			}
			t = ws.board.at(x, y)
			if t != TileEmpty {
				break
			}
		}

		action, isExit := classify(t, direc)
		if isExit {
			ws.instrs = append(ws.instrs, Instr{Op: OpExit})
			return nil
		}
		if action == nil {
			// a reversed redirector: no-op, keep advancing
			continue
		}

		cur := Pos{X: x, Y: y}
		a := *action

		// Memory actions always force the new direction, whether or not
		// they end up fusing with the previous instruction.
		if a.isMemoryOp() {
			direc = forcedDirection(a)
			if ws.tryFuse(cur, a) {
				continue
			}
		}

		// A join is checked for every action that did not just fuse,
		// including If — a previously visited If tile joins rather than
		// being re-lowered.
		joined, err := ws.tryJoin(cur, beginOffset)
		if err != nil {
			return err
		}
		if joined {
			return nil
		}

		if a.isMemoryOp() {
			ws.posIDs[cur] = len(ws.instrs)
			ws.xys = append(ws.xys, cur)
			ws.instrs = append(ws.instrs, Instr{Op: a, Arg: 1})
			continue
		}

		// a == OpIf
		if err := ws.emitIf(cur, direc); err != nil {
			return err
		}
		// fall-through continues straight, direction unchanged
	}
}

// classify determines the abstract action implied by tile t when the car
// is heading direc. A reversed redirector (spec.md §4.2 step 2) yields
// (nil, false): the walker continues advancing without emitting. Exit
// yields (nil, true).
func classify(t Tile, direc Direction) (action *Opcode, isExit bool) {
	op := func(o Opcode) *Opcode { return &o }
	switch t {
	case TileDec:
		if direc == DirLeft {
			return nil, false
		}
		return op(OpDec), false
	case TileInc:
		if direc == DirRight {
			return nil, false
		}
		return op(OpInc), false
	case TilePrev:
		if direc == DirUp {
			return nil, false
		}
		return op(OpPrevCell), false
	case TileNext:
		if direc == DirDown {
			return nil, false
		}
		return op(OpNextCell), false
	case TileIf:
		return op(OpIf), false
	case TileExit:
		return nil, true
	default:
		return nil, false
	}
}

func forcedDirection(action Opcode) Direction {
	switch action {
	case OpDec:
		return DirDown
	case OpInc:
		return DirUp
	case OpPrevCell:
		return DirLeft
	case OpNextCell:
		return DirRight
	default:
		return DirUp
	}
}

// tryJoin checks whether cur has already been visited anywhere in the
// lowering so far. If so it emits a Goto to the recorded instruction and
// reports joined=true. A join whose target lies within the current
// path's own begin offset, with no If instruction between the target and
// here, is an infinite loop and is rejected.
func (ws *walkState) tryJoin(cur Pos, beginOffset int) (joined bool, err error) {
	target, ok := ws.posIDs[cur]
	if !ok {
		return false, nil
	}
	if target >= beginOffset {
		hasIf := lo.SomeBy(ws.instrs[target:], func(in Instr) bool { return in.Op == OpIf })
		if !hasIf {
			return false, newError(KindInfiniteLoop, "infinite loop present")
		}
	}
	ws.instrs = append(ws.instrs, Instr{Op: OpGoto, Arg: target})
	glog.V(2).Infof("hbcht: join at %v -> goto %d", cur, target)
	return true, nil
}

// tryFuse applies peephole fusion (spec.md §4.2 step 3): run-length
// folding into an identical previous instruction, or cancellation against
// a complementary one. Reports whether fusion consumed the action.
func (ws *walkState) tryFuse(cur Pos, action Opcode) bool {
	n := len(ws.instrs)
	if n == 0 {
		return false
	}
	prev := &ws.instrs[n-1]
	if prev.Op == action {
		prev.Arg++
		glog.V(2).Infof("hbcht: fuse %s at %v -> arg=%d", action, cur, prev.Arg)
		return true
	}
	if comp, ok := action.complement(); ok && prev.Op == comp {
		if prev.Arg > 1 {
			prev.Arg--
		} else {
			ws.instrs = ws.instrs[:n-1]
			if len(ws.xys) > 0 {
				last := ws.xys[len(ws.xys)-1]
				delete(ws.posIDs, last)
				ws.xys = ws.xys[:len(ws.xys)-1]
			}
		}
		glog.V(2).Infof("hbcht: cancel %s at %v", action, cur)
		return true
	}
	return false
}

// emitIf reserves a placeholder slot at cur, recursively lowers the
// perpendicular-right branch, then back-patches the slot so that If's
// target is the instruction immediately after the branch (spec.md §4.2
// step 6): the "true" branch is the fall-through of the reserved slot.
func (ws *walkState) emitIf(cur Pos, direc Direction) error {
	cid := len(ws.instrs)
	ws.posIDs[cur] = cid
	ws.xys = append(ws.xys, cur)
	ws.instrs = append(ws.instrs, Instr{}) // temporary placeholder

	if err := ws.walkPath(cur, perpendicularRight(direc)); err != nil {
		return err
	}

	ws.instrs[cid] = Instr{Op: OpIf, Arg: len(ws.instrs)}
	return nil
}

func mod(a, n int) int {
	if n <= 0 {
		return 0
	}
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
