package hbcht

// block is one basic block of the IR: a contiguous run of instructions
// starting at a jump target or entry offset, per spec.md §4.5.
type block struct {
	start  int
	instrs []Instr
}

// basicBlocks partitions p.Instrs at every index that is an If/Goto
// target or an entry offset (Program.jumpTargets, already sorted and
// deduplicated, always includes 0).
func (p *Program) basicBlocks() []block {
	leaders := p.jumpTargets()
	blocks := make([]block, len(leaders))
	for i, start := range leaders {
		end := len(p.Instrs)
		if i+1 < len(leaders) {
			end = leaders[i+1]
		}
		blocks[i] = block{start: start, instrs: p.Instrs[start:end]}
	}
	return blocks
}

// entryBlockStarts returns the four block-start indices (in Up, Right,
// Down, Left order) that the dispatch prologue in both emitters picks
// among at random.
func (p *Program) entryBlockStarts() [4]int {
	return [4]int{0, p.Entries.Right, p.Entries.Down, p.Entries.Left}
}
