package hbcht

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// emitPython lowers p into a standalone Python module implementing the
// same dispatch-table/trampoline shape as original_source/hbcht.py's
// _python_compile: each basic block becomes a top-level function that
// either returns None (Exit) or a (next_function, next_cell_index) pair,
// and run() drives the trampoline in a plain while loop so that an
// arbitrarily long chain of Gotos never grows the Python call stack.
func (p *Program) emitPython(functionOnly bool) []byte {
	var b strings.Builder
	titler := cases.Title(language.English)

	if !functionOnly {
		fmt.Fprintln(&b, "#!/usr/bin/env python3")
	}
	fmt.Fprintln(&b, "# Generated by hbcht")
	starts := p.entryBlockStarts()
	names := [4]string{"Up", "Right", "Down", "Left"}
	fmt.Fprint(&b, "# Entries:")
	for i, n := range names {
		fmt.Fprintf(&b, " %s=action_%d", titler.String(n), starts[i])
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "import random")
	fmt.Fprintln(&b, "import collections")
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "def run(*inputs, **kwds):")
	fmt.Fprintln(&b, "    format_output = kwds.get('format_output')")
	if p.InputAsText {
		fmt.Fprintln(&b, "    inputs = tuple(map(ord, ''.join(map(str, inputs))))")
	} else {
		fmt.Fprintln(&b, "    ninputs = []")
		fmt.Fprintln(&b, "    for x in inputs:")
		fmt.Fprintln(&b, "        try:")
		fmt.Fprintln(&b, "            ninputs.append(int(x))")
		fmt.Fprintln(&b, "        except ValueError:")
		fmt.Fprintln(&b, "            ninputs.extend(map(ord, x))")
		fmt.Fprintln(&b, "    inputs = ninputs")
	}
	fmt.Fprintln(&b, "    for x in inputs:")
	fmt.Fprintln(&b, "        if x < 0:")
	fmt.Fprintln(&b, "            raise Exception('input values must be non-negative')")
	fmt.Fprintln(&b, "    cells = {}")
	fmt.Fprintln(&b, "    for idx in range(len(inputs)):")
	fmt.Fprintln(&b, "        cells[idx] = inputs[idx]")
	fmt.Fprintln(&b, "    cells = collections.defaultdict(int, cells)")
	fmt.Fprintln(&b)

	for _, blk := range p.basicBlocks() {
		fmt.Fprintf(&b, "    def action_%d(i):\n", blk.start)
		if len(blk.instrs) == 0 {
			fmt.Fprintln(&b, "        return None")
			continue
		}
		for _, in := range blk.instrs {
			switch in.Op {
			case OpDec:
				fmt.Fprintf(&b, "        cells[i] -= %d\n", in.Arg)
			case OpInc:
				fmt.Fprintf(&b, "        cells[i] += %d\n", in.Arg)
			case OpPrevCell:
				fmt.Fprintf(&b, "        i -= %d\n", in.Arg)
			case OpNextCell:
				fmt.Fprintf(&b, "        i += %d\n", in.Arg)
			case OpIf:
				fmt.Fprintln(&b, "        if cells[i] != cells[i - 1]:")
				fmt.Fprintf(&b, "            return (action_%d, i)\n", in.Arg)
			case OpGoto:
				fmt.Fprintf(&b, "        return (action_%d, i)\n", in.Arg)
			case OpExit:
				fmt.Fprintln(&b, "        return None")
			}
		}
		// A block that does not end in Exit or Goto falls through into
		// the block that starts right after it.
		if last := blk.instrs[len(blk.instrs)-1].Op; last != OpExit && last != OpGoto {
			fmt.Fprintf(&b, "        return (action_%d, i)\n", blk.start+len(blk.instrs))
		}
	}
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "    i, j = 0, random.choice((%d, %d, %d, %d))\n",
		starts[0], starts[1], starts[2], starts[3])
	fmt.Fprintln(&b, "    actions = {")
	for _, blk := range p.basicBlocks() {
		fmt.Fprintf(&b, "        %d: action_%d,\n", blk.start, blk.start)
	}
	fmt.Fprintln(&b, "    }")
	fmt.Fprintln(&b, "    action = actions[j]")
	fmt.Fprintln(&b, "    while True:")
	fmt.Fprintln(&b, "        ret = action(i)")
	fmt.Fprintln(&b, "        if ret is None:")
	fmt.Fprintln(&b, "            break")
	fmt.Fprintln(&b, "        action, i = ret")
	fmt.Fprintln(&b, "    cells = sorted(filter(lambda kv: kv[1] != 0, cells.items()),")
	fmt.Fprintln(&b, "                   key=lambda kv: kv[0])")

	if p.OutputAsText {
		fmt.Fprintln(&b, "    out = ''.join(chr(v) for k, v in cells)")
	} else {
		fmt.Fprintln(&b, "    if format_output:")
		fmt.Fprintln(&b, "        if cells:")
		fmt.Fprintln(&b, "            width = max(len(str(cells[0][0])), len(str(cells[-1][0])))")
		fmt.Fprintln(&b, "            out = '\\n'.join('{0:{1}d}: {2}'.format(k, width, v) for k, v in cells)")
		fmt.Fprintln(&b, "        else:")
		fmt.Fprintln(&b, "            out = '(empty)'")
		fmt.Fprintln(&b, "        out += '\\n'")
		fmt.Fprintln(&b, "    else:")
		fmt.Fprintln(&b, "        out = cells")
	}
	fmt.Fprintln(&b, "    return out")

	if !functionOnly {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "if __name__ == '__main__':")
		fmt.Fprintln(&b, "    import sys")
		fmt.Fprintln(&b, "    sys.stdout.write(run(*sys.argv[1:], format_output=True))")
	}

	return []byte(b.String())
}
