package hbcht

import (
	"encoding/binary"

	"github.com/samber/lo"
)

// Bytecode container layout (spec.md §4.4), all little-endian:
//
//	byte 0       0x01
//	bytes 1..5   "hbcht"
//	byte 6       version (1)
//	byte 7       0x02 (fixed, written verbatim, not otherwise interpreted)
//	byte 8       0x01 if input_as_text else 0x02
//	byte 9       0x01 if output_as_text else 0x02
//	bytes 10..21 entry table: uint32 Right, Down, Left
//	thereafter   instruction stream: uint32 opcode, uint32 arg, to EOF
const (
	bcHeaderSize   = 10
	bcMagicVersion = 1
	bcMagicBody    = "hbcht"
)

var opcodeToWire = map[Opcode]uint32{
	OpDec:      1,
	OpInc:      2,
	OpPrevCell: 3,
	OpNextCell: 4,
	OpIf:       5,
	OpGoto:     6,
	OpExit:     7,
}

var wireToOpcode = func() map[uint32]Opcode {
	m := make(map[uint32]Opcode, len(opcodeToWire))
	for op, w := range opcodeToWire {
		m[w] = op
	}
	return m
}()

// EmitBytecode serializes p into the hbcht bytecode container.
func (p *Program) EmitBytecode() []byte {
	out := make([]byte, bcHeaderSize+12+len(p.Instrs)*8)
	out[0] = 0x01
	copy(out[1:6], bcMagicBody)
	out[6] = bcMagicVersion
	out[7] = 0x02
	out[8] = boolByte(p.InputAsText)
	out[9] = boolByte(p.OutputAsText)

	binary.LittleEndian.PutUint32(out[10:14], uint32(p.Entries.Right))
	binary.LittleEndian.PutUint32(out[14:18], uint32(p.Entries.Down))
	binary.LittleEndian.PutUint32(out[18:22], uint32(p.Entries.Left))

	off := 22
	for _, in := range p.Instrs {
		binary.LittleEndian.PutUint32(out[off:off+4], opcodeToWire[in.Op])
		binary.LittleEndian.PutUint32(out[off+4:off+8], uint32(in.Arg))
		off += 8
	}
	return out
}

func boolByte(b bool) byte {
	if b {
		return 0x01
	}
	return 0x02
}

// looksLikeBytecode reports whether data carries the hbcht bytecode
// header, per the magic test in spec.md §4.4 / original_source's
// _parse_data header test.
func looksLikeBytecode(data []byte) bool {
	if len(data) < 8 {
		return false
	}
	return data[0] == 0x01 && string(data[1:6]) == bcMagicBody && data[7] == 0x02
}

// LoadBytecode decodes the hbcht bytecode container in data into a
// Program, validating every If/Goto target lies in [0, N) (spec.md §4.4).
// opts.InputAsText/OutputAsText, when set, take precedence over the
// header's flags.
func LoadBytecode(data []byte, opts Options) (*Program, error) {
	if len(data) == 0 {
		return nil, newError(KindNoProgramData, "no program data")
	}
	if len(data) < bcHeaderSize {
		return nil, newError(KindCorruptBytecode, "file too short for bytecode header")
	}
	if data[0] != 0x01 || string(data[1:6]) != bcMagicBody || data[7] != 0x02 {
		return nil, newError(KindCorruptBytecode, "bad magic header")
	}
	version := data[6]
	if version != bcMagicVersion {
		return nil, newError(KindUnsupportedBytecodeVersion, "only version %d is supported", bcMagicVersion)
	}

	inputAsText := data[8] == 0x01
	outputAsText := data[9] == 0x01
	if opts.InputAsText != nil {
		inputAsText = *opts.InputAsText
	}
	if opts.OutputAsText != nil {
		outputAsText = *opts.OutputAsText
	}

	body := data[bcHeaderSize:]
	if len(body) < 12 || (len(body)-12)%8 != 0 {
		return nil, newError(KindCorruptBytecode, "truncated entry table or instruction stream")
	}

	entries := EntryTable{
		Right: int(binary.LittleEndian.Uint32(body[0:4])),
		Down:  int(binary.LittleEndian.Uint32(body[4:8])),
		Left:  int(binary.LittleEndian.Uint32(body[8:12])),
	}

	stream := body[12:]
	n := len(stream) / 8
	instrs := make([]Instr, n)
	for i := 0; i < n; i++ {
		off := i * 8
		wireOp := binary.LittleEndian.Uint32(stream[off : off+4])
		arg := binary.LittleEndian.Uint32(stream[off+4 : off+8])
		op, ok := wireToOpcode[wireOp]
		if !ok {
			return nil, newError(KindCorruptBytecode, "unknown opcode %d at instruction %d", wireOp, i)
		}
		instrs[i] = Instr{Op: op, Arg: int(arg)}
	}

	if err := validateTargets(instrs, entries); err != nil {
		return nil, err
	}

	return &Program{
		Instrs:       instrs,
		Entries:      entries,
		InputAsText:  inputAsText,
		OutputAsText: outputAsText,
	}, nil
}

// validateTargets checks that every If/Goto argument and every entry
// offset lies in [0, N).
func validateTargets(instrs []Instr, entries EntryTable) error {
	n := len(instrs)
	inRange := func(v int) bool { return v >= 0 && v < n }

	if !lo.EveryBy([]int{entries.Right, entries.Down, entries.Left}, inRange) {
		return newError(KindTargetOutOfRange, "entry offset out of range [0, %d)", n)
	}

	jumps := lo.Map(lo.Filter(instrs, func(in Instr, _ int) bool {
		return in.Op == OpIf || in.Op == OpGoto
	}), func(in Instr, _ int) int { return in.Arg })

	if !lo.EveryBy(jumps, inRange) {
		return newError(KindCorruptBytecode, "code position out of scope")
	}
	return nil
}
