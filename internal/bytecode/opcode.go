package bytecode

// Opcode is a single-byte instruction tag. Operands, when present, follow
// the opcode byte inline in the chunk's code vector.
type Opcode byte

const (
	OpConstant Opcode = iota
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpGetLocal
	OpSetLocal
	OpGetGlobal
	OpDefineGlobal
	OpSetGlobal
	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpNot
	OpNegate
	OpPrint
	OpJump
	OpJumpIfFalse
	OpLoop
	OpReturn
)

// OpCodeDefinition names an opcode and the byte width of each of its
// operands, mirroring the teacher's definitions table for disassembly.
type OpCodeDefinition struct {
	Name          string
	OperandWidths []int
}

var definitions = map[Opcode]*OpCodeDefinition{
	OpConstant:     {"OP_CONSTANT", []int{1}},
	OpNil:          {"OP_NIL", nil},
	OpTrue:         {"OP_TRUE", nil},
	OpFalse:        {"OP_FALSE", nil},
	OpPop:          {"OP_POP", nil},
	OpGetLocal:     {"OP_GET_LOCAL", []int{1}},
	OpSetLocal:     {"OP_SET_LOCAL", []int{1}},
	OpGetGlobal:    {"OP_GET_GLOBAL", []int{1}},
	OpDefineGlobal: {"OP_DEFINE_GLOBAL", []int{1}},
	OpSetGlobal:    {"OP_SET_GLOBAL", []int{1}},
	OpEqual:        {"OP_EQUAL", nil},
	OpGreater:      {"OP_GREATER", nil},
	OpLess:         {"OP_LESS", nil},
	OpAdd:          {"OP_ADD", nil},
	OpSub:          {"OP_SUB", nil},
	OpMul:          {"OP_MUL", nil},
	OpDiv:          {"OP_DIV", nil},
	OpNot:          {"OP_NOT", nil},
	OpNegate:       {"OP_NEGATE", nil},
	OpPrint:        {"OP_PRINT", nil},
	OpJump:         {"OP_JUMP", []int{2}},
	OpJumpIfFalse:  {"OP_JUMP_IF_FALSE", []int{2}},
	OpLoop:         {"OP_LOOP", []int{2}},
	OpReturn:       {"OP_RETURN", nil},
}

// Get returns the definition for op, or false if op is not a known opcode.
func Get(op Opcode) (*OpCodeDefinition, bool) {
	def, ok := definitions[op]
	return def, ok
}
