// Package bytecode defines Slate's compiled chunk format: the opcode set
// the stack-based interpreter executes (spec.md §4.8), the Chunk
// container (code bytes, a parallel line table, and a constant pool), the
// FunctionProto/UpvalueDesc pair describing a compiled function's shape,
// a disassembler, and a binary on-disk encoding ("SLAT" chunks, grounded
// on the teacher's own length-prefixed `pkg/bytecode/format.go`).
package bytecode

// Opcode identifies a single bytecode instruction.
type Opcode byte

const (
	// Stack operations.
	OpConstant Opcode = iota
	OpNull
	OpTrue
	OpFalse
	OpPop
	OpDup

	// Locals and upvalues.
	OpGetLocal
	OpSetLocal
	OpGetUpvalue
	OpSetUpvalue
	OpCloseUpvalue

	// Globals.
	OpDefineGlobal
	OpGetGlobal
	OpSetGlobal

	// Arithmetic, bitwise, comparison, logic.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpNeg
	OpBitAnd
	OpBitOr
	OpBitXor
	OpBitNot
	OpShl
	OpShr
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpNot

	// Control flow.
	OpJump
	OpJumpIfFalse
	OpJumpIfTrue
	OpLoop

	// Calls.
	OpCall
	OpInvoke
	OpSuperInvoke
	OpReturn

	// Object / array / range / string-template construction.
	OpMakeArray
	OpMakeObject
	OpMakeRange
	OpMakeTemplate

	// Property and index access.
	OpGetProperty
	OpSetProperty
	OpGetIndex
	OpSetIndex

	// Classes.
	OpClass
	OpInherit
	OpMethod
	OpGetStatic
	OpSetStatic

	// Self and closures.
	OpGetSelf
	OpClosure

	// Iteration.
	OpIterInit
	OpIterNext

	opcodeCount
)

var opcodeNames = [opcodeCount]string{
	OpConstant:      "CONSTANT",
	OpNull:          "NULL",
	OpTrue:          "TRUE",
	OpFalse:         "FALSE",
	OpPop:           "POP",
	OpDup:           "DUP",
	OpGetLocal:      "GET_LOCAL",
	OpSetLocal:      "SET_LOCAL",
	OpGetUpvalue:    "GET_UPVALUE",
	OpSetUpvalue:    "SET_UPVALUE",
	OpCloseUpvalue:  "CLOSE_UPVALUE",
	OpDefineGlobal:  "DEFINE_GLOBAL",
	OpGetGlobal:     "GET_GLOBAL",
	OpSetGlobal:     "SET_GLOBAL",
	OpAdd:           "ADD",
	OpSub:           "SUB",
	OpMul:           "MUL",
	OpDiv:           "DIV",
	OpMod:           "MOD",
	OpPow:           "POW",
	OpNeg:           "NEG",
	OpBitAnd:        "BIT_AND",
	OpBitOr:         "BIT_OR",
	OpBitXor:        "BIT_XOR",
	OpBitNot:        "BIT_NOT",
	OpShl:           "SHL",
	OpShr:           "SHR",
	OpEqual:         "EQUAL",
	OpNotEqual:      "NOT_EQUAL",
	OpLess:          "LESS",
	OpLessEqual:     "LESS_EQUAL",
	OpGreater:       "GREATER",
	OpGreaterEqual:  "GREATER_EQUAL",
	OpNot:           "NOT",
	OpJump:          "JUMP",
	OpJumpIfFalse:   "JUMP_IF_FALSE",
	OpJumpIfTrue:    "JUMP_IF_TRUE",
	OpLoop:          "LOOP",
	OpCall:          "CALL",
	OpInvoke:        "INVOKE",
	OpSuperInvoke:   "SUPER_INVOKE",
	OpReturn:        "RETURN",
	OpMakeArray:     "MAKE_ARRAY",
	OpMakeObject:    "MAKE_OBJECT",
	OpMakeRange:     "MAKE_RANGE",
	OpMakeTemplate:  "MAKE_TEMPLATE",
	OpGetProperty:   "GET_PROPERTY",
	OpSetProperty:   "SET_PROPERTY",
	OpGetIndex:      "GET_INDEX",
	OpSetIndex:      "SET_INDEX",
	OpClass:         "CLASS",
	OpInherit:       "INHERIT",
	OpMethod:        "METHOD",
	OpGetStatic:     "GET_STATIC",
	OpSetStatic:     "SET_STATIC",
	OpGetSelf:       "GET_SELF",
	OpClosure:       "CLOSURE",
	OpIterInit:      "ITER_INIT",
	OpIterNext:      "ITER_NEXT",
}

func (op Opcode) String() string {
	if op < opcodeCount {
		return opcodeNames[op]
	}
	return "UNKNOWN"
}
