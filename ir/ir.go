package ir

import "tlog.app/go/tlog/tlwire"

type (
	// Value is the stable index of an instruction in a graph.
	// Instructions that produce a result are referenced by their Value.
	Value int32

	// BlockID is the stable index of a block, assigned in declaration order.
	// Declaration order does not coincide with definition order: subgraphs
	// declare their blocks after their parents but nest their control flow
	// within.
	BlockID int32

	BlockKind uint8

	// Edge is one outgoing edge of an end instruction.
	// Args carry the values for the target's phi slots, in slot order.
	Edge struct {
		To   BlockID
		Args []Value
	}

	Instr struct {
		Op   Op
		Type Type // result type, Void if the instruction produces no value

		Args []Value
		Val  uint64 // constant payload

		Targets []Edge // end instructions only

		Block BlockID
	}

	Block struct {
		ID      BlockID
		Kind    BlockKind
		NumPhis int

		// Order is the position of the block in definition order.
		// Definition order is reverse postorder by construction.
		Order int

		// Instruction range [First, End).
		First, End Value

		InEdges int
	}

	// Graph is a finished control flow graph.
	// It is handed out once by build.Build and never mutated after that.
	Graph struct {
		Instrs []Instr
		Blocks []Block   // declaration order
		RPO    []BlockID // definition order
	}
)

const (
	NoValue Value   = -1
	NoBlock BlockID = -1
)

const (
	Plain BlockKind = iota
	Start
	Loop
)

func (k BlockKind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Start:
		return "start"
	case Loop:
		return "loop"
	}

	return "blockkind?"
}

func (e Edge) TlogAppend(b []byte) []byte {
	var enc tlwire.Encoder

	b = enc.AppendMap(b, 2)
	b = enc.AppendKeyInt64(b, "to", int64(e.To))

	b = enc.AppendKey(b, "args")
	b = enc.AppendTag(b, tlwire.Array, len(e.Args))

	for _, a := range e.Args {
		b = enc.AppendInt64(b, int64(a))
	}

	return b
}
