package ir

func (g *Graph) NumBlocks() int { return len(g.Blocks) }

func (g *Graph) Block(id BlockID) *Block { return &g.Blocks[id] }

func (g *Graph) Instr(v Value) *Instr { return &g.Instrs[v] }

// BlockInstrs returns the ordered instructions of a block,
// terminator included.
func (g *Graph) BlockInstrs(id BlockID) []Instr {
	b := &g.Blocks[id]

	return g.Instrs[b.First:b.End]
}

// Term returns the end instruction of a block.
func (g *Graph) Term(id BlockID) *Instr {
	b := &g.Blocks[id]

	return &g.Instrs[b.End-1]
}

// Succs returns the outgoing edges of a block.
func (g *Graph) Succs(id BlockID) []Edge {
	return g.Term(id).Targets
}

// Phi returns the value holding the slot-th phi of a block,
// or NoValue if the block has fewer phis.
func (g *Graph) Phi(id BlockID, slot int) Value {
	b := &g.Blocks[id]

	for v := b.First; v < b.End; v++ {
		if g.Instrs[v].Op != Phi {
			continue
		}

		if slot == 0 {
			return v
		}

		slot--
	}

	return NoValue
}
