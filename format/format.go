// Package format renders a finished graph as readable text.
// The output is a debugging aid, not an interchange format.
package format

import (
	"fmt"

	"github.com/cogland/cog/ir"
)

// Graph appends a listing of g to b, blocks in definition order.
func Graph(b []byte, g *ir.Graph) []byte {
	for i, id := range g.RPO {
		if i != 0 {
			b = append(b, '\n')
		}

		b = Block(b, g, id)
	}

	return b
}

func Block(b []byte, g *ir.Graph, id ir.BlockID) []byte {
	blk := g.Block(id)

	b = fmt.Appendf(b, "b%d: %v", id, blk.Kind)

	if blk.NumPhis != 0 {
		b = fmt.Appendf(b, " phis=%d", blk.NumPhis)
	}

	if blk.InEdges != 0 {
		b = fmt.Appendf(b, " in=%d", blk.InEdges)
	}

	b = append(b, '\n')

	for v := blk.First; v < blk.End; v++ {
		b = Instr(b, g, v)
	}

	return b
}

func Instr(b []byte, g *ir.Graph, v ir.Value) []byte {
	ins := g.Instr(v)

	switch {
	case ins.Op.IsEnd():
		b = fmt.Appendf(b, "\t%v", ins.Op)

		for _, a := range ins.Args {
			b = fmt.Appendf(b, " v%d", a)
		}

		for i, e := range ins.Targets {
			if i != 0 {
				b = append(b, ',')
			}

			b = fmt.Appendf(b, " -> b%d (", e.To)

			for j, a := range e.Args {
				if j != 0 {
					b = append(b, ", "...)
				}

				b = fmt.Appendf(b, "v%d", a)
			}

			b = append(b, ')')
		}
	case ins.Op == ir.Nop:
		b = fmt.Appendf(b, "\t%v", ins.Op)
	case ins.Op.IsConst():
		b = fmt.Appendf(b, "\tv%d = %v %d", v, ins.Op, ins.Val)
	default:
		b = fmt.Appendf(b, "\tv%d = %v.%v", v, ins.Op, ins.Type)

		for _, a := range ins.Args {
			b = fmt.Appendf(b, " v%d", a)
		}
	}

	b = append(b, '\n')

	return b
}
