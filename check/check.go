// Package check holds optional validation passes over a finished graph.
//
// Construction itself never checks that operand definitions dominate
// their uses; that is a documented non-guarantee of the builder.
// Callers who want the stronger property run Dominance on the result.
package check

import (
	"tlog.app/go/errors"

	"github.com/cogland/cog/ir"
	"github.com/cogland/cog/set"
)

var ErrDominance = errors.New("definition does not dominate use")

// Dominance verifies that every instruction operand, edge arguments
// included, is defined in a block dominating the block that uses it,
// or earlier within the same block.
func Dominance(g *ir.Graph) error {
	n := len(g.RPO)
	if n == 0 {
		return nil
	}

	// Predecessor lists by definition-order position.
	preds := make([][]int, n)

	for _, id := range g.RPO {
		u := g.Block(id).Order

		for _, e := range g.Succs(id) {
			v := g.Block(e.To).Order
			preds[v] = append(preds[v], u)
		}
	}

	if err := reachable(g, n); err != nil {
		return err
	}

	idom := dominators(g, preds, n)

	for i := range g.Instrs {
		ins := &g.Instrs[i]

		for _, a := range ins.Args {
			if err := checkUse(g, idom, ir.Value(i), a); err != nil {
				return err
			}
		}

		for _, e := range ins.Targets {
			for _, a := range e.Args {
				if err := checkUse(g, idom, ir.Value(i), a); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func reachable(g *ir.Graph, n int) error {
	reach := set.MakeBitmap(n)

	var q []int

	for _, id := range g.RPO {
		b := g.Block(id)
		if b.Kind != ir.Start {
			continue
		}

		reach.Set(b.Order)
		q = append(q, b.Order)
	}

	for i := 0; i < len(q); i++ {
		id := g.RPO[q[i]]

		for _, e := range g.Succs(id) {
			p := g.Block(e.To).Order
			if reach.IsSet(p) {
				continue
			}

			reach.Set(p)
			q = append(q, p)
		}
	}

	if reach.Size() == n {
		return nil
	}

	for p := 0; p < n; p++ {
		if !reach.IsSet(p) {
			return errors.New("block %v is unreachable", g.RPO[p])
		}
	}

	return nil
}

// dominators computes immediate dominators by definition-order
// position, iterating to a fixpoint. Start blocks answer to a virtual
// root, position -1, so multi-entry graphs meet there.
func dominators(g *ir.Graph, preds [][]int, n int) []int {
	idom := make([]int, n)
	assigned := set.MakeBitmap(n)

	for p := 0; p < n; p++ {
		idom[p] = -1

		if g.Block(g.RPO[p]).Kind == ir.Start {
			assigned.Set(p)
		}
	}

	for changed := true; changed; {
		changed = false

		for p := 0; p < n; p++ {
			if g.Block(g.RPO[p]).Kind == ir.Start {
				continue
			}

			dom := -2

			for _, q := range preds[p] {
				if !assigned.IsSet(q) {
					continue
				}

				if dom == -2 {
					dom = q
					continue
				}

				dom = intersect(idom, dom, q)
			}

			if dom == -2 {
				continue
			}

			if !assigned.IsSet(p) || idom[p] != dom {
				idom[p] = dom
				assigned.Set(p)
				changed = true
			}
		}
	}

	return idom
}

func intersect(idom []int, a, b int) int {
	for a != b {
		switch {
		case a < 0 || b < 0:
			return -1
		case a > b:
			a = idom[a]
		default:
			b = idom[b]
		}
	}

	return a
}

func dominates(idom []int, d, u int) bool {
	for u >= 0 {
		if u == d {
			return true
		}

		u = idom[u]
	}

	return false
}

func checkUse(g *ir.Graph, idom []int, use, a ir.Value) error {
	ins := g.Instr(use)
	def := g.Instr(a).Block

	if def == ins.Block {
		if a < use {
			return nil
		}

		return errors.Wrap(ErrDominance, "value %v used by %v before it is defined", a, use)
	}

	if !dominates(idom, g.Block(def).Order, g.Block(ins.Block).Order) {
		return errors.Wrap(ErrDominance, "value %v (block %v) used in block %v", a, def, ins.Block)
	}

	return nil
}
