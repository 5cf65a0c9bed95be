package build

import (
	"context"

	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/cogland/cog/ir"
)

type (
	// Builder owns the graph store while it is under construction.
	// All mutation goes through the Session handed to callbacks;
	// the store is released exactly once, as the finished Graph.
	Builder struct {
		tr tlog.Span

		instrs []ir.Instr
		blocks []ir.Block // declaration order
		rpo    []ir.BlockID

		state []blockState // parallel to blocks

		scopes   []scope
		curScope int

		cur ir.BlockID // block currently being defined
	}

	// blockState is the construction-time lifecycle of a block.
	// It is not part of the finished graph.
	blockState struct {
		phase phase
		scope int // declaring scope
		phis  int // phi slots consumed

		loopDone bool // loop head closed to back edges
	}

	// scope is one nesting level of construction.
	// Each scope owns its declaration queue; it closes only when the
	// cursor has consumed the whole queue.
	scope struct {
		parent int
		borrow ir.BlockID // parent's current block when the scope opened

		decls   []ir.BlockID
		entered int

		closed bool
		from   loc.PC // call site that opened the scope
	}

	phase uint8
)

const (
	declared phase = iota
	defining
	finished
)

// Build runs f with the root session and returns the finished graph.
//
// The root start block is already entered when f runs. Any invariant
// violation inside f aborts construction through every nesting level;
// Build then returns the failure and no graph. A failed build leaves
// no usable result, partial or otherwise.
//
// Dominance of operand definitions across blocks is not validated
// here. Using a value from a non-dominating block builds a bad graph
// silently; check.Dominance is the opt-in pass for that.
func Build(ctx context.Context, f func(*Session)) (g *ir.Graph, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "build graph")
	defer tr.Finish("err", &err)

	defer func() {
		p := recover()
		if p == nil {
			return
		}

		be, ok := p.(buildError)
		if !ok {
			panic(p)
		}

		g, err = nil, be.err
	}()

	b := &Builder{
		tr:       tr,
		curScope: -1,
		cur:      ir.NoBlock,
	}

	s := b.openScope(ir.NoBlock, loc.Caller(1))

	start := b.declBlock(ir.Start, 0)
	b.scopes[s.scope].entered++
	b.enter(start)

	f(s)

	b.closeScope(s)

	b.checkFinished()
	b.checkEdges()

	g = &ir.Graph{
		Instrs: b.instrs,
		Blocks: b.blocks,
		RPO:    b.rpo,
	}

	tr.Printw("graph built", "blocks", len(g.Blocks), "instrs", len(g.Instrs))

	return g, nil
}

func (b *Builder) openScope(borrow ir.BlockID, from loc.PC) *Session {
	b.scopes = append(b.scopes, scope{
		parent: b.curScope,
		borrow: borrow,
		from:   from,
	})
	b.curScope = len(b.scopes) - 1

	return &Session{b: b, scope: b.curScope}
}

func (b *Builder) closeScope(s *Session) {
	sc := &b.scopes[s.scope]

	if sc.entered != len(sc.decls) {
		fail(ErrUnfinished, "scope opened at %v: %v of %v declared blocks defined", sc.from, sc.entered, len(sc.decls))
	}

	for _, id := range sc.decls {
		if b.state[id].phase != finished {
			fail(ErrUnfinished, "scope opened at %v: block %v is not finished", sc.from, id)
		}
	}

	sc.closed = true
	b.curScope = sc.parent
}

func (b *Builder) declBlock(kind ir.BlockKind, numPhis int) ir.BlockID {
	id := ir.BlockID(len(b.blocks))

	b.blocks = append(b.blocks, ir.Block{
		ID:      id,
		Kind:    kind,
		NumPhis: numPhis,
		Order:   -1,
		First:   ir.NoValue,
		End:     ir.NoValue,
	})

	b.state = append(b.state, blockState{scope: b.curScope})

	sc := &b.scopes[b.curScope]
	sc.decls = append(sc.decls, id)

	if b.tr.If("blocks") {
		b.tr.Printw("decl block", "block", id, "kind", kind, "phis", numPhis)
	}

	return id
}

func (b *Builder) enter(id ir.BlockID) {
	blk := &b.blocks[id]
	blk.Order = len(b.rpo)
	blk.First = ir.Value(len(b.instrs))
	blk.End = blk.First

	b.rpo = append(b.rpo, id)

	b.state[id].phase = defining
	b.cur = id

	if b.tr.If("blocks") {
		b.tr.Printw("enter block", "block", id, "order", blk.Order, "first", blk.First)
	}
}

// defining checks that an instruction can be appended right now.
func (b *Builder) defining() {
	if b.cur == ir.NoBlock {
		fail(ErrSequencing, "no block is being defined")
	}

	if b.state[b.cur].phase != defining {
		fail(ErrSequencing, "block %v is already finished", b.cur)
	}
}

func (b *Builder) push(ins ir.Instr) ir.Value {
	ins.Block = b.cur

	v := ir.Value(len(b.instrs))
	b.instrs = append(b.instrs, ins)
	b.blocks[b.cur].End = v + 1

	if b.tr.If("instrs") {
		b.tr.Printw("emit", "block", b.cur, "value", v, "op", ins.Op, "type", ins.Type)
	}

	return v
}

// checkFinished verifies the whole-graph invariant: every block
// finished, every loop head closed, every non-start block targeted by
// at least one edge.
func (b *Builder) checkFinished() {
	for i := range b.blocks {
		st := &b.state[i]

		if st.phase != finished {
			fail(ErrUnfinished, "block %v left unfinished", i)
		}

		if b.blocks[i].Kind == ir.Loop && !st.loopDone {
			fail(ErrUnfinished, "loop head %v left open", i)
		}

		if b.blocks[i].Kind != ir.Start && b.blocks[i].InEdges == 0 {
			fail(ErrUnreachable, "block %v has no inbound edges", i)
		}
	}
}

// checkEdges is the one deferred validation: edge argument types are
// matched against the target's phi types once all blocks are defined.
// Argument counts were already checked when each edge was created.
func (b *Builder) checkEdges() {
	for i := range b.instrs {
		for _, e := range b.instrs[i].Targets {
			b.checkEdgeTypes(&b.instrs[i], e)
		}
	}
}

func (b *Builder) checkEdgeTypes(from *ir.Instr, e ir.Edge) {
	blk := &b.blocks[e.To]
	slot := 0

	for v := blk.First; v < blk.End; v++ {
		if b.instrs[v].Op != ir.Phi {
			continue
		}

		want := b.instrs[v].Type
		got := b.instrs[e.Args[slot]].Type

		if got != want {
			fail(ErrTypeMismatch, "edge %v -> %v: phi slot %v: argument is %v, phi wants %v", from.Block, e.To, slot, got, want)
		}

		slot++
	}
}
