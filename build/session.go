package build

import (
	"tlog.app/go/loc"

	"github.com/cogland/cog/ir"
)

// Session is a scoped cursor over the block currently being defined.
// One session exists per subgraph scope; it is valid only for the
// duration of the callback that received it.
type Session struct {
	b     *Builder
	scope int
}

// use validates the session before any operation.
func (s *Session) use() *Builder {
	b := s.b

	if b.scopes[s.scope].closed {
		fail(ErrScope, "session used after its callback returned (scope opened at %v)", b.scopes[s.scope].from)
	}

	if b.curScope != s.scope {
		fail(ErrScope, "session used while a nested scope is open (opened at %v)", b.scopes[b.curScope].from)
	}

	return b
}

// visible reports whether a declaring scope is the session's scope or
// an ancestor of it. Scopes close in LIFO order, so every scope on the
// chain is still open.
func (s *Session) visible(sc int) bool {
	for i := s.scope; i >= 0; i = s.b.scopes[i].parent {
		if i == sc {
			return true
		}
	}

	return false
}

// value validates an operand: it must exist, produce a result, and
// come from the current scope or an ancestor.
func (s *Session) value(v ir.Value) {
	b := s.b

	if v < 0 || int(v) >= len(b.instrs) {
		fail(ErrScope, "value %v does not exist", v)
	}

	ins := &b.instrs[v]

	if ins.Type == ir.Void {
		fail(ErrTypeMismatch, "value %v (%v) produces no result", v, ins.Op)
	}

	if !s.visible(b.state[ins.Block].scope) {
		fail(ErrScope, "value %v is out of scope", v)
	}
}

// DeclPlainBlock appends a plain block to the scope's declaration
// sequence. The block starts life declared; it is defined later, at
// its turn, with DefBlock.
func (s *Session) DeclPlainBlock(numPhis int) ir.BlockID {
	b := s.use()

	if numPhis < 0 {
		fail(ErrArity, "negative phi count %v", numPhis)
	}

	return b.declBlock(ir.Plain, numPhis)
}

// DeclStartBlock appends an additional entry block. Entry blocks have
// no predecessors, so their phi count is fixed at zero.
func (s *Session) DeclStartBlock() ir.BlockID {
	b := s.use()

	return b.declBlock(ir.Start, 0)
}

// DeclLoopHead appends a loop header block. It must be defined with
// DefLoop, which is the only way to open it to back edges.
func (s *Session) DeclLoopHead(numPhis int) ir.BlockID {
	b := s.use()

	if numPhis < 0 {
		fail(ErrArity, "negative phi count %v", numPhis)
	}

	return b.declBlock(ir.Loop, numPhis)
}

func (s *Session) defBlock(id ir.BlockID, loop bool) {
	b := s.use()

	if id < 0 || int(id) >= len(b.blocks) {
		fail(ErrScope, "block %v does not exist", id)
	}

	if (b.blocks[id].Kind == ir.Loop) != loop {
		if loop {
			fail(ErrSequencing, "block %v is not a loop head", id)
		}

		fail(ErrSequencing, "loop head %v must be defined with DefLoop", id)
	}

	if b.cur != ir.NoBlock && b.state[b.cur].phase != finished {
		fail(ErrSequencing, "previous block %v is not finished", b.cur)
	}

	if b.state[id].scope != s.scope {
		fail(ErrScope, "block %v was declared in another scope", id)
	}

	sc := &b.scopes[s.scope]

	if sc.entered == len(sc.decls) {
		fail(ErrSequencing, "block %v is already defined", id)
	}

	if sc.decls[sc.entered] != id {
		fail(ErrSequencing, "block %v defined out of declaration order, next is %v", id, sc.decls[sc.entered])
	}

	sc.entered++
	b.enter(id)
}

// DefBlock starts defining a declared plain or start block and makes
// it the current block. Blocks are defined in exactly their
// declaration order, and only once the previous block is finished.
func (s *Session) DefBlock(id ir.BlockID) {
	s.defBlock(id, false)
}

// DefSubgraph opens a child scope borrowing the current block, runs f
// with the child session, and requires the child to have finished
// every block it declared. The parent's current block is unchanged
// when DefSubgraph returns.
func (s *Session) DefSubgraph(f func(*Session)) {
	b := s.use()

	cur := b.cur

	cs := b.openScope(cur, loc.Caller(1))
	f(cs)
	b.closeScope(cs)

	b.cur = cur
}

// DefLoop starts defining a declared loop head at its turn in the
// declaration sequence and runs f in a child scope borrowed on the
// head. While f executes the head is open: edges back to it are
// accepted, from any nesting depth. f must finish the head itself;
// when f returns the loop is closed and further edges to the head are
// rejected.
func (s *Session) DefLoop(id ir.BlockID, f func(*Session)) {
	s.defBlock(id, true)

	b := s.b

	cs := b.openScope(id, loc.Caller(1))
	f(cs)

	if b.state[id].phase != finished {
		fail(ErrUnfinished, "loop head %v was not finished by its subgraph", id)
	}

	b.closeScope(cs)

	b.state[id].loopDone = true
	b.cur = id

	if b.tr.If("blocks") {
		b.tr.Printw("loop closed", "block", id)
	}
}

func (s *Session) EmitNop() {
	b := s.use()
	b.defining()

	b.push(ir.Instr{Op: ir.Nop})
}

func (s *Session) EmitConstBool(v bool) ir.Value {
	b := s.use()
	b.defining()

	var p uint64
	if v {
		p = 1
	}

	return b.push(ir.Instr{Op: ir.ConstBool, Type: ir.Bool, Val: p})
}

func (s *Session) EmitConstInt32(v uint32) ir.Value {
	b := s.use()
	b.defining()

	return b.push(ir.Instr{Op: ir.ConstInt32, Type: ir.Int32, Val: uint64(v)})
}

func (s *Session) EmitConstInt64(v uint64) ir.Value {
	b := s.use()
	b.defining()

	return b.push(ir.Instr{Op: ir.ConstInt64, Type: ir.Int64, Val: v})
}

// bin emits a binary instruction. The type rule is checked before
// anything is appended: a rejected operation leaves the store as it
// was.
func (s *Session) bin(op ir.Op, l, r ir.Value) ir.Value {
	b := s.use()
	b.defining()

	s.value(l)
	s.value(r)

	lt, rt := b.instrs[l].Type, b.instrs[r].Type

	typ, ok := ir.ResultType(op, lt, rt)
	if !ok {
		fail(ErrTypeMismatch, "%v: operands %v and %v", op, lt, rt)
	}

	return b.push(ir.Instr{Op: op, Type: typ, Args: []ir.Value{l, r}})
}

func (s *Session) EmitAdd(l, r ir.Value) ir.Value { return s.bin(ir.Add, l, r) }
func (s *Session) EmitSub(l, r ir.Value) ir.Value { return s.bin(ir.Sub, l, r) }
func (s *Session) EmitMul(l, r ir.Value) ir.Value { return s.bin(ir.Mul, l, r) }
func (s *Session) EmitAnd(l, r ir.Value) ir.Value { return s.bin(ir.And, l, r) }
func (s *Session) EmitOr(l, r ir.Value) ir.Value  { return s.bin(ir.Or, l, r) }
func (s *Session) EmitXor(l, r ir.Value) ir.Value { return s.bin(ir.Xor, l, r) }

func (s *Session) EmitEq(l, r ir.Value) ir.Value { return s.bin(ir.Eq, l, r) }
func (s *Session) EmitNe(l, r ir.Value) ir.Value { return s.bin(ir.Ne, l, r) }
func (s *Session) EmitLt(l, r ir.Value) ir.Value { return s.bin(ir.Lt, l, r) }
func (s *Session) EmitLe(l, r ir.Value) ir.Value { return s.bin(ir.Le, l, r) }
func (s *Session) EmitGt(l, r ir.Value) ir.Value { return s.bin(ir.Gt, l, r) }
func (s *Session) EmitGe(l, r ir.Value) ir.Value { return s.bin(ir.Ge, l, r) }

// EmitPhi consumes the next phi slot of the current block and returns
// its value, tagged with the requested type. A phi takes no direct
// operands: its inputs come from the edge arguments of each
// predecessor.
func (s *Session) EmitPhi(t ir.Type) ir.Value {
	b := s.use()
	b.defining()

	if !t.Valid() {
		fail(ErrTypeMismatch, "phi type %v", t)
	}

	blk := &b.blocks[b.cur]
	st := &b.state[b.cur]

	if st.phis == blk.NumPhis {
		fail(ErrArity, "block %v declares %v phis", b.cur, blk.NumPhis)
	}

	st.phis++

	return b.push(ir.Instr{Op: ir.Phi, Type: t})
}

// target validates an edge before it is recorded: the target must be
// visible from this scope, must not be finished unless it is an open
// loop head, and the argument count must match its declared phi count.
func (s *Session) target(e ir.Edge) {
	b := s.b

	if e.To < 0 || int(e.To) >= len(b.blocks) {
		fail(ErrScope, "target block %v does not exist", e.To)
	}

	if !s.visible(b.state[e.To].scope) {
		fail(ErrScope, "target block %v was declared in an unrelated scope", e.To)
	}

	blk := &b.blocks[e.To]
	st := &b.state[e.To]

	if st.phase != declared {
		if blk.Kind != ir.Loop {
			fail(ErrInvalidTarget, "back edge to non-loop block %v", e.To)
		}

		if st.loopDone {
			fail(ErrInvalidTarget, "back edge to closed loop head %v", e.To)
		}
	}

	if len(e.Args) != blk.NumPhis {
		fail(ErrArity, "edge to %v carries %v arguments, block declares %v phis", e.To, len(e.Args), blk.NumPhis)
	}

	for _, a := range e.Args {
		s.value(a)
	}
}

// end emits an end instruction: it finishes the current block and
// records its outgoing edges.
func (s *Session) end(op ir.Op, args []ir.Value, targets ...ir.Edge) {
	b := s.b

	for _, e := range targets {
		s.target(e)
	}

	blk := &b.blocks[b.cur]
	st := &b.state[b.cur]

	if st.phis != blk.NumPhis {
		fail(ErrArity, "block %v: %v of %v phis emitted", b.cur, st.phis, blk.NumPhis)
	}

	b.push(ir.Instr{Op: op, Args: args, Targets: targets})

	for _, e := range targets {
		b.blocks[e.To].InEdges++
	}

	st.phase = finished

	if b.tr.If("blocks") {
		b.tr.Printw("finish block", "block", b.cur, "op", op, "targets", targets)
	}
}

// Jump finishes the current block with an unconditional edge.
func (s *Session) Jump(to ir.BlockID, args []ir.Value) {
	b := s.use()
	b.defining()

	s.end(ir.Jump, nil, ir.Edge{To: to, Args: args})
}

// Branch finishes the current block with a two-way conditional edge.
func (s *Session) Branch(cond ir.Value, ifTrue ir.BlockID, trueArgs []ir.Value, ifFalse ir.BlockID, falseArgs []ir.Value) {
	b := s.use()
	b.defining()

	s.value(cond)

	if t := b.instrs[cond].Type; t != ir.Bool {
		fail(ErrTypeMismatch, "branch condition is %v, want %v", t, ir.Bool)
	}

	s.end(ir.Branch, []ir.Value{cond},
		ir.Edge{To: ifTrue, Args: trueArgs},
		ir.Edge{To: ifFalse, Args: falseArgs})
}

// Ret finishes the current block returning v. No edges.
func (s *Session) Ret(v ir.Value) {
	b := s.use()
	b.defining()

	s.value(v)

	s.end(ir.Ret, []ir.Value{v})
}
