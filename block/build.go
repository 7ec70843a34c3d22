// Copyright © 2026 The Loom Authors under an MIT-style license.

package block

import (
	"fmt"

	"github.com/loom-lang/loom/expr"
)

// Compile compiles a generator function body into machine blocks.
//
// The result is a dense list indexed 1..K. Every block ends in a
// terminator, every pause and goto targets a block in 1..K, and no
// yield, break, or next survives. Constructs that contain no
// suspension are left intact as leaf expressions.
func Compile(body expr.Expr) (blocks []*expr.MBlock, err error) {
	defer func() {
		switch p := recover().(type) {
		case nil:
		case *Error:
			err = p
		case bug:
			err = &Error{Msg: "internal consistency error: " + string(p)}
		default:
			panic(p)
		}
	}()
	if body == nil {
		fail(nil, "malformed tree: nil function body")
	}

	b := newBuilder()
	rest := b.seq(flatten(body))
	if b.open || len(rest) > 0 || len(b.blocks) == 0 ||
		len(b.pauses) > 0 || len(b.gotos) > 0 {
		b.begin()
		b.emit(rest)
	}
	for _, blk := range b.blocks {
		terminate(blk)
	}

	bugIf(len(b.pauses) > 0 || len(b.gotos) > 0,
		"%d jumps left unpatched", len(b.pauses)+len(b.gotos))
	bugIf(len(b.loops) > 0, "%d loop frames left on the stack", len(b.loops))
	bugIf(len(b.blocks) != b.n,
		"allocated %d block indices but emitted %d blocks", b.n, len(b.blocks))
	if s := Check(b.blocks); s != "" {
		fail(nil, "internal consistency error: %s", s)
	}
	return b.blocks, nil
}

// seq compiles a statement sequence, splitting off a finished block at
// every suspension point. It returns the trailing expressions not yet
// placed in a block; the caller decides how that tail block ends.
func (b *builder) seq(exprs []expr.Expr) []expr.Expr {
	var past []expr.Expr
	for _, e := range exprs {
		switch e := e.(type) {
		case *expr.Yield:
			if containsSuspend(e.Val) {
				fail(e, "cannot suspend inside the value of a yield")
			}
			b.begin()
			p := &expr.Pause{State: -1, Val: e.Val}
			b.emit(append(past, p))
			b.pushPause(p)
			past = nil
		case *expr.Return:
			if containsSuspend(e.Val) {
				fail(e, "cannot suspend inside the value of a return")
			}
			b.begin()
			b.emit(append(past, e))
			past = nil
		case *expr.Break:
			f := b.topLoop(e, "break")
			b.begin()
			g := &expr.Goto{State: -1}
			f.breaks = append(f.breaks, g)
			b.emit(append(past, g))
			past = nil
		case *expr.Next:
			f := b.topLoop(e, "next")
			b.begin()
			b.emit(append(past, &expr.Goto{State: f.head}))
			past = nil
		case *expr.Pause:
			// Already-lowered forms pass through unchanged.
			b.begin()
			b.emit(append(past, e))
			past = nil
		case *expr.Goto:
			b.begin()
			b.emit(append(past, e))
			past = nil
		case *expr.If:
			if isStubIf(e) {
				// An already-lowered if terminates its block.
				b.begin()
				b.emit(append(past, e))
				past = nil
				break
			}
			if !containsSuspend(e) {
				b.begin()
				past = append(past, e)
				break
			}
			b.ifBlocks(past, e)
			past = nil
		case *expr.Repeat:
			if !containsSuspend(e) {
				b.begin()
				past = append(past, e)
				break
			}
			b.repeatBlocks(past, e)
			past = nil
		case *expr.While:
			if !containsSuspend(e) {
				b.begin()
				past = append(past, e)
				break
			}
			b.whileBlocks(past, e)
			past = nil
		case *expr.For:
			if !containsSuspend(e) {
				b.begin()
				past = append(past, e)
				break
			}
			b.forBlocks(past, e)
			past = nil
		case nil:
			fail(nil, "malformed tree: nil expression in a sequence")
		default:
			// Lit, Sym, Call. Block and MBlock never get here;
			// flatten splices them into the sequence.
			if containsSuspend(e) {
				if isFunctionDef(e) {
					fail(e, "cannot yield from within a nested function")
				}
				fail(e, "yield, break, and next cannot be used inside an expression")
			}
			b.begin()
			past = append(past, e)
		}
	}
	return past
}

// ifBlocks lowers an if containing a suspension. The if itself stays
// in the current block as its terminator; each branch is rewritten to
// a block ending in a goto. Jumps to the join point — the code that
// follows the if — stay pending until the caller allocates it.
func (b *builder) ifBlocks(past []expr.Expr, n *expr.If) {
	if containsSuspend(n.Cond) {
		fail(n, "cannot suspend inside the condition of an if")
	}
	b.begin()
	stub := &expr.If{Cond: n.Cond}
	b.emit(append(past, stub))

	var joinPauses []*expr.Pause
	var joinGotos []*expr.Goto
	branch := func(body expr.Expr, present bool) expr.Expr {
		if !present {
			// No else: jump straight to the join point.
			g := &expr.Goto{State: -1}
			joinGotos = append(joinGotos, g)
			return &expr.MBlock{Exprs: []expr.Expr{g}}
		}
		stmts := flatten(body)
		if len(stmts) == 1 {
			// A lone break or next needs no block of its own.
			switch s := stmts[0].(type) {
			case *expr.Break:
				f := b.topLoop(s, "break")
				g := &expr.Goto{State: -1}
				f.breaks = append(f.breaks, g)
				return &expr.MBlock{Exprs: []expr.Expr{g}}
			case *expr.Next:
				f := b.topLoop(s, "next")
				return &expr.MBlock{Exprs: []expr.Expr{&expr.Goto{State: f.head}}}
			}
		}
		if !containsSuspendAll(stmts) &&
			(len(stmts) == 0 || !isExiting(stmts[len(stmts)-1])) {
			// The branch stays inline, rewritten to end in a jump
			// to the join point.
			g := &expr.Goto{State: -1}
			joinGotos = append(joinGotos, g)
			return &expr.MBlock{Exprs: append(stmts, g)}
		}
		// The branch suspends or already exits: it becomes one or
		// more blocks of its own, and the stub jumps to the first.
		g := &expr.Goto{State: -1}
		b.pushGoto(g)
		b.begin()
		rest := b.seq(stmts)
		ps, gs := b.closeBranch(rest)
		joinPauses = append(joinPauses, ps...)
		joinGotos = append(joinGotos, gs...)
		return &expr.MBlock{Exprs: []expr.Expr{g}}
	}
	stub.Then = branch(n.Then, true)
	stub.Else = branch(n.Else, n.Else != nil)

	// The join block is allocated when the caller begins the code
	// that follows the if; until then its jumps stay pending.
	b.pauses = append(b.pauses, joinPauses...)
	b.gotos = append(b.gotos, joinGotos...)
}

// closeBranch finishes a compiled if branch, returning the dangling
// jumps that must be patched to the if's join point.
func (b *builder) closeBranch(rest []expr.Expr) ([]*expr.Pause, []*expr.Goto) {
	var joins []*expr.Goto
	if b.open {
		g := &expr.Goto{State: -1}
		b.emit(append(rest, g))
		joins = append(joins, g)
	}
	ps, gs := b.takePending()
	return ps, append(joins, gs...)
}

// repeatBlocks lowers a repeat containing a suspension: the preceding
// code transitions into a fresh loop-head block, the body cycles back
// to the head, and breaks jump to the exit block allocated afterward.
func (b *builder) repeatBlocks(past []expr.Expr, n *expr.Repeat) {
	b.begin()
	g := &expr.Goto{State: -1}
	b.emit(append(past, g))
	b.pushGoto(g)

	head := b.begin()
	b.pushLoop(head)
	rest := b.seq(flatten(n.Body))
	b.closeLoopBody(rest, head)
	b.finishLoop()
}

// whileBlocks lowers a while containing a suspension. The head block
// holds the test and is the loop's resume target, so it never shares a
// block with preceding code: the past, if any, transitions into it.
func (b *builder) whileBlocks(past []expr.Expr, n *expr.While) {
	if containsSuspend(n.Cond) {
		fail(n, "cannot suspend inside the condition of a while")
	}
	b.begin()
	if len(past) > 0 {
		g := &expr.Goto{State: -1}
		b.emit(append(past, g))
		b.pushGoto(g)
		b.begin()
	}
	head := b.peek()
	gBody := &expr.Goto{State: -1}
	gExit := &expr.Goto{State: -1}
	b.emit([]expr.Expr{&expr.If{
		Cond: n.Cond,
		Then: &expr.MBlock{Exprs: []expr.Expr{gBody}},
		Else: &expr.MBlock{Exprs: []expr.Expr{gExit}},
	}})
	b.pushGoto(gBody)

	f := b.pushLoop(head)
	f.breaks = append(f.breaks, gExit)
	b.begin()
	rest := b.seq(flatten(n.Body))
	b.closeLoopBody(rest, head)
	b.finishLoop()
}

// forBlocks lowers a for containing a suspension into a while over an
// explicit iterator held in a hidden variable. The pre-loop block
// initializes the iterator; the head block tests exhaustion; the body
// block starts by advancing the loop variable.
func (b *builder) forBlocks(past []expr.Expr, n *expr.For) {
	if containsSuspend(n.Seq) {
		fail(n, "cannot suspend inside the sequence of a for")
	}
	iter := fmt.Sprintf("_for_iter_%d", len(b.loops)+1)

	b.begin()
	init := expr.Assign(iter, call("as_iterator", n.Seq))
	g := &expr.Goto{State: -1}
	b.emit(append(past, init, g))
	b.pushGoto(g)

	head := b.begin()
	gBody := &expr.Goto{State: -1}
	gExit := &expr.Goto{State: -1}
	b.emit([]expr.Expr{&expr.If{
		Cond: call("has_next", &expr.Sym{Name: iter}),
		Then: &expr.MBlock{Exprs: []expr.Expr{gBody}},
		Else: &expr.MBlock{Exprs: []expr.Expr{gExit}},
	}})
	b.pushGoto(gBody)

	f := b.pushLoop(head)
	f.breaks = append(f.breaks, gExit)
	b.begin()
	body := append(
		[]expr.Expr{expr.Assign(n.Var, call("next", &expr.Sym{Name: iter}))},
		flatten(n.Body)...)
	rest := b.seq(body)
	b.closeLoopBody(rest, head)
	b.finishLoop()
}

func call(name string, args ...expr.Expr) *expr.Call {
	return &expr.Call{Head: &expr.Sym{Name: name}, Args: args}
}

// terminate ensures a block ends in a terminator: an unfinished block
// returns its final expression, or returns invisibly when there is no
// value-producing expression to return.
func terminate(blk *expr.MBlock) {
	n := len(blk.Exprs)
	if n == 0 {
		blk.Exprs = []expr.Expr{expr.Invisible()}
		return
	}
	last := blk.Exprs[n-1]
	if isExiting(last) {
		return
	}
	if valueless(last) {
		blk.Exprs = append(blk.Exprs, expr.Invisible())
		return
	}
	blk.Exprs[n-1] = &expr.Return{Val: last}
}

// valueless reports whether an expression returns invisibly when it is
// the last expression of a function body: loops and assignments.
func valueless(e expr.Expr) bool {
	switch e := e.(type) {
	case *expr.Repeat, *expr.While, *expr.For:
		return true
	case *expr.Call:
		h, ok := e.Head.(*expr.Sym)
		return ok && (h.Name == "<-" || h.Name == "=")
	}
	return false
}

// isExiting reports whether an expression already terminates control:
// a return, pause, or goto, an if both of whose branches exit, or a
// sequence whose last expression exits.
func isExiting(e expr.Expr) bool {
	switch e := e.(type) {
	case *expr.Return, *expr.Pause, *expr.Goto:
		return true
	case *expr.If:
		return e.Else != nil && isExiting(e.Then) && isExiting(e.Else)
	case *expr.Block:
		return len(e.Exprs) > 0 && isExiting(e.Exprs[len(e.Exprs)-1])
	case *expr.MBlock:
		return len(e.Exprs) > 0 && isExiting(e.Exprs[len(e.Exprs)-1])
	}
	return false
}

// containsSuspend reports whether a subtree contains a suspension
// point: a yield, break, or next. Constructs free of suspensions are
// never lowered.
func containsSuspend(e expr.Expr) bool {
	switch e := e.(type) {
	case *expr.Yield, *expr.Break, *expr.Next:
		return true
	case *expr.Call:
		return containsSuspend(e.Head) || containsSuspendAll(e.Args)
	case *expr.If:
		return containsSuspend(e.Cond) ||
			containsSuspend(e.Then) ||
			containsSuspend(e.Else)
	case *expr.Block:
		return containsSuspendAll(e.Exprs)
	case *expr.MBlock:
		return containsSuspendAll(e.Exprs)
	case *expr.Repeat:
		return containsSuspend(e.Body)
	case *expr.While:
		return containsSuspend(e.Cond) || containsSuspend(e.Body)
	case *expr.For:
		return containsSuspend(e.Seq) || containsSuspend(e.Body)
	case *expr.Return:
		return containsSuspend(e.Val)
	case *expr.Pause:
		return containsSuspend(e.Val)
	}
	return false
}

func containsSuspendAll(exprs []expr.Expr) bool {
	for _, e := range exprs {
		if containsSuspend(e) {
			return true
		}
	}
	return false
}

// isStubIf reports whether an if is an already-lowered block
// terminator: both branches are machine blocks.
func isStubIf(e *expr.If) bool {
	if _, ok := e.Then.(*expr.MBlock); !ok {
		return false
	}
	_, ok := e.Else.(*expr.MBlock)
	return ok
}

// isFunctionDef reports whether a call defines a nested function.
func isFunctionDef(e expr.Expr) bool {
	c, ok := e.(*expr.Call)
	if !ok {
		return false
	}
	h, ok := c.Head.(*expr.Sym)
	return ok && (h.Name == "function" || h.Name == "\\")
}

// flatten splices braced sequences into the surrounding statement
// list. The compiler assumes a single flat variable frame, so nesting
// carries no scope of its own.
func flatten(e expr.Expr) []expr.Expr {
	switch e := e.(type) {
	case nil:
		return nil
	case *expr.Block:
		return flattenAll(e.Exprs)
	case *expr.MBlock:
		return flattenAll(e.Exprs)
	}
	return []expr.Expr{e}
}

func flattenAll(exprs []expr.Expr) []expr.Expr {
	var out []expr.Expr
	for _, e := range exprs {
		out = append(out, flatten(e)...)
	}
	return out
}
