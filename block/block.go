// Copyright © 2026 The Loom Authors under an MIT-style license.

// Package block compiles a generator function body into basic blocks.
//
// The input is an expression tree (package expr) containing yield
// suspension points and structured control flow: if/else, repeat,
// while, for, break, and next. The output is a dense, ordered list of
// machine blocks numbered 1..K. Every block is a straight-line
// expression sequence ending in exactly one terminator:
//
//	return — function exit, carrying the generator's return value
//	pause  — suspend, emit a value, resume at a named block
//	goto   — unconditional transition to a named block
//	if     — a conditional whose branches are blocks ending in goto
//
// A runtime driver steps the result one block at a time: it evaluates
// a block's expressions in order, follows gotos, surfaces pause values
// to the consumer, and stops at a return. All user variables live in a
// single flat frame shared by every block, so nothing but the current
// block index needs to survive a suspension.
//
// Forward jumps are emitted with the placeholder target -1 and
// back-patched: the builder keeps pending pause and goto lists whose
// entries are all pointed at the next block index the moment it is
// allocated. Break jumps are collected on a per-loop frame instead and
// patched to the loop's exit index when the loop translator finishes.
//
// Structural forms that contain no yield, break, or next are not
// lowered at all: they stay inside a block as ordinary leaf
// expressions for the driver to evaluate directly.
package block

import (
	"fmt"

	"github.com/loom-lang/loom/expr"
)

// An Error describes a problem found while compiling a function body.
type Error struct {
	Msg string
	// Expr is the offending construct, if one can be named.
	Expr expr.Expr
}

func (e *Error) Error() string {
	if e.Expr == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Expr.String()
}

func fail(e expr.Expr, f string, vs ...interface{}) {
	panic(&Error{Msg: fmt.Sprintf(f, vs...), Expr: e})
}

// A loopFrame tracks the innermost surrounding loop:
// where next jumps to, and the break jumps awaiting the exit index.
type loopFrame struct {
	head   int
	breaks []*expr.Goto
}

// A builder is the state of one compilation.
// It is created by Compile and never shared.
type builder struct {
	// n is the highest allocated block index.
	// Index 1 is allocated from the start.
	n int
	// open reports whether the block at index n
	// is still being assembled.
	open   bool
	blocks []*expr.MBlock
	loops  []*loopFrame

	// Pending pauses and gotos hold the placeholder target -1
	// until the block they must enter is allocated.
	pauses []*expr.Pause
	gotos  []*expr.Goto
}

func newBuilder() *builder {
	return &builder{n: 1, open: true}
}

// peek returns the highest allocated block index.
func (b *builder) peek() int { return b.n }

// poke allocates the next block index and returns it.
func (b *builder) poke() int {
	b.n++
	return b.n
}

func (b *builder) pushPause(p *expr.Pause) { b.pauses = append(b.pauses, p) }
func (b *builder) pushGoto(g *expr.Goto)   { b.gotos = append(b.gotos, g) }

// patchPending points every pending pause and goto at idx
// and clears both lists.
func (b *builder) patchPending(idx int) {
	for _, p := range b.pauses {
		p.State = idx
	}
	for _, g := range b.gotos {
		g.State = idx
	}
	b.pauses, b.gotos = nil, nil
}

// takePending removes and returns the pending pauses and gotos.
// The if translator uses this to keep a branch's dangling jumps from
// being captured by its sibling branch's first block.
func (b *builder) takePending() ([]*expr.Pause, []*expr.Goto) {
	ps, gs := b.pauses, b.gotos
	b.pauses, b.gotos = nil, nil
	return ps, gs
}

// begin returns the index of the block being assembled. If the
// previous block was closed it allocates the next index and patches
// every pending pause and goto to it in one pass.
func (b *builder) begin() int {
	if b.open {
		return b.n
	}
	idx := b.poke()
	b.patchPending(idx)
	b.open = true
	return idx
}

// emit closes the current block with the given expressions.
func (b *builder) emit(exprs []expr.Expr) *expr.MBlock {
	bugIf(!b.open, "emit with no block begun")
	bugIf(len(b.blocks)+1 != b.n,
		"emitting block %d at position %d", b.n, len(b.blocks)+1)
	blk := &expr.MBlock{Exprs: exprs}
	b.blocks = append(b.blocks, blk)
	b.open = false
	return blk
}

func (b *builder) pushLoop(head int) *loopFrame {
	f := &loopFrame{head: head}
	b.loops = append(b.loops, f)
	return f
}

// topLoop returns the innermost loop frame.
// A break or next with no surrounding loop is a compile error.
func (b *builder) topLoop(e expr.Expr, word string) *loopFrame {
	if len(b.loops) == 0 {
		fail(e, "%s called outside of a loop", word)
	}
	return b.loops[len(b.loops)-1]
}

// closeLoopBody terminates a compiled loop body so control cycles back
// to the loop head: an unfinished tail block ends in a goto to the
// head, and any jumps left dangling at the body's end resume there.
func (b *builder) closeLoopBody(rest []expr.Expr, head int) {
	if b.open {
		b.emit(append(rest, &expr.Goto{State: head}))
		return
	}
	b.patchPending(head)
}

// finishLoop pops the loop frame, allocates the loop-exit index,
// and patches every break jump to it.
func (b *builder) finishLoop() {
	f := b.loops[len(b.loops)-1]
	b.loops = b.loops[:len(b.loops)-1]
	exit := b.begin()
	for _, g := range f.breaks {
		g.State = exit
	}
}
