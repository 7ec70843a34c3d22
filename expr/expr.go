// Copyright © 2026 The Loom Authors under an MIT-style license.

// Package expr has the expression tree compiled by the block package.
//
// The tree is a closed, tagged sum. The user-facing forms are
// Lit, Sym, Call, If, Block, Repeat, While, For, Break, Next,
// Return, and Yield. The remaining forms — Pause, Goto, and MBlock —
// are only produced by the compiler: a Pause is the lowered form of a
// Yield, a Goto is an unconditional transition to a numbered block,
// and an MBlock is one emitted machine block.
package expr

import "strings"

// An Expr is a node of the expression tree.
// The set of implementations is closed;
// compilers switch over it exhaustively.
type Expr interface {
	String() string
	buildString(*strings.Builder) *strings.Builder
}

// A Lit is an opaque literal value: a number, a string,
// a boolean, or the null value (a nil Val).
type Lit struct {
	Val interface{}
}

// A Sym is a variable reference.
type Sym struct {
	Name string
}

// A Call is a generic application of Head to Args.
// Assignment is a Call with the head symbol "<-".
type Call struct {
	Head Expr
	Args []Expr
}

// An If is a conditional. Else may be nil.
//
// In compiler output an If may appear as a block terminator;
// its branches are then MBlocks ending in a Goto.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
}

// A Block is a braced sequence of expressions.
type Block struct {
	Exprs []Expr
}

// A Repeat is an infinite loop.
type Repeat struct {
	Body Expr
}

// A While is a conditional loop.
type While struct {
	Cond Expr
	Body Expr
}

// A For iterates Var over the elements of Seq.
type For struct {
	Var  string
	Seq  Expr
	Body Expr
}

// A Break exits the innermost loop.
type Break struct{}

// A Next continues the innermost loop.
type Next struct{}

// A Return exits the function.
// The invisible return sentinel — a function falling off its end —
// has a nil Val and Invisible set.
type Return struct {
	Val       Expr
	Invisible bool
}

// A Yield suspends the function, emitting Val.
// Yield only appears in compiler input; compiling lowers it to Pause.
type Yield struct {
	Val Expr
}

// A Pause is an emitted suspension: emit Val and resume at block State.
// State is -1 until the resume block is allocated and the node patched.
type Pause struct {
	State int
	Val   Expr
}

// A Goto is an emitted unconditional transition to block State.
// State is -1 until the target block is allocated and the node patched.
type Goto struct {
	State int
}

// An MBlock is one emitted machine block: a straight-line expression
// sequence whose last expression is a terminator.
type MBlock struct {
	Exprs []Expr
}

// Invisible returns the invisible return sentinel.
func Invisible() *Return {
	return &Return{Invisible: true}
}

// Assign returns the assignment call name <- val.
func Assign(name string, val Expr) *Call {
	return &Call{Head: &Sym{Name: "<-"}, Args: []Expr{&Sym{Name: name}, val}}
}
