// Copyright © 2026 The Loom Authors under an MIT-style license.

package block

/*
Check verifies the invariants of a compiled block list. A non-empty
return indicates a bug in the block package, not in the user input.

The scheme is to defer recoverBug(&b) on the return variable b and use
bugIf for each condition. bugIf panics when the condition holds, so
each call may assume every preceding condition was false. The bugIf
calls execute in the expected, false, case too, so they do not show up
as coverage losses.
*/

import (
	"fmt"

	"github.com/loom-lang/loom/expr"
)

// Check verifies the block-list invariants:
// every block is non-empty and ends in exactly one terminator,
// every pause and goto targets a block index in 1..K,
// and no yield, break, or next survives anywhere in the output.
// It returns "" when all invariants hold.
func Check(blocks []*expr.MBlock) (b string) {
	defer recoverBug(&b)
	k := len(blocks)
	for i, blk := range blocks {
		n := i + 1
		bugIf(blk == nil, "block %d is nil", n)
		bugIf(len(blk.Exprs) == 0, "block %d is empty", n)
		last := blk.Exprs[len(blk.Exprs)-1]
		bugIf(!isExiting(last),
			"block %d does not end in a terminator: %s", n, last)
		for j, e := range blk.Exprs {
			if j < len(blk.Exprs)-1 {
				bugIf(isTerm(e),
					"block %d has a terminator before its end: %s", n, e)
			}
			checkLowered(n, e)
			checkTargets(n, e, k)
		}
	}
	return ""
}

// isTerm reports a direct terminator expression.
func isTerm(e expr.Expr) bool {
	switch e.(type) {
	case *expr.Return, *expr.Pause, *expr.Goto:
		return true
	}
	return false
}

// checkLowered walks a subtree for suspension forms that compilation
// must have eliminated.
func checkLowered(n int, e expr.Expr) {
	switch e := e.(type) {
	case *expr.Yield:
		bugIf(true, "block %d contains an unlowered yield: %s", n, e)
	case *expr.Break:
		bugIf(true, "block %d contains an unlowered break", n)
	case *expr.Next:
		bugIf(true, "block %d contains an unlowered next", n)
	case *expr.Call:
		checkLowered(n, e.Head)
		for _, a := range e.Args {
			checkLowered(n, a)
		}
	case *expr.If:
		checkLowered(n, e.Cond)
		checkLowered(n, e.Then)
		if e.Else != nil {
			checkLowered(n, e.Else)
		}
	case *expr.Block:
		for _, x := range e.Exprs {
			checkLowered(n, x)
		}
	case *expr.MBlock:
		for _, x := range e.Exprs {
			checkLowered(n, x)
		}
	case *expr.Repeat:
		checkLowered(n, e.Body)
	case *expr.While:
		checkLowered(n, e.Cond)
		checkLowered(n, e.Body)
	case *expr.For:
		checkLowered(n, e.Seq)
		checkLowered(n, e.Body)
	case *expr.Return:
		if e.Val != nil {
			checkLowered(n, e.Val)
		}
	case *expr.Pause:
		if e.Val != nil {
			checkLowered(n, e.Val)
		}
	}
}

// checkTargets walks a subtree checking that every pause and goto
// names a block in 1..k.
func checkTargets(n int, e expr.Expr, k int) {
	switch e := e.(type) {
	case *expr.Pause:
		bugIf(e.State < 1 || e.State > k,
			"block %d pause target %d out of range 1..%d", n, e.State, k)
	case *expr.Goto:
		bugIf(e.State < 1 || e.State > k,
			"block %d goto target %d out of range 1..%d", n, e.State, k)
	case *expr.If:
		checkTargets(n, e.Then, k)
		if e.Else != nil {
			checkTargets(n, e.Else, k)
		}
	case *expr.Block:
		for _, x := range e.Exprs {
			checkTargets(n, x, k)
		}
	case *expr.MBlock:
		for _, x := range e.Exprs {
			checkTargets(n, x, k)
		}
	}
}

type bug string

func recoverBug(ret *string) {
	if b, ok := recover().(bug); ok {
		*ret = string(b)
	}
}

func bugIf(c bool, f string, vs ...interface{}) {
	if c {
		panic(bug(fmt.Sprintf(f, vs...)))
	}
}
