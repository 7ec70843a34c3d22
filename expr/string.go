// Copyright © 2026 The Loom Authors under an MIT-style license.

package expr

import (
	"fmt"
	"strings"
)

// Binary operators printed infix when they appear as a two-argument
// call head. Values are precedence; higher binds tighter.
var binaryOp = map[string]int{
	"<-": 1,
	"||": 2,
	"&&": 3,
	"==": 4, "!=": 4,
	"<": 5, ">": 5, "<=": 5, ">=": 5,
	"+": 6, "-": 6,
	"*": 7, "/": 7,
}

func (n *Lit) String() string    { return n.buildString(&strings.Builder{}).String() }
func (n *Sym) String() string    { return n.buildString(&strings.Builder{}).String() }
func (n *Call) String() string   { return n.buildString(&strings.Builder{}).String() }
func (n *If) String() string     { return n.buildString(&strings.Builder{}).String() }
func (n *Block) String() string  { return n.buildString(&strings.Builder{}).String() }
func (n *Repeat) String() string { return n.buildString(&strings.Builder{}).String() }
func (n *While) String() string  { return n.buildString(&strings.Builder{}).String() }
func (n *For) String() string    { return n.buildString(&strings.Builder{}).String() }
func (n *Break) String() string  { return n.buildString(&strings.Builder{}).String() }
func (n *Next) String() string   { return n.buildString(&strings.Builder{}).String() }
func (n *Return) String() string { return n.buildString(&strings.Builder{}).String() }
func (n *Yield) String() string  { return n.buildString(&strings.Builder{}).String() }
func (n *Pause) String() string  { return n.buildString(&strings.Builder{}).String() }
func (n *Goto) String() string   { return n.buildString(&strings.Builder{}).String() }
func (n *MBlock) String() string { return n.buildString(&strings.Builder{}).String() }

func (n *Lit) buildString(s *strings.Builder) *strings.Builder {
	switch v := n.Val.(type) {
	case nil:
		s.WriteString("NULL")
	case bool:
		if v {
			s.WriteString("TRUE")
		} else {
			s.WriteString("FALSE")
		}
	case string:
		fmt.Fprintf(s, "%q", v)
	default:
		fmt.Fprintf(s, "%v", v)
	}
	return s
}

func (n *Sym) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString(n.Name)
	return s
}

func (n *Call) buildString(s *strings.Builder) *strings.Builder {
	if h, ok := n.Head.(*Sym); ok {
		if prec, ok := binaryOp[h.Name]; ok && len(n.Args) == 2 {
			// Assignment is right associative,
			// every other operator is left associative.
			lmin, rmin := prec, prec+1
			if h.Name == "<-" {
				lmin, rmin = prec+1, prec
			}
			buildOperand(s, n.Args[0], lmin)
			s.WriteString(" " + h.Name + " ")
			buildOperand(s, n.Args[1], rmin)
			return s
		}
		if (h.Name == "-" || h.Name == "!") && len(n.Args) == 1 {
			s.WriteString(h.Name)
			n.Args[0].buildString(s)
			return s
		}
	}
	n.Head.buildString(s)
	s.WriteRune('(')
	for i, a := range n.Args {
		if i > 0 {
			s.WriteString(", ")
		}
		a.buildString(s)
	}
	s.WriteRune(')')
	return s
}

// buildOperand parenthesizes an infix operand whose operator binds
// more loosely than min.
func buildOperand(s *strings.Builder, e Expr, min int) {
	if c, ok := e.(*Call); ok && len(c.Args) == 2 {
		if h, ok := c.Head.(*Sym); ok {
			if prec, isOp := binaryOp[h.Name]; isOp && prec < min {
				s.WriteRune('(')
				c.buildString(s)
				s.WriteRune(')')
				return
			}
		}
	}
	e.buildString(s)
}

func (n *If) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("if (")
	n.Cond.buildString(s)
	s.WriteString(") ")
	n.Then.buildString(s)
	if n.Else != nil {
		s.WriteString(" else ")
		n.Else.buildString(s)
	}
	return s
}

func buildSeqString(s *strings.Builder, exprs []Expr) *strings.Builder {
	s.WriteRune('{')
	for i, e := range exprs {
		if i > 0 {
			s.WriteRune(';')
		}
		s.WriteRune(' ')
		e.buildString(s)
	}
	if len(exprs) > 0 {
		s.WriteRune(' ')
	}
	s.WriteRune('}')
	return s
}

func (n *Block) buildString(s *strings.Builder) *strings.Builder {
	return buildSeqString(s, n.Exprs)
}

func (n *Repeat) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("repeat ")
	n.Body.buildString(s)
	return s
}

func (n *While) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("while (")
	n.Cond.buildString(s)
	s.WriteString(") ")
	n.Body.buildString(s)
	return s
}

func (n *For) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "for (%s in ", n.Var)
	n.Seq.buildString(s)
	s.WriteString(") ")
	n.Body.buildString(s)
	return s
}

func (n *Break) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("break")
	return s
}

func (n *Next) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("next")
	return s
}

func (n *Return) buildString(s *strings.Builder) *strings.Builder {
	switch {
	case n.Invisible:
		s.WriteString("return invisible")
	case n.Val == nil:
		s.WriteString("return")
	default:
		s.WriteString("return ")
		n.Val.buildString(s)
	}
	return s
}

func (n *Yield) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("yield(")
	if n.Val != nil {
		n.Val.buildString(s)
	}
	s.WriteRune(')')
	return s
}

func (n *Pause) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "pause %d", n.State)
	if n.Val != nil {
		s.WriteRune(' ')
		n.Val.buildString(s)
	}
	return s
}

func (n *Goto) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "goto %d", n.State)
	return s
}

func (n *MBlock) buildString(s *strings.Builder) *strings.Builder {
	return buildSeqString(s, n.Exprs)
}
