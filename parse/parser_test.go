// Copyright © 2026 The Loom Authors under an MIT-style license.

package parse

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/loom-lang/loom/expr"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want *expr.Block
	}{
		{
			name: "empty",
			src:  "",
			want: &expr.Block{},
		},
		{
			name: "statements split on newlines and semicolons",
			src:  "a\nb; c",
			want: &expr.Block{Exprs: []expr.Expr{
				&expr.Sym{Name: "a"},
				&expr.Sym{Name: "b"},
				&expr.Sym{Name: "c"},
			}},
		},
		{
			name: "assignment is right associative",
			src:  "a <- b <- 1",
			want: &expr.Block{Exprs: []expr.Expr{
				&expr.Call{Head: &expr.Sym{Name: "<-"}, Args: []expr.Expr{
					&expr.Sym{Name: "a"},
					&expr.Call{Head: &expr.Sym{Name: "<-"}, Args: []expr.Expr{
						&expr.Sym{Name: "b"},
						&expr.Lit{Val: int64(1)},
					}},
				}},
			}},
		},
		{
			name: "precedence",
			src:  "a + b * c == d",
			want: &expr.Block{Exprs: []expr.Expr{
				&expr.Call{Head: &expr.Sym{Name: "=="}, Args: []expr.Expr{
					&expr.Call{Head: &expr.Sym{Name: "+"}, Args: []expr.Expr{
						&expr.Sym{Name: "a"},
						&expr.Call{Head: &expr.Sym{Name: "*"}, Args: []expr.Expr{
							&expr.Sym{Name: "b"},
							&expr.Sym{Name: "c"},
						}},
					}},
					&expr.Sym{Name: "d"},
				}},
			}},
		},
		{
			name: "yield and return become dedicated forms",
			src:  "yield(1); return(x); yield()",
			want: &expr.Block{Exprs: []expr.Expr{
				&expr.Yield{Val: &expr.Lit{Val: int64(1)}},
				&expr.Return{Val: &expr.Sym{Name: "x"}},
				&expr.Yield{},
			}},
		},
		{
			name: "if else",
			src:  `if (c) yield(1) else "b"`,
			want: &expr.Block{Exprs: []expr.Expr{
				&expr.If{
					Cond: &expr.Sym{Name: "c"},
					Then: &expr.Yield{Val: &expr.Lit{Val: int64(1)}},
					Else: &expr.Lit{Val: "b"},
				},
			}},
		},
		{
			name: "else on the next line",
			src:  "if (c) {\n\"a\"\n}\nelse {\n\"b\"\n}",
			want: &expr.Block{Exprs: []expr.Expr{
				&expr.If{
					Cond: &expr.Sym{Name: "c"},
					Then: &expr.Block{Exprs: []expr.Expr{&expr.Lit{Val: "a"}}},
					Else: &expr.Block{Exprs: []expr.Expr{&expr.Lit{Val: "b"}}},
				},
			}},
		},
		{
			name: "loops",
			src:  "repeat { break }\nwhile (x < 2) next\nfor (i in xs) yield(i)",
			want: &expr.Block{Exprs: []expr.Expr{
				&expr.Repeat{Body: &expr.Block{Exprs: []expr.Expr{&expr.Break{}}}},
				&expr.While{
					Cond: &expr.Call{Head: &expr.Sym{Name: "<"}, Args: []expr.Expr{
						&expr.Sym{Name: "x"},
						&expr.Lit{Val: int64(2)},
					}},
					Body: &expr.Next{},
				},
				&expr.For{
					Var:  "i",
					Seq:  &expr.Sym{Name: "xs"},
					Body: &expr.Yield{Val: &expr.Sym{Name: "i"}},
				},
			}},
		},
		{
			name: "calls nest and chain",
			src:  "f(g(x), 2)(y)",
			want: &expr.Block{Exprs: []expr.Expr{
				&expr.Call{
					Head: &expr.Call{Head: &expr.Sym{Name: "f"}, Args: []expr.Expr{
						&expr.Call{Head: &expr.Sym{Name: "g"}, Args: []expr.Expr{&expr.Sym{Name: "x"}}},
						&expr.Lit{Val: int64(2)},
					}},
					Args: []expr.Expr{&expr.Sym{Name: "y"}},
				},
			}},
		},
		{
			name: "unary",
			src:  "-x + !y",
			want: &expr.Block{Exprs: []expr.Expr{
				&expr.Call{Head: &expr.Sym{Name: "+"}, Args: []expr.Expr{
					&expr.Call{Head: &expr.Sym{Name: "-"}, Args: []expr.Expr{&expr.Sym{Name: "x"}}},
					&expr.Call{Head: &expr.Sym{Name: "!"}, Args: []expr.Expr{&expr.Sym{Name: "y"}}},
				}},
			}},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Parse(test.src)
			if err != nil {
				t.Fatalf("Parse: %s", err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unclosed paren", "f(a", "expected )"},
		{"unclosed brace", "{ a", "expected }"},
		{"missing condition parens", "if c break", "expected ("},
		{"two exprs one line", "a b", "unexpected identifier"},
		{"yield arity", "yield(1, 2)", "yield takes at most one value"},
		{"bad for header", "for (i x) break", "expected in"},
		{"unterminated string", `"abc`, "unterminated string"},
		{"lone equals", "a = 1", "unexpected"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse(test.src)
			if err == nil {
				t.Fatalf("parsed without error, want %q", test.want)
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("got error %q, want it to contain %q", err, test.want)
			}
		})
	}
}

func TestParseErrorLocation(t *testing.T) {
	_, err := Parse("a\nb c")
	if err == nil {
		t.Fatal("parsed without error")
	}
	pe, ok := err.(*Error)
	if !ok {
		t.Fatalf("got %T, want *Error", err)
	}
	if pe.Loc.Line != 2 {
		t.Errorf("error at %s, want line 2", pe.Loc)
	}
}
