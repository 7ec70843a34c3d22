// Copyright © 2026 The Loom Authors under an MIT-style license.

package block

import (
	"fmt"
	"strings"

	"github.com/loom-lang/loom/expr"
)

// Listing returns the textual listing of a compiled block list:
// one stanza per block, the 1-based block index on its own line
// followed by one tab-indented line per expression.
//
//	1:
//		goto 2
//	2:
//		pause 3 1
//	3:
//		"x"
//		goto 2
//
// The listing is deterministic; tests compare against it literally.
func Listing(blocks []*expr.MBlock) string {
	var s strings.Builder
	for i, blk := range blocks {
		fmt.Fprintf(&s, "%d:\n", i+1)
		for _, e := range blk.Exprs {
			s.WriteRune('\t')
			s.WriteString(e.String())
			s.WriteRune('\n')
		}
	}
	return s.String()
}
