// Copyright © 2026 The Loom Authors under an MIT-style license.

package conformance

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/loom-lang/loom/block"
	"github.com/loom-lang/loom/parse"
)

func TestConformance(t *testing.T) {
	suites, err := LoadAll("testdata")
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range suites {
		s := s
		t.Run(s.Suite.Name, func(t *testing.T) {
			for _, c := range s.Suite.Tests {
				c := c
				t.Run(c.Name, func(t *testing.T) {
					runCase(t, c)
				})
			}
		})
	}
}

func runCase(t *testing.T, c Case) {
	body, err := parse.Parse(c.Src)
	if err != nil {
		checkError(t, c, err)
		return
	}
	blocks, err := block.Compile(body)
	if err != nil {
		checkError(t, c, err)
		return
	}
	if c.Error != "" {
		t.Fatalf("compiled without error, want %q", c.Error)
	}
	got := normalize(block.Listing(blocks))
	want := normalize(c.Want)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("listing mismatch (-want +got):\n%s", diff)
	}
	if s := block.Check(blocks); s != "" {
		t.Errorf("Check: %s", s)
	}
}

func checkError(t *testing.T, c Case, err error) {
	t.Helper()
	if c.Error == "" {
		t.Fatal(err)
	}
	if !strings.Contains(err.Error(), c.Error) {
		t.Errorf("got error %q, want it to contain %q", err, c.Error)
	}
}

// normalize strips indentation and blank lines so listings can be
// written naturally in YAML block scalars.
func normalize(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
