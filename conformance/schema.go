// Copyright © 2026 The Loom Authors under an MIT-style license.

// Package conformance runs golden tests for the compiler pipeline:
// YAML suites of surface source with the block listing it must
// compile to, or the error it must fail with.
package conformance

// A Suite is one YAML test file.
type Suite struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Tests       []Case `yaml:"tests"`
}

// A Case is a single test within a suite.
type Case struct {
	Name string `yaml:"name"`
	// Src is the surface source of a generator function body.
	Src string `yaml:"src"`
	// Want is the expected block listing. Leading whitespace on
	// each line is insignificant.
	Want string `yaml:"want,omitempty"`
	// Error, if set, is a substring of the expected compile or
	// parse error; Want is ignored.
	Error string `yaml:"error,omitempty"`
}
