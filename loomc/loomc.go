// Copyright © 2026 The Loom Authors under an MIT-style license.

// Loomc compiles a generator function body into its block listing.
//
//	loomc [flags] [file]
//
// With no file, the body is read from standard input.
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/eaburns/pretty"
	"github.com/loom-lang/loom/block"
	"github.com/loom-lang/loom/parse"
)

var (
	ast     = flag.Bool("ast", false, "print the parsed tree instead of compiling")
	verbose = flag.Bool("v", false, "enable verbose output")
)

func main() {
	flag.Usage = usage
	flag.Parse()
	if len(flag.Args()) > 1 {
		usage()
		os.Exit(1)
	}

	src, path := readSource()
	vprintf("parsing %s\n", path)
	body, err := parse.Parse(src)
	if err != nil {
		die(path, err)
	}
	if *ast {
		pretty.Indent = "    "
		pretty.Print(body)
		fmt.Println("")
		return
	}
	vprintf("compiling %s\n", path)
	blocks, err := block.Compile(body)
	if err != nil {
		die(path, err)
	}
	fmt.Print(block.Listing(blocks))
}

func readSource() (string, string) {
	if len(flag.Args()) == 0 {
		data, err := ioutil.ReadAll(os.Stdin)
		if err != nil {
			die("<stdin>", err)
		}
		return string(data), "<stdin>"
	}
	path := flag.Args()[0]
	data, err := ioutil.ReadFile(path)
	if err != nil {
		die("", err)
	}
	return string(data), path
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: loomc [flags] [file]\n")
	flag.PrintDefaults()
}

func vprintf(f string, vs ...interface{}) {
	if *verbose {
		fmt.Fprintf(os.Stderr, f, vs...)
	}
}

func die(path string, err error) {
	if path != "" {
		fmt.Fprintf(os.Stderr, "%s: %s\n", path, err)
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}
