// Copyright © 2026 The Loom Authors under an MIT-style license.

package conformance

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// A LoadedSuite is a suite with the path it was loaded from.
type LoadedSuite struct {
	File  string
	Suite Suite
}

// LoadAll loads every .yaml suite under the given directory,
// sorted by file name so runs are deterministic.
func LoadAll(dir string) ([]LoadedSuite, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no test suites under %s", dir)
	}
	var suites []LoadedSuite
	for _, path := range paths {
		data, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var s Suite
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("%s: %v", path, err)
		}
		if s.Name == "" {
			return nil, fmt.Errorf("%s: suite has no name", path)
		}
		for _, c := range s.Tests {
			if c.Name == "" {
				return nil, fmt.Errorf("%s: test case has no name", path)
			}
			if c.Want == "" && c.Error == "" {
				return nil, fmt.Errorf("%s: %s: neither want nor error", path, c.Name)
			}
		}
		suites = append(suites, LoadedSuite{File: filepath.Base(path), Suite: s})
	}
	return suites, nil
}
