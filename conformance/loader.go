package conformance

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TestDataDir is where scenario suites live, Go's conventional testdata
// directory name. This module ships its own fixtures directly underneath
// it, so no multi-candidate path search is needed.
const TestDataDir = "testdata"

// LoadedTest pairs one TestCase with the suite and file it came from.
type LoadedTest struct {
	File  string
	Suite TestSuite
	Test  TestCase
}

// LoadAllTests walks TestDataDir and loads every *.yaml suite in it.
func LoadAllTests() ([]LoadedTest, error) {
	abs, err := filepath.Abs(TestDataDir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("conformance: no testdata directory at %s: %w", abs, err)
	}

	var loaded []LoadedTest
	err = filepath.Walk(abs, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".yaml" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		var suite TestSuite
		if err := yaml.Unmarshal(data, &suite); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}

		rel, _ := filepath.Rel(abs, path)
		for _, tc := range suite.Tests {
			loaded = append(loaded, LoadedTest{File: rel, Suite: suite, Test: tc})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loaded, nil
}
