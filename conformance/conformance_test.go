package conformance

import (
	"testing"
)

func TestConformance(t *testing.T) {
	tests, err := LoadAllTests()
	if err != nil {
		t.Fatalf("failed to load tests: %v", err)
	}
	if len(tests) == 0 {
		t.Fatal("no tests loaded")
	}

	fileGroups := make(map[string][]LoadedTest)
	for _, lt := range tests {
		fileGroups[lt.File] = append(fileGroups[lt.File], lt)
	}

	for file, group := range fileGroups {
		t.Run(file, func(t *testing.T) {
			for _, lt := range group {
				tc := lt.Test
				t.Run(tc.Name, func(t *testing.T) {
					if skip, reason := tc.IsSkipped(); skip {
						t.Skip(reason)
					}
					if err := RunCase(tc); err != nil {
						t.Errorf("%s: %v", tc.Description, err)
					}
				})
			}
		})
	}
}
