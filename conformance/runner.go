package conformance

import (
	"fmt"
	"reflect"
)

// Result is what a Scenario reports after running to completion.
type Result struct {
	Caught     string   // exception class name a catch clause matched, "" if none
	Data       string   // fmt.Sprint of the data the matching catch clause received
	FinallyRan bool     // whether the outermost finally block executed
	Lost       string   // exception class name reported lost at the top level, if any
	Trace      []string // markers the scenario appended, in execution order
}

// Scenario is one self-contained exercise of the public engine API. It
// must not call testing.T itself; RunCase checks its Result against the
// YAML-declared Expectation, keeping scenario bodies reusable from both
// *testing.T-driven suites and any other harness.
type Scenario func() Result

// Registry maps a YAML case's `scenario:` name to the Go closure that
// implements it. Populated by scenarios.go's init().
var Registry = map[string]Scenario{}

// Register adds a named scenario. Panics on a duplicate name: that is
// always a programming mistake, never a runtime condition to recover from.
func Register(name string, fn Scenario) {
	if _, exists := Registry[name]; exists {
		panic("conformance: duplicate scenario " + name)
	}
	Registry[name] = fn
}

// RunCase runs the scenario named by tc.Scenario and checks its outcome
// against tc.Expect, returning a descriptive error on the first mismatch.
func RunCase(tc TestCase) error {
	fn, ok := Registry[tc.Scenario]
	if !ok {
		return fmt.Errorf("unknown scenario %q", tc.Scenario)
	}

	var (
		result   Result
		panicked bool
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicked = true
			}
		}()
		result = fn()
	}()

	if panicked != tc.Expect.Panics {
		return fmt.Errorf("panics: got %v, want %v", panicked, tc.Expect.Panics)
	}
	if panicked {
		return nil
	}

	if result.Caught != tc.Expect.Caught {
		return fmt.Errorf("caught: got %q, want %q", result.Caught, tc.Expect.Caught)
	}
	if tc.Expect.Data != "" && result.Data != tc.Expect.Data {
		return fmt.Errorf("data: got %q, want %q", result.Data, tc.Expect.Data)
	}
	if result.FinallyRan != tc.Expect.FinallyRan {
		return fmt.Errorf("finally_ran: got %v, want %v", result.FinallyRan, tc.Expect.FinallyRan)
	}
	if tc.Expect.Lost != "" && result.Lost != tc.Expect.Lost {
		return fmt.Errorf("lost: got %q, want %q", result.Lost, tc.Expect.Lost)
	}
	if len(tc.Expect.Trace) > 0 && !reflect.DeepEqual(result.Trace, tc.Expect.Trace) {
		return fmt.Errorf("trace: got %v, want %v", result.Trace, tc.Expect.Trace)
	}
	return nil
}
