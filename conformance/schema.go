// Package conformance is the YAML-driven scenario harness: testable
// properties and scenarios described declaratively and run against
// registered Go scenario bodies. Structured as a TestSuite/TestCase/
// Expectation triple plus a directory-walking loader and yaml.v3, repurposed
// from verb-execution conformance testing to exception-engine scenarios: a
// YAML case names a Scenario registered in this package (see scenarios.go)
// instead of embedding interpretable code, since this engine has no
// embedded language to execute a code string in — the scenario body is
// itself Go, exercising the public API the same way a user program would.
package conformance

// TestSuite represents one YAML test file.
type TestSuite struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Tests       []TestCase `yaml:"tests"`
}

// TestCase names a registered Scenario and the outcome it must produce.
type TestCase struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Skip        interface{} `yaml:"skip,omitempty"`
	Scenario    string      `yaml:"scenario"`
	Expect      Expectation `yaml:"expect"`
}

// Expectation is checked against the Result a Scenario returns. Zero
// values of Data, Lost and Trace mean "not checked"; Caught, FinallyRan
// and Panics are always compared, so their zero values are expectations
// too.
type Expectation struct {
	Caught     string   `yaml:"caught,omitempty"`      // exception class name, "" means none caught
	Data       string   `yaml:"data,omitempty"`        // fmt.Sprint of the data the matching catch clause must receive
	FinallyRan bool     `yaml:"finally_ran,omitempty"` // finally block must have run
	Lost       string   `yaml:"lost,omitempty"`        // class name reported lost/unhandled, if any
	Trace      []string `yaml:"trace,omitempty"`       // ordered markers the scenario must record
	Panics     bool     `yaml:"panics,omitempty"`      // scenario itself must panic uncaught
}

// IsSkipped reports whether this case should be skipped, and why.
func (tc *TestCase) IsSkipped() (bool, string) {
	switch v := tc.Skip.(type) {
	case nil:
		return false, ""
	case bool:
		return v, "skipped"
	case string:
		return v != "", v
	default:
		return false, ""
	}
}
