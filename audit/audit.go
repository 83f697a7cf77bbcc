// Package audit is the debug auditor, grounded on Except.c's
// ExceptCheckBegin/ExceptCheck. The original gates this behind a DEBUG
// preprocessor define, rebuilding the
// library to turn it on or off; Go has no such build-time gate for a
// library consumer, so Enabled is a runtime flag checked once per Catch
// call and once per Run, costing a single bool test when off.
package audit

import (
	"fmt"
	"os"

	"github.com/go-except/except/classreg"
	"github.com/go-except/except/flowctx"
)

// Enabled turns on the three diagnostics below. Default off, matching a
// release build of the original.
var Enabled = false

type seenClause struct {
	class *classreg.Class
	line  int
}

// registry tracks, for the duration of one Run, the catch clauses already
// type-checked against, keyed by the Chain itself — a Go stand-in for the
// original's pC->pEx->checkList, which lived on the per-try exception
// object instead of in a side table.
var registry = map[any][]seenClause{}

// Record performs the duplicate/superfluous (shadowed) checks ExceptCheck
// does, against every catch clause already seen for the same Chain, then
// remembers class for subsequent calls.
func Record(chain any, class *classreg.Class, line int) {
	seen := registry[chain]
	for _, s := range seen {
		if s.class == class {
			fmt.Fprintf(os.Stderr, "Duplicate catch(%s): line %d; already caught at line %d.\n",
				class.Name(), line, s.line)
			return
		}
		if class.IsDerived(s.class) {
			fmt.Fprintf(os.Stderr, "Superfluous catch(%s): line %d; already caught by %s at line %d.\n",
				class.Name(), line, s.class.Name(), s.line)
			return
		}
	}
	registry[chain] = append(seen, seenClause{class: class, line: line})
}

// CheckNoCatch is called once per Run, after the catch clauses have all
// been registered via Record, and reports (and forgets) the per-chain
// bookkeeping — the Go equivalent of ExceptCheckBegin's second pass, which
// warns when a try statement was given no catch clauses at all.
func CheckNoCatch(chain any, frame *flowctx.Frame) {
	if len(registry[chain]) == 0 {
		fmt.Fprintf(os.Stderr, "Warning: no catch clause(s): in 'try' at %s:%d.\n", frame.TryFile, frame.TryLine)
	}
	delete(registry, chain)
}
