package conformance

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-except/except/classreg"
	"github.com/go-except/except/diag"
	"github.com/go-except/except/engine"
)

// userError and userChild are scenario-private classes, standing in for
// the user-declared subclasses a consumer of this package would define.
var (
	userError = classreg.New("UserError", classreg.Exception)
	userChild = classreg.New("UserChildError", userError)
)

func init() {
	Register("basic-catch", scenarioBasicCatch)
	Register("finally-always-runs", scenarioFinallyAlwaysRuns)
	Register("inheritance-match", scenarioInheritanceMatch)
	Register("first-match-wins", scenarioFirstMatchWins)
	Register("rethrow-preserves-site", scenarioRethrowPreservesSite)
	Register("return-through-finally", scenarioReturnThroughFinally)
	Register("native-fault-classified", scenarioNativeFaultClassified)
	Register("uncaught-is-lost", scenarioUncaughtIsLost)
	Register("nested-try-propagates", scenarioNestedTryPropagates)
}

func scenarioBasicCatch() Result {
	var r Result
	engine.Try(func() {
		r.Trace = append(r.Trace, "try")
		engine.Throw(userError, "boom")
	}).Catch(userError, func(e *engine.Exception) {
		r.Trace = append(r.Trace, "catch")
		r.Caught = e.Class.Name()
	}).Run()
	return r
}

func scenarioFinallyAlwaysRuns() Result {
	var r Result
	engine.Try(func() {
		r.Trace = append(r.Trace, "try")
		engine.Throw(userError, nil)
	}).Catch(userError, func(e *engine.Exception) {
		r.Trace = append(r.Trace, "catch")
		r.Caught = e.Class.Name()
	}).Finally(func() {
		r.Trace = append(r.Trace, "finally")
		r.FinallyRan = true
	}).Run()
	return r
}

func scenarioInheritanceMatch() Result {
	var r Result
	engine.Try(func() {
		engine.Throw(userChild, nil)
	}).Catch(classreg.Exception, func(e *engine.Exception) {
		r.Caught = e.Class.Name()
	}).Run()
	return r
}

func scenarioFirstMatchWins() Result {
	var r Result
	engine.Try(func() {
		engine.Throw(userChild, nil)
	}).Catch(userChild, func(e *engine.Exception) {
		r.Trace = append(r.Trace, "specific")
		r.Caught = e.Class.Name()
	}).Catch(classreg.Exception, func(e *engine.Exception) {
		r.Trace = append(r.Trace, "general")
	}).Run()
	return r
}

func scenarioRethrowPreservesSite() Result {
	var r Result
	var original *engine.Exception
	engine.Try(func() {
		engine.Try(func() {
			engine.Throw(userError, "original data")
		}).Catch(userError, func(e *engine.Exception) {
			original = e
			engine.Rethrow(e, "replaced data")
		}).Run()
	}).Catch(userError, func(e *engine.Exception) {
		r.Caught = e.Class.Name()
		r.Data = fmt.Sprint(e.Data)
		if original != nil && e.File == original.File && e.Line == original.Line {
			r.Trace = append(r.Trace, "site-preserved")
		}
	}).Run()
	return r
}

func scenarioReturnThroughFinally() Result {
	var r Result
	func() {
		defer engine.Activation()()
		engine.Try(func() {
			r.Trace = append(r.Trace, "try")
			engine.Return()
			r.Trace = append(r.Trace, "unreachable")
		}).Finally(func() {
			r.Trace = append(r.Trace, "finally")
			r.FinallyRan = true
		}).Run()
		r.Trace = append(r.Trace, "also-unreachable")
	}()
	r.Trace = append(r.Trace, "after-activation")
	return r
}

func scenarioNativeFaultClassified() Result {
	var r Result
	engine.Try(func() {
		var s []int
		_ = s[3] // index out of range: a synthetic SegmentationFault
	}).Catch(classreg.RuntimeException, func(e *engine.Exception) {
		r.Caught = e.Class.Name()
	}).Run()
	return r
}

func scenarioUncaughtIsLost() Result {
	var buf bytes.Buffer
	diag.Init(&buf)
	defer diag.Init(nil)

	var r Result
	engine.Try(func() {
		engine.Throw(userError, nil)
	}).Catch(classreg.OutOfMemoryError, func(e *engine.Exception) {
		r.Caught = e.Class.Name() // never reached; class does not match
	}).Run()

	if strings.Contains(buf.String(), userError.Name()+" lost") {
		r.Lost = userError.Name()
	}
	return r
}

func scenarioNestedTryPropagates() Result {
	var r Result
	engine.Try(func() {
		engine.Try(func() {
			r.Trace = append(r.Trace, "inner-try")
			engine.Throw(userError, nil)
		}).Finally(func() {
			r.Trace = append(r.Trace, "inner-finally")
		}).Run()
	}).Catch(userError, func(e *engine.Exception) {
		r.Trace = append(r.Trace, "outer-catch")
		r.Caught = e.Class.Name()
	}).Run()
	return r
}
