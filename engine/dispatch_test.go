package engine

import (
	"testing"

	"github.com/go-except/except/classreg"
	"github.com/go-except/except/flowctx"
)

func resetFlow(t *testing.T) {
	t.Helper()
	flowctx.SetSingleFlow(true)
	flowctx.Remove(CurrentFlow())
}

func TestCatchReceivesThrownClass(t *testing.T) {
	resetFlow(t)
	var caught *classreg.Class
	Try(func() {
		Throw(classreg.RuntimeException, "x")
	}).Catch(classreg.Exception, func(e *Exception) {
		caught = e.Class
	}).Run()

	if caught != classreg.RuntimeException {
		t.Fatalf("got %v, want RuntimeException", caught)
	}
}

func TestFinallyRunsWhenCaught(t *testing.T) {
	resetFlow(t)
	ran := false
	Try(func() {
		Throw(classreg.Exception, nil)
	}).Catch(classreg.Exception, func(e *Exception) {}).
		Finally(func() { ran = true }).
		Run()

	if !ran {
		t.Fatal("finally must run after a caught exception")
	}
}

func TestFinallyRunsWhenNotThrown(t *testing.T) {
	resetFlow(t)
	ran := false
	Try(func() {}).Finally(func() { ran = true }).Run()
	if !ran {
		t.Fatal("finally must run even when nothing was thrown")
	}
}

func TestFirstMatchingClauseWins(t *testing.T) {
	resetFlow(t)
	leaf := classreg.New("Leaf", classreg.Exception)
	var which string
	Try(func() {
		Throw(leaf, nil)
	}).Catch(leaf, func(e *Exception) {
		which = "specific"
	}).Catch(classreg.Exception, func(e *Exception) {
		which = "general"
	}).Run()

	if which != "specific" {
		t.Fatalf("got %q, want %q", which, "specific")
	}
}

func TestNonMatchingCatchIsReportedLost(t *testing.T) {
	resetFlow(t)
	defer func() {
		r := recover()
		if r != nil {
			t.Fatalf("an uncaught exception must be reported lost, not re-panicked: %v", r)
		}
	}()
	Try(func() {
		Throw(classreg.OutOfMemoryError, nil)
	}).Catch(classreg.ArithmeticException, func(e *Exception) {
		t.Fatal("handler must not run for a non-matching class")
	}).Run()
}

func TestRethrowPreservesSite(t *testing.T) {
	resetFlow(t)
	var outer, inner *Exception
	Try(func() {
		Try(func() {
			Throw(classreg.Exception, "payload")
		}).Catch(classreg.Exception, func(e *Exception) {
			inner = e
			Rethrow(e, e.Data)
		}).Run()
	}).Catch(classreg.Exception, func(e *Exception) {
		outer = e
	}).Run()

	if outer == nil || inner == nil {
		t.Fatal("both catch clauses must have run")
	}
	if outer.File != inner.File || outer.Line != inner.Line {
		t.Fatal("rethrow must preserve the original throw site")
	}
}

func TestRethrowReplacesData(t *testing.T) {
	resetFlow(t)
	var outer *Exception
	Try(func() {
		Try(func() {
			Throw(classreg.Exception, "original data")
		}).Catch(classreg.Exception, func(e *Exception) {
			Rethrow(e, "replacement data")
		}).Run()
	}).Catch(classreg.Exception, func(e *Exception) {
		outer = e
	}).Run()

	if outer == nil {
		t.Fatal("outer catch clause must have run")
	}
	if outer.Data != "replacement data" {
		t.Fatalf("got data %v, want %q", outer.Data, "replacement data")
	}
}

func TestReturnUnwindsThroughFinally(t *testing.T) {
	resetFlow(t)
	var order []string
	func() {
		defer Activation()()
		Try(func() {
			order = append(order, "try")
			Return()
			order = append(order, "unreachable")
		}).Finally(func() {
			order = append(order, "finally")
		}).Run()
		order = append(order, "also-unreachable")
	}()

	want := []string{"try", "finally"}
	if len(order) != len(want) || order[0] != want[0] || order[1] != want[1] {
		t.Fatalf("got %v, want %v", order, want)
	}
}

func TestNativeFaultIsClassified(t *testing.T) {
	resetFlow(t)
	var caught *classreg.Class
	Try(func() {
		var s []int
		_ = s[3]
	}).Catch(classreg.RuntimeException, func(e *Exception) {
		caught = e.Class
	}).Run()

	if caught != classreg.SegmentationFault {
		t.Fatalf("got %v, want SegmentationFault", caught)
	}
}

func TestUnrelatedPanicPropagates(t *testing.T) {
	resetFlow(t)
	defer func() {
		if recover() == nil {
			t.Fatal("a panic unrelated to this engine's control-flow values must propagate")
		}
	}()
	Try(func() {
		panic("not an exception")
	}).Catch(classreg.Exception, func(e *Exception) {
		t.Fatal("handler must not swallow an unrelated panic")
	}).Run()
}

func TestPendingReflectsInFlightException(t *testing.T) {
	resetFlow(t)
	var duringCatch bool
	Try(func() {
		Throw(classreg.Exception, nil)
	}).Catch(classreg.Exception, func(e *Exception) {
		duringCatch = Pending()
	}).Run()

	if duringCatch {
		t.Fatal("once a catch clause matches, the frame is no longer Pending")
	}
	if Pending() {
		t.Fatal("after Run returns normally, nothing should be pending")
	}
}
