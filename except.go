// Package except is the public fluent API for the exception-handling
// runtime: a thin facade over classreg (class declarations) and engine
// (Try/Catch/Finally/Throw/Return), so a consumer imports one package
// instead of three. The underlying packages remain independently usable
// by the engine's own collaborators (trap, audit, diag, conformance).
package except

import (
	"github.com/go-except/except/classreg"
	"github.com/go-except/except/engine"
)

// Class identifies an exception class in the inheritance tree.
type Class = classreg.Class

// Exception is the value a Catch handler receives.
type Exception = engine.Exception

// Chain is the fluent try/catch/finally builder returned by Try.
type Chain = engine.Chain

// Standard class tree.
var (
	Throwable           = classreg.Throwable
	ExceptionClass      = classreg.Exception
	OutOfMemoryError    = classreg.OutOfMemoryError
	FailedAssertion     = classreg.FailedAssertion
	RuntimeException    = classreg.RuntimeException
	AbnormalTermination = classreg.AbnormalTermination
	ArithmeticException = classreg.ArithmeticException
	IllegalInstruction  = classreg.IllegalInstruction
	SegmentationFault   = classreg.SegmentationFault
	BusError            = classreg.BusError
)

// NewClass declares class as an immediate child of parent.
func NewClass(name string, parent *Class) *Class { return classreg.New(name, parent) }

// DeclareClass forward-declares a class with no parent yet; Define must be
// called on it before any IsDerived walk reaches it meaningfully.
func DeclareClass(name string) *Class { return classreg.Declare(name) }

// Try opens a try statement; chain Catch/Finally and end with Run.
func Try(body func()) *Chain { return engine.Try(body) }

// Throw raises class as a new exception at the call site.
func Throw(class *Class, data any) { engine.Throw(class, data) }

// Rethrow re-raises an exception already caught, preserving its site but
// replacing its data with data.
func Rethrow(e *Exception, data any) { engine.Rethrow(e, data) }

// Return signals a return-through-finally to the nearest Activation.
func Return() { engine.Return() }

// Pending reports whether the calling flow currently has an exception
// in flight.
func Pending() bool { return engine.Pending() }

// Activation marks an activation boundary; defer the returned func at the
// entry of any function that itself calls Try. Required for Return to
// know where to stop unwinding.
func Activation() func() { return engine.Activation() }
