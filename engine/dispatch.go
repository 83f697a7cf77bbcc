// Package engine implements the frame stack, scope machine, and dispatch
// engine that drives try/catch/finally.
//
// The original's two jmp_buf destinations (throwBuf, finalBuf) do not exist
// here as stored values. Go's panic/recover/defer already provides a
// destination that is armed for the lifetime of the deferring call and
// reachable from arbitrary call depth below it — exactly the contract a
// jump target needs. The correspondence:
//
//	C                                    Go
//	sigsetjmp(pF->throwBuf, ...)         defer/recover wrapping the try body
//	sigsetjmp(pF->finalBuf, ...)         defer/recover wrapping catch/finally
//	siglongjmp(pF->throwBuf, ...)        panic(&Exception{...})
//	siglongjmp(pF->finalBuf, ...)        (reached by the same recover, since
//	                                      Go's call stack already unwound to
//	                                      whichever block was executing)
//	pC->first / JMP_BUF returnBuf        Activation() + panic(returnSentinel{})
//
// A try statement becomes one call to Run, built by chaining Try/Catch/
// Finally. Throw, Rethrow and Return panic a sentinel value that the
// nearest enclosing Run's recover() interprets via handlePanic, exactly
// mirroring ExceptThrow's scope-dependent jump target selection.
package engine

import (
	"runtime"

	"github.com/go-except/except/audit"
	"github.com/go-except/except/classreg"
	"github.com/go-except/except/diag"
	"github.com/go-except/except/flowctx"
	"github.com/go-except/except/trap"
)

// Exception is the value delivered to a Catch handler, and also the panic
// payload Throw/Rethrow use to cross Go call frames up to the nearest
// matching Run. Mirrors exn_class/exn_data/exn_file/exn_line.
type Exception struct {
	Class *classreg.Class
	Data  any
	File  string
	Line  int
}

// Message formats the same line the original's getMessage() produces.
func (e *Exception) Message() string {
	if e == nil || e.Class == nil {
		return "<nil exception>"
	}
	return e.Class.Name() + ": file \"" + e.File + "\", line " + itoa(e.Line) + "."
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// returnSentinel is the panic payload Return() raises. handlePanic records it
// on the frame as returnEventClass; once finallyResolve reaches the frame
// where First is true (or the flow's outermost frame) it raises the sentinel
// again, and from there on it just needs to keep unwinding Go's own call
// stack up to the matching Activation(), which is a plain recover — no
// further dispatch needed.
type returnSentinel struct{}

// returnEventClass is engine-private: nothing outside this package can
// obtain a reference to it, so it can never be named in a Catch clause —
// the return pseudo-event must never be user-catchable.
var returnEventClass = classreg.New("\x00return-event", nil)

// catchClause is one arm of a Chain's catch list.
type catchClause struct {
	class   *classreg.Class
	handler func(*Exception)
	line    int
}

// Chain is the fluent builder for one try statement, returned by Try and
// completed by Run. Mirrors the ExceptTry/ExceptCatch/ExceptFinally macro
// sequence.
type Chain struct {
	body    func()
	catches []catchClause
	fin     func()
	tryFile string
	tryLine int
}

// Try opens a try statement. The body runs immediately inside Run; Catch
// and Finally register handlers to run depending on how body exits.
func Try(body func()) *Chain {
	_, file, line, _ := runtime.Caller(1)
	return &Chain{body: body, tryFile: file, tryLine: line}
}

// Catch registers a handler run when the thrown class IsDerived(class).
// The first registered clause whose class matches wins: first matching
// clause in declaration order.
func (c *Chain) Catch(class *classreg.Class, handler func(*Exception)) *Chain {
	_, _, line, _ := runtime.Caller(1)
	if audit.Enabled {
		audit.Record(c, class, line)
	}
	c.catches = append(c.catches, catchClause{class: class, handler: handler, line: line})
	return c
}

// Finally registers the block that always runs exactly once, regardless of
// how the try/catch exited.
func (c *Chain) Finally(body func()) *Chain {
	c.fin = body
	return c
}

// Run executes the chain: try body, then (if an exception is pending) the
// first matching catch, then finally, then resolves whatever is left
// pending.
func (c *Chain) Run() {
	flow := CurrentFlow()
	ctx := flowctx.GetOrCreate(flow)

	// Only the outermost try of a flow arms the trap bridge, mirroring
	// ExceptInstallHandlers's "pC->exStack == NULL" guard: a nested try
	// reuses whatever the enclosing one already armed.
	if ctx.Count() == 0 {
		trap.Install(flow)
	}

	frame := ctx.Push()
	frame.TryFile = c.tryFile
	frame.TryLine = c.tryLine
	if audit.Enabled {
		frame.AuditList = auditRecords(c)
		audit.CheckNoCatch(c, frame)
	}

	frame.Scope = flowctx.Try
	protect(ctx, frame, c.body)

	if frame.State == flowctx.Pending {
		frame.Scope = flowctx.Catch
		for _, cl := range c.catches {
			class, _ := frame.ExcClass.(*classreg.Class)
			if class == nil || !class.IsDerived(cl.class) {
				continue
			}
			frame.State = flowctx.Caught
			exc := &Exception{Class: class, Data: frame.ExcData, File: frame.ExcFile, Line: frame.ExcLine}
			protect(ctx, frame, func() { cl.handler(exc) })
			break
		}
	}

	frame.Scope = flowctx.Finally
	if c.fin != nil {
		protect(ctx, frame, c.fin)
	}

	finallyResolve(ctx, flow)
}

// protect runs fn, recovering a panic into frame's pending-exception fields
// via handlePanic. A panic not recognized as ours (not an *Exception, a
// returnSentinel, or a classified trap) is re-raised immediately: this
// engine only intercepts its own control-flow signals, never arbitrary
// user panics, so an unrelated bug still surfaces as a normal Go crash
// instead of being silently folded into an unrelated catch clause.
func protect(ctx *flowctx.Context, frame *flowctx.Frame, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			handlePanic(frame, r)
		}
	}()
	fn()
}

func handlePanic(frame *flowctx.Frame, r any) {
	switch v := r.(type) {
	case *Exception:
		frame.ExcClass = v.Class
		frame.ExcData = v.Data
		frame.ExcFile = v.File
		frame.ExcLine = v.Line
		frame.State = flowctx.Pending

	case returnSentinel:
		frame.ExcClass = returnEventClass
		frame.ExcData = nil
		frame.State = flowctx.Pending

	default:
		class, data, ok := trap.Classify(r)
		if !ok {
			panic(r)
		}
		frame.ExcClass = class
		frame.ExcData = data
		frame.ExcFile, frame.ExcLine = "", 0
		frame.State = flowctx.Pending
	}
}

// finallyResolve implements the finally-resolution table: what happens to
// whatever is left pending once a try statement's finally block (if any)
// has run. Mirrors ExceptFinally's outermost/inner-level split.
func finallyResolve(ctx *flowctx.Context, flow flowctx.FlowID) {
	popped := ctx.Pop()
	if popped == nil {
		return
	}
	outermost := ctx.Count() == 0

	var restored bool
	if outermost {
		restored = trap.Release(flow)
	}

	if popped.State != flowctx.Pending {
		if outermost {
			flowctx.Remove(flow)
		}
		return
	}

	class, _ := popped.ExcClass.(*classreg.Class)

	switch {
	case outermost && class == classreg.FailedAssertion:
		flowctx.Remove(flow)
		assertAction(popped)

	case outermost && class != nil && class.IsDerived(classreg.RuntimeException) && restored:
		flowctx.Remove(flow)
		trap.Reraise(class, popped.ExcData)

	case class == returnEventClass && (outermost || popped.First):
		if outermost {
			flowctx.Remove(flow)
		}
		panic(returnSentinel{})

	case outermost:
		flowctx.Remove(flow)
		diag.Lost(class.Name(), popped.ExcFile, popped.ExcLine)

	default:
		panic(&Exception{Class: class, Data: popped.ExcData, File: popped.ExcFile, Line: popped.ExcLine})
	}
}

// assertAction mirrors Assert.c's AssertAction: in handling context (we are
// always "in handling context" here, since this is only reached from
// finallyResolve) the failed assertion is simply an unhandled
// FailedAssertion exception — report it the same way a lost exception is
// reported, via diag, rather than aborting the process. A process built on
// this engine opts into abort()-on-assert explicitly, via its own top-level
// catch of FailedAssertion — a library call should never silently
// terminate a whole process, except for hardware traps that truly have no
// other disposition.
func assertAction(f *flowctx.Frame) {
	diag.Lost(classreg.FailedAssertion.Name(), f.ExcFile, f.ExcLine)
}

func auditRecords(c *Chain) []flowctx.CatchRecord {
	recs := make([]flowctx.CatchRecord, len(c.catches))
	for i, cl := range c.catches {
		recs[i] = flowctx.CatchRecord{Class: cl.class, Line: cl.line}
	}
	return recs
}

// Throw raises class as a new exception at the call site.
func Throw(class *classreg.Class, data any) {
	_, file, line, _ := runtime.Caller(1)
	panic(&Exception{Class: class, Data: data, File: file, Line: line})
}

// Rethrow re-raises an exception already caught, preserving its original
// site information but replacing its data with data — the Go analogue of
// calling throw() with e's own class/file/line and a substituted data2
// argument from inside a catch clause.
func Rethrow(e *Exception, data any) {
	panic(&Exception{Class: e.Class, Data: data, File: e.File, Line: e.Line})
}

// Return signals a return-through-finally: it unwinds to the nearest
// enclosing Activation(), running every intervening Finally exactly once,
// the same guarantee ExceptReturn gives via pC->first.
func Return() {
	panic(returnSentinel{})
}

// Pending reports whether the current flow has any exception in flight —
// the Go analogue of inspecting pC->pF->state from outside a catch clause.
func Pending() bool {
	ctx, ok := flowctx.Get(CurrentFlow())
	if !ok {
		return false
	}
	top := ctx.Top()
	return top != nil && top.State == flowctx.Pending
}

// Activation marks an activation boundary: call at the entry of any
// function that itself calls Try, deferring the returned func. It is what
// lets Frame.First be computed without the original's implicit "pC == NULL
// on entry" trick, and it is also the point Return()'s returnSentinel
// panic is finally recovered and turned into an ordinary Go return.
func Activation() func() {
	flow := CurrentFlow()
	ctx := flowctx.GetOrCreate(flow)
	ctx.BeginActivation()
	return func() {
		defer ctx.EndActivation()
		if r := recover(); r != nil {
			if _, ok := r.(returnSentinel); !ok {
				panic(r)
			}
		}
	}
}
