// Package classreg implements the exception class registry: a statically
// declared tree of exception classes used for inheritance-based catch
// matching. Classes are immutable once defined and are never destroyed.
package classreg

import "sync"

// Class is an exception class. Pointer identity is the comparison key,
// mirroring the C library's ClassRef pointer comparisons.
type Class struct {
	name   string
	parent *Class

	mu     sync.Mutex
	signal int // populated lazily by the signal bridge on first delivery
}

// Name returns the class's declared name.
func (c *Class) Name() string {
	if c == nil {
		return "<nil>"
	}
	return c.name
}

// Parent returns the class's parent, or nil for the root (Throwable).
func (c *Class) Parent() *Class {
	return c.parent
}

// Signal returns the trap signal number associated with this class, or 0
// if this class was not declared for a hardware trap.
func (c *Class) Signal() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signal
}

// SetSignal stamps the signal number onto the class. Called by the trap
// bridge on first delivery; subsequent calls are redundant no-ops, same as
// the original ExceptThrowSignal() which re-stamps class->signalNumber on
// every delivery.
func (c *Class) SetSignal(n int) {
	c.mu.Lock()
	c.signal = n
	c.mu.Unlock()
}

// New declares and defines a class in one step.
func New(name string, parent *Class) *Class {
	return &Class{name: name, parent: parent}
}

// Declare forward-declares a class with no parent yet. Define must be
// called before the class participates in IsDerived walks.
func Declare(name string) *Class {
	return &Class{name: name}
}

// Define attaches a parent to a forward-declared class.
func (c *Class) Define(parent *Class) {
	c.parent = parent
}

// IsDerived reports whether c is base, or a descendant of base. Reflexive:
// IsDerived(c, c) is always true. Walks parent pointers until either base
// is reached (true) or the root is exceeded without a match (false).
func (c *Class) IsDerived(base *Class) bool {
	for cur := c; cur != nil; cur = cur.parent {
		if cur == base {
			return true
		}
	}
	return false
}

// Standard tree, rooted at Throwable.
var (
	Throwable = New("Throwable", nil)

	Exception        = New("Exception", Throwable)
	OutOfMemoryError = New("OutOfMemoryError", Exception)
	FailedAssertion  = New("FailedAssertion", Exception)
	RuntimeException = New("RuntimeException", Exception)

	AbnormalTermination = New("AbnormalTermination", RuntimeException) // SIGABRT
	ArithmeticException = New("ArithmeticException", RuntimeException) // SIGFPE
	IllegalInstruction  = New("IllegalInstruction", RuntimeException)  // SIGILL
	SegmentationFault   = New("SegmentationFault", RuntimeException)   // SIGSEGV
	BusError            = New("BusError", RuntimeException)            // SIGBUS
)
