// Package trap is the signal bridge. It translates hardware-trap-equivalent
// failures into the
// same throw path user code uses, so a catch(RuntimeException) clause
// catches a nil dereference exactly as it would catch an explicit throw.
//
// Grounded on Except.c's ExceptThrowSignal/ExceptInstallHandlers/
// ExceptRestoreHandlers (the SIGABRT/SIGFPE/SIGILL/SIGSEGV/SIGBUS handler
// table), translated to Go's two distinct fault sources:
//
//   - synchronous in-goroutine faults: nil dereference, index/slice out of
//     range, integer divide by zero. Go delivers these as an ordinary
//     panic in the faulting goroutine itself, so engine.protect's own
//     recover already sees them — Classify just needs to tell such a
//     panic value apart from a user *Exception and name its class.
//   - asynchronous OS signals (SIGABRT, SIGBUS): these arrive on their own
//     delivery path, not as a Go panic, so they are bridged explicitly via
//     os/signal onto a dedicated goroutine.
package trap

import (
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/go-except/except/classreg"
	"github.com/go-except/except/flowctx"
)

// Mode selects how signal handler installation is shared across flows,
// mirroring the original's process-wide vs per-thread handler tables.
type Mode int

const (
	// Shared installs OS handlers once, refcounted by the number of flows
	// currently inside a Try (the original's default, non-multithreaded
	// build).
	Shared Mode = iota
	// PerFlow installs and tears down handlers independently per flow.
	// Only meaningful for the async SIGABRT/SIGBUS bridge, since Go's
	// synchronous-fault classification needs no installation at all.
	PerFlow
)

var (
	mode = Shared

	refcount int
	notifyCh chan os.Signal
	stopCh   chan struct{}
)

// SetMode chooses Shared or PerFlow async-signal handling. Intended to be
// called once during process setup, before any flow enters a Try.
func SetMode(m Mode) { mode = m }

// Install arms the trap bridge for flow. In Shared mode (the default,
// matching the original's non-multithreaded build) installation is
// reference-counted the way ExceptInstallHandlers/ExceptRestoreHandlers
// do: the first flow to enter its outermost try actually installs the
// os/signal bridge, later concurrent flows just bump the count. In
// PerFlow mode each flow's outermost try installs and tears down its own
// bridge independently — since Go delivers OS signals process-wide, not
// to a particular goroutine, PerFlow only changes the refcounting
// discipline, not what the async bridge can actually target (documented
// in DESIGN.md as an inherent platform limitation, not a bug).
func Install(flow flowctx.FlowID) func() {
	flowctx.Lock(flow)
	defer flowctx.Unlock(flow)

	refcount++
	if refcount == 1 || mode == PerFlow {
		installAsync()
	}
	return func() { Release(flow) }
}

// Release tears down the bridge once the last flow has left its
// outermost Try, exactly mirroring ExceptRestoreHandlers's "restored"
// return value, which finallyResolve uses to decide whether an uncaught
// RuntimeException should be re-raised to its default (process-ending)
// disposition or merely logged as lost.
func Release(flow flowctx.FlowID) bool {
	flowctx.Lock(flow)
	defer flowctx.Unlock(flow)

	if refcount == 0 {
		return false
	}
	refcount--
	if refcount == 0 || mode == PerFlow {
		removeAsync()
		return true
	}
	return false
}

func installAsync() {
	notifyCh = make(chan os.Signal, 4)
	stopCh = make(chan struct{})
	signal.Notify(notifyCh, syscall.SIGABRT, syscall.SIGBUS)
	debug.SetPanicOnFault(true)
	go bridgeLoop(notifyCh, stopCh)
}

func removeAsync() {
	signal.Stop(notifyCh)
	close(stopCh)
}

// bridgeLoop handles an async signal without delivering it to any flow.
// Go provides no way to inject a panic into an arbitrary other goroutine's
// stack, so — unlike the synchronous path, which is fully faithful — this
// is a best-effort approximation: it can only terminate the process
// through the normal default-disposition path below, reporting which
// exception class the signal maps to before doing so. Signal-delivered
// traps are inherently fragile to translate faithfully across goroutines;
// this is documented rather than papered over.
func bridgeLoop(ch chan os.Signal, stop chan struct{}) {
	for {
		select {
		case sig := <-ch:
			class := classify(sig)
			os.Stderr.WriteString(class.Name() + " (async signal) delivered outside any catchable frame; terminating.\n")
			signal.Stop(ch)
			// Re-deliver with the default disposition so the process
			// exits/core-dumps the way an unhandled hardware trap would.
			_ = syscall.Kill(os.Getpid(), sig.(syscall.Signal))
			return
		case <-stop:
			return
		}
	}
}

func classify(sig os.Signal) *classreg.Class {
	var class *classreg.Class
	switch sig {
	case syscall.SIGABRT:
		class = classreg.AbnormalTermination
	case syscall.SIGBUS:
		class = classreg.BusError
	default:
		class = classreg.RuntimeException
	}
	if s, ok := sig.(syscall.Signal); ok {
		class.SetSignal(int(s))
	}
	return class
}

// Classify inspects a recovered panic value that was not one of the
// engine's own control-flow sentinels, and reports whether it corresponds
// to a hardware-trap-equivalent Go runtime fault. The synchronous
// counterpart of classify(os.Signal) above.
func Classify(r any) (*classreg.Class, any, bool) {
	if err, ok := r.(runtime.Error); ok {
		msg := err.Error()
		var class *classreg.Class
		switch {
		case strings.Contains(msg, "invalid memory address") || strings.Contains(msg, "nil pointer dereference"):
			class = classreg.SegmentationFault
			class.SetSignal(int(syscall.SIGSEGV))
		case strings.Contains(msg, "index out of range") || strings.Contains(msg, "slice bounds out of range"):
			class = classreg.SegmentationFault
			class.SetSignal(int(syscall.SIGSEGV))
		case strings.Contains(msg, "integer divide by zero"):
			class = classreg.ArithmeticException
			class.SetSignal(int(syscall.SIGFPE))
		default:
			class = classreg.RuntimeException
		}
		return class, msg, true
	}
	return nil, nil, false
}

// Reraise gives class its default disposition: the same "no handler
// installed" outcome the original gives an uncaught hardware trap once
// ExceptRestoreHandlers has actually torn down the last handler — the
// process terminates, reporting the class and any captured data first.
// Called only from engine.finallyResolve once the trap bridge has already
// been released for the flow, so there is by construction no remaining
// catch frame to deliver to.
func Reraise(class *classreg.Class, data any) {
	os.Stderr.WriteString(class.Name() + " unhandled at top level: " + stringify(data) + "\n")
	if n := class.Signal(); n != 0 {
		_ = syscall.Kill(os.Getpid(), syscall.Signal(n))
		return
	}
	os.Exit(2)
}

func stringify(data any) string {
	if data == nil {
		return ""
	}
	if s, ok := data.(string); ok {
		return s
	}
	if s, ok := data.(interface{ Error() string }); ok {
		return s.Error()
	}
	return "<data>"
}
