package flowctx

import (
	"os"
	"sync"
)

// recursiveMutex is a mutex a flow may lock multiple times without
// deadlocking itself, directly grounded on the original Except.c's
// ExceptMutex(): "same flow may lock multiple times". Go's sync.Mutex is
// not reentrant, so this wraps one with owner/count bookkeeping the same
// way ExceptMutex tracks <tid> and <count>.
//
// The recursive property matters because Throw, called from inside the
// trap bridge's signal translation, reaches store-protected operations
// transitively: a plain mutex would self-deadlock exactly as the original
// comment warns.
type recursiveMutex struct {
	meta  sync.Mutex
	cond  *sync.Cond
	held  bool
	owner FlowID
	count int
}

func newRecursiveMutex() *recursiveMutex {
	m := &recursiveMutex{}
	m.cond = sync.NewCond(&m.meta)
	return m
}

// Lock acquires the mutex on behalf of id, or increments the hold count if
// id already owns it.
func (m *recursiveMutex) Lock(id FlowID) {
	m.meta.Lock()
	defer m.meta.Unlock()

	if m.held && m.owner == id {
		m.count++
		return
	}
	for m.held {
		m.cond.Wait()
	}
	m.held = true
	m.owner = id
	m.count = 1
}

// Unlock decrements the hold count, releasing the mutex when it reaches
// zero. Unlocking from a flow that does not hold it is an internal engine
// error: it is reported, not panicked, mirroring the original ExceptMutex's
// stderr diagnostic for the same misuse.
func (m *recursiveMutex) Unlock(id FlowID) {
	m.meta.Lock()
	defer m.meta.Unlock()

	if !m.held || m.owner != id {
		os.Stderr.WriteString("flowctx: mutex released by a flow that does not hold it\n")
		return
	}
	m.count--
	if m.count == 0 {
		m.held = false
		m.cond.Signal()
	}
}
