package engine

import (
	"bytes"
	"runtime"
	"strconv"

	"github.com/go-except/except/flowctx"
)

// CurrentFlow returns the identity of the calling goroutine, minted from
// the "goroutine N [...]" header Go's runtime puts at the top of a stack
// dump. Go deliberately has no public goroutine-ID API and no first-class
// thread-local storage; a host providing first-class thread-local slots
// could replace the map-keyed store with direct slot access, but absent
// that, CurrentFlow is the pragmatic stand-in: a pure stdlib, no-unsafe way
// to obtain a stable-for-the-goroutine's-lifetime identity to key the
// context store by.
func CurrentFlow() flowctx.FlowID {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	// Format: "goroutine 123 [running]:\n..."
	const prefix = "goroutine "
	if !bytes.HasPrefix(b, []byte(prefix)) {
		return 0
	}
	b = b[len(prefix):]
	sp := bytes.IndexByte(b, ' ')
	if sp < 0 {
		return 0
	}
	id, err := strconv.ParseInt(string(b[:sp]), 10, 64)
	if err != nil {
		return 0
	}
	return flowctx.FlowID(id)
}
