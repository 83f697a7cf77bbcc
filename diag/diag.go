// Package diag holds the exception runtime's own diagnostics: the
// lost-exception line (grounded on Except.c's "%s lost:
// file ..." reports) and the multi-line try-trace printer, styled after a
// global-instance-plus-mutex-plus-writer tracer and a one-line-per-frame
// traceback renderer.
package diag

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/crypto/ripemd160"

	"github.com/go-except/except/flowctx"
)

var (
	globalWriter io.Writer = os.Stderr
	mu           sync.Mutex

	// seen dedups repeated identical lost-exception lines. The original's
	// own TODO calls this out by name: "When no try-catch in our thread
	// but elsewhere an exception occurs ... BusError lost is printed
	// continuously." A burst of identical (class, file, line) triples is
	// printed only at its 1st, 2nd, 4th, 8th, ... occurrence, each repeat
	// line carrying the running count, keyed by a ripemd160 digest of the
	// triple.
	seen = map[[ripemd160.Size]byte]*lostCounter{}
)

type lostCounter struct {
	count int
	class string
	file  string
	line  int
}

// Init redirects where diagnostics are written; nil restores stderr.
func Init(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	globalWriter = w
}

// Lost reports an exception that reached the outermost frame of a flow
// with no catch clause matching it — ExceptFinally's "%s lost" report.
// Repeats of the identical (class, file, line) triple are printed again
// only when their count reaches a power of two, with the count appended;
// the other repeats are counted silently.
func Lost(class, file string, line int) {
	mu.Lock()
	defer mu.Unlock()

	key := digest(class, file, line)
	lc, ok := seen[key]
	if !ok {
		lc = &lostCounter{class: class, file: file, line: line}
		seen[key] = lc
	}
	lc.count++

	switch {
	case lc.count == 1:
		fmt.Fprintf(globalWriter, "%s lost: file %q, line %d.\n", class, file, line)
	case lc.count&(lc.count-1) == 0:
		// Repeats are rate-limited to every power-of-two occurrence rather
		// than reprinted for every single one, the fix the original never
		// got around to writing for its own continuously-repeating case.
		fmt.Fprintf(globalWriter, "%s lost: file %q, line %d (repeated %d times).\n", class, file, line, lc.count)
	}
}

func digest(class, file string, line int) [ripemd160.Size]byte {
	h := ripemd160.New()
	fmt.Fprintf(h, "%s|%s|%d", class, file, line)
	var out [ripemd160.Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

// PrintTryTrace writes one line per active frame of ctx, outermost first,
// a traceback-style rendering useful from a signal handler or a top-level
// recover for diagnosing where a flow's nested try statements currently
// stand.
func PrintTryTrace(w io.Writer, ctx *flowctx.Context) {
	frames := ctx.Snapshot()
	if len(frames) == 0 {
		fmt.Fprintln(w, "(no active try statements)")
		return
	}
	for i, f := range frames {
		fmt.Fprintf(w, "#%d try at %s:%d: scope=%s state=%s\n", i, f.TryFile, f.TryLine, f.Scope, f.State)
	}
}
