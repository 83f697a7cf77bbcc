package diag

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-except/except/flowctx"
)

func resetSeen() {
	for k := range seen {
		delete(seen, k)
	}
}

func TestLostReportsFirstOccurrence(t *testing.T) {
	resetSeen()
	var buf bytes.Buffer
	Init(&buf)
	defer Init(nil)

	Lost("UserError", "main.go", 42)

	if !strings.Contains(buf.String(), "UserError lost: file \"main.go\", line 42.") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestLostDedupsRepeatsAtPowerOfTwo(t *testing.T) {
	resetSeen()
	var buf bytes.Buffer
	Init(&buf)
	defer Init(nil)

	for i := 0; i < 3; i++ {
		Lost("BusError", "x.go", 1)
	}

	out := buf.String()
	if strings.Count(out, "BusError lost") != 2 {
		t.Fatalf("expected exactly 2 printed lines (occurrence 1 and 2), got: %q", out)
	}
	if !strings.Contains(out, "repeated 2 times") {
		t.Fatalf("expected the second line to report the repeat count, got: %q", out)
	}
}

func TestPrintTryTraceEmptyContext(t *testing.T) {
	var buf bytes.Buffer
	PrintTryTrace(&buf, &flowctx.Context{})
	if !strings.Contains(buf.String(), "no active try") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestPrintTryTraceListsFrames(t *testing.T) {
	ctx := &flowctx.Context{}
	f := ctx.Push()
	f.TryFile = "main.go"
	f.TryLine = 7
	f.Scope = flowctx.Try

	var buf bytes.Buffer
	PrintTryTrace(&buf, ctx)
	if !strings.Contains(buf.String(), "main.go:7") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
