package audit

import (
	"bytes"
	"os"
	"testing"

	"github.com/go-except/except/classreg"
	"github.com/go-except/except/flowctx"
)

func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	orig := os.Stderr
	os.Stderr = w
	defer func() { os.Stderr = orig }()

	fn()

	w.Close()
	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestRecordWarnsOnDuplicate(t *testing.T) {
	chain := &struct{}{}
	out := captureStderr(t, func() {
		Record(chain, classreg.Exception, 10)
		Record(chain, classreg.Exception, 20)
	})
	if !bytes.Contains([]byte(out), []byte("Duplicate catch")) {
		t.Fatalf("expected a duplicate-catch warning, got %q", out)
	}
	delete(registry, chain)
}

func TestRecordWarnsOnShadowedCatch(t *testing.T) {
	chain := &struct{}{}
	out := captureStderr(t, func() {
		Record(chain, classreg.RuntimeException, 10)
		Record(chain, classreg.SegmentationFault, 20)
	})
	if !bytes.Contains([]byte(out), []byte("Superfluous catch")) {
		t.Fatalf("expected a superfluous-catch warning, got %q", out)
	}
	delete(registry, chain)
}

func TestCheckNoCatchWarnsWhenEmpty(t *testing.T) {
	chain := &struct{}{}
	frame := &flowctx.Frame{TryFile: "main.go", TryLine: 5}
	out := captureStderr(t, func() {
		CheckNoCatch(chain, frame)
	})
	if !bytes.Contains([]byte(out), []byte("no catch clause")) {
		t.Fatalf("expected a no-catch-clause warning, got %q", out)
	}
	if !bytes.Contains([]byte(out), []byte("main.go:5")) {
		t.Fatalf("expected the warning to include the try's file and line, got %q", out)
	}
}
