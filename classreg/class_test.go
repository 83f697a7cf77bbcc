package classreg

import "testing"

func TestIsDerivedReflexive(t *testing.T) {
	c := New("Leaf", Exception)
	if !c.IsDerived(c) {
		t.Fatal("a class must be derived from itself")
	}
}

func TestIsDerivedWalksParents(t *testing.T) {
	if !BusError.IsDerived(RuntimeException) {
		t.Fatal("BusError must be derived from RuntimeException")
	}
	if !BusError.IsDerived(Throwable) {
		t.Fatal("BusError must be derived from the root")
	}
	if BusError.IsDerived(ArithmeticException) {
		t.Fatal("unrelated sibling classes must not match")
	}
}

func TestDeclareThenDefine(t *testing.T) {
	c := Declare("Forward")
	if c.IsDerived(Exception) {
		t.Fatal("an undefined forward declaration must not match anything but itself")
	}
	c.Define(Exception)
	if !c.IsDerived(Exception) {
		t.Fatal("after Define, the class must be derived from its parent")
	}
}

func TestSignalRoundTrip(t *testing.T) {
	c := New("Signaled", RuntimeException)
	if c.Signal() != 0 {
		t.Fatal("a class with no delivered signal must report 0")
	}
	c.SetSignal(11)
	if c.Signal() != 11 {
		t.Fatalf("got signal %d, want 11", c.Signal())
	}
}
