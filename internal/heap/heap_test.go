package heap

import "testing"

func TestCopyStringInterns(t *testing.T) {
	h := New()
	a := h.CopyString("hello")
	b := h.CopyString("hello")
	if a != b {
		t.Fatalf("expected equal-content strings to share one reference")
	}
	if h.Count() != 1 {
		t.Fatalf("expected exactly one tracked object, got %d", h.Count())
	}
}

func TestTakeStringInternsConcatenationResult(t *testing.T) {
	h := New()
	a := h.CopyString("foobar")
	b := h.TakeString("foo" + "bar")
	if a != b {
		t.Fatalf("expected TakeString to return the existing interned reference")
	}
}

func TestFreeResetsHeap(t *testing.T) {
	h := New()
	h.CopyString("a")
	h.CopyString("b")
	if h.Count() != 2 {
		t.Fatalf("expected 2 tracked objects before Free")
	}
	h.Free()
	if h.Count() != 0 {
		t.Fatalf("expected 0 tracked objects after Free")
	}
	// Post-Free, re-interning must work from a clean interner.
	c := h.CopyString("a")
	if c == nil {
		t.Fatalf("expected CopyString to work after Free")
	}
}
