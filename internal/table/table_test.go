package table

import (
	"testing"

	"nilox/internal/object"
	"nilox/internal/value"
)

func TestSetGetDelete(t *testing.T) {
	tb := New()
	foo := object.NewString("foo")

	if isNew := tb.Set(foo, value.Number(1)); !isNew {
		t.Fatalf("expected Set of a fresh key to report isNew=true")
	}
	got, ok := tb.Get(foo)
	if !ok || got.AsNumber() != 1 {
		t.Fatalf("Get after Set = %v, %v", got, ok)
	}

	if isNew := tb.Set(foo, value.Number(2)); isNew {
		t.Fatalf("expected Set of an existing key to report isNew=false")
	}
	got, _ = tb.Get(foo)
	if got.AsNumber() != 2 {
		t.Fatalf("expected updated value 2, got %v", got.AsNumber())
	}

	if !tb.Delete(foo) {
		t.Fatalf("expected Delete of a present key to return true")
	}
	if _, ok := tb.Get(foo); ok {
		t.Fatalf("expected Get after Delete to report absent")
	}
	if tb.Delete(foo) {
		t.Fatalf("expected second Delete to return false")
	}
}

func TestTombstoneReuseAndProbing(t *testing.T) {
	tb := New()
	a := object.NewString("a")
	b := object.NewString("b")

	tb.Set(a, value.Bool(true))
	tb.Set(b, value.Bool(true))
	tb.Delete(a)

	// b must still be reachable even though a's slot, somewhere on b's
	// probe chain, is now a tombstone.
	if _, ok := tb.Get(b); !ok {
		t.Fatalf("expected b to remain reachable after deleting a")
	}

	// Re-inserting a's content should be possible, landing in the
	// tombstone slot or elsewhere, without disturbing b.
	tb.Set(object.NewString("a"), value.Number(42))
	if _, ok := tb.Get(b); !ok {
		t.Fatalf("expected b to remain reachable after re-inserting a")
	}
}

func TestRehashGrowsAndPreservesEntries(t *testing.T) {
	tb := New()
	keys := make([]*object.StringObj, 0, 40)
	for i := 0; i < 40; i++ {
		k := object.NewString(string(rune('a' + i%26)) + string(rune('A'+i%26)) + string(rune(i)))
		keys = append(keys, k)
		tb.Set(k, value.Number(float64(i)))
	}
	for i, k := range keys {
		got, ok := tb.Get(k)
		if !ok || got.AsNumber() != float64(i) {
			t.Fatalf("entry %d lost or corrupted after growth: %v %v", i, got, ok)
		}
	}
}

func TestFindStringByContent(t *testing.T) {
	tb := New()
	hello := object.NewString("hello")
	tb.Set(hello, value.Bool(true))

	found := tb.FindString("hello", object.FNV1a("hello"))
	if found != hello {
		t.Fatalf("expected FindString to return the interned reference")
	}

	if tb.FindString("nope", object.FNV1a("nope")) != nil {
		t.Fatalf("expected FindString of an absent key to return nil")
	}
}
