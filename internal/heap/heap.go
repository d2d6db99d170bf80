// Package heap owns the VM's heap objects: the singly linked object list
// rooted in the VM and the string interner table, matching spec.md's
// "object.go"/"string.go" split (here merged into one package since both
// are the VM's single allocation authority).
package heap

import (
	"nilox/internal/object"
	"nilox/internal/table"
	"nilox/internal/value"
)

// Heap is the VM-owned allocator and interner for heap objects. Objects are
// tracked on an intrusive linked list so they can be freed in bulk at
// shutdown; strings are additionally interned so equal content always
// shares one reference.
type Heap struct {
	objects  object.Obj
	interner *table.Table
	count    int
}

func New() *Heap {
	return &Heap{interner: table.New()}
}

func (h *Heap) track(o object.Obj) {
	o.SetNext(h.objects)
	h.objects = o
	h.count++
}

// CopyString allocates a fresh string from chars, consulting the interner
// first and returning the canonical reference if one already exists.
func (h *Heap) CopyString(chars string) *object.StringObj {
	hash := object.FNV1a(chars)
	if existing := h.interner.FindString(chars, hash); existing != nil {
		return existing
	}
	s := &object.StringObj{Chars: chars, Hash: hash}
	h.interner.Set(s, value.Bool(true))
	h.track(s)
	return s
}

// TakeString adopts an already-built buffer (e.g. the result of a
// concatenation). It consults the interner the same way CopyString does;
// when a duplicate already exists, the freshly built buffer is simply
// discarded (Go's GC reclaims it, unlike clox's explicit free).
func (h *Heap) TakeString(chars string) *object.StringObj {
	hash := object.FNV1a(chars)
	if existing := h.interner.FindString(chars, hash); existing != nil {
		return existing
	}
	s := &object.StringObj{Chars: chars, Hash: hash}
	h.interner.Set(s, value.Bool(true))
	h.track(s)
	return s
}

// Count reports how many objects are currently tracked on the list; used
// by diagnostics and tests to confirm the reachability invariant.
func (h *Heap) Count() int { return h.count }

// Free drops the head of the object list and replaces the interner with an
// empty one, matching the "freed in bulk at shutdown" discipline; the list is
// not walked, and Go's GC does the actual reclamation once nothing else holds
// a reference.
func (h *Heap) Free() {
	h.objects = nil
	h.count = 0
	h.interner = table.New()
}
