package refgraph

import "reflect"

// refHandle identifies one record instance. Go never moves heap objects,
// and the table keeps every registered instance reachable, so the address
// is stable for the life of the table. The key is the record type, not the
// static pointer type, so a named pointer type (type P *T) finds the same
// entry as *T. Distinct zero-sized records of one type may share an
// address; they then collapse into a single entry and encode as
// back-references to the first.
type refHandle struct {
	typ  reflect.Type
	addr uintptr
}

// refTable is the ordered registry of record instances visited during
// one top-level Encode or Decode call. It is created per call and passed
// down the recursion.
type refTable struct {
	entries []reflect.Value // Position → *struct
	index   map[refHandle]int
}

func newRefTable() *refTable {
	return &refTable{index: make(map[refHandle]int)}
}

func handleOf(ptr reflect.Value) refHandle {
	return refHandle{typ: ptr.Type().Elem(), addr: ptr.Pointer()}
}

// register appends ptr and returns its position. Registering an instance
// twice returns the original position.
func (t *refTable) register(ptr reflect.Value) int {
	h := handleOf(ptr)
	if pos, ok := t.index[h]; ok {
		return pos
	}
	pos := len(t.entries)
	t.entries = append(t.entries, ptr)
	t.index[h] = pos
	return pos
}

// lookup returns the position of ptr if it was registered.
func (t *refTable) lookup(ptr reflect.Value) (int, bool) {
	pos, ok := t.index[handleOf(ptr)]
	return pos, ok
}

// at returns the instance registered at pos.
func (t *refTable) at(pos int) (reflect.Value, bool) {
	if pos < 0 || pos >= len(t.entries) {
		return reflect.Value{}, false
	}
	return t.entries[pos], true
}

func (t *refTable) len() int {
	return len(t.entries)
}
