package value

import "reflect"

// uintptrHash derives a hash from a heap object's address. Used for types
// that spec.md §4.7 defines as identity-hashed rather than structurally
// hashed (every heap-unique type not covered by a structural rule in
// Hash).
func uintptrHash(h HeapObject) uint64 {
	return uint64(reflect.ValueOf(h).Pointer())
}

// SameIdentity reports whether a and b are backed by the exact same heap
// allocation.
func SameIdentity(a, b Value) bool {
	if a.heap == nil || b.heap == nil {
		return false
	}
	return reflect.ValueOf(a.heap).Pointer() == reflect.ValueOf(b.heap).Pointer()
}
