package host

import (
	"reflect"
	"unsafe"
)

// Same reports whether two property values are the same for diffing.
//
// Comparable values compare with ==. Functions, maps, channels and pointers
// compare by identity: two closures built from the same literal are
// different handlers. Slices compare by backing array and length. Anything
// else (e.g. structs holding a func) is never considered the same, so it is
// re-applied on every commit.
func Same(a, b any) (same bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}

	switch ta.Kind() {
	case reflect.Func, reflect.Map, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return dataWord(a) == dataWord(b)
	case reflect.Slice:
		va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}

	if !ta.Comparable() {
		return false
	}
	// Structs with interface fields are comparable by type but may still
	// panic at runtime.
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// dataWord returns the data word of an interface value. For pointer-shaped
// types (funcs, maps, chans, pointers) this is the value itself.
func dataWord(v any) unsafe.Pointer {
	type eface struct {
		typ  unsafe.Pointer
		data unsafe.Pointer
	}
	return (*eface)(unsafe.Pointer(&v)).data
}
