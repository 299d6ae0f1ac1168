package swapbuf

import (
	"fmt"
	"reflect"
)

const cacheLine = 64 // typical size of a cache line

// slot holds one buffered copy of a value. The trailing pad keeps the writer's
// slot and the reader's slot off the same cache line, so the writer hammering
// its copy does not keep invalidating the line the reader is copying out of.
type slot[T any] struct {
	val T
	_   [cacheLine]byte
}

// pair is the storage pair plus the selector bit. sel names the writer's slot;
// the reader's slot is always the other one.
type pair[T any] struct {
	slots [2]slot[T]
}

// write returns the slot the writer targets under the selector sel.
func (p *pair[T]) write(sel uint32) *T { return &p.slots[sel&1].val }

// read returns the slot exposed to readers under the selector sel.
func (p *pair[T]) read(sel uint32) *T { return &p.slots[(sel^1)&1].val }

// seed sets both slots to x.
func (p *pair[T]) seed(x T) {
	p.slots[0].val = x
	p.slots[1].val = x
}

// checkPlain panics if T cannot be exchanged by plain copy. A value holding a
// pointer would let the writer and the reader share memory behind the slots,
// which the double buffer cannot protect.
func checkPlain[T any]() {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if hasPointers(typ) {
		panic(fmt.Sprintf("swapbuf: %v holds pointers and cannot be exchanged by value", typ))
	}
}

func hasPointers(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Array:
		return typ.Len() > 0 && hasPointers(typ.Elem())
	case reflect.Struct:
		for i := 0; i < typ.NumField(); i++ {
			if hasPointers(typ.Field(i).Type) {
				return true
			}
		}
		return false
	case reflect.Ptr, reflect.UnsafePointer, reflect.Map, reflect.Slice,
		reflect.Chan, reflect.Func, reflect.Interface, reflect.String:
		return true
	default:
		return false
	}
}
