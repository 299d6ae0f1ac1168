package swapbuf

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/zeebo/assert"
)

func TestHasPointers(t *testing.T) {
	type plain struct {
		a uint8
		b [3]float64
		c struct{ d bool }
	}
	type nested struct {
		a int
		b [2]struct{ c interface{} }
	}

	cases := []struct {
		typ  reflect.Type
		want bool
	}{
		{reflect.TypeOf(int64(0)), false},
		{reflect.TypeOf(uintptr(0)), false},
		{reflect.TypeOf(complex64(0)), false},
		{reflect.TypeOf(plain{}), false},
		{reflect.TypeOf([0]string{}), false},
		{reflect.TypeOf(""), true},
		{reflect.TypeOf(new(int)), true},
		{reflect.TypeOf(unsafe.Pointer(nil)), true},
		{reflect.TypeOf(nested{}), true},
		{reflect.TypeOf([]int{}), true},
		{reflect.TypeOf(make(chan int)), true},
		{reflect.TypeOf(func() {}), true},
	}
	for _, c := range cases {
		assert.Equal(t, hasPointers(c.typ), c.want)
	}
}

func TestSlotsPadded(t *testing.T) {
	var p pair[uint64]
	a := uintptr(unsafe.Pointer(p.write(0)))
	b := uintptr(unsafe.Pointer(p.read(0)))
	assert.That(t, b-a >= cacheLine)
	assert.That(t, p.write(1) == p.read(0))
	assert.That(t, p.read(1) == p.write(0))
}
