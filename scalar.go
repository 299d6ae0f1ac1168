package swapbuf

// Number is the set of numeric scalar kinds.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// Scalar is the set of plain fixed-width kinds: copying one is all it takes to
// exchange it.
type Scalar interface {
	Number | ~bool
}

// NewScalar returns an Initialized Value with both slots set to x.
func NewScalar[T Scalar](x T) *Value[T] {
	v := New[T]()
	v.Seed(x)
	return v
}

// Add commits the latest value plus delta and returns it. Writer context only.
func Add[T Number](v *Value[T], delta T) T {
	x := v.Last() + delta
	v.Store(x)
	return x
}

// Instantiations over the scalar kinds. Each one owns its own lock.
type (
	Int     = Value[int]
	Int8    = Value[int8]
	Int16   = Value[int16]
	Int32   = Value[int32]
	Int64   = Value[int64]
	Uint    = Value[uint]
	Uint8   = Value[uint8]
	Uint16  = Value[uint16]
	Uint32  = Value[uint32]
	Uint64  = Value[uint64]
	Uintptr = Value[uintptr]
	Float32 = Value[float32]
	Float64 = Value[float64]
	Bool    = Value[bool]
)
