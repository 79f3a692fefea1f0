package numeric

// RangeArray1 is a dense array keyed by an inclusive-minimum,
// exclusive-maximum integer interval [Min, Max). Many coordinates that
// arise per read during inference (V 3′-end, D start, J 5′-start, ...) are
// sparse integers drawn from a small range known only once the read is
// fixed; storing them densely over just that range keeps per-read memory
// bounded.
type RangeArray1 struct {
	Min, Max int64
	buf      []float64
}

// NewRangeArray1 allocates a zeroed array over [min, max).
func NewRangeArray1(min, max int64) *RangeArray1 {
	n := max - min
	if n < 0 {
		n = 0
	}
	return &RangeArray1{Min: min, Max: max, buf: make([]float64, n)}
}

// Dim returns the (min, max) bounds.
func (r *RangeArray1) Dim() (int64, int64) { return r.Min, r.Max }

// Get returns the value at index i. i must lie in [Min, Max); the access is
// unchecked, matching the contract in spec §3.
func (r *RangeArray1) Get(i int64) float64 {
	return r.buf[i-r.Min]
}

// Set overwrites the value at index i.
func (r *RangeArray1) Set(i int64, v float64) {
	r.buf[i-r.Min] = v
}

// AddTo accumulates x into the value at index i. This is the dirty-update
// entry point used throughout package feature and package vdj.
func (r *RangeArray1) AddTo(i int64, x float64) {
	r.buf[i-r.Min] += x
}

// Values returns the backing buffer directly (no copy); callers must treat
// it as read-only unless they own the RangeArray1.
func (r *RangeArray1) Values() []float64 { return r.buf }

// RangeArray2 is the 2-D analogue of RangeArray1, keyed by a rectangle
// [Min0,Max0) × [Min1,Max1), stored row-major.
type RangeArray2 struct {
	Min0, Max0 int64
	Min1, Max1 int64
	dim1       int64
	buf        []float64
}

// NewRangeArray2 allocates a zeroed array over the given rectangle.
func NewRangeArray2(min0, max0, min1, max1 int64) *RangeArray2 {
	d0 := max0 - min0
	d1 := max1 - min1
	if d0 < 0 {
		d0 = 0
	}
	if d1 < 0 {
		d1 = 0
	}
	return &RangeArray2{
		Min0: min0, Max0: max0,
		Min1: min1, Max1: max1,
		dim1: d1,
		buf:  make([]float64, d0*d1),
	}
}

func (r *RangeArray2) index(i, j int64) int64 {
	return (i-r.Min0)*r.dim1 + (j - r.Min1)
}

// Dim returns ((min0,max0), (min1,max1)).
func (r *RangeArray2) Dim() (int64, int64, int64, int64) {
	return r.Min0, r.Max0, r.Min1, r.Max1
}

// Get returns the value at (i, j), unchecked within the rectangle.
func (r *RangeArray2) Get(i, j int64) float64 {
	return r.buf[r.index(i, j)]
}

// Set overwrites the value at (i, j).
func (r *RangeArray2) Set(i, j int64, v float64) {
	r.buf[r.index(i, j)] = v
}

// AddTo accumulates x into the value at (i, j).
func (r *RangeArray2) AddTo(i, j int64, x float64) {
	r.buf[r.index(i, j)] += x
}

// SortedAndComplete reports whether a sequence of int64s is sorted and
// forms a consecutive run starting at its own first element
// (arr[i] == arr[0]+i for all i). An empty slice is vacuously complete.
//
// This resolves the Open Question in spec §9: the source checks both
// "sorted consecutive starting at arr[0]" and "sorted consecutive starting
// at 0" using the same `arr.len() == 0` guard for both; SPEC_FULL keeps
// them as two distinct, consistently-named checks.
func SortedAndComplete(arr []int64) bool {
	if len(arr) == 0 {
		return true
	}
	b := arr[0]
	for _, a := range arr[1:] {
		if a != b+1 {
			return false
		}
		b = a
	}
	return true
}

// SortedAndComplete0Start reports whether arr is sorted and equals
// 0..len(arr)-1 exactly (arr[i] == i for all i). An empty slice is
// vacuously complete.
func SortedAndComplete0Start(arr []int64) bool {
	if len(arr) == 0 {
		return true
	}
	for i, a := range arr {
		if a != int64(i) {
			return false
		}
	}
	return true
}
