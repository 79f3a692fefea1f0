package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRangeArray1GetMatchesBufferIndexing(t *testing.T) {
	r := NewRangeArray1(-3, 5)
	for i := r.Min; i < r.Max; i++ {
		r.Set(i, float64(i)*2)
	}
	for i := r.Min; i < r.Max; i++ {
		assert.Equal(t, float64(i)*2, r.Get(i))
	}
}

func TestRangeArray1AddTo(t *testing.T) {
	r := NewRangeArray1(0, 4)
	r.AddTo(2, 1.5)
	r.AddTo(2, 0.5)
	assert.Equal(t, 2.0, r.Get(2))
}

func TestRangeArray2Rectangle(t *testing.T) {
	r := NewRangeArray2(0, 3, 10, 12)
	r.Set(1, 11, 7)
	assert.Equal(t, 7.0, r.Get(1, 11))
	assert.Equal(t, 0.0, r.Get(0, 10))
	r.AddTo(1, 11, 3)
	assert.Equal(t, 10.0, r.Get(1, 11))
}

func TestSortedAndComplete(t *testing.T) {
	assert.True(t, SortedAndComplete(nil))
	assert.True(t, SortedAndComplete([]int64{5, 6, 7}))
	assert.False(t, SortedAndComplete([]int64{5, 7, 8}))
}

func TestSortedAndComplete0Start(t *testing.T) {
	assert.True(t, SortedAndComplete0Start(nil))
	assert.True(t, SortedAndComplete0Start([]int64{0, 1, 2}))
	assert.False(t, SortedAndComplete0Start([]int64{1, 2, 3}))
}
