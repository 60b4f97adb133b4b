package buffer_test

import (
	"testing"

	"codeberg.org/mutker/pulsemon/internal/buffer"
	"github.com/stretchr/testify/assert"
)

func TestAppendBelowCapacity(t *testing.T) {
	r := buffer.NewRolling(4)
	r.Append(1)
	r.Append(2)

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 4, r.Cap())
	assert.Equal(t, []int{1, 2}, r.Values())
}

func TestAppendEvictsOldest(t *testing.T) {
	r := buffer.NewRolling(3)
	for i := 1; i <= 7; i++ {
		r.Append(i)
		assert.LessOrEqual(t, r.Len(), 3)
	}

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []int{5, 6, 7}, r.Values())
}

func TestClear(t *testing.T) {
	r := buffer.NewRolling(3)
	r.Append(10)
	r.Append(20)
	r.Append(30)
	r.Append(40)
	r.Clear()

	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Values())

	r.Append(50)
	assert.Equal(t, []int{50}, r.Values())
}

func TestValuesIsCopy(t *testing.T) {
	r := buffer.NewRolling(2)
	r.Append(1)
	v := r.Values()
	v[0] = 99

	assert.Equal(t, []int{1}, r.Values())
}

func TestNonPositiveCapacity(t *testing.T) {
	r := buffer.NewRolling(0)
	r.Append(1)
	r.Append(2)

	assert.Equal(t, 1, r.Cap())
	assert.Equal(t, []int{2}, r.Values())
}
