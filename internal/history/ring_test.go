package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRing(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		expected int
	}{
		{"default size", 0, DefaultSize},
		{"negative size", -1, DefaultSize},
		{"custom size", 100, 100},
		{"single slot", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRing(tt.size)
			require.NotNil(t, r)
			assert.Equal(t, tt.expected, r.Capacity())
			assert.Equal(t, 0, r.Count())
		})
	}
}

func TestRingRecord(t *testing.T) {
	r := NewRing(5)

	_, ok := r.Newest()
	assert.False(t, ok)

	r.Record(1)
	r.Record(2)
	r.Record(3)

	assert.Equal(t, 3, r.Count())
	v, ok := r.Newest()
	require.True(t, ok)
	assert.Equal(t, 3.0, v)
	assert.Equal(t, []float64{1, 2, 3}, r.Ordered())
	assert.Equal(t, []float64{3, 2, 1}, r.Window(10))
}

func TestRingWrapsAfterCapacity(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		extra  int
		newest float64
	}{
		{"exactly full", 4, 0, 4},
		{"one past full", 4, 1, 5},
		{"several laps", 4, 9, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRing(tt.size)
			total := tt.size + tt.extra
			for i := 1; i <= total; i++ {
				r.Record(float64(i))
			}

			assert.Equal(t, tt.size, r.Count())
			assert.Equal(t, (total-1)%tt.size, r.NewestIndex())

			v, _ := r.Newest()
			assert.Equal(t, tt.newest, v)

			ordered := r.Ordered()
			require.Len(t, ordered, tt.size)
			assert.Equal(t, float64(total-tt.size+1), ordered[0])
			assert.Equal(t, tt.newest, ordered[tt.size-1])
		})
	}
}

func TestRingWindow(t *testing.T) {
	r := NewRing(5)
	for i := 1; i <= 7; i++ {
		r.Record(float64(i))
	}

	assert.Equal(t, []float64{7, 6, 5}, r.Window(3))
	assert.Equal(t, []float64{7, 6, 5, 4, 3}, r.Window(5))
	assert.Equal(t, []float64{7, 6, 5, 4, 3}, r.Window(50))
	assert.Nil(t, r.Window(0))
	assert.Nil(t, r.Window(-3))
	assert.Equal(t, []float64{6, 7}, r.Last(2))
}

func TestRingExtremes(t *testing.T) {
	r := NewRing(4)

	_, _, ok := r.Extremes(4)
	assert.False(t, ok)

	for _, v := range []float64{-10, 3, 8, -2, 5} {
		r.Record(v)
	}

	lo, hi, ok := r.Extremes(4)
	require.True(t, ok)
	assert.Equal(t, -2.0, lo)
	assert.Equal(t, 8.0, hi)

	lo, hi, ok = r.Extremes(2)
	require.True(t, ok)
	assert.Equal(t, -2.0, lo)
	assert.Equal(t, 5.0, hi)
}

func TestRingExpire(t *testing.T) {
	r := NewRing(3)
	r.Record(1)
	r.Record(2)

	assert.True(t, r.Expire())
	assert.Equal(t, 1, r.Count())
	assert.Equal(t, []float64{2}, r.Ordered())

	assert.True(t, r.Expire())
	assert.False(t, r.Expire())
	assert.Equal(t, 0, r.Count())
	assert.Nil(t, r.Ordered())
}

func TestRingReset(t *testing.T) {
	r := NewRing(3)
	r.Record(1)
	r.Reset()

	assert.Equal(t, 0, r.Count())
	assert.Equal(t, 3, r.Capacity())

	r.Record(9)
	assert.Equal(t, []float64{9}, r.Ordered())
}
