package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHistory(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		expected int
	}{
		{"default size", 0, DefaultHistorySize},
		{"negative size", -1, DefaultHistorySize},
		{"custom size", 100, 100},
		{"small size", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistory(tt.size)
			require.NotNil(t, h)
			assert.Equal(t, tt.expected, h.cpu.size)
		})
	}
}

func TestHistoryPush(t *testing.T) {
	h := NewHistory(10)

	for i := 0; i < 5; i++ {
		h.Push(Point{CPU: float64(i * 10), Memory: 50, Disk: 70})
	}

	assert.Equal(t, 5, h.Count())
	assert.Equal(t, []float64{0, 10, 20, 30, 40}, h.CPU(10))
	assert.Equal(t, []float64{50, 50, 50}, h.Memory(3))
	assert.Equal(t, []float64{70}, h.Disk(1))
}

func TestHistoryWraparound(t *testing.T) {
	h := NewHistory(3)

	for i := 0; i < 5; i++ {
		h.Push(Point{CPU: float64(i)})
	}

	// Oldest samples fall off; order stays chronological.
	assert.Equal(t, 3, h.Count())
	assert.Equal(t, []float64{2, 3, 4}, h.CPU(10))
}

func TestHistoryEmpty(t *testing.T) {
	h := NewHistory(10)

	assert.Equal(t, 0, h.Count())
	assert.Nil(t, h.CPU(5))
	assert.Nil(t, h.Memory(5))
	assert.Nil(t, h.Disk(5))
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory(10)
	h.Push(Point{CPU: 42})
	require.Equal(t, 1, h.Count())

	h.Clear()
	assert.Equal(t, 0, h.Count())
	assert.Nil(t, h.CPU(10))
}

func TestRingBufferGetLast(t *testing.T) {
	r := newRingBuffer(4)
	for i := 1; i <= 6; i++ {
		r.push(float64(i))
	}

	assert.Equal(t, []float64{5, 6}, r.getLast(2))
	assert.Equal(t, []float64{3, 4, 5, 6}, r.getLast(10))
	assert.Nil(t, r.getLast(0))
	assert.Nil(t, r.getLast(-1))
}
