package telemetry

import "sync"

// DefaultHistorySize is the default number of samples retained per metric.
const DefaultHistorySize = 120

// History keeps client-side metric history in fixed-size ring buffers for
// sparkline rendering. Thread-safe; the poller writes while the view reads.
type History struct {
	mu     sync.RWMutex
	cpu    *ringBuffer
	memory *ringBuffer
	disk   *ringBuffer
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewHistory creates a history tracker with the specified buffer size.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		cpu:    newRingBuffer(size),
		memory: newRingBuffer(size),
		disk:   newRingBuffer(size),
	}
}

// Push records one sample per metric from a chart point.
func (h *History) Push(p Point) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.cpu.push(p.CPU)
	h.memory.push(p.Memory)
	h.disk.push(p.Disk)
}

// CPU returns the last count CPU readings, oldest first. Returns fewer
// values if not enough history is available.
func (h *History) CPU(count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cpu.getLast(count)
}

// Memory returns the last count memory readings, oldest first.
func (h *History) Memory(count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.memory.getLast(count)
}

// Disk returns the last count disk readings, oldest first.
func (h *History) Disk(count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.disk.getLast(count)
}

// Count returns the number of stored samples.
func (h *History) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cpu.count
}

// Clear drops all stored samples.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	size := h.cpu.size
	h.cpu = newRingBuffer(size)
	h.memory = newRingBuffer(size)
	h.disk = newRingBuffer(size)
}

// newRingBuffer creates a ring buffer with the specified capacity.
func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

// push adds a value to the ring buffer.
func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}

	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)

	// head points to the next write position, so the most recent value
	// is at head-1; take 'count' values ending there.
	start := (r.head - count + r.size) % r.size

	for i := 0; i < count; i++ {
		idx := (start + i) % r.size
		result[i] = r.data[idx]
	}

	return result
}
