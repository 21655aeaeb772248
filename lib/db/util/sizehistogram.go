package util

import (
	"math"
	"sort"
	"sync"
)

// sizeBoundaries are the upper bounds of the histogram buckets, from 16B to 4GB.
// A final bucket collects everything larger.
var sizeBoundaries = []int{
	16, 64, 256, 1024, 4096, // Bytes: 16B to 4KB
	16384, 65536, 262144, 1048576, // KB range: 16KB to 1MB
	4194304, 16777216, 67108864, // MB range: 4MB to 64MB
	268435456, 1073741824, 4294967296, // Above 256MB to 4GB
}

// SizeHistogram tracks the distribution of value sizes in exponential buckets.
// Samples can be removed again, so an engine can keep the histogram in line with
// the values it currently stores.
//
// Thread-safe: all methods are safe for concurrent use
type SizeHistogram struct {
	mutex   sync.RWMutex
	buckets []int64
	count   int64
	sum     int64
}

// NewSizeHistogram creates an empty histogram
func NewSizeHistogram() *SizeHistogram {
	return &SizeHistogram{buckets: make([]int64, len(sizeBoundaries)+1)}
}

// bucketOf returns the index of the first bucket whose bound is >= size
func bucketOf(size int) int {
	return sort.SearchInts(sizeBoundaries, size)
}

// Add records a value of the given size
func (h *SizeHistogram) Add(size int) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.buckets[bucketOf(size)]++
	h.count++
	h.sum += int64(size)
}

// Remove forgets a value of the given size that was added before.
// Removing more samples than were added leaves the histogram empty.
func (h *SizeHistogram) Remove(size int) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	i := bucketOf(size)
	if h.buckets[i] == 0 {
		return
	}
	h.buckets[i]--
	h.count--
	h.sum -= int64(size)
}

// Count returns the number of samples
func (h *SizeHistogram) Count() int64 {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.count
}

// Average returns the exact mean size, 0 when empty
func (h *SizeHistogram) Average() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if h.count == 0 {
		return 0
	}
	return int(h.sum / h.count)
}

// Percentile estimates the size at percentile p (0-100). The estimate is the
// middle of the bucket the percentile falls into.
func (h *SizeHistogram) Percentile(p float64) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if h.count == 0 || p < 0 || p > 100 {
		return 0
	}

	target := int64(math.Ceil(float64(h.count) * p / 100.0))
	if target < 1 {
		target = 1
	}

	var cumulative int64
	for i, n := range h.buckets {
		cumulative += n
		if cumulative < target {
			continue
		}
		switch {
		case i == 0:
			return sizeBoundaries[0] / 2
		case i < len(sizeBoundaries):
			return (sizeBoundaries[i-1] + sizeBoundaries[i]) / 2
		default:
			return sizeBoundaries[len(sizeBoundaries)-1] * 2
		}
	}
	return int(h.sum / h.count)
}

// Reset clears all samples
func (h *SizeHistogram) Reset() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.count = 0
	h.sum = 0
	for i := range h.buckets {
		h.buckets[i] = 0
	}
}

// Summary returns the statistics as a map suitable for DatabaseInfo metadata
func (h *SizeHistogram) Summary() map[string]interface{} {
	return map[string]interface{}{
		"values":   h.Count(),
		"avg_size": h.Average(),
		"p50_size": h.Percentile(50),
		"p99_size": h.Percentile(99),
	}
}
