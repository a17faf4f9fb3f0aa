// Package buffers packs variably sized chunk meshes into shared linear GPU
// buffers. BufferManager tracks which byte ranges are free or used, and
// ChunkBufferManager places each chunk's vertex and index data through it.
package buffers

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrOutOfSpace is returned when no free region can hold an allocation
	ErrOutOfSpace = errors.New("not enough free space in buffer")
	// ErrInvalidSize is returned for allocations of zero or negative size
	ErrInvalidSize = errors.New("allocation size must be positive")
)

// BufferRegion is the half-open byte range [Offset, Offset+Size)
type BufferRegion struct {
	Offset int
	Size   int
}

// End returns the first byte past the region
func (r BufferRegion) End() int {
	return r.Offset + r.Size
}

// IsEmpty reports whether the region covers no bytes
func (r BufferRegion) IsEmpty() bool {
	return r.Size <= 0
}

// Overlaps reports whether the two regions share at least one byte
func (r BufferRegion) Overlaps(o BufferRegion) bool {
	return r.Offset < o.End() && o.Offset < r.End()
}

func (r BufferRegion) String() string {
	return fmt.Sprintf("[%d,%d)", r.Offset, r.End())
}

// BufferManager is a best-fit free-list allocator over one linear buffer.
// free and used partition the tracked extent without overlapping.
// It never grows or compacts on its own.
type BufferManager struct {
	free []BufferRegion
	used []BufferRegion
}

// NewBufferManager creates a manager whose whole capacity is free
func NewBufferManager(capacity int) *BufferManager {
	m := &BufferManager{}
	if capacity > 0 {
		m.AddFreeRegion(0, capacity)
	}
	return m
}

// Clear forgets every region
func (m *BufferManager) Clear() {
	m.free = nil
	m.used = nil
}

// AddFreeRegion registers a range as free, e.g. after the backing buffer grew
func (m *BufferManager) AddFreeRegion(offset, size int) {
	m.free = append(m.free, BufferRegion{Offset: offset, Size: size})
}

// AddUsedRegion registers a range as used without allocating it
func (m *BufferManager) AddUsedRegion(offset, size int) {
	m.used = append(m.used, BufferRegion{Offset: offset, Size: size})
}

// Allocate reserves size bytes and returns their offset. An exact-size free
// region wins immediately, otherwise the smallest region that fits is split.
// On ErrOutOfSpace nothing is modified.
func (m *BufferManager) Allocate(size int) (int, error) {
	if size <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	best := -1
	for i, region := range m.free {
		if region.Size < size {
			continue
		}
		if region.Size == size {
			best = i
			break
		}
		if best == -1 || region.Size < m.free[best].Size {
			best = i
		}
	}
	if best == -1 {
		return 0, fmt.Errorf("%w: requested %d bytes, %d free in %d regions",
			ErrOutOfSpace, size, m.FreeBytes(), len(m.free))
	}

	region := m.free[best]
	m.free = append(m.free[:best], m.free[best+1:]...)
	if region.Size > size {
		m.free = append(m.free, BufferRegion{Offset: region.Offset + size, Size: region.Size - size})
	}
	m.used = append(m.used, BufferRegion{Offset: region.Offset, Size: size})

	return region.Offset, nil
}

// Release subtracts region from every used region it overlaps, keeping the
// surviving parts before and after it, and returns the released bytes to
// the free list. Bytes of region that were already free stay as they are.
func (m *BufferManager) Release(region BufferRegion) {
	if region.IsEmpty() {
		return
	}

	kept := m.used[:0:0]
	for _, u := range m.used {
		if !u.Overlaps(region) {
			kept = append(kept, u)
			continue
		}
		if u.Offset < region.Offset {
			kept = append(kept, BufferRegion{Offset: u.Offset, Size: region.Offset - u.Offset})
		}
		if region.End() < u.End() {
			kept = append(kept, BufferRegion{Offset: region.End(), Size: u.End() - region.End()})
		}
	}
	m.used = kept

	m.free = append(m.free, subtract(region, m.free)...)
}

// subtract returns the parts of r not covered by any of regions
func subtract(r BufferRegion, regions []BufferRegion) []BufferRegion {
	pieces := []BufferRegion{r}
	for _, cut := range regions {
		next := pieces[:0:0]
		for _, p := range pieces {
			if !p.Overlaps(cut) {
				next = append(next, p)
				continue
			}
			if p.Offset < cut.Offset {
				next = append(next, BufferRegion{Offset: p.Offset, Size: cut.Offset - p.Offset})
			}
			if cut.End() < p.End() {
				next = append(next, BufferRegion{Offset: cut.End(), Size: p.End() - cut.End()})
			}
		}
		pieces = next
	}
	return pieces
}

// Coalesce sorts both lists by offset and merges touching neighbours
func (m *BufferManager) Coalesce() {
	m.free = mergeContiguous(m.free)
	m.used = mergeContiguous(m.used)
}

// CoalesceFree merges touching free regions only
func (m *BufferManager) CoalesceFree() {
	m.free = mergeContiguous(m.free)
}

func mergeContiguous(regions []BufferRegion) []BufferRegion {
	if len(regions) < 2 {
		return regions
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].Offset < regions[j].Offset })

	merged := regions[:1]
	for _, r := range regions[1:] {
		last := &merged[len(merged)-1]
		if last.End() == r.Offset {
			last.Size += r.Size
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// FreeRegions returns a copy of the free list
func (m *BufferManager) FreeRegions() []BufferRegion {
	return append([]BufferRegion(nil), m.free...)
}

// UsedRegions returns a copy of the used list
func (m *BufferManager) UsedRegions() []BufferRegion {
	return append([]BufferRegion(nil), m.used...)
}

// FreeBytes returns the reclaimable capacity
func (m *BufferManager) FreeBytes() int {
	return sum(m.free)
}

// UsedBytes returns the live allocated bytes
func (m *BufferManager) UsedBytes() int {
	return sum(m.used)
}

// Capacity returns the tracked extent
func (m *BufferManager) Capacity() int {
	return m.FreeBytes() + m.UsedBytes()
}

// LargestFree returns the size of the biggest free region
func (m *BufferManager) LargestFree() int {
	largest := 0
	for _, r := range m.free {
		largest = max(largest, r.Size)
	}
	return largest
}

func sum(regions []BufferRegion) int {
	total := 0
	for _, r := range regions {
		total += r.Size
	}
	return total
}
