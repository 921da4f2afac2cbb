package playout

import (
	"container/heap"

	"github.com/moqtail/moqt-go/object"
)

// entry wraps a buffered object with the time it was pushed, so the
// maximum-latency eviction policy can find the oldest staged object
// without an O(n) walk keyed on anything but this field.
type entry struct {
	obj          object.MoqtObject
	enqueuedAtMs int64
}

// objectHeap is a container/heap.Interface min-heap of buffered objects,
// ordered by Location.Compare. This is the one place this module reaches
// for the standard library rather than a pack dependency — no example
// repo in the corpus imports a priority-queue library, so container/heap
// is used directly rather than hand-rolling one (see DESIGN.md).
type objectHeap []entry

func (h objectHeap) Len() int { return len(h) }

func (h objectHeap) Less(i, j int) bool {
	return h[i].obj.Location.Compare(h[j].obj.Location) < 0
}

func (h objectHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *objectHeap) Push(x any) {
	*h = append(*h, x.(entry))
}

func (h *objectHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

var _ heap.Interface = (*objectHeap)(nil)
