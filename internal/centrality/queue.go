package centrality

import "container/heap"

// pathItem is a tentative distance to a node
type pathItem struct {
	node int
	dist float64
}

// pathQueue is a binary min-heap of tentative distances. Stale entries are
// skipped by the caller instead of decreasing keys in place.
type pathQueue struct {
	items []pathItem
}

func newPathQueue(capacity int) *pathQueue {
	pq := &pathQueue{items: make([]pathItem, 0, capacity)}
	heap.Init(pq)
	return pq
}

// Len returns the number of queued entries
func (pq *pathQueue) Len() int {
	return len(pq.items)
}

// Less orders by distance, then by node id so ties pop deterministically
func (pq *pathQueue) Less(i, j int) bool {
	if pq.items[i].dist != pq.items[j].dist {
		return pq.items[i].dist < pq.items[j].dist
	}
	return pq.items[i].node < pq.items[j].node
}

// Swap swaps two entries
func (pq *pathQueue) Swap(i, j int) {
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
}

// Push adds an entry (heap.Interface)
func (pq *pathQueue) Push(x interface{}) {
	pq.items = append(pq.items, x.(pathItem))
}

// Pop removes the last entry (heap.Interface)
func (pq *pathQueue) Pop() interface{} {
	old := pq.items
	n := len(old)
	item := old[n-1]
	pq.items = old[:n-1]
	return item
}

func (pq *pathQueue) push(node int, dist float64) {
	heap.Push(pq, pathItem{node: node, dist: dist})
}

func (pq *pathQueue) pop() pathItem {
	return heap.Pop(pq).(pathItem)
}
