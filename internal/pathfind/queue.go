package pathfind

import "container/heap"

type item struct {
	node     string
	priority float64
	seq      int
}

// queue is a min-heap on priority; equal priorities pop in push order.
type queue struct {
	items []*item
	next  int
}

func (q *queue) Len() int { return len(q.items) }

func (q *queue) Less(i, j int) bool {
	if q.items[i].priority != q.items[j].priority {
		return q.items[i].priority < q.items[j].priority
	}
	return q.items[i].seq < q.items[j].seq
}

func (q *queue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *queue) Push(x any) { q.items = append(q.items, x.(*item)) }

func (q *queue) Pop() any {
	old := q.items
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	q.items = old[:n-1]
	return it
}

func (q *queue) push(node string, priority float64) {
	heap.Push(q, &item{node: node, priority: priority, seq: q.next})
	q.next++
}

func (q *queue) pop() *item {
	return heap.Pop(q).(*item)
}
