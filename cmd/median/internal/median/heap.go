package median

import (
	"container/heap"

	"github.com/shopspring/decimal"
)

// priceHeap is a binary heap of prices ordered by less.
// less(a, b) == a.LessThan(b) gives a min-heap, a.GreaterThan(b) a max-heap.
type priceHeap struct {
	items []decimal.Decimal
	less  func(a, b decimal.Decimal) bool
}

func newMaxHeap() *priceHeap {
	return &priceHeap{less: func(a, b decimal.Decimal) bool { return a.GreaterThan(b) }}
}

func newMinHeap() *priceHeap {
	return &priceHeap{less: func(a, b decimal.Decimal) bool { return a.LessThan(b) }}
}

func (h *priceHeap) Len() int           { return len(h.items) }
func (h *priceHeap) Less(i, j int) bool { return h.less(h.items[i], h.items[j]) }
func (h *priceHeap) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *priceHeap) Push(x any) { h.items = append(h.items, x.(decimal.Decimal)) }

func (h *priceHeap) Pop() any {
	n := len(h.items)
	top := h.items[n-1]
	h.items = h.items[:n-1]
	return top
}

func (h *priceHeap) top() decimal.Decimal { return h.items[0] }

func (h *priceHeap) push(p decimal.Decimal) { heap.Push(h, p) }

func (h *priceHeap) pop() decimal.Decimal { return heap.Pop(h).(decimal.Decimal) }
