// Package median keeps a running median over a stream of decimal prices.
package median

import "github.com/shopspring/decimal"

// Precision is the number of digits after the decimal point in a formatted median.
const Precision = 8

var half = decimal.New(5, -1)

// Engine holds the two halves of every price inserted so far.
// lower is a max-heap, upper a min-heap; every element of lower is <= every
// element of upper and their sizes differ by at most one.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	lower *priceHeap
	upper *priceHeap
}

func NewEngine() *Engine {
	return &Engine{
		lower: newMaxHeap(),
		upper: newMinHeap(),
	}
}

// Insert adds a price and restores the balance between the halves.
// Each insert grows one half by one, so at most one element has to move.
func (e *Engine) Insert(price decimal.Decimal) {
	if e.lower.Len() == 0 || price.LessThanOrEqual(e.lower.top()) {
		e.lower.push(price)
	} else {
		e.upper.push(price)
	}

	switch {
	case e.lower.Len() > e.upper.Len()+1:
		e.upper.push(e.lower.pop())
	case e.upper.Len() > e.lower.Len()+1:
		e.lower.push(e.upper.pop())
	}
}

// Median returns the median of all inserted prices. The mean of the two middle
// prices is exact. An empty engine reports zero.
func (e *Engine) Median() decimal.Decimal {
	nl, nu := e.lower.Len(), e.upper.Len()
	switch {
	case nl == nu && nl == 0:
		return decimal.Zero
	case nl == nu:
		return e.lower.top().Add(e.upper.top()).Mul(half)
	case nl > nu:
		return e.lower.top()
	default:
		return e.upper.top()
	}
}

// Len returns the number of prices inserted.
func (e *Engine) Len() int { return e.lower.Len() + e.upper.Len() }

// Sizes returns the sizes of the lower and upper halves.
func (e *Engine) Sizes() (lower, upper int) { return e.lower.Len(), e.upper.Len() }

// Format renders a median with exactly Precision digits after the point,
// rounding half away from zero. The result is what change detection compares.
func Format(m decimal.Decimal) string {
	return m.StringFixed(Precision)
}
