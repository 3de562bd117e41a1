package generator

import (
	"math/rand"
	"time"
)

// for deterministic testing
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// for deterministic values
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// VirtualClock advances on Sleep without blocking, so files can cover hours of ticks instantly.
type VirtualClock struct {
	Current time.Time
}

func (c *VirtualClock) Now() time.Time        { return c.Current }
func (c *VirtualClock) Sleep(d time.Duration) { c.Current = c.Current.Add(d) }

type RealRand struct{ *rand.Rand }

func (r RealRand) Intn(n int) int   { return r.Rand.Intn(n) }
func (r RealRand) Float64() float64 { return r.Rand.Float64() }
