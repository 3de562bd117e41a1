package testutils

import "time"

type MockClock struct {
	CurrentTime time.Time
}

func (m *MockClock) Now() time.Time        { return m.CurrentTime }
func (m *MockClock) Sleep(d time.Duration) { m.CurrentTime = m.CurrentTime.Add(d) }

type MockRand struct {
	ValInt   int
	ValFloat float64
}

func (m *MockRand) Intn(n int) int   { return m.ValInt }
func (m *MockRand) Float64() float64 { return m.ValFloat }
