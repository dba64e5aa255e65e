package mocks

import (
	"sync"
	"time"

	"github.com/quizroom/quizroom-go/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing. Time only
// moves when Advance or Set is called; pending After waiters fire as
// soon as the clock passes their deadline.
type MockClock struct {
	mu      sync.Mutex
	current time.Time
	waiters []waiter
}

type waiter struct {
	deadline time.Time
	ch       chan time.Time
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{current: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After returns a channel that fires once the mocked clock reaches
// now+d. A non-positive duration fires immediately.
func (c *MockClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.current
		return ch
	}
	c.waiters = append(c.waiters, waiter{deadline: c.current.Add(d), ch: ch})
	return ch
}

// Advance moves the clock forward by the given duration
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	c.fire()
}

// Set sets the clock to the given time
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
	c.fire()
}

// fire delivers to all waiters whose deadline has passed. Caller holds mu.
func (c *MockClock) fire() {
	remaining := c.waiters[:0]
	for _, w := range c.waiters {
		if w.deadline.After(c.current) {
			remaining = append(remaining, w)
			continue
		}
		w.ch <- c.current
	}
	c.waiters = remaining
}
