// Package timeutil provides the clock capability injected into everything
// that evaluates unlock state, so tests and the admin demo mode can supply
// deterministic time.
package timeutil

import (
	"sync"
	"time"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the live system time.
type SystemClock struct{}

func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// AdjustableClock follows the live clock until an operator overrides it.
// Overriding and resetting are explicit; concurrent toggles are
// last-writer-wins under the mutex. Reset returns to the live clock, it
// never freezes at the last override value.
type AdjustableClock struct {
	mu         sync.RWMutex
	overridden bool
	fixed      time.Time
}

func NewAdjustableClock() *AdjustableClock {
	return &AdjustableClock{}
}

func (c *AdjustableClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.overridden {
		return c.fixed
	}
	return time.Now()
}

// Override freezes the clock at t.
func (c *AdjustableClock) Override(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overridden = true
	c.fixed = t
}

// Advance steps the frozen time forward by d. Without an active override
// it is a no-op; the live clock cannot be stepped.
func (c *AdjustableClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.overridden {
		c.fixed = c.fixed.Add(d)
	}
}

// Reset clears the override and resynchronizes to the live clock.
func (c *AdjustableClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overridden = false
	c.fixed = time.Time{}
}

// Overridden reports whether an operator override is active.
func (c *AdjustableClock) Overridden() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.overridden
}

// FixedClock always returns the same instant. Test helper.
type FixedClock struct {
	fixed time.Time
}

func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{fixed: t}
}

func (c *FixedClock) Now() time.Time {
	return c.fixed
}

var (
	_ Clock = (*SystemClock)(nil)
	_ Clock = (*AdjustableClock)(nil)
	_ Clock = (*FixedClock)(nil)
)
