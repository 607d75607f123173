package engine

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShouldInterruptFalseUnderIdleFloor(t *testing.T) {
	// must hold for every seed, not just a lucky one
	for seed := int64(0); seed < 100; seed++ {
		gate := NewInterruptGate(rand.New(rand.NewSource(seed)))
		s := NewUserState()
		s.MinutesSinceLastTask = 14

		assert.False(t, gate.ShouldInterrupt(1, s), "seed %d", seed)
	}
}

func TestShouldInterruptFalseInSession(t *testing.T) {
	for seed := int64(0); seed < 100; seed++ {
		gate := NewInterruptGate(rand.New(rand.NewSource(seed)))
		s := NewUserState()
		s.InSession = true
		s.MinutesSinceLastTask = 500

		assert.False(t, gate.ShouldInterrupt(1, s), "seed %d", seed)
	}
}

func TestShouldInterruptCooldown(t *testing.T) {
	gate := NewInterruptGate(rand.New(rand.NewSource(1)))
	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	now := base
	gate.now = func() time.Time { return now }

	gate.RecordInterrupt(1)

	s := NewUserState()
	s.MinutesSinceLastTask = 500

	now = base.Add(29 * time.Minute)
	for i := 0; i < 100; i++ {
		assert.False(t, gate.ShouldInterrupt(1, s))
	}

	// past the gap the gate can fire again
	now = base.Add(31 * time.Minute)
	fired := false
	for i := 0; i < 200 && !fired; i++ {
		fired = gate.ShouldInterrupt(1, s)
	}
	assert.True(t, fired)
}

func TestShouldInterruptCooldownPerUser(t *testing.T) {
	gate := NewInterruptGate(rand.New(rand.NewSource(4)))
	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	gate.now = func() time.Time { return base }

	gate.RecordInterrupt(1)

	s := NewUserState()
	s.MinutesSinceLastTask = 10000

	// user 1 is cooling down, user 2 is not
	assert.False(t, gate.ShouldInterrupt(1, s))
	fired := false
	for i := 0; i < 200 && !fired; i++ {
		fired = gate.ShouldInterrupt(2, s)
	}
	assert.True(t, fired)
}

func TestConcurrentSelectionAndInterruptChecks(t *testing.T) {
	// engine and gate run on separate goroutines in the server; each carries
	// its own rand source, so concurrent draws must stay race-free
	eng := testEngine(t, 1, anyTask("a"), anyTask("b"), anyTask("c"))
	gate := NewInterruptGate(rand.New(rand.NewSource(2)))

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := NewUserState()
			s.MinutesSinceLastTask = 60
			for i := 0; i < 200; i++ {
				if w%2 == 0 {
					_, err := eng.Next(s)
					assert.NoError(t, err)
				} else {
					gate.ShouldInterrupt(w, s)
				}
			}
		}()
	}
	wg.Wait()
}

func TestShouldInterruptProbabilityCapped(t *testing.T) {
	gate := NewInterruptGate(rand.New(rand.NewSource(2)))
	gate.now = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }

	s := NewUserState()
	s.MinutesSinceLastTask = 10000 // far past the ramp

	hits := 0
	const trials = 5000
	for i := 0; i < trials; i++ {
		if gate.ShouldInterrupt(1, s) {
			hits++
		}
	}

	rate := float64(hits) / trials
	assert.InDelta(t, 0.4, rate, 0.03, "capped rate %.3f", rate)
}

func TestShouldInterruptLinearRamp(t *testing.T) {
	gate := NewInterruptGate(rand.New(rand.NewSource(3)))
	gate.now = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }

	s := NewUserState()
	s.MinutesSinceLastTask = 18 // p = 0.1

	hits := 0
	const trials = 5000
	for i := 0; i < trials; i++ {
		if gate.ShouldInterrupt(1, s) {
			hits++
		}
	}

	rate := float64(hits) / trials
	assert.InDelta(t, 0.1, rate, 0.02, "ramp rate %.3f", rate)
}
