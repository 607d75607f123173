package engine

import (
	"math/rand"
	"sync"
	"time"
)

const (
	interruptMinGap    = 30 * time.Minute
	interruptIdleFloor = 15  // minutes since last task before the gate opens
	interruptRampSpan  = 180 // minutes of idleness for full probability
	interruptMaxProb   = 0.4
)

// InterruptGate decides whether to inject an unscheduled selection. One gate
// serves all users; the cooldown is tracked per user. The caller drives it
// from its own timer and must call RecordInterrupt when an interrupt is
// actually delivered, or the cooldown never advances.
type InterruptGate struct {
	mu   sync.Mutex
	last map[int]time.Time
	rng  *rand.Rand
	now  func() time.Time
}

func NewInterruptGate(rng *rand.Rand) *InterruptGate {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &InterruptGate{last: map[int]time.Time{}, rng: rng, now: time.Now}
}

// ShouldInterrupt returns true with a probability growing linearly with idle
// minutes, capped at 40%. Always false inside the user's cooldown window,
// during a session, or under 15 idle minutes.
func (g *InterruptGate) ShouldInterrupt(userID int, s *UserState) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.now().Sub(g.last[userID]) < interruptMinGap {
		return false
	}
	if s.InSession {
		return false
	}
	if s.MinutesSinceLastTask < interruptIdleFloor {
		return false
	}

	p := float64(s.MinutesSinceLastTask) / interruptRampSpan
	if p > interruptMaxProb {
		p = interruptMaxProb
	}
	return g.rng.Float64() < p
}

// RecordInterrupt resets the user's cooldown. Call it whenever an interrupt
// is delivered.
func (g *InterruptGate) RecordInterrupt(userID int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last[userID] = g.now()
}
