package engine

import (
	"math/rand"
	"sync"
	"time"

	"ritual-coach-backend/internal/catalog"
)

const (
	avoidanceBias = 0.6 // chance the avoided-domain subset replaces the pool
	coreQuota     = 5   // completions before core tasks stop dominating
)

// Engine runs the filter/select pipeline against one catalog. All randomness
// flows through the injected source so tests can pin a seed; the mutex
// serializes draws because one engine serves concurrent requests.
type Engine struct {
	catalog *catalog.Catalog
	mu      sync.Mutex
	rng     *rand.Rand
}

func New(c *catalog.Catalog, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{catalog: c, rng: rng}
}

// IntensityCeiling computes the maximum task intensity the state allows.
// Base 2, raised stepwise by abstain days, capped at 3 until a 3-day streak,
// forced to 5 during a session at drive >= 3. Last applicable rule wins.
func IntensityCeiling(s *UserState) int {
	ceiling := 2
	if s.AbstainDays >= 3 {
		ceiling = 3
	}
	if s.AbstainDays >= 5 {
		ceiling = 4
	}
	if s.AbstainDays >= 7 {
		ceiling = 5
	}
	if s.StreakDays < 3 && ceiling > 3 {
		ceiling = 3
	}
	if s.InSession && s.Drive >= 3 {
		ceiling = 5
	}
	return ceiling
}

// Filter narrows the catalog to the candidates valid for this state. Each
// step keeps its result only when it leaves at least one task, so a single
// over-aggressive predicate cannot empty the pool. If everything is filtered
// away anyway, the any-window slice of the catalog comes back as a last
// resort; only a catalog with no any-window tasks can make the result empty.
func (e *Engine) Filter(s *UserState) []catalog.Task {
	e.mu.Lock()
	defer e.mu.Unlock()

	cands := e.catalog.Tasks()

	// 1. time window
	cands = keepIfAny(cands, func(t catalog.Task) bool {
		return t.TimeWindow == catalog.WindowAny || t.TimeWindow == s.TimeOfDay
	})

	// 2. privacy
	if s.PartnerHome {
		cands = keepIfAny(cands, func(t catalog.Task) bool {
			return !t.RequiresPrivacy
		})
	}

	// 3. intensity ceiling
	ceiling := IntensityCeiling(s)
	cands = keepIfAny(cands, func(t catalog.Task) bool {
		return t.Intensity <= ceiling
	})

	// 4. trigger conditions (fail-open on unknown keys)
	cands = keepIfAny(cands, func(t catalog.Task) bool {
		return triggerSatisfied(t.TriggerCondition, s, e.rng)
	})

	// 5. anti-repetition
	if s.LastTaskCategory != "" {
		cands = keepIfAny(cands, func(t catalog.Task) bool {
			return t.Category != s.LastTaskCategory
		})
	}

	// 6. avoided-domain bias: a probabilistic nudge toward the domains the
	// user keeps steering away from, not a hard filter.
	if len(s.AvoidedDomains) > 0 {
		var avoided []catalog.Task
		for _, t := range cands {
			if s.Avoids(t.Domain) {
				avoided = append(avoided, t)
			}
		}
		if len(avoided) > 0 && e.rng.Float64() < avoidanceBias {
			cands = avoided
		}
	}

	// 7. core-task quota: until enough is done today, core tasks crowd out
	// everything else.
	if s.TasksCompletedToday < coreQuota {
		var core []catalog.Task
		for _, t := range cands {
			if t.IsCore {
				core = append(core, t)
			}
		}
		if len(core) > 0 {
			cands = core
		}
	}

	if len(cands) == 0 {
		return e.catalog.AnyWindow()
	}
	return cands
}

func keepIfAny(cands []catalog.Task, pred func(catalog.Task) bool) []catalog.Task {
	var out []catalog.Task
	for _, t := range cands {
		if pred(t) {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return cands
	}
	return out
}
