package engine

import (
	"log"
	"math/rand"

	"ritual-coach-backend/internal/catalog"
)

// trigger predicates the catalog may reference by name. The table is closed
// on the code side but the catalog is data, so an unknown key passes
// fail-open — logged so a typo in the CSV is at least visible.
type triggerFunc func(s *UserState, rng *rand.Rand) bool

var triggers = map[string]triggerFunc{
	"abstain_day_3": func(s *UserState, _ *rand.Rand) bool { return s.AbstainDays >= 3 },
	"abstain_day_5": func(s *UserState, _ *rand.Rand) bool { return s.AbstainDays >= 5 },
	"abstain_day_7": func(s *UserState, _ *rand.Rand) bool { return s.AbstainDays >= 7 },

	"in_session":      func(s *UserState, _ *rand.Rand) bool { return s.InSession },
	"session_peaks_3": func(s *UserState, _ *rand.Rand) bool { return s.InSession && s.PeakCount >= 3 },
	"drive_peak":      func(s *UserState, _ *rand.Rand) bool { return s.Drive >= 4 },

	"morning": func(s *UserState, _ *rand.Rand) bool { return s.TimeOfDay == catalog.WindowMorning },
	"daytime": func(s *UserState, _ *rand.Rand) bool { return s.TimeOfDay == catalog.WindowDaytime },
	"evening": func(s *UserState, _ *rand.Rand) bool { return s.TimeOfDay == catalog.WindowEvening },
	"night":   func(s *UserState, _ *rand.Rand) bool { return s.TimeOfDay == catalog.WindowNight },

	// used by random-interrupt tasks
	"random_30": func(_ *UserState, rng *rand.Rand) bool { return rng.Float64() < 0.3 },
}

// triggerSatisfied evaluates a task's trigger_condition. No condition, or a
// condition the table does not know, counts as satisfied.
func triggerSatisfied(name string, s *UserState, rng *rand.Rand) bool {
	if name == "" {
		return true
	}
	fn, ok := triggers[name]
	if !ok {
		log.Printf("engine: unknown trigger condition %q, passing", name)
		return true
	}
	return fn(s, rng)
}
