package engine

import (
	"time"

	"ritual-coach-backend/internal/catalog"
)

// ScheduledTask is one entry on the day plan.
type ScheduledTask struct {
	At       time.Time    `json:"at"`
	Task     catalog.Task `json:"task"`
	Required bool         `json:"required"`
	Flexible bool         `json:"flexible"`
}

// fixedStep addresses a catalog entry by its exact triple. Steps missing
// from the catalog are silently skipped.
type fixedStep struct {
	category  string
	domain    string
	intensity int
}

var morningSteps = []fixedStep{
	{"recognize", "emergence", 1},
	{"care", "body", 1},
	{"voice", "voice", 2},
	{"anchor", "body", 2},
}

var eveningSteps = []fixedStep{
	{"care", "body", 1},
	{"reflect", "emergence", 2},
	{"connect", "relationship", 1},
}

var daytimeSlotHours = []int{10, 12, 14, 16}

const (
	morningStart   = 6*time.Hour + 30*time.Minute
	morningOffset  = 15 * time.Minute
	eveningStart   = 17*time.Hour + 30*time.Minute
	eveningOffset  = 20 * time.Minute
	nightSlotStart = 21*time.Hour + 30*time.Minute
)

// BuildDailySchedule composes the day's plan: the fixed morning block, four
// flexible daytime slots, the fixed evening block, and a night slot once
// AbstainDays reaches 5. Entries come back in build order (morning, daytime,
// evening, night), not re-sorted by timestamp — callers wanting strict clock
// order must sort themselves.
func (e *Engine) BuildDailySchedule(s *UserState, day time.Time) []ScheduledTask {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	var plan []ScheduledTask

	at := midnight.Add(morningStart)
	for _, step := range morningSteps {
		t, ok := e.catalog.Find(step.category, step.domain, step.intensity)
		if !ok {
			continue
		}
		plan = append(plan, ScheduledTask{At: at, Task: t, Required: true})
		at = at.Add(morningOffset)
	}

	for _, hour := range daytimeSlotHours {
		slotState := *s
		slotState.TimeOfDay = catalog.WindowDaytime
		t, err := e.Next(&slotState)
		if err != nil {
			continue
		}
		plan = append(plan, ScheduledTask{
			At:       midnight.Add(time.Duration(hour) * time.Hour),
			Task:     t,
			Flexible: true,
		})
	}

	at = midnight.Add(eveningStart)
	for _, step := range eveningSteps {
		t, ok := e.catalog.Find(step.category, step.domain, step.intensity)
		if !ok {
			continue
		}
		plan = append(plan, ScheduledTask{At: at, Task: t, Required: true})
		at = at.Add(eveningOffset)
	}

	if s.AbstainDays >= 5 {
		nightState := *s
		nightState.TimeOfDay = catalog.WindowNight
		if t, err := e.Next(&nightState); err == nil {
			plan = append(plan, ScheduledTask{At: midnight.Add(nightSlotStart), Task: t})
		}
	}

	return plan
}
