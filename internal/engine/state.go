package engine

import (
	"time"

	"ritual-coach-backend/internal/catalog"
)

// Phase is the coarse 6-stage progress marker. Outer layers use it for tone;
// the core carries it as context for the enhancement prompts.
type Phase string

const (
	PhaseDormant     Phase = "dormant"
	PhaseStirring    Phase = "stirring"
	PhaseEmerging    Phase = "emerging"
	PhasePracticing  Phase = "practicing"
	PhaseIntegrating Phase = "integrating"
	PhaseLiving      Phase = "living"
)

func (p Phase) IsValid() bool {
	switch p {
	case PhaseDormant, PhaseStirring, PhaseEmerging, PhasePracticing, PhaseIntegrating, PhaseLiving:
		return true
	default:
		return false
	}
}

// UserState is the mutable context snapshot every selection decision reads.
// The core treats it as caller-owned: completion events, session start/stop
// and the periodic context refresh mutate it, the persistence layer owns
// serialization and the day rollover that clears CompletedToday.
type UserState struct {
	Phase       Phase `json:"phase"`
	AbstainDays int   `json:"abstain_days"` // days since last indulgence; drives the intensity ceiling
	StreakDays  int   `json:"streak_days"`

	TimeOfDay            catalog.TimeWindow `json:"time_of_day"`
	MinutesSinceLastTask int                `json:"minutes_since_last_task"`
	TasksCompletedToday  int                `json:"tasks_completed_today"`

	PartnerHome bool `json:"partner_home"` // privacy flag: drop requires_privacy tasks
	Drive       int  `json:"drive"`        // 0..5

	InSession   bool   `json:"in_session"`
	SessionType string `json:"session_type,omitempty"`
	PeakCount   int    `json:"peak_count"`

	LastTaskCategory string `json:"last_task_category,omitempty"`
	LastTaskDomain   string `json:"last_task_domain,omitempty"`

	CompletedToday []string `json:"completed_today"`
	AvoidedDomains []string `json:"avoided_domains"`

	// Auxiliary fields owned by outer subsystems; the core only surfaces
	// them to the enhancement prompts.
	PointsTotal      int    `json:"points_total"`
	ActiveCommitment string `json:"active_commitment,omitempty"`
	SlipsToday       int    `json:"slips_today"`
}

// NewUserState is the default factory for a fresh user.
func NewUserState() *UserState {
	return &UserState{
		Phase:          PhaseDormant,
		TimeOfDay:      catalog.WindowDaytime,
		CompletedToday: []string{},
		AvoidedDomains: []string{},
	}
}

func (s *UserState) HasCompleted(taskID string) bool {
	for _, id := range s.CompletedToday {
		if id == taskID {
			return true
		}
	}
	return false
}

func (s *UserState) Avoids(domain string) bool {
	for _, d := range s.AvoidedDomains {
		if d == domain {
			return true
		}
	}
	return false
}

// RecordCompletion applies a finished task to the state. The append-only
// completion log and persistence are the store's job.
func (s *UserState) RecordCompletion(t catalog.Task, now time.Time) {
	s.CompletedToday = append(s.CompletedToday, t.ID)
	s.TasksCompletedToday++
	s.LastTaskCategory = t.Category
	s.LastTaskDomain = t.Domain
	s.MinutesSinceLastTask = 0
	s.PointsTotal += t.Points
	s.TimeOfDay = TimeOfDayAt(now)
}

// TimeOfDayAt buckets a wall-clock hour: morning [6,9), daytime [9,17),
// evening [17,21), night otherwise.
func TimeOfDayAt(t time.Time) catalog.TimeWindow {
	h := t.Hour()
	switch {
	case h >= 6 && h < 9:
		return catalog.WindowMorning
	case h >= 9 && h < 17:
		return catalog.WindowDaytime
	case h >= 17 && h < 21:
		return catalog.WindowEvening
	default:
		return catalog.WindowNight
	}
}
