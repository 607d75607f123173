package rituals

import (
	"ritual-coach-backend/internal/catalog"
	"ritual-coach-backend/internal/engine"
)

type NextTaskResponse struct {
	Task   catalog.Task `json:"task"`
	Source string       `json:"source"` // next/interrupt/schedule
}

type ScheduleResponse struct {
	Date    string                 `json:"date"`
	Entries []engine.ScheduledTask `json:"entries"`
}

type CompleteRequest struct {
	TaskID string `json:"task_id"`
}

type CompleteResponse struct {
	OK          bool   `json:"ok"`
	TaskID      string `json:"task_id"`
	Points      int    `json:"points"`
	PointsTotal int    `json:"points_total"`
	TasksToday  int    `json:"tasks_today"`
}

type InterruptResponse struct {
	Interrupt bool          `json:"interrupt"`
	Task      *catalog.Task `json:"task,omitempty"`
}

// StateUpdateRequest carries the periodic context refresh from the client.
// Only non-nil fields are applied.
type StateUpdateRequest struct {
	PartnerHome          *bool     `json:"partner_home,omitempty"`
	Drive                *int      `json:"drive,omitempty"`
	MinutesSinceLastTask *int      `json:"minutes_since_last_task,omitempty"`
	AvoidedDomains       *[]string `json:"avoided_domains,omitempty"`
	AbstainDays          *int      `json:"abstain_days,omitempty"`
	StreakDays           *int      `json:"streak_days,omitempty"`
	Phase                *string   `json:"phase,omitempty"`
}

type SessionStartRequest struct {
	SessionType string `json:"session_type"`
}

type StatsResponse struct {
	PointsTotal int    `json:"points_total"`
	PointsWeek  int    `json:"points_week"`
	StreakDays  int    `json:"streak_days"`
	TasksToday  int    `json:"tasks_today"`
	Phase       string `json:"phase"`
}
