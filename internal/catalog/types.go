package catalog

// TimeWindow restricts when a task may be offered.
type TimeWindow string

const (
	WindowAny     TimeWindow = "any"
	WindowMorning TimeWindow = "morning"
	WindowDaytime TimeWindow = "daytime"
	WindowEvening TimeWindow = "evening"
	WindowNight   TimeWindow = "night"
)

func (w TimeWindow) IsValid() bool {
	switch w {
	case WindowAny, WindowMorning, WindowDaytime, WindowEvening, WindowNight:
		return true
	default:
		return false
	}
}

// CompletionType describes how a task is marked done.
type CompletionType string

const (
	CompletionBinary   CompletionType = "binary"
	CompletionDuration CompletionType = "duration"
	CompletionCount    CompletionType = "count"
)

// Task is one immutable catalog entry. Loaded once at startup and shared
// read-only across all selection calls.
type Task struct {
	ID               string         `json:"id"`
	Category         string         `json:"category"`
	Domain           string         `json:"domain"`
	Intensity        int            `json:"intensity"` // 1..5
	Instruction      string         `json:"instruction"`
	Subtext          string         `json:"subtext,omitempty"`
	Affirmation      string         `json:"affirmation,omitempty"`
	CompletionType   CompletionType `json:"completion_type"`
	DurationMinutes  *int           `json:"duration_minutes,omitempty"`
	TargetCount      *int           `json:"target_count,omitempty"`
	Points           int            `json:"points"`
	IsCore           bool           `json:"is_core"`
	TriggerCondition string         `json:"trigger_condition,omitempty"`
	TimeWindow       TimeWindow     `json:"time_window"`
	RequiresPrivacy  bool           `json:"requires_privacy"`
}
