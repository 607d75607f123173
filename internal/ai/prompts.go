package ai

import (
	"strconv"
	"strings"

	"ritual-coach-backend/internal/catalog"
	"ritual-coach-backend/internal/engine"
)

const systemPrompt = `You are a supportive personal ritual coach. You rewrite a task instruction for one specific person and moment.

Rules:
- Keep the task itself unchanged: same activity, same duration, same target.
- One short paragraph, direct second person, warm but not saccharine.
- Use the provided context (streak, phase, time of day) to make it feel personal.
- Never add medical, financial or relationship advice. Never invent new tasks.
- Output only the rewritten instruction, no preamble.`

// SystemPrompt returns the fixed system prompt for instruction rewriting.
func SystemPrompt() string {
	return systemPrompt
}

// BuildTaskPrompt serializes the task and the relevant state fields into the
// user prompt, one "key: value" line each.
func BuildTaskPrompt(t catalog.Task, s *engine.UserState) string {
	var b strings.Builder

	b.WriteString("task: ")
	b.WriteString(t.Instruction)
	b.WriteString("\n")

	b.WriteString("category: ")
	b.WriteString(t.Category)
	b.WriteString("\n")

	b.WriteString("domain: ")
	b.WriteString(t.Domain)
	b.WriteString("\n")

	b.WriteString("intensity: ")
	b.WriteString(strconv.Itoa(t.Intensity))
	b.WriteString("\n")

	if t.DurationMinutes != nil {
		b.WriteString("duration_minutes: ")
		b.WriteString(strconv.Itoa(*t.DurationMinutes))
		b.WriteString("\n")
	}

	if t.TargetCount != nil {
		b.WriteString("target_count: ")
		b.WriteString(strconv.Itoa(*t.TargetCount))
		b.WriteString("\n")
	}

	b.WriteString("phase: ")
	b.WriteString(string(s.Phase))
	b.WriteString("\n")

	b.WriteString("abstain_days: ")
	b.WriteString(strconv.Itoa(s.AbstainDays))
	b.WriteString("\n")

	b.WriteString("streak_days: ")
	b.WriteString(strconv.Itoa(s.StreakDays))
	b.WriteString("\n")

	b.WriteString("time_of_day: ")
	b.WriteString(string(s.TimeOfDay))
	b.WriteString("\n")

	b.WriteString("tasks_completed_today: ")
	b.WriteString(strconv.Itoa(s.TasksCompletedToday))
	b.WriteString("\n")

	if s.InSession {
		b.WriteString("in_session: true\n")
	}

	return b.String()
}
