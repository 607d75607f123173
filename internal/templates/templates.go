package templates

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"ritual-coach-backend/internal/engine"
)

// Variation is one alternate phrasing of a task's display text, gated by
// optional context conditions. All present conditions must hold.
type Variation struct {
	Instruction string `yaml:"instruction" json:"instruction"`
	Subtext     string `yaml:"subtext,omitempty" json:"subtext,omitempty"`
	Affirmation string `yaml:"affirmation,omitempty" json:"affirmation,omitempty"`

	MinAbstainDays    *int     `yaml:"min_abstain_days,omitempty" json:"-"`
	MaxAbstainDays    *int     `yaml:"max_abstain_days,omitempty" json:"-"`
	RequiresHighDrive bool     `yaml:"requires_high_drive,omitempty" json:"-"`
	TimeOfDay         []string `yaml:"time_of_day,omitempty" json:"-"`
}

func (v Variation) matches(s *engine.UserState) bool {
	if v.MinAbstainDays != nil && s.AbstainDays < *v.MinAbstainDays {
		return false
	}
	if v.MaxAbstainDays != nil && s.AbstainDays > *v.MaxAbstainDays {
		return false
	}
	if v.RequiresHighDrive && s.Drive < 3 {
		return false
	}
	if len(v.TimeOfDay) > 0 {
		found := false
		for _, w := range v.TimeOfDay {
			if w == string(s.TimeOfDay) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Library holds the registered variations, keyed by task id. Loaded once at
// startup, immutable afterward.
type Library struct {
	variations map[string][]Variation
}

func NewLibrary() *Library {
	return &Library{variations: map[string][]Variation{}}
}

// LoadYAML reads a task-id -> variations mapping from a YAML file.
func LoadYAML(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("templates: read %s: %w", path, err)
	}
	var raw map[string][]Variation
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("templates: parse %s: %w", path, err)
	}
	lib := NewLibrary()
	for id, vars := range raw {
		lib.variations[id] = vars
	}
	return lib, nil
}

func (l *Library) Register(taskID string, vars ...Variation) {
	l.variations[taskID] = append(l.variations[taskID], vars...)
}

// SelectVariation picks the first registered variation whose conditions all
// hold. If conditions exclude everything, the first registered variation
// comes back regardless (fail-open, so a task with variations always shows
// one). Nil only when the task has no variations at all.
func (l *Library) SelectVariation(taskID string, s *engine.UserState) *Variation {
	vars := l.variations[taskID]
	if len(vars) == 0 {
		return nil
	}
	for i := range vars {
		if vars[i].matches(s) {
			return &vars[i]
		}
	}
	return &vars[0]
}

// Substitute replaces the known {placeholder} tokens with current state
// values. Unknown tokens are left verbatim.
func Substitute(text string, s *engine.UserState) string {
	r := strings.NewReplacer(
		"{abstain_day}", strconv.Itoa(s.AbstainDays),
		"{streak}", strconv.Itoa(s.StreakDays),
		"{peaks}", strconv.Itoa(s.PeakCount),
		"{time_of_day}", string(s.TimeOfDay),
		"{tasks_today}", strconv.Itoa(s.TasksCompletedToday),
		"{drive}", strconv.Itoa(s.Drive),
	)
	return r.Replace(text)
}
