package catalog

import "errors"

var ErrEmptyCatalog = errors.New("catalog: no tasks loaded")

// Catalog is the read-only task collection every selection call draws from.
type Catalog struct {
	tasks []Task
	byID  map[string]Task
}

func New(tasks []Task) (*Catalog, error) {
	if len(tasks) == 0 {
		return nil, ErrEmptyCatalog
	}
	byID := make(map[string]Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	return &Catalog{tasks: tasks, byID: byID}, nil
}

// Tasks returns the full catalog. Callers must not mutate entries.
func (c *Catalog) Tasks() []Task {
	return c.tasks
}

func (c *Catalog) Len() int {
	return len(c.tasks)
}

func (c *Catalog) ByID(id string) (Task, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// Find returns the first task matching the exact (category, domain, intensity)
// triple. Used by the fixed schedule blocks; a miss is not an error there.
func (c *Catalog) Find(category, domain string, intensity int) (Task, bool) {
	for _, t := range c.tasks {
		if t.Category == category && t.Domain == domain && t.Intensity == intensity {
			return t, true
		}
	}
	return Task{}, false
}

// AnyWindow returns every task with time_window == any. This set backs the
// filter's never-empty guarantee.
func (c *Catalog) AnyWindow() []Task {
	var out []Task
	for _, t := range c.tasks {
		if t.TimeWindow == WindowAny {
			out = append(out, t)
		}
	}
	return out
}
