package engine

import (
	"errors"

	"ritual-coach-backend/internal/catalog"
)

var ErrNoCandidates = errors.New("engine: no candidates to select from")

const (
	coreWeight         = 2.0
	driveDomainWeight  = 1.5
	notCompletedWeight = 1.5
	highDriveThreshold = 3
)

// Select draws one task from the candidates by weighted random choice.
// Weights multiply independently: core tasks count double, drive-domain
// tasks get a boost while drive is high, and anything not yet completed
// today is favored over a repeat.
func (e *Engine) Select(cands []catalog.Task, s *UserState) (catalog.Task, error) {
	if len(cands) == 0 {
		return catalog.Task{}, ErrNoCandidates
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	weights := make([]float64, len(cands))
	total := 0.0
	for i, t := range cands {
		w := 1.0
		if t.IsCore {
			w *= coreWeight
		}
		if s.Drive >= highDriveThreshold && t.Domain == "drive" {
			w *= driveDomainWeight
		}
		if !s.HasCompleted(t.ID) {
			w *= notCompletedWeight
		}
		weights[i] = w
		total += w
	}

	draw := e.rng.Float64() * total
	for i, w := range weights {
		draw -= w
		if draw <= 0 {
			return cands[i], nil
		}
	}
	// float drift can leave the draw unconsumed; fall back to the head
	return cands[0], nil
}

// Next runs the full filter+select pipeline for the state.
func (e *Engine) Next(s *UserState) (catalog.Task, error) {
	return e.Select(e.Filter(s), s)
}
