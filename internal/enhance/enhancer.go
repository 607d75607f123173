package enhance

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"ritual-coach-backend/internal/ai"
	"ritual-coach-backend/internal/catalog"
	"ritual-coach-backend/internal/engine"
	"ritual-coach-backend/internal/templates"
)

const (
	callCost       = 0.01 // flat estimate per generation call
	maxTokens      = 220
	defaultTimeout = 12 * time.Second
)

// Generator is the paid text-generation collaborator. Any failure is treated
// uniformly by the enhancer.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// Enhancer upgrades a task's display text through three layers: the paid
// generation call when budget and client allow, the variation library
// otherwise, and raw placeholder substitution at the bottom. Enhance cannot
// fail; a broken or capped paid layer only degrades the text.
type Enhancer struct {
	client  Generator
	ledger  *Ledger
	cache   Cache
	library *templates.Library
	timeout time.Duration
}

// New wires an enhancer instance. A nil client disables the paid layer
// entirely; a nil cache falls back to a process-local one.
func New(client Generator, ledger *Ledger, cache Cache, library *templates.Library) *Enhancer {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Enhancer{
		client:  client,
		ledger:  ledger,
		cache:   cache,
		library: library,
		timeout: defaultTimeout,
	}
}

// Enhance returns the task with instruction/subtext/affirmation possibly
// replaced. Budget exhaustion is a normal branch, not an error; generation
// failures fall back silently and never debit the ledger.
func (e *Enhancer) Enhance(ctx context.Context, t catalog.Task, s *engine.UserState) catalog.Task {
	out := e.freeTier(t, s)

	if e.client == nil {
		return out
	}

	key := cacheKey("instruction", t.ID, s)
	if text, ok := e.cache.Get(ctx, key); ok {
		out.Instruction = text
		return out
	}

	// reserve before calling so two concurrent enhancements cannot both
	// squeeze into headroom for one
	if !e.ledger.TrySpend(callCost) {
		return out
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	text, err := e.client.Generate(callCtx, ai.SystemPrompt(), ai.BuildTaskPrompt(t, s), maxTokens)
	if err != nil || strings.TrimSpace(text) == "" {
		e.ledger.Refund(callCost)
		if err != nil {
			log.Printf("enhance: generation failed for %s, using template fallback: %v", t.ID, err)
		}
		return out
	}

	text = strings.TrimSpace(text)
	e.cache.Set(ctx, key, text)
	out.Instruction = text
	return out
}

// freeTier applies the variation library and placeholder substitution.
func (e *Enhancer) freeTier(t catalog.Task, s *engine.UserState) catalog.Task {
	if e.library != nil {
		if v := e.library.SelectVariation(t.ID, s); v != nil {
			if v.Instruction != "" {
				t.Instruction = v.Instruction
			}
			if v.Subtext != "" {
				t.Subtext = v.Subtext
			}
			if v.Affirmation != "" {
				t.Affirmation = v.Affirmation
			}
		}
	}
	t.Instruction = templates.Substitute(t.Instruction, s)
	t.Subtext = templates.Substitute(t.Subtext, s)
	t.Affirmation = templates.Substitute(t.Affirmation, s)
	return t
}

// cacheKey is deterministic over the fields that change the generated text.
func cacheKey(op, taskID string, s *engine.UserState) string {
	return fmt.Sprintf("%s:%s:%d:%d", op, taskID, s.AbstainDays, s.Drive)
}
