package enhance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ritual-coach-backend/internal/catalog"
	"ritual-coach-backend/internal/engine"
	"ritual-coach-backend/internal/templates"
)

type stubGenerator struct {
	text  string
	err   error
	calls int
}

func (g *stubGenerator) Generate(_ context.Context, _, _ string, _ int) (string, error) {
	g.calls++
	return g.text, g.err
}

func baseTask() catalog.Task {
	return catalog.Task{
		ID:          "t1",
		Category:    "care",
		Domain:      "body",
		Intensity:   1,
		Instruction: "Drink water on day {abstain_day}",
		TimeWindow:  catalog.WindowAny,
	}
}

func TestEnhanceSuccessDebitsAndCaches(t *testing.T) {
	gen := &stubGenerator{text: "Personalized instruction."}
	ledger := NewLedger(1.00)
	enh := New(gen, ledger, nil, templates.NewLibrary())

	s := engine.NewUserState()
	got := enh.Enhance(context.Background(), baseTask(), s)

	assert.Equal(t, "Personalized instruction.", got.Instruction)
	assert.Equal(t, 1, gen.calls)
	assert.InDelta(t, callCost, ledger.SpentToday(), 1e-9)

	// same context hits the cache: no extra call, no extra spend
	got = enh.Enhance(context.Background(), baseTask(), s)
	assert.Equal(t, "Personalized instruction.", got.Instruction)
	assert.Equal(t, 1, gen.calls)
	assert.InDelta(t, callCost, ledger.SpentToday(), 1e-9)

	// a different abstain day is a different key
	s.AbstainDays = 3
	_ = enh.Enhance(context.Background(), baseTask(), s)
	assert.Equal(t, 2, gen.calls)
}

func TestEnhanceFailureFallsBackWithoutDebit(t *testing.T) {
	gen := &stubGenerator{err: errors.New("timeout")}
	ledger := NewLedger(1.00)

	lib := templates.NewLibrary()
	lib.Register("t1", templates.Variation{Instruction: "Template says day {abstain_day}"})

	enh := New(gen, ledger, nil, lib)

	s := engine.NewUserState()
	s.AbstainDays = 2
	got := enh.Enhance(context.Background(), baseTask(), s)

	assert.Equal(t, "Template says day 2", got.Instruction)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, 0.0, ledger.SpentToday())
}

func TestEnhanceNilClientUsesFreeTier(t *testing.T) {
	enh := New(nil, NewLedger(1.00), nil, templates.NewLibrary())

	s := engine.NewUserState()
	s.AbstainDays = 6
	got := enh.Enhance(context.Background(), baseTask(), s)

	// raw template substitution is the bottom of the fallback chain
	assert.Equal(t, "Drink water on day 6", got.Instruction)
}

func TestEnhanceBudgetExhaustedSkipsCall(t *testing.T) {
	gen := &stubGenerator{text: "should not be used"}
	ledger := NewLedger(callCost) // room for exactly one call
	enh := New(gen, ledger, nil, templates.NewLibrary())

	s := engine.NewUserState()
	first := enh.Enhance(context.Background(), baseTask(), s)
	assert.Equal(t, "should not be used", first.Instruction)
	require.Equal(t, 1, gen.calls)

	s.AbstainDays = 1 // new cache key, but the ledger is now full
	second := enh.Enhance(context.Background(), baseTask(), s)
	assert.Equal(t, "Drink water on day 1", second.Instruction)
	assert.Equal(t, 1, gen.calls, "no call may be attempted once the cap is hit")
}

func TestEnhanceBlankGenerationFallsBack(t *testing.T) {
	gen := &stubGenerator{text: "   "}
	ledger := NewLedger(1.00)
	enh := New(gen, ledger, nil, templates.NewLibrary())

	s := engine.NewUserState()
	got := enh.Enhance(context.Background(), baseTask(), s)

	assert.Equal(t, "Drink water on day 0", got.Instruction)
	assert.Equal(t, 0.0, ledger.SpentToday())
}

func TestEnhanceVariationFeedsSubtextAndAffirmation(t *testing.T) {
	lib := templates.NewLibrary()
	lib.Register("t1", templates.Variation{
		Instruction: "Variant instruction",
		Subtext:     "streak {streak}",
		Affirmation: "good",
	})
	enh := New(nil, NewLedger(1.00), nil, lib)

	s := engine.NewUserState()
	s.StreakDays = 7
	got := enh.Enhance(context.Background(), baseTask(), s)

	assert.Equal(t, "Variant instruction", got.Instruction)
	assert.Equal(t, "streak 7", got.Subtext)
	assert.Equal(t, "good", got.Affirmation)
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	c.Set(ctx, "k", "v")
	v, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}
