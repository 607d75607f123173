package enhance

import (
	"sync"
	"time"
)

// Ledger tracks paid-call spending against a daily cap. The reset is lazy:
// every read compares the calendar date of the last reset against now, so a
// ledger nobody queries on a given day simply carries over until the next
// query. One ledger per process; replicas do not share it.
type Ledger struct {
	mu          sync.Mutex
	dailyBudget float64
	spent       float64
	lastReset   time.Time

	now func() time.Time // swappable in tests
}

func NewLedger(dailyBudget float64) *Ledger {
	return &Ledger{dailyBudget: dailyBudget, lastReset: time.Now(), now: time.Now}
}

// TrySpend reserves the cost if it still fits under today's cap, in one
// critical section so concurrent callers cannot both squeeze into the same
// headroom. A reservation that ends in a failed call is returned via Refund.
func (l *Ledger) TrySpend(cost float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover()
	if l.spent+cost > l.dailyBudget {
		return false
	}
	l.spent += cost
	return true
}

// Refund returns a reservation whose call never produced text. Floored at
// zero in case the day rolled over between reserve and refund.
func (l *Ledger) Refund(cost float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover()
	l.spent -= cost
	if l.spent < 0 {
		l.spent = 0
	}
}

func (l *Ledger) SpentToday() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover()
	return l.spent
}

func (l *Ledger) DailyBudget() float64 {
	return l.dailyBudget
}

func (l *Ledger) rollover() {
	now := l.now()
	y1, m1, d1 := l.lastReset.Date()
	y2, m2, d2 := now.Date()
	if y1 != y2 || m1 != m2 || d1 != d2 {
		l.spent = 0
		l.lastReset = now
	}
}
