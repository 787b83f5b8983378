package extract

import "sync"

// Budget tracks vision model calls against a per-document cap. Calls are
// recorded only after a vision result validates, so failed or too-short
// responses never consume budget.
type Budget struct {
	mu   sync.Mutex
	max  int
	used int
}

// NewBudget creates a budget allowing at most max vision calls.
func NewBudget(max int) *Budget {
	return &Budget{max: max}
}

// CanCall reports whether another vision call is allowed.
func (b *Budget) CanCall() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used < b.max
}

// RecordCall counts one successful vision call.
func (b *Budget) RecordCall() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.used++
}

// Used returns the number of recorded calls.
func (b *Budget) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}

// Max returns the call cap.
func (b *Budget) Max() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.max
}

// Reset clears the recorded calls, for reusing a session across documents.
func (b *Budget) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.used = 0
}
