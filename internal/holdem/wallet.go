package holdem

import "sync"

// Ledger tracks the chips a player owns outside any hand. The table loads
// stacks from it when a hand starts and writes results back when the hand
// settles or is aborted.
type Ledger interface {
	Stack(playerID string) int
	SetStack(playerID string, amount int)
}

// MemoryLedger is an in-memory Ledger that grants a fixed initial stack
// the first time a player is seen.
type MemoryLedger struct {
	mu      sync.Mutex
	initial int
	stacks  map[string]int
}

func NewMemoryLedger(initialStack int) *MemoryLedger {
	return &MemoryLedger{
		initial: initialStack,
		stacks:  make(map[string]int),
	}
}

func (l *MemoryLedger) Stack(playerID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.stacks[playerID]
	if !ok {
		s = l.initial
		l.stacks[playerID] = s
	}
	return s
}

func (l *MemoryLedger) SetStack(playerID string, amount int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stacks[playerID] = amount
}
