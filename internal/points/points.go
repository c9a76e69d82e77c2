// Package points is the reward collaborator: the completion ledger computes
// when points change, this package computes totals and keeps history.
package points

import (
	"sync"
	"time"
)

// Ledger receives point transitions from completion toggles.
type Ledger interface {
	Grant(amount int, day string)
	Revoke(amount int, day string)
}

// Transaction is one recorded grant or revocation.
type Transaction struct {
	Day    string    `json:"day"`
	Amount int       `json:"amount"` // negative for revocations
	At     time.Time `json:"at"`
}

// MemoryLedger is the reference in-memory Ledger implementation.
type MemoryLedger struct {
	mu      sync.Mutex
	history []Transaction
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

func (l *MemoryLedger) Grant(amount int, day string) {
	l.record(amount, day)
}

func (l *MemoryLedger) Revoke(amount int, day string) {
	l.record(-amount, day)
}

func (l *MemoryLedger) record(amount int, day string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.history = append(l.history, Transaction{Day: day, Amount: amount, At: time.Now()})
}

// Balance returns the sum of all recorded transactions.
func (l *MemoryLedger) Balance() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0
	for _, tx := range l.history {
		total += tx.Amount
	}
	return total
}

// History returns a copy of the transaction log.
func (l *MemoryLedger) History() []Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Transaction, len(l.history))
	copy(out, l.history)
	return out
}
