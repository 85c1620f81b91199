package domain

import "github.com/shopspring/decimal"

// DepositEntry is a deposit retained so that later dispute, resolve and
// chargeback records can reference its amount.
type DepositEntry struct {
	Amount   decimal.Decimal
	Disputed bool
}

// DepositStore holds the disputable deposits of one account, keyed by
// transaction id. Entries are never removed.
type DepositStore struct {
	entries map[uint32]*DepositEntry
}

// NewDepositStore creates an empty DepositStore.
func NewDepositStore() *DepositStore {
	return &DepositStore{entries: make(map[uint32]*DepositEntry)}
}

// Record stores a new undisputed deposit. A second deposit with the same id
// replaces the first.
func (s *DepositStore) Record(txID uint32, amount decimal.Decimal) {
	s.entries[txID] = &DepositEntry{Amount: amount}
}

// Find returns a copy of the entry for txID.
func (s *DepositStore) Find(txID uint32) (DepositEntry, bool) {
	e, ok := s.entries[txID]
	if !ok {
		return DepositEntry{}, false
	}
	return *e, true
}

// Len returns the number of recorded deposits.
func (s *DepositStore) Len() int {
	return len(s.entries)
}

// DisputedAmount sums the amounts of all currently disputed entries. For a
// consistent account it equals Held.
func (s *DepositStore) DisputedAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range s.entries {
		if e.Disputed {
			sum = sum.Add(e.Amount)
		}
	}
	return sum
}

func (s *DepositStore) lookup(txID uint32) *DepositEntry {
	return s.entries[txID]
}
