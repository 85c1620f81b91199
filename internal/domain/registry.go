package domain

import "sort"

// Registry maps client ids to their accounts. Accounts are created on first
// reference and never removed.
type Registry struct {
	accounts map[uint16]*Account
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{accounts: make(map[uint16]*Account)}
}

// GetOrCreate returns the account for clientID, creating it if needed. The
// second return value is true when the account was created by this call.
func (r *Registry) GetOrCreate(clientID uint16) (*Account, bool) {
	if acc, ok := r.accounts[clientID]; ok {
		return acc, false
	}

	acc := NewAccount(clientID)
	r.accounts[clientID] = acc
	return acc, true
}

// Len returns the number of known accounts.
func (r *Registry) Len() int {
	return len(r.accounts)
}

// Each calls fn for every account in client id order.
func (r *Registry) Each(fn func(*Account)) {
	ids := make([]uint16, 0, len(r.accounts))
	for id := range r.accounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		fn(r.accounts[id])
	}
}

// Snapshots returns a snapshot of every account ordered by client id.
func (r *Registry) Snapshots() []AccountSnapshot {
	snaps := make([]AccountSnapshot, 0, len(r.accounts))
	r.Each(func(acc *Account) {
		snaps = append(snaps, acc.Snapshot())
	})

	return snaps
}
