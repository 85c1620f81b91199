package domain

import "testing"

func TestRegistry_GetOrCreate(t *testing.T) {
	reg := NewRegistry()

	acc, created := reg.GetOrCreate(5)
	if !created || acc == nil {
		t.Fatal("expected account to be created on first reference")
	}

	again, created := reg.GetOrCreate(5)
	if created {
		t.Error("expected existing account on second reference")
	}
	if again != acc {
		t.Error("expected the same account instance")
	}

	if reg.Len() != 1 {
		t.Errorf("expected 1 account, got %d", reg.Len())
	}
}

func TestRegistry_SnapshotsOrderedByClient(t *testing.T) {
	reg := NewRegistry()
	for _, id := range []uint16{42, 7, 65535, 0} {
		acc, _ := reg.GetOrCreate(id)
		_, _ = acc.Apply(deposit(id, uint32(id)+1, "1"))
	}

	snaps := reg.Snapshots()
	if len(snaps) != 4 {
		t.Fatalf("expected 4 snapshots, got %d", len(snaps))
	}

	want := []uint16{0, 7, 42, 65535}
	for i, id := range want {
		if snaps[i].ClientID != id {
			t.Errorf("snapshot %d: expected client %d, got %d", i, id, snaps[i].ClientID)
		}
	}
}

// Scenarios run through the registry the way the processor does.
func TestRegistry_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		records   []TransactionRecord
		client    uint16
		available string
		held      string
		locked    bool
	}{
		{
			name: "deposits with withdrawal on an empty account",
			records: []TransactionRecord{
				deposit(99, 1, "100.01"),
				withdrawal(34, 2, "2.9"),
				deposit(99, 3, "9.99"),
			},
			client:    99,
			available: "110.00",
			held:      "0",
		},
		{
			name: "dispute then resolve",
			records: []TransactionRecord{
				deposit(33, 3, "9.99"),
				deposit(33, 4, "47.10"),
				reference(33, TransactionTypeDispute, 3),
				reference(33, TransactionTypeResolve, 3),
			},
			client:    33,
			available: "57.09",
			held:      "0.00",
		},
		{
			name: "dispute then chargeback",
			records: []TransactionRecord{
				deposit(99, 1, "100.01"),
				deposit(99, 2, "2.9"),
				reference(99, TransactionTypeDispute, 1),
				reference(99, TransactionTypeChargeback, 1),
			},
			client:    99,
			available: "2.90",
			held:      "0.00",
			locked:    true,
		},
		{
			name: "chargeback without dispute",
			records: []TransactionRecord{
				deposit(12, 1, "50"),
				deposit(12, 2, "25.5"),
				reference(12, TransactionTypeChargeback, 2),
			},
			client:    12,
			available: "75.5",
			held:      "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			for _, rec := range tt.records {
				acc, _ := reg.GetOrCreate(rec.ClientID)
				_, _ = acc.Apply(rec)
			}

			acc, created := reg.GetOrCreate(tt.client)
			if created {
				t.Fatalf("expected account for client %d", tt.client)
			}
			assertBalances(t, acc, tt.available, tt.held, tt.locked)
		})
	}
}

func TestRegistry_WithdrawalCreatesEmptyAccount(t *testing.T) {
	reg := NewRegistry()
	acc, _ := reg.GetOrCreate(34)

	_, err := acc.Apply(withdrawal(34, 2, "2.9"))
	if err != ErrInsufficientFunds {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	assertBalances(t, acc, "0", "0", false)
}

func TestRegistry_EachVisitsInOrder(t *testing.T) {
	reg := NewRegistry()
	reg.GetOrCreate(3)
	reg.GetOrCreate(1)
	reg.GetOrCreate(2)

	var seen []uint16
	reg.Each(func(acc *Account) {
		seen = append(seen, acc.ClientID)
	})

	if len(seen) != 3 || seen[0] != 1 || seen[1] != 2 || seen[2] != 3 {
		t.Fatalf("unexpected visit order %v", seen)
	}
}
