package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	valid := decimal.RequireFromString("100.25")
	if err := ValidateAmount(valid); err != nil {
		t.Fatalf("expected valid amount, got %v", err)
	}

	if err := ValidateAmount(decimal.RequireFromString("0.00001")); err != nil {
		t.Fatalf("expected sub-penny amount to be accepted, got %v", err)
	}

	if err := ValidateAmount(decimal.Zero); err != nil {
		t.Fatalf("expected zero to be accepted, got %v", err)
	}

	if err := ValidateAmount(decimal.NewFromInt(-5)); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount for negative, got %v", err)
	}

	if err := ValidateAmount(decimal.RequireFromString("1000000000000.0001")); err != nil {
		t.Fatalf("expected large amount to be accepted, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	amount := decimal.NewNullDecimal(decimal.RequireFromString("2.5"))

	tests := []struct {
		name       string
		rec        TransactionRecord
		wantErr    error
		wantAmount bool
	}{
		{
			name:       "deposit keeps amount",
			rec:        TransactionRecord{Type: TransactionTypeDeposit, Amount: amount},
			wantAmount: true,
		},
		{
			name: "withdrawal without amount passes through",
			rec:  TransactionRecord{Type: TransactionTypeWithdrawal},
		},
		{
			name:    "negative deposit rejected",
			rec:     TransactionRecord{Type: TransactionTypeDeposit, Amount: decimal.NewNullDecimal(decimal.NewFromInt(-1))},
			wantErr: ErrNegativeAmount,
		},
		{
			name:       "zero deposit keeps amount",
			rec:        TransactionRecord{Type: TransactionTypeDeposit, Amount: decimal.NewNullDecimal(decimal.Zero)},
			wantAmount: true,
		},
		{
			name: "dispute drops amount",
			rec:  TransactionRecord{Type: TransactionTypeDispute, Amount: amount},
		},
		{
			name: "chargeback drops negative amount without error",
			rec:  TransactionRecord{Type: TransactionTypeChargeback, Amount: decimal.NewNullDecimal(decimal.NewFromInt(-1))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.rec.Normalize()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Amount.Valid != tt.wantAmount {
				t.Fatalf("expected amount valid=%v, got %+v", tt.wantAmount, got.Amount)
			}
		})
	}
}
