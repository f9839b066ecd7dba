package enums

import "testing"

func TestBalanceTypeIsValid(t *testing.T) {
	if !BalanceTypeCredit.IsValid() || !BalanceTypeDebit.IsValid() {
		t.Fatalf("expected known balance types to be valid")
	}
	if BalanceType("equity").IsValid() {
		t.Fatalf("unknown balance type should be invalid")
	}
}

func TestParseBalanceType(t *testing.T) {
	got, err := ParseBalanceType("  Debit ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != BalanceTypeDebit {
		t.Fatalf("expected debit, got %s", got)
	}

	if _, err := ParseBalanceType("other"); err == nil {
		t.Fatalf("expected error for unknown value")
	}
}
