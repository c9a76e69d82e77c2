package points

import "testing"

func TestMemoryLedger(t *testing.T) {
	l := NewMemoryLedger()

	l.Grant(5, "2024-01-10")
	l.Grant(3, "2024-01-11")
	l.Revoke(5, "2024-01-10")

	if got := l.Balance(); got != 3 {
		t.Errorf("Balance = %d, want 3", got)
	}
	if got := len(l.History()); got != 3 {
		t.Errorf("expected 3 transactions in history, got %d", got)
	}
	if tx := l.History()[2]; tx.Amount != -5 || tx.Day != "2024-01-10" {
		t.Errorf("unexpected revocation transaction: %+v", tx)
	}
}
