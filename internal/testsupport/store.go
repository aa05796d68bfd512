package testsupport

import (
	"testing"

	"bidslite/internal/config"
	"bidslite/internal/ledger"
)

// MustOpenLedger opens the history store for cfg and registers cleanup.
func MustOpenLedger(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(cfg.HistoryPath())
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
