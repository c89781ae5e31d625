package memory

import (
	"testing"

	"vslim/internal/ledger"
	"vslim/internal/ledger/ledgertest"
)

func TestStore(t *testing.T) {
	ledgertest.Run(t, func(t *testing.T) ledger.Store { return New() })
}
