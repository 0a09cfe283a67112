package seed_test

import (
	"testing"

	accountdomain "github.com/smallbiznis/bizledger/internal/account/domain"
	"github.com/smallbiznis/bizledger/internal/seed"
	"github.com/smallbiznis/bizledger/internal/testutil"
)

func TestEnsureDefaultAccountIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	node := testutil.NewNode(t)

	for i := 0; i < 2; i++ {
		if err := seed.EnsureDefaultAccount(db, node, "USD"); err != nil {
			t.Fatalf("seed run %d: %v", i, err)
		}
	}

	var accounts []accountdomain.Account
	if err := db.Find(&accounts).Error; err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("expected one seeded account, got %d", len(accounts))
	}
	if accounts[0].Name != "Cash" || accounts[0].Type != accountdomain.AccountTypeCash || accounts[0].Currency != "USD" {
		t.Fatalf("unexpected seeded account %+v", accounts[0])
	}
	if !accounts[0].Balance.IsZero() {
		t.Fatalf("seeded balance should be zero, got %s", accounts[0].Balance)
	}
}

func TestEnsureDefaultAccountRequiresHandles(t *testing.T) {
	if err := seed.EnsureDefaultAccount(nil, testutil.NewNode(t), ""); err == nil {
		t.Fatal("expected error without db")
	}
	if err := seed.EnsureDefaultAccount(testutil.NewDB(t), nil, ""); err == nil {
		t.Fatal("expected error without id generator")
	}
}
