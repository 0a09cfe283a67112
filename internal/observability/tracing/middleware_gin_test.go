package tracing

import "testing"

func TestLedgerResource(t *testing.T) {
	cases := map[string]string{
		"/api/accounting/transactions/:id": "transactions",
		"/api/accounting":                  "accounting",
		"/api/shop/sales/:id/receipt":      "shop.sales",
		"/api/reports/debts":               "reports",
		"/api/expenses":                    "expenses",
		"/metrics":                         "other",
		"unmatched":                        "other",
	}
	for route, want := range cases {
		if got := ledgerResource(route); got != want {
			t.Fatalf("%s: expected %q, got %q", route, want, got)
		}
	}
}

func TestIsMutation(t *testing.T) {
	if !isMutation("DELETE") || isMutation("GET") {
		t.Fatal("unexpected mutation classification")
	}
}
