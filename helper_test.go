package wellets

import "testing"

var (
	usd = Currency{ID: "usd", Acronym: "USD", DollarRate: 1}
	eur = Currency{ID: "eur", Acronym: "EUR", DollarRate: 0.8}
	btc = Currency{ID: "btc", Acronym: "BTC", DollarRate: 0.01}
)

// catalog is a helper for tests to build a catalog of usd, eur and btc.
func catalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog(usd, eur, btc)
	if err != nil {
		t.Fatalf("NewCatalog() unexpected error: %v", err)
	}
	return c
}

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// mustAdd adds portfolios to the tree or fails the test.
func mustAdd(t *testing.T, tree *Tree, portfolios ...Portfolio) {
	t.Helper()
	for _, p := range portfolios {
		if err := tree.Add(p); err != nil {
			t.Fatalf("Add(%q) unexpected error: %v", p.ID, err)
		}
	}
}

// mustAddWallet adds wallets to the tree or fails the test.
func mustAddWallet(t *testing.T, tree *Tree, wallets ...Wallet) {
	t.Helper()
	for _, w := range wallets {
		if err := tree.AddWallet(w); err != nil {
			t.Fatalf("AddWallet(%q) unexpected error: %v", w.ID, err)
		}
	}
}

// near tells whether two floats are equal up to a small relative error.
func near(a, b float64) bool {
	const eps = 1e-9
	d := a - b
	if d < 0 {
		d = -d
	}
	m := b
	if m < 0 {
		m = -m
	}
	if m < 1 {
		m = 1
	}
	return d <= eps*m
}
