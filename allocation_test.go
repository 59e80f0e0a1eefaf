package wellets

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"slices"
	"testing"
)

// twoSiblings builds two root portfolios A and B holding 'a' and 'b' USD.
func twoSiblings(t *testing.T, wa, a, wb, b float64) *Tree {
	t.Helper()
	tree := NewTree()
	mustAddWallet(t, tree,
		Wallet{ID: "wa", Alias: "WA", CurrencyID: "usd", Balance: a},
		Wallet{ID: "wb", Alias: "WB", CurrencyID: "usd", Balance: b},
	)
	mustAdd(t, tree,
		Portfolio{ID: "a", Alias: "A", Weight: wa, WalletIDs: []string{"wa"}},
		Portfolio{ID: "b", Alias: "B", Weight: wb, WalletIDs: []string{"wb"}},
	)
	return tree
}

func TestRebalance(t *testing.T) {
	tree := twoSiblings(t, 0.6, 600, 0.4, 200)
	alloc, err := RebalanceRoots(tree, usd, catalog(t))
	if err != nil {
		t.Fatalf("RebalanceRoots() unexpected error: %v", err)
	}
	if len(alloc.Changes) != 2 {
		t.Fatalf("len(Changes) = %d, want 2", len(alloc.Changes))
	}

	tests := []struct {
		id                    string
		target, actual, offBy float64
		action                Action
	}{
		{"a", 480, 600, 0.25, Action{Sell, 120}},
		{"b", 320, 200, -0.375, Action{Buy, 120}},
	}
	for i, tt := range tests {
		c := alloc.Changes[i]
		if c.Portfolio.ID != tt.id {
			t.Errorf("Changes[%d].Portfolio = %q, want %q", i, c.Portfolio.ID, tt.id)
		}
		if !near(c.Target, tt.target) {
			t.Errorf("%s: Target = %v, want %v", tt.id, c.Target, tt.target)
		}
		if !near(c.Actual, tt.actual) {
			t.Errorf("%s: Actual = %v, want %v", tt.id, c.Actual, tt.actual)
		}
		if !near(c.OffBy, tt.offBy) {
			t.Errorf("%s: OffBy = %v, want %v", tt.id, c.OffBy, tt.offBy)
		}
		if c.Action.Type != tt.action.Type || !near(c.Action.Amount, tt.action.Amount) {
			t.Errorf("%s: Action = %+v, want %+v", tt.id, c.Action, tt.action)
		}
	}
	if !near(alloc.TotalTarget(), alloc.TotalActual()) {
		t.Errorf("TotalTarget() = %v, want TotalActual() = %v", alloc.TotalTarget(), alloc.TotalActual())
	}
}

func TestRebalance_ZeroTarget(t *testing.T) {
	tests := []struct {
		name   string
		actual float64
		offBy  float64
		action Action
	}{
		{"overweight", 50, 1, Action{Sell, 50}},
		{"empty", 0, 0, Action{Buy, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := twoSiblings(t, 0, tt.actual, 1, 100)
			alloc, err := RebalanceRoots(tree, usd, catalog(t))
			if err != nil {
				t.Fatalf("RebalanceRoots() unexpected error: %v", err)
			}
			c := alloc.Changes[0]
			if c.Target != 0 {
				t.Errorf("Target = %v, want 0", c.Target)
			}
			if c.OffBy != tt.offBy {
				t.Errorf("OffBy = %v, want %v", c.OffBy, tt.offBy)
			}
			if c.Action != tt.action {
				t.Errorf("Action = %+v, want %+v", c.Action, tt.action)
			}
		})
	}
}

func TestRebalance_NegativeActual(t *testing.T) {
	// a debt in a zero weight portfolio is underweight
	tree := twoSiblings(t, 0, -20, 1, 100)
	alloc, err := RebalanceRoots(tree, usd, catalog(t))
	if err != nil {
		t.Fatal(err)
	}
	c := alloc.Changes[0]
	if c.OffBy != -1 || c.Action != (Action{Buy, 20}) {
		t.Errorf("Change = off by %v, %+v, want -1, buy 20", c.OffBy, c.Action)
	}

	// with a negative total the targets are negative: the deviation is
	// relative to |target| so that the sign still tells buy from sell.
	tree = twoSiblings(t, 0.5, -100, 0.5, 0)
	if alloc, err = RebalanceRoots(tree, usd, catalog(t)); err != nil {
		t.Fatal(err)
	}
	a, b := alloc.Changes[0], alloc.Changes[1]
	if a.Target != -50 || a.OffBy != -1 || a.Action != (Action{Buy, 50}) {
		t.Errorf("A = target %v, off by %v, %+v, want -50, -1, buy 50", a.Target, a.OffBy, a.Action)
	}
	if b.Target != -50 || b.OffBy != 1 || b.Action != (Action{Sell, 50}) {
		t.Errorf("B = target %v, off by %v, %+v, want -50, 1, sell 50", b.Target, b.OffBy, b.Action)
	}
}

func TestRebalance_Currencies(t *testing.T) {
	// 100 USD in A and 1 BTC (= 100 USD) in B, rebalanced in EUR.
	tree := NewTree()
	mustAddWallet(t, tree,
		Wallet{ID: "wa", CurrencyID: "usd", Balance: 100},
		Wallet{ID: "wb", CurrencyID: "btc", Balance: 1},
	)
	mustAdd(t, tree,
		Portfolio{ID: "a", Weight: 0.5, WalletIDs: []string{"wa"}},
		Portfolio{ID: "b", Weight: 0.5, WalletIDs: []string{"wb"}},
	)
	alloc, err := Rebalance(tree, []string{"a", "b"}, eur, catalog(t))
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range alloc.Changes {
		if !near(c.Actual, 80) || !near(c.Target, 80) || !near(c.Action.Amount, 0) {
			t.Errorf("%s: actual %v target %v action %+v, want 80, 80, 0", c.Portfolio.ID, c.Actual, c.Target, c.Action)
		}
	}
	if alloc.BaseCurrency.ID != "eur" {
		t.Errorf("BaseCurrency = %q, want eur", alloc.BaseCurrency.ID)
	}
}

func TestRebalance_Tree(t *testing.T) {
	tree := sampleTree(t)
	c := catalog(t)

	// stocks holds 100 USD directly plus 80 EUR through "us": 200 USD.
	// crypto holds 2 BTC: 200 USD.
	alloc, err := RebalanceChildren(tree, "root", usd, c)
	if err != nil {
		t.Fatal(err)
	}
	stocks, crypto := alloc.Changes[0], alloc.Changes[1]
	if !near(stocks.Actual, 200) || !near(crypto.Actual, 200) {
		t.Errorf("actuals = %v, %v, want 200, 200", stocks.Actual, crypto.Actual)
	}
	if len(stocks.Wallets) != 2 {
		t.Errorf("len(stocks.Wallets) = %d, want 2", len(stocks.Wallets))
	}
	// targets are 240 and 160.
	if stocks.Action.Type != Buy || !near(stocks.Action.Amount, 40) {
		t.Errorf("stocks action = %+v, want buy 40", stocks.Action)
	}
	if crypto.Action.Type != Sell || !near(crypto.Action.Amount, 40) {
		t.Errorf("crypto action = %+v, want sell 40", crypto.Action)
	}

	// the parent total is the sum of the children's actual values.
	parent, err := Rebalance(tree, []string{"root"}, usd, c)
	if err != nil {
		t.Fatal(err)
	}
	if !near(parent.Changes[0].Actual, alloc.TotalActual()) {
		t.Errorf("root actual = %v, want %v", parent.Changes[0].Actual, alloc.TotalActual())
	}
}

func TestRebalance_Invariants(t *testing.T) {
	tree := twoSiblings(t, 0.3, 123.45, 0.7, 987.6)
	c := catalog(t)
	alloc, err := RebalanceRoots(tree, usd, c)
	if err != nil {
		t.Fatal(err)
	}
	for _, ch := range alloc.Changes {
		if ch.OffBy > 0 && ch.Action.Type != Sell {
			t.Errorf("%s: off by %v with action %v, want sell", ch.Portfolio.ID, ch.OffBy, ch.Action.Type)
		}
		if ch.OffBy <= 0 && ch.Action.Type != Buy {
			t.Errorf("%s: off by %v with action %v, want buy", ch.Portfolio.ID, ch.OffBy, ch.Action.Type)
		}
		if got := math.Abs(ch.Actual - ch.Target); !near(ch.Action.Amount, got) {
			t.Errorf("%s: action amount %v, want |actual-target| = %v", ch.Portfolio.ID, ch.Action.Amount, got)
		}
	}

	// applying the actions yields no further action.
	balanced := twoSiblings(t, 0.3, alloc.Changes[0].Target, 0.7, alloc.Changes[1].Target)
	again, err := RebalanceRoots(balanced, usd, c)
	if err != nil {
		t.Fatal(err)
	}
	for _, ch := range again.Changes {
		if !near(ch.Action.Amount, 0) || !near(ch.OffBy, 0) {
			t.Errorf("%s: after rebalance action = %+v off by %v, want no-op", ch.Portfolio.ID, ch.Action, ch.OffBy)
		}
	}

	// inputs are not modified.
	w, _ := tree.Wallet("wa")
	if w.Balance != 123.45 {
		t.Errorf("wallet balance = %v, want 123.45 (untouched)", w.Balance)
	}
}

func TestRebalance_Idempotent(t *testing.T) {
	tree := sampleTree(t)
	c := catalog(t)
	portfolios, wallets := snapshot(tree)

	first, err := RebalanceRoots(tree, eur, c)
	if err != nil {
		t.Fatal(err)
	}
	second, err := RebalanceRoots(tree, eur, c)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.Changes, second.Changes) {
		t.Errorf("second RebalanceRoots() changes = %+v, want %+v", second.Changes, first.Changes)
	}
	if children, err := RebalanceChildren(tree, "stocks", eur, c); err != nil || len(children.Changes) != 2 {
		t.Fatalf("RebalanceChildren(stocks) = %v, %v", children, err)
	}

	gotPortfolios, gotWallets := snapshot(tree)
	if !reflect.DeepEqual(gotPortfolios, portfolios) {
		t.Errorf("portfolios = %+v, want %+v (untouched)", gotPortfolios, portfolios)
	}
	if !reflect.DeepEqual(gotWallets, wallets) {
		t.Errorf("wallets = %+v, want %+v (untouched)", gotWallets, wallets)
	}
}

// snapshot copies the portfolios and wallets of 'tree' by value.
func snapshot(tree *Tree) ([]Portfolio, []Wallet) {
	var portfolios []Portfolio
	for _, p := range tree.All() {
		q := *p
		q.ChildIDs = slices.Clone(p.ChildIDs)
		q.WalletIDs = slices.Clone(p.WalletIDs)
		portfolios = append(portfolios, q)
	}
	var wallets []Wallet
	for _, w := range tree.AllWallets() {
		wallets = append(wallets, *w)
	}
	return portfolios, wallets
}

func TestRebalance_Errors(t *testing.T) {
	c := catalog(t)
	tree := twoSiblings(t, 0.5, 1, 0.5, 1)

	if _, err := Rebalance(tree, []string{"a", "nope"}, usd, c); !errors.Is(err, ErrUnknownPortfolio) {
		t.Errorf("Rebalance(nope) error = %v, want ErrUnknownPortfolio", err)
	}
	if _, err := RebalanceChildren(tree, "nope", usd, c); !errors.Is(err, ErrUnknownPortfolio) {
		t.Errorf("RebalanceChildren(nope) error = %v, want ErrUnknownPortfolio", err)
	}
	bad := Currency{ID: "bad", DollarRate: 0}
	if _, err := RebalanceRoots(tree, bad, c); !errors.Is(err, ErrInvalidCurrencyRate) {
		t.Errorf("RebalanceRoots(rate 0) error = %v, want ErrInvalidCurrencyRate", err)
	}

	mustAddWallet(t, tree, Wallet{ID: "wx", CurrencyID: "gbp", Balance: 1})
	mustAdd(t, tree, Portfolio{ID: "x", Weight: 0, WalletIDs: []string{"wx"}})
	if _, err := RebalanceRoots(tree, usd, c); !errors.Is(err, ErrUnknownCurrency) {
		t.Errorf("RebalanceRoots(gbp) error = %v, want ErrUnknownCurrency", err)
	}
}

func TestRebalance_Empty(t *testing.T) {
	alloc, err := RebalanceRoots(NewTree(), usd, catalog(t))
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(alloc)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"base_currency":{"id":"usd","acronym":"USD","dollar_rate":1},"changes":[]}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}

func TestAllocation_MarshalJSON(t *testing.T) {
	tree := twoSiblings(t, 0.5, 150, 0.5, 50)
	alloc, err := RebalanceRoots(tree, usd, catalog(t))
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(alloc.Changes[0])
	if err != nil {
		t.Fatal(err)
	}
	want := `{"portfolio":{"id":"a","alias":"A","weight":0.5,"wallet_ids":["wa"]},` +
		`"wallets":[{"id":"wa","alias":"WA","currency_id":"usd","balance":150}],` +
		`"target":100,"actual":150,"off_by":0.5,"action":{"type":"sell","amount":50}}`
	if string(data) != want {
		t.Errorf("json = %s\nwant %s", data, want)
	}

	var action Action
	if err := json.Unmarshal([]byte(`{"type":"buy","amount":3}`), &action); err != nil {
		t.Fatal(err)
	}
	if action != (Action{Buy, 3}) {
		t.Errorf("Unmarshal() = %+v, want buy 3", action)
	}
	if err := json.Unmarshal([]byte(`{"type":"hold"}`), &action); err == nil {
		t.Error("Unmarshal(hold) expected an error")
	}
}
