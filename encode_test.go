package wellets

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeDataset writes files into a temporary folder and returns it.
func writeDataset(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

const currenciesJSONL = `{"id":"usd","acronym":"USD","dollar_rate":1}
{"id":"eur","acronym":"EUR","dollar_rate":0.8,"favorite":true}

{"id":"btc","acronym":"BTC","dollar_rate":0.01}
`

func TestDecodeDataset(t *testing.T) {
	dir := writeDataset(t, map[string]string{
		CurrenciesFile: currenciesJSONL,
		WalletsFile: `{"id":"w1","alias":"Bank","currency_id":"usd","balance":999}
{"id":"w2","alias":"Cold","currency_id":"btc","balance":2}
`,
		TransactionsFile: `{"id":"t1","wallet_id":"w1","value":100,"description":"salary"}
{"id":"t2","wallet_id":"w1","value":-25,"description":"rent"}
`,
		// children listed before their parent
		PortfoliosFile: `{"id":"p2","alias":"Cash","weight":0.5,"parent_id":"p1","wallet_ids":["w1"]}
{"id":"p3","alias":"Crypto","weight":0.5,"parent_id":"p1","wallet_ids":["w2"]}
{"id":"p1","alias":"All","weight":1}
`,
		SettingsFile: `{"currency_id":"eur"}`,
	})

	d, err := DecodeDataset(dir)
	if err != nil {
		t.Fatalf("DecodeDataset() unexpected error: %v", err)
	}
	if d.Catalog.Len() != 3 {
		t.Errorf("Catalog.Len() = %d, want 3", d.Catalog.Len())
	}
	base, err := d.BaseCurrency()
	if err != nil || base.ID != "eur" {
		t.Errorf("BaseCurrency() = %v, %v, want eur", base, err)
	}

	w1, _ := d.Tree.Wallet("w1")
	if w1.Balance != 75 {
		t.Errorf("w1 balance = %v, want 75 (recomputed from transactions)", w1.Balance)
	}
	w2, _ := d.Tree.Wallet("w2")
	if w2.Balance != 2 {
		t.Errorf("w2 balance = %v, want 2 (as stored)", w2.Balance)
	}
	if got := len(d.WalletTransactions("w1")); got != 2 {
		t.Errorf("len(WalletTransactions(w1)) = %d, want 2", got)
	}

	if got := portfolioIDs(d.Tree.Roots()); len(got) != 1 || got[0] != "p1" {
		t.Errorf("Roots() = %v, want [p1]", got)
	}
	if got := portfolioIDs(d.Tree.Children("p1")); len(got) != 2 || got[0] != "p2" || got[1] != "p3" {
		t.Errorf("Children(p1) = %v, want [p2 p3]", got)
	}
}

func TestDecodeDataset_Minimal(t *testing.T) {
	dir := writeDataset(t, map[string]string{CurrenciesFile: currenciesJSONL})
	d, err := DecodeDataset(dir)
	if err != nil {
		t.Fatalf("DecodeDataset() unexpected error: %v", err)
	}
	if len(d.Tree.All()) != 0 || len(d.Tree.AllWallets()) != 0 {
		t.Errorf("tree is not empty")
	}
	if _, err := d.BaseCurrency(); !errors.Is(err, ErrUnknownCurrency) {
		t.Errorf("BaseCurrency() error = %v, want ErrUnknownCurrency", err)
	}
}

func TestDecodeDataset_Errors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr error
		wantMsg string
	}{
		{
			name:    "no currencies",
			files:   map[string]string{},
			wantMsg: CurrenciesFile,
		},
		{
			name:    "format error",
			files:   map[string]string{CurrenciesFile: currenciesJSONL + "{oops\n"},
			wantMsg: CurrenciesFile + ":5",
		},
		{
			name:    "invalid rate",
			files:   map[string]string{CurrenciesFile: `{"id":"x","acronym":"X","dollar_rate":0}`},
			wantErr: ErrInvalidCurrencyRate,
		},
		{
			name: "orphan transaction",
			files: map[string]string{
				CurrenciesFile:   currenciesJSONL,
				TransactionsFile: `{"id":"t1","wallet_id":"nope","value":1}`,
			},
			wantErr: ErrUnknownWallet,
		},
		{
			name: "unknown parent",
			files: map[string]string{
				CurrenciesFile: currenciesJSONL,
				PortfoliosFile: `{"id":"p1","alias":"A","weight":1,"parent_id":"nope"}`,
			},
			wantErr: ErrUnknownPortfolio,
		},
		{
			name: "cycle",
			files: map[string]string{
				CurrenciesFile: currenciesJSONL,
				PortfoliosFile: `{"id":"a","weight":1,"parent_id":"b"}
{"id":"b","weight":1,"parent_id":"a"}
`,
			},
			wantErr: ErrCycle,
		},
		{
			name: "wallet shared by siblings",
			files: map[string]string{
				CurrenciesFile: currenciesJSONL,
				WalletsFile:    `{"id":"w1","alias":"Bank","currency_id":"usd"}`,
				PortfoliosFile: `{"id":"a","weight":0.5,"parent_id":"p","wallet_ids":["w1"]}
{"id":"b","weight":0.5,"parent_id":"p","wallet_ids":["w1"]}
{"id":"p","weight":1}
`,
			},
			wantErr: ErrDuplicateID,
		},
		{
			name: "bad settings",
			files: map[string]string{
				CurrenciesFile: currenciesJSONL,
				SettingsFile:   `[]`,
			},
			wantMsg: SettingsFile,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDataset(writeDataset(t, tt.files))
			if err == nil {
				t.Fatal("DecodeDataset() expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("DecodeDataset() error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("DecodeDataset() error = %q, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestEncodeTransaction(t *testing.T) {
	var buf bytes.Buffer
	tx := Transaction{ID: "t1", WalletID: "w1", Value: -2.5, Description: "coffee"}
	if err := EncodeTransaction(&buf, tx); err != nil {
		t.Fatal(err)
	}
	want := `{"id":"t1","wallet_id":"w1","value":-2.5,"description":"coffee"}` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("EncodeTransaction() = %q, want %q", got, want)
	}
}

func TestAppendTransactions(t *testing.T) {
	dir := writeDataset(t, map[string]string{
		CurrenciesFile: currenciesJSONL,
		WalletsFile:    `{"id":"w1","alias":"Bank","currency_id":"usd"}`,
	})
	for _, v := range []float64{10, 5} {
		if err := AppendTransactions(dir, Transaction{ID: NewID(), WalletID: "w1", Value: v}); err != nil {
			t.Fatalf("AppendTransactions() unexpected error: %v", err)
		}
	}
	d, err := DecodeDataset(dir)
	if err != nil {
		t.Fatal(err)
	}
	if w, _ := d.Tree.Wallet("w1"); w.Balance != 15 {
		t.Errorf("w1 balance = %v, want 15", w.Balance)
	}
}

func TestEncodeCurrencies(t *testing.T) {
	dir := writeDataset(t, map[string]string{CurrenciesFile: currenciesJSONL})
	d, err := DecodeDataset(dir)
	if err != nil {
		t.Fatal(err)
	}
	updated, err := d.Catalog.WithRates(map[string]float64{"EUR": 0.9})
	if err != nil {
		t.Fatal(err)
	}
	if err := EncodeCurrencies(dir, updated); err != nil {
		t.Fatalf("EncodeCurrencies() unexpected error: %v", err)
	}
	d, err = DecodeDataset(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := d.Catalog.DollarRate("eur"); got != 0.9 {
		t.Errorf("DollarRate(eur) = %v, want 0.9", got)
	}
	if cur, _ := d.Catalog.Get("eur"); !cur.Favorite {
		t.Error("eur is no longer a favorite")
	}
}

func TestEncodePortfolios(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodePortfolios(&buf, sampleTree(t)); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("EncodePortfolios() wrote %d lines, want 5", len(lines))
	}
	want := `{"id":"us","alias":"US","weight":0.5,"parent_id":"stocks","wallet_ids":["w-eur"]}`
	if lines[2] != want {
		t.Errorf("line 3 = %s, want %s", lines[2], want)
	}
}
