package wellets

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// A dataset is persisted in a folder as a set of JSONL files, one record per
// line, so that it stays human-readable and git-friendly:
//
//	currencies.jsonl   {"id":"usd","acronym":"USD","dollar_rate":1}
//	wallets.jsonl      {"id":"w1","alias":"Bank","currency_id":"usd","balance":100}
//	portfolios.jsonl   {"id":"p1","alias":"Stocks","weight":0.6,"parent_id":"","wallet_ids":["w1"]}
//	transactions.jsonl {"id":"t1","wallet_id":"w1","value":100,"description":"salary"}
//	settings.json      {"currency_id":"usd"}
//
// Only currencies.jsonl is required.
const (
	CurrenciesFile   = "currencies.jsonl"
	WalletsFile      = "wallets.jsonl"
	PortfoliosFile   = "portfolios.jsonl"
	TransactionsFile = "transactions.jsonl"
	SettingsFile     = "settings.json"
)

// Settings holds the user preferences stored with the dataset.
type Settings struct {
	CurrencyID string `json:"currency_id"` // base currency
}

// Dataset is everything needed to convert and rebalance: a currency catalog,
// the portfolio tree with its wallets, and the wallets' transactions.
type Dataset struct {
	Catalog      *Catalog
	Tree         *Tree
	Transactions []Transaction
	Settings     Settings
}

// BaseCurrency returns the currency selected in the settings.
func (d *Dataset) BaseCurrency() (Currency, error) {
	if d.Settings.CurrencyID == "" {
		return Currency{}, errors.Wrap(ErrUnknownCurrency, "no base currency in settings")
	}
	return d.Catalog.Lookup(d.Settings.CurrencyID)
}

// WalletTransactions returns the transactions of a wallet in file order.
func (d *Dataset) WalletTransactions(walletID string) []Transaction {
	var list []Transaction
	for _, tx := range d.Transactions {
		if tx.WalletID == walletID {
			list = append(list, tx)
		}
	}
	return list
}

// jportfolio is a portfolio as written in portfolios.jsonl.
type jportfolio struct {
	ID        string   `json:"id"`
	Alias     string   `json:"alias"`
	Weight    float64  `json:"weight"`
	ParentID  string   `json:"parent_id,omitempty"`
	WalletIDs []string `json:"wallet_ids,omitempty"`
}

// decodeJSONL reads one T per non blank line. filename is for error messages only.
func decodeJSONL[T any](filename string, r io.Reader) ([]T, error) {
	var list []T
	scanner := bufio.NewScanner(r)
	i := 0
	for scanner.Scan() {
		i++
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var v T
		if err := json.Unmarshal(line, &v); err != nil {
			return nil, errors.Wrapf(err, "format error in %s:%d", filename, i)
		}
		list = append(list, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "cannot read %q", filename)
	}
	return list, nil
}

// decodeFile decodes a JSONL file, a missing file is empty unless required.
func decodeFile[T any](folder, name string, required bool) ([]T, error) {
	filename := filepath.Join(folder, name)
	f, err := os.Open(filename)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load error: cannot open %q", filename)
	}
	defer f.Close()
	return decodeJSONL[T](filename, f)
}

// DecodeDataset reads a dataset folder.
//
// Portfolios can be listed in any order. Wallets that have transactions get
// their balance recomputed from them.
func DecodeDataset(folder string) (*Dataset, error) {
	currencies, err := decodeFile[Currency](folder, CurrenciesFile, true)
	if err != nil {
		return nil, err
	}
	catalog, err := NewCatalog(currencies...)
	if err != nil {
		return nil, errors.Wrapf(err, "load error in %q", CurrenciesFile)
	}

	txs, err := decodeFile[Transaction](folder, TransactionsFile, false)
	if err != nil {
		return nil, err
	}

	wallets, err := decodeFile[Wallet](folder, WalletsFile, false)
	if err != nil {
		return nil, err
	}
	tree := NewTree()
	for _, w := range wallets {
		if slices.ContainsFunc(txs, func(tx Transaction) bool { return tx.WalletID == w.ID }) {
			w.Balance = Balance(w.ID, txs)
		}
		if err := tree.AddWallet(w); err != nil {
			return nil, errors.Wrapf(err, "load error in %q", WalletsFile)
		}
	}
	for _, tx := range txs {
		if _, ok := tree.Wallet(tx.WalletID); !ok {
			return nil, errors.Wrapf(ErrUnknownWallet, "load error in %q: transaction %q references %q", TransactionsFile, tx.ID, tx.WalletID)
		}
	}

	portfolios, err := decodeFile[jportfolio](folder, PortfoliosFile, false)
	if err != nil {
		return nil, err
	}
	// parents first, so that file order does not matter.
	added := make(map[string]bool, len(portfolios))
	for pending := portfolios; len(pending) > 0; {
		var next []jportfolio
		for _, p := range pending {
			if p.ParentID != "" && !added[p.ParentID] {
				next = append(next, p)
				continue
			}
			err := tree.Add(Portfolio{ID: p.ID, Alias: p.Alias, Weight: p.Weight, ParentID: p.ParentID, WalletIDs: p.WalletIDs})
			if err != nil {
				return nil, errors.Wrapf(err, "load error in %q", PortfoliosFile)
			}
			added[p.ID] = true
		}
		if len(next) == len(pending) {
			return nil, unlinked(next, portfolios)
		}
		pending = next
	}

	d := &Dataset{Catalog: catalog, Tree: tree, Transactions: txs}
	data, err := os.ReadFile(filepath.Join(folder, SettingsFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, errors.Wrapf(err, "load error: cannot read %q", SettingsFile)
	default:
		if err := json.Unmarshal(data, &d.Settings); err != nil {
			return nil, errors.Wrapf(err, "format error in %q", SettingsFile)
		}
	}
	return d, nil
}

// unlinked explains why none of the 'pending' portfolios could be attached to its parent.
func unlinked(pending, all []jportfolio) error {
	for _, p := range pending {
		if !slices.ContainsFunc(all, func(q jportfolio) bool { return q.ID == p.ParentID }) {
			return errors.Wrapf(ErrUnknownPortfolio, "load error in %q: parent %q of %q", PortfoliosFile, p.ParentID, p.ID)
		}
	}
	return errors.Wrapf(ErrCycle, "load error in %q: %q", PortfoliosFile, pending[0].ID)
}

// encodeLine writes v as a single JSONL line.
func encodeLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "persist error: cannot marshal record")
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return errors.Wrap(err, "persist error: cannot write record")
	}
	return nil
}

// EncodeTransaction writes a single transaction as a JSONL line.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	return encodeLine(w, tx)
}

// AppendTransactions appends transactions to the dataset's transactions file.
func AppendTransactions(folder string, txs ...Transaction) error {
	filename := filepath.Join(folder, TransactionsFile)
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "cannot open %q", filename)
	}
	defer f.Close()
	for _, tx := range txs {
		if err := EncodeTransaction(f, tx); err != nil {
			return err
		}
	}
	return nil
}

// EncodeCurrencies rewrites the currencies file of a dataset folder.
func EncodeCurrencies(folder string, catalog *Catalog) error {
	var b strings.Builder
	for cur := range catalog.All() {
		if err := encodeLine(&b, cur); err != nil {
			return err
		}
	}
	filename := filepath.Join(folder, CurrenciesFile)
	if err := os.WriteFile(filename, []byte(b.String()), 0644); err != nil {
		return errors.Wrapf(err, "persist error: cannot write %q", filename)
	}
	return nil
}

// EncodePortfolios writes the portfolios of a tree as JSONL, in tree order.
func EncodePortfolios(w io.Writer, tree *Tree) error {
	for _, p := range tree.All() {
		jp := jportfolio{ID: p.ID, Alias: p.Alias, Weight: p.Weight, ParentID: p.ParentID, WalletIDs: p.WalletIDs}
		if err := encodeLine(w, jp); err != nil {
			return err
		}
	}
	return nil
}
