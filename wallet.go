package wellets

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Wallet is a cash or asset account denominated in a single currency.
type Wallet struct {
	ID         string  `json:"id"`
	Alias      string  `json:"alias"`
	CurrencyID string  `json:"currency_id"`
	Balance    float64 `json:"balance"` // in the wallet's own currency
}

// Transaction is a single movement on a wallet.
//
// Incoming transactions have a positive value, outgoing ones a negative value.
type Transaction struct {
	ID          string    `json:"id"`
	WalletID    string    `json:"wallet_id"`
	Value       float64   `json:"value"`
	DollarRate  float64   `json:"dollar_rate,omitempty"` // 0 means the currency's current rate
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

// NewID returns a fresh random identifier.
func NewID() string { return uuid.NewString() }

// Balance returns the signed sum of the transactions of a wallet.
func Balance(walletID string, txs []Transaction) float64 {
	values := make([]float64, 0, len(txs))
	for _, tx := range txs {
		if tx.WalletID == walletID {
			values = append(values, tx.Value)
		}
	}
	return floats.Sum(values)
}

// referenceValue returns the wallet balance in reference units.
func referenceValue(w *Wallet, catalog *Catalog) float64 {
	return ToReferenceUnit(catalog.DollarRate(w.CurrencyID), w.Balance)
}

// TotalBalance returns the sum of the wallets' balances expressed in 'base'.
//
// Wallets whose currency is unknown count at a dollar rate of 1.
func TotalBalance(wallets []*Wallet, catalog *Catalog, base Currency) float64 {
	values := make([]float64, len(wallets))
	for i, w := range wallets {
		values[i] = ConvertAmount(catalog.DollarRate(w.CurrencyID), base.DollarRate, w.Balance)
	}
	return floats.Sum(values)
}

// SortByValue sorts wallets by their value in reference units, largest first.
func SortByValue(wallets []*Wallet, catalog *Catalog) {
	slices.SortStableFunc(wallets, func(a, b *Wallet) int {
		return cmp.Compare(referenceValue(b, catalog), referenceValue(a, catalog))
	})
}

// AverageLoadPrice returns the average price paid, in 'base', for one unit of
// the wallet currency, weighted by the value of each incoming transaction.
//
// Transactions without a recorded rate count at the wallet currency's rate.
// It returns false if there are no incoming transactions.
func AverageLoadPrice(txs []Transaction, walletCurrency, base Currency) (float64, bool) {
	var paid, loaded float64
	for _, tx := range txs {
		if tx.Value <= 0 {
			continue
		}
		rate := tx.DollarRate
		if rate == 0 {
			rate = walletCurrency.DollarRate
		}
		paid += tx.Value * ConvertAmount(rate, base.DollarRate, 1)
		loaded += tx.Value
	}
	if loaded == 0 {
		return 0, false
	}
	return paid / loaded, true
}

// Transfer moves value from one wallet to another, possibly across currencies.
//
// Fees are paid in the source currency: a static amount plus a fraction of the value.
type Transfer struct {
	ID            string    `json:"id"`
	FromWalletID  string    `json:"from_wallet_id"`
	ToWalletID    string    `json:"to_wallet_id"`
	Value         float64   `json:"value"`
	StaticFee     float64   `json:"static_rate,omitempty"`
	PercentualFee float64   `json:"percentual_rate,omitempty"` // fraction of Value, e.g. 0.01
	CreatedAt     time.Time `json:"created_at,omitzero"`
}

// Validate checks the transfer is consistent on its own.
func (t Transfer) Validate() error {
	var errs []string
	if t.FromWalletID == t.ToWalletID {
		errs = append(errs, "source and destination wallets must differ")
	}
	if t.Value <= 0 {
		errs = append(errs, fmt.Sprintf("value %v must be positive", t.Value))
	}
	if t.StaticFee < 0 {
		errs = append(errs, fmt.Sprintf("static fee %v must not be negative", t.StaticFee))
	}
	if t.PercentualFee < 0 || t.PercentualFee >= 1 {
		errs = append(errs, fmt.Sprintf("percentual fee %v must be in [0, 1)", t.PercentualFee))
	}
	if t.Received() < 0 {
		errs = append(errs, "fees exceed the transferred value")
	}
	if len(errs) > 0 {
		return errors.Errorf("invalid transfer: %v", errs)
	}
	return nil
}

// Received returns the value left after fees, in the source currency.
func (t Transfer) Received() float64 {
	return t.Value - t.StaticFee - t.Value*t.PercentualFee
}

// Transactions returns the debit transaction on the source wallet and the
// credit transaction on the destination wallet.
func (t Transfer) Transactions(from, to *Wallet, catalog *Catalog) (debit, credit Transaction, err error) {
	if err := t.Validate(); err != nil {
		return debit, credit, err
	}
	if from.ID != t.FromWalletID || to.ID != t.ToWalletID {
		return debit, credit, errors.Wrapf(ErrUnknownWallet, "transfer %q does not link %q to %q", t.ID, from.ID, to.ID)
	}
	fromCur, ok := catalog.Get(from.CurrencyID)
	if !ok {
		return debit, credit, errors.Wrapf(ErrUnknownCurrency, "wallet %q currency %q", from.Alias, from.CurrencyID)
	}
	toCur, ok := catalog.Get(to.CurrencyID)
	if !ok {
		return debit, credit, errors.Wrapf(ErrUnknownCurrency, "wallet %q currency %q", to.Alias, to.CurrencyID)
	}
	received, err := Convert(fromCur, toCur, t.Received())
	if err != nil {
		return debit, credit, err
	}

	debit = Transaction{
		ID:          NewID(),
		WalletID:    from.ID,
		Value:       -t.Value,
		Description: fmt.Sprintf("transfer to %s", to.Alias),
		CreatedAt:   t.CreatedAt,
	}
	credit = Transaction{
		ID:          NewID(),
		WalletID:    to.ID,
		Value:       received,
		Description: fmt.Sprintf("transfer from %s", from.Alias),
		CreatedAt:   t.CreatedAt,
	}
	return debit, credit, nil
}
