package wellets

import (
	"slices"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// Portfolio is a weighted group of wallets and child portfolios.
//
// Parent and children are references by id, resolved through the Tree that
// owns the portfolio.
type Portfolio struct {
	ID        string   `json:"id"`
	Alias     string   `json:"alias"`
	Weight    float64  `json:"weight"` // target fraction relative to its siblings
	ParentID  string   `json:"parent_id,omitempty"`
	ChildIDs  []string `json:"children_ids,omitempty"`
	WalletIDs []string `json:"wallet_ids,omitempty"` // wallets directly attached
}

// IsRoot tells whether the portfolio has no parent.
func (p *Portfolio) IsRoot() bool { return p.ParentID == "" }

// Tree is a flat table of portfolios and wallets keyed by id.
//
// The zero value is not usable, use NewTree.
type Tree struct {
	portfolios  map[string]*Portfolio
	order       []string
	wallets     map[string]*Wallet
	walletOrder []string
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{
		portfolios: make(map[string]*Portfolio),
		wallets:    make(map[string]*Wallet),
	}
}

// AddWallet registers a wallet so that portfolios can reference it.
func (t *Tree) AddWallet(w Wallet) error {
	if w.ID == "" {
		return errors.Errorf("wallet %q has no id", w.Alias)
	}
	if _, exists := t.wallets[w.ID]; exists {
		return errors.Wrapf(ErrDuplicateID, "wallet %q", w.ID)
	}
	t.wallets[w.ID] = &w
	t.walletOrder = append(t.walletOrder, w.ID)
	return nil
}

// Add registers a portfolio. Its parent and wallets must already be known.
//
// A wallet can be attached to several portfolios only along a single branch,
// so that sibling portfolios never share a wallet.
//
// Children are maintained by the tree: p.ChildIDs is ignored.
func (t *Tree) Add(p Portfolio) error {
	if p.ID == "" {
		return errors.Errorf("portfolio %q has no id", p.Alias)
	}
	if _, exists := t.portfolios[p.ID]; exists {
		return errors.Wrapf(ErrDuplicateID, "portfolio %q", p.ID)
	}
	if p.Weight < 0 || p.Weight > 1 {
		return errors.Errorf("portfolio %q weight %v must be in [0, 1]", p.Alias, p.Weight)
	}
	var parent *Portfolio
	if p.ParentID != "" {
		var ok bool
		if parent, ok = t.portfolios[p.ParentID]; !ok {
			return errors.Wrapf(ErrUnknownPortfolio, "parent %q of %q", p.ParentID, p.Alias)
		}
	}
	for _, id := range p.WalletIDs {
		if _, ok := t.wallets[id]; !ok {
			return errors.Wrapf(ErrUnknownWallet, "%q in portfolio %q", id, p.Alias)
		}
	}
	if err := t.checkWallets([]*Portfolio{&p}, t.Path(p.ParentID)); err != nil {
		return err
	}

	p.ChildIDs = nil
	p.WalletIDs = slices.Clone(p.WalletIDs)
	t.portfolios[p.ID] = &p
	t.order = append(t.order, p.ID)
	if parent != nil {
		parent.ChildIDs = append(parent.ChildIDs, p.ID)
	}
	return nil
}

// Move attaches portfolio 'id' under 'parentID', or makes it a root if parentID is empty.
func (t *Tree) Move(id, parentID string) error {
	p, ok := t.portfolios[id]
	if !ok {
		return errors.Wrapf(ErrUnknownPortfolio, "%q", id)
	}
	if parentID != "" {
		if _, ok := t.portfolios[parentID]; !ok {
			return errors.Wrapf(ErrUnknownPortfolio, "parent %q of %q", parentID, p.Alias)
		}
		for a := parentID; a != ""; a = t.portfolios[a].ParentID {
			if a == id {
				return errors.Wrapf(ErrCycle, "%q cannot move under its descendant %q", id, parentID)
			}
		}
	}
	subtree := []*Portfolio{p}
	for i := 0; i < len(subtree); i++ {
		for _, c := range subtree[i].ChildIDs {
			subtree = append(subtree, t.portfolios[c])
		}
	}
	if err := t.checkWallets(subtree, t.Path(parentID)); err != nil {
		return err
	}

	if old, ok := t.portfolios[p.ParentID]; ok {
		old.ChildIDs = slices.DeleteFunc(old.ChildIDs, func(c string) bool { return c == id })
	}
	p.ParentID = parentID
	if parentID != "" {
		parent := t.portfolios[parentID]
		parent.ChildIDs = append(parent.ChildIDs, id)
	}
	return nil
}

// checkWallets returns an ErrDuplicateID error if a wallet of 'placed' is
// attached to a portfolio that is neither in 'placed' nor in 'branch'.
func (t *Tree) checkWallets(placed, branch []*Portfolio) error {
	allowed := make(map[string]bool, len(placed)+len(branch))
	for _, p := range slices.Concat(placed, branch) {
		allowed[p.ID] = true
	}
	for _, p := range placed {
		for _, w := range p.WalletIDs {
			for _, id := range t.order {
				if q := t.portfolios[id]; !allowed[id] && slices.Contains(q.WalletIDs, w) {
					return errors.Wrapf(ErrDuplicateID, "wallet %q of %q is already in %q", w, p.Alias, q.Alias)
				}
			}
		}
	}
	return nil
}

// Get returns the portfolio by id. The returned value must not be modified.
func (t *Tree) Get(id string) (*Portfolio, bool) {
	p, ok := t.portfolios[id]
	return p, ok
}

// Find returns a portfolio by id or by alias.
func (t *Tree) Find(key string) (*Portfolio, error) {
	if p, ok := t.portfolios[key]; ok {
		return p, nil
	}
	for _, id := range t.order {
		if p := t.portfolios[id]; p.Alias == key {
			return p, nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownPortfolio, "%q", key)
}

// Wallet returns the wallet by id. The returned value must not be modified.
func (t *Tree) Wallet(id string) (*Wallet, bool) {
	w, ok := t.wallets[id]
	return w, ok
}

// FindWallet returns a wallet by id or by alias.
func (t *Tree) FindWallet(key string) (*Wallet, error) {
	if w, ok := t.wallets[key]; ok {
		return w, nil
	}
	for _, id := range t.walletOrder {
		if w := t.wallets[id]; w.Alias == key {
			return w, nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownWallet, "%q", key)
}

// AllWallets returns every registered wallet in registration order.
func (t *Tree) AllWallets() []*Wallet {
	list := make([]*Wallet, 0, len(t.walletOrder))
	for _, id := range t.walletOrder {
		list = append(list, t.wallets[id])
	}
	return list
}

// All returns every portfolio in registration order.
func (t *Tree) All() []*Portfolio {
	list := make([]*Portfolio, 0, len(t.order))
	for _, id := range t.order {
		list = append(list, t.portfolios[id])
	}
	return list
}

// Parent returns the parent of portfolio 'id', if any.
func (t *Tree) Parent(id string) (*Portfolio, bool) {
	p, ok := t.portfolios[id]
	if !ok || p.ParentID == "" {
		return nil, false
	}
	return t.Get(p.ParentID)
}

// Children returns the direct children of portfolio 'id'.
func (t *Tree) Children(id string) []*Portfolio {
	p, ok := t.portfolios[id]
	if !ok {
		return nil
	}
	list := make([]*Portfolio, 0, len(p.ChildIDs))
	for _, c := range p.ChildIDs {
		list = append(list, t.portfolios[c])
	}
	return list
}

// Roots returns the portfolios without a parent.
func (t *Tree) Roots() []*Portfolio {
	var list []*Portfolio
	for _, id := range t.order {
		if p := t.portfolios[id]; p.IsRoot() {
			list = append(list, p)
		}
	}
	return list
}

// Siblings returns portfolio 'id' together with its siblings, in order.
func (t *Tree) Siblings(id string) ([]*Portfolio, error) {
	p, ok := t.portfolios[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownPortfolio, "%q", id)
	}
	if p.IsRoot() {
		return t.Roots(), nil
	}
	return t.Children(p.ParentID), nil
}

// DirectWallets returns the wallets attached directly to portfolio 'id'.
func (t *Tree) DirectWallets(id string) []*Wallet {
	p, ok := t.portfolios[id]
	if !ok {
		return nil
	}
	list := make([]*Wallet, 0, len(p.WalletIDs))
	for _, w := range p.WalletIDs {
		list = append(list, t.wallets[w])
	}
	return list
}

// Wallets returns the wallets attached to portfolio 'id' or to any of its
// descendants, depth-first, each wallet once.
func (t *Tree) Wallets(id string) []*Wallet {
	var list []*Wallet
	seen := make(map[string]bool)
	var walk func(id string)
	walk = func(id string) {
		p := t.portfolios[id]
		for _, w := range p.WalletIDs {
			if !seen[w] {
				seen[w] = true
				list = append(list, t.wallets[w])
			}
		}
		for _, c := range p.ChildIDs {
			walk(c)
		}
	}
	if _, ok := t.portfolios[id]; ok {
		walk(id)
	}
	return list
}

// IsWalletChild tells whether the wallet belongs to the portfolio only through
// one of its descendants.
func (t *Tree) IsWalletChild(walletID, portfolioID string) bool {
	p, ok := t.portfolios[portfolioID]
	if !ok || slices.Contains(p.WalletIDs, walletID) {
		return false
	}
	return slices.ContainsFunc(t.Wallets(portfolioID), func(w *Wallet) bool { return w.ID == walletID })
}

// Path returns the portfolios from the root down to portfolio 'id'.
func (t *Tree) Path(id string) []*Portfolio {
	var path []*Portfolio
	for p, ok := t.portfolios[id]; ok; p, ok = t.portfolios[p.ParentID] {
		path = append(path, p)
	}
	slices.Reverse(path)
	return path
}

// CheckWeights returns a *WeightSumMismatchError if the weights of the
// siblings do not sum to 1 within 'tolerance'.
//
// The allocation engine does not call it: skewed weights are a data entry
// issue to be reported to the user.
func CheckWeights(siblings []*Portfolio, tolerance float64) error {
	if len(siblings) == 0 {
		return nil
	}
	weights := make([]float64, len(siblings))
	for i, p := range siblings {
		weights[i] = p.Weight
	}
	sum := floats.Sum(weights)
	if !scalar.EqualWithinAbs(sum, 1, tolerance) {
		return &WeightSumMismatchError{ParentID: siblings[0].ParentID, Sum: sum}
	}
	return nil
}
