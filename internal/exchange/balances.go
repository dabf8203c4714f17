package exchange

import "github.com/ledgersim/ledgersim/pkg/types"

// balanceSheet holds per-user, per-asset balances. Callers always hold the
// engine's writer lock while mutating it; Balances (the read path) takes a
// defensive copy.
type balanceSheet struct {
	byUser map[string]map[string]types.Amount
}

func newBalanceSheet() *balanceSheet {
	return &balanceSheet{byUser: make(map[string]map[string]types.Amount)}
}

func (s *balanceSheet) get(user, asset string) types.Amount {
	assets, ok := s.byUser[user]
	if !ok {
		return types.Zero
	}
	bal, ok := assets[asset]
	if !ok {
		return types.Zero
	}
	return bal
}

func (s *balanceSheet) credit(user, asset string, amount types.Amount) {
	assets, ok := s.byUser[user]
	if !ok {
		assets = make(map[string]types.Amount)
		s.byUser[user] = assets
	}
	assets[asset] = assets[asset].Add(amount)
}

func (s *balanceSheet) debit(user, asset string, amount types.Amount) {
	s.credit(user, asset, types.Zero.Sub(amount))
}

func (s *balanceSheet) snapshot(user string) map[string]types.Amount {
	out := make(map[string]types.Amount)
	for asset, bal := range s.byUser[user] {
		out[asset] = bal
	}
	return out
}
