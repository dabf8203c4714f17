package persistence

import (
	"github.com/ledgersim/ledgersim/internal/exchange"
	"github.com/ledgersim/ledgersim/internal/utxo"
	"github.com/ledgersim/ledgersim/pkg/block"
	"github.com/ledgersim/ledgersim/pkg/tx"
	"github.com/ledgersim/ledgersim/pkg/types"
)

// PutBlock mirrors an accepted block into the blocks collection, keyed by
// its hash.
func (s *Store) PutBlock(b *block.Block) error {
	return s.Put(CollectionBlocks, b.Hash, b)
}

// GetBlock fetches a mirrored block by hash.
func (s *Store) GetBlock(hash string) (*block.Block, bool, error) {
	var b block.Block
	ok, err := s.Get(CollectionBlocks, hash, &b)
	if !ok || err != nil {
		return nil, ok, err
	}
	return &b, true, nil
}

// PutUTXO mirrors a live UTXO into the utxos collection, keyed by its
// composite outpoint key.
func (s *Store) PutUTXO(u *utxo.UTXO) error {
	return s.Put(CollectionUTXOs, u.Outpoint.String(), u)
}

// DeleteUTXO removes a spent UTXO's mirrored document.
func (s *Store) DeleteUTXO(key string) error {
	return s.Delete(CollectionUTXOs, key)
}

// PutMempoolEntry mirrors a pending transaction into the mempool
// collection, keyed by transaction id.
func (s *Store) PutMempoolEntry(t *tx.Transaction) error {
	return s.Put(CollectionMempool, t.ID, t)
}

// DeleteMempoolEntry removes a drained or evicted transaction's mirrored
// document.
func (s *Store) DeleteMempoolEntry(txID string) error {
	return s.Delete(CollectionMempool, txID)
}

// orderBookDocument is the mirrored shape of a pair's resting orders.
type orderBookDocument struct {
	Pair string            `bson:"pair"`
	Book exchange.Snapshot `bson:"book"`
}

// PutOrderBookSnapshot mirrors a pair's current resting orders into the
// exchange order books collection, keyed by pair.
func (s *Store) PutOrderBookSnapshot(pair string, snap exchange.Snapshot) error {
	return s.Put(CollectionExchangeOrderBooks, pair, orderBookDocument{Pair: pair, Book: snap})
}

// PutTrade mirrors a single executed trade into the exchange trade
// histories collection, keyed by a caller-assigned sequence id so repeated
// trades on the same pair don't collide.
func (s *Store) PutTrade(id string, t exchange.Trade) error {
	return s.Put(CollectionExchangeTradeHist, id, t)
}

// userBalanceDocument is the mirrored shape of one user's balance sheet.
type userBalanceDocument struct {
	UserID   string                  `bson:"user_id"`
	Balances map[string]types.Amount `bson:"balances"`
}

// PutUserBalances mirrors a user's current per-asset balances into the
// exchange user balances collection, keyed by user id.
func (s *Store) PutUserBalances(userID string, balances map[string]types.Amount) error {
	return s.Put(CollectionExchangeUserBalance, userID, userBalanceDocument{UserID: userID, Balances: balances})
}
