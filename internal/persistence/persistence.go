// Package persistence mirrors ledger and exchange state into the six
// document-store collections a deployment built on a document database
// would expose: blocks, utxos, mempool entries, exchange order books,
// exchange trade histories, and exchange user balances. Documents are
// BSON-encoded and written through the same storage.DB the consensus-
// critical stores use, so a Store here works against the in-memory
// backend or against Badger without a live mongod — the encoding is
// document-shaped, the transport is not.
//
// This is a secondary mirror, not the system of record: internal/utxo,
// internal/chain, and internal/mempool keep their own JSON-encoded
// records and are authoritative for consensus. Store only records a
// read-friendly copy for external consumers (dashboards, analytics,
// a future real document-store migration).
package persistence

import (
	"fmt"

	"github.com/ledgersim/ledgersim/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
)

// Collection names, matching a document database's collection naming.
const (
	CollectionBlocks              = "blocks"
	CollectionUTXOs               = "utxos"
	CollectionMempool             = "mempool"
	CollectionExchangeOrderBooks  = "exchange_order_books"
	CollectionExchangeTradeHist   = "exchange_trade_histories"
	CollectionExchangeUserBalance = "exchange_user_balances"
)

// Store writes and reads BSON documents keyed by collection and id.
type Store struct {
	db storage.DB
}

// New builds a Store over an existing key-value backend.
func New(db storage.DB) *Store {
	return &Store{db: db}
}

func docKey(collection, id string) []byte {
	return []byte(collection + ":" + id)
}

// Put encodes doc as BSON and writes it under collection/id.
func (s *Store) Put(collection, id string, doc any) error {
	data, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("persistence: encode %s/%s: %w", collection, id, err)
	}
	return s.db.Put(docKey(collection, id), data)
}

// Get decodes the document at collection/id into out. ok is false if no
// document exists at that key.
func (s *Store) Get(collection, id string, out any) (bool, error) {
	key := docKey(collection, id)
	exists, err := s.db.Has(key)
	if err != nil {
		return false, fmt.Errorf("persistence: check %s/%s: %w", collection, id, err)
	}
	if !exists {
		return false, nil
	}
	data, err := s.db.Get(key)
	if err != nil {
		return false, fmt.Errorf("persistence: read %s/%s: %w", collection, id, err)
	}
	if err := bson.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("persistence: decode %s/%s: %w", collection, id, err)
	}
	return true, nil
}

// Delete removes the document at collection/id, if any.
func (s *Store) Delete(collection, id string) error {
	return s.db.Delete(docKey(collection, id))
}

// ForEach decodes every document in collection in storage order, calling fn
// with its id and raw BSON bytes. Returning a non-nil error from fn stops
// iteration early.
func (s *Store) ForEach(collection string, fn func(id string, raw bson.Raw) error) error {
	prefix := []byte(collection + ":")
	return s.db.ForEach(prefix, func(key, value []byte) error {
		id := string(key[len(prefix):])
		return fn(id, bson.Raw(value))
	})
}
