package utxo

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ledgersim/ledgersim/internal/storage"
	"github.com/ledgersim/ledgersim/pkg/tx"
	"github.com/ledgersim/ledgersim/pkg/types"
)

// Key prefixes for the UTXO store.
var (
	prefixUTXO = []byte("u/") // u/<txid:index> -> UTXO JSON
	prefixAddr = []byte("a/") // a/<address>/<txid:index> -> empty (index)
)

// Store implements the UTXO set backed by a storage.DB, keyed by the
// composite "{tx_id}:{output_index}" string.
type Store struct {
	db storage.DB
}

// NewStore creates a new UTXO store backed by the given database.
func NewStore(db storage.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying database so callers that must batch UTXO
// writes together with writes to other stores (the ledger controller's
// block-acceptance commit) can confirm they share the same backend and
// obtain a storage.Batcher from it.
func (s *Store) DB() storage.DB {
	return s.db
}

func utxoKey(key string) []byte {
	return append(append([]byte{}, prefixUTXO...), []byte(key)...)
}

func addrKey(addr types.Address, key string) []byte {
	return []byte(string(prefixAddr) + string(addr) + "/" + key)
}

// Get retrieves a UTXO by its composite key.
func (s *Store) Get(key string) (*UTXO, error) {
	data, err := s.db.Get(utxoKey(key))
	if err != nil {
		return nil, fmt.Errorf("utxo get %s: %w", key, err)
	}
	var u UTXO
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("utxo unmarshal %s: %w", key, err)
	}
	return &u, nil
}

// Has checks if a UTXO exists for the given composite key.
func (s *Store) Has(key string) (bool, error) {
	return s.db.Has(utxoKey(key))
}

// scriptAddress extracts the address from a P2PKH locking script, if any.
func scriptAddress(lockingScript string) (types.Address, bool) {
	parts := strings.Fields(lockingScript)
	if len(parts) != 2 || parts[0] != "P2PKH" {
		return "", false
	}
	return types.Address(parts[1]), true
}

// Put stores a UTXO directly (non-atomic; prefer ApplyBlock for block
// acceptance, which batches deletes and puts into one commit).
func (s *Store) Put(u *UTXO) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("utxo marshal: %w", err)
	}
	key := u.Outpoint.Key()
	if err := s.db.Put(utxoKey(key), data); err != nil {
		return fmt.Errorf("utxo put: %w", err)
	}
	if addr, ok := scriptAddress(u.LockingScript); ok {
		if err := s.db.Put(addrKey(addr, key), []byte{}); err != nil {
			return fmt.Errorf("utxo index put: %w", err)
		}
	}
	return nil
}

// Delete removes a UTXO and its address index entry.
func (s *Store) Delete(key string) error {
	u, err := s.Get(key)
	if err == nil {
		if addr, ok := scriptAddress(u.LockingScript); ok {
			s.db.Delete(addrKey(addr, key))
		}
	}
	if err := s.db.Delete(utxoKey(key)); err != nil {
		return fmt.Errorf("utxo delete %s: %w", key, err)
	}
	return nil
}

// ForEach iterates over every live UTXO.
func (s *Store) ForEach(fn func(*UTXO) error) error {
	return s.db.ForEach(prefixUTXO, func(_, value []byte) error {
		var u UTXO
		if err := json.Unmarshal(value, &u); err != nil {
			return fmt.Errorf("utxo unmarshal: %w", err)
		}
		return fn(&u)
	})
}

// GetByAddress returns all live UTXOs whose locking script pays the given
// address, used by the get_balance RPC (sum of matching UTXOs).
func (s *Store) GetByAddress(addr types.Address) ([]*UTXO, error) {
	prefix := []byte(string(prefixAddr) + string(addr) + "/")
	var out []*UTXO
	err := s.db.ForEach(prefix, func(key, _ []byte) error {
		compositeKey := string(key[len(prefix):])
		u, err := s.Get(compositeKey)
		if err != nil {
			return nil // Spent concurrently with the scan; skip.
		}
		out = append(out, u)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan address index: %w", err)
	}
	return out, nil
}

// Snapshot returns the committed UTXO set as an in-memory validator
// snapshot. The ledger controller overlays this with in-block spends and
// additions to build the working snapshot a block's transactions validate
// against as they are applied in order.
func (s *Store) Snapshot() (tx.MapSnapshot, error) {
	snap := make(tx.MapSnapshot)
	err := s.ForEach(func(u *UTXO) error {
		snap[u.Outpoint.Key()] = u.Entry()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// ApplyBlock atomically deletes consumed outpoints and inserts newly
// created outputs. If the backing DB supports batching, the whole
// operation commits as a single all-or-nothing atomic unit; otherwise it
// falls back to sequential writes. Callers that must combine this delta
// with writes to other stores in one commit (the ledger controller's
// block-acceptance path) should use StageBlock against a shared batch
// instead.
func (s *Store) ApplyBlock(deleteKeys []string, adds []*UTXO) error {
	batcher, ok := s.db.(storage.Batcher)
	if !ok {
		for _, k := range deleteKeys {
			if err := s.Delete(k); err != nil {
				return err
			}
		}
		for _, u := range adds {
			if err := s.Put(u); err != nil {
				return err
			}
		}
		return nil
	}

	batch := batcher.NewBatch()
	if err := s.StageBlock(batch, deleteKeys, adds); err != nil {
		return err
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

// StageBlock stages the deletes and puts for a UTXO-set delta into batch
// without committing it, so the caller can combine them with writes to
// other stores and commit everything as a single all-or-nothing unit.
func (s *Store) StageBlock(batch storage.Batch, deleteKeys []string, adds []*UTXO) error {
	for _, key := range deleteKeys {
		existing, err := s.Get(key)
		if err == nil {
			if addr, ok := scriptAddress(existing.LockingScript); ok {
				if err := batch.Delete(addrKey(addr, key)); err != nil {
					return fmt.Errorf("stage address index delete: %w", err)
				}
			}
		}
		if err := batch.Delete(utxoKey(key)); err != nil {
			return fmt.Errorf("stage utxo delete: %w", err)
		}
	}

	for _, u := range adds {
		data, err := json.Marshal(u)
		if err != nil {
			return fmt.Errorf("utxo marshal: %w", err)
		}
		key := u.Outpoint.Key()
		if err := batch.Put(utxoKey(key), data); err != nil {
			return fmt.Errorf("stage utxo put: %w", err)
		}
		if addr, ok := scriptAddress(u.LockingScript); ok {
			if err := batch.Put(addrKey(addr, key), []byte{}); err != nil {
				return fmt.Errorf("stage address index put: %w", err)
			}
		}
	}
	return nil
}
