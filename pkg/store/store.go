// Package store persists session snapshots and round-history entries in
// an embedded Pebble database, adapted from
// uhyunpark-hyperlicked/pkg/storage's key-prefix schema: that file
// partitions blocks/certs/accounts by prefix over one pebble.DB, and
// this package does the same for sessions and history instead.
package store

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/uhyunpark/hyperlicked/pkg/session"
)

// Key schema:
//   sess:<id>            -> Snapshot
//   hist:<id>:<zero-padded-index> -> HistoryItem
const (
	prefixSession = "sess:"
	prefixHistory = "hist:"
)

// Store is the Pebble-backed implementation of session.Persister.
type Store struct {
	db *pebble.DB
}

// Open opens (or creates) a Pebble database at path.
func Open(path string) (*Store, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func sessionKey(id string) []byte {
	return []byte(prefixSession + id)
}

func historyKey(id string, idx int) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d", prefixHistory, id, idx))
}

func historyPrefix(id string) []byte {
	return []byte(fmt.Sprintf("%s%s:", prefixHistory, id))
}

func keyUpperBound(prefix []byte) []byte {
	bound := make([]byte, len(prefix))
	copy(bound, prefix)
	bound[len(bound)-1]++
	return bound
}

// UpsertSession writes the latest sanitized snapshot for a session,
// overwriting any prior value. Snapshot is already sanitized by
// pkg/session before it ever reaches here (see session.Snapshot).
func (s *Store) UpsertSession(snap session.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal session snapshot: %w", err)
	}
	if err := s.db.Set(sessionKey(snap.ID), data, pebble.Sync); err != nil {
		return fmt.Errorf("write session snapshot: %w", err)
	}
	return nil
}

// AppendHistory writes one round's history item under a monotonically
// increasing key so LoadHistory returns entries in round order.
func (s *Store) AppendHistory(sessionID string, item session.HistoryItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal history item: %w", err)
	}
	prefix := historyPrefix(sessionID)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return fmt.Errorf("iterate history: %w", err)
	}
	idx := 0
	for iter.First(); iter.Valid(); iter.Next() {
		idx++
	}
	iter.Close()
	if err := s.db.Set(historyKey(sessionID, idx), data, pebble.Sync); err != nil {
		return fmt.Errorf("write history item: %w", err)
	}
	return nil
}

// LoadAll returns every persisted session snapshot, for process-restart
// recovery (cmd/simserver wires this into session.Manager.Restore).
func (s *Store) LoadAll() ([]session.Snapshot, error) {
	prefix := []byte(prefixSession)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	defer iter.Close()

	var out []session.Snapshot
	for iter.First(); iter.Valid(); iter.Next() {
		var snap session.Snapshot
		if err := json.Unmarshal(iter.Value(), &snap); err != nil {
			continue
		}
		out = append(out, snap)
	}
	return out, nil
}

// LoadHistory returns a session's history items in round order.
func (s *Store) LoadHistory(sessionID string) ([]session.HistoryItem, error) {
	prefix := historyPrefix(sessionID)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	defer iter.Close()

	var out []session.HistoryItem
	for iter.First(); iter.Valid(); iter.Next() {
		var item session.HistoryItem
		if err := json.Unmarshal(iter.Value(), &item); err != nil {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

var _ session.Persister = (*Store)(nil)
