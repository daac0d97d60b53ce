package registry

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// Key layout:
//
//	fn/<name>       JSON record
//	seq/<8 bytes>   name, big-endian insertion sequence
//	meta/seq        last assigned sequence
var (
	fnPrefix  = []byte("fn/")
	seqPrefix = []byte("seq/")
	seqKey    = []byte("meta/seq")
)

type badgerRecord struct {
	Name      string     `json:"name"`
	Commands  [][]string `json:"commands"`
	CreatedAt time.Time  `json:"created_at"`
	Seq       uint64     `json:"seq"`
}

// BadgerStore keeps functions in a Badger key-value directory.
type BadgerStore struct {
	mu sync.RWMutex
	db *badger.DB
}

// OpenBadger opens (or creates) a Badger store in dir. Writes are synced to
// disk before Save returns.
func OpenBadger(dir string, log zerolog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).
		WithSyncWrites(true).
		WithNumVersionsToKeep(1).
		WithLogger(badgerLogger{log: log.With().Str("component", "badger").Logger()})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store %s: %w", dir, err)
	}
	return &BadgerStore{db: db}, nil
}

func fnKey(name string) []byte {
	return append(append([]byte(nil), fnPrefix...), name...)
}

func seqEntryKey(seq uint64) []byte {
	k := make([]byte, len(seqPrefix)+8)
	copy(k, seqPrefix)
	binary.BigEndian.PutUint64(k[len(seqPrefix):], seq)
	return k
}

// Save writes f under a new insertion sequence number.
func (s *BadgerStore) Save(ctx context.Context, f Function) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(fnKey(f.Name)); err == nil {
			return fmt.Errorf("%q: %w", f.Name, ErrDuplicateName)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		var seq uint64
		item, err := txn.Get(seqKey)
		if err == nil {
			err = item.Value(func(val []byte) error {
				if len(val) == 8 {
					seq = binary.BigEndian.Uint64(val)
				}
				return nil
			})
			if err != nil {
				return err
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		seq++

		rec := badgerRecord{Name: f.Name, Commands: f.Commands, CreatedAt: time.Now().UTC(), Seq: seq}
		if rec.Commands == nil {
			rec.Commands = [][]string{}
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := txn.Set(fnKey(f.Name), data); err != nil {
			return err
		}
		if err := txn.Set(seqEntryKey(seq), []byte(f.Name)); err != nil {
			return err
		}
		seqBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(seqBytes, seq)
		return txn.Set(seqKey, seqBytes)
	})
}

func readRecord(txn *badger.Txn, name string) (badgerRecord, error) {
	var rec badgerRecord
	item, err := txn.Get(fnKey(name))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return rec, fmt.Errorf("%q: %w", name, ErrNotFound)
		}
		return rec, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	return rec, err
}

func (r badgerRecord) function() Function {
	return Function{Name: r.Name, Commands: r.Commands, CreatedAt: r.CreatedAt}
}

// Get returns the named function.
func (s *BadgerStore) Get(ctx context.Context, name string) (Function, error) {
	if err := ctx.Err(); err != nil {
		return Function{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var f Function
	err := s.db.View(func(txn *badger.Txn) error {
		rec, err := readRecord(txn, name)
		if err != nil {
			return err
		}
		f = rec.function()
		return nil
	})
	return f, err
}

// List walks the seq/ index, which sorts by insertion order.
func (s *BadgerStore) List(ctx context.Context) ([]Function, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Function{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = seqPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var name string
			if err := it.Item().Value(func(val []byte) error {
				name = string(val)
				return nil
			}); err != nil {
				return err
			}
			rec, err := readRecord(txn, name)
			if err != nil {
				return fmt.Errorf("index entry for %q: %w", name, err)
			}
			out = append(out, rec.function())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the record and its index entry.
func (s *BadgerStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		rec, err := readRecord(txn, name)
		if err != nil {
			return err
		}
		if err := txn.Delete(seqEntryKey(rec.Seq)); err != nil {
			return err
		}
		return txn.Delete(fnKey(name))
	})
}

// Close closes the Badger database.
func (s *BadgerStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// badgerLogger routes Badger's internal logging through zerolog. Info and
// debug chatter is demoted so a default-level log stays quiet.
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error().Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn().Msgf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug().Msgf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Trace().Msgf(format, args...)
}
