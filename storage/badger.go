package storage

import (
	"fmt"
	"sync/atomic"

	"github.com/ConsenSysQuorum/eea-gateway/log"
	"github.com/dgraph-io/badger/v3"
)

// BadgerStorage is a SegmentedStorage backed by a badger database.
type BadgerStorage struct {
	db     *badger.DB
	closed atomic.Bool
}

var _ SegmentedStorage = (*BadgerStorage)(nil)

// Open opens (or creates) the database at path. With inMemory set path is
// ignored and nothing is written to disk.
func Open(path string, inMemory bool) (*BadgerStorage, error) {
	opts := badger.DefaultOptions(path)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(badgerLogger{path: path})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	log.Info("storage opened", "path", path, "inMemory", inMemory)
	return &BadgerStorage{db: db}, nil
}

func (s *BadgerStorage) Get(seg Segment, key []byte) ([]byte, bool, error) {
	if s.IsClosed() {
		return nil, false, ErrClosed
	}
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(segmentKey(seg, key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", seg, err)
	}
	return value, true, nil
}

func (s *BadgerStorage) StartTransaction() Transaction {
	return NewGuardedTransaction(&badgerTransaction{txn: s.db.NewTransaction(true)}, s.IsClosed)
}

func (s *BadgerStorage) IsClosed() bool {
	return s.closed.Load()
}

func (s *BadgerStorage) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

type badgerTransaction struct {
	txn *badger.Txn
}

func (t *badgerTransaction) Put(seg Segment, key, value []byte) error {
	if err := t.txn.Set(segmentKey(seg, key), value); err != nil {
		return fmt.Errorf("put %s: %w", seg, err)
	}
	return nil
}

func (t *badgerTransaction) Remove(seg Segment, key []byte) error {
	if err := t.txn.Delete(segmentKey(seg, key)); err != nil {
		return fmt.Errorf("remove %s: %w", seg, err)
	}
	return nil
}

func (t *badgerTransaction) Commit() error {
	return t.txn.Commit()
}

func (t *badgerTransaction) Rollback() {
	t.txn.Discard()
}

// badgerLogger routes badger's internal logging through the log package.
type badgerLogger struct {
	path string
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	log.Error("badger", "path", l.path, "detail", fmt.Sprintf(format, args...))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	log.Warn("badger", "path", l.path, "detail", fmt.Sprintf(format, args...))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	log.Debug("badger", "path", l.path, "detail", fmt.Sprintf(format, args...))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	log.Trace("badger", "path", l.path, "detail", fmt.Sprintf(format, args...))
}
