// Package storage provides a segmented key/value store. Segments share one
// badger database and are kept apart by a one byte key prefix.
package storage

import (
	"errors"
	"fmt"
)

// Segment identifies a key space inside the store.
type Segment byte

const (
	_ Segment = iota
	Accounts
	PrivateNonces
)

func (s Segment) String() string {
	switch s {
	case Accounts:
		return "accounts"
	case PrivateNonces:
		return "private-nonces"
	default:
		return fmt.Sprintf("segment(%d)", byte(s))
	}
}

var ErrClosed = errors.New("storage is closed")

// Transaction is a batch of writes across segments. Writes become visible
// on Commit; Rollback drops them.
type Transaction interface {
	Put(seg Segment, key, value []byte) error
	Remove(seg Segment, key []byte) error
	Commit() error
	Rollback()
}

// SegmentedStorage is the store used by the account and private nonce state.
type SegmentedStorage interface {
	// Get returns the value of key in seg; ok is false if the key is absent.
	Get(seg Segment, key []byte) (value []byte, ok bool, err error)
	// StartTransaction returns a guarded write transaction.
	StartTransaction() Transaction
	IsClosed() bool
	Close() error
}

func segmentKey(seg Segment, key []byte) []byte {
	k := make([]byte, 1+len(key))
	k[0] = byte(seg)
	copy(k[1:], key)
	return k
}
