package state

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/ConsenSysQuorum/eea-gateway/storage"
	"github.com/ethereum/go-ethereum/common"
)

// PrivateNonceStore tracks the next private nonce of a sender within a
// privacy group.
type PrivateNonceStore struct {
	db storage.SegmentedStorage
	mu sync.Mutex // serialises read-modify-write in Advance
}

func NewPrivateNonceStore(db storage.SegmentedStorage) *PrivateNonceStore {
	return &PrivateNonceStore{db: db}
}

// Get returns the next expected private nonce, zero for an unseen pair.
func (s *PrivateNonceStore) Get(groupID string, sender common.Address) (uint64, error) {
	b, ok, err := s.db.Get(storage.PrivateNonces, nonceKey(groupID, sender))
	if err != nil || !ok {
		return 0, err
	}
	if len(b) != 8 {
		return 0, fmt.Errorf("private nonce of %s in %s: corrupt value", sender.Hex(), groupID)
	}
	return binary.BigEndian.Uint64(b), nil
}

// Advance moves the private nonce of (groupID, sender) forward to next and
// returns the stored value. It never moves it back, so a repeated or late
// advance leaves the nonce unchanged.
func (s *PrivateNonceStore) Advance(groupID string, sender common.Address, next uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.Get(groupID, sender)
	if err != nil {
		return 0, err
	}
	if next <= n {
		return n, nil
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], next)

	tx := s.db.StartTransaction()
	if err := tx.Put(storage.PrivateNonces, nonceKey(groupID, sender), b[:]); err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return next, nil
}

func nonceKey(groupID string, sender common.Address) []byte {
	k := make([]byte, 0, common.AddressLength+len(groupID))
	k = append(k, sender.Bytes()...)
	return append(k, groupID...)
}
