// Package state keeps the account and private nonce state the gateway
// validates against.
package state

import (
	"fmt"
	"math/big"

	"github.com/ConsenSysQuorum/eea-gateway/storage"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// Account is the public state of an address.
type Account struct {
	Nonce   uint64
	Balance *big.Int
}

// AccountStore reads and writes accounts in the storage.Accounts segment.
// Missing accounts read as zero nonce and zero balance.
type AccountStore struct {
	db storage.SegmentedStorage
}

func NewAccountStore(db storage.SegmentedStorage) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) Account(addr common.Address) (Account, error) {
	b, ok, err := s.db.Get(storage.Accounts, addr.Bytes())
	if err != nil {
		return Account{}, err
	}
	if !ok {
		return Account{Balance: new(big.Int)}, nil
	}
	var acc Account
	if err := rlp.DecodeBytes(b, &acc); err != nil {
		return Account{}, fmt.Errorf("decode account %s: %w", addr.Hex(), err)
	}
	if acc.Balance == nil {
		acc.Balance = new(big.Int)
	}
	return acc, nil
}

func (s *AccountStore) GetNonce(addr common.Address) (uint64, error) {
	acc, err := s.Account(addr)
	return acc.Nonce, err
}

func (s *AccountStore) GetBalance(addr common.Address) (*big.Int, error) {
	acc, err := s.Account(addr)
	if err != nil {
		return nil, err
	}
	return acc.Balance, nil
}

// Alloc writes every account of alloc in a single transaction, replacing
// any existing entry.
func (s *AccountStore) Alloc(alloc map[common.Address]Account) error {
	tx := s.db.StartTransaction()
	for addr, acc := range alloc {
		if acc.Balance == nil {
			acc.Balance = new(big.Int)
		}
		b, err := rlp.EncodeToBytes(&acc)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("encode account %s: %w", addr.Hex(), err)
		}
		if err := tx.Put(storage.Accounts, addr.Bytes(), b); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
