package config

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
)

// Account is a genesis allocation loaded into account state at startup.
type Account struct {
	Address string `toml:"address" json:"address"`
	Nonce   uint64 `toml:"nonce" json:"nonce"`
	Balance string `toml:"balance" json:"balance"` // decimal or 0x prefixed hex wei
}

func (c Account) IsValid() error {
	if c.Address == "" {
		return newFieldErr("address", isEmptyErr)
	}
	if err := isValidAddress(c.Address); err != nil {
		return newFieldErr("address", err)
	}
	if _, err := c.BalanceBig(); err != nil {
		return newFieldErr("balance", err)
	}
	return nil
}

func (c Account) AddressHex() common.Address {
	return common.HexToAddress(c.Address)
}

// BalanceBig parses Balance; an empty balance is zero.
func (c Account) BalanceBig() (*big.Int, error) {
	if c.Balance == "" {
		return new(big.Int), nil
	}
	b, ok := math.ParseBig256(c.Balance)
	if !ok {
		return nil, errors.New("is not a 256 bit integer")
	}
	return b, nil
}
