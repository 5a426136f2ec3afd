package config

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type TxPool struct {
	ChainID           uint64   `toml:"chainId" json:"chainId"`
	BlockGasLimit     uint64   `toml:"blockGasLimit" json:"blockGasLimit"`
	AccountsAllowlist []string `toml:"accountsAllowlist" json:"accountsAllowlist"` // empty allows every sender
}

func (c TxPool) IsValid() error {
	if c.ChainID == 0 {
		return newFieldErr("chainId", isNotGreaterThanZeroErr)
	}
	if c.BlockGasLimit == 0 {
		return newFieldErr("blockGasLimit", isNotGreaterThanZeroErr)
	}
	for i, a := range c.AccountsAllowlist {
		if err := isValidAddress(a); err != nil {
			return newArrFieldErr("accountsAllowlist", i, err)
		}
	}
	return nil
}

func (c TxPool) ChainIDBig() *big.Int {
	return new(big.Int).SetUint64(c.ChainID)
}

func (c TxPool) Allowlist() []common.Address {
	if len(c.AccountsAllowlist) == 0 {
		return nil
	}
	out := make([]common.Address, len(c.AccountsAllowlist))
	for i, a := range c.AccountsAllowlist {
		out[i] = common.HexToAddress(a)
	}
	return out
}

// Allows reports whether addr may send to the pool.
func (c TxPool) Allows(addr common.Address) bool {
	if len(c.AccountsAllowlist) == 0 {
		return true
	}
	for _, a := range c.AccountsAllowlist {
		if common.HexToAddress(a) == addr {
			return true
		}
	}
	return false
}
