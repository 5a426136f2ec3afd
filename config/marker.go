package config

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const defaultPrivacyAddress = "0x000000000000000000000000000000000000007e"

// MarkerSigner is the node key privacy marker transactions are signed with.
type MarkerSigner struct {
	KeyFile        string `toml:"keyFile" json:"keyFile"`               // hex encoded secp256k1 private key
	PrivacyAddress string `toml:"privacyAddress" json:"privacyAddress"` // privacy precompile, 0x...7e if empty
}

func (c MarkerSigner) IsValid() error {
	if c.KeyFile == "" {
		return newFieldErr("keyFile", isEmptyErr)
	}
	if c.PrivacyAddress != "" {
		if err := isValidAddress(c.PrivacyAddress); err != nil {
			return newFieldErr("privacyAddress", err)
		}
	}
	return nil
}

func (c MarkerSigner) LoadKey() (*ecdsa.PrivateKey, error) {
	return crypto.LoadECDSA(c.KeyFile)
}

func (c MarkerSigner) Address() common.Address {
	if c.PrivacyAddress == "" {
		return common.HexToAddress(defaultPrivacyAddress)
	}
	return common.HexToAddress(c.PrivacyAddress)
}
