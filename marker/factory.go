// Package marker builds privacy marker transactions: public transactions to
// the privacy precompile whose payload is the enclave key of a private
// transaction.
package marker

import (
	"crypto/ecdsa"
	"encoding/base64"
	"fmt"
	"math/big"

	"github.com/ConsenSysQuorum/eea-gateway/privatetx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// DefaultPrivacyAddress is the address of the on-chain privacy precompile.
var DefaultPrivacyAddress = common.HexToAddress("0x000000000000000000000000000000000000007e")

// NonceSource reserves the next nonce of the marker signer. The reservation
// ends when the transaction carrying it is added to the source, or on
// release.
type NonceSource interface {
	ReserveNonce(addr common.Address) (nonce uint64, release func(), err error)
}

type Factory struct {
	key            *ecdsa.PrivateKey
	address        common.Address
	signer         types.Signer
	privacyAddress common.Address
	nonces         NonceSource
}

func NewFactory(key *ecdsa.PrivateKey, chainID *big.Int, privacyAddress common.Address, nonces NonceSource) *Factory {
	return &Factory{
		key:            key,
		address:        crypto.PubkeyToAddress(key.PublicKey),
		signer:         types.NewEIP155Signer(chainID),
		privacyAddress: privacyAddress,
		nonces:         nonces,
	}
}

// Address of the node key signing marker transactions.
func (f *Factory) Address() common.Address {
	return f.address
}

func (f *Factory) PrivacyAddress() common.Address {
	return f.privacyAddress
}

// Create builds the marker transaction for tx stored under enclaveKey with
// a reserved signer nonce. The caller must hand the result to the nonce
// source; concurrent Create calls wait until it does.
func (f *Factory) Create(enclaveKey string, tx *privatetx.Transaction) (*types.Transaction, error) {
	nonce, release, err := f.nonces.ReserveNonce(f.address)
	if err != nil {
		return nil, fmt.Errorf("marker signer nonce: %w", err)
	}
	mtx, err := f.Build(enclaveKey, tx, nonce)
	if err != nil {
		release()
		return nil, err
	}
	return mtx, nil
}

// Build is deterministic: signatures use RFC6979 nonces, so equal inputs
// give equal transactions and hashes.
func (f *Factory) Build(enclaveKey string, tx *privatetx.Transaction, nonce uint64) (*types.Transaction, error) {
	payload, err := base64.StdEncoding.DecodeString(enclaveKey)
	if err != nil {
		return nil, fmt.Errorf("enclave key %q: %w", enclaveKey, err)
	}
	to := f.privacyAddress
	return types.SignTx(types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: tx.GasPrice(),
		Gas:      tx.Gas(),
		To:       &to,
		Value:    new(big.Int),
		Data:     payload,
	}), f.signer, f.key)
}

// EnclaveKey recovers the enclave key from a marker transaction, false if
// mtx is not addressed to privacyAddress.
func EnclaveKey(mtx *types.Transaction, privacyAddress common.Address) (string, bool) {
	if mtx.To() == nil || *mtx.To() != privacyAddress {
		return "", false
	}
	return base64.StdEncoding.EncodeToString(mtx.Data()), true
}
