package privatetx

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

var (
	ErrInvalidSig     = errors.New("invalid private transaction v, r, s values")
	ErrInvalidChainID = errors.New("private transaction signed for a different chain")
)

var (
	big27 = big.NewInt(27)
	big28 = big.NewInt(28)
	big35 = big.NewInt(35)
)

// ChainID returns the chain id encoded in v, nil for pre EIP-155 signatures.
func (tx *Transaction) ChainID() *big.Int {
	v := tx.inner.V
	if v == nil || v.Cmp(big27) == 0 || v.Cmp(big28) == 0 || v.Cmp(big35) < 0 {
		return nil
	}
	id := new(big.Int).Sub(v, big35)
	return id.Rsh(id, 1)
}

// SigningHash is the keccak256 of the sender recovery preimage. chainID is
// nil for unprotected signatures.
func (tx *Transaction) SigningHash(chainID *big.Int) common.Hash {
	var (
		enc []byte
		err error
	)
	if chainID == nil {
		enc, err = rlp.EncodeToBytes(tx.fields(nil, nil, nil))
	} else {
		enc, err = rlp.EncodeToBytes(tx.fields(chainID, common.Big0, common.Big0))
	}
	if err != nil {
		// every field is a byte string, integer or list of byte strings
		panic(fmt.Sprintf("privatetx: encoding signing preimage: %v", err))
	}
	return crypto.Keccak256Hash(enc)
}

// Sender recovers the address that signed the transaction. When the
// signature carries a chain id it must equal chainID.
func (tx *Transaction) Sender(chainID *big.Int) (common.Address, error) {
	v, r, s := tx.inner.V, tx.inner.R, tx.inner.S
	if v == nil || r == nil || s == nil {
		return common.Address{}, ErrInvalidSig
	}
	txChainID := tx.ChainID()
	var recID *big.Int
	switch {
	case txChainID == nil && (v.Cmp(big27) == 0 || v.Cmp(big28) == 0):
		recID = new(big.Int).Sub(v, big27)
	case txChainID != nil:
		if chainID != nil && txChainID.Cmp(chainID) != 0 {
			return common.Address{}, fmt.Errorf("%w: have %v, want %v", ErrInvalidChainID, txChainID, chainID)
		}
		recID = new(big.Int).Sub(v, big35)
		recID.Sub(recID, new(big.Int).Lsh(txChainID, 1))
	default:
		return common.Address{}, ErrInvalidSig
	}
	if recID.BitLen() > 8 || !crypto.ValidateSignatureValues(byte(recID.Uint64()), r, s, true) {
		return common.Address{}, ErrInvalidSig
	}

	sig := make([]byte, crypto.SignatureLength)
	r.FillBytes(sig[0:32])
	s.FillBytes(sig[32:64])
	sig[64] = byte(recID.Uint64())
	pub, err := crypto.SigToPub(tx.SigningHash(txChainID).Bytes(), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSig, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Sign returns a copy of tx signed with key. A nil chainID produces an
// unprotected (v = 27/28) signature.
func Sign(tx *Transaction, key *ecdsa.PrivateKey, chainID *big.Int) (*Transaction, error) {
	sig, err := crypto.Sign(tx.SigningHash(chainID).Bytes(), key)
	if err != nil {
		return nil, err
	}
	d := tx.inner
	d.R = new(big.Int).SetBytes(sig[0:32])
	d.S = new(big.Int).SetBytes(sig[32:64])
	if chainID == nil {
		d.V = new(big.Int).Add(big.NewInt(int64(sig[64])), big27)
	} else {
		d.V = new(big.Int).Mul(chainID, common.Big2)
		d.V.Add(d.V, big35)
		d.V.Add(d.V, big.NewInt(int64(sig[64])))
	}
	return NewTransaction(d), nil
}
