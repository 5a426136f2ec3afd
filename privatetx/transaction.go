// Package privatetx defines the EEA private transaction and its RLP codec.
package privatetx

import (
	"encoding/base64"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Restriction tells the enclave whether the payload may be shared beyond the
// listed participants.
type Restriction string

const (
	Restricted   Restriction = "restricted"
	Unrestricted Restriction = "unrestricted"
)

func (r Restriction) IsValid() bool {
	return r == Restricted || r == Unrestricted
}

// TxData is the mutable field set used to build a Transaction.
type TxData struct {
	Nonce    uint64
	GasPrice *big.Int
	Gas      uint64
	To       *common.Address // nil means contract creation
	Value    *big.Int
	Data     []byte
	V, R, S  *big.Int

	PrivateFrom    []byte
	PrivateFor     [][]byte // set when PrivacyGroupID is nil
	PrivacyGroupID []byte
	Restriction    Restriction
}

// Transaction is a decoded private transaction. It is never modified once
// constructed; accessors hand out copies.
type Transaction struct {
	inner TxData
}

// NewTransaction copies d into a new Transaction.
func NewTransaction(d TxData) *Transaction {
	cpy := TxData{
		Nonce:          d.Nonce,
		GasPrice:       copyBig(d.GasPrice),
		Gas:            d.Gas,
		To:             copyAddr(d.To),
		Value:          copyBig(d.Value),
		Data:           common.CopyBytes(d.Data),
		V:              copyBig(d.V),
		R:              copyBig(d.R),
		S:              copyBig(d.S),
		PrivateFrom:    common.CopyBytes(d.PrivateFrom),
		PrivacyGroupID: common.CopyBytes(d.PrivacyGroupID),
		Restriction:    d.Restriction,
	}
	if d.PrivateFor != nil {
		cpy.PrivateFor = make([][]byte, len(d.PrivateFor))
		for i, k := range d.PrivateFor {
			cpy.PrivateFor[i] = common.CopyBytes(k)
		}
	}
	if cpy.Restriction == "" {
		cpy.Restriction = Restricted
	}
	return &Transaction{inner: cpy}
}

func (tx *Transaction) Nonce() uint64 { return tx.inner.Nonce }
func (tx *Transaction) GasPrice() *big.Int { return copyBig(tx.inner.GasPrice) }
func (tx *Transaction) Gas() uint64 { return tx.inner.Gas }
func (tx *Transaction) To() *common.Address { return copyAddr(tx.inner.To) }
func (tx *Transaction) Value() *big.Int { return copyBig(tx.inner.Value) }
func (tx *Transaction) Data() []byte { return common.CopyBytes(tx.inner.Data) }
func (tx *Transaction) Restriction() Restriction { return tx.inner.Restriction }

// RawSignatureValues returns the V, R, S signature values of the transaction.
func (tx *Transaction) RawSignatureValues() (v, r, s *big.Int) {
	return copyBig(tx.inner.V), copyBig(tx.inner.R), copyBig(tx.inner.S)
}

// HasZeroValue reports whether the transaction moves no native asset.
func (tx *Transaction) HasZeroValue() bool {
	return tx.inner.Value == nil || tx.inner.Value.Sign() == 0
}

// HasPrivacyGroup reports whether the transaction is addressed to a privacy
// group rather than an explicit private-for list.
func (tx *Transaction) HasPrivacyGroup() bool {
	return tx.inner.PrivacyGroupID != nil
}

// PrivateFrom returns the sender's enclave key in base64 form.
func (tx *Transaction) PrivateFrom() string {
	return EnclaveKey(tx.inner.PrivateFrom)
}

// PrivateFor returns the recipients' enclave keys in base64 form.
func (tx *Transaction) PrivateFor() []string {
	if tx.inner.PrivateFor == nil {
		return nil
	}
	keys := make([]string, len(tx.inner.PrivateFor))
	for i, k := range tx.inner.PrivateFor {
		keys[i] = EnclaveKey(k)
	}
	return keys
}

// PrivacyGroupID returns the base64 privacy group id, empty if the
// transaction uses private-for.
func (tx *Transaction) PrivacyGroupID() string {
	if tx.inner.PrivacyGroupID == nil {
		return ""
	}
	return EnclaveKey(tx.inner.PrivacyGroupID)
}

// EnclaveKey renders raw key bytes the way enclaves expect them. Some
// clients put the base64 text itself into the RLP instead of the decoded 32
// bytes; that text is passed through unchanged.
func EnclaveKey(b []byte) string {
	if len(b) == base64.StdEncoding.EncodedLen(32) {
		if raw, err := base64.StdEncoding.DecodeString(string(b)); err == nil && len(raw) == 32 {
			return string(b)
		}
	}
	return base64.StdEncoding.EncodeToString(b)
}

func copyBig(b *big.Int) *big.Int {
	if b == nil {
		return nil
	}
	return new(big.Int).Set(b)
}

func copyAddr(a *common.Address) *common.Address {
	if a == nil {
		return nil
	}
	cpy := *a
	return &cpy
}
