package privatetx

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
)

// number of RLP items in an encoded private transaction
const fieldCount = 12

var (
	ErrNotList             = errors.New("private transaction is not an RLP list")
	ErrTrailingBytes       = errors.New("trailing bytes after private transaction")
	ErrFieldCount          = errors.New("unexpected number of private transaction fields")
	ErrMissingPrivateFrom  = errors.New("privateFrom is empty")
	ErrMissingPrivacyGroup = errors.New("privacyGroupId is empty")
	ErrInvalidRecipient    = errors.New("recipient must be empty or 20 bytes")
	ErrInvalidRestriction  = errors.New("restriction must be restricted or unrestricted")
)

// DecodeHex decodes a 0x prefixed (or bare) hex string into a private
// transaction.
func DecodeHex(s string) (*Transaction, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return Decode(b)
}

// Decode decodes the RLP encoding of a private transaction. Every field is
// mandatory; item 10 is either the private-for list or the privacy group id.
func Decode(b []byte) (*Transaction, error) {
	kind, content, rest, err := rlp.Split(b)
	if err != nil {
		return nil, err
	}
	if kind != rlp.List {
		return nil, ErrNotList
	}
	if len(rest) != 0 {
		return nil, ErrTrailingBytes
	}
	items, err := splitItems(content)
	if err != nil {
		return nil, err
	}
	if len(items) != fieldCount {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrFieldCount, len(items), fieldCount)
	}

	var (
		d  TxData
		to []byte
	)
	d.GasPrice, d.Value = new(big.Int), new(big.Int)
	d.V, d.R, d.S = new(big.Int), new(big.Int), new(big.Int)
	fields := []struct {
		name string
		ptr  interface{}
	}{
		{"nonce", &d.Nonce},
		{"gasPrice", d.GasPrice},
		{"gasLimit", &d.Gas},
		{"to", &to},
		{"value", d.Value},
		{"data", &d.Data},
		{"v", d.V},
		{"r", d.R},
		{"s", d.S},
		{"privateFrom", &d.PrivateFrom},
	}
	for i, f := range fields {
		if err := rlp.DecodeBytes(items[i], f.ptr); err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
	}

	switch len(to) {
	case 0:
	case common.AddressLength:
		addr := common.BytesToAddress(to)
		d.To = &addr
	default:
		return nil, ErrInvalidRecipient
	}
	if len(d.PrivateFrom) == 0 {
		return nil, ErrMissingPrivateFrom
	}

	recipients := items[10]
	if k, _, _, _ := rlp.Split(recipients); k == rlp.List {
		d.PrivateFor = [][]byte{}
		if err := rlp.DecodeBytes(recipients, &d.PrivateFor); err != nil {
			return nil, fmt.Errorf("privateFor: %w", err)
		}
	} else {
		if err := rlp.DecodeBytes(recipients, &d.PrivacyGroupID); err != nil {
			return nil, fmt.Errorf("privacyGroupId: %w", err)
		}
		if len(d.PrivacyGroupID) == 0 {
			return nil, ErrMissingPrivacyGroup
		}
	}

	var restriction []byte
	if err := rlp.DecodeBytes(items[11], &restriction); err != nil {
		return nil, fmt.Errorf("restriction: %w", err)
	}
	d.Restriction = Restriction(restriction)
	if !d.Restriction.IsValid() {
		return nil, ErrInvalidRestriction
	}

	return &Transaction{inner: d}, nil
}

// splitItems returns the raw encoding of every item of an RLP list payload.
func splitItems(content []byte) ([]rlp.RawValue, error) {
	var items []rlp.RawValue
	for len(content) > 0 {
		_, _, rest, err := rlp.Split(content)
		if err != nil {
			return nil, err
		}
		items = append(items, rlp.RawValue(content[:len(content)-len(rest)]))
		content = rest
	}
	return items, nil
}

// EncodeRLP implements rlp.Encoder.
func (tx *Transaction) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, tx.fields(tx.inner.V, tx.inner.R, tx.inner.S))
}

// MarshalBinary returns the RLP encoding, the payload stored in the enclave.
func (tx *Transaction) MarshalBinary() ([]byte, error) {
	return rlp.EncodeToBytes(tx)
}

// fields lays out the item list shared by the wire encoding and the signing
// preimage. v, r and s are omitted when v is nil.
func (tx *Transaction) fields(v, r, s *big.Int) []interface{} {
	d := tx.inner
	to := []byte{}
	if d.To != nil {
		to = d.To.Bytes()
	}
	out := []interface{}{d.Nonce, bigOrZero(d.GasPrice), d.Gas, to, bigOrZero(d.Value), d.Data}
	if v != nil {
		out = append(out, v, bigOrZero(r), bigOrZero(s))
	}
	out = append(out, d.PrivateFrom)
	if d.PrivacyGroupID != nil {
		out = append(out, d.PrivacyGroupID)
	} else {
		recipients := d.PrivateFor
		if recipients == nil {
			recipients = [][]byte{}
		}
		out = append(out, recipients)
	}
	return append(out, []byte(d.Restriction))
}

func bigOrZero(b *big.Int) *big.Int {
	if b == nil {
		return new(big.Int)
	}
	return b
}
