package marker

import (
	"encoding/base64"
	"errors"
	"math/big"
	"testing"

	"github.com/ConsenSysQuorum/eea-gateway/privatetx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

const (
	nodeKeyHex = "8f2a55949038a9610f50fb23b5883af3b4ecb3c3bb792cbcefbd1542c692be63"
	enclaveKey = "DyAOiF/ynpc+JXa2YAGB0bCitSlOMNm+ShmB/7M6C4w="
)

var chainID = big.NewInt(2018)

type mockNonceSource struct {
	nonce    uint64
	err      error
	calls    []common.Address
	released int
}

func (m *mockNonceSource) ReserveNonce(addr common.Address) (uint64, func(), error) {
	m.calls = append(m.calls, addr)
	if m.err != nil {
		return 0, nil, m.err
	}
	return m.nonce, func() { m.released++ }, nil
}

func privateTx() *privatetx.Transaction {
	to := common.HexToAddress("0x095e7baea6a6c7c4c2dfeb977efac326af552d87")
	return privatetx.NewTransaction(privatetx.TxData{
		Nonce:          0,
		GasPrice:       big.NewInt(1000),
		Gas:            3_000_000,
		To:             &to,
		Value:          new(big.Int),
		Data:           []byte{0xca, 0xfe},
		PrivateFrom:    []byte("alice"),
		PrivacyGroupID: []byte("group"),
	})
}

func newFactory(t *testing.T, nonces NonceSource) *Factory {
	key, err := crypto.HexToECDSA(nodeKeyHex)
	require.NoError(t, err)
	return NewFactory(key, chainID, DefaultPrivacyAddress, nonces)
}

func TestBuild(t *testing.T) {
	f := newFactory(t, &mockNonceSource{})

	mtx, err := f.Build(enclaveKey, privateTx(), 7)

	require.NoError(t, err)
	require.Equal(t, uint64(7), mtx.Nonce())
	require.Equal(t, DefaultPrivacyAddress, *mtx.To())
	require.Zero(t, mtx.Value().Sign())
	require.Equal(t, big.NewInt(1000), mtx.GasPrice())
	require.Equal(t, uint64(3_000_000), mtx.Gas())
	raw, _ := base64.StdEncoding.DecodeString(enclaveKey)
	require.Equal(t, raw, mtx.Data())

	from, err := types.Sender(types.NewEIP155Signer(chainID), mtx)
	require.NoError(t, err)
	require.Equal(t, f.Address(), from)
}

func TestBuild_Deterministic(t *testing.T) {
	a, err := newFactory(t, &mockNonceSource{}).Build(enclaveKey, privateTx(), 1)
	require.NoError(t, err)
	b, err := newFactory(t, &mockNonceSource{}).Build(enclaveKey, privateTx(), 1)
	require.NoError(t, err)

	require.Equal(t, a.Hash(), b.Hash())

	c, err := newFactory(t, &mockNonceSource{}).Build(enclaveKey, privateTx(), 2)
	require.NoError(t, err)
	require.NotEqual(t, a.Hash(), c.Hash())
}

func TestBuild_InvalidEnclaveKey(t *testing.T) {
	_, err := newFactory(t, &mockNonceSource{}).Build("not base64!", privateTx(), 0)

	require.Error(t, err)
}

func TestCreate_UsesReservedNonce(t *testing.T) {
	nonces := &mockNonceSource{nonce: 5}
	f := newFactory(t, nonces)

	mtx, err := f.Create(enclaveKey, privateTx())

	require.NoError(t, err)
	require.Equal(t, uint64(5), mtx.Nonce())
	require.Equal(t, []common.Address{f.Address()}, nonces.calls)
	require.Zero(t, nonces.released)
}

func TestCreate_ReleasesOnBuildError(t *testing.T) {
	nonces := &mockNonceSource{nonce: 5}

	_, err := newFactory(t, nonces).Create("not base64!", privateTx())

	require.Error(t, err)
	require.Equal(t, 1, nonces.released)
}

func TestCreate_NonceError(t *testing.T) {
	f := newFactory(t, &mockNonceSource{err: errors.New("unavailable")})

	_, err := f.Create(enclaveKey, privateTx())

	require.ErrorContains(t, err, "unavailable")
}

func TestEnclaveKey(t *testing.T) {
	f := newFactory(t, &mockNonceSource{})
	mtx, err := f.Build(enclaveKey, privateTx(), 0)
	require.NoError(t, err)

	key, ok := EnclaveKey(mtx, DefaultPrivacyAddress)
	require.True(t, ok)
	require.Equal(t, enclaveKey, key)

	_, ok = EnclaveKey(mtx, common.HexToAddress("0x01"))
	require.False(t, ok)
}
