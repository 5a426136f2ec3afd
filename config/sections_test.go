package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestMarkerSigner_IsValid(t *testing.T) {
	require.NoError(t, MarkerSigner{KeyFile: "/keys/node.key"}.IsValid())

	err := MarkerSigner{}.IsValid()
	require.EqualError(t, err, keyFileField+" is empty")

	err = MarkerSigner{KeyFile: "/keys/node.key", PrivacyAddress: "0x7e"}.IsValid()
	require.EqualError(t, err, privacyAddressField+" is not a hex address")
}

func TestMarkerSigner_Address(t *testing.T) {
	require.Equal(t, common.HexToAddress("0x7e"), MarkerSigner{}.Address())

	custom := "0x00000000000000000000000000000000000000aa"
	require.Equal(t, common.HexToAddress(custom), MarkerSigner{PrivacyAddress: custom}.Address())
}

func TestMarkerSigner_LoadKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	f := filepath.Join(t.TempDir(), "node.key")
	require.NoError(t, crypto.SaveECDSA(f, key))

	got, err := MarkerSigner{KeyFile: f}.LoadKey()

	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), crypto.PubkeyToAddress(got.PublicKey))
}

func TestMarkerSigner_LoadKey_NotAKey(t *testing.T) {
	f := filepath.Join(t.TempDir(), "node.key")
	require.NoError(t, os.WriteFile(f, []byte("zz"), 0600))

	_, err := MarkerSigner{KeyFile: f}.LoadKey()

	require.Error(t, err)
}

func TestTxPool_IsValid(t *testing.T) {
	tests := []struct {
		name       string
		c          TxPool
		wantErrMsg string
	}{
		{
			name: "valid",
			c:    TxPool{ChainID: 1, BlockGasLimit: 1},
		},
		{
			name:       "no chain id",
			c:          TxPool{BlockGasLimit: 1},
			wantErrMsg: chainIdField + " must be > 0",
		},
		{
			name:       "no block gas limit",
			c:          TxPool{ChainID: 1},
			wantErrMsg: blockGasLimitField + " must be > 0",
		},
		{
			name:       "bad allowlist entry",
			c:          TxPool{ChainID: 1, BlockGasLimit: 1, AccountsAllowlist: []string{"0xfe3b557e8fb62b89f4916b721be55ceb828dbd73", "alice"}},
			wantErrMsg: accountsAllowlistField + "[1] is not a hex address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.IsValid()

			if tt.wantErrMsg == "" {
				require.NoError(t, err)
			} else {
				require.EqualError(t, err, tt.wantErrMsg)
			}
		})
	}
}

func TestTxPool_Conversions(t *testing.T) {
	c := TxPool{ChainID: 2018, AccountsAllowlist: []string{"0xfe3b557e8fb62b89f4916b721be55ceb828dbd73"}}

	require.Equal(t, big.NewInt(2018), c.ChainIDBig())
	require.Equal(t, []common.Address{common.HexToAddress("0xfe3b557e8fb62b89f4916b721be55ceb828dbd73")}, c.Allowlist())
	require.Nil(t, TxPool{}.Allowlist())
}

func TestTxPool_Allows(t *testing.T) {
	signer := common.HexToAddress("0xfe3b557e8fb62b89f4916b721be55ceb828dbd73")

	tests := []struct {
		name      string
		allowlist []string
		want      bool
	}{
		{name: "emptyAllowsAll", want: true},
		{name: "listed", allowlist: []string{"0x627306090abab3a6e1400e9345bc60c78a8bef57", "0xFE3B557E8Fb62b89F4916B721be55cEb828dBd73"}, want: true},
		{name: "missing", allowlist: []string{"0x627306090abab3a6e1400e9345bc60c78a8bef57"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, TxPool{AccountsAllowlist: tt.allowlist}.Allows(signer))
		})
	}
}

func TestStorage_IsValid(t *testing.T) {
	require.NoError(t, Storage{Path: "/data"}.IsValid())
	require.NoError(t, Storage{InMemory: true}.IsValid())
	require.EqualError(t, Storage{}.IsValid(), pathField+" is empty")
}

func TestLog_IsValid(t *testing.T) {
	require.NoError(t, Log{File: "/var/log/gateway.log"}.IsValid())
	require.EqualError(t, Log{}.IsValid(), fileField+" is empty")
	require.EqualError(t, Log{File: "f", MaxSizeMB: -1}.IsValid(), "maxSizeMB must be >= 0")
	require.EqualError(t, Log{File: "f", MaxBackups: -1}.IsValid(), "maxBackups must be >= 0")
	require.EqualError(t, Log{File: "f", MaxAgeDays: -1}.IsValid(), "maxAgeDays must be >= 0")
}

func TestAccount_IsValid(t *testing.T) {
	tests := []struct {
		name       string
		c          Account
		wantErrMsg string
	}{
		{
			name: "hex balance",
			c:    Account{Address: "0xfe3b557e8fb62b89f4916b721be55ceb828dbd73", Balance: "0xff"},
		},
		{
			name: "decimal balance",
			c:    Account{Address: "0xfe3b557e8fb62b89f4916b721be55ceb828dbd73", Balance: "1000"},
		},
		{
			name: "no balance",
			c:    Account{Address: "0xfe3b557e8fb62b89f4916b721be55ceb828dbd73"},
		},
		{
			name:       "no address",
			c:          Account{Balance: "1"},
			wantErrMsg: addressField + " is empty",
		},
		{
			name:       "bad address",
			c:          Account{Address: "alice"},
			wantErrMsg: addressField + " is not a hex address",
		},
		{
			name:       "bad balance",
			c:          Account{Address: "0xfe3b557e8fb62b89f4916b721be55ceb828dbd73", Balance: "lots"},
			wantErrMsg: balanceField + " is not a 256 bit integer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.IsValid()

			if tt.wantErrMsg == "" {
				require.NoError(t, err)
			} else {
				require.EqualError(t, err, tt.wantErrMsg)
			}
		})
	}
}

func TestAccount_BalanceBig(t *testing.T) {
	b, err := Account{Balance: "0x10"}.BalanceBig()
	require.NoError(t, err)
	require.Equal(t, big.NewInt(16), b)

	b, err = Account{}.BalanceBig()
	require.NoError(t, err)
	require.Equal(t, 0, b.Sign())
}
