package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ethtypes "github.com/mrz1836/ethtx/internal/chain/eth/types"
	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

func TestTxFlags_Register(t *testing.T) {
	var f txFlags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.register(fs)

	require.NoError(t, fs.Parse([]string{"--to", testRecipient, "--max-fee", "50gwei", "--nonce", "0x9"}))
	assert.Equal(t, testRecipient, f.to)
	assert.Equal(t, "50gwei", f.maxFee)
	assert.Equal(t, "0x9", f.nonce)
}

func TestTxFlags_Parameters(t *testing.T) {
	f := txFlags{
		to:          testRecipient,
		nonce:       "0x9",
		gas:         "21000",
		maxFee:      "1.5gwei",
		priorityFee: "100mwei",
		value:       "0.01ether",
		data:        "0xa9059cbb",
		chainID:     "5",
	}

	p, err := f.parameters()
	require.NoError(t, err)
	assert.Equal(t, testRecipient, p.To.Hex())
	assert.Equal(t, uint64(9), p.Nonce.Uint64())
	assert.Equal(t, uint64(21000), p.GasLimit.Uint64())
	assert.Equal(t, uint64(1_500_000_000), p.MaxFeePerGas.Uint64())
	assert.Equal(t, uint64(100_000_000), p.MaxPriorityFeePerGas.Uint64())
	assert.Equal(t, uint64(10_000_000_000_000_000), p.Value.Uint64())
	assert.Equal(t, []byte{0xa9, 0x05, 0x9c, 0xbb}, p.Data)
	assert.Equal(t, uint64(5), p.ChainID.Uint64())
	assert.Nil(t, p.GasPrice)
	assert.Nil(t, p.AccessList)
}

func TestTxFlags_CreationRecipient(t *testing.T) {
	p, err := (&txFlags{to: "0x"}).parameters()
	require.NoError(t, err)
	require.NotNil(t, p.To)
	assert.True(t, p.To.IsCreation())
}

func TestTxFlags_ErrorsNameTheFlag(t *testing.T) {
	_, err := (&txFlags{gas: "lots"}).parameters()
	require.ErrorIs(t, err, txerr.ErrInvalidValue)
	assert.Contains(t, err.Error(), "--gas")
}

func TestTxFlags_Options(t *testing.T) {
	t.Run("overrides only set fields", func(t *testing.T) {
		opts, err := (&txFlags{nonce: "10", gasPrice: "1gwei"}).options()
		require.NoError(t, err)
		assert.Equal(t, uint64(10), opts.Nonce.Uint64())
		assert.Equal(t, uint64(1_000_000_000), opts.GasPrice.Uint64())
		assert.Nil(t, opts.Value)
		assert.Nil(t, opts.To)
	})

	t.Run("empty options", func(t *testing.T) {
		opts, err := (&txFlags{}).options()
		require.NoError(t, err)
		assert.True(t, opts.IsEmpty())
	})

	t.Run("chain id is fixed", func(t *testing.T) {
		_, err := (&txFlags{chainID: "5"}).options()
		require.ErrorIs(t, err, txerr.ErrInvalidInput)
	})
}

func TestParseAccessList(t *testing.T) {
	const list = `[{"address":"0x3535353535353535353535353535353535353535","storageKeys":[]}]`

	t.Run("inline", func(t *testing.T) {
		al, err := parseAccessList(list)
		require.NoError(t, err)
		require.Len(t, al, 1)
		assert.Equal(t, testRecipient, al[0].Address.Hex())
	})

	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "al.json")
		require.NoError(t, os.WriteFile(path, []byte(list), 0o600))

		al, err := parseAccessList("@" + path)
		require.NoError(t, err)
		assert.Len(t, al, 1)
	})

	t.Run("empty list", func(t *testing.T) {
		al, err := parseAccessList("[]")
		require.NoError(t, err)
		assert.NotNil(t, al)
		assert.Empty(t, al)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := parseAccessList("@/nonexistent/al.json")
		require.ErrorIs(t, err, txerr.ErrNotFound)
	})

	t.Run("bad address keeps its error", func(t *testing.T) {
		_, err := parseAccessList(`[{"address":"0x12","storageKeys":[]}]`)
		require.ErrorIs(t, err, txerr.ErrInvalidAddress)
	})
}

func TestParseTxType(t *testing.T) {
	tests := []struct {
		in      string
		want    ethtypes.TxType
		suggest string
	}{
		{in: "legacy", want: ethtypes.LegacyTxType},
		{in: "EIP1559", want: ethtypes.FeeMarketTxType},
		{in: "0x1", want: ethtypes.AccessListTxType},
		{in: "legacyy", suggest: `did you mean "legacy"?`},
		{in: "blob", suggest: "use one of legacy, eip2930, eip1559, accesslist, feemarket"},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseTxType(tc.in)
			if tc.suggest == "" {
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
				return
			}
			require.ErrorIs(t, err, txerr.ErrUnsupportedTxType)
			var te *txerr.TxError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tc.suggest, te.Suggestion)
		})
	}
}
