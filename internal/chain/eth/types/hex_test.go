package ethtypes

import (
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

func TestParseQuantity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected uint64
		err      error
	}{
		{"zero", "0x0", 0, nil},
		{"empty", "", 0, txerr.ErrInvalidHex},
		{"bare prefix", "0x", 0, txerr.ErrInvalidHex},
		{"no prefix", "5208", 0, txerr.ErrInvalidHex},
		{"decimal", "10", 0, txerr.ErrInvalidHex},
		{"padded", " 0x5208 ", 21000, nil},
		{"upper case", "0X5208", 21000, nil},
		{"leading zeros", "0x0005208", 21000, nil},
		{"gwei", "0x3b9aca00", 1000000000, nil},
		{"not hex", "0xzz", 0, txerr.ErrInvalidHex},
		{"sign", "-0x1", 0, txerr.ErrInvalidHex},
		{"decimal point", "0x1.5", 0, txerr.ErrInvalidHex},
		{"too wide", "0x1" + strings.Repeat("0", 64), 0, txerr.ErrValueOverflow},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			q, err := ParseQuantity(tc.input)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, q.Uint64())
		})
	}

	t.Run("max value", func(t *testing.T) {
		t.Parallel()
		q, err := ParseQuantity("0x" + strings.Repeat("f", 64))
		require.NoError(t, err)
		assert.Equal(t, new(uint256.Int).SetAllOne(), q)
	})
}

func TestFormatQuantity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0x0", FormatQuantity(nil))
	assert.Equal(t, "0x0", FormatQuantity(new(uint256.Int)))
	assert.Equal(t, "0x5208", FormatQuantity(uint256.NewInt(21000)))
	assert.Equal(t, "0xba43b7400", FormatQuantity(uint256.NewInt(50000000000)))
}

func TestHexBytes(t *testing.T) {
	t.Parallel()

	b, err := ParseHexBytes("0x")
	require.NoError(t, err)
	assert.NotNil(t, b)
	assert.Empty(t, b)

	b, err = ParseHexBytes("0xdeadBEEF")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, b)

	b, err = ParseHexBytes("0xabc")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0a, 0xbc}, b)

	_, err = ParseHexBytes("0xnothex")
	require.ErrorIs(t, err, txerr.ErrInvalidHex)

	assert.Equal(t, "0x", FormatHexBytes(nil))
	assert.Equal(t, "0xdeadbeef", FormatHexBytes([]byte{0xde, 0xad, 0xbe, 0xef}))
}

func TestHash(t *testing.T) {
	t.Parallel()

	key := "0x" + strings.Repeat("01", 32)
	h, err := HexToHash(key)
	require.NoError(t, err)
	assert.Equal(t, key, h.Hex())
	assert.Len(t, h.Bytes(), HashLength)

	_, err = HexToHash("0x0102")
	require.ErrorIs(t, err, txerr.ErrInvalidHex)

	var decoded Hash
	require.NoError(t, decoded.UnmarshalText([]byte(key)))
	assert.Equal(t, h, decoded)

	assert.Equal(t, byte(0x02), BytesToHash([]byte{0x02})[HashLength-1])
}
