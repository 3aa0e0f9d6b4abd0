package units

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

const maxUint256 = "115792089237316195423570985008687907853269984665640564039457584007913129639935"

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain wei", "21000", "21000"},
		{"hex quantity", "0x5208", "21000"},
		{"ether", "1.5ether", "1500000000000000000"},
		{"eth alias", "2eth", "2000000000000000000"},
		{"gwei with space", "20 gwei", "20000000000"},
		{"upper case unit", "1GWEI", "1000000000"},
		{"fraction of gwei", "0.5gwei", "500000000"},
		{"leading point", ".1ether", "100000000000000000"},
		{"trailing zeros past unit", "1.000000000000000000000ether", "1000000000000000000"},
		{"explicit wei", "7wei", "7"},
		{"max value", maxUint256, maxUint256},
		{"surrounding space", "  3 finney ", "3000000000000000"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Dec())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", "", txerr.ErrInvalidValue},
		{"negative", "-1ether", txerr.ErrInvalidValue},
		{"two points", "1.2.3gwei", txerr.ErrInvalidValue},
		{"unknown unit", "5btc", txerr.ErrInvalidValue},
		{"letters only", "abc", txerr.ErrInvalidValue},
		{"fractional wei", "1.5wei", txerr.ErrInvalidValue},
		{"too many decimals", "0.0000000001gwei", txerr.ErrInvalidValue},
		{"exponent", "1e18", txerr.ErrInvalidValue},
		{"bare point", ".ether", txerr.ErrInvalidValue},
		{"overflow", "115792089237316195423570985008687907853269984665640564039457584007913129639936", txerr.ErrValueOverflow},
		{"ether overflow", maxUint256 + "ether", txerr.ErrValueOverflow},
		{"bad hex", "0xzz", txerr.ErrInvalidHex},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tc.input)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestDecimals(t *testing.T) {
	t.Parallel()

	d, err := Decimals(" Gwei ")
	require.NoError(t, err)
	assert.Equal(t, Gwei, d)

	_, err = Decimals("satoshi")
	require.ErrorIs(t, err, txerr.ErrInvalidValue)

	var txErr *txerr.TxError
	require.ErrorAs(t, err, &txErr)
	assert.Contains(t, txErr.Suggestion, "gwei")
}

func TestNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"eth", "ether", "finney", "gwei", "kwei", "mwei", "szabo", "wei"}, Names())
}

func TestFormatDecimal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		amount   *uint256.Int
		decimals int
		want     string
	}{
		{"one and a half ether", uint256.NewInt(1500000000000000000), Ether, "1.5"},
		{"nil", nil, Ether, "0"},
		{"zero", uint256.NewInt(0), Gwei, "0.0"},
		{"one wei in ether", uint256.NewInt(1), Ether, "0.000000000000000001"},
		{"whole gwei", uint256.NewInt(20000000000), Gwei, "20.0"},
		{"wei has no point", uint256.NewInt(21000), Wei, "21000"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, FormatDecimal(tc.amount, tc.decimals))
		})
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	got, err := Format(uint256.NewInt(20000000000), "GWEI")
	require.NoError(t, err)
	assert.Equal(t, "20.0 gwei", got)

	_, err = Format(uint256.NewInt(1), "bits")
	require.ErrorIs(t, err, txerr.ErrInvalidValue)
}

func TestParseFormatRoundTrip(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"1.5", "0.000000000000000001", "123456.789"} {
		q, err := ParseDecimal(input, Ether)
		require.NoError(t, err)
		assert.Equal(t, input, FormatDecimal(q, Ether))
	}
}
