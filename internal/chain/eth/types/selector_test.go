package ethtypes

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

func TestDecodeWire_Dispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		env      Envelope
		expected TxType
	}{
		{"legacy", eip155Legacy(), LegacyTxType},
		{"access list", NewAccessListTx(MustHexToAddress(testRecipient), nil), AccessListTxType},
		{"fee market", sampleFeeMarket(), FeeMarketTxType},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			env, err := DecodeWire(tc.env.Encode(FullTransaction))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, env.Type())
		})
	}
}

func TestDecodeWire_Failures(t *testing.T) {
	t.Parallel()

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		_, err := DecodeWire(nil)
		require.ErrorIs(t, err, txerr.ErrDecode)
		require.ErrorIs(t, err, txerr.ErrUnsupportedTxType)
	})

	t.Run("unknown type", func(t *testing.T) {
		t.Parallel()
		_, err := DecodeWire([]byte{0x03, 0xc0})
		require.ErrorIs(t, err, txerr.ErrUnsupportedTxType)

		var decodeErr *DecodeError
		require.ErrorAs(t, err, &decodeErr)
		require.Len(t, decodeErr.Attempts, 1)
		assert.Equal(t, TxType(3), decodeErr.Attempts[0].Type)
		assert.Contains(t, err.Error(), "0x3")
	})

	t.Run("reports the failed attempt", func(t *testing.T) {
		t.Parallel()
		_, err := DecodeWire([]byte{0x02, 0xc0})
		require.ErrorIs(t, err, txerr.ErrDecode)
		require.ErrorIs(t, err, txerr.ErrStructuralDecode)

		var decodeErr *DecodeError
		require.ErrorAs(t, err, &decodeErr)
		require.Len(t, decodeErr.Attempts, 1)
		assert.Equal(t, FeeMarketTxType, decodeErr.Attempts[0].Type)
		assert.Equal(t, txerr.ExitInput, txerr.ExitCode(decodeErr.Attempts[0].Err))
		assert.Contains(t, err.Error(), "eip1559:")
	})

	t.Run("lenient option passes through", func(t *testing.T) {
		t.Parallel()
		raw := sampleFeeMarket().Encode(FullTransaction)
		env, err := DecodeWire(raw, WithLenientRLP())
		require.NoError(t, err)
		assert.Equal(t, raw, env.Encode(FullTransaction))
	})
}

func feeMarketJSON() map[string]any {
	return map[string]any{
		"type":                 "0x2",
		"chainId":              "0x1",
		"nonce":                "0x0",
		"to":                   testRecipient,
		"gas":                  "0x5208",
		"maxFeePerGas":         "0xba43b7400",
		"maxPriorityFeePerGas": "0x3b9aca00",
		"value":                "0x0",
		"input":                "0x",
		"accessList":           []any{},
		"v":                    "0x1",
		"r":                    "0x0",
		"s":                    "0x0",
	}
}

func TestDecodeJSON_FeeMarket(t *testing.T) {
	t.Parallel()

	env, err := DecodeJSON(feeMarketJSON())
	require.NoError(t, err)
	assert.Equal(t, sampleFeeMarket(), env)

	// without an explicit type the fee fields select the variant
	fields := feeMarketJSON()
	delete(fields, "type")
	env, err = DecodeJSON(fields)
	require.NoError(t, err)
	assert.Equal(t, FeeMarketTxType, env.Type())
}

func TestDecodeJSON_FieldRules(t *testing.T) {
	t.Parallel()

	t.Run("gas wins over gasLimit", func(t *testing.T) {
		t.Parallel()
		fields := feeMarketJSON()
		fields["gasLimit"] = "0x1"
		tx, err := FeeMarketTxFromJSON(fields)
		require.NoError(t, err)
		assert.Equal(t, uint64(21000), tx.GasLimit.Uint64())
	})

	t.Run("gasLimit when gas is absent", func(t *testing.T) {
		t.Parallel()
		fields := feeMarketJSON()
		delete(fields, "gas")
		fields["gasLimit"] = "0x1"
		tx, err := FeeMarketTxFromJSON(fields)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), tx.GasLimit.Uint64())
	})

	t.Run("input wins over data", func(t *testing.T) {
		t.Parallel()
		fields := feeMarketJSON()
		fields["input"] = "0x01"
		fields["data"] = "0x02"
		tx, err := FeeMarketTxFromJSON(fields)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x01}, tx.Data)
	})

	t.Run("data alone", func(t *testing.T) {
		t.Parallel()
		fields := feeMarketJSON()
		delete(fields, "input")
		fields["data"] = "0x02"
		tx, err := FeeMarketTxFromJSON(fields)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x02}, tx.Data)
	})

	t.Run("signature defaults to placeholder", func(t *testing.T) {
		t.Parallel()
		fields := feeMarketJSON()
		delete(fields, "v")
		delete(fields, "r")
		delete(fields, "s")
		tx, err := FeeMarketTxFromJSON(fields)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), tx.V.Uint64())
		assert.False(t, IsSigned(tx))
	})

	for _, to := range []any{nil, "0x", "0x0"} {
		t.Run("creation recipient", func(t *testing.T) {
			t.Parallel()
			fields := feeMarketJSON()
			fields["to"] = to
			tx, err := FeeMarketTxFromJSON(fields)
			require.NoError(t, err)
			assert.True(t, tx.To.IsCreation())
		})
	}
}

func TestDecodeJSON_MissingFields(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"to", "nonce", "value", "chainId"} {
		t.Run(key, func(t *testing.T) {
			t.Parallel()
			fields := feeMarketJSON()
			delete(fields, key)
			_, err := FeeMarketTxFromJSON(fields)
			require.ErrorIs(t, err, txerr.ErrMissingField)
		})
	}

	t.Run("data and input", func(t *testing.T) {
		t.Parallel()
		fields := feeMarketJSON()
		delete(fields, "input")
		_, err := FeeMarketTxFromJSON(fields)
		require.ErrorIs(t, err, txerr.ErrMissingField)
	})

	t.Run("legacy does not need chainId", func(t *testing.T) {
		t.Parallel()
		_, err := LegacyTxFromJSON(map[string]any{
			"to": testRecipient, "nonce": "0x1", "value": "0x0", "input": "0x",
		})
		require.NoError(t, err)
	})
}

func TestDecodeJSON_HexFailureIsFinal(t *testing.T) {
	t.Parallel()

	fields := feeMarketJSON()
	delete(fields, "type")
	fields["maxFeePerGas"] = "0xnothex"

	_, err := DecodeJSON(fields)
	require.ErrorIs(t, err, txerr.ErrInvalidHex)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	require.Len(t, decodeErr.Attempts, 1)
	assert.Equal(t, FeeMarketTxType, decodeErr.Attempts[0].Type)

	fields = feeMarketJSON()
	fields["to"] = "0x1234"
	_, err = DecodeJSON(fields)
	require.ErrorIs(t, err, txerr.ErrInvalidAddress)
}

func TestDecodeJSON_QuantityMustBeHexString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		nonce any
		err   error
	}{
		{"json number", json.Number("10"), txerr.ErrInvalidHex},
		{"float", 1.5, txerr.ErrInvalidHex},
		{"negative float", -1.0, txerr.ErrInvalidHex},
		{"bool", true, txerr.ErrInvalidHex},
		{"decimal string", "10", txerr.ErrInvalidHex},
		{"empty string", "", txerr.ErrInvalidHex},
		{"bare prefix", "0x", txerr.ErrInvalidHex},
		{"null", nil, txerr.ErrMissingField},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			fields := feeMarketJSON()
			fields["nonce"] = tc.nonce

			env, err := DecodeJSON(fields)
			require.ErrorIs(t, err, tc.err)
			require.ErrorIs(t, err, txerr.ErrDecode)
			assert.Nil(t, env)

			// auto-detection stops at the first malformed value too
			delete(fields, "type")
			_, err = DecodeJSON(fields)
			require.ErrorIs(t, err, tc.err)
		})
	}

	t.Run("optional null is absent", func(t *testing.T) {
		t.Parallel()
		fields := feeMarketJSON()
		fields["gas"] = nil
		fields["gasLimit"] = "0x5208"
		fields["v"] = nil
		tx, err := FeeMarketTxFromJSON(fields)
		require.NoError(t, err)
		assert.Equal(t, uint64(21000), tx.GasLimit.Uint64())
		assert.Equal(t, uint64(1), tx.V.Uint64())
	})

	t.Run("null input falls back to data", func(t *testing.T) {
		t.Parallel()
		fields := feeMarketJSON()
		fields["input"] = nil
		_, err := FeeMarketTxFromJSON(fields)
		require.ErrorIs(t, err, txerr.ErrMissingField)

		fields["data"] = "0x01"
		tx, err := FeeMarketTxFromJSON(fields)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x01}, tx.Data)
	})

	t.Run("empty recipient", func(t *testing.T) {
		t.Parallel()
		fields := feeMarketJSON()
		fields["to"] = ""
		_, err := DecodeJSON(fields)
		require.ErrorIs(t, err, txerr.ErrInvalidAddress)
	})
}

func TestDecodeJSON_NonStringType(t *testing.T) {
	t.Parallel()

	for _, typ := range []any{json.Number("2"), 2.0, false} {
		fields := feeMarketJSON()
		fields["type"] = typ
		_, err := DecodeJSON(fields)
		require.ErrorIs(t, err, txerr.ErrInvalidHex)
		require.ErrorIs(t, err, txerr.ErrDecode)
		require.NotErrorIs(t, err, txerr.ErrUnsupportedTxType)

		var decodeErr *DecodeError
		require.ErrorAs(t, err, &decodeErr)
		require.Len(t, decodeErr.Attempts, 1)
		var te *txerr.TxError
		require.ErrorAs(t, decodeErr.Attempts[0].Err, &te)
		assert.Equal(t, "type", te.Details["field"])
	}
}

func TestDecodeJSON_VariantSelection(t *testing.T) {
	t.Parallel()

	base := func() map[string]any {
		return map[string]any{
			"to":       testRecipient,
			"nonce":    "0x9",
			"value":    "0xde0b6b3a7640000",
			"gas":      "0x5208",
			"gasPrice": "0x4a817c800",
			"input":    "0x",
		}
	}

	t.Run("legacy", func(t *testing.T) {
		t.Parallel()
		fields := base()
		fields["chainId"] = "0x1"
		env, err := DecodeJSON(fields)
		require.NoError(t, err)
		assert.Equal(t, eip155Legacy(), env)
	})

	t.Run("legacy chain id from v", func(t *testing.T) {
		t.Parallel()
		fields := base()
		fields["v"] = "0x25"
		fields["r"] = "0x28ef61340bd939bc2195fe537567866003e1a15d3c71ff63e1590620aa636276"
		fields["s"] = "0x67cbe9d8997f761aecb703304b3800ccf555c9f3dc64214b297fb1966a3b6d83"
		env, err := DecodeJSON(fields)
		require.NoError(t, err)
		assert.Equal(t, eip155SignedTx, FormatHexBytes(env.Encode(FullTransaction))[2:])

		legacy, ok := env.(*LegacyTx)
		require.True(t, ok)
		assert.Equal(t, uint64(1), legacy.ChainID.Uint64())
	})

	t.Run("access list", func(t *testing.T) {
		t.Parallel()
		fields := base()
		fields["chainId"] = "0x1"
		fields["accessList"] = []any{
			map[string]any{
				"address":     "0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae",
				"storageKeys": []any{"0x0000000000000000000000000000000000000000000000000000000000000003"},
			},
		}
		env, err := DecodeJSON(fields)
		require.NoError(t, err)
		require.Equal(t, AccessListTxType, env.Type())

		tx, ok := env.(*AccessListTx)
		require.True(t, ok)
		require.Len(t, tx.AccessList, 1)
		assert.Equal(t, BytesToHash([]byte{0x03}), tx.AccessList[0].StorageKeys[0])
	})

	t.Run("explicit type wins", func(t *testing.T) {
		t.Parallel()
		fields := base()
		fields["type"] = "0x1"
		env, err := DecodeJSON(fields)
		require.NoError(t, err)
		assert.Equal(t, AccessListTxType, env.Type())
	})

	t.Run("explicit fee market type without fee fields", func(t *testing.T) {
		t.Parallel()
		fields := base()
		fields["type"] = "0x2"
		fields["chainId"] = "0x1"
		env, err := DecodeJSON(fields)
		require.NoError(t, err)
		assert.Equal(t, FeeMarketTxType, env.Type())
	})

	t.Run("unsupported type", func(t *testing.T) {
		t.Parallel()
		fields := base()
		fields["type"] = "0x3"
		_, err := DecodeJSON(fields)
		require.ErrorIs(t, err, txerr.ErrUnsupportedTxType)
		require.ErrorIs(t, err, txerr.ErrDecode)
	})

	t.Run("nothing matches", func(t *testing.T) {
		t.Parallel()
		_, err := DecodeJSON(map[string]any{"nonce": "0x1"})
		require.ErrorIs(t, err, txerr.ErrDecode)
		require.ErrorIs(t, err, txerr.ErrMissingField)

		var decodeErr *DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Len(t, decodeErr.Attempts, 3)
	})
}

func TestDecodeJSONBytes(t *testing.T) {
	t.Parallel()

	input := `{
		"type": "0x2", "chainId": "0x1", "nonce": "0x0",
		"to": "0x3535353535353535353535353535353535353535",
		"gas": "0x5208", "maxFeePerGas": "0xba43b7400", "maxPriorityFeePerGas": "0x3b9aca00",
		"value": "0x0", "input": "0x", "accessList": []
	}`
	env, err := DecodeJSONBytes([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, sampleFeeMarket(), env)

	_, err = DecodeJSONBytes([]byte("not json"))
	require.ErrorIs(t, err, txerr.ErrDecode)

	_, err = DecodeJSONBytes([]byte("null"))
	require.ErrorIs(t, err, txerr.ErrDecode)
}

func TestNewEnvelope(t *testing.T) {
	t.Parallel()

	for _, txType := range []TxType{LegacyTxType, AccessListTxType, FeeMarketTxType} {
		env, err := NewEnvelope(txType, CreationAddress(), &Parameters{ChainID: u256(1)})
		require.NoError(t, err)
		assert.Equal(t, txType, env.Type())
		assert.False(t, IsSigned(env))
	}

	_, err := NewEnvelope(TxType(7), CreationAddress(), nil)
	require.ErrorIs(t, err, txerr.ErrUnsupportedTxType)
}

func TestDecodeError_Unwrap(t *testing.T) {
	t.Parallel()

	inner := errors.New("inner")
	err := &DecodeError{Attempts: []DecodeAttempt{{Type: LegacyTxType, Err: inner}}}
	require.ErrorIs(t, err, inner)
	require.ErrorIs(t, err, txerr.ErrDecode)
	assert.Equal(t, "transaction could not be decoded (legacy: inner)", err.Error())
}
