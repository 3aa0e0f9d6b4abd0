package ethtypes

import (
	"fmt"
	"strings"

	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

// DecodeAttempt records why one envelope variant rejected the input.
type DecodeAttempt struct {
	Type TxType
	Err  error
}

// DecodeError is returned when no envelope variant accepts the input.
// It matches txerr.ErrDecode and every attempt's error with errors.Is.
type DecodeError struct {
	Attempts []DecodeAttempt
}

func (e *DecodeError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.Type.String()+": "+a.Err.Error())
	}
	return txerr.ErrDecode.Message + " (" + strings.Join(parts, "; ") + ")"
}

// Unwrap returns ErrDecode followed by the attempt errors.
func (e *DecodeError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts)+1)
	errs = append(errs, txerr.ErrDecode)
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}

type wireAttempt struct {
	txType TxType
	decode func([]byte, ...DecodeOption) (Envelope, error)
}

type jsonAttempt struct {
	txType TxType
	// applies reports whether the object carries this variant's distinguishing fields.
	applies func(map[string]any) bool
	decode  func(map[string]any) (Envelope, error)
}

//nolint:gochecknoglobals // fixed decode order
var (
	legacyWire = wireAttempt{LegacyTxType, func(b []byte, opts ...DecodeOption) (Envelope, error) {
		return DecodeLegacyTx(b, opts...)
	}}
	accessListWire = wireAttempt{AccessListTxType, func(b []byte, opts ...DecodeOption) (Envelope, error) {
		return DecodeAccessListTx(b, opts...)
	}}
	feeMarketWire = wireAttempt{FeeMarketTxType, func(b []byte, opts ...DecodeOption) (Envelope, error) {
		return DecodeFeeMarketTx(b, opts...)
	}}

	jsonAttempts = []jsonAttempt{
		{
			txType:  FeeMarketTxType,
			applies: hasAnyKey("maxFeePerGas", "maxPriorityFeePerGas"),
			decode: func(m map[string]any) (Envelope, error) {
				return FeeMarketTxFromJSON(m)
			},
		},
		{
			txType:  AccessListTxType,
			applies: hasAnyKey("accessList"),
			decode: func(m map[string]any) (Envelope, error) {
				return AccessListTxFromJSON(m)
			},
		},
		{
			txType:  LegacyTxType,
			applies: func(map[string]any) bool { return true },
			decode: func(m map[string]any) (Envelope, error) {
				return LegacyTxFromJSON(m)
			},
		},
	}
)

func hasAnyKey(keys ...string) func(map[string]any) bool {
	return func(m map[string]any) bool {
		for _, k := range keys {
			if _, ok := m[k]; ok {
				return true
			}
		}
		return false
	}
}

// wireCandidates returns the variants to try for b, chosen by the first byte.
func wireCandidates(b []byte) []wireAttempt {
	if len(b) == 0 {
		return nil
	}
	switch {
	case b[0] == byte(AccessListTxType):
		return []wireAttempt{accessListWire}
	case b[0] == byte(FeeMarketTxType):
		return []wireAttempt{feeMarketWire}
	case b[0] >= 0xc0:
		return []wireAttempt{legacyWire}
	default:
		return nil
	}
}

// DecodeWire decodes raw transaction bytes into the matching envelope.
// 0x01 selects AccessListTx, 0x02 selects FeeMarketTx and an RLP list
// prefix selects LegacyTx.
func DecodeWire(b []byte, opts ...DecodeOption) (Envelope, error) {
	candidates := wireCandidates(b)
	if len(candidates) == 0 {
		attempt := DecodeAttempt{Err: txerr.WithDetails(txerr.ErrUnsupportedTxType, map[string]string{"reason": "empty input"})}
		if len(b) > 0 {
			attempt.Type = TxType(b[0])
			attempt.Err = txerr.WithDetails(txerr.ErrUnsupportedTxType, map[string]string{"type": TxType(b[0]).Hex()})
		}
		return nil, &DecodeError{Attempts: []DecodeAttempt{attempt}}
	}

	failed := &DecodeError{}
	for _, c := range candidates {
		env, err := c.decode(b, opts...)
		if err == nil {
			return env, nil
		}
		failed.Attempts = append(failed.Attempts, DecodeAttempt{Type: c.txType, Err: err})
	}
	return nil, failed
}

// DecodeJSON decodes a JSON-RPC transaction object into the matching envelope.
// An explicit "type" selects the variant. Otherwise fee market fields select
// FeeMarketTx, an accessList alone selects AccessListTx and anything else is
// LegacyTx. Malformed hex fails the whole decode without trying other variants.
func DecodeJSON(fields map[string]any, _ ...DecodeOption) (Envelope, error) {
	attempts := jsonAttempts
	if raw, ok := fields["type"]; ok && raw != nil {
		s, isText := raw.(string)
		if !isText {
			err := txerr.WithDetails(txerr.ErrInvalidHex, map[string]string{
				"field": "type",
				"value": fmt.Sprint(raw),
			})
			return nil, &DecodeError{Attempts: []DecodeAttempt{{Type: 0xff, Err: err}}}
		}
		t, err := ParseTxType(s)
		if err != nil {
			return nil, &DecodeError{Attempts: []DecodeAttempt{{Type: unknownType(s), Err: err}}}
		}
		attempts = selectJSONAttempt(t)
	}

	failed := &DecodeError{}
	for _, a := range attempts {
		if len(attempts) > 1 && !a.applies(fields) {
			failed.Attempts = append(failed.Attempts, DecodeAttempt{Type: a.txType, Err: missingField(a.txType, "type-specific fields")})
			continue
		}
		env, err := a.decode(fields)
		if err == nil {
			return env, nil
		}
		failed.Attempts = append(failed.Attempts, DecodeAttempt{Type: a.txType, Err: err})
		if isHardFailure(err) {
			break
		}
	}
	return nil, failed
}

// unknownType labels an unsupported JSON type value for error reporting.
func unknownType(s string) TxType {
	q, err := ParseQuantity(s)
	if err != nil || !q.IsUint64() || q.Uint64() > 0xff {
		return 0xff
	}
	return TxType(q.Uint64())
}

func selectJSONAttempt(t TxType) []jsonAttempt {
	for _, a := range jsonAttempts {
		if a.txType == t {
			return []jsonAttempt{a}
		}
	}
	return nil
}

// isHardFailure reports errors in field values, as opposed to shape mismatches.
func isHardFailure(err error) bool {
	return txerr.Is(err, txerr.ErrInvalidHex) ||
		txerr.Is(err, txerr.ErrInvalidAddress) ||
		txerr.Is(err, txerr.ErrValueOverflow)
}

// NewEnvelope builds an unsigned envelope of the given type.
func NewEnvelope(t TxType, to Address, params *Parameters) (Envelope, error) {
	switch t {
	case LegacyTxType:
		return NewLegacyTx(to, params), nil
	case AccessListTxType:
		return NewAccessListTx(to, params), nil
	case FeeMarketTxType:
		return NewFeeMarketTx(to, params), nil
	default:
		return nil, txerr.WithDetails(txerr.ErrUnsupportedTxType, map[string]string{"type": t.Hex()})
	}
}
