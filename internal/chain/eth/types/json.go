package ethtypes

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/holiman/uint256"

	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

// jsonReader reads typed fields from a JSON-RPC transaction object,
// keeping the first error.
type jsonReader struct {
	txType TxType
	fields map[string]any
	err    error
}

// has reports whether key carries a value. A null recipient is a value:
// it marks contract creation. Any other null counts as absent.
func (r *jsonReader) has(key string) bool {
	raw, ok := r.fields[key]
	return ok && (raw != nil || key == "to")
}

// require fails unless every key is present and non-null.
func (r *jsonReader) require(keys ...string) {
	for _, key := range keys {
		if r.err != nil {
			return
		}
		if !r.has(key) {
			r.err = missingField(r.txType, key)
		}
	}
}

// requireAny fails unless at least one key is present.
func (r *jsonReader) requireAny(keys ...string) {
	if r.err != nil {
		return
	}
	for _, key := range keys {
		if r.has(key) {
			return
		}
	}
	r.err = missingField(r.txType, strings.Join(keys, "|"))
}

func missingField(t TxType, key string) error {
	return txerr.WithDetails(txerr.ErrMissingField, map[string]string{
		"type":  t.String(),
		"field": key,
	})
}

// text returns the string value of key. Numbers and other non-string
// values are invalid hex: JSON-RPC carries every quantity as a string.
func (r *jsonReader) text(key string) (string, bool) {
	raw, ok := r.fields[key]
	if !ok || raw == nil {
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		r.err = txerr.WithDetails(txerr.ErrInvalidHex, map[string]string{
			"field": key,
			"value": fmt.Sprint(raw),
		})
		return "", false
	}
	return s, true
}

// quantity parses key as a 0x-prefixed hex quantity, returning nil when absent.
func (r *jsonReader) quantity(key string) *uint256.Int {
	if r.err != nil {
		return nil
	}
	s, ok := r.text(key)
	if !ok {
		return nil
	}
	q, err := ParseQuantity(s)
	if err != nil {
		r.err = txerr.Wrap(err, "field %s", key)
		return nil
	}
	return q
}

// firstQuantity parses the first present key.
func (r *jsonReader) firstQuantity(keys ...string) *uint256.Int {
	for _, key := range keys {
		if r.has(key) {
			return r.quantity(key)
		}
	}
	return nil
}

// bytes parses the first present key as hex data, returning an empty slice when absent.
func (r *jsonReader) bytes(keys ...string) []byte {
	if r.err != nil {
		return nil
	}
	for _, key := range keys {
		s, ok := r.text(key)
		if !ok {
			continue
		}
		b, err := ParseHexBytes(s)
		if err != nil {
			r.err = txerr.Wrap(err, "field %s", key)
			return nil
		}
		return b
	}
	return []byte{}
}

// to parses the recipient; null, "0x" and "0x0" are contract creation.
func (r *jsonReader) to() Address {
	if r.err != nil {
		return Address{}
	}
	raw := r.fields["to"]
	if raw == nil {
		return CreationAddress()
	}
	s, ok := raw.(string)
	if !ok {
		r.err = txerr.WithDetails(txerr.ErrInvalidAddress, map[string]string{"field": "to"})
		return Address{}
	}
	var addr Address
	if err := addr.UnmarshalText([]byte(s)); err != nil {
		r.err = txerr.Wrap(err, "field to")
		return Address{}
	}
	return addr
}

// accessList parses the accessList key, returning an empty list when absent.
func (r *jsonReader) accessList() AccessList {
	if r.err != nil {
		return nil
	}
	raw, ok := r.fields["accessList"]
	if !ok || raw == nil {
		return AccessList{}
	}
	data, err := json.Marshal(raw)
	if err != nil {
		r.err = txerr.WithCause(txerr.WithDetails(txerr.ErrStructuralDecode, map[string]string{"field": "accessList"}), err)
		return nil
	}
	al := AccessList{}
	if err := json.Unmarshal(data, &al); err != nil {
		if txerr.Code(err) == "GENERAL_ERROR" {
			err = txerr.WithCause(txerr.WithDetails(txerr.ErrStructuralDecode, map[string]string{"field": "accessList"}), err)
		}
		r.err = err
		return nil
	}
	return al
}

// signature parses v, r and s. Absent values take the placeholder signature.
func (r *jsonReader) signature() (v, rr, s *uint256.Int) {
	pv, pr, ps := placeholderSignature()
	v = r.quantity("v")
	rr = r.quantity("r")
	s = r.quantity("s")
	if v == nil {
		v = pv
	}
	if rr == nil {
		rr = pr
	}
	if s == nil {
		s = ps
	}
	return v, rr, s
}

// DecodeJSONBytes parses a JSON-RPC transaction object and decodes it
// with DecodeJSON.
func DecodeJSONBytes(data []byte, opts ...DecodeOption) (Envelope, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, txerr.WithCause(txerr.WithDetails(txerr.ErrDecode, map[string]string{"reason": "invalid json"}), err)
	}
	if fields == nil {
		return nil, txerr.WithDetails(txerr.ErrDecode, map[string]string{"reason": "expected a json object"})
	}
	return DecodeJSON(fields, opts...)
}
