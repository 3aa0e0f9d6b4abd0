package ethtypes

import (
	"encoding/json"
	"strconv"

	"github.com/mrz1836/ethtx/internal/chain/eth/rlp"
	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

// AccessTuple is one entry of an EIP-2930 access list.
type AccessTuple struct {
	Address     Address
	StorageKeys []Hash
}

// AccessList is an ordered EIP-2930 access list.
type AccessList []AccessTuple

type accessTupleJSON struct {
	Address     string   `json:"address"`
	StorageKeys []string `json:"storageKeys"`
}

// StorageKeyCount returns the total number of storage keys in the list.
func (al AccessList) StorageKeyCount() int {
	n := 0
	for _, tuple := range al {
		n += len(tuple.StorageKeys)
	}
	return n
}

// Copy returns a deep copy of the list. A nil list copies to an empty one.
func (al AccessList) Copy() AccessList {
	out := make(AccessList, len(al))
	for i, tuple := range al {
		keys := make([]Hash, len(tuple.StorageKeys))
		copy(keys, tuple.StorageKeys)
		out[i] = AccessTuple{Address: tuple.Address, StorageKeys: keys}
	}
	return out
}

// rlpFields returns the list as [[address, [key, ...]], ...] for encoding.
func (al AccessList) rlpFields() []any {
	out := make([]any, 0, len(al))
	for _, tuple := range al {
		keys := make([]any, 0, len(tuple.StorageKeys))
		for _, key := range tuple.StorageKeys {
			keys = append(keys, key.Bytes())
		}
		out = append(out, []any{tuple.Address.Bytes(), keys})
	}
	return out
}

// decodeAccessList reads an access list from a decoded RLP list.
func decodeAccessList(item rlp.Item) (AccessList, error) {
	if !item.IsList() {
		return nil, accessListError("access list must be a list", -1)
	}

	entries := item.List()
	al := make(AccessList, 0, len(entries))
	for i, entry := range entries {
		tuple, err := decodeAccessTuple(entry, i)
		if err != nil {
			return nil, err
		}
		al = append(al, tuple)
	}
	return al, nil
}

func decodeAccessTuple(item rlp.Item, index int) (AccessTuple, error) {
	if !item.IsList() || item.Len() != 2 {
		return AccessTuple{}, accessListError("entry must be a two element list", index)
	}

	addrItem, _ := item.At(0)
	keysItem, _ := item.At(1)
	if addrItem.IsList() || len(addrItem.Bytes()) != AddressLength {
		return AccessTuple{}, accessListError("address must be 20 bytes", index)
	}
	if !keysItem.IsList() {
		return AccessTuple{}, accessListError("storage keys must be a list", index)
	}

	keys := make([]Hash, 0, keysItem.Len())
	for _, keyItem := range keysItem.List() {
		if keyItem.IsList() || len(keyItem.Bytes()) != HashLength {
			return AccessTuple{}, accessListError("storage key must be 32 bytes", index)
		}
		keys = append(keys, BytesToHash(keyItem.Bytes()))
	}

	return AccessTuple{Address: BytesToAddress(addrItem.Bytes()), StorageKeys: keys}, nil
}

func accessListError(reason string, index int) error {
	details := map[string]string{"field": "accessList", "reason": reason}
	if index >= 0 {
		details["index"] = strconv.Itoa(index)
	}
	return txerr.WithDetails(txerr.ErrStructuralDecode, details)
}

// MarshalJSON renders the tuple as {"address": ..., "storageKeys": [...]}.
func (t AccessTuple) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(t.StorageKeys))
	for _, key := range t.StorageKeys {
		keys = append(keys, key.Hex())
	}
	return json.Marshal(accessTupleJSON{Address: t.Address.Hex(), StorageKeys: keys})
}

// UnmarshalJSON parses a tuple, requiring a 20-byte address and 32-byte keys.
func (t *AccessTuple) UnmarshalJSON(data []byte) error {
	var raw accessTupleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return txerr.WithCause(txerr.WithDetails(txerr.ErrStructuralDecode, map[string]string{"field": "accessList"}), err)
	}

	addr, err := HexToAddress(raw.Address)
	if err != nil {
		return err
	}

	keys := make([]Hash, 0, len(raw.StorageKeys))
	for _, s := range raw.StorageKeys {
		key, err := HexToHash(s)
		if err != nil {
			return err
		}
		keys = append(keys, key)
	}

	*t = AccessTuple{Address: addr, StorageKeys: keys}
	return nil
}

// MarshalJSON renders a nil list as [].
func (al AccessList) MarshalJSON() ([]byte, error) {
	if al == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]AccessTuple(al))
}
