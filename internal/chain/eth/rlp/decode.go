package rlp

import (
	"errors"
	"io"
	"math/big"

	"github.com/holiman/uint256"
)

// Decoding errors.
var (
	// ErrExpectedString is returned when a list is found where a string was required.
	ErrExpectedString = errors.New("rlp: expected string or byte")

	// ErrExpectedList is returned when a string is found where a list was required.
	ErrExpectedList = errors.New("rlp: expected list")

	// ErrCanonInt is returned for integers with leading zero bytes.
	ErrCanonInt = errors.New("rlp: non-canonical integer format")

	// ErrCanonSize is returned for non-minimal length prefixes.
	ErrCanonSize = errors.New("rlp: non-canonical size information")

	// ErrValueTooLarge is returned when a declared length exceeds the remaining input.
	ErrValueTooLarge = errors.New("rlp: value size exceeds available input length")

	// ErrTrailingBytes is returned when input remains after the top-level value.
	ErrTrailingBytes = errors.New("rlp: input contains more than one value")

	// ErrUintOverflow is returned when an integer does not fit the requested width.
	ErrUintOverflow = errors.New("rlp: uint overflow")
)

// Kind identifies the shape of a decoded item.
type Kind int

// Item kinds.
const (
	Byte Kind = iota
	String
	List
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Byte:
		return "Byte"
	case String:
		return "String"
	case List:
		return "List"
	default:
		return "Unknown"
	}
}

// Item is a node of a decoded RLP tree: either a byte string or a list of items.
// Byte strings alias the decoded input buffer.
type Item struct {
	kind    Kind
	data    []byte
	items   []Item
	lenient bool
}

// NewString returns a string item holding b.
func NewString(b []byte) Item {
	return Item{kind: String, data: b}
}

// NewList returns a list item holding items.
func NewList(items ...Item) Item {
	if items == nil {
		items = []Item{}
	}
	return Item{kind: List, items: items}
}

// Decode parses exactly one RLP value from b, rejecting non-canonical
// length prefixes and integers.
func Decode(b []byte) (Item, error) {
	return decode(b, false)
}

// DecodeLenient parses exactly one RLP value from b, accepting non-minimal
// length prefixes and integers with leading zero bytes. Truncated and
// oversized values are still rejected.
func DecodeLenient(b []byte) (Item, error) {
	return decode(b, true)
}

func decode(b []byte, lenient bool) (Item, error) {
	it, rest, err := decodeItem(b, lenient)
	if err != nil {
		return Item{}, err
	}
	if len(rest) > 0 {
		return Item{}, ErrTrailingBytes
	}
	return it, nil
}

func decodeItem(b []byte, lenient bool) (Item, []byte, error) {
	k, tagsize, size, err := readKind(b, lenient)
	if err != nil {
		return Item{}, b, err
	}
	content := b[tagsize : tagsize+size]
	rest := b[tagsize+size:]

	if k != List {
		return Item{kind: k, data: content, lenient: lenient}, rest, nil
	}

	items := []Item{}
	for len(content) > 0 {
		var it Item
		it, content, err = decodeItem(content, lenient)
		if err != nil {
			return Item{}, b, err
		}
		items = append(items, it)
	}
	return Item{kind: List, items: items, lenient: lenient}, rest, nil
}

// readKind reads the tag at the start of buf and returns the kind,
// the tag size and the content size.
func readKind(buf []byte, lenient bool) (k Kind, tagsize, contentsize uint64, err error) {
	if len(buf) == 0 {
		return 0, 0, 0, io.ErrUnexpectedEOF
	}
	b := buf[0]
	switch {
	case b < 0x80:
		k = Byte
		tagsize = 0
		contentsize = 1
	case b < 0xB8:
		k = String
		tagsize = 1
		contentsize = uint64(b - 0x80)
		// a single byte below 0x80 must be encoded as itself
		if !lenient && contentsize == 1 && len(buf) > 1 && buf[1] < 0x80 {
			return 0, 0, 0, ErrCanonSize
		}
	case b < 0xC0:
		k = String
		tagsize = uint64(b-0xB7) + 1
		contentsize, err = readSize(buf[1:], b-0xB7, lenient)
	case b < 0xF8:
		k = List
		tagsize = 1
		contentsize = uint64(b - 0xC0)
	default:
		k = List
		tagsize = uint64(b-0xF7) + 1
		contentsize, err = readSize(buf[1:], b-0xF7, lenient)
	}
	if err != nil {
		return 0, 0, 0, err
	}
	if contentsize > uint64(len(buf))-tagsize {
		return 0, 0, 0, ErrValueTooLarge
	}
	return k, tagsize, contentsize, nil
}

// readSize reads a big-endian length of slen bytes.
func readSize(b []byte, slen byte, lenient bool) (uint64, error) {
	if int(slen) > len(b) {
		return 0, io.ErrUnexpectedEOF
	}
	var s uint64
	for _, c := range b[:slen] {
		s = s<<8 | uint64(c)
	}
	if !lenient && (s <= maxShortLength || b[0] == 0) {
		return 0, ErrCanonSize
	}
	return s, nil
}

// Kind returns the item kind.
func (it Item) Kind() Kind {
	return it.kind
}

// IsList returns true if the item is a list.
func (it Item) IsList() bool {
	return it.kind == List
}

// Bytes returns the content of a string item, or nil for a list.
func (it Item) Bytes() []byte {
	if it.kind == List {
		return nil
	}
	return it.data
}

// Len returns the number of elements of a list item, or 0 for a string.
func (it Item) Len() int {
	return len(it.items)
}

// At returns the list element at index i.
func (it Item) At(i int) (Item, bool) {
	if it.kind != List || i < 0 || i >= len(it.items) {
		return Item{}, false
	}
	return it.items[i], true
}

// List returns the elements of a list item, or nil for a string.
func (it Item) List() []Item {
	if it.kind != List {
		return nil
	}
	return it.items
}

// integerBytes validates the item as an unsigned integer of at most width bytes.
func (it Item) integerBytes(width int) ([]byte, error) {
	if it.kind == List {
		return nil, ErrExpectedString
	}
	b := it.data
	if !it.lenient && len(b) > 0 && b[0] == 0 {
		return nil, ErrCanonInt
	}
	for len(b) > 0 && b[0] == 0 {
		b = b[1:]
	}
	if len(b) > width {
		return nil, ErrUintOverflow
	}
	return b, nil
}

// Uint64 interprets the item as a big-endian unsigned integer.
func (it Item) Uint64() (uint64, error) {
	b, err := it.integerBytes(8)
	if err != nil {
		return 0, err
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, nil
}

// Uint256 interprets the item as a 256-bit unsigned integer.
func (it Item) Uint256() (*uint256.Int, error) {
	b, err := it.integerBytes(32)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(b), nil
}

// BigInt interprets the item as an arbitrary-precision unsigned integer.
func (it Item) BigInt() (*big.Int, error) {
	b, err := it.integerBytes(len(it.data))
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}
