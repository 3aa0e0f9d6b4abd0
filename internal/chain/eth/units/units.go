// Package units converts between wei and human-readable denominations.
package units

import (
	"math/big"
	"sort"
	"strings"

	"github.com/holiman/uint256"

	ethtypes "github.com/mrz1836/ethtx/internal/chain/eth/types"
	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

// Decimal places of the common denominations.
const (
	Wei    = 0
	Kwei   = 3
	Mwei   = 6
	Gwei   = 9
	Szabo  = 12
	Finney = 15
	Ether  = 18
)

//nolint:gochecknoglobals // read-only lookup table
var denominations = map[string]int{
	"wei":    Wei,
	"kwei":   Kwei,
	"mwei":   Mwei,
	"gwei":   Gwei,
	"szabo":  Szabo,
	"finney": Finney,
	"ether":  Ether,
	"eth":    Ether,
}

// Names returns the accepted denomination suffixes in sorted order.
func Names() []string {
	names := make([]string, 0, len(denominations))
	for name := range denominations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Decimals returns the decimal places of a denomination name.
func Decimals(name string) (int, error) {
	d, ok := denominations[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, txerr.WithSuggestion(
			txerr.WithDetails(txerr.ErrInvalidValue, map[string]string{"unit": name}),
			"use one of "+strings.Join(Names(), ", "),
		)
	}
	return d, nil
}

// Parse reads an amount in wei. It accepts a hex quantity ("0x5208"), a
// plain decimal in wei ("21000") or a decimal with a denomination suffix
// ("1.5ether", "20 gwei").
func Parse(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return ethtypes.ParseQuantity(s)
	}

	number, unit := splitUnit(s)
	decimals := Wei
	if unit != "" {
		d, err := Decimals(unit)
		if err != nil {
			return nil, err
		}
		decimals = d
	}
	return ParseDecimal(number, decimals)
}

// splitUnit separates the trailing letters of s from its number.
func splitUnit(s string) (number, unit string) {
	i := len(s)
	for i > 0 && isLetter(s[i-1]) {
		i--
	}
	return strings.TrimSpace(s[:i]), s[i:]
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// ParseDecimal parses a non-negative decimal string scaled by decimals.
// For example, "1.5" with 18 decimals returns 1500000000000000000.
// Digits beyond the smallest unit are rejected rather than truncated.
//
//nolint:gocognit,gocyclo // decimal parsing requires sequential validation steps
func ParseDecimal(amount string, decimals int) (*uint256.Int, error) {
	invalid := func(reason string) error {
		return txerr.WithDetails(txerr.ErrInvalidValue, map[string]string{
			"value":  amount,
			"reason": reason,
		})
	}

	if amount == "" {
		return nil, invalid("empty amount")
	}
	if strings.HasPrefix(amount, "-") {
		return nil, invalid("negative amount")
	}

	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return nil, invalid("more than one decimal point")
	}

	intPart := parts[0]
	decPart := ""
	if len(parts) == 2 {
		decPart = parts[1]
	}
	if intPart == "" && decPart == "" {
		return nil, invalid("no digits")
	}
	if intPart == "" {
		intPart = "0"
	}
	if !isDigits(intPart) || !isDigits(decPart) {
		return nil, invalid("not a decimal number")
	}

	decPart = strings.TrimRight(decPart, "0")
	if len(decPart) > decimals {
		return nil, invalid("more decimal places than the unit allows")
	}
	decPart += strings.Repeat("0", decimals-len(decPart))

	result, ok := new(big.Int).SetString(intPart+decPart, 10)
	if !ok {
		return nil, invalid("not a decimal number")
	}

	q, overflow := uint256.FromBig(result)
	if overflow {
		return nil, txerr.WithDetails(txerr.ErrValueOverflow, map[string]string{"value": amount})
	}
	return q, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatDecimal renders amount with decimals places. Trailing zeros after
// the decimal point are removed, keeping at least one digit.
// For example, 1500000000000000000 with 18 decimals returns "1.5".
func FormatDecimal(amount *uint256.Int, decimals int) string {
	if amount == nil {
		return "0"
	}

	str := amount.Dec()
	if decimals <= 0 {
		return str
	}
	if len(str) <= decimals {
		str = strings.Repeat("0", decimals-len(str)+1) + str
	}

	point := len(str) - decimals
	frac := strings.TrimRight(str[point:], "0")
	if frac == "" {
		frac = "0"
	}
	return str[:point] + "." + frac
}

// Format renders amount in the named denomination with its suffix,
// for example "20 gwei".
func Format(amount *uint256.Int, unit string) (string, error) {
	decimals, err := Decimals(unit)
	if err != nil {
		return "", err
	}
	return FormatDecimal(amount, decimals) + " " + strings.ToLower(strings.TrimSpace(unit)), nil
}
