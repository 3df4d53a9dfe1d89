package domain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// AddressPredicate reports whether an address has an acceptable format.
type AddressPredicate func(address string) bool

// IsEVMAddress accepts any 0x-prefixed hex string with at least one digit.
func IsEVMAddress(address string) bool {
	address = strings.TrimSpace(address)
	if !strings.HasPrefix(address, "0x") && !strings.HasPrefix(address, "0X") {
		return false
	}
	digits := address[2:]
	if digits == "" {
		return false
	}
	for _, c := range digits {
		if !isHexDigit(c) {
			return false
		}
	}
	return true
}

// IsStrictEVMAddress accepts only 0x-prefixed 20-byte hex addresses.
func IsStrictEVMAddress(address string) bool {
	address = strings.TrimSpace(address)
	if !strings.HasPrefix(address, "0x") && !strings.HasPrefix(address, "0X") {
		return false
	}
	return common.IsHexAddress(address)
}

func isHexDigit(c rune) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// NormalizeAddress trims surrounding whitespace. Case is preserved.
func NormalizeAddress(address string) string {
	return strings.TrimSpace(address)
}

// AddressKey is the comparison key for EVM addresses.
func AddressKey(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// WalletListing is one network's row in a wallet listing.
type WalletListing struct {
	Network     NetworkName
	DisplayName string
	Addresses   []string
}
