// Package types defines the core primitive types shared across the ledger:
// addresses, outpoints, and fixed-point monetary amounts.
package types

import "regexp"

// Address is a simplified P2PKH address string: "addr_" followed by 30 hex
// characters derived from the owning public key (see pkg/crypto). Addresses
// are opaque strings rather than a binary-encoded type; canonical hashing
// of transactions and scripts operates on this textual form directly.
type Address string

const (
	// AddressPrefix is the literal prefix every derived address carries.
	AddressPrefix = "addr_"
	// AddressSuffixLen is the number of hex characters following the prefix.
	AddressSuffixLen = 30
	// GenesisLockingScript is the sentinel locking script used by the
	// genesis coinbase output; it is not a valid P2PKH script and is
	// therefore unspendable under the validator's P2PKH-only evaluation.
	GenesisLockingScript = "genesis_lock"
)

var addressPattern = regexp.MustCompile(`^addr_[0-9a-f]{30}$`)

// Valid reports whether the address matches the expected literal shape.
// It does not verify that any key actually derives to it.
func (a Address) Valid() bool {
	return addressPattern.MatchString(string(a))
}

func (a Address) String() string {
	return string(a)
}
