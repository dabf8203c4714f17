// Package crypto provides the ledger's cryptographic primitives: ECDSA keys
// over secp256k1, SHA-256 hashing, and P2PKH address/script handling.
package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex returns the lowercase hex-encoded SHA-256 digest of data.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SHA256Bytes returns the raw SHA-256 digest of data.
func SHA256Bytes(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}
