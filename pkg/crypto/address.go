package crypto

import (
	"encoding/base64"
	"encoding/pem"

	"github.com/ledgersim/ledgersim/pkg/types"
)

const pemBlockType = "PUBLIC KEY"

// SerializePublicKeyPEM wraps a compressed public key in a PEM armor block.
// secp256k1 is not one of the curves encoding/x509 understands, so this is a
// self-consistent PEM framing of the raw compressed key rather than a true
// X.509 SubjectPublicKeyInfo encoding; it only needs to round-trip within
// this module's own address derivation and script evaluation.
func SerializePublicKeyPEM(pubKey []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  pemBlockType,
		Bytes: pubKey,
	})
}

// ParsePublicKeyPEM extracts the raw compressed key from a PEM block
// produced by SerializePublicKeyPEM.
func ParsePublicKeyPEM(data []byte) ([]byte, bool) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != pemBlockType {
		return nil, false
	}
	return block.Bytes, true
}

// DeriveAddress computes the P2PKH address for a public key:
// "addr_" + first 30 hex characters of sha256(base64(PEM(public_key))).
func DeriveAddress(pubKey []byte) types.Address {
	encoded := base64.StdEncoding.EncodeToString(SerializePublicKeyPEM(pubKey))
	digest := SHA256Hex([]byte(encoded))
	return types.Address(types.AddressPrefix + digest[:types.AddressSuffixLen])
}
