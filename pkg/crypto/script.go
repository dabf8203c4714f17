package crypto

import (
	"encoding/base64"
	"strings"

	"github.com/ledgersim/ledgersim/pkg/types"
)

const p2pkhTag = "P2PKH"

// LockingScript builds the literal P2PKH locking script for an address.
func LockingScript(addr types.Address) string {
	return p2pkhTag + " " + string(addr)
}

// UnlockingScript builds the literal unlocking script witnessing a P2PKH
// spend: base64 signature followed by base64-encoded PEM public key.
func UnlockingScript(signature, pubKey []byte) string {
	pemBytes := SerializePublicKeyPEM(pubKey)
	return base64.StdEncoding.EncodeToString(signature) + " " + base64.StdEncoding.EncodeToString(pemBytes)
}

// EvaluateP2PKH evaluates an unlocking script against a locking script and
// the signed transaction hash it must witness (the raw bytes of the
// transaction's id, which is itself the hash of the preimage signed — not
// a value re-derived from the current, now-signed transaction state, since
// the unlocking scripts inside that state are the very thing being
// attached after signing). It never panics or returns an error: any parse
// or cryptographic failure simply evaluates to false, per the evaluator's
// reject-without-raising contract.
func EvaluateP2PKH(unlockingScript, lockingScript string, hash []byte) bool {
	scriptType, addr, ok := parseLockingScript(lockingScript)
	if !ok || scriptType != p2pkhTag {
		return false
	}

	sigB64, pubKeyB64, ok := parseUnlockingScript(unlockingScript)
	if !ok {
		return false
	}

	sig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return false
	}
	pubKeyPEM, err := base64.StdEncoding.DecodeString(pubKeyB64)
	if err != nil {
		return false
	}
	pubKey, ok := ParsePublicKeyPEM(pubKeyPEM)
	if !ok {
		return false
	}

	if DeriveAddress(pubKey) != addr {
		return false
	}

	return VerifySignature(hash, sig, pubKey)
}

func parseLockingScript(script string) (scriptType string, addr types.Address, ok bool) {
	parts := strings.Fields(script)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], types.Address(parts[1]), true
}

func parseUnlockingScript(script string) (sigB64, pubKeyB64 string, ok bool) {
	parts := strings.Fields(script)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
