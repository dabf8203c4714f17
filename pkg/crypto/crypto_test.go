package crypto

import "testing"

func TestSignAndVerify(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	hash := SHA256Bytes([]byte("preimage"))
	sig, err := key.Sign(hash)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifySignature(hash, sig, key.PublicKey()) {
		t.Fatal("signature should verify against its own public key")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	key, _ := GenerateKey()
	other, _ := GenerateKey()
	hash := SHA256Bytes([]byte("preimage"))
	sig, _ := key.Sign(hash)
	if VerifySignature(hash, sig, other.PublicKey()) {
		t.Fatal("signature should not verify against an unrelated public key")
	}
}

func TestVerifyNeverPanicsOnGarbage(t *testing.T) {
	if VerifySignature([]byte("short"), []byte("garbage"), []byte("also garbage")) {
		t.Fatal("garbage input should never verify")
	}
}

func TestAddressRoundTrip(t *testing.T) {
	key, _ := GenerateKey()
	addr := DeriveAddress(key.PublicKey())
	if !addr.Valid() {
		t.Fatalf("derived address %q failed format validation", addr)
	}
}

func TestEvaluateP2PKH(t *testing.T) {
	key, _ := GenerateKey()
	addr := DeriveAddress(key.PublicKey())
	locking := LockingScript(addr)

	hash := SHA256Bytes([]byte("transaction preimage bytes"))
	sig, err := key.Sign(hash)
	if err != nil {
		t.Fatal(err)
	}
	unlocking := UnlockingScript(sig, key.PublicKey())

	if !EvaluateP2PKH(unlocking, locking, hash) {
		t.Fatal("expected EvaluateP2PKH to succeed with a matching key and signature")
	}
}

func TestEvaluateP2PKHRejectsWrongSigner(t *testing.T) {
	owner, _ := GenerateKey()
	attacker, _ := GenerateKey()
	addr := DeriveAddress(owner.PublicKey())
	locking := LockingScript(addr)

	hash := SHA256Bytes([]byte("transaction preimage bytes"))
	sig, _ := attacker.Sign(hash)
	unlocking := UnlockingScript(sig, attacker.PublicKey())

	if EvaluateP2PKH(unlocking, locking, hash) {
		t.Fatal("expected EvaluateP2PKH to fail when the unlocking key does not match the locking address")
	}
}
