package models

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashPIN returns the hex-encoded SHA-256 digest of a PIN. Deployments that
// enable PIN hashing store the digest in State.PinCode; others store the raw
// value, so the merge logic treats PinCode as an opaque scalar either way.
func HashPIN(pin string) string {
	sum := sha256.Sum256([]byte(pin))
	return hex.EncodeToString(sum[:])
}

// VerifyPIN compares a candidate PIN against a stored credential, accepting
// either a raw or a hashed stored value.
func VerifyPIN(candidate, stored string) bool {
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(stored)) == 1 {
		return true
	}
	hashed := HashPIN(candidate)
	return subtle.ConstantTimeCompare([]byte(hashed), []byte(stored)) == 1
}
