package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

const nonceSize = 32

// Nonce returns nonceSize bytes of cryptographically random material, hex
// encoded. Token unguessability rests on this value, not on the digest that
// folds it into the token.
func Nonce() (string, error) {
	var raw [nonceSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw[:]), nil
}

// TokenDigest folds identity, client address, nonce, and issuance time into
// the opaque tail of a token. The digest's role is uniqueness and
// obfuscation; sha256 is used for defense in depth, not secrecy.
func TokenDigest(userID, ip, nonce string, timestamp int64) string {
	h := sha256.New()
	h.Write([]byte(userID))
	h.Write([]byte(ip))
	h.Write([]byte(nonce))
	h.Write([]byte(strconv.FormatInt(timestamp, 10)))
	return hex.EncodeToString(h.Sum(nil))
}

// HashFingerprint hashes the selected client signals into a stable
// fingerprint. Callers pass "" for signals their policy excludes.
func HashFingerprint(deviceID, ip, userAgent string) string {
	h := sha256.New()
	h.Write([]byte(deviceID))
	h.Write([]byte(ip))
	h.Write([]byte(userAgent))
	return hex.EncodeToString(h.Sum(nil))
}
