package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/cespare/xxhash"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for a future algorithm change.
const (
	DomainEntry = "tcademo/entry/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// EntryID computes the content-addressed ID of one journaled reduction.
// It is stable across replays of the same session.
func EntryID(sessionID string, seq int64, action string) (string, error) {
	canonical, err := MarshalCanonical(Object{
		"session": String(sessionID),
		"seq":     Int(seq),
		"action":  String(action),
	})
	if err != nil {
		return "", fmt.Errorf("EntryID: %w", err)
	}
	return hashWithDomain(DomainEntry, canonical), nil
}

// Fingerprint returns a 16 hex digit xxhash64 of the canonical encoding of v.
// Values with the same canonical encoding share a fingerprint. Strings are
// NFC-normalized first, so "e\u0301" and "\u00e9" are not told apart.
func Fingerprint(v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return FingerprintBytes(canonical), nil
}

// FingerprintBytes hashes already-canonical bytes.
func FingerprintBytes(canonical []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(canonical))
}
