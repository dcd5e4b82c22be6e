package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Domain prefixes for content hashes.
// Version suffix enables future algorithm migration.
const (
	DomainDefinition = "worldgraph/definition/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DefinitionHash computes the content hash of a storage definition.
//
// The definition is NFC normalized and trimmed first, so two definitions
// that parse to the same mapping hash identically unless they differ in
// inner whitespace. Used as the memoization key for parsed type mappings.
func DefinitionHash(definition string) string {
	normalized := norm.NFC.String(strings.TrimSpace(definition))
	return hashWithDomain(DomainDefinition, []byte(normalized))
}
