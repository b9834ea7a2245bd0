package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainSpec is the domain prefix for spec content hashes.
// The version suffix allows future algorithm migration.
const DomainSpec = "protos/spec/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SpecHash computes the content hash of a spec. The spec is sorted on a
// copy first, so two specs with the same declarations hash equal
// regardless of input order.
func SpecHash(spec ProtoSpec) (string, error) {
	sorted := ProtoSpec{
		Enums:    append([]EnumSpec(nil), spec.Enums...),
		Messages: append([]MessageSpec(nil), spec.Messages...),
		Services: append([]ServiceSpec(nil), spec.Services...),
	}
	sorted.Sort()
	canonical, err := MarshalCanonical(sorted)
	if err != nil {
		return "", fmt.Errorf("SpecHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSpec, canonical), nil
}

// MustSpecHash is like SpecHash but panics on error.
// Use only in tests or when the spec is known to be valid.
func MustSpecHash(spec ProtoSpec) string {
	h, err := SpecHash(spec)
	if err != nil {
		panic(err)
	}
	return h
}
