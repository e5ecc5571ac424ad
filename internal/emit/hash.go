package emit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/bcir/internal/ir"
)

// Domain prefixes for fingerprints. The version suffix allows the document
// layout to change without colliding with older fingerprints.
const (
	DomainKlass  = "bcir/klass/v1"
	DomainModule = "bcir/module/v1"
	DomainRun    = "bcir/run/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data) as lowercase hex.
// The null byte keeps the domain and data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint identifies the content of k. Two klasses with the same
// members and bodies have the same fingerprint regardless of value names
// that do not appear in the document.
func Fingerprint(k *ir.Klass) (string, error) {
	doc, err := KlassDocument(k)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: %w", err)
	}
	canonical, err := MarshalCanonical(doc)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainKlass, canonical), nil
}

// ModuleFingerprint combines the fingerprints of the mutable klasses of
// mod in creation order.
func ModuleFingerprint(mod *ir.Module) (string, error) {
	prints := []any{}
	for _, k := range mod.Klasses() {
		if !k.IsMutable() {
			continue
		}
		fp, err := Fingerprint(k)
		if err != nil {
			return "", err
		}
		prints = append(prints, Document{"klass": k.Name(), "fingerprint": fp})
	}
	canonical, err := MarshalCanonical(prints)
	if err != nil {
		return "", fmt.Errorf("ModuleFingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainModule, canonical), nil
}

// RunID identifies an optimization run by what it ran on and when in the
// log it happened.
func RunID(source, before string, seq int64) (string, error) {
	canonical, err := MarshalCanonical(Document{
		"source": source,
		"before": before,
		"seq":    seq,
	})
	if err != nil {
		return "", fmt.Errorf("RunID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRun, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustFingerprint(k *ir.Klass) string {
	fp, err := Fingerprint(k)
	if err != nil {
		panic(err)
	}
	return fp
}
