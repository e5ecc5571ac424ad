// Package emit turns klasses into deterministic documents.
//
// KlassDocument is the boundary an external class writer consumes;
// MarshalCanonical renders it as RFC 8785 JSON and Fingerprint hashes that
// rendering with a domain prefix.
package emit
