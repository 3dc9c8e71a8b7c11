package webhook

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"hash"
	"strings"
)

//go:generate mockgen -destination=mocks/mock_comparator.go -package=mocks github.com/mattjoyce/skillset-echo/internal/webhook Comparator

// Comparator reports whether two byte slices of equal length hold the same
// content. Implementations must not leak the position of the first mismatch
// through timing.
type Comparator interface {
	Equal(a, b []byte) bool
}

type constantTimeComparator struct{}

func (constantTimeComparator) Equal(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// ParseSignatureHeader splits a header value into algorithm and digest.
//
// Supported formats:
//   - "sha256=<hex>" (GitHub X-Hub-Signature-256)
//   - "sha1=<hex>" (GitHub X-Hub-Signature)
//   - "<hex>" (no prefix; algorithm unspecified)
//
// Any other "<name>=" prefix yields ErrUnsupportedAlgorithm.
func ParseSignatureHeader(value string) (SignatureHeader, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return SignatureHeader{}, ErrMissingSignature
	}

	name, digest, found := strings.Cut(value, "=")
	if !found {
		return SignatureHeader{Algorithm: AlgorithmUnspecified, HexDigest: value}, nil
	}

	switch Algorithm(name) {
	case AlgorithmSHA256, AlgorithmSHA1:
		if digest == "" {
			return SignatureHeader{}, ErrMalformedSignature
		}
		return SignatureHeader{Algorithm: Algorithm(name), HexDigest: digest}, nil
	default:
		return SignatureHeader{}, ErrUnsupportedAlgorithm
	}
}

// Sign computes the lowercase hex HMAC of body under secret.
// AlgorithmUnspecified signs with SHA-256.
func Sign(body []byte, secret string, alg Algorithm) string {
	mac := hmac.New(hashFor(alg), []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// FormatHeader renders a digest the way it is sent on the wire.
func FormatHeader(alg Algorithm, hexDigest string) string {
	switch alg {
	case AlgorithmSHA256, AlgorithmSHA1:
		return string(alg) + "=" + hexDigest
	default:
		return hexDigest
	}
}

// HeaderFor returns the header name conventionally carrying alg.
func HeaderFor(alg Algorithm) string {
	if alg == AlgorithmSHA1 {
		return HeaderSignature
	}
	return HeaderSignature256
}

func hashFor(alg Algorithm) func() hash.Hash {
	if alg == AlgorithmSHA1 {
		return sha1.New
	}
	return sha256.New
}

