package webhook

import "strings"

// Algorithm names the HMAC hash declared by a signature header.
type Algorithm string

const (
	AlgorithmSHA1        Algorithm = "sha1"
	AlgorithmSHA256      Algorithm = "sha256"
	AlgorithmUnspecified Algorithm = "unspecified"
)

// Signature headers, checked in this order.
const (
	HeaderSignature256 = "X-Hub-Signature-256"
	HeaderSignature    = "X-Hub-Signature"
)

// SignatureHeader is a parsed signature header value.
type SignatureHeader struct {
	Algorithm Algorithm

	// HexDigest is the digest exactly as supplied, without the algorithm prefix.
	HexDigest string
}

// Reason identifies why a request was rejected.
type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonMissingSignature     Reason = "missing_signature"
	ReasonUnsupportedAlgorithm Reason = "unsupported_algorithm"
	ReasonMalformedSignature   Reason = "malformed_signature"
	ReasonInvalidSignature     Reason = "invalid_signature"
)

// Decision is the terminal outcome of authenticating one request.
type Decision struct {
	Accepted bool
	Reason   Reason

	// Algorithm is the algorithm whose digest matched. Unset for unsigned
	// and rejected requests.
	Algorithm Algorithm

	// Header is the header the signature was read from.
	Header string

	// Unsigned is true when the permissive policy let a request without a
	// signature header through.
	Unsigned bool
}

// Err returns the sentinel error for a rejected decision, or nil.
func (d Decision) Err() error {
	if d.Accepted {
		return nil
	}
	switch d.Reason {
	case ReasonMissingSignature:
		return ErrMissingSignature
	case ReasonUnsupportedAlgorithm:
		return ErrUnsupportedAlgorithm
	case ReasonMalformedSignature:
		return ErrMalformedSignature
	default:
		return ErrInvalidSignature
	}
}

// Headers is the read side of a request header map. http.Header satisfies it.
type Headers interface {
	Get(key string) string
}

// HeaderMap adapts a plain string map to Headers with case-insensitive lookup,
// for callers that do not hold an http.Header.
type HeaderMap map[string]string

// Get returns the value for key, ignoring case.
func (m HeaderMap) Get(key string) string {
	if v, ok := m[key]; ok {
		return v
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// ErrorResponse is the JSON body written for rejected requests.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason Reason `json:"reason,omitempty"`
}

// DefaultMaxBodySize bounds the body read by Middleware.
const DefaultMaxBodySize = 1048576 // 1 MB
