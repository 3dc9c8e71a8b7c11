package webhook

import (
	"fmt"
	"strings"
)

// Config holds the authenticator's fixed policy.
type Config struct {
	// Secret is the shared HMAC key.
	Secret string

	// RequireSignature rejects requests that carry no signature header.
	// When false (permissive), such requests are accepted and flagged as
	// unsigned. Permissive mode is meant for local testing only.
	RequireSignature bool
}

// Option customizes an Authenticator.
type Option func(*Authenticator)

// WithComparator replaces the constant-time comparator.
func WithComparator(c Comparator) Option {
	return func(a *Authenticator) {
		a.comparator = c
	}
}

// Authenticator decides whether a request body was signed with the shared
// secret. It holds no mutable state and is safe for concurrent use.
type Authenticator struct {
	secret           string
	requireSignature bool
	comparator       Comparator
}

// New creates an Authenticator. The secret must be non-empty.
func New(cfg Config, opts ...Option) (*Authenticator, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, fmt.Errorf("webhook secret is required")
	}

	a := &Authenticator{
		secret:           cfg.Secret,
		requireSignature: cfg.RequireSignature,
		comparator:       constantTimeComparator{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// RequireSignature reports whether unsigned requests are rejected.
func (a *Authenticator) RequireSignature() bool {
	return a.requireSignature
}

// Authenticate checks the signature headers against rawBody.
//
// rawBody must be the exact bytes received on the wire. Re-encoding a parsed
// payload can reorder keys or change whitespace and will break verification.
// Neither headers nor rawBody are modified.
func (a *Authenticator) Authenticate(headers Headers, rawBody []byte) Decision {
	header, value := signatureFromHeaders(headers)
	if value == "" {
		if a.requireSignature {
			return Decision{Reason: ReasonMissingSignature}
		}
		return Decision{Accepted: true, Unsigned: true}
	}

	sig, err := ParseSignatureHeader(value)
	if err != nil {
		return Decision{Reason: reasonFor(err), Header: header}
	}

	alg, reason := a.verify(sig, rawBody)
	if reason != ReasonNone {
		return Decision{Reason: reason, Header: header}
	}
	return Decision{Accepted: true, Algorithm: alg, Header: header}
}

// verify returns the matching algorithm, or the rejection reason.
func (a *Authenticator) verify(sig SignatureHeader, body []byte) (Algorithm, Reason) {
	if sig.Algorithm != AlgorithmUnspecified {
		return sig.Algorithm, a.compare(Sign(body, a.secret, sig.Algorithm), sig.HexDigest)
	}

	// No prefix: the digest may come from either algorithm. Both candidates
	// are always checked so the work done does not depend on which matched.
	r256 := a.compare(Sign(body, a.secret, AlgorithmSHA256), sig.HexDigest)
	r1 := a.compare(Sign(body, a.secret, AlgorithmSHA1), sig.HexDigest)
	switch {
	case r256 == ReasonNone:
		return AlgorithmSHA256, ReasonNone
	case r1 == ReasonNone:
		return AlgorithmSHA1, ReasonNone
	case r256 == ReasonMalformedSignature && r1 == ReasonMalformedSignature:
		return "", ReasonMalformedSignature
	default:
		return "", ReasonInvalidSignature
	}
}

// compare checks lengths first; the comparator only sees equal-length input.
func (a *Authenticator) compare(expected, supplied string) Reason {
	if len(expected) != len(supplied) {
		return ReasonMalformedSignature
	}
	if !a.comparator.Equal([]byte(expected), []byte(supplied)) {
		return ReasonInvalidSignature
	}
	return ReasonNone
}

// signatureFromHeaders returns the first non-blank signature header.
func signatureFromHeaders(headers Headers) (string, string) {
	if headers == nil {
		return "", ""
	}
	for _, name := range []string{HeaderSignature256, HeaderSignature} {
		if v := strings.TrimSpace(headers.Get(name)); v != "" {
			return name, v
		}
	}
	return "", ""
}
