// Package webhook authenticates inbound webhook requests with HMAC signatures.
//
// A request is accepted only when its signature header carries an HMAC of the
// raw request body computed with the shared secret. Nothing else about the
// request is trusted before that check passes.
//
// # Security Model
//
// - Digests are compared with crypto/subtle (constant-time comparison)
// - Lengths are compared first; the constant-time compare only sees equal-length input
// - The digest is computed over the raw body bytes, never a re-encoded payload
// - Rejections are reported as 401 with a reason code, never the expected digest
// - The secret is fixed at construction and comes from configuration
//
// # Header Formats
//
// X-Hub-Signature-256 is checked first, then X-Hub-Signature:
//
//	X-Hub-Signature-256: sha256=<hex>
//	X-Hub-Signature: sha1=<hex>
//	X-Hub-Signature-256: <hex>    (no prefix, sha256 or sha1 accepted)
//
// Any other "<alg>=" prefix is rejected as unsupported.
//
// # Missing Signatures
//
// Config.RequireSignature selects the policy for requests without a signature
// header. Strict mode rejects them with ReasonMissingSignature. Permissive mode
// accepts them and sets Decision.Unsigned; it exists for local testing and
// must not be used in production.
//
// # Rejection Reasons
//
// - missing_signature: no header and RequireSignature is set
// - unsupported_algorithm: a prefix other than sha1= or sha256=
// - malformed_signature: digest length does not match the algorithm
// - invalid_signature: digest has the right length but the wrong content
//
// # Example Usage
//
//	auth, err := webhook.New(webhook.Config{
//		Secret:           os.Getenv("GITHUB_WEBHOOK_SECRET"),
//		RequireSignature: true,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	r := chi.NewRouter()
//	r.With(auth.Middleware(webhook.DefaultMaxBodySize, logger)).Post("/hook", handler)
package webhook
