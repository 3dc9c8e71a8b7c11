package webhook

import (
	"net/http"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/skillset-echo/internal/webhook/mocks"
)

const testSecret = "test-secret-key"

var testBody = []byte(`{"event":"push","repository":"test"}`)

func newTestAuthenticator(t *testing.T, strict bool, opts ...Option) *Authenticator {
	t.Helper()
	a, err := New(Config{Secret: testSecret, RequireSignature: strict}, opts...)
	require.NoError(t, err)
	return a
}

func TestNew_RequiresSecret(t *testing.T) {
	_, err := New(Config{Secret: "  "})
	require.Error(t, err)

	a, err := New(Config{Secret: "s", RequireSignature: true})
	require.NoError(t, err)
	assert.True(t, a.RequireSignature())
}

func TestAuthenticate(t *testing.T) {
	sha256Digest := Sign(testBody, testSecret, AlgorithmSHA256)
	sha1Digest := Sign(testBody, testSecret, AlgorithmSHA1)
	zeros64 := "0000000000000000000000000000000000000000000000000000000000000000"

	tests := []struct {
		name       string
		headers    HeaderMap
		body       []byte
		wantAccept bool
		wantReason Reason
		wantAlg    Algorithm
		wantHeader string
	}{
		{
			name:       "valid sha256 prefix",
			headers:    HeaderMap{HeaderSignature256: "sha256=" + sha256Digest},
			body:       testBody,
			wantAccept: true,
			wantAlg:    AlgorithmSHA256,
			wantHeader: HeaderSignature256,
		},
		{
			name:       "valid sha1 prefix",
			headers:    HeaderMap{HeaderSignature: "sha1=" + sha1Digest},
			body:       testBody,
			wantAccept: true,
			wantAlg:    AlgorithmSHA1,
			wantHeader: HeaderSignature,
		},
		{
			name:       "bare sha256 digest",
			headers:    HeaderMap{HeaderSignature256: sha256Digest},
			body:       testBody,
			wantAccept: true,
			wantAlg:    AlgorithmSHA256,
			wantHeader: HeaderSignature256,
		},
		{
			name:       "bare sha1 digest",
			headers:    HeaderMap{HeaderSignature256: sha1Digest},
			body:       testBody,
			wantAccept: true,
			wantAlg:    AlgorithmSHA1,
			wantHeader: HeaderSignature256,
		},
		{
			name:       "lowercase header names",
			headers:    HeaderMap{"x-hub-signature-256": "sha256=" + sha256Digest},
			body:       testBody,
			wantAccept: true,
			wantAlg:    AlgorithmSHA256,
			wantHeader: HeaderSignature256,
		},
		{
			name: "sha256 header wins over sha1 header",
			headers: HeaderMap{
				HeaderSignature256: "sha256=" + sha256Digest,
				HeaderSignature:    "sha1=" + zeros64[:40],
			},
			body:       testBody,
			wantAccept: true,
			wantAlg:    AlgorithmSHA256,
			wantHeader: HeaderSignature256,
		},
		{
			name: "blank sha256 header falls through to sha1 header",
			headers: HeaderMap{
				HeaderSignature256: "  ",
				HeaderSignature:    "sha1=" + sha1Digest,
			},
			body:       testBody,
			wantAccept: true,
			wantAlg:    AlgorithmSHA1,
			wantHeader: HeaderSignature,
		},
		{
			name:       "wrong digest",
			headers:    HeaderMap{HeaderSignature256: "sha256=" + zeros64},
			body:       testBody,
			wantReason: ReasonInvalidSignature,
			wantHeader: HeaderSignature256,
		},
		{
			name:       "tampered body",
			headers:    HeaderMap{HeaderSignature256: "sha256=" + sha256Digest},
			body:       []byte(`{"event":"push","repository":"hacked"}`),
			wantReason: ReasonInvalidSignature,
			wantHeader: HeaderSignature256,
		},
		{
			name:       "sha1 digest under sha256 prefix",
			headers:    HeaderMap{HeaderSignature256: "sha256=" + sha1Digest},
			body:       testBody,
			wantReason: ReasonMalformedSignature,
			wantHeader: HeaderSignature256,
		},
		{
			name:       "truncated digest",
			headers:    HeaderMap{HeaderSignature256: "sha256=" + sha256Digest[:63]},
			body:       testBody,
			wantReason: ReasonMalformedSignature,
			wantHeader: HeaderSignature256,
		},
		{
			name:       "bare value of neither length",
			headers:    HeaderMap{HeaderSignature256: "not-valid-hex"},
			body:       testBody,
			wantReason: ReasonMalformedSignature,
			wantHeader: HeaderSignature256,
		},
		{
			name:       "bare value of sha1 length but wrong",
			headers:    HeaderMap{HeaderSignature256: zeros64[:40]},
			body:       testBody,
			wantReason: ReasonInvalidSignature,
			wantHeader: HeaderSignature256,
		},
		{
			name:       "unsupported algorithm",
			headers:    HeaderMap{HeaderSignature256: "sha512=" + sha256Digest},
			body:       testBody,
			wantReason: ReasonUnsupportedAlgorithm,
			wantHeader: HeaderSignature256,
		},
		{
			name:       "uppercase digest is not normalized",
			headers:    HeaderMap{HeaderSignature256: "sha256=" + "5AD79E468F54E5F83FDAB733444E1D224F10074B85F827C5A024D239AEF8DC51"},
			body:       testBody,
			wantReason: ReasonInvalidSignature,
			wantHeader: HeaderSignature256,
		},
	}

	a := newTestAuthenticator(t, true)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := a.Authenticate(tt.headers, tt.body)
			assert.Equal(t, tt.wantAccept, d.Accepted)
			assert.Equal(t, tt.wantReason, d.Reason)
			assert.Equal(t, tt.wantAlg, d.Algorithm)
			assert.Equal(t, tt.wantHeader, d.Header)
			assert.False(t, d.Unsigned)
		})
	}
}

func TestAuthenticate_HTTPHeader(t *testing.T) {
	a := newTestAuthenticator(t, true)

	h := http.Header{}
	h.Set("x-hub-signature-256", FormatHeader(AlgorithmSHA256, Sign(testBody, testSecret, AlgorithmSHA256)))

	d := a.Authenticate(h, testBody)
	assert.True(t, d.Accepted)
	assert.NoError(t, d.Err())
}

func TestAuthenticate_MissingSignaturePolicy(t *testing.T) {
	t.Run("permissive accepts and flags unsigned", func(t *testing.T) {
		a := newTestAuthenticator(t, false)
		d := a.Authenticate(HeaderMap{}, testBody)
		assert.True(t, d.Accepted)
		assert.True(t, d.Unsigned)
		assert.Equal(t, ReasonNone, d.Reason)
	})

	t.Run("strict rejects", func(t *testing.T) {
		a := newTestAuthenticator(t, true)
		d := a.Authenticate(HeaderMap{}, testBody)
		assert.False(t, d.Accepted)
		assert.Equal(t, ReasonMissingSignature, d.Reason)
		assert.ErrorIs(t, d.Err(), ErrMissingSignature)
	})

	t.Run("nil headers", func(t *testing.T) {
		a := newTestAuthenticator(t, true)
		d := a.Authenticate(nil, testBody)
		assert.Equal(t, ReasonMissingSignature, d.Reason)
	})

	t.Run("permissive still verifies present signatures", func(t *testing.T) {
		a := newTestAuthenticator(t, false)
		d := a.Authenticate(HeaderMap{HeaderSignature256: "sha256=" + Sign([]byte("x"), testSecret, AlgorithmSHA256)}, testBody)
		assert.False(t, d.Accepted)
		assert.Equal(t, ReasonInvalidSignature, d.Reason)
	})
}

func TestAuthenticate_BodyBitFlips(t *testing.T) {
	a := newTestAuthenticator(t, true)
	headers := HeaderMap{HeaderSignature256: FormatHeader(AlgorithmSHA256, Sign(testBody, testSecret, AlgorithmSHA256))}

	require.True(t, a.Authenticate(headers, testBody).Accepted)

	for i := range testBody {
		for bit := 0; bit < 8; bit++ {
			flipped := append([]byte(nil), testBody...)
			flipped[i] ^= 1 << bit
			d := a.Authenticate(headers, flipped)
			if !assert.Equal(t, ReasonInvalidSignature, d.Reason, "byte %d bit %d", i, bit) {
				return
			}
		}
	}
}

func TestAuthenticate_SignatureBitFlips(t *testing.T) {
	a := newTestAuthenticator(t, true)
	digest := Sign(testBody, testSecret, AlgorithmSHA256)

	for i := 0; i < len(digest); i++ {
		for bit := 0; bit < 8; bit++ {
			flipped := []byte(digest)
			flipped[i] ^= 1 << bit
			if flipped[i] == ' ' {
				// Edge spaces are trimmed as header whitespace.
				continue
			}
			d := a.Authenticate(HeaderMap{HeaderSignature256: "sha256=" + string(flipped)}, testBody)
			if !assert.Equal(t, ReasonInvalidSignature, d.Reason, "byte %d bit %d", i, bit) {
				return
			}
		}
	}
}

func TestAuthenticate_LengthMismatchSkipsComparator(t *testing.T) {
	ctrl := gomock.NewController(t)
	cmp := mocks.NewMockComparator(ctrl)
	// No expectations: any call to Equal fails the test.
	a := newTestAuthenticator(t, true, WithComparator(cmp))

	for _, value := range []string{
		"sha256=abcd",
		"sha1=" + Sign(testBody, testSecret, AlgorithmSHA256),
		"deadbeef",
	} {
		d := a.Authenticate(HeaderMap{HeaderSignature256: value}, testBody)
		assert.Equal(t, ReasonMalformedSignature, d.Reason, value)
		assert.ErrorIs(t, d.Err(), ErrMalformedSignature)
	}
}

func TestAuthenticate_EqualLengthUsesComparator(t *testing.T) {
	ctrl := gomock.NewController(t)
	cmp := mocks.NewMockComparator(ctrl)
	a := newTestAuthenticator(t, true, WithComparator(cmp))

	expected := Sign(testBody, testSecret, AlgorithmSHA256)
	supplied := "0000000000000000000000000000000000000000000000000000000000000000"
	cmp.EXPECT().Equal([]byte(expected), []byte(supplied)).Return(false).Times(1)

	d := a.Authenticate(HeaderMap{HeaderSignature256: "sha256=" + supplied}, testBody)
	assert.Equal(t, ReasonInvalidSignature, d.Reason)
	assert.ErrorIs(t, d.Err(), ErrInvalidSignature)
}

func TestAuthenticate_BareValueChecksBothCandidates(t *testing.T) {
	ctrl := gomock.NewController(t)
	cmp := mocks.NewMockComparator(ctrl)
	a := newTestAuthenticator(t, true, WithComparator(cmp))

	// A 40-char value only has the length of the sha1 candidate.
	supplied := Sign(testBody, testSecret, AlgorithmSHA1)
	cmp.EXPECT().Equal([]byte(supplied), []byte(supplied)).Return(true).Times(1)

	d := a.Authenticate(HeaderMap{HeaderSignature256: supplied}, testBody)
	assert.True(t, d.Accepted)
	assert.Equal(t, AlgorithmSHA1, d.Algorithm)
}

func TestAuthenticate_DoesNotMutateInputs(t *testing.T) {
	a := newTestAuthenticator(t, true)
	body := append([]byte(nil), testBody...)
	headers := HeaderMap{HeaderSignature256: " sha256=" + Sign(testBody, testSecret, AlgorithmSHA256) + " "}
	before := headers[HeaderSignature256]

	a.Authenticate(headers, body)

	assert.Equal(t, testBody, body)
	assert.Equal(t, before, headers[HeaderSignature256])
}

func TestDecisionErr(t *testing.T) {
	assert.NoError(t, Decision{Accepted: true}.Err())
	assert.ErrorIs(t, Decision{Reason: ReasonUnsupportedAlgorithm}.Err(), ErrUnsupportedAlgorithm)
	assert.ErrorIs(t, Decision{Reason: ReasonMalformedSignature}.Err(), ErrMalformedSignature)
	assert.ErrorIs(t, Decision{Reason: ReasonInvalidSignature}.Err(), ErrInvalidSignature)
}
