package webhook

import "errors"

var (
	ErrMissingSignature     = errors.New("webhook signature missing")
	ErrUnsupportedAlgorithm = errors.New("webhook signature algorithm not supported")
	ErrMalformedSignature   = errors.New("webhook signature malformed")
	ErrInvalidSignature     = errors.New("webhook signature invalid")
)

func reasonFor(err error) Reason {
	switch {
	case errors.Is(err, ErrMissingSignature):
		return ReasonMissingSignature
	case errors.Is(err, ErrUnsupportedAlgorithm):
		return ReasonUnsupportedAlgorithm
	case errors.Is(err, ErrMalformedSignature):
		return ReasonMalformedSignature
	default:
		return ReasonInvalidSignature
	}
}
