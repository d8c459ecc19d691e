package imagegen

import "errors"

// Error taxonomy for Generate. Callers branch on these with errors.Is to
// decide what to tell the user.
var (
	// ErrValidation marks caller-supplied parameters out of contract.
	// Never retried.
	ErrValidation = errors.New("imagegen: invalid request")

	// ErrUpstreamUnavailable marks a transient network or service failure
	// that survived the full retry budget.
	ErrUpstreamUnavailable = errors.New("imagegen: upstream unavailable")

	// ErrUpstreamRejected marks an explicit upstream refusal
	// (bad request, auth, not found). Never retried.
	ErrUpstreamRejected = errors.New("imagegen: upstream rejected request")

	// ErrMalformedResponse marks an upstream payload that parsed as HTTP
	// success but was unusable. Retried as transient, then surfaced.
	ErrMalformedResponse = errors.New("imagegen: malformed upstream response")
)
