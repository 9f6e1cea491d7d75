package interfaces

// -----------------------------------------------------------------------------
// ITokenProvider supplies the bearer credential for broker API calls.
// -----------------------------------------------------------------------------

type ITokenProvider interface {

	// AuthHeader returns the value for the Authorization header, or an empty
	// string when no usable token is available (degraded mode).
	AuthHeader() string

	// -----------------------------------------------------------------------------

	// Degraded reports whether the screener is running without a token.
	Degraded() bool
}
