package mandate

import "errors"

// Hash-chain violations. These are never downgraded to warnings.
var (
	ErrCartHashMismatch       = errors.New("mandate: cart hash mismatch")
	ErrPaymentHashMismatch    = errors.New("mandate: payment hash mismatch")
	ErrCredentialHashMismatch = errors.New("mandate: credential hash mismatch")
	ErrInvalidKey             = errors.New("mandate: invalid key")
)

// BuildError wraps failures while constructing a mandate (validation,
// canonicalization, signing).
type BuildError struct {
	Err error
}

func (e *BuildError) Error() string { return "mandate: build failed: " + e.Err.Error() }
func (e *BuildError) Unwrap() error { return e.Err }

// VerificationError wraps failures while verifying a mandate. Hash-chain
// sentinel errors above remain reachable through errors.Is.
type VerificationError struct {
	Err error
}

func (e *VerificationError) Error() string { return "mandate: verification failed: " + e.Err.Error() }
func (e *VerificationError) Unwrap() error { return e.Err }
