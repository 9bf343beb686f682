package auth

import "fmt"

// Code tags each verification failure with the protocol step that rejected
// the request.
type Code string

const (
	CodeMissingHeader       Code = "missing_header"
	CodeUnsupportedScheme   Code = "unsupported_scheme"
	CodeInvalidHeaderFormat Code = "invalid_header_format"
	CodeInvalidTimestamp    Code = "invalid_timestamp"
	CodeNonceReused         Code = "nonce_reused"
	CodeVerificationFailed  Code = "verification_failed"
	CodeVMNotFound          Code = "vm_not_found"
	CodeInvalidSignature    Code = "invalid_signature"
	CodeInvalidJWTSub       Code = "invalid_jwt_sub"
	CodeInvalidJWT          Code = "invalid_jwt"
)

// Error is a terminal, tagged verification failure. No step retries; the
// first failing step short-circuits the state machine.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Code, e.Err)
	}
	return "auth: " + string(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches errors by code so callers can branch on failure class.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	return ok && other.Code == e.Code
}

func errCode(code Code, err error) *Error {
	return &Error{Code: code, Err: err}
}

func errCodef(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Err: fmt.Errorf(format, args...)}
}
