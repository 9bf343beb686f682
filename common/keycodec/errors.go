package keycodec

// KeyFormatError reports malformed or unsupported key encodings. Parsing
// fails fast with no partial results.
type KeyFormatError struct {
	Reason string
	Err    error
}

func (e *KeyFormatError) Error() string {
	if e.Err != nil {
		return "keycodec: " + e.Reason + ": " + e.Err.Error()
	}
	return "keycodec: " + e.Reason
}

func (e *KeyFormatError) Unwrap() error { return e.Err }
