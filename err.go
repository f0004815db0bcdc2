package ldapcodec

/*
err.go defines the decode/encode error taxonomy surfaced at the codec
boundary, plus the short-hand error constructors used internally.
*/

/*
ErrorKind distinguishes the classes of failure the codec can surface.
*/
type ErrorKind int

const (
	// KindTruncatedPDU indicates a declared length extending past the
	// received bytes at end-of-stream; the caller should close the
	// session.
	KindTruncatedPDU ErrorKind = iota

	// KindMalformedBER indicates indefinite length form, a bad length
	// encoding, an unexpected primitive/constructed flag or an
	// oversized length field.
	KindMalformedBER

	// KindUnexpectedTag indicates a grammar transition table miss for
	// the current (state, tag) pair.
	KindUnexpectedTag

	// KindPDUTooLarge indicates a top-level PDU whose declared extent
	// exceeds the configured maximum.
	KindPDUTooLarge

	// KindInvalidValue indicates semantic content in violation of the
	// relevant RFC: a bad DN, attribute, filter or control value.
	KindInvalidValue

	// KindEncodingError indicates a required field was missing during
	// reverse encoding; the output buffer must be discarded.
	KindEncodingError
)

/*
String returns the string representation of the receiver instance.
*/
func (r ErrorKind) String() (s string) {
	switch r {
	case KindTruncatedPDU:
		s = `TRUNCATED PDU`
	case KindMalformedBER:
		s = `MALFORMED BER`
	case KindUnexpectedTag:
		s = `UNEXPECTED TAG`
	case KindPDUTooLarge:
		s = `PDU TOO LARGE`
	case KindInvalidValue:
		s = `INVALID VALUE`
	case KindEncodingError:
		s = `ENCODING ERROR`
	default:
		s = `UNKNOWN`
	}

	return
}

/*
DecodingError is the concrete error type returned by the [Decoder] and
by the reverse encoders. The Kind field classifies the failure per the
boundary taxonomy; Msg carries the diagnostic text.
*/
type DecodingError struct {
	Kind ErrorKind
	Msg  string
}

/*
Error returns the string representation of the receiver instance.
*/
func (r DecodingError) Error() string {
	return r.Kind.String() + `: ` + r.Msg
}

func decErr(kind ErrorKind, msg string) error {
	return DecodingError{Kind: kind, Msg: msg}
}

/*
ResponseError is the recoverable variant of a decode failure: the
request could not be decoded, but enough of it was understood that a
well-formed LDAP response can be synthesized. The server may encode
Response, deliver it, and continue the session.
*/
type ResponseError struct {
	DecodingError

	// Response is the ready-to-encode response message carrying the
	// offending message ID and a result code of ProtocolError or
	// InvalidDNSyntax.
	Response Message
}

/*
Error returns the string representation of the receiver instance.
*/
func (r ResponseError) Error() string {
	return r.DecodingError.Error()
}

func errorBadLength(name string, length int) error {
	return mkerr(`Invalid length '` + fmtInt(int64(length), 10) + `' for ` + name)
}

func errorBadType(name string) error {
	return mkerr(`Incompatible input type for ` + name)
}

func errorTxt(txt string) error {
	return mkerr(txt)
}

var (
	nilBEREncodeErr   error = mkerr("Cannot BER encode nil instance")
	endOfFilterErr    error = mkerr("Unexpected end of filter")
	invalidFilterErr  error = mkerr("Invalid or malformed filter")
	emptyFilterSetErr error = mkerr("Zero or invalid filter SET")
	nilInstanceErr    error = mkerr("Nil instance")
)
