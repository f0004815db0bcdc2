package ldapcodec

/*
common.go defines the per-RFC syntax selector types through which the
string parsers are reached, plus the RFC 4514 escape helpers shared by
the DN model and the canonical serializers.
*/

import (
	"encoding/hex"

	ber "github.com/go-asn1-ber/asn1-ber"
)

/*
RFC4512 implements RFC 4512: Directory Information Models (OID and
descriptor forms).
*/
type RFC4512 struct{}

/*
RFC4514 implements RFC 4514: String Representation of Distinguished
Names.
*/
type RFC4514 struct{}

/*
RFC4515 implements RFC 4515: String Representation of Search Filters.
*/
type RFC4515 struct{}

/*
RFC3672 implements RFC 3672: Subentries in the Lightweight Directory
Access Protocol.
*/
type RFC3672 struct{}

func stripLeadingAndTrailingSpaces(inVal string) string {
	noSpaces := trim(inVal, " ")

	// Re-add the trailing space if it was an escaped space
	if len(noSpaces) > 0 && noSpaces[len(noSpaces)-1] == '\\' &&
		inVal[len(inVal)-1] == ' ' {
		noSpaces = noSpaces + " "
	}

	return noSpaces
}

// Remove leading and trailing spaces from the attribute type and value
// and unescape any escaped characters in these fields.
func decodeString(str string) (string, error) {
	s := []rune(stripLeadingAndTrailingSpaces(str))

	builder := newStrBuilder()
	for i := 0; i < len(s); i++ {
		char := s[i]

		// If the character is not an escape character, just add it
		// to the builder and continue
		if char != '\\' {
			builder.WriteRune(char)
			continue
		}

		// If the escape character is the last character, it's a
		// corrupted escaped character
		if i+1 >= len(s) {
			return "", errorDNSyntax("got corrupted escaped character: " + string(s))
		}

		// If the escaped character is a special character, just add
		// it to the builder and continue
		switch s[i+1] {
		case ' ', '"', '#', '+', ',', ';', '<', '=', '>', '\\':
			builder.WriteRune(s[i+1])
			i++
			continue
		}

		// If the escaped character is not a special character, it
		// must be a hex-encoded pair of the form \XX
		if i+2 >= len(s) {
			return "", errorDNSyntax("failed to decode escaped character: invalid byte: " +
				string(s[i+1]))
		}

		xx := []byte(string(s[i+1 : i+3]))
		if len(xx) != 2 || !isHex(rune(xx[0])) || !isHex(rune(xx[1])) {
			return "", errorDNSyntax("failed to decode escaped character: invalid byte: " + string(xx))
		}

		dst := []byte{0}
		if _, err := hex.Decode(dst, xx); err != nil {
			return "", errorDNSyntax("failed to decode escaped character: " + err.Error())
		}

		builder.WriteByte(dst[0])
		i += 2
	}

	return builder.String(), nil
}

// Escape a string according to RFC 4514, emitting the canonical
// uppercase \HH form for bytes outside the printable ASCII range.
func encodeString(value string, isValue bool) string {
	builder := newStrBuilder()

	escapeChar := func(c byte) {
		builder.WriteByte('\\')
		builder.WriteByte(c)
	}

	escapeHex := func(c byte) {
		builder.WriteByte('\\')
		builder.WriteString(uc(hex.EncodeToString([]byte{c})))
	}

	// Loop through each byte and escape as necessary. Runes that take
	// up more than one byte are escaped byte by byte (since all of
	// their bytes are non-ASCII).
	for i := 0; i < len(value); i++ {
		char := value[i]
		if i == 0 && (char == ' ' || char == '#') {
			// Special case leading space or number sign.
			escapeChar(char)
			continue
		}
		if i == len(value)-1 && char == ' ' {
			// Special case trailing space.
			escapeChar(char)
			continue
		}

		switch char {
		case '"', '+', ',', ';', '<', '>', '\\':
			// Each of these special characters must be escaped.
			escapeChar(char)
			continue
		}

		if !isValue && char == '=' {
			// Equal signs have to be escaped only in the type part
			// of the attribute type and value pair.
			escapeChar(char)
			continue
		}

		if char < ' ' || char > '~' {
			// All special character escapes are handled first
			// above. All bytes less than ASCII SPACE and all bytes
			// greater than ASCII TILDE must be hex-escaped.
			escapeHex(char)
			continue
		}

		// Any other character does not require escaping.
		builder.WriteByte(char)
	}

	return builder.String()
}

// decodeEncodedString decodes the BER payload of a '#'-prefixed
// hexstring attribute value per RFC 4514 § 2.4.
func decodeEncodedString(str string) (string, error) {
	decoded, err := hexdec(str)
	if err != nil {
		return "", errorDNSyntax("failed to decode BER encoding: " + err.Error())
	}

	packet, err := ber.DecodePacketErr(decoded)
	if err != nil {
		return "", errorDNSyntax("failed to decode BER encoding: " + err.Error())
	}

	return packet.Data.String(), nil
}
