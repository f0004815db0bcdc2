package ldapcodec

/*
dn.go implements the distinguished name model of RFC 4514: the
DN/RDN/AVA structure, the escape-aware string parser, and the dual
user-provided / canonical forms consumed by the codec.

Note that the character-driven parse loop and the escape helpers in
common.go are derived from the most excellent go-ldap (v3) package.

From https://github.com/go-ldap/ldap/blob/master/LICENSE:

The MIT License (MIT)

Copyright (c) 2011-2015 Michael Mitton (mmitton@gmail.com)
Portions copyright (c) 2015-2016 go-ldap Authors

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

import (
	"github.com/JesseCoretta/go-objectid"
)

/*
DNSyntaxError indicates a malformed distinguished name string per
RFC 4514.
*/
type DNSyntaxError string

/*
Error returns the string representation of the receiver instance.
*/
func (r DNSyntaxError) Error() string {
	return `Invalid DN syntax: ` + string(r)
}

func errorDNSyntax(txt string) error {
	return DNSyntaxError(txt)
}

/*
AttributeTypeError indicates an empty or malformed attribute type
within an AVA.
*/
type AttributeTypeError string

/*
Error returns the string representation of the receiver instance.
*/
func (r AttributeTypeError) Error() string {
	return `Invalid attribute type: ` + string(r)
}

func errorAttributeType(txt string) error {
	return AttributeTypeError(txt)
}

/*
AttributeTypeAndValue implements the attributeTypeAndValue defined in
[Section 3 of RFC4514].

Type and Value preserve the user-provided spelling; the canonical
forms are reached through [AttributeTypeAndValue.NormType] and
[AttributeTypeAndValue.NormValue].

[Section 3 of RFC4514]: https://datatracker.ietf.org/doc/html/rfc4514#section-3
*/
type AttributeTypeAndValue struct {
	// Type is the attribute type as supplied, case preserved
	Type string
	// Value is the attribute value with escapes decoded
	Value string

	rawValue  string
	normType  string
	normValue string
	attrType  *AttributeType
}

func (r *AttributeTypeAndValue) setType(str string, schema SchemaManager) error {
	typ := trimS(str)
	if len(typ) == 0 {
		return errorAttributeType("empty attribute type")
	}

	base := typ
	if hasPfx(base, `OID.`) || hasPfx(base, `oid.`) {
		base = base[4:]
	}

	if isNumericOIDForm(base) {
		if _, err := objectid.NewDotNotation(base); err != nil {
			return errorAttributeType(base)
		}
	} else if !isKeystring(base) {
		return errorAttributeType(typ)
	}

	r.Type = typ
	r.normType = lc(base)

	if schema != nil {
		if at := schema.LookupAttributeType(base); at != nil {
			r.attrType = at
			r.normType = at.OID
		}
	}

	return nil
}

func (r *AttributeTypeAndValue) setValue(s string, schema SchemaManager) error {
	r.rawValue = s

	// https://www.ietf.org/rfc/rfc4514.html#section-2.4
	// If the AttributeType is of the dotted-decimal form, the
	// AttributeValue is represented by an number sign ('#' U+0023)
	// character followed by the hexadecimal encoding of each of the
	// octets of the BER encoding of the X.500 AttributeValue.
	trimmed := stripLeadingAndTrailingSpaces(s)
	if len(trimmed) > 0 && trimmed[0] == '#' {
		hexPart := trimmed[1:]
		if len(hexPart) == 0 || len(hexPart)%2 != 0 {
			return errorDNSyntax("odd number of hex digits in '#' value")
		}
		for _, ch := range hexPart {
			if !isHex(ch) {
				return errorDNSyntax("non-hex digit in '#' value")
			}
		}

		decodedString, err := decodeEncodedString(hexPart)
		if err != nil {
			return err
		}

		r.Value = decodedString
	} else {
		decodedString, err := decodeString(s)
		if err != nil {
			return err
		}

		r.Value = decodedString
	}

	return r.normalize(schema)
}

func (r *AttributeTypeAndValue) normalize(schema SchemaManager) (err error) {
	val := r.Value

	if schema != nil && r.attrType != nil {
		if r.attrType.HumanReadable {
			if len(r.attrType.Equality) > 0 {
				var n string
				if n, err = schema.Normalize(r.attrType, val); err != nil {
					return
				}
				val = n
			}
		}
		// Non-human-readable syntaxes skip string normalization;
		// encodeString still hex-escapes the raw bytes.
	}

	r.normValue = encodeString(val, true)
	return
}

/*
NormType returns the canonical attribute type: the schema OID when the
type resolved, else the lowercased user spelling with any OID. prefix
removed.
*/
func (r *AttributeTypeAndValue) NormType() string { return r.normType }

/*
NormValue returns the canonically escaped, equality-rule-normalized
attribute value.
*/
func (r *AttributeTypeAndValue) NormValue() string { return r.normValue }

/*
String returns the canonical string representation of this attribute
type and value pair.
*/
func (r *AttributeTypeAndValue) String() string {
	return r.normType + `=` + r.normValue
}

/*
Equal returns true if the [AttributeTypeAndValue] is equivalent to the
specified [AttributeTypeAndValue] under canonical comparison.
*/
func (r *AttributeTypeAndValue) Equal(other *AttributeTypeAndValue) bool {
	return r.normType == other.normType && r.normValue == other.normValue
}

/*
RelativeDistinguishedName implements the relativeDistinguishedName
defined in [Section 3 of RFC4514]: a non-empty set of AVAs.

[Section 3 of RFC4514]: https://datatracker.ietf.org/doc/html/rfc4514#section-3
*/
type RelativeDistinguishedName struct {
	Attributes []*AttributeTypeAndValue

	up string
}

/*
UpName returns the user-provided form of the receiver instance.
*/
func (r *RelativeDistinguishedName) UpName() string { return r.up }

/*
String returns the canonical string representation of this relative
distinguished name: the join of all AVAs with a "+", sorted when the
RDN is multi-valued.
*/
func (r *RelativeDistinguishedName) String() string {
	attrs := make([]string, len(r.Attributes))
	for i := range r.Attributes {
		attrs[i] = r.Attributes[i].String()
	}
	if len(attrs) > 1 {
		srtstr(attrs)
	}
	return join(attrs, `+`)
}

/*
Equal returns true if the [RelativeDistinguishedName] is equal to the
input instance as defined in [Section 4.2.15 of RFC4517]
(distinguishedNameMatch). The order of AVAs is not significant.

[Section 4.2.15 of RFC4517]: https://datatracker.ietf.org/doc/html/rfc4517#section-4.2.15
*/
func (r *RelativeDistinguishedName) Equal(other *RelativeDistinguishedName) bool {
	return r.String() == other.String()
}

/*
DistinguishedName implements the distinguished name from RFC 4514 and
RFC 4517. The zero value (no RDNs) is the legal empty DN and prints as
the empty string in both forms.
*/
type DistinguishedName struct {
	RDNs []*RelativeDistinguishedName

	up   string
	norm string
}

/*
UpName returns the user-provided form of the receiver instance,
byte-for-byte as supplied except that `;` RDN separators are rewritten
to `,`.
*/
func (r *DistinguishedName) UpName() string { return r.up }

/*
NormName returns the canonical form of the receiver instance:
attribute types reduced to lowercased OIDs where the schema resolves
them, values normalized under their equality matching rules, and
escapes in the canonical uppercase `\HH` form.
*/
func (r *DistinguishedName) NormName() string { return r.norm }

/*
String returns the canonical string representation of the receiver
instance.
*/
func (r *DistinguishedName) String() string { return r.norm }

/*
IsZero returns a Boolean value indicative of a nil or empty receiver
state.
*/
func (r *DistinguishedName) IsZero() bool {
	return r == nil || len(r.RDNs) == 0
}

/*
Len returns the integer length of the receiver instance in RDNs.
*/
func (r *DistinguishedName) Len() int {
	if r == nil {
		return 0
	}
	return len(r.RDNs)
}

/*
Equal returns true if the receiver and other are equal as defined in
[Section 4.2.15 of RFC4517] (distinguishedNameMatch): the canonical
forms are identical.

[Section 4.2.15 of RFC4517]: https://datatracker.ietf.org/doc/html/rfc4517#section-4.2.15
*/
func (r *DistinguishedName) Equal(other *DistinguishedName) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.norm == other.norm
}

/*
AncestorOf returns true if the other [DistinguishedName] consists of
at least one RDN followed by all the RDNs of the receiver.

  - "ou=widgets,o=acme.com" is an ancestor of "ou=sprockets,ou=widgets,o=acme.com"
  - "ou=widgets,o=acme.com" is not an ancestor of "ou=sprockets,ou=widgets,o=foo.com"
  - "ou=widgets,o=acme.com" is not an ancestor of "ou=widgets,o=acme.com"
*/
func (r *DistinguishedName) AncestorOf(other *DistinguishedName) bool {
	if r == nil || other == nil || len(r.RDNs) >= len(other.RDNs) {
		return false
	}

	// Take the last `len(r.RDNs)` RDNs from the other DN to compare
	// against.
	otherRDNs := other.RDNs[len(other.RDNs)-len(r.RDNs):]
	for i := range r.RDNs {
		if !r.RDNs[i].Equal(otherRDNs[i]) {
			return false
		}
	}
	return true
}

/*
DistinguishedName returns an instance of *[DistinguishedName]
alongside an error following an analysis of x in the context of a
distinguished name.

A [SchemaManager] may be supplied variadically; when present, attribute
types are reduced to their OIDs and values are normalized under their
equality matching rules in the canonical form.

From [§ 3 of RFC 4514]:

	distinguishedName = [ relativeDistinguishedName *( COMMA relativeDistinguishedName ) ]
	relativeDistinguishedName = attributeTypeAndValue *( PLUS attributeTypeAndValue )
	attributeTypeAndValue = attributeType EQUALS attributeValue
	attributeType = descr / numericoid
	attributeValue = string / hexstring

[§ 3 of RFC 4514]: https://datatracker.ietf.org/doc/html/rfc4514#section-3
*/
func (r RFC4514) DistinguishedName(x any, schema ...SchemaManager) (dn *DistinguishedName, err error) {
	var raw string
	switch tv := x.(type) {
	case string:
		raw = tv
	case []byte:
		raw = string(tv)
	default:
		err = errorBadType("Distinguished Name")
		return
	}

	var sm SchemaManager
	if len(schema) > 0 {
		sm = schema[0]
	}

	dn, err = parseDN(raw, sm)

	return
}

/*
RelativeDistinguishedName returns an instance of
*[RelativeDistinguishedName] alongside an error. The input must parse
as a DN of exactly one RDN.
*/
func (r RFC4514) RelativeDistinguishedName(x any, schema ...SchemaManager) (rdn *RelativeDistinguishedName, err error) {
	var dn *DistinguishedName
	if dn, err = r.DistinguishedName(x, schema...); err != nil {
		return
	}

	if dn.Len() != 1 {
		err = errorDNSyntax("expected exactly one RDN")
		return
	}

	rdn = dn.RDNs[0]
	return
}

// parseDN returns a distinguishedName or an error. The function
// respects https://tools.ietf.org/html/rfc4514
func parseDN(str string, schema SchemaManager) (*DistinguishedName, error) {
	var dn = &DistinguishedName{RDNs: make([]*RelativeDistinguishedName, 0)}
	if trimS(str) == "" {
		return dn, nil
	}

	// The user-provided form keeps the input verbatim, modulo `;`
	// separators rewritten to `,`.
	up := []byte(str)

	var (
		rdn                   = &RelativeDistinguishedName{}
		attr                  = &AttributeTypeAndValue{}
		escaping              bool
		startPos              int
		rdnStart              int
		appendAttributesToRDN = func(end bool, upTo int) {
			rdn.Attributes = append(rdn.Attributes, attr)
			attr = &AttributeTypeAndValue{}
			if end {
				rdn.up = string(up[rdnStart:upTo])
				dn.RDNs = append(dn.RDNs, rdn)
				rdn = &RelativeDistinguishedName{}
				rdnStart = upTo + 1
			}
		}
	)

	// Loop through each character in the string and build up the
	// attribute type and value pairs. Only ASCII characters steer the
	// machine, which allows byte-wise iteration.
	for i := 0; i < len(str); i++ {
		char := str[i]
		switch {
		case escaping:
			escaping = false
		case char == '\\':
			escaping = true
		case char == '=' && len(attr.Type) == 0:
			if err := attr.setType(str[startPos:i], schema); err != nil {
				return nil, err
			}
			startPos = i + 1
		case isDNDelim(char):
			if len(attr.Type) == 0 {
				return nil, errorDNSyntax("incomplete type, value pair")
			}
			if err := attr.setValue(str[startPos:i], schema); err != nil {
				return nil, err
			}

			if char == ';' {
				up[i] = ','
			}

			startPos = i + 1
			last := char == ',' || char == ';'
			appendAttributesToRDN(last, i)
		}
	}

	if escaping {
		return nil, errorDNSyntax("DN ended with incomplete escape sequence")
	}

	if len(attr.Type) == 0 {
		return nil, errorDNSyntax("DN ended with incomplete type, value pair")
	}

	if err := attr.setValue(str[startPos:], schema); err != nil {
		return nil, err
	}
	appendAttributesToRDN(true, len(str))

	dn.up = string(up)

	norms := make([]string, len(dn.RDNs))
	for i := range dn.RDNs {
		norms[i] = dn.RDNs[i].String()
	}
	dn.norm = join(norms, `,`)

	return dn, nil
}

func isDNDelim(char byte) bool {
	return char == ',' || char == '+' || char == ';'
}
