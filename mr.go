package ldapcodec

/*
mr.go implements the matching rule normalizer closures registered with
the builtin schema. Each normalizer reduces a value to the form under
which equality comparison and canonical DN serialization operate.
*/

import (
	"github.com/JesseCoretta/go-objectid"
	"github.com/google/uuid"
)

/*
collapseSpaces reduces runs of whitespace to a single space and trims
leading and trailing whitespace, per the string preparation rules of
RFC 4518.
*/
func collapseSpaces(x string) string {
	return join(fields(x), ` `)
}

/*
normalizeCaseIgnore implements the value preparation of
caseIgnoreMatch (2.5.13.2): insignificant space handling followed by
case folding.
*/
func normalizeCaseIgnore(x string) (string, error) {
	return foldString(collapseSpaces(x)), nil
}

/*
normalizeCaseExact implements the value preparation of caseExactMatch
(2.5.13.5): insignificant space handling with case preserved.
*/
func normalizeCaseExact(x string) (string, error) {
	return collapseSpaces(x), nil
}

/*
normalizeNumericString implements numericStringMatch (2.5.13.8):
all spaces are insignificant.
*/
func normalizeNumericString(x string) (s string, err error) {
	bld := newStrBuilder()
	for i := 0; i < len(x); i++ {
		if x[i] == ' ' {
			continue
		}
		if !isDigit(rune(x[i])) {
			err = errorTxt("Non-digit in Numeric String value")
			return
		}
		bld.WriteByte(x[i])
	}

	s = bld.String()
	return
}

/*
normalizeInteger implements integerMatch (2.5.13.14): an optionally
negative decimal integer with redundant leading zeroes removed.
*/
func normalizeInteger(x string) (s string, err error) {
	v := trimS(x)
	var neg bool
	if hasPfx(v, `-`) {
		neg = true
		v = v[1:]
	}

	if len(v) == 0 {
		err = errorTxt("Empty Integer value")
		return
	}

	for _, ch := range v {
		if !isDigit(ch) {
			err = errorTxt("Non-digit in Integer value")
			return
		}
	}

	for len(v) > 1 && v[0] == '0' {
		v = v[1:]
	}

	if neg && v != `0` {
		v = `-` + v
	}

	s = v
	return
}

/*
normalizeBoolean implements booleanMatch (2.5.13.13).
*/
func normalizeBoolean(x string) (s string, err error) {
	switch uc(trimS(x)) {
	case `TRUE`:
		s = `TRUE`
	case `FALSE`:
		s = `FALSE`
	default:
		err = errorTxt("Invalid Boolean value")
	}

	return
}

/*
normalizeOctetString implements octetStringMatch (2.5.13.17): the
value participates byte-for-byte.
*/
func normalizeOctetString(x string) (string, error) {
	return x, nil
}

/*
normalizeOID implements objectIdentifierMatch (2.5.13.0): descriptors
fold to lowercase, numeric OIDs are validated structurally.

Numeric OID functionality is sourced from JesseCoretta/go-objectid.
*/
func normalizeOID(x string) (s string, err error) {
	v := trimS(x)
	if len(v) == 0 {
		err = errorTxt("Empty OID value")
		return
	}

	if isNumericOIDForm(v) {
		if _, err = objectid.NewDotNotation(v); err != nil {
			return
		}
		s = v
		return
	}

	if !isKeystring(v) {
		err = errorTxt("Value conforms to neither descriptor nor numeric OID form")
		return
	}

	s = lc(v)
	return
}

/*
normalizeDNValue implements distinguishedNameMatch (2.5.13.1) by
reducing the value to its canonical DN form.
*/
func normalizeDNValue(x string) (s string, err error) {
	var dn *DistinguishedName
	if dn, err = parseDN(x, nil); err != nil {
		return
	}

	s = dn.NormName()
	return
}

/*
normalizeUUID implements uuidMatch (1.3.6.1.1.16.2).

Note: this function utilizes Google's [uuid.Parse] method under the
hood.
*/
func normalizeUUID(x string) (s string, err error) {
	var u uuid.UUID
	if u, err = uuid.Parse(trimS(x)); err != nil {
		return
	}

	s = u.String()
	return
}
