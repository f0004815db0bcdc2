package ldapcodec

/*
schema.go defines the narrow schema collaborator interface the codec
consumes, plus a builtin, immutable implementation carrying the core
RFC 4519 attribute types and the matching rules the DN and value
normalizers require.
*/

/*
AttributeType carries the schema metadata the codec consumes for one
attribute type: its numeric OID, descriptors, matching rule OIDs and
whether its syntax is human readable.
*/
type AttributeType struct {
	OID           string
	Names         []string
	Equality      string
	Ordering      string
	Substring     string
	HumanReadable bool
}

/*
MatchingRule pairs a matching rule OID with the normalizer applied to
values asserted under it.
*/
type MatchingRule struct {
	OID       string
	Name      string
	Normalize NormalizerFunc
}

/*
NormalizerFunc is the closure signature of a matching rule value
normalizer.
*/
type NormalizerFunc func(string) (string, error)

/*
SchemaManager is the read-only schema collaborator interface. Lookups
for unknown types or rules return nil sentinels, never errors, and
implementations must be safe for arbitrary concurrent read.
*/
type SchemaManager interface {
	// LookupAttributeType resolves an attribute description -- a
	// descriptor in any case, or a numeric OID -- to its type, or
	// nil when unknown.
	LookupAttributeType(nameOrOID string) *AttributeType

	// LookupMatchingRule resolves a matching rule OID, or nil when
	// unknown.
	LookupMatchingRule(oid string) *MatchingRule

	// Normalize runs value through the equality matching rule of the
	// supplied attribute type.
	Normalize(at *AttributeType, value string) (string, error)
}

/*
subschema is the builtin [SchemaManager]. Both maps are populated once
during package initialization and never mutated thereafter.
*/
type subschema struct {
	types map[string]*AttributeType
	rules map[string]*MatchingRule
}

/*
DefaultSchema returns the builtin, immutable [SchemaManager] carrying
the core RFC 4519 attribute types. It is safe for use from any number
of sessions concurrently.
*/
func DefaultSchema() SchemaManager {
	return defaultSchema
}

func (r *subschema) LookupAttributeType(nameOrOID string) *AttributeType {
	return r.types[lc(nameOrOID)]
}

func (r *subschema) LookupMatchingRule(oid string) *MatchingRule {
	return r.rules[oid]
}

func (r *subschema) Normalize(at *AttributeType, value string) (string, error) {
	if at == nil || len(at.Equality) == 0 {
		return value, nil
	}

	mr := r.rules[at.Equality]
	if mr == nil || mr.Normalize == nil {
		return value, nil
	}

	return mr.Normalize(value)
}

var defaultSchema *subschema

func registerAttributeType(at *AttributeType) {
	defaultSchema.types[at.OID] = at
	for _, name := range at.Names {
		defaultSchema.types[lc(name)] = at
	}
}

func init() {
	defaultSchema = &subschema{
		types: make(map[string]*AttributeType),
		rules: make(map[string]*MatchingRule),
	}

	for _, mr := range []*MatchingRule{
		{OID: `2.5.13.0`, Name: `objectIdentifierMatch`, Normalize: normalizeOID},
		{OID: `2.5.13.1`, Name: `distinguishedNameMatch`, Normalize: normalizeDNValue},
		{OID: `2.5.13.2`, Name: `caseIgnoreMatch`, Normalize: normalizeCaseIgnore},
		{OID: `2.5.13.5`, Name: `caseExactMatch`, Normalize: normalizeCaseExact},
		{OID: `2.5.13.8`, Name: `numericStringMatch`, Normalize: normalizeNumericString},
		{OID: `2.5.13.13`, Name: `booleanMatch`, Normalize: normalizeBoolean},
		{OID: `2.5.13.14`, Name: `integerMatch`, Normalize: normalizeInteger},
		{OID: `2.5.13.17`, Name: `octetStringMatch`, Normalize: normalizeOctetString},
		{OID: `1.3.6.1.4.1.1466.109.114.1`, Name: `caseExactIA5Match`, Normalize: normalizeCaseExact},
		{OID: `1.3.6.1.4.1.1466.109.114.2`, Name: `caseIgnoreIA5Match`, Normalize: normalizeCaseIgnore},
		{OID: `1.3.6.1.1.16.2`, Name: `uuidMatch`, Normalize: normalizeUUID},
	} {
		defaultSchema.rules[mr.OID] = mr
	}

	for _, at := range []*AttributeType{
		{OID: `2.5.4.0`, Names: []string{`objectClass`}, Equality: `2.5.13.0`, HumanReadable: true},
		{OID: `2.5.4.3`, Names: []string{`cn`, `commonName`}, Equality: `2.5.13.2`, Substring: `2.5.13.4`, HumanReadable: true},
		{OID: `2.5.4.4`, Names: []string{`sn`, `surname`}, Equality: `2.5.13.2`, Substring: `2.5.13.4`, HumanReadable: true},
		{OID: `2.5.4.6`, Names: []string{`c`, `countryName`}, Equality: `2.5.13.2`, HumanReadable: true},
		{OID: `2.5.4.7`, Names: []string{`l`, `localityName`}, Equality: `2.5.13.2`, Substring: `2.5.13.4`, HumanReadable: true},
		{OID: `2.5.4.8`, Names: []string{`st`, `stateOrProvinceName`}, Equality: `2.5.13.2`, HumanReadable: true},
		{OID: `2.5.4.10`, Names: []string{`o`, `organizationName`}, Equality: `2.5.13.2`, Substring: `2.5.13.4`, HumanReadable: true},
		{OID: `2.5.4.11`, Names: []string{`ou`, `organizationalUnitName`}, Equality: `2.5.13.2`, Substring: `2.5.13.4`, HumanReadable: true},
		{OID: `2.5.4.13`, Names: []string{`description`}, Equality: `2.5.13.2`, HumanReadable: true},
		{OID: `2.5.4.31`, Names: []string{`member`}, Equality: `2.5.13.1`, HumanReadable: true},
		{OID: `2.5.4.35`, Names: []string{`userPassword`}, Equality: `2.5.13.17`, HumanReadable: false},
		{OID: `2.5.4.41`, Names: []string{`name`}, Equality: `2.5.13.2`, Substring: `2.5.13.4`, HumanReadable: true},
		{OID: `0.9.2342.19200300.100.1.1`, Names: []string{`uid`, `userid`}, Equality: `2.5.13.2`, HumanReadable: true},
		{OID: `0.9.2342.19200300.100.1.3`, Names: []string{`mail`, `rfc822Mailbox`}, Equality: `1.3.6.1.4.1.1466.109.114.2`, HumanReadable: true},
		{OID: `0.9.2342.19200300.100.1.25`, Names: []string{`dc`, `domainComponent`}, Equality: `1.3.6.1.4.1.1466.109.114.2`, HumanReadable: true},
		{OID: `1.3.6.1.1.16.4`, Names: []string{`entryUUID`}, Equality: `1.3.6.1.1.16.2`, HumanReadable: true},
	} {
		registerAttributeType(at)
	}
}
