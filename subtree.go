package ldapcodec

/*
subtree.go implements the X.501 Subtree Specification construct and
its string form per RFC 3672.
*/

import (
	"github.com/JesseCoretta/go-objectid"
)

/*
SubtreeSpecification implements the Subtree Specification construct.

From Appendix A of RFC 3672:

	SubtreeSpecification = "{" [ sp ss-base ]
	                           [ sep sp ss-specificExclusions ]
	                           [ sep sp ss-minimum ]
	                           [ sep sp ss-maximum ]
	                           [ sep sp ss-specificationFilter ]
	                                sp "}"

	ss-base                = id-base                msp LocalName
	ss-specificExclusions  = id-specificExclusions  msp SpecificExclusions
	ss-minimum             = id-minimum             msp BaseDistance
	ss-maximum             = id-maximum             msp BaseDistance
	ss-specificationFilter = id-specificationFilter msp Refinement

	BaseDistance = INTEGER-0-MAX

Component labels must be separated from their openers by at least one
whitespace character; `{ base"ou=x" }` is rejected.
*/
type SubtreeSpecification struct {
	Base                LocalName
	SpecificExclusions  SpecificExclusions
	Min                 BaseDistance
	Max                 BaseDistance
	SpecificationFilter Refinement
}

/*
SpecificExclusions implements the Subtree Specification exclusions
construct.

From Appendix A of RFC 3672:

	SpecificExclusions = "{" [ sp SpecificExclusion *( "," sp SpecificExclusion ) ] sp "}"
*/
type SpecificExclusions []SpecificExclusion

/*
SpecificExclusion implements the Subtree Specification exclusion
construct.

From Appendix A of RFC 3672:

	SpecificExclusion  = chopBefore / chopAfter
	chopBefore         = id-chopBefore ":" LocalName
	chopAfter          = id-chopAfter  ":" LocalName
*/
type SpecificExclusion struct {
	Name  LocalName
	After bool // false = Before

	dn *DistinguishedName
}

/*
DN returns the parsed [DistinguishedName] of the receiver's LocalName.
*/
func (r SpecificExclusion) DN() *DistinguishedName { return r.dn }

/*
BaseDistance implements the INTEGER-0-MAX vertical distance bound of a
Subtree Specification.
*/
type BaseDistance int

/*
LocalName implements the RDNSequence content of a Subtree
Specification base or exclusion.
*/
type LocalName string

/*
String returns the string representation of the receiver instance.
*/
func (r SpecificExclusions) String() string {
	if len(r) == 0 {
		return `{ }`
	}

	var _s []string
	for i := 0; i < len(r); i++ {
		_s = append(_s, r[i].String())
	}

	return `{ ` + join(_s, `, `) + ` }`
}

/*
String returns the string representation of the receiver instance.
*/
func (r SpecificExclusion) String() (s string) {
	if len(r.Name) > 0 {
		if r.After {
			s = `chopAfter:"` + string(r.Name) + `"`
		} else {
			s = `chopBefore:"` + string(r.Name) + `"`
		}
	}

	return
}

/*
ChopBefore returns the parsed DNs of the receiver's chopBefore
exclusions.
*/
func (r SubtreeSpecification) ChopBefore() (dns []*DistinguishedName) {
	for i := 0; i < len(r.SpecificExclusions); i++ {
		if !r.SpecificExclusions[i].After {
			dns = append(dns, r.SpecificExclusions[i].dn)
		}
	}
	return
}

/*
ChopAfter returns the parsed DNs of the receiver's chopAfter
exclusions.
*/
func (r SubtreeSpecification) ChopAfter() (dns []*DistinguishedName) {
	for i := 0; i < len(r.SpecificExclusions); i++ {
		if r.SpecificExclusions[i].After {
			dns = append(dns, r.SpecificExclusions[i].dn)
		}
	}
	return
}

/*
String returns the string representation of the receiver instance.
*/
func (r SubtreeSpecification) String() (s string) {
	var _s []string
	if len(r.Base) > 0 {
		_s = append(_s, `base "`+string(r.Base)+`"`)
	}

	if x := r.SpecificExclusions; len(x) > 0 {
		_s = append(_s, `specificExclusions `+x.String())
	}

	if r.Min > 0 {
		_s = append(_s, `minimum `+itoa(int(r.Min)))
	}

	if r.Max > 0 {
		_s = append(_s, `maximum `+itoa(int(r.Max)))
	}

	if r.SpecificationFilter != nil {
		_s = append(_s, `specificationFilter `+r.SpecificationFilter.String())
	}

	s = `{ ` + join(_s, `, `) + ` }`

	return
}

/*
SubtreeSpecification returns an instance of [SubtreeSpecification]
alongside an error following an analysis of x. Component order is not
significant. A [SchemaManager] may be supplied variadically for DN
normalization of the base and exclusion names.
*/
func (r RFC3672) SubtreeSpecification(x any, schema ...SchemaManager) (ss SubtreeSpecification, err error) {
	var raw string
	if raw, err = assertString(x, 1, "Subtree Specification"); err != nil {
		return
	}

	var sm SchemaManager
	if len(schema) > 0 {
		sm = schema[0]
	}

	raw = trimS(raw)
	if len(raw) < 2 || raw[0] != '{' || raw[len(raw)-1] != '}' {
		err = errorTxt("SubtreeSpecification {} encapsulation error")
		return
	}
	raw = trimS(raw[1 : len(raw)-1])
	if len(raw) == 0 {
		return
	}

	var seen []string
	for _, component := range splitSubtreeComponents(raw) {
		component = trimS(component)
		if len(component) == 0 {
			err = errorTxt("Empty SubtreeSpecification component")
			return
		}

		var label, rest string
		if label, rest, err = splitSubtreeLabel(component); err != nil {
			return
		}

		if strInSlice(label, seen) {
			err = errorTxt("Duplicate SubtreeSpecification component '" + label + "'")
			return
		}
		seen = append(seen, label)

		switch label {
		case `base`:
			var name LocalName
			if name, err = subtreeLocalName(rest, sm); err != nil {
				return
			}
			ss.Base = name
		case `specificExclusions`:
			ss.SpecificExclusions, err = subtreeExclusions(rest, sm)
		case `minimum`:
			ss.Min, err = subtreeDistance(rest)
		case `maximum`:
			ss.Max, err = subtreeDistance(rest)
		case `specificationFilter`:
			ss.SpecificationFilter, err = subtreeRefinement(rest)
		default:
			err = errorTxt("Unknown SubtreeSpecification component '" + label + "'")
		}

		if err != nil {
			return
		}
	}

	return
}

// splitSubtreeComponents splits on top-level commas, honoring brace
// nesting and quoted local names.
func splitSubtreeComponents(raw string) (parts []string) {
	var depth int
	var quoted bool
	current := newStrBuilder()

	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		switch {
		case ch == '"':
			quoted = !quoted
		case !quoted && ch == '{':
			depth++
		case !quoted && ch == '}':
			depth--
		case !quoted && depth == 0 && ch == ',':
			parts = append(parts, current.String())
			current.Reset()
			continue
		}
		current.WriteByte(ch)
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return
}

// splitSubtreeLabel separates a component's label from its opener,
// requiring at least one whitespace character between them.
func splitSubtreeLabel(component string) (label, rest string, err error) {
	var i int
	for i < len(component) && component[i] != ' ' && component[i] != '\t' {
		i++
	}

	label = component[:i]
	if !isKeystring(label) {
		err = errorTxt("Malformed SubtreeSpecification component label '" + label + "'")
		return
	}

	if i == len(component) {
		err = errorTxt("SubtreeSpecification component '" + label + "' carries no value")
		return
	}

	rest = trimS(component[i:])
	if len(rest) == 0 {
		err = errorTxt("SubtreeSpecification component '" + label + "' carries no value")
	}

	return
}

func subtreeLocalName(rest string, sm SchemaManager) (name LocalName, err error) {
	if len(rest) < 2 || rest[0] != '"' || rest[len(rest)-1] != '"' {
		err = errorTxt("Missing encapsulation (\") for LocalName")
		return
	}

	inner := rest[1 : len(rest)-1]
	if err = isSafeUTF8(inner); err != nil {
		return
	}

	if _, err = parseDN(inner, sm); err != nil {
		return
	}

	name = LocalName(inner)
	return
}

func subtreeExclusions(rest string, sm SchemaManager) (excl SpecificExclusions, err error) {
	if len(rest) < 2 || rest[0] != '{' || rest[len(rest)-1] != '}' {
		err = errorTxt("Bad exclusion encapsulation")
		return
	}

	inner := trimS(rest[1 : len(rest)-1])
	excl = make(SpecificExclusions, 0)
	if len(inner) == 0 {
		return
	}

	for _, item := range splitSubtreeComponents(inner) {
		item = trimS(item)

		idx := stridx(item, `:`)
		if idx == -1 {
			err = errorTxt("Missing ':' in exclusion '" + item + "'")
			return
		}

		var ex SpecificExclusion
		directive := trimS(item[:idx])
		if !strInSlice(directive, []string{`chopBefore`, `chopAfter`}) {
			err = errorTxt("Unexpected key '" + directive + "'")
			return
		}
		ex.After = directive == `chopAfter`

		var name LocalName
		if name, err = subtreeLocalName(trimS(item[idx+1:]), sm); err != nil {
			return
		}
		ex.Name = name
		ex.dn, _ = parseDN(string(name), sm)

		excl = append(excl, ex)
	}

	return
}

func subtreeDistance(rest string) (distance BaseDistance, err error) {
	for _, ch := range rest {
		if !isDigit(ch) {
			err = errorTxt("Malformed base distance '" + rest + "'")
			return
		}
	}

	var n int
	if n, err = atoi(rest); err == nil {
		distance = BaseDistance(n)
	}

	return
}

/*
Refinement implements Appendix A of RFC 3672, and serves as the
"SpecificationFilter" optionally found within a Subtree Specification.
It is qualified through instances of:

  - [ItemRefinement]
  - [AndRefinement]
  - [OrRefinement]
  - [NotRefinement]

From § 12.3.5 of X.501:

	Refinement ::= CHOICE {
	    item [0] OBJECT-CLASS.&id,
	    and  [1] SET SIZE (1..MAX) OF Refinement,
	    or   [2] SET SIZE (1..MAX) OF Refinement,
	    not  [3] Refinement,
	    ... }
*/
type Refinement interface {
	IsZero() bool
	String() string
	Type() string
	Len() int
}

/*
AndRefinement implements slices of [Refinement], all of which are
expected to evaluate as true during processing.
*/
type AndRefinement []Refinement

/*
OrRefinement implements slices of [Refinement], at least one of which
is expected to evaluate as true during processing.
*/
type OrRefinement []Refinement

/*
NotRefinement implements a negated, recursive instance of
[Refinement].
*/
type NotRefinement struct {
	Refinement
}

/*
ItemRefinement implements the core ("atom") value type to be used in
[Refinement] statements: an object class name or numeric OID,
resolvable against the schema manager.
*/
type ItemRefinement string

/*
IsZero returns a Boolean value indicative of a nil receiver state.
*/
func (r AndRefinement) IsZero() bool { return r == nil }

/*
IsZero returns a Boolean value indicative of a nil receiver state.
*/
func (r OrRefinement) IsZero() bool { return r == nil }

/*
IsZero returns a Boolean value indicative of a nil receiver state.
*/
func (r NotRefinement) IsZero() bool { return r.Refinement == nil }

/*
IsZero returns a Boolean value indicative of a nil receiver state.
*/
func (r ItemRefinement) IsZero() bool { return len(r) == 0 }

/*
String returns the string representation of the receiver instance.
*/
func (r AndRefinement) String() string {
	if r.IsZero() {
		return ``
	}

	var parts []string
	for _, ref := range r {
		parts = append(parts, ref.String())
	}
	return `and:{` + join(parts, `,`) + `}`
}

/*
String returns the string representation of the receiver instance.
*/
func (r OrRefinement) String() string {
	if r.IsZero() {
		return ``
	}

	var parts []string
	for _, ref := range r {
		parts = append(parts, ref.String())
	}
	return `or:{` + join(parts, `,`) + `}`
}

/*
String returns the string representation of the receiver instance.
*/
func (r NotRefinement) String() string {
	if r.IsZero() {
		return ``
	}

	return `not:` + r.Refinement.String()
}

/*
String returns the string representation of the receiver instance.
*/
func (r ItemRefinement) String() string {
	if r.IsZero() {
		return ``
	}

	return `item:` + string(r)
}

/*
Type returns the string literal "and".
*/
func (r AndRefinement) Type() string { return `and` }

/*
Type returns the string literal "or".
*/
func (r OrRefinement) Type() string { return `or` }

/*
Type returns the string literal "not".
*/
func (r NotRefinement) Type() string { return `not` }

/*
Type returns the string literal "item".
*/
func (r ItemRefinement) Type() string { return `item` }

/*
Len returns the integer length of the receiver instance.
*/
func (r AndRefinement) Len() int { return len(r) }

/*
Len returns the integer length of the receiver instance.
*/
func (r OrRefinement) Len() int { return len(r) }

/*
Len returns the length of the negated [Refinement] instance.
*/
func (r NotRefinement) Len() int {
	if r.IsZero() {
		return 0
	}
	return r.Refinement.Len()
}

/*
Len always returns the integer 1 (one).
*/
func (r ItemRefinement) Len() int { return 1 }

func subtreeRefinement(input string) (ref Refinement, err error) {
	input = trimS(input)

	if hasPfx(input, `item:`) {
		ref, err = parseItemRefinement(input)
	} else if hasPfx(input, `and:`) {
		ref, err = parseComplexRefinement(input, `and:`)
	} else if hasPfx(input, `or:`) {
		ref, err = parseComplexRefinement(input, `or:`)
	} else if hasPfx(input, `not:`) {
		ref, err = parseNotRefinement(input)
	} else {
		err = errorTxt("invalid refinement: " + input)
	}

	return
}

func parseItemRefinement(input string) (Refinement, error) {
	parts := splitN(input, `:`, 2)
	if len(parts) != 2 || len(trimS(parts[1])) == 0 {
		return nil, errorTxt("invalid item: " + input)
	}

	item := trimS(parts[1])
	if isNumericOIDForm(item) {
		if _, err := objectid.NewDotNotation(item); err != nil {
			return nil, errorTxt("invalid item OID: " + item)
		}
	} else if !isKeystring(item) {
		return nil, errorTxt("invalid item: " + item)
	}

	return ItemRefinement(item), nil
}

func parseNotRefinement(input string) (Refinement, error) {
	subRef, err := subtreeRefinement(trimPfx(input, `not:`))
	if err != nil {
		return nil, err
	}
	return NotRefinement{subRef}, nil
}

func parseComplexRefinement(input, prefix string) (Refinement, error) {
	input = trimS(trimPfx(input, prefix))
	if !hasPfx(input, `{`) || !hasSfx(input, `}`) {
		return nil, errorTxt("invalid refinement set: " + input)
	}
	input = trimSfx(trimPfx(input, `{`), `}`)

	var refs []Refinement
	for _, part := range splitRefinementParts(input) {
		subRef, err := subtreeRefinement(part)
		if err != nil {
			return nil, err
		}
		refs = append(refs, subRef)
	}

	if len(refs) == 0 {
		return nil, errorTxt("empty refinement set")
	}

	if prefix == `and:` {
		return AndRefinement(refs), nil
	}
	return OrRefinement(refs), nil
}

func splitRefinementParts(input string) []string {
	var parts []string
	currentPart := newStrBuilder()
	depth := 0

	for _, char := range input {
		if char == '{' {
			depth++
		} else if char == '}' {
			depth--
		}

		if char == ',' && depth == 0 {
			parts = append(parts, trimS(currentPart.String()))
			currentPart.Reset()
		} else {
			currentPart.WriteRune(char)
		}
	}

	if currentPart.Len() > 0 {
		parts = append(parts, trimS(currentPart.String()))
	}

	return parts
}
