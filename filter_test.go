package ldapcodec

import (
	"fmt"
	"testing"
)

func TestFilter_ParseAndReserialize(t *testing.T) {
	var r RFC4515
	for _, raw := range []string{
		`(objectClass=*)`,
		`(cn=Babs Jensen)`,
		`(!(cn=Tim Howes))`,
		`(&(objectClass=Person)(|(sn=Jensen)(cn=Babs J*)))`,
		`(o=univ*of*mich*)`,
		`(cn=*hidden*)`,
		`(sn>=Smith)`,
		`(sn<=Smith)`,
		`(sn~=Smith)`,
		`(cn:caseExactMatch:=Fred Flintstone)`,
		`(cn:dn:=Betty Rubble)`,
		`(:dn:2.4.6.8.10:=Dino)`,
		`(sn:dn:2.4.6.8.10:=Barney Rubble)`,
		`(seeAlso=)`,
	} {
		f, err := r.Filter(raw)
		if err != nil {
			t.Fatalf("%s failed on %q: %v", t.Name(), raw, err)
		}

		if got := f.String(); got != raw {
			t.Errorf("%s failed: %q reserialized as %q", t.Name(), raw, got)
		}

		// Property: the reserialization parses to a structurally
		// identical tree.
		again, err := r.Filter(f.String())
		if err != nil {
			t.Fatalf("%s failed reparsing %q: %v", t.Name(), f.String(), err)
		}
		if again.String() != f.String() || again.Choice() != f.Choice() {
			t.Errorf("%s failed: %q did not round trip", t.Name(), raw)
		}
	}
}

func TestFilter_SubstringShapes(t *testing.T) {
	var r RFC4515

	f, err := r.Filter(`(cn=Babs J*)`)
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}
	sub, ok := f.(SubstringsFilter)
	if !ok {
		t.Fatalf("%s failed: expected SubstringsFilter, got %T", t.Name(), f)
	}
	if string(sub.Substrings.Initial) != `Babs J` ||
		len(sub.Substrings.Any) != 0 || sub.Substrings.Final != nil {
		t.Errorf("%s failed: unexpected substring shape %#v", t.Name(), sub.Substrings)
	}

	f, _ = r.Filter(`(cn=*foo*)`)
	sub = f.(SubstringsFilter)
	if sub.Substrings.Initial != nil || len(sub.Substrings.Any) != 1 ||
		string(sub.Substrings.Any[0]) != `foo` || sub.Substrings.Final != nil {
		t.Errorf("%s failed: unexpected any-only shape %#v", t.Name(), sub.Substrings)
	}

	f, _ = r.Filter(`(o=univ*of*mich*)`)
	sub = f.(SubstringsFilter)
	if string(sub.Substrings.Initial) != `univ` ||
		len(sub.Substrings.Any) != 2 ||
		string(sub.Substrings.Any[0]) != `of` ||
		string(sub.Substrings.Any[1]) != `mich` ||
		sub.Substrings.Final != nil {
		t.Errorf("%s failed: unexpected multi-any shape %#v", t.Name(), sub.Substrings)
	}

	// A bare asterisk is presence, never a substring.
	f, _ = r.Filter(`(cn=*)`)
	if _, ok = f.(PresentFilter); !ok {
		t.Errorf("%s failed: (cn=*) must parse as presence, got %T", t.Name(), f)
	}
}

func TestFilter_EscapeHandling(t *testing.T) {
	var r RFC4515

	f, err := r.Filter(`(o=Parens R Us \28for all your parenthetical needs\29)`)
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}
	eq := f.(EqualityMatchFilter)
	if string(eq.Value) != `Parens R Us (for all your parenthetical needs)` {
		t.Errorf("%s failed: escapes not decoded: %q", t.Name(), string(eq.Value))
	}

	// Canonical reserialization uses uppercase \HH.
	if got := f.String(); got != `(o=Parens R Us \28for all your parenthetical needs\29)` {
		t.Errorf("%s failed: %q", t.Name(), got)
	}

	f, err = r.Filter(`(cn=*\2A*)`)
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}
	sub := f.(SubstringsFilter)
	if len(sub.Substrings.Any) != 1 || string(sub.Substrings.Any[0]) != `*` {
		t.Errorf("%s failed: escaped asterisk mishandled", t.Name())
	}

	// A lone backslash is an error in filter values.
	for _, raw := range []string{
		`(cn=trailing\)`,
		`(cn=bad\escape)`,
		`(cn=bad\9)`,
	} {
		if _, err = r.Filter(raw); err == nil {
			t.Errorf("%s failed: %q accepted", t.Name(), raw)
		}
	}
}

func TestFilter_StructuralErrors(t *testing.T) {
	var r RFC4515
	for _, raw := range []string{
		`(&)`,
		`(|)`,
		`(!)`,
		`(!(a=b)(c=d))`,
		`(cn=unclosed`,
		`cn=bare`,
		`(=value)`,
		`(cn=a)(cn=b)`,
		`(cn=a**b)`,
	} {
		if _, err := r.Filter(raw); err == nil {
			t.Errorf("%s failed: %q accepted", t.Name(), raw)
		}
	}
}

func TestFilter_DefaultPresence(t *testing.T) {
	var r RFC4515
	f, err := r.Filter(nil)
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}
	if f.String() != `(objectClass=*)` {
		t.Errorf("%s failed: default filter %q", t.Name(), f.String())
	}
}

func TestFilter_ChoiceNames(t *testing.T) {
	var r RFC4515
	for raw, choice := range map[string]string{
		`(&(a=b)(c=d))`:  `and`,
		`(|(a=b)(c=d))`:  `or`,
		`(!(a=b))`:       `not`,
		`(a=b)`:          `equalityMatch`,
		`(a>=b)`:         `greaterOrEqual`,
		`(a<=b)`:         `lessOrEqual`,
		`(a~=b)`:         `approxMatch`,
		`(a=*)`:          `present`,
		`(a=b*c)`:        `substrings`,
		`(a:dn:=b)`:      `extensibleMatch`,
	} {
		f, err := r.Filter(raw)
		if err != nil {
			t.Fatalf("%s failed on %q: %v", t.Name(), raw, err)
		}
		if f.Choice() != choice {
			t.Errorf("%s failed: %q choice %q, want %q", t.Name(), raw, f.Choice(), choice)
		}
	}
}

func TestFilter_BERRoundTripThroughCodec(t *testing.T) {
	var r RFC4515
	for _, raw := range []string{
		`(&(objectClass=Person)(|(sn=Jensen)(cn=Babs J*)))`,
		`(!(o=univ*of*mich*))`,
		`(sn:dn:2.4.6.8.10:=Barney Rubble)`,
		`(cn=*)`,
		`(sn>=Smith)`,
	} {
		f, err := r.Filter(raw)
		if err != nil {
			t.Fatalf("%s failed on %q: %v", t.Name(), raw, err)
		}

		req := &SearchRequest{Filter: f}
		req.SetMessageID(21)
		pdu, err := EncodeMessage(req)
		if err != nil {
			t.Fatalf("%s failed encoding %q: %v", t.Name(), raw, err)
		}

		dec := NewDecoder()
		msgs, err := dec.Feed(pdu)
		if err != nil {
			t.Fatalf("%s failed decoding %q: %v", t.Name(), raw, err)
		}
		got := msgs[0].(*SearchRequest).Filter
		if got.String() != raw {
			t.Errorf("%s failed: %q decoded to %q", t.Name(), raw, got.String())
		}
	}
}

func TestFilter_EmptyAndFromBEROnly(t *testing.T) {
	// RFC 4526 absolute true: an and filter with no children is legal
	// on the wire but not in the string form.
	req := &SearchRequest{Filter: AndFilter{}}
	req.SetMessageID(22)

	pdu, err := EncodeMessage(req)
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}

	dec := NewDecoder()
	msgs, err := dec.Feed(pdu)
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}

	f, ok := msgs[0].(*SearchRequest).Filter.(AndFilter)
	if !ok || f.Len() != 0 {
		t.Errorf("%s failed: expected empty and filter, got %T", t.Name(), msgs[0].(*SearchRequest).Filter)
	}
}

/*
This example demonstrates parsing an RFC 4515 filter and accessing its
BER packet view.
*/
func ExampleRFC4515_Filter() {
	var r RFC4515
	f, _ := r.Filter(`(&(sn=Jensen)(objectClass=person))`)

	packet, err := f.BER()
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("%s: %d children\n", packet.Description, len(packet.Children))
	// Output: and: 2 children
}
