package ldapcodec

import (
	"testing"
)

func TestDistinguishedName_NormalizationWithSchema(t *testing.T) {
	var r RFC4514
	dn, err := r.DistinguishedName(`OU=Exemple \+ Rdn\C3\A4\ `, DefaultSchema())
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}

	if dn.UpName() != `OU=Exemple \+ Rdn\C3\A4\ ` {
		t.Errorf("%s failed: upName not preserved: %q", t.Name(), dn.UpName())
	}

	want := `2.5.4.11=exemple \+ rdn\C3\A4`
	if dn.NormName() != want {
		t.Errorf("%s failed: normName %q, want %q", t.Name(), dn.NormName(), want)
	}
}

func TestDistinguishedName_NormIdempotence(t *testing.T) {
	var r RFC4514
	for _, raw := range []string{
		`cn=Babs Jensen,ou=People,o=Acme`,
		`OU=Sales+CN=J.  Smith,DC=example,DC=net`,
		`CN=Lu\C4\8Di\C4\87`,
		`ou=x;o=y`,
		``,
	} {
		first, err := r.DistinguishedName(raw, DefaultSchema())
		if err != nil {
			t.Fatalf("%s failed on %q: %v", t.Name(), raw, err)
		}

		second, err := r.DistinguishedName(first.NormName(), DefaultSchema())
		if err != nil {
			t.Fatalf("%s failed reparsing %q: %v", t.Name(), first.NormName(), err)
		}

		if first.NormName() != second.NormName() {
			t.Errorf("%s failed: %q normalizes to %q, then to %q",
				t.Name(), raw, first.NormName(), second.NormName())
		}
	}
}

func TestDistinguishedName_Equality(t *testing.T) {
	var r RFC4514
	a, _ := r.DistinguishedName(`CN=Babs  Jensen, OU=People`, DefaultSchema())
	b, _ := r.DistinguishedName(`cn=babs jensen,ou=people`, DefaultSchema())
	c, _ := r.DistinguishedName(`cn=someone else,ou=people`, DefaultSchema())

	if !a.Equal(b) {
		t.Errorf("%s failed: %q != %q", t.Name(), a.NormName(), b.NormName())
	}
	if a.Equal(c) {
		t.Errorf("%s failed: distinct DNs compared equal", t.Name())
	}
}

func TestDistinguishedName_SeparatorNormalization(t *testing.T) {
	var r RFC4514
	dn, err := r.DistinguishedName(`ou=widgets;o=acme`)
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}

	if dn.UpName() != `ou=widgets,o=acme` {
		t.Errorf("%s failed: semicolon separator not normalized: %q", t.Name(), dn.UpName())
	}
	if dn.Len() != 2 {
		t.Errorf("%s failed: expected two RDNs, got %d", t.Name(), dn.Len())
	}
}

func TestDistinguishedName_AncestorOf(t *testing.T) {
	var r RFC4514
	parent, _ := r.DistinguishedName(`ou=widgets,o=acme.com`, DefaultSchema())
	child, _ := r.DistinguishedName(`ou=sprockets,ou=widgets,o=acme.com`, DefaultSchema())
	stranger, _ := r.DistinguishedName(`ou=sprockets,ou=widgets,o=foo.com`, DefaultSchema())

	if !parent.AncestorOf(child) {
		t.Errorf("%s failed: parent not recognized", t.Name())
	}
	if parent.AncestorOf(stranger) {
		t.Errorf("%s failed: false ancestry", t.Name())
	}
	if parent.AncestorOf(parent) {
		t.Errorf("%s failed: DN cannot be its own ancestor", t.Name())
	}
}

func TestDistinguishedName_MultiValuedRDNOrder(t *testing.T) {
	var r RFC4514
	a, _ := r.DistinguishedName(`cn=Smith+ou=Sales,o=Acme`, DefaultSchema())
	b, _ := r.DistinguishedName(`ou=Sales+cn=Smith,o=Acme`, DefaultSchema())

	if !a.Equal(b) {
		t.Errorf("%s failed: AVA order should be insignificant: %q vs %q",
			t.Name(), a.NormName(), b.NormName())
	}
}

func TestDistinguishedName_EmptyIsLegal(t *testing.T) {
	var r RFC4514
	dn, err := r.DistinguishedName(``)
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}
	if !dn.IsZero() || dn.String() != `` {
		t.Errorf("%s failed: empty DN must print as the empty string", t.Name())
	}
}

func TestDistinguishedName_HexStringValue(t *testing.T) {
	var r RFC4514
	// #04024869 is the BER OCTET STRING encoding of "Hi".
	dn, err := r.DistinguishedName(`cn=#04024869`)
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}
	if dn.RDNs[0].Attributes[0].Value != `Hi` {
		t.Errorf("%s failed: hexstring value not decoded: %q",
			t.Name(), dn.RDNs[0].Attributes[0].Value)
	}
}

func TestDistinguishedName_SyntaxErrors(t *testing.T) {
	var r RFC4514
	for _, raw := range []string{
		`cn`,             // no value
		`cn=x,`,          // dangling separator
		`=x`,             // empty type
		`cn=x,=y`,        // empty type in later RDN
		`cn=x\`,          // dangling escape
		`1.2.x=v`,        // malformed OID type
		`cn=#04024869ZZ`, // non-hex in hexstring
		`cn=#0402486`,    // odd digit count
		`c;n=x`,          // delimiter inside type
	} {
		if _, err := r.DistinguishedName(raw); err == nil {
			t.Errorf("%s failed: %q accepted", t.Name(), raw)
		}
	}
}

func TestDistinguishedName_ErrorKinds(t *testing.T) {
	var r RFC4514

	_, err := r.DistinguishedName(`=v`)
	if _, ok := err.(AttributeTypeError); !ok {
		t.Errorf("%s failed: expected AttributeTypeError, got %T", t.Name(), err)
	}

	_, err = r.DistinguishedName(`cn=x\`)
	if _, ok := err.(DNSyntaxError); !ok {
		t.Errorf("%s failed: expected DNSyntaxError, got %T", t.Name(), err)
	}
}

func TestDistinguishedName_OIDPrefixStripped(t *testing.T) {
	var r RFC4514
	dn, err := r.DistinguishedName(`OID.2.5.4.3=value`)
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}
	if dn.NormName() != `2.5.4.3=value` {
		t.Errorf("%s failed: OID. prefix not stripped: %q", t.Name(), dn.NormName())
	}
}

func TestDistinguishedName_SchemalessNormalization(t *testing.T) {
	var r RFC4514
	dn, err := r.DistinguishedName(`CN=Mixed Case`)
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}

	// Without a schema the type lowercases but the value is left as
	// parsed.
	if dn.NormName() != `cn=Mixed Case` {
		t.Errorf("%s failed: schemaless normName %q", t.Name(), dn.NormName())
	}
}

func TestRelativeDistinguishedName_ExactlyOne(t *testing.T) {
	var r RFC4514
	if _, err := r.RelativeDistinguishedName(`cn=a,ou=b`); err == nil {
		t.Errorf("%s failed: multi-RDN input accepted as an RDN", t.Name())
	}
	rdn, err := r.RelativeDistinguishedName(`cn=a+sn=b`)
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}
	if len(rdn.Attributes) != 2 {
		t.Errorf("%s failed: expected two AVAs, got %d", t.Name(), len(rdn.Attributes))
	}
}
