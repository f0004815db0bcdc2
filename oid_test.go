package ldapcodec

import (
	"testing"
)

func TestRFC4512_OID(t *testing.T) {
	var r RFC4512

	for _, raw := range []string{
		`cn`,
		`commonName`,
		`x-attr-ext`,
		`2.5.4.3`,
		`1.3.6.1.4.1.1466.115.121.1.15`,
	} {
		if err := r.OID(raw); err != nil {
			t.Errorf("%s failed on %q: %v", t.Name(), raw, err)
		}
	}

	for _, raw := range []string{
		``,
		`-leading`,
		`trailing-`,
		`double--hyphen`,
		`has space`,
		`2..5`,
	} {
		if err := r.OID(raw); err == nil {
			t.Errorf("%s failed: %q accepted", t.Name(), raw)
		}
	}
}

func TestRFC4512_NumericOID(t *testing.T) {
	var r RFC4512

	noid, err := r.NumericOID(`2.5.4.11`)
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}
	if noid.String() != `2.5.4.11` {
		t.Errorf("%s failed: %q", t.Name(), noid.String())
	}

	if _, err = r.NumericOID(`cn`); err == nil {
		t.Errorf("%s failed: descriptor accepted as numeric OID", t.Name())
	}
}
