package ldapcodec

import (
	"bytes"
	"testing"
)

func TestPersistentSearchControl_Decode(t *testing.T) {
	inner := mustHex(t, `30 09 02 01 09 01 01 00 01 01 00`)

	typed, err := decodePersistentSearch(inner)
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}

	ctl := typed.(PersistentSearchControl)
	if ctl.ChangeTypes != ChangeTypeAdd|ChangeTypeModDN {
		t.Errorf("%s failed: changeTypes %d, want 9", t.Name(), ctl.ChangeTypes)
	}
	if ctl.ChangesOnly || ctl.ReturnECs {
		t.Errorf("%s failed: boolean members must be false", t.Name())
	}

	// changeTypes of zero and of more than fifteen are rejected.
	if _, err = decodePersistentSearch(mustHex(t, `30 09 02 01 00 01 01 00 01 01 00`)); err == nil {
		t.Errorf("%s failed: changeTypes zero accepted", t.Name())
	}
	if _, err = decodePersistentSearch(mustHex(t, `30 09 02 01 10 01 01 00 01 01 00`)); err == nil {
		t.Errorf("%s failed: changeTypes sixteen accepted", t.Name())
	}
}

func TestPersistentSearchControl_RoundTrip(t *testing.T) {
	in := PersistentSearchControl{
		ChangeTypes: ChangeTypeAdd | ChangeTypeDelete,
		ChangesOnly: true,
		ReturnECs:   true,
	}

	value, err := in.Encode()
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}

	typed, err := decodePersistentSearch(value)
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}
	if typed.(PersistentSearchControl) != in {
		t.Errorf("%s failed: %+v round tripped to %+v", t.Name(), in, typed)
	}
}

func TestPagedResultsControl_RoundTrip(t *testing.T) {
	in := PagedResultsControl{Size: 512, Cookie: []byte{0x01, 0x02, 0x03}}

	value, err := in.Encode()
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}

	typed, err := decodePagedResults(value)
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}
	out := typed.(PagedResultsControl)
	if out.Size != 512 || !bytes.Equal(out.Cookie, in.Cookie) {
		t.Errorf("%s failed: %+v round tripped to %+v", t.Name(), in, out)
	}

	// An empty cookie is how paging begins.
	value, _ = PagedResultsControl{Size: 10}.Encode()
	typed, err = decodePagedResults(value)
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}
	if typed.(PagedResultsControl).Size != 10 {
		t.Errorf("%s failed: empty cookie paging lost its size", t.Name())
	}
}

func TestSortControls_RoundTrip(t *testing.T) {
	in := SortRequestControl{
		Keys: []SortKey{
			{AttributeType: `sn`},
			{AttributeType: `givenName`, OrderingRule: `2.5.13.3`, ReverseOrder: true},
		},
	}

	value, err := in.Encode()
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}

	typed, err := decodeSortRequest(value)
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}
	out := typed.(SortRequestControl)
	if len(out.Keys) != 2 ||
		out.Keys[0] != in.Keys[0] ||
		out.Keys[1] != in.Keys[1] {
		t.Errorf("%s failed: %+v round tripped to %+v", t.Name(), in, out)
	}

	if _, err = (SortRequestControl{}).Encode(); err == nil {
		t.Errorf("%s failed: empty key list accepted", t.Name())
	}

	resp := SortResponseControl{Result: ResultUnwillingToPerform, AttributeType: `sn`}
	value, err = resp.Encode()
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}
	typed, err = decodeSortResponse(value)
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}
	if typed.(SortResponseControl) != resp {
		t.Errorf("%s failed: sort response round trip diverged", t.Name())
	}
}

func TestEntryChangeControl_RoundTrip(t *testing.T) {
	in := EntryChangeControl{
		ChangeType:      ChangeTypeModDN,
		PreviousDN:      `cn=old,ou=system`,
		HasPreviousDN:   true,
		ChangeNumber:    7,
		HasChangeNumber: true,
	}

	value, err := in.Encode()
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}

	typed, err := decodeEntryChange(value)
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}
	if typed.(EntryChangeControl) != in {
		t.Errorf("%s failed: %+v round tripped to %+v", t.Name(), in, typed)
	}

	if _, err = (EntryChangeControl{ChangeType: 3}).Encode(); err == nil {
		t.Errorf("%s failed: changeType 3 accepted", t.Name())
	}
}

func TestSubentriesControl(t *testing.T) {
	value, err := SubentriesControl{Visibility: true}.Encode()
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}

	typed, err := decodeSubentries(value)
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}
	if !typed.(SubentriesControl).Visibility {
		t.Errorf("%s failed: visibility lost", t.Name())
	}
}

func TestProxiedAuthzControl(t *testing.T) {
	for _, authz := range []string{``, `dn:uid=admin,ou=system`, `u:admin`} {
		typed, err := decodeProxiedAuthz([]byte(authz))
		if err != nil {
			t.Fatalf("%s failed on %q: %v", t.Name(), authz, err)
		}
		if typed.(ProxiedAuthzControl).AuthzID != authz {
			t.Errorf("%s failed: authzId lost", t.Name())
		}
	}

	if _, err := decodeProxiedAuthz([]byte(`bogus`)); err == nil {
		t.Errorf("%s failed: malformed authzId accepted", t.Name())
	}
}

func TestValuelessControls(t *testing.T) {
	for _, factory := range []controlFactory{decodeManageDsaIT, decodeCascade} {
		if _, err := factory(nil); err != nil {
			t.Errorf("%s failed: %v", t.Name(), err)
		}
		if _, err := factory([]byte{0x01}); err == nil {
			t.Errorf("%s failed: unexpected value accepted", t.Name())
		}
	}
}

func TestNewControl(t *testing.T) {
	ctl, err := NewControl(PagedResultsControl{Size: 25}, true)
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}
	if ctl.OID != ControlOIDPagedResults || !ctl.Criticality || len(ctl.Value) == 0 {
		t.Errorf("%s failed: %+v", t.Name(), ctl)
	}

	ctl, err = NewControl(CascadeControl{})
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}
	if ctl.Value != nil || ctl.Criticality {
		t.Errorf("%s failed: valueless control gained a value", t.Name())
	}
}
