package ldapcodec

import (
	"bytes"
	"testing"
)

func TestEncoder_MissingRequiredFields(t *testing.T) {
	entry, _ := RFC4514{}.DistinguishedName(`cn=x,ou=system`)

	for _, msg := range []Message{
		&ModifyDnRequest{Entry: entry}, // no new RDN
		&ModifyDnRequest{},             // no entry
		&DelRequest{},                  // no DN
		&CompareRequest{Entry: entry},  // no description
		&SearchRequest{},               // no filter
		&BindRequest{Version: 3},       // no authentication choice
		&SearchResultReference{},       // no URIs
	} {
		msg.SetMessageID(1)
		_, err := EncodeMessage(msg)
		derr, ok := err.(DecodingError)
		if !ok || derr.Kind != KindEncodingError {
			t.Errorf("%s failed: %T produced %v", t.Name(), msg, err)
		}
	}
}

func TestEncoder_MessageIDBounds(t *testing.T) {
	req := &UnbindRequest{}
	req.SetMessageID(-1)
	if _, err := EncodeMessage(req); err == nil {
		t.Errorf("%s failed: negative message ID accepted", t.Name())
	}

	// Zero is reserved for unsolicited notifications.
	req.SetMessageID(0)
	if _, err := EncodeMessage(req); err == nil {
		t.Errorf("%s failed: zero message ID accepted for a request", t.Name())
	}

	notice := &ExtendedResponse{
		LdapResult: LdapResult{Code: ResultUnavailable},
		Name:       `1.3.6.1.4.1.1466.20036`,
		HasName:    true,
	}
	if _, err := EncodeMessage(notice); err != nil {
		t.Errorf("%s failed: notice of disconnection rejected: %v", t.Name(), err)
	}
}

func TestEncoder_BindResponseWithSaslCreds(t *testing.T) {
	resp := &BindResponse{
		LdapResult:         LdapResult{Code: ResultSaslBindInProgress},
		ServerSaslCreds:    []byte{0xDE, 0xAD},
		HasServerSaslCreds: true,
	}
	resp.SetMessageID(2)

	pdu, err := EncodeMessage(resp)
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}

	decoded := feedOne(t, pdu).(*BindResponse)
	if decoded.Code != ResultSaslBindInProgress {
		t.Errorf("%s failed: result code lost", t.Name())
	}
	if !decoded.HasServerSaslCreds || !bytes.Equal(decoded.ServerSaslCreds, []byte{0xDE, 0xAD}) {
		t.Errorf("%s failed: server SASL credentials lost", t.Name())
	}

	reencoded, _ := EncodeMessage(decoded)
	if !bytes.Equal(reencoded, pdu) {
		t.Errorf("%s failed: bind response round trip diverged", t.Name())
	}
}

func TestEncoder_SaslBindRoundTrip(t *testing.T) {
	req := &BindRequest{
		Version: 3,
		Name:    `uid=jdoe,ou=people,ou=system`,
		Auth: SaslAuthentication{
			Mechanism:      `DIGEST-MD5`,
			Credentials:    []byte(`challenge-response`),
			HasCredentials: true,
		},
	}
	req.SetMessageID(3)

	pdu, err := EncodeMessage(req)
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}

	decoded := feedOne(t, pdu).(*BindRequest)
	sasl, ok := decoded.Auth.(SaslAuthentication)
	if !ok {
		t.Fatalf("%s failed: expected SASL choice, got %T", t.Name(), decoded.Auth)
	}
	if sasl.Mechanism != `DIGEST-MD5` || !sasl.HasCredentials ||
		string(sasl.Credentials) != `challenge-response` {
		t.Errorf("%s failed: SASL content lost", t.Name())
	}

	reencoded, _ := EncodeMessage(decoded)
	if !bytes.Equal(reencoded, pdu) {
		t.Errorf("%s failed: SASL bind round trip diverged", t.Name())
	}
}

func TestEncoder_AddRequestRoundTrip(t *testing.T) {
	schema := DefaultSchema()
	dn, _ := RFC4514{}.DistinguishedName(`cn=new entry,ou=system`, schema)

	oc := NewAttribute(`objectClass`, schema)
	_ = oc.AddValue([]byte(`top`), schema)
	_ = oc.AddValue([]byte(`person`), schema)
	cn := NewAttribute(`cn`, schema)
	_ = cn.AddValue([]byte(`new entry`), schema)

	req := &AddRequest{Entry: Entry{DN: dn, Attrs: []*Attribute{oc, cn}}}
	req.SetMessageID(4)

	pdu, err := EncodeMessage(req)
	if err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}

	decoded := feedOne(t, pdu).(*AddRequest)
	if decoded.Entry.DN.UpName() != `cn=new entry,ou=system` {
		t.Errorf("%s failed: entry DN lost", t.Name())
	}
	if len(decoded.Entry.Attrs) != 2 {
		t.Fatalf("%s failed: attribute count %d", t.Name(), len(decoded.Entry.Attrs))
	}
	if decoded.Entry.Attrs[0].Desc != `objectClass` || decoded.Entry.Attrs[0].Len() != 2 {
		t.Errorf("%s failed: objectClass values lost", t.Name())
	}

	reencoded, _ := EncodeMessage(decoded)
	if !bytes.Equal(reencoded, pdu) {
		t.Errorf("%s failed: add request round trip diverged", t.Name())
	}
}

func TestEncoder_ResultResponsesRoundTrip(t *testing.T) {
	build := []func(LdapResult) Message{
		func(res LdapResult) Message { return &ModifyResponse{LdapResult: res} },
		func(res LdapResult) Message { return &AddResponse{LdapResult: res} },
		func(res LdapResult) Message { return &DelResponse{LdapResult: res} },
		func(res LdapResult) Message { return &ModifyDnResponse{LdapResult: res} },
		func(res LdapResult) Message { return &CompareResponse{LdapResult: res} },
		func(res LdapResult) Message { return &SearchResultDone{LdapResult: res} },
	}

	res := LdapResult{
		Code:       ResultNoSuchObject,
		MatchedDN:  `ou=system`,
		Diagnostic: `entry not found`,
	}

	for _, mk := range build {
		msg := mk(res)
		msg.SetMessageID(5)

		pdu, err := EncodeMessage(msg)
		if err != nil {
			t.Fatalf("%s failed on %T: %v", t.Name(), msg, err)
		}

		decoded := feedOne(t, pdu)
		if decoded.Kind() != msg.Kind() {
			t.Errorf("%s failed: %s decoded as %s", t.Name(), msg.Kind(), decoded.Kind())
		}

		reencoded, _ := EncodeMessage(decoded)
		if !bytes.Equal(reencoded, pdu) {
			t.Errorf("%s failed: %s round trip diverged", t.Name(), msg.Kind())
		}
	}
}

func TestEncoder_BufferReuse(t *testing.T) {
	buf := NewBerBuffer()

	req := &UnbindRequest{}
	req.SetMessageID(500)
	if err := EncodeMessageTo(req, buf); err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}
	first := append([]byte{}, buf.Bytes()...)

	buf.Reset()
	if err := EncodeMessageTo(req, buf); err != nil {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}

	if !bytes.Equal(first, buf.Bytes()) {
		t.Errorf("%s failed: buffer reuse changed the encoding", t.Name())
	}
}
