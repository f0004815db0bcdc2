package ldapcodec

/*
encoder.go implements the reverse single-pass encoders: one per
message variant, each traversing the message model emitting bytes
backwards into a [BerBuffer] so that no length is ever precomputed by
a separate tree walk. The buffer's forward view is valid BER.

Controls are emitted first (and therefore serialize last inside the
message), preserving the order in which they were added.
*/

func encErr(msg string) error {
	return DecodingError{Kind: KindEncodingError, Msg: msg}
}

/*
EncodeMessage returns the complete PDU octets for the input message.
The returned slice aliases a freshly allocated buffer owned by the
caller.
*/
func EncodeMessage(m Message) (pdu []byte, err error) {
	buf := NewBerBuffer()
	if err = EncodeMessageTo(m, buf); err != nil {
		return
	}

	pdu = buf.Bytes()
	return
}

/*
EncodeMessageTo appends one complete PDU to the head of the supplied
buffer. On error the buffer is left in an unspecified state and should
be discarded.
*/
func EncodeMessageTo(m Message, buf *BerBuffer) (err error) {
	if m == nil {
		err = encErr("nil message")
		return
	}

	id := m.MessageID()
	if id < 0 {
		err = encErr("negative message ID")
		return
	} else if id == 0 {
		// Message ID zero is reserved for unsolicited notifications.
		if _, ok := m.(*ExtendedResponse); !ok {
			err = encErr("message ID zero is reserved for unsolicited notifications")
			return
		}
	}

	start := buf.Len()

	if err = encodeControls(buf, m.Controls()); err != nil {
		return
	}

	if err = encodeProtocolOp(buf, m); err != nil {
		return
	}

	buf.writeInteger(int64(id))
	buf.writeSequenceAt(start)

	return
}

func encodeControls(buf *BerBuffer, ctls []Control) (err error) {
	if len(ctls) == 0 {
		return
	}

	start := buf.Len()

	for i := len(ctls) - 1; i >= 0; i-- {
		ctl := ctls[i]
		if len(ctl.OID) == 0 {
			err = encErr("control carries no OID")
			return
		}

		cstart := buf.Len()
		if ctl.Value != nil {
			buf.writeOctetString(ctl.Value)
		}
		if ctl.Criticality {
			buf.writeBoolean(true)
		}
		buf.writeOctetString([]byte(ctl.OID))
		buf.writeSequenceAt(cstart)
	}

	buf.writeHeaderAt(idControls, start)
	return
}

func encodeProtocolOp(buf *BerBuffer, m Message) (err error) {
	switch tv := m.(type) {
	case *BindRequest:
		err = encodeBindRequest(buf, tv)
	case *BindResponse:
		err = encodeBindResponse(buf, tv)
	case *UnbindRequest:
		buf.writeOctetString([]byte{}, idUnbindRequest)
	case *SearchRequest:
		err = encodeSearchRequest(buf, tv)
	case *SearchResultEntry:
		err = encodeSearchResultEntry(buf, tv)
	case *SearchResultReference:
		err = encodeSearchResultReference(buf, tv)
	case *SearchResultDone:
		err = encodeResultOp(buf, idSearchResultDone, &tv.LdapResult)
	case *ModifyRequest:
		err = encodeModifyRequest(buf, tv)
	case *ModifyResponse:
		err = encodeResultOp(buf, idModifyResponse, &tv.LdapResult)
	case *AddRequest:
		err = encodeAddRequest(buf, tv)
	case *AddResponse:
		err = encodeResultOp(buf, idAddResponse, &tv.LdapResult)
	case *DelRequest:
		err = encodeDelRequest(buf, tv)
	case *DelResponse:
		err = encodeResultOp(buf, idDelResponse, &tv.LdapResult)
	case *ModifyDnRequest:
		err = encodeModifyDnRequest(buf, tv)
	case *ModifyDnResponse:
		err = encodeResultOp(buf, idModifyDnResponse, &tv.LdapResult)
	case *CompareRequest:
		err = encodeCompareRequest(buf, tv)
	case *CompareResponse:
		err = encodeResultOp(buf, idCompareResponse, &tv.LdapResult)
	case *AbandonRequest:
		buf.writeInteger(int64(tv.AbandonedID), idAbandonRequest)
	case *ExtendedRequest:
		err = encodeExtendedRequest(buf, tv)
	case *ExtendedResponse:
		err = encodeExtendedResponse(buf, tv)
	case *IntermediateResponse:
		err = encodeIntermediateResponse(buf, tv)
	default:
		err = encErr("unidentified message variant")
	}

	return
}

func dnString(dn *DistinguishedName) string {
	if dn == nil {
		return ``
	}
	return dn.UpName()
}

// encodeResult emits an embedded LDAPResult in reverse member order.
func encodeResult(buf *BerBuffer, res *LdapResult) (err error) {
	if res.Referral != nil {
		if len(res.Referral) == 0 {
			err = encErr("referral carries no URIs")
			return
		}

		start := buf.Len()
		for i := len(res.Referral) - 1; i >= 0; i-- {
			buf.writeOctetString([]byte(res.Referral[i]))
		}
		buf.writeHeaderAt(idReferral, start)
	}

	buf.writeOctetString([]byte(res.Diagnostic))
	buf.writeOctetString([]byte(res.MatchedDN))
	buf.writeEnumerated(int64(res.Code))
	return
}

// encodeResultOp emits a response consisting solely of an LDAPResult.
func encodeResultOp(buf *BerBuffer, id byte, res *LdapResult) (err error) {
	start := buf.Len()
	if err = encodeResult(buf, res); err != nil {
		return
	}
	buf.writeHeaderAt(id, start)
	return
}

func encodeBindRequest(buf *BerBuffer, req *BindRequest) (err error) {
	start := buf.Len()

	switch auth := req.Auth.(type) {
	case SimpleAuthentication:
		buf.writeOctetString([]byte(auth), idBindSimple)
	case SaslAuthentication:
		sstart := buf.Len()
		if auth.HasCredentials {
			buf.writeOctetString(auth.Credentials)
		}
		buf.writeOctetString([]byte(auth.Mechanism))
		buf.writeHeaderAt(idBindSasl, sstart)
	case nil:
		err = encErr("bind request carries no authentication choice")
		return
	default:
		err = encErr("unidentified bind authentication choice")
		return
	}

	buf.writeOctetString([]byte(req.Name))

	version := req.Version
	if version == 0 {
		version = 3
	}
	buf.writeInteger(int64(version))

	buf.writeHeaderAt(idBindRequest, start)
	return
}

func encodeBindResponse(buf *BerBuffer, resp *BindResponse) (err error) {
	start := buf.Len()

	if resp.HasServerSaslCreds {
		buf.writeOctetString(resp.ServerSaslCreds, idServerSaslCreds)
	}

	if err = encodeResult(buf, &resp.LdapResult); err != nil {
		return
	}

	buf.writeHeaderAt(idBindResponse, start)
	return
}

func encodeSearchRequest(buf *BerBuffer, req *SearchRequest) (err error) {
	if req.Filter == nil {
		err = encErr("search request carries no filter")
		return
	}

	start := buf.Len()

	astart := buf.Len()
	for i := len(req.Attributes) - 1; i >= 0; i-- {
		buf.writeOctetString([]byte(req.Attributes[i]))
	}
	buf.writeSequenceAt(astart)

	if err = encodeFilter(buf, req.Filter); err != nil {
		return
	}

	buf.writeBoolean(req.TypesOnly)
	buf.writeInteger(int64(req.TimeLimit))
	buf.writeInteger(int64(req.SizeLimit))
	buf.writeEnumerated(int64(req.DerefAliases))
	buf.writeEnumerated(int64(req.Scope))
	buf.writeOctetString([]byte(dnString(req.BaseDN)))

	buf.writeHeaderAt(idSearchRequest, start)
	return
}

// encodeFilter emits one filter element in reverse document order.
func encodeFilter(buf *BerBuffer, f Filter) (err error) {
	switch tv := f.(type) {
	case AndFilter:
		err = encodeFilterSet(buf, idFilterAnd, tv)
	case OrFilter:
		err = encodeFilterSet(buf, idFilterOr, tv)
	case NotFilter:
		if tv.Filter == nil {
			err = encErr("'not' filter carries no child")
			return
		}
		start := buf.Len()
		if err = encodeFilter(buf, tv.Filter); err != nil {
			return
		}
		buf.writeHeaderAt(idFilterNot, start)
	case EqualityMatchFilter:
		encodeFilterAVA(buf, idFilterEquality, tv.Desc, tv.Value)
	case GreaterOrEqualFilter:
		encodeFilterAVA(buf, idFilterGreaterOrEqual, tv.Desc, tv.Value)
	case LessOrEqualFilter:
		encodeFilterAVA(buf, idFilterLessOrEqual, tv.Desc, tv.Value)
	case ApproximateMatchFilter:
		encodeFilterAVA(buf, idFilterApproxMatch, tv.Desc, tv.Value)
	case PresentFilter:
		buf.writeOctetString([]byte(tv.Desc), idFilterPresent)
	case SubstringsFilter:
		err = encodeSubstringsFilter(buf, tv)
	case ExtensibleMatchFilter:
		err = encodeExtensibleFilter(buf, tv)
	default:
		err = encErr("unidentified filter variant")
	}

	return
}

func encodeFilterSet(buf *BerBuffer, id byte, children []Filter) (err error) {
	start := buf.Len()
	for i := len(children) - 1; i >= 0; i-- {
		if err = encodeFilter(buf, children[i]); err != nil {
			return
		}
	}
	buf.writeHeaderAt(id, start)
	return
}

func encodeFilterAVA(buf *BerBuffer, id byte, desc AttributeDescription, value AssertionValue) {
	start := buf.Len()
	buf.writeOctetString([]byte(value))
	buf.writeOctetString([]byte(desc))
	buf.writeHeaderAt(id, start)
}

func encodeSubstringsFilter(buf *BerBuffer, f SubstringsFilter) (err error) {
	if f.Substrings.IsZero() {
		err = encErr("substring filter carries no components")
		return
	}

	start := buf.Len()

	sstart := buf.Len()
	if f.Substrings.Final != nil {
		buf.writeOctetString([]byte(f.Substrings.Final), idSubstringFinal)
	}
	for i := len(f.Substrings.Any) - 1; i >= 0; i-- {
		buf.writeOctetString([]byte(f.Substrings.Any[i]), idSubstringAny)
	}
	if f.Substrings.Initial != nil {
		buf.writeOctetString([]byte(f.Substrings.Initial), idSubstringInitial)
	}
	buf.writeSequenceAt(sstart)

	buf.writeOctetString([]byte(f.Type))
	buf.writeHeaderAt(idFilterSubstrings, start)
	return
}

func encodeExtensibleFilter(buf *BerBuffer, f ExtensibleMatchFilter) (err error) {
	if f.MatchValue == nil {
		err = encErr("extensible match filter carries no match value")
		return
	}

	start := buf.Len()

	if f.DNAttributes {
		buf.writeBoolean(true, idMatchDnAttributes)
	}
	buf.writeOctetString([]byte(f.MatchValue), idMatchValue)
	if len(f.Type) > 0 {
		buf.writeOctetString([]byte(f.Type), idMatchingRuleType)
	}
	if len(f.MatchingRule) > 0 {
		buf.writeOctetString([]byte(f.MatchingRule), idMatchingRule)
	}

	buf.writeHeaderAt(idFilterExtensibleMatch, start)
	return
}

// encodeEntryAttributes emits a PartialAttribute list in reverse,
// recursing through the value iterators so the forward view preserves
// original iteration order.
func encodeEntryAttributes(buf *BerBuffer, attrs []*Attribute) (err error) {
	start := buf.Len()

	for i := len(attrs) - 1; i >= 0; i-- {
		if err = encodeAttribute(buf, attrs[i]); err != nil {
			return
		}
	}

	buf.writeSequenceAt(start)
	return
}

func encodeAttribute(buf *BerBuffer, attr *Attribute) (err error) {
	if attr == nil || len(attr.Desc) == 0 {
		err = encErr("attribute carries no description")
		return
	}

	start := buf.Len()

	vstart := buf.Len()
	for i := len(attr.Vals) - 1; i >= 0; i-- {
		buf.writeOctetString(attr.Vals[i].Raw)
	}
	buf.writeSetAt(vstart)

	buf.writeOctetString([]byte(attr.Desc))
	buf.writeSequenceAt(start)
	return
}

func encodeSearchResultEntry(buf *BerBuffer, resp *SearchResultEntry) (err error) {
	if resp.Entry.DN == nil {
		err = encErr("search result entry carries no object name")
		return
	}

	start := buf.Len()

	if err = encodeEntryAttributes(buf, resp.Entry.Attrs); err != nil {
		return
	}

	buf.writeOctetString([]byte(resp.Entry.DN.UpName()))
	buf.writeHeaderAt(idSearchResultEntry, start)
	return
}

func encodeSearchResultReference(buf *BerBuffer, resp *SearchResultReference) (err error) {
	if len(resp.URIs) == 0 {
		err = encErr("search result reference carries no URIs")
		return
	}

	start := buf.Len()
	for i := len(resp.URIs) - 1; i >= 0; i-- {
		buf.writeOctetString([]byte(resp.URIs[i]))
	}
	buf.writeHeaderAt(idSearchResultRef, start)
	return
}

func encodeModifyRequest(buf *BerBuffer, req *ModifyRequest) (err error) {
	start := buf.Len()

	cstart := buf.Len()
	for i := len(req.Changes) - 1; i >= 0; i-- {
		change := req.Changes[i]
		if change.Op < ModAdd || change.Op > ModIncrement {
			err = encErr("modify operation out of range")
			return
		}

		mstart := buf.Len()
		if err = encodeAttribute(buf, change.Attr); err != nil {
			return
		}
		buf.writeEnumerated(int64(change.Op))
		buf.writeSequenceAt(mstart)
	}
	buf.writeSequenceAt(cstart)

	buf.writeOctetString([]byte(dnString(req.Object)))
	buf.writeHeaderAt(idModifyRequest, start)
	return
}

func encodeAddRequest(buf *BerBuffer, req *AddRequest) (err error) {
	if req.Entry.DN == nil {
		err = encErr("add request carries no entry DN")
		return
	}

	start := buf.Len()

	if err = encodeEntryAttributes(buf, req.Entry.Attrs); err != nil {
		return
	}

	buf.writeOctetString([]byte(req.Entry.DN.UpName()))
	buf.writeHeaderAt(idAddRequest, start)
	return
}

func encodeDelRequest(buf *BerBuffer, req *DelRequest) (err error) {
	name := dnString(req.Entry)
	if len(name) == 0 {
		err = encErr("del request carries no entry DN")
		return
	}

	buf.writeOctetString([]byte(name), idDelRequest)
	return
}

func encodeModifyDnRequest(buf *BerBuffer, req *ModifyDnRequest) (err error) {
	if req.Entry == nil {
		err = encErr("modify DN request carries no entry DN")
		return
	} else if req.NewRDN == nil || len(req.NewRDN.Attributes) == 0 {
		err = encErr("modify DN request carries no new RDN")
		return
	}

	start := buf.Len()

	if req.NewSuperior != nil {
		buf.writeOctetString([]byte(req.NewSuperior.UpName()), idModDnSuperior)
	}

	buf.writeBoolean(req.DeleteOldRDN)

	newRDN := req.NewRDN.UpName()
	if len(newRDN) == 0 {
		newRDN = req.NewRDN.String()
	}
	buf.writeOctetString([]byte(newRDN))

	buf.writeOctetString([]byte(req.Entry.UpName()))
	buf.writeHeaderAt(idModifyDnRequest, start)
	return
}

func encodeCompareRequest(buf *BerBuffer, req *CompareRequest) (err error) {
	if req.Entry == nil {
		err = encErr("compare request carries no entry DN")
		return
	} else if len(req.Desc) == 0 {
		err = encErr("compare request carries no attribute description")
		return
	}

	start := buf.Len()

	astart := buf.Len()
	buf.writeOctetString(req.Value)
	buf.writeOctetString([]byte(req.Desc))
	buf.writeSequenceAt(astart)

	buf.writeOctetString([]byte(req.Entry.UpName()))
	buf.writeHeaderAt(idCompareRequest, start)
	return
}

func encodeExtendedRequest(buf *BerBuffer, req *ExtendedRequest) (err error) {
	if len(req.Name) == 0 {
		err = encErr("extended request carries no request name")
		return
	}

	start := buf.Len()

	if req.HasValue {
		buf.writeOctetString(req.Value, idExtReqValue)
	}
	buf.writeOctetString([]byte(req.Name), idExtReqName)

	buf.writeHeaderAt(idExtendedRequest, start)
	return
}

func encodeExtendedResponse(buf *BerBuffer, resp *ExtendedResponse) (err error) {
	start := buf.Len()

	if resp.HasValue {
		buf.writeOctetString(resp.Value, idExtRespValue)
	}
	if resp.HasName {
		buf.writeOctetString([]byte(resp.Name), idExtRespName)
	}

	if err = encodeResult(buf, &resp.LdapResult); err != nil {
		return
	}

	buf.writeHeaderAt(idExtendedResponse, start)
	return
}

func encodeIntermediateResponse(buf *BerBuffer, resp *IntermediateResponse) (err error) {
	start := buf.Len()

	if resp.HasValue {
		buf.writeOctetString(resp.Value, idIntermValue)
	}
	if resp.HasName {
		buf.writeOctetString([]byte(resp.Name), idIntermName)
	}

	buf.writeHeaderAt(idIntermediateResponse, start)
	return
}
