package ldapcodec

/*
grammar_responses.go registers the per-response sub-machines. Every
response embeds the LDAPResult construct, so its four-element machine
(resultCode, matchedDN, diagnosticMessage, optional referral) is
stamped out per operation over a shared set of actions.
*/

// Context-specific identifier octets used inside response operations.
const (
	idReferral        byte = classContextSpecific | constructedFlag | 3 // 0xA3
	idServerSaslCreds byte = classContextSpecific | 7                   // 0x87
	idExtRespName     byte = classContextSpecific | 10                  // 0x8A
	idExtRespValue    byte = classContextSpecific | 11                  // 0x8B
)

// resultStates names the grammar positions of one response type's
// LDAPResult machine.
type resultStates struct {
	code     state
	matched  state
	diag     state
	postRef  state
	refURI   state
	afterRef state
}

func registerResponseGrammar() {
	registerResultOp(idBindResponse, resultStates{
		code:     stateBindRespCode,
		matched:  stateBindRespMatched,
		diag:     stateBindRespDiag,
		postRef:  stateBindRespPostRef,
		refURI:   stateBindRespRefURI,
		afterRef: stateBindRespAfterRef,
	}, func(c *messageContainer) *LdapResult {
		resp := &BindResponse{}
		c.newMessage(resp)
		return &resp.LdapResult
	})

	// BindResponse additionally carries optional serverSaslCreds [7]
	// after the referral.
	saslCreds := func(c *messageContainer, t *tlv) error {
		resp := c.msg.(*BindResponse)
		resp.ServerSaslCreds = valueBytes(t)
		resp.HasServerSaslCreds = true
		return nil
	}
	register(stateBindRespPostRef, idServerSaslCreds, transition{
		next: stateBindRespDone, action: saslCreds,
	})
	register(stateBindRespAfterRef, idServerSaslCreds, transition{
		next: stateBindRespDone, action: saslCreds,
	})

	registerResultOp(idSearchResultDone, resultStates{
		code:     stateSearchDoneCode,
		matched:  stateSearchDoneMatched,
		diag:     stateSearchDoneDiag,
		postRef:  stateSearchDonePostRef,
		refURI:   stateSearchDoneRefURI,
		afterRef: stateSearchDoneAfterRef,
	}, func(c *messageContainer) *LdapResult {
		resp := &SearchResultDone{}
		c.newMessage(resp)
		return &resp.LdapResult
	})

	registerResultOp(idModifyResponse, resultStates{
		code:     stateModRespCode,
		matched:  stateModRespMatched,
		diag:     stateModRespDiag,
		postRef:  stateModRespPostRef,
		refURI:   stateModRespRefURI,
		afterRef: stateModRespAfterRef,
	}, func(c *messageContainer) *LdapResult {
		resp := &ModifyResponse{}
		c.newMessage(resp)
		return &resp.LdapResult
	})

	registerResultOp(idAddResponse, resultStates{
		code:     stateAddRespCode,
		matched:  stateAddRespMatched,
		diag:     stateAddRespDiag,
		postRef:  stateAddRespPostRef,
		refURI:   stateAddRespRefURI,
		afterRef: stateAddRespAfterRef,
	}, func(c *messageContainer) *LdapResult {
		resp := &AddResponse{}
		c.newMessage(resp)
		return &resp.LdapResult
	})

	registerResultOp(idDelResponse, resultStates{
		code:     stateDelRespCode,
		matched:  stateDelRespMatched,
		diag:     stateDelRespDiag,
		postRef:  stateDelRespPostRef,
		refURI:   stateDelRespRefURI,
		afterRef: stateDelRespAfterRef,
	}, func(c *messageContainer) *LdapResult {
		resp := &DelResponse{}
		c.newMessage(resp)
		return &resp.LdapResult
	})

	registerResultOp(idModifyDnResponse, resultStates{
		code:     stateModDnRespCode,
		matched:  stateModDnRespMatched,
		diag:     stateModDnRespDiag,
		postRef:  stateModDnRespPostRef,
		refURI:   stateModDnRespRefURI,
		afterRef: stateModDnRespAfterRef,
	}, func(c *messageContainer) *LdapResult {
		resp := &ModifyDnResponse{}
		c.newMessage(resp)
		return &resp.LdapResult
	})

	registerResultOp(idCompareResponse, resultStates{
		code:     stateCompareRespCode,
		matched:  stateCompareRespMatched,
		diag:     stateCompareRespDiag,
		postRef:  stateCompareRespPostRef,
		refURI:   stateCompareRespRefURI,
		afterRef: stateCompareRespAfterRef,
	}, func(c *messageContainer) *LdapResult {
		resp := &CompareResponse{}
		c.newMessage(resp)
		return &resp.LdapResult
	})

	registerResultOp(idExtendedResponse, resultStates{
		code:     stateExtRespCode,
		matched:  stateExtRespMatched,
		diag:     stateExtRespDiag,
		postRef:  stateExtRespPostRef,
		refURI:   stateExtRespRefURI,
		afterRef: stateExtRespAfterRef,
	}, func(c *messageContainer) *LdapResult {
		resp := &ExtendedResponse{}
		c.newMessage(resp)
		return &resp.LdapResult
	})

	// ExtendedResponse additionally carries optional responseName [10]
	// and responseValue [11] after the referral.
	extName := func(c *messageContainer, t *tlv) error {
		resp := c.msg.(*ExtendedResponse)
		resp.Name = valueString(t)
		resp.HasName = true
		return nil
	}
	extValue := func(c *messageContainer, t *tlv) error {
		resp := c.msg.(*ExtendedResponse)
		resp.Value = valueBytes(t)
		resp.HasValue = true
		return nil
	}
	register(stateExtRespPostRef, idExtRespName, transition{next: stateExtRespName, action: extName})
	register(stateExtRespAfterRef, idExtRespName, transition{next: stateExtRespName, action: extName})
	register(stateExtRespPostRef, idExtRespValue, transition{next: stateExtRespDone, action: extValue})
	register(stateExtRespAfterRef, idExtRespValue, transition{next: stateExtRespDone, action: extValue})
	register(stateExtRespName, idExtRespValue, transition{next: stateExtRespDone, action: extValue})

	registerSearchResultEntry()
	registerSearchResultReference()
}

// registerResultOp stamps the LDAPResult machine for one response
// operation.
func registerResultOp(opID byte, states resultStates, create func(c *messageContainer) *LdapResult) {
	register(stateProtocolOp, opID, transition{
		next: states.code,
		action: func(c *messageContainer, t *tlv) error {
			c.res = create(c)
			return nil
		},
		closeState: stateMessageDone,
		onClose: func(c *messageContainer) error {
			if !c.resComplete {
				return decErr(KindUnexpectedTag, "response closed before its LDAPResult completed")
			}
			c.resComplete = false
			return nil
		},
	})

	register(states.code, idEnumerated, transition{
		next: states.matched,
		action: func(c *messageContainer, t *tlv) (err error) {
			var code int64
			if code, err = tlvInt(t); err != nil {
				return
			}
			if !ResultCode(code).Valid() {
				err = decErr(KindInvalidValue, "result code "+fmtInt(code, 10)+" out of range")
				return
			}
			c.res.Code = ResultCode(code)
			return
		},
	})

	register(states.matched, idOctetString, transition{
		next: states.diag,
		action: func(c *messageContainer, t *tlv) error {
			c.res.MatchedDN = valueString(t)
			return nil
		},
	})

	register(states.diag, idOctetString, transition{
		next: states.postRef,
		action: func(c *messageContainer, t *tlv) error {
			c.res.Diagnostic = valueString(t)
			c.resComplete = true
			return nil
		},
	})

	register(states.postRef, idReferral, transition{
		next:       states.refURI,
		closeState: states.afterRef,
		onClose: func(c *messageContainer) error {
			if len(c.res.Referral) == 0 {
				return decErr(KindInvalidValue, "referral carries no URIs")
			}
			return nil
		},
	})

	register(states.refURI, idOctetString, transition{
		next: states.refURI,
		action: func(c *messageContainer, t *tlv) error {
			c.res.Referral = append(c.res.Referral, valueString(t))
			return nil
		},
	})
}

func registerSearchResultEntry() {
	register(stateProtocolOp, idSearchResultEntry, transition{
		next: stateSREntryDN,
		action: func(c *messageContainer, t *tlv) error {
			resp := &SearchResultEntry{}
			c.newMessage(resp)
			c.curEntry = &resp.Entry
			return nil
		},
		closeState: stateMessageDone,
		onClose: func(c *messageContainer) error {
			if c.curEntry.DN == nil {
				return decErr(KindInvalidValue, "search result entry closed without an object name")
			}
			c.curEntry = nil
			return nil
		},
	})

	register(stateSREntryDN, idOctetString, transition{
		next: stateSREntryAttrs,
		action: func(c *messageContainer, t *tlv) (err error) {
			var dn *DistinguishedName
			if dn, err = c.parseDN(valueString(t)); err != nil {
				return
			}
			c.curEntry.DN = dn
			return
		},
	})

	register(stateSREntryAttrs, idSequence, transition{
		next:       stateSREntryAttr,
		closeState: stateSREntryDone,
	})

	register(stateSREntryAttr, idSequence, transition{
		next: stateSREntryAttrType,
		action: func(c *messageContainer, t *tlv) error {
			c.curAttr = nil
			return nil
		},
		closeState: stateSREntryAttr,
		onClose: func(c *messageContainer) error {
			if c.curAttr == nil {
				return decErr(KindInvalidValue, "attribute closed without a description")
			}
			c.curEntry.Attrs = append(c.curEntry.Attrs, c.curAttr)
			c.curAttr = nil
			return nil
		},
	})

	register(stateSREntryAttrType, idOctetString, transition{
		next: stateSREntryVals,
		action: func(c *messageContainer, t *tlv) error {
			desc := valueString(t)
			if len(desc) == 0 {
				return decErr(KindInvalidValue, "zero length attribute description in search result entry")
			}
			c.curAttr = NewAttribute(desc, c.schema)
			return nil
		},
	})

	// The value set may be empty when the request asked for types
	// only.
	register(stateSREntryVals, idSet, transition{
		next:       stateSREntryVal,
		closeState: stateSREntryValsDone,
	})

	register(stateSREntryVal, idOctetString, transition{
		next: stateSREntryVal,
		action: func(c *messageContainer, t *tlv) error {
			c.curAttr.Vals = append(c.curAttr.Vals, AttributeValue{Raw: valueBytes(t)})
			return nil
		},
	})
}

func registerSearchResultReference() {
	register(stateProtocolOp, idSearchResultRef, transition{
		next: stateSearchRefURI,
		action: func(c *messageContainer, t *tlv) error {
			c.newMessage(&SearchResultReference{})
			return nil
		},
		closeState: stateMessageDone,
		onClose: func(c *messageContainer) error {
			if len(c.msg.(*SearchResultReference).URIs) == 0 {
				return decErr(KindInvalidValue, "search result reference carries no URIs")
			}
			return nil
		},
	})

	register(stateSearchRefURI, idOctetString, transition{
		next: stateSearchRefURI,
		action: func(c *messageContainer, t *tlv) error {
			resp := c.msg.(*SearchResultReference)
			resp.URIs = append(resp.URIs, valueString(t))
			return nil
		},
	})
}
