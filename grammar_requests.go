package ldapcodec

/*
grammar_requests.go registers the per-request sub-machines: bind,
unbind, search (including the filter sub-grammar), modify, add, del,
modify DN, compare, abandon and extended request.
*/

// Context-specific identifier octets used inside request operations.
const (
	idBindSimple     byte = classContextSpecific | 0                   // 0x80
	idBindSasl       byte = classContextSpecific | constructedFlag | 3 // 0xA3
	idModDnSuperior  byte = classContextSpecific | 0                   // 0x80
	idExtReqName     byte = classContextSpecific | 0                   // 0x80
	idExtReqValue    byte = classContextSpecific | 1                   // 0x81
	idIntermName     byte = classContextSpecific | 0                   // 0x80
	idIntermValue    byte = classContextSpecific | 1                   // 0x81
)

func registerRequestGrammar() {
	registerBindRequest()
	registerUnbindRequest()
	registerSearchRequest()
	registerFilterGrammar()
	registerAddRequest()
	registerDelRequest()
	registerModifyRequest()
	registerModifyDnRequest()
	registerCompareRequest()
	registerAbandonRequest()
	registerExtendedRequest()
	registerIntermediateResponse()
}

// newMessage installs msg as the container's in-flight message,
// stamping the already-decoded message ID.
func (r *messageContainer) newMessage(msg Message) {
	msg.SetMessageID(r.id)
	r.msg = msg
}

func registerBindRequest() {
	register(stateProtocolOp, idBindRequest, transition{
		next: stateBindVersion,
		action: func(c *messageContainer, t *tlv) error {
			c.newMessage(&BindRequest{})
			return nil
		},
		closeState: stateMessageDone,
		onClose: func(c *messageContainer) error {
			req := c.msg.(*BindRequest)
			if req.Auth == nil {
				return decErr(KindInvalidValue, "bind request closed without an authentication choice")
			}
			return nil
		},
	})

	register(stateBindVersion, idInteger, transition{
		next: stateBindName,
		action: func(c *messageContainer, t *tlv) (err error) {
			var version int64
			if version, err = tlvInt(t); err != nil {
				return
			}
			if version != 3 {
				err = decErr(KindInvalidValue,
					"unsupported protocol version "+fmtInt(version, 10))
				return
			}
			c.msg.(*BindRequest).Version = int(version)
			return
		},
	})

	register(stateBindName, idOctetString, transition{
		next: stateBindAuth,
		action: func(c *messageContainer, t *tlv) error {
			// A zero length name denotes an anonymous bind.
			c.msg.(*BindRequest).Name = valueString(t)
			return nil
		},
	})

	register(stateBindAuth, idBindSimple, transition{
		next: stateBindSimpleDone,
		action: func(c *messageContainer, t *tlv) error {
			c.msg.(*BindRequest).Auth = SimpleAuthentication(valueBytes(t))
			return nil
		},
	})

	register(stateBindAuth, idBindSasl, transition{
		next: stateBindSaslMech,
		action: func(c *messageContainer, t *tlv) error {
			c.msg.(*BindRequest).Auth = SaslAuthentication{}
			return nil
		},
		closeState: stateBindSaslDone,
	})

	register(stateBindSaslMech, idOctetString, transition{
		next: stateBindSaslCred,
		action: func(c *messageContainer, t *tlv) error {
			auth := c.msg.(*BindRequest).Auth.(SaslAuthentication)
			auth.Mechanism = valueString(t)
			c.msg.(*BindRequest).Auth = auth
			return nil
		},
	})

	register(stateBindSaslCred, idOctetString, transition{
		next: stateBindSaslDone,
		action: func(c *messageContainer, t *tlv) error {
			auth := c.msg.(*BindRequest).Auth.(SaslAuthentication)
			auth.Credentials = valueBytes(t)
			auth.HasCredentials = true
			c.msg.(*BindRequest).Auth = auth
			return nil
		},
	})
}

func registerUnbindRequest() {
	register(stateProtocolOp, idUnbindRequest, transition{
		next: stateMessageDone,
		action: func(c *messageContainer, t *tlv) error {
			if len(t.value) != 0 {
				return decErr(KindMalformedBER, "unbind request carries content")
			}
			c.newMessage(&UnbindRequest{})
			return nil
		},
	})
}

func registerSearchRequest() {
	register(stateProtocolOp, idSearchRequest, transition{
		next: stateSearchBase,
		action: func(c *messageContainer, t *tlv) error {
			c.newMessage(&SearchRequest{})
			return nil
		},
		closeState: stateMessageDone,
		onClose: func(c *messageContainer) (err error) {
			req := c.msg.(*SearchRequest)
			if c.filterRoot == nil {
				err = c.protocolError("search request closed without a filter")
				return
			}
			if req.Filter, err = c.filterRoot.build(); err != nil {
				return
			}
			return
		},
	})

	register(stateSearchBase, idOctetString, transition{
		next: stateSearchScope,
		action: func(c *messageContainer, t *tlv) (err error) {
			var dn *DistinguishedName
			if dn, err = c.parseDN(valueString(t)); err != nil {
				return
			}
			c.msg.(*SearchRequest).BaseDN = dn
			return
		},
	})

	register(stateSearchScope, idEnumerated, transition{
		next: stateSearchDeref,
		action: func(c *messageContainer, t *tlv) (err error) {
			var scope int64
			if scope, err = tlvInt(t); err != nil {
				return
			}
			if scope < 0 || scope > 2 {
				err = c.protocolError("search scope " + fmtInt(scope, 10) + " out of range")
				return
			}
			c.msg.(*SearchRequest).Scope = Scope(scope)
			return
		},
	})

	register(stateSearchDeref, idEnumerated, transition{
		next: stateSearchSize,
		action: func(c *messageContainer, t *tlv) (err error) {
			var deref int64
			if deref, err = tlvInt(t); err != nil {
				return
			}
			if deref < 0 || deref > 3 {
				err = c.protocolError("alias dereferencing mode " + fmtInt(deref, 10) + " out of range")
				return
			}
			c.msg.(*SearchRequest).DerefAliases = DerefAliases(deref)
			return
		},
	})

	register(stateSearchSize, idInteger, transition{
		next: stateSearchTime,
		action: func(c *messageContainer, t *tlv) (err error) {
			var limit int64
			if limit, err = tlvInt(t); err != nil {
				return
			}
			if limit < 0 {
				err = c.protocolError("negative size limit")
				return
			}
			c.msg.(*SearchRequest).SizeLimit = int(limit)
			return
		},
	})

	register(stateSearchTime, idInteger, transition{
		next: stateSearchTypesOnly,
		action: func(c *messageContainer, t *tlv) (err error) {
			var limit int64
			if limit, err = tlvInt(t); err != nil {
				return
			}
			if limit < 0 {
				err = c.protocolError("negative time limit")
				return
			}
			c.msg.(*SearchRequest).TimeLimit = int(limit)
			return
		},
	})

	register(stateSearchTypesOnly, idBoolean, transition{
		next: stateFilter,
		action: func(c *messageContainer, t *tlv) (err error) {
			var b bool
			if b, err = tlvBool(t); err != nil {
				return
			}
			c.msg.(*SearchRequest).TypesOnly = b
			return
		},
	})

	// The attribute selection list follows the completed filter.
	register(stateFilter, idSequence, transition{
		next: stateSearchAttr,
		action: func(c *messageContainer, t *tlv) error {
			if c.filterRoot == nil || c.fstack.Len() > 0 {
				return c.protocolError("attribute list before the filter completed")
			}
			return nil
		},
	})

	register(stateSearchAttr, idOctetString, transition{
		next: stateSearchAttr,
		action: func(c *messageContainer, t *tlv) error {
			req := c.msg.(*SearchRequest)
			req.Attributes = append(req.Attributes, valueString(t))
			return nil
		},
	})
}

// registerFilterGrammar wires the filter CHOICE sub-grammar. Branch
// nodes push onto the container's assembly stack on entry; every
// constructed element pops itself on close and returns the machine to
// the filter state.
func registerFilterGrammar() {
	branch := func(id byte) transition {
		return transition{
			next: stateFilter,
			action: func(c *messageContainer, t *tlv) (err error) {
				n := &filterNode{id: id}
				if err = c.attachFilterNode(n); err != nil {
					return
				}
				c.pushFilterNode(n)
				return
			},
			closeState: stateFilter,
			onClose: func(c *messageContainer) error {
				n := c.popFilterNode()
				if n != nil && n.id == idFilterNot && len(n.children) != 1 {
					return c.protocolError("'not' filter requires exactly one child")
				}
				return nil
			},
		}
	}

	for _, id := range []byte{idFilterAnd, idFilterOr, idFilterNot} {
		register(stateFilter, id, branch(id))
	}

	// AttributeValueAssertion leaves: equality, >=, <=, approx.
	leaf := func(id byte) transition {
		return transition{
			next: stateFilterAVADesc,
			action: func(c *messageContainer, t *tlv) (err error) {
				n := &filterNode{id: id}
				if err = c.attachFilterNode(n); err != nil {
					return
				}
				c.pushFilterNode(n)
				return
			},
			closeState: stateFilter,
			onClose: func(c *messageContainer) error {
				n := c.popFilterNode()
				if n == nil || len(n.desc) == 0 || n.value == nil {
					return c.protocolError("incomplete attribute value assertion in filter")
				}
				return nil
			},
		}
	}

	for _, id := range []byte{
		idFilterEquality, idFilterGreaterOrEqual,
		idFilterLessOrEqual, idFilterApproxMatch,
	} {
		register(stateFilter, id, leaf(id))
	}

	register(stateFilterAVADesc, idOctetString, transition{
		next: stateFilterAVAValue,
		action: func(c *messageContainer, t *tlv) error {
			desc := valueString(t)
			if len(desc) == 0 {
				return c.protocolError("zero length attribute description in filter")
			}
			c.peekFilterNode().desc = desc
			return nil
		},
	})

	register(stateFilterAVAValue, idOctetString, transition{
		next: stateFilterLeafDone,
		action: func(c *messageContainer, t *tlv) error {
			c.peekFilterNode().value = valueBytes(t)
			return nil
		},
	})

	// present is a bare primitive AttributeDescription.
	register(stateFilter, idFilterPresent, transition{
		next: stateFilter,
		action: func(c *messageContainer, t *tlv) (err error) {
			desc := valueString(t)
			if len(desc) == 0 {
				err = c.protocolError("zero length attribute description in present filter")
				return
			}
			err = c.attachFilterNode(&filterNode{id: idFilterPresent, desc: desc})
			return
		},
	})

	// substrings
	register(stateFilter, idFilterSubstrings, transition{
		next: stateFilterSubstrType,
		action: func(c *messageContainer, t *tlv) (err error) {
			n := &filterNode{id: idFilterSubstrings}
			if err = c.attachFilterNode(n); err != nil {
				return
			}
			c.pushFilterNode(n)
			return
		},
		closeState: stateFilter,
		onClose: func(c *messageContainer) error {
			n := c.popFilterNode()
			if n == nil || n.subLast == 0 {
				return c.protocolError("substring filter closed without components")
			}
			return nil
		},
	})

	register(stateFilterSubstrType, idOctetString, transition{
		next: stateFilterSubstrSeqStart,
		action: func(c *messageContainer, t *tlv) error {
			desc := valueString(t)
			if len(desc) == 0 {
				return c.protocolError("zero length attribute description in substring filter")
			}
			c.peekFilterNode().desc = desc
			return nil
		},
	})

	register(stateFilterSubstrSeqStart, idSequence, transition{
		next:       stateFilterSubstrComp,
		closeState: stateFilterSubstrDone,
	})

	register(stateFilterSubstrComp, idSubstringInitial, transition{
		next: stateFilterSubstrComp,
		action: func(c *messageContainer, t *tlv) error {
			n := c.peekFilterNode()
			if n.subLast != 0 {
				return c.protocolError("'initial' substring component out of order")
			}
			n.sub.Initial = AssertionValue(valueBytes(t))
			n.subLast = 'i'
			return nil
		},
	})

	register(stateFilterSubstrComp, idSubstringAny, transition{
		next: stateFilterSubstrComp,
		action: func(c *messageContainer, t *tlv) error {
			n := c.peekFilterNode()
			if n.subLast == 'f' {
				return c.protocolError("'any' substring component after 'final'")
			}
			n.sub.Any = append(n.sub.Any, AssertionValue(valueBytes(t)))
			n.subLast = 'a'
			return nil
		},
	})

	register(stateFilterSubstrComp, idSubstringFinal, transition{
		next: stateFilterSubstrComp,
		action: func(c *messageContainer, t *tlv) error {
			n := c.peekFilterNode()
			if n.subLast == 'f' {
				return c.protocolError("duplicate 'final' substring component")
			}
			n.sub.Final = AssertionValue(valueBytes(t))
			n.subLast = 'f'
			return nil
		},
	})

	// extensibleMatch
	register(stateFilter, idFilterExtensibleMatch, transition{
		next: stateFilterExt,
		action: func(c *messageContainer, t *tlv) (err error) {
			n := &filterNode{id: idFilterExtensibleMatch}
			if err = c.attachFilterNode(n); err != nil {
				return
			}
			c.pushFilterNode(n)
			return
		},
		closeState: stateFilter,
		onClose: func(c *messageContainer) error {
			n := c.popFilterNode()
			if n == nil || n.ext.MatchValue == nil {
				return c.protocolError("extensible match filter closed without a match value")
			}
			return nil
		},
	})

	setExtRule := func(c *messageContainer, t *tlv) error {
		n := c.peekFilterNode()
		n.ext.MatchingRule = valueString(t)
		return nil
	}
	setExtType := func(c *messageContainer, t *tlv) error {
		n := c.peekFilterNode()
		n.ext.Type = AttributeDescription(valueString(t))
		return nil
	}
	setExtValue := func(c *messageContainer, t *tlv) error {
		n := c.peekFilterNode()
		n.ext.MatchValue = AssertionValue(valueBytes(t))
		return nil
	}
	setExtDna := func(c *messageContainer, t *tlv) (err error) {
		var b bool
		if b, err = tlvBool(t); err != nil {
			return
		}
		c.peekFilterNode().ext.DNAttributes = b
		return
	}

	register(stateFilterExt, idMatchingRule, transition{next: stateFilterExtType, action: setExtRule})
	register(stateFilterExt, idMatchingRuleType, transition{next: stateFilterExtValue, action: setExtType})
	register(stateFilterExt, idMatchValue, transition{next: stateFilterExtDna, action: setExtValue})
	register(stateFilterExtType, idMatchingRuleType, transition{next: stateFilterExtValue, action: setExtType})
	register(stateFilterExtType, idMatchValue, transition{next: stateFilterExtDna, action: setExtValue})
	register(stateFilterExtValue, idMatchValue, transition{next: stateFilterExtDna, action: setExtValue})
	register(stateFilterExtDna, idMatchDnAttributes, transition{next: stateFilterExtDone, action: setExtDna})
}

func registerAddRequest() {
	register(stateProtocolOp, idAddRequest, transition{
		next: stateAddDN,
		action: func(c *messageContainer, t *tlv) error {
			req := &AddRequest{}
			c.newMessage(req)
			c.curEntry = &req.Entry
			return nil
		},
		closeState: stateMessageDone,
		onClose: func(c *messageContainer) error {
			req := c.msg.(*AddRequest)
			if req.Entry.DN == nil {
				return c.protocolError("add request closed without an entry DN")
			}
			c.curEntry = nil
			return nil
		},
	})

	register(stateAddDN, idOctetString, transition{
		next: stateAddAttrs,
		action: func(c *messageContainer, t *tlv) (err error) {
			var dn *DistinguishedName
			if dn, err = c.parseDN(valueString(t)); err != nil {
				return
			}
			c.curEntry.DN = dn
			return
		},
	})

	register(stateAddAttrs, idSequence, transition{
		next:       stateAddAttr,
		closeState: stateAddDone,
	})

	register(stateAddAttr, idSequence, transition{
		next: stateAddAttrType,
		action: func(c *messageContainer, t *tlv) error {
			c.curAttr = nil
			return nil
		},
		closeState: stateAddAttr,
		onClose: func(c *messageContainer) error {
			if c.curAttr == nil {
				return c.protocolError("attribute closed without a description")
			}
			c.curEntry.Attrs = append(c.curEntry.Attrs, c.curAttr)
			c.curAttr = nil
			return nil
		},
	})

	register(stateAddAttrType, idOctetString, transition{
		next: stateAddAttrVals,
		action: func(c *messageContainer, t *tlv) error {
			desc := valueString(t)
			if len(desc) == 0 {
				return c.protocolError("zero length attribute description in add request")
			}
			c.curAttr = NewAttribute(desc, c.schema)
			return nil
		},
	})

	register(stateAddAttrVals, idSet, transition{
		next:       stateAddAttrVal,
		closeState: stateAddValsDone,
		onClose: func(c *messageContainer) error {
			if c.curAttr.Len() == 0 {
				return c.protocolError("attribute " + c.curAttr.Desc + " carries no values")
			}
			return nil
		},
	})

	register(stateAddAttrVal, idOctetString, transition{
		next: stateAddAttrVal,
		action: func(c *messageContainer, t *tlv) error {
			if err := c.curAttr.AddValue(valueBytes(t), c.schema); err != nil {
				return c.protocolError(err.Error())
			}
			return nil
		},
	})
}

func registerDelRequest() {
	register(stateProtocolOp, idDelRequest, transition{
		next: stateMessageDone,
		action: func(c *messageContainer, t *tlv) (err error) {
			req := &DelRequest{}
			c.newMessage(req)

			raw := valueString(t)
			if len(raw) == 0 {
				err = c.responseError(&DelResponse{}, ResultInvalidDNSyntax,
					"zero length entry DN in del request")
				return
			}

			var dn *DistinguishedName
			if dn, err = c.parseDN(raw); err != nil {
				return
			}

			req.Entry = dn
			return
		},
	})
}

func registerModifyRequest() {
	register(stateProtocolOp, idModifyRequest, transition{
		next: stateModDN,
		action: func(c *messageContainer, t *tlv) error {
			c.newMessage(&ModifyRequest{})
			return nil
		},
		closeState: stateMessageDone,
		onClose: func(c *messageContainer) error {
			if c.msg.(*ModifyRequest).Object == nil {
				return c.protocolError("modify request closed without an object DN")
			}
			return nil
		},
	})

	register(stateModDN, idOctetString, transition{
		next: stateModChanges,
		action: func(c *messageContainer, t *tlv) (err error) {
			var dn *DistinguishedName
			if dn, err = c.parseDN(valueString(t)); err != nil {
				return
			}
			c.msg.(*ModifyRequest).Object = dn
			return
		},
	})

	register(stateModChanges, idSequence, transition{
		next:       stateModChange,
		closeState: stateModDone,
	})

	register(stateModChange, idSequence, transition{
		next: stateModOp,
		action: func(c *messageContainer, t *tlv) error {
			c.curMod = &Modification{}
			return nil
		},
		closeState: stateModChange,
		onClose: func(c *messageContainer) error {
			if c.curMod == nil || c.curMod.Attr == nil {
				return c.protocolError("change closed without a modification attribute")
			}
			req := c.msg.(*ModifyRequest)
			req.Changes = append(req.Changes, *c.curMod)
			c.curMod = nil
			return nil
		},
	})

	register(stateModOp, idEnumerated, transition{
		next: stateModAttr,
		action: func(c *messageContainer, t *tlv) (err error) {
			var op int64
			if op, err = tlvInt(t); err != nil {
				return
			}
			if op < 0 || op > 3 {
				err = c.protocolError("modify operation " + fmtInt(op, 10) + " out of range")
				return
			}
			c.curMod.Op = ModifyOperation(op)
			return
		},
	})

	register(stateModAttr, idSequence, transition{
		next:       stateModAttrType,
		closeState: stateModAttrDone,
	})

	register(stateModAttrType, idOctetString, transition{
		next: stateModVals,
		action: func(c *messageContainer, t *tlv) error {
			desc := valueString(t)
			if len(desc) == 0 {
				return c.protocolError("zero length attribute description in modify request")
			}
			c.curMod.Attr = NewAttribute(desc, c.schema)
			return nil
		},
	})

	// The value set of a modification may be empty (e.g. delete all
	// values of a type).
	register(stateModVals, idSet, transition{
		next:       stateModVal,
		closeState: stateModValsDone,
	})

	register(stateModVal, idOctetString, transition{
		next: stateModVal,
		action: func(c *messageContainer, t *tlv) error {
			if err := c.curMod.Attr.AddValue(valueBytes(t), c.schema); err != nil {
				return c.protocolError(err.Error())
			}
			return nil
		},
	})
}

func registerModifyDnRequest() {
	register(stateProtocolOp, idModifyDnRequest, transition{
		next: stateModDnEntry,
		action: func(c *messageContainer, t *tlv) error {
			c.newMessage(&ModifyDnRequest{})
			return nil
		},
		closeState: stateMessageDone,
		onClose: func(c *messageContainer) error {
			req := c.msg.(*ModifyDnRequest)
			if req.Entry == nil || req.NewRDN == nil {
				return c.protocolError("modify DN request closed incomplete")
			}
			return nil
		},
	})

	register(stateModDnEntry, idOctetString, transition{
		next: stateModDnNewRDN,
		action: func(c *messageContainer, t *tlv) (err error) {
			var dn *DistinguishedName
			if dn, err = c.parseDN(valueString(t)); err != nil {
				return
			}
			c.msg.(*ModifyDnRequest).Entry = dn
			return
		},
	})

	register(stateModDnNewRDN, idOctetString, transition{
		next: stateModDnDelOld,
		action: func(c *messageContainer, t *tlv) (err error) {
			raw := valueString(t)
			if len(raw) == 0 {
				err = c.responseError(&ModifyDnResponse{}, ResultInvalidDNSyntax,
					"zero length new RDN")
				return
			}

			var rdn *RelativeDistinguishedName
			var s RFC4514
			if rdn, err = s.RelativeDistinguishedName(raw, c.schema); err != nil {
				err = c.responseError(&ModifyDnResponse{}, ResultInvalidDNSyntax, err.Error())
				return
			}

			c.msg.(*ModifyDnRequest).NewRDN = rdn
			return
		},
	})

	register(stateModDnDelOld, idBoolean, transition{
		next: stateModDnSuperior,
		action: func(c *messageContainer, t *tlv) (err error) {
			var b bool
			if b, err = tlvBool(t); err != nil {
				return
			}
			c.msg.(*ModifyDnRequest).DeleteOldRDN = b
			return
		},
	})

	register(stateModDnSuperior, idModDnSuperior, transition{
		next: stateModDnDone,
		action: func(c *messageContainer, t *tlv) (err error) {
			var dn *DistinguishedName
			if dn, err = c.parseDN(valueString(t)); err != nil {
				return
			}
			c.msg.(*ModifyDnRequest).NewSuperior = dn
			return
		},
	})
}

func registerCompareRequest() {
	register(stateProtocolOp, idCompareRequest, transition{
		next: stateCompareEntry,
		action: func(c *messageContainer, t *tlv) error {
			c.newMessage(&CompareRequest{})
			return nil
		},
		closeState: stateMessageDone,
		onClose: func(c *messageContainer) error {
			req := c.msg.(*CompareRequest)
			if req.Entry == nil || len(req.Desc) == 0 || req.Value == nil {
				return c.protocolError("compare request closed incomplete")
			}
			return nil
		},
	})

	register(stateCompareEntry, idOctetString, transition{
		next: stateCompareAVA,
		action: func(c *messageContainer, t *tlv) (err error) {
			raw := valueString(t)
			if len(raw) == 0 {
				err = c.responseError(&CompareResponse{}, ResultInvalidDNSyntax,
					"zero length entry DN in compare request")
				return
			}

			var dn *DistinguishedName
			if dn, err = c.parseDN(raw); err != nil {
				return
			}
			c.msg.(*CompareRequest).Entry = dn
			return
		},
	})

	register(stateCompareAVA, idSequence, transition{
		next:       stateCompareDesc,
		closeState: stateCompareDone,
	})

	register(stateCompareDesc, idOctetString, transition{
		next: stateCompareValue,
		action: func(c *messageContainer, t *tlv) error {
			desc := valueString(t)
			if len(desc) == 0 {
				return c.protocolError("zero length attribute description in compare request")
			}
			c.msg.(*CompareRequest).Desc = desc
			return nil
		},
	})

	register(stateCompareValue, idOctetString, transition{
		next: stateCompareValDone,
		action: func(c *messageContainer, t *tlv) error {
			c.msg.(*CompareRequest).Value = valueBytes(t)
			return nil
		},
	})
}

func registerAbandonRequest() {
	register(stateProtocolOp, idAbandonRequest, transition{
		next: stateMessageDone,
		action: func(c *messageContainer, t *tlv) (err error) {
			var id int64
			if id, err = tlvInt(t); err != nil {
				return
			}
			if id < 0 || id > int64(c.dec.maxMessageID) {
				err = decErr(KindInvalidValue,
					"abandoned message ID "+fmtInt(id, 10)+" outside the permitted range")
				return
			}

			req := &AbandonRequest{AbandonedID: int(id)}
			c.newMessage(req)
			return
		},
	})
}

func registerExtendedRequest() {
	register(stateProtocolOp, idExtendedRequest, transition{
		next: stateExtReqName,
		action: func(c *messageContainer, t *tlv) error {
			c.newMessage(&ExtendedRequest{})
			return nil
		},
		closeState: stateMessageDone,
		onClose: func(c *messageContainer) error {
			if len(c.msg.(*ExtendedRequest).Name) == 0 {
				return decErr(KindInvalidValue, "extended request closed without a request name")
			}
			return nil
		},
	})

	register(stateExtReqName, idExtReqName, transition{
		next: stateExtReqValue,
		action: func(c *messageContainer, t *tlv) (err error) {
			oid := valueString(t)
			if !isNumericOIDForm(oid) {
				err = decErr(KindInvalidValue, "malformed extended request OID '"+oid+"'")
				return
			}
			c.msg.(*ExtendedRequest).Name = oid
			return
		},
	})

	register(stateExtReqValue, idExtReqValue, transition{
		next: stateExtReqDone,
		action: func(c *messageContainer, t *tlv) error {
			req := c.msg.(*ExtendedRequest)
			req.Value = valueBytes(t)
			req.HasValue = true
			return nil
		},
	})
}

func registerIntermediateResponse() {
	register(stateProtocolOp, idIntermediateResponse, transition{
		next: stateIntermediateName,
		action: func(c *messageContainer, t *tlv) error {
			c.newMessage(&IntermediateResponse{})
			return nil
		},
		closeState: stateMessageDone,
	})

	register(stateIntermediateName, idIntermName, transition{
		next: stateIntermediateValue,
		action: func(c *messageContainer, t *tlv) error {
			resp := c.msg.(*IntermediateResponse)
			resp.Name = valueString(t)
			resp.HasName = true
			return nil
		},
	})

	register(stateIntermediateName, idIntermValue, transition{
		next: stateIntermediateDone,
		action: func(c *messageContainer, t *tlv) error {
			resp := c.msg.(*IntermediateResponse)
			resp.Value = valueBytes(t)
			resp.HasValue = true
			return nil
		},
	})

	register(stateIntermediateValue, idIntermValue, transition{
		next: stateIntermediateDone,
		action: func(c *messageContainer, t *tlv) error {
			resp := c.msg.(*IntermediateResponse)
			resp.Value = valueBytes(t)
			resp.HasValue = true
			return nil
		},
	})
}
