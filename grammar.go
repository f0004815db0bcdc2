package ldapcodec

/*
grammar.go defines the closed grammar state enumeration, the static
(state, tag) transition table, and the actions shared by every
operation: the LDAPMessage envelope, the message ID and the trailing
controls. The per-operation sub-machines are registered from
grammar_requests.go and grammar_responses.go.

The table and every action are populated once during package
initialization and never mutated thereafter; they are safe for
arbitrary concurrent read from any number of sessions.
*/

import (
	"github.com/JesseCoretta/go-objectid"
)

type state int

/*
The grammar states. Every meaningful position inside every RFC 4511
operation holds one member of this closed enumeration.
*/
const (
	stateNone state = iota
	stateStart
	stateMessageID
	stateProtocolOp
	stateMessageDone

	// controls
	stateControl
	stateControlType
	stateControlCrit
	stateControlValue
	stateControlDone
	stateControlsEnd

	// bind request
	stateBindVersion
	stateBindName
	stateBindAuth
	stateBindSimpleDone
	stateBindSaslMech
	stateBindSaslCred
	stateBindSaslDone

	// search request
	stateSearchBase
	stateSearchScope
	stateSearchDeref
	stateSearchSize
	stateSearchTime
	stateSearchTypesOnly
	stateSearchAttr

	// search filter
	stateFilter
	stateFilterAVADesc
	stateFilterAVAValue
	stateFilterLeafDone
	stateFilterSubstrType
	stateFilterSubstrSeqStart
	stateFilterSubstrComp
	stateFilterSubstrDone
	stateFilterExt
	stateFilterExtType
	stateFilterExtValue
	stateFilterExtDna
	stateFilterExtDone

	// add request
	stateAddDN
	stateAddAttrs
	stateAddAttr
	stateAddAttrType
	stateAddAttrVals
	stateAddAttrVal
	stateAddValsDone
	stateAddDone

	// modify request
	stateModDN
	stateModChanges
	stateModChange
	stateModOp
	stateModAttr
	stateModAttrType
	stateModVals
	stateModVal
	stateModValsDone
	stateModAttrDone
	stateModDone

	// modify DN request
	stateModDnEntry
	stateModDnNewRDN
	stateModDnDelOld
	stateModDnSuperior
	stateModDnDone

	// compare request
	stateCompareEntry
	stateCompareAVA
	stateCompareDesc
	stateCompareValue
	stateCompareValDone
	stateCompareDone

	// extended request
	stateExtReqName
	stateExtReqValue
	stateExtReqDone

	// intermediate response
	stateIntermediateName
	stateIntermediateValue
	stateIntermediateDone

	// search result entry
	stateSREntryDN
	stateSREntryAttrs
	stateSREntryAttr
	stateSREntryAttrType
	stateSREntryVals
	stateSREntryVal
	stateSREntryValsDone
	stateSREntryDone

	// search result reference
	stateSearchRefURI

	// bind response
	stateBindRespCode
	stateBindRespMatched
	stateBindRespDiag
	stateBindRespPostRef
	stateBindRespRefURI
	stateBindRespAfterRef
	stateBindRespDone

	// search result done
	stateSearchDoneCode
	stateSearchDoneMatched
	stateSearchDoneDiag
	stateSearchDonePostRef
	stateSearchDoneRefURI
	stateSearchDoneAfterRef
	stateSearchDoneDone

	// modify response
	stateModRespCode
	stateModRespMatched
	stateModRespDiag
	stateModRespPostRef
	stateModRespRefURI
	stateModRespAfterRef
	stateModRespDone

	// add response
	stateAddRespCode
	stateAddRespMatched
	stateAddRespDiag
	stateAddRespPostRef
	stateAddRespRefURI
	stateAddRespAfterRef
	stateAddRespDone

	// del response
	stateDelRespCode
	stateDelRespMatched
	stateDelRespDiag
	stateDelRespPostRef
	stateDelRespRefURI
	stateDelRespAfterRef
	stateDelRespDone

	// modify DN response
	stateModDnRespCode
	stateModDnRespMatched
	stateModDnRespDiag
	stateModDnRespPostRef
	stateModDnRespRefURI
	stateModDnRespAfterRef
	stateModDnRespDone

	// compare response
	stateCompareRespCode
	stateCompareRespMatched
	stateCompareRespDiag
	stateCompareRespPostRef
	stateCompareRespRefURI
	stateCompareRespAfterRef
	stateCompareRespDone

	// extended response
	stateExtRespCode
	stateExtRespMatched
	stateExtRespDiag
	stateExtRespPostRef
	stateExtRespRefURI
	stateExtRespAfterRef
	stateExtRespName
	stateExtRespValue
	stateExtRespDone
)

// grammarAction mutates the message container for one element; for
// primitive elements t carries the complete value bytes.
type grammarAction func(c *messageContainer, t *tlv) error

// closeHook runs when a constructed element's extent is fully
// consumed.
type closeHook func(c *messageContainer) error

// transition is one cell of the grammar table.
type transition struct {
	next       state
	action     grammarAction
	onClose    closeHook
	closeState state
}

var grammar map[state]map[byte]transition

func register(s state, id byte, tr transition) {
	cells, found := grammar[s]
	if !found {
		cells = make(map[byte]transition)
		grammar[s] = cells
	}
	cells[id] = tr
}

// stateEndAllowed reports whether a PDU is permitted to terminate with
// the grammar in state s.
func stateEndAllowed(s state) bool {
	switch s {
	case stateMessageDone, stateControl, stateControlsEnd:
		return true
	}
	return false
}

func valueBytes(t *tlv) []byte {
	if t.value == nil {
		return []byte{}
	}
	out := make([]byte, len(t.value))
	copy(out, t.value)
	return out
}

func valueString(t *tlv) string {
	return string(t.value)
}

func tlvInt(t *tlv) (int64, error) {
	return berDecodeInt(t.value)
}

func tlvBool(t *tlv) (bool, error) {
	if len(t.value) != 1 {
		return false, decErr(KindMalformedBER, "BOOLEAN value must be exactly one octet")
	}
	return t.value[0] != 0x00, nil
}

// protocolError reports a semantic failure, downgrading to a
// response-carrying error when the in-flight request defines a
// response.
func (r *messageContainer) protocolError(diag string) error {
	if resp := r.protocolErrorResponse(); resp != nil {
		return r.responseError(resp, ResultProtocolError, diag)
	}
	return decErr(KindInvalidValue, diag)
}

func init() {
	grammar = make(map[state]map[byte]transition)

	// LDAPMessage ::= SEQUENCE { messageID, protocolOp, controls [0] }
	register(stateStart, idSequence, transition{
		next: stateMessageID,
	})

	register(stateMessageID, idInteger, transition{
		next:   stateProtocolOp,
		action: actionMessageID,
	})

	// controls follow any completed protocol operation
	register(stateMessageDone, idControls, transition{
		next:       stateControl,
		closeState: stateControlsEnd,
	})

	register(stateControl, idSequence, transition{
		next:       stateControlType,
		action:     actionControlInit,
		onClose:    closeControl,
		closeState: stateControl,
	})

	register(stateControlType, idOctetString, transition{
		next:   stateControlCrit,
		action: actionControlType,
	})

	register(stateControlCrit, idBoolean, transition{
		next:   stateControlValue,
		action: actionControlCriticality,
	})

	register(stateControlCrit, idOctetString, transition{
		next:   stateControlDone,
		action: actionControlValue,
	})

	register(stateControlValue, idOctetString, transition{
		next:   stateControlDone,
		action: actionControlValue,
	})

	registerRequestGrammar()
	registerResponseGrammar()
}

// idControls is the [0] IMPLICIT SEQUENCE OF Control envelope.
const idControls byte = classContextSpecific | constructedFlag | 0 // 0xA0

func actionMessageID(c *messageContainer, t *tlv) (err error) {
	var id int64
	if id, err = tlvInt(t); err != nil {
		return
	}

	if id <= 0 || id > int64(c.dec.maxMessageID) {
		err = decErr(KindInvalidValue,
			"message ID "+fmtInt(id, 10)+" outside the permitted range")
		return
	}

	c.id = int(id)
	return
}

func actionControlInit(c *messageContainer, t *tlv) error {
	c.curControl = &Control{}
	return nil
}

func actionControlType(c *messageContainer, t *tlv) (err error) {
	oid := valueString(t)
	if len(oid) == 0 {
		err = c.protocolError("zero length control OID")
		return
	}

	if !isNumericOIDForm(oid) {
		err = c.protocolError("malformed control OID '" + oid + "'")
		return
	} else if _, oerr := objectid.NewDotNotation(oid); oerr != nil {
		err = c.protocolError("malformed control OID '" + oid + "'")
		return
	}

	c.curControl.OID = oid
	return
}

func actionControlCriticality(c *messageContainer, t *tlv) (err error) {
	var b bool
	if b, err = tlvBool(t); err != nil {
		return
	}

	c.curControl.Criticality = b
	return
}

func actionControlValue(c *messageContainer, t *tlv) error {
	c.curControl.Value = valueBytes(t)
	return nil
}

// closeControl finalizes one control: a registered factory decodes the
// inner value; failure fails the message when the control is critical
// and otherwise retains the opaque bytes with a warning.
func closeControl(c *messageContainer) (err error) {
	ctl := c.curControl
	c.curControl = nil

	if ctl == nil || len(ctl.OID) == 0 {
		err = c.protocolError("control closed without an OID")
		return
	}

	if factory, found := controlFactories[ctl.OID]; found {
		var typed ControlValue
		if typed, err = factory(ctl.Value); err != nil {
			if ctl.Criticality {
				err = c.protocolError("invalid value for critical control " +
					ctl.OID + ": " + err.Error())
				return
			}
			c.warn("control " + ctl.OID + " retained opaque: " + err.Error())
			err = nil
		} else {
			ctl.Decoded = typed
		}
	}

	c.msg.AppendControl(*ctl)
	return
}
