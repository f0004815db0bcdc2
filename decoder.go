package ldapcodec

/*
decoder.go implements the streaming push decoder: a push-down
automaton fed arbitrary byte chunks, driving the static LDAP grammar
to assemble protocol messages without buffering whole PDUs in advance.
*/

import (
	"github.com/JesseCoretta/go-stackage"
)

/*
DefaultMaxPDUSize bounds the extent of one inbound PDU (2 MiB).
*/
const DefaultMaxPDUSize = 2 * 1024 * 1024

/*
DefaultMaxDepth bounds the nesting depth of the TLV stack.
*/
const DefaultMaxDepth = 100

/*
DefaultMaxMessageID is the default upper bound (inclusive) for inbound
message IDs: one below the maxInt of RFC 4511.
*/
const DefaultMaxMessageID = maxBerLength - 1

/*
tlv carries one parsed tag/length header and, for primitive elements,
the accumulated value bytes handed to grammar actions.
*/
type tlv struct {
	tal   TagAndLength
	value []byte
}

// openTLV tracks one in-progress constructed element on the decoder
// stack. remaining counts the value bytes not yet accounted for; each
// child's full extent is deducted when its header completes.
type openTLV struct {
	id         byte
	remaining  int
	onClose    closeHook
	closeState state
}

/*
Decoder is the per-session streaming decoder. Each connection owns one
instance; the grammar table it consults is immutable and shared.

A zero Decoder is not ready for use; see [NewDecoder].
*/
type Decoder struct {
	schema       SchemaManager
	maxPDU       int
	maxDepth     int
	maxMessageID int

	state     state
	stack     []openTLV
	hdr       []byte
	pending   *pendingValue
	container *messageContainer
	out       []Message
	warnings  []string
}

// pendingValue tracks a primitive element whose value bytes have not
// all arrived yet.
type pendingValue struct {
	t    tlv
	need int
	tr   transition
}

/*
NewDecoder returns a freshly initialized instance of *[Decoder]. A
[SchemaManager] may be supplied variadically and is consulted for DN
and attribute normalization during decoding.
*/
func NewDecoder(schema ...SchemaManager) *Decoder {
	r := &Decoder{
		maxPDU:       DefaultMaxPDUSize,
		maxDepth:     DefaultMaxDepth,
		maxMessageID: DefaultMaxMessageID,
		state:        stateStart,
	}

	if len(schema) > 0 {
		r.schema = schema[0]
	}

	r.container = newMessageContainer(r)

	return r
}

/*
SetSchema assigns the schema collaborator consulted during decoding.
*/
func (r *Decoder) SetSchema(schema SchemaManager) {
	r.schema = schema
	r.container.schema = schema
}

/*
SetMaxPDUSize bounds the extent, in bytes, of one inbound PDU. A PDU
whose outermost declared extent exceeds n is rejected before any
grammar action is invoked.
*/
func (r *Decoder) SetMaxPDUSize(n int) {
	if n > 0 {
		r.maxPDU = n
	}
}

/*
SetMaxDepth bounds the TLV nesting depth.
*/
func (r *Decoder) SetMaxDepth(n int) {
	if n > 0 {
		r.maxDepth = n
	}
}

/*
SetMaxMessageID assigns the upper bound (inclusive) for inbound
message IDs.
*/
func (r *Decoder) SetMaxMessageID(n int) {
	if n > 0 {
		r.maxMessageID = n
	}
}

/*
Warnings drains and returns the non-fatal conditions recorded since
the previous call, such as a non-critical control whose inner encoding
could not be decoded.
*/
func (r *Decoder) Warnings() (w []string) {
	w = r.warnings
	r.warnings = nil
	return
}

/*
Reset clears all per-PDU state. It is invoked automatically upon PDU
completion and upon any recoverable error.
*/
func (r *Decoder) Reset() {
	r.state = stateStart
	r.stack = r.stack[:0]
	r.hdr = r.hdr[:0]
	r.pending = nil
	r.container.reset()
}

/*
Feed consumes as many bytes of p as form complete elements at the
deepest currently-open level, returning the messages completed by this
chunk in arrival order. State is preserved across calls, so any
partition of a PDU's bytes yields the same messages as feeding them
all at once.

A returned *[ResponseError] is recoverable: the session may continue
after the carried response is delivered. Any other error is terminal
for the session.
*/
func (r *Decoder) Feed(p []byte) (msgs []Message, err error) {
	r.out = nil

	for len(p) > 0 {
		if r.pending != nil {
			p, err = r.fillPending(p)
		} else {
			p, err = r.readHeader(p)
		}

		if err != nil {
			r.Reset()
			msgs = r.out
			return
		}
	}

	msgs = r.out
	return
}

// fillPending accumulates value bytes for the current primitive
// element, running its action once complete.
func (r *Decoder) fillPending(p []byte) (rest []byte, err error) {
	pv := r.pending

	n := pv.need
	if n > len(p) {
		n = len(p)
	}

	pv.t.value = append(pv.t.value, p[:n]...)
	pv.need -= n
	rest = p[n:]

	if pv.need > 0 {
		return
	}

	r.pending = nil
	if pv.tr.action != nil {
		if err = pv.tr.action(r.container, &pv.t); err != nil {
			return
		}
	}

	err = r.closeCompleted()
	return
}

// readHeader assembles and applies the next tag/length header, which
// may span feeds.
func (r *Decoder) readHeader(p []byte) (rest []byte, err error) {
	// Assemble one byte at a time; headers are at most six octets.
	var tal TagAndLength
	var done bool

	for {
		if len(p) == 0 {
			rest = p
			return
		}

		r.hdr = append(r.hdr, p[0])
		p = p[1:]

		if tal, _, done, err = parseTagAndLength(r.hdr); err != nil {
			return
		} else if done {
			break
		}
	}

	hdrLen := len(r.hdr)
	r.hdr = r.hdr[:0]
	rest = p

	err = r.applyHeader(tal, hdrLen)
	return
}

// applyHeader accounts a completed header against the open stack and
// steps the grammar. hdrLen is the header's size as received, which
// may exceed the minimal encoding.
func (r *Decoder) applyHeader(tal TagAndLength, hdrLen int) (err error) {
	extent := hdrLen + tal.Length

	if len(r.stack) == 0 {
		// Top-level PDU: the outermost declared extent is the sole
		// inbound resource bound.
		if extent > r.maxPDU {
			err = decErr(KindPDUTooLarge, "PDU of "+itoa(extent)+
				" bytes exceeds maximum of "+itoa(r.maxPDU))
			return
		}
	} else {
		top := &r.stack[len(r.stack)-1]
		top.remaining -= extent
		if top.remaining < 0 {
			err = decErr(KindMalformedBER,
				"element extends past the end of its enclosing element")
			return
		}
	}

	if len(r.stack) >= r.maxDepth {
		err = decErr(KindMalformedBER, "TLV nesting exceeds depth bound")
		return
	}

	id := tal.Identifier()
	tr, found := grammar[r.state][id]
	if !found {
		err = r.container.unexpectedTag(r.state, id)
		return
	}

	r.state = tr.next

	if tal.IsCompound {
		if tr.action != nil {
			t := tlv{tal: tal}
			if err = tr.action(r.container, &t); err != nil {
				return
			}
		}

		r.stack = append(r.stack, openTLV{
			id:         id,
			remaining:  tal.Length,
			onClose:    tr.onClose,
			closeState: tr.closeState,
		})

		err = r.closeCompleted()
		return
	}

	if tal.Length == 0 {
		t := tlv{tal: tal}
		if tr.action != nil {
			if err = tr.action(r.container, &t); err != nil {
				return
			}
		}
		err = r.closeCompleted()
		return
	}

	r.pending = &pendingValue{
		t:    tlv{tal: tal},
		need: tal.Length,
		tr:   tr,
	}

	return
}

// closeCompleted pops every fully consumed element from the stack,
// running close hooks, and emits the message when the outermost
// element closes.
func (r *Decoder) closeCompleted() (err error) {
	for len(r.stack) > 0 {
		top := &r.stack[len(r.stack)-1]
		if top.remaining != 0 {
			return
		}

		popped := *top
		r.stack = r.stack[:len(r.stack)-1]

		if popped.onClose != nil {
			if err = popped.onClose(r.container); err != nil {
				return
			}
		}
		if popped.closeState != stateNone {
			r.state = popped.closeState
		}

		if len(r.stack) == 0 {
			err = r.emit()
			return
		}
	}

	return
}

// emit surfaces the completed PDU and resets per-PDU state.
func (r *Decoder) emit() (err error) {
	if !stateEndAllowed(r.state) {
		err = decErr(KindUnexpectedTag,
			"PDU ended before its grammar reached a terminal position")
		return
	}

	msg := r.container.msg
	if msg == nil {
		err = decErr(KindUnexpectedTag, "PDU closed with no protocol operation")
		return
	}

	r.warnings = append(r.warnings, r.container.warnings...)
	r.out = append(r.out, msg)

	r.state = stateStart
	r.hdr = r.hdr[:0]
	r.pending = nil
	r.container.reset()

	return
}

/*
Finish signals end-of-stream. An error of kind [KindTruncatedPDU] is
returned when a PDU is still in flight: a declared length extended
past the received bytes, and the caller should close the session.
*/
func (r *Decoder) Finish() (err error) {
	if len(r.stack) > 0 || len(r.hdr) > 0 || r.pending != nil {
		err = decErr(KindTruncatedPDU,
			"stream ended inside a partially received PDU")
		r.Reset()
	}
	return
}

/*
Decode is the transport-facing convenience surface: it feeds buf in
one call and appends the completed messages to the returned slice.
*/
func (r *Decoder) Decode(buf []byte) ([]Message, error) {
	return r.Feed(buf)
}

/*
messageContainer holds the partially constructed message and all
per-PDU assembly scratch. One container is owned by each decoder and
reused across PDUs.
*/
type messageContainer struct {
	dec    *Decoder
	schema SchemaManager

	id          int
	msg         Message
	res         *LdapResult
	resComplete bool

	// filter assembly during SearchRequest decoding
	fstack     stackage.Stack
	filterRoot *filterNode

	curAttr    *Attribute
	curEntry   *Entry
	curMod     *Modification
	curControl *Control

	warnings []string
}

func newMessageContainer(dec *Decoder) *messageContainer {
	c := &messageContainer{
		dec:    dec,
		schema: dec.schema,
		fstack: stackage.Basic(),
	}
	return c
}

func (r *messageContainer) reset() {
	r.id = 0
	r.msg = nil
	r.res = nil
	r.resComplete = false
	r.filterRoot = nil
	r.curAttr = nil
	r.curEntry = nil
	r.curMod = nil
	r.curControl = nil
	r.warnings = nil
	r.fstack = stackage.Basic()
}

func (r *messageContainer) warn(msg string) {
	r.warnings = append(r.warnings, msg)
}

// unexpectedTag classifies a grammar table miss, downgrading it to a
// response-carrying error when a response message type is already
// known for the in-flight request.
func (r *messageContainer) unexpectedTag(s state, id byte) error {
	msg := "no transition for tag 0x" + uc(fmtUint(uint64(id), 16)) +
		" in state " + itoa(int(s))

	if resp := r.protocolErrorResponse(); resp != nil {
		return r.responseError(resp, ResultProtocolError, msg)
	}

	return decErr(KindUnexpectedTag, msg)
}

// protocolErrorResponse synthesizes the response message matching the
// in-flight request, for the request kinds that define one.
func (r *messageContainer) protocolErrorResponse() Message {
	switch r.msg.(type) {
	case *AddRequest:
		return &AddResponse{}
	case *DelRequest:
		return &DelResponse{}
	case *ModifyRequest:
		return &ModifyResponse{}
	case *ModifyDnRequest:
		return &ModifyDnResponse{}
	case *CompareRequest:
		return &CompareResponse{}
	case *SearchRequest:
		return &SearchResultDone{}
	}
	return nil
}

// responseError builds the recoverable error variant carrying a
// ready-to-encode response.
func (r *messageContainer) responseError(resp Message, code ResultCode, diag string) error {
	resp.SetMessageID(r.id)

	switch tv := resp.(type) {
	case *AddResponse:
		tv.Code = code
		tv.Diagnostic = diag
	case *DelResponse:
		tv.Code = code
		tv.Diagnostic = diag
	case *ModifyResponse:
		tv.Code = code
		tv.Diagnostic = diag
	case *ModifyDnResponse:
		tv.Code = code
		tv.Diagnostic = diag
	case *CompareResponse:
		tv.Code = code
		tv.Diagnostic = diag
	case *SearchResultDone:
		tv.Code = code
		tv.Diagnostic = diag
	}

	return &ResponseError{
		DecodingError: DecodingError{Kind: KindInvalidValue, Msg: diag},
		Response:      resp,
	}
}

// dnError maps a DN parse failure to the appropriate recoverable or
// terminal error for the in-flight request.
func (r *messageContainer) dnError(err error) error {
	if resp := r.protocolErrorResponse(); resp != nil {
		return r.responseError(resp, ResultInvalidDNSyntax, err.Error())
	}

	return decErr(KindInvalidValue, err.Error())
}

func (r *messageContainer) parseDN(raw string) (*DistinguishedName, error) {
	dn, err := parseDN(raw, r.schema)
	if err != nil {
		return nil, r.dnError(err)
	}
	return dn, nil
}

// filterNode is the mutable assembly form of one filter element; the
// immutable tree is built once the root closes.
type filterNode struct {
	id       byte
	children []*filterNode
	desc     string
	value    []byte
	sub      SubstringAssertion
	subLast  byte
	ext      MatchingRuleAssertionFilter
}

// attachFilterNode links a new node beneath the innermost open branch,
// or installs it as the root.
func (r *messageContainer) attachFilterNode(n *filterNode) error {
	top := r.peekFilterNode()
	if top == nil {
		if r.filterRoot != nil {
			return decErr(KindUnexpectedTag, "multiple root filter elements")
		}
		r.filterRoot = n
		return nil
	}

	switch top.id {
	case idFilterAnd, idFilterOr:
		top.children = append(top.children, n)
	case idFilterNot:
		if len(top.children) > 0 {
			return decErr(KindUnexpectedTag, "'not' filter accepts exactly one child")
		}
		top.children = append(top.children, n)
	default:
		return decErr(KindUnexpectedTag, "filter element nested inside a leaf")
	}

	return nil
}

func (r *messageContainer) pushFilterNode(n *filterNode) {
	r.fstack.Push(n)
}

func (r *messageContainer) popFilterNode() *filterNode {
	if r.fstack.Len() == 0 {
		return nil
	}
	slice, ok := r.fstack.Pop()
	if !ok {
		return nil
	}
	n, _ := slice.(*filterNode)
	return n
}

func (r *messageContainer) peekFilterNode() *filterNode {
	if r.fstack.Len() == 0 {
		return nil
	}
	slice, ok := r.fstack.Pop()
	if !ok {
		return nil
	}
	r.fstack.Push(slice)
	n, _ := slice.(*filterNode)
	return n
}

// build converts the assembly tree into the immutable filter model.
func (r *filterNode) build() (Filter, error) {
	switch r.id {
	case idFilterAnd, idFilterOr:
		children := make([]Filter, 0, len(r.children))
		for _, child := range r.children {
			f, err := child.build()
			if err != nil {
				return nil, err
			}
			children = append(children, f)
		}
		if r.id == idFilterAnd {
			return AndFilter(children), nil
		}
		return OrFilter(children), nil
	case idFilterNot:
		if len(r.children) != 1 {
			return nil, decErr(KindInvalidValue, "'not' filter requires exactly one child")
		}
		child, err := r.children[0].build()
		if err != nil {
			return nil, err
		}
		return NotFilter{child}, nil
	case idFilterEquality:
		return EqualityMatchFilter{AttributeDescription(r.desc), AssertionValue(r.value)}, nil
	case idFilterGreaterOrEqual:
		return GreaterOrEqualFilter{AttributeDescription(r.desc), AssertionValue(r.value)}, nil
	case idFilterLessOrEqual:
		return LessOrEqualFilter{AttributeDescription(r.desc), AssertionValue(r.value)}, nil
	case idFilterApproxMatch:
		return ApproximateMatchFilter{AttributeDescription(r.desc), AssertionValue(r.value)}, nil
	case idFilterPresent:
		return PresentFilter{AttributeDescription(r.desc)}, nil
	case idFilterSubstrings:
		return SubstringsFilter{
			Type:       AttributeDescription(r.desc),
			Substrings: r.sub,
		}, nil
	case idFilterExtensibleMatch:
		return ExtensibleMatchFilter(r.ext), nil
	}

	return nil, decErr(KindInvalidValue, "unidentified filter element")
}
