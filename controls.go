package ldapcodec

/*
controls.go implements the control model of RFC 4511 § 4.1.11 and the
OID-keyed factory registry through which control values gain typed
views. Factories are registered once during package initialization and
the registry is never mutated thereafter.
*/

import (
	ber "github.com/go-asn1-ber/asn1-ber"
)

// Registered control OIDs.
const (
	ControlOIDManageDsaIT      = `2.16.840.1.113730.3.4.2`
	ControlOIDPersistentSearch = `2.16.840.1.113730.3.4.3`
	ControlOIDEntryChange      = `2.16.840.1.113730.3.4.7`
	ControlOIDProxiedAuthz     = `2.16.840.1.113730.3.4.18`
	ControlOIDPagedResults     = `1.2.840.113556.1.4.319`
	ControlOIDSortRequest      = `1.2.840.113556.1.4.473`
	ControlOIDSortResponse     = `1.2.840.113556.1.4.474`
	ControlOIDSubentries       = `1.3.6.1.4.1.4203.1.10.1`
	ControlOIDCascade          = `1.3.6.1.4.1.18060.0.0.1`
)

/*
Control implements the Control construct of RFC 4511 § 4.1.11. Value
holds the raw controlValue octets (nil when absent); Decoded holds the
typed view when a factory is registered for the OID and its decode
succeeded.
*/
type Control struct {
	OID         string
	Criticality bool
	Value       []byte
	Decoded     ControlValue
}

/*
ControlValue is the interface type qualified by every typed control
view.
*/
type ControlValue interface {
	// ControlOID returns the OID under which the control travels.
	ControlOID() string

	// Encode returns the inner controlValue octets, nil for controls
	// that travel without a value.
	Encode() ([]byte, error)
}

/*
NewControl returns an instance of [Control] wrapping the input typed
view, with its value octets freshly encoded. Criticality defaults to
false.
*/
func NewControl(v ControlValue, criticality ...bool) (ctl Control, err error) {
	var value []byte
	if value, err = v.Encode(); err != nil {
		return
	}

	ctl = Control{
		OID:     v.ControlOID(),
		Value:   value,
		Decoded: v,
	}
	if len(criticality) > 0 {
		ctl.Criticality = criticality[0]
	}

	return
}

// controlFactory decodes a control's inner value octets into a typed
// view.
type controlFactory func(value []byte) (ControlValue, error)

var controlFactories map[string]controlFactory = map[string]controlFactory{
	ControlOIDManageDsaIT:      decodeManageDsaIT,
	ControlOIDPersistentSearch: decodePersistentSearch,
	ControlOIDEntryChange:      decodeEntryChange,
	ControlOIDProxiedAuthz:     decodeProxiedAuthz,
	ControlOIDPagedResults:     decodePagedResults,
	ControlOIDSortRequest:      decodeSortRequest,
	ControlOIDSortResponse:     decodeSortResponse,
	ControlOIDSubentries:       decodeSubentries,
	ControlOIDCascade:          decodeCascade,
}

/*
ManageDsaITControl implements RFC 3296: referral objects are treated
as ordinary entries. The control travels without a value.
*/
type ManageDsaITControl struct{}

/*
ControlOID returns the OID under which the control travels.
*/
func (r ManageDsaITControl) ControlOID() string { return ControlOIDManageDsaIT }

/*
Encode returns the inner controlValue octets (nil; the control is
valueless).
*/
func (r ManageDsaITControl) Encode() ([]byte, error) { return nil, nil }

func decodeManageDsaIT(value []byte) (ControlValue, error) {
	if len(value) != 0 {
		return nil, errorTxt("ManageDsaIT control carries no value")
	}
	return ManageDsaITControl{}, nil
}

/*
CascadeControl implements the cascading delete marker. The control
travels without a value.
*/
type CascadeControl struct{}

/*
ControlOID returns the OID under which the control travels.
*/
func (r CascadeControl) ControlOID() string { return ControlOIDCascade }

/*
Encode returns the inner controlValue octets (nil; the control is
valueless).
*/
func (r CascadeControl) Encode() ([]byte, error) { return nil, nil }

func decodeCascade(value []byte) (ControlValue, error) {
	if len(value) != 0 {
		return nil, errorTxt("Cascade control carries no value")
	}
	return CascadeControl{}, nil
}

/*
SubentriesControl implements RFC 3672 § 3: the visibility of
subentries relative to a search.

	SubentriesControlValue ::= BOOLEAN
*/
type SubentriesControl struct {
	Visibility bool
}

/*
ControlOID returns the OID under which the control travels.
*/
func (r SubentriesControl) ControlOID() string { return ControlOIDSubentries }

/*
Encode returns the inner controlValue octets.
*/
func (r SubentriesControl) Encode() ([]byte, error) {
	return ber.NewBoolean(ber.ClassUniversal, ber.TypePrimitive, ber.TagBoolean, r.Visibility, `visibility`).Bytes(), nil
}

func decodeSubentries(value []byte) (ControlValue, error) {
	packet, err := ber.DecodePacketErr(value)
	if err != nil {
		return nil, err
	}

	content := packet.Data.Bytes()
	if packet.Tag != ber.TagBoolean || len(content) != 1 {
		return nil, errorTxt("Subentries control value must be a BOOLEAN")
	}

	return SubentriesControl{Visibility: content[0] != 0x00}, nil
}

/*
ProxiedAuthzControl implements RFC 4370. The authorization identity
travels as the raw control value, not wrapped in BER.
*/
type ProxiedAuthzControl struct {
	AuthzID string
}

/*
ControlOID returns the OID under which the control travels.
*/
func (r ProxiedAuthzControl) ControlOID() string { return ControlOIDProxiedAuthz }

/*
Encode returns the inner controlValue octets.
*/
func (r ProxiedAuthzControl) Encode() ([]byte, error) {
	return []byte(r.AuthzID), nil
}

func decodeProxiedAuthz(value []byte) (ControlValue, error) {
	authzID := string(value)
	if len(authzID) > 0 && !hasPfx(authzID, `dn:`) && !hasPfx(authzID, `u:`) {
		return nil, errorTxt("Proxied authorization identity must be empty or carry a dn: or u: prefix")
	}
	return ProxiedAuthzControl{AuthzID: authzID}, nil
}

/*
PagedResultsControl implements RFC 2696.

	realSearchControlValue ::= SEQUENCE {
	    size    INTEGER,
	    cookie  OCTET STRING }
*/
type PagedResultsControl struct {
	Size   int
	Cookie []byte
}

/*
ControlOID returns the OID under which the control travels.
*/
func (r PagedResultsControl) ControlOID() string { return ControlOIDPagedResults }

/*
Encode returns the inner controlValue octets.
*/
func (r PagedResultsControl) Encode() ([]byte, error) {
	packet := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, `searchControlValue`)
	packet.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, int64(r.Size), `size`))
	packet.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, string(r.Cookie), `cookie`))
	return packet.Bytes(), nil
}

func decodePagedResults(value []byte) (ControlValue, error) {
	packet, err := ber.DecodePacketErr(value)
	if err != nil {
		return nil, err
	}

	if len(packet.Children) != 2 {
		return nil, errorTxt("Paged results control value requires a size and a cookie")
	}

	size, err := ber.ParseInt64(packet.Children[0].Data.Bytes())
	if err != nil {
		return nil, err
	} else if size < 0 {
		return nil, errorTxt("Negative page size in paged results control")
	}

	cookie := make([]byte, len(packet.Children[1].Data.Bytes()))
	copy(cookie, packet.Children[1].Data.Bytes())

	return PagedResultsControl{Size: int(size), Cookie: cookie}, nil
}

/*
SortKey is one member of a [SortRequestControl] key list.
*/
type SortKey struct {
	AttributeType string
	OrderingRule  string
	ReverseOrder  bool
}

/*
SortRequestControl implements the server side sorting request of
RFC 2891.

	SortKeyList ::= SEQUENCE OF SEQUENCE {
	    attributeType   AttributeDescription,
	    orderingRule    [0] MatchingRuleId OPTIONAL,
	    reverseOrder    [1] BOOLEAN DEFAULT FALSE }
*/
type SortRequestControl struct {
	Keys []SortKey
}

/*
ControlOID returns the OID under which the control travels.
*/
func (r SortRequestControl) ControlOID() string { return ControlOIDSortRequest }

/*
Encode returns the inner controlValue octets.
*/
func (r SortRequestControl) Encode() ([]byte, error) {
	if len(r.Keys) == 0 {
		return nil, errorTxt("Sort request control requires at least one key")
	}

	packet := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, `sortKeyList`)
	for _, key := range r.Keys {
		seq := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, `sortKey`)
		seq.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, key.AttributeType, `attributeType`))
		if len(key.OrderingRule) > 0 {
			seq.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, ber.Tag(0), key.OrderingRule, `orderingRule`))
		}
		if key.ReverseOrder {
			seq.AppendChild(ber.NewBoolean(ber.ClassContext, ber.TypePrimitive, ber.Tag(1), true, `reverseOrder`))
		}
		packet.AppendChild(seq)
	}

	return packet.Bytes(), nil
}

func decodeSortRequest(value []byte) (ControlValue, error) {
	packet, err := ber.DecodePacketErr(value)
	if err != nil {
		return nil, err
	}

	if len(packet.Children) == 0 {
		return nil, errorTxt("Sort request control requires at least one key")
	}

	ctl := SortRequestControl{}
	for _, child := range packet.Children {
		if len(child.Children) == 0 {
			return nil, errorTxt("Sort key carries no attribute type")
		}

		key := SortKey{
			AttributeType: string(child.Children[0].Data.Bytes()),
		}
		if len(key.AttributeType) == 0 {
			return nil, errorTxt("Sort key carries a zero length attribute type")
		}

		for _, member := range child.Children[1:] {
			switch member.Tag {
			case 0:
				key.OrderingRule = string(member.Data.Bytes())
			case 1:
				content := member.Data.Bytes()
				key.ReverseOrder = len(content) == 1 && content[0] != 0x00
			default:
				return nil, errorTxt("Unexpected member in sort key")
			}
		}

		ctl.Keys = append(ctl.Keys, key)
	}

	return ctl, nil
}

/*
SortResponseControl implements the server side sorting response of
RFC 2891.

	SortResult ::= SEQUENCE {
	    sortResult     ENUMERATED { ... },
	    attributeType  [0] AttributeDescription OPTIONAL }
*/
type SortResponseControl struct {
	Result        ResultCode
	AttributeType string
}

/*
ControlOID returns the OID under which the control travels.
*/
func (r SortResponseControl) ControlOID() string { return ControlOIDSortResponse }

/*
Encode returns the inner controlValue octets.
*/
func (r SortResponseControl) Encode() ([]byte, error) {
	packet := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, `sortResult`)
	packet.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagEnumerated, int64(r.Result), `sortResult`))
	if len(r.AttributeType) > 0 {
		packet.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, ber.Tag(0), r.AttributeType, `attributeType`))
	}
	return packet.Bytes(), nil
}

func decodeSortResponse(value []byte) (ControlValue, error) {
	packet, err := ber.DecodePacketErr(value)
	if err != nil {
		return nil, err
	}

	if len(packet.Children) == 0 {
		return nil, errorTxt("Sort response control carries no result")
	}

	result, err := ber.ParseInt64(packet.Children[0].Data.Bytes())
	if err != nil {
		return nil, err
	}

	ctl := SortResponseControl{Result: ResultCode(result)}
	if len(packet.Children) > 1 {
		ctl.AttributeType = string(packet.Children[1].Data.Bytes())
	}

	return ctl, nil
}

/*
PersistentSearchControl implements the persistent search request of
draft-ietf-ldapext-psearch.

	PersistentSearch ::= SEQUENCE {
	    changeTypes  INTEGER,
	    changesOnly  BOOLEAN,
	    returnECs    BOOLEAN }
*/
type PersistentSearchControl struct {
	// ChangeTypes is a bit mask over add (1), delete (2), modify (4)
	// and modDN (8); it must fall within 1..15.
	ChangeTypes int
	ChangesOnly bool
	ReturnECs   bool
}

// Persistent search change type bits.
const (
	ChangeTypeAdd    = 1
	ChangeTypeDelete = 2
	ChangeTypeModify = 4
	ChangeTypeModDN  = 8
)

/*
ControlOID returns the OID under which the control travels.
*/
func (r PersistentSearchControl) ControlOID() string { return ControlOIDPersistentSearch }

/*
Encode returns the inner controlValue octets.
*/
func (r PersistentSearchControl) Encode() ([]byte, error) {
	if r.ChangeTypes < 1 || r.ChangeTypes > 15 {
		return nil, errorTxt("Persistent search changeTypes must fall within 1..15")
	}

	packet := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, `persistentSearch`)
	packet.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, int64(r.ChangeTypes), `changeTypes`))
	packet.AppendChild(ber.NewBoolean(ber.ClassUniversal, ber.TypePrimitive, ber.TagBoolean, r.ChangesOnly, `changesOnly`))
	packet.AppendChild(ber.NewBoolean(ber.ClassUniversal, ber.TypePrimitive, ber.TagBoolean, r.ReturnECs, `returnECs`))
	return packet.Bytes(), nil
}

func decodePersistentSearch(value []byte) (ControlValue, error) {
	packet, err := ber.DecodePacketErr(value)
	if err != nil {
		return nil, err
	}

	if len(packet.Children) != 3 {
		return nil, errorTxt("Persistent search control value requires three members")
	}

	changeTypes, err := ber.ParseInt64(packet.Children[0].Data.Bytes())
	if err != nil {
		return nil, err
	}
	if changeTypes < 1 || changeTypes > 15 {
		return nil, errorTxt("Persistent search changeTypes must fall within 1..15")
	}

	boolAt := func(i int) (bool, error) {
		content := packet.Children[i].Data.Bytes()
		if len(content) != 1 {
			return false, errorTxt("BOOLEAN value must be exactly one octet")
		}
		return content[0] != 0x00, nil
	}

	changesOnly, err := boolAt(1)
	if err != nil {
		return nil, err
	}
	returnECs, err := boolAt(2)
	if err != nil {
		return nil, err
	}

	return PersistentSearchControl{
		ChangeTypes: int(changeTypes),
		ChangesOnly: changesOnly,
		ReturnECs:   returnECs,
	}, nil
}

/*
EntryChangeControl implements the entry change notification of
draft-ietf-ldapext-psearch, returned alongside persistent search
results.

	EntryChangeNotification ::= SEQUENCE {
	    changeType    ENUMERATED { add (1), delete (2),
	                               modify (4), modDN (8) },
	    previousDN    LDAPDN OPTIONAL,
	    changeNumber  INTEGER OPTIONAL }
*/
type EntryChangeControl struct {
	ChangeType      int
	PreviousDN      string
	HasPreviousDN   bool
	ChangeNumber    int64
	HasChangeNumber bool
}

/*
ControlOID returns the OID under which the control travels.
*/
func (r EntryChangeControl) ControlOID() string { return ControlOIDEntryChange }

/*
Encode returns the inner controlValue octets.
*/
func (r EntryChangeControl) Encode() ([]byte, error) {
	switch r.ChangeType {
	case ChangeTypeAdd, ChangeTypeDelete, ChangeTypeModify, ChangeTypeModDN:
	default:
		return nil, errorTxt("Entry change changeType must be add, delete, modify or modDN")
	}

	packet := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, `entryChangeNotification`)
	packet.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagEnumerated, int64(r.ChangeType), `changeType`))
	if r.HasPreviousDN {
		packet.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, r.PreviousDN, `previousDN`))
	}
	if r.HasChangeNumber {
		packet.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, r.ChangeNumber, `changeNumber`))
	}
	return packet.Bytes(), nil
}

func decodeEntryChange(value []byte) (ControlValue, error) {
	packet, err := ber.DecodePacketErr(value)
	if err != nil {
		return nil, err
	}

	if len(packet.Children) == 0 || len(packet.Children) > 3 {
		return nil, errorTxt("Entry change control value requires one to three members")
	}

	changeType, err := ber.ParseInt64(packet.Children[0].Data.Bytes())
	if err != nil {
		return nil, err
	}

	ctl := EntryChangeControl{ChangeType: int(changeType)}
	switch ctl.ChangeType {
	case ChangeTypeAdd, ChangeTypeDelete, ChangeTypeModify, ChangeTypeModDN:
	default:
		return nil, errorTxt("Entry change changeType must be add, delete, modify or modDN")
	}

	for _, member := range packet.Children[1:] {
		switch member.Tag {
		case ber.TagOctetString:
			ctl.PreviousDN = string(member.Data.Bytes())
			ctl.HasPreviousDN = true
		case ber.TagInteger:
			var n int64
			if n, err = ber.ParseInt64(member.Data.Bytes()); err != nil {
				return nil, err
			}
			ctl.ChangeNumber = n
			ctl.HasChangeNumber = true
		default:
			return nil, errorTxt("Unexpected member in entry change control value")
		}
	}

	return ctl, nil
}
