package ldapcodec

/*
result.go defines the resultCode enumeration of RFC 4511 § 4.1.9 and
the LDAPResult construct shared by every response operation.
*/

/*
ResultCode implements the resultCode ENUMERATED of RFC 4511 § 4.1.9.
Values 0 through 90 carry the names assigned by the RFC; the reserved
range 91 through 125 is accepted but unnamed.
*/
type ResultCode int

const (
	ResultSuccess                      ResultCode = 0
	ResultOperationsError              ResultCode = 1
	ResultProtocolError                ResultCode = 2
	ResultTimeLimitExceeded            ResultCode = 3
	ResultSizeLimitExceeded            ResultCode = 4
	ResultCompareFalse                 ResultCode = 5
	ResultCompareTrue                  ResultCode = 6
	ResultAuthMethodNotSupported       ResultCode = 7
	ResultStrongerAuthRequired         ResultCode = 8
	ResultReferral                     ResultCode = 10
	ResultAdminLimitExceeded           ResultCode = 11
	ResultUnavailableCriticalExtension ResultCode = 12
	ResultConfidentialityRequired      ResultCode = 13
	ResultSaslBindInProgress           ResultCode = 14
	ResultNoSuchAttribute              ResultCode = 16
	ResultUndefinedAttributeType       ResultCode = 17
	ResultInappropriateMatching        ResultCode = 18
	ResultConstraintViolation          ResultCode = 19
	ResultAttributeOrValueExists       ResultCode = 20
	ResultInvalidAttributeSyntax       ResultCode = 21
	ResultNoSuchObject                 ResultCode = 32
	ResultAliasProblem                 ResultCode = 33
	ResultInvalidDNSyntax              ResultCode = 34
	ResultAliasDereferencingProblem    ResultCode = 36
	ResultInappropriateAuthentication  ResultCode = 48
	ResultInvalidCredentials           ResultCode = 49
	ResultInsufficientAccessRights     ResultCode = 50
	ResultBusy                         ResultCode = 51
	ResultUnavailable                  ResultCode = 52
	ResultUnwillingToPerform           ResultCode = 53
	ResultLoopDetect                   ResultCode = 54
	ResultNamingViolation              ResultCode = 64
	ResultObjectClassViolation         ResultCode = 65
	ResultNotAllowedOnNonLeaf          ResultCode = 66
	ResultNotAllowedOnRDN              ResultCode = 67
	ResultEntryAlreadyExists           ResultCode = 68
	ResultObjectClassModsProhibited    ResultCode = 69
	ResultAffectsMultipleDSAs          ResultCode = 71
	ResultOther                        ResultCode = 80
)

var resultCodeNames map[ResultCode]string = map[ResultCode]string{
	ResultSuccess:                      `success`,
	ResultOperationsError:              `operationsError`,
	ResultProtocolError:                `protocolError`,
	ResultTimeLimitExceeded:            `timeLimitExceeded`,
	ResultSizeLimitExceeded:            `sizeLimitExceeded`,
	ResultCompareFalse:                 `compareFalse`,
	ResultCompareTrue:                  `compareTrue`,
	ResultAuthMethodNotSupported:       `authMethodNotSupported`,
	ResultStrongerAuthRequired:         `strongerAuthRequired`,
	ResultReferral:                     `referral`,
	ResultAdminLimitExceeded:           `adminLimitExceeded`,
	ResultUnavailableCriticalExtension: `unavailableCriticalExtension`,
	ResultConfidentialityRequired:      `confidentialityRequired`,
	ResultSaslBindInProgress:           `saslBindInProgress`,
	ResultNoSuchAttribute:              `noSuchAttribute`,
	ResultUndefinedAttributeType:       `undefinedAttributeType`,
	ResultInappropriateMatching:        `inappropriateMatching`,
	ResultConstraintViolation:          `constraintViolation`,
	ResultAttributeOrValueExists:       `attributeOrValueExists`,
	ResultInvalidAttributeSyntax:       `invalidAttributeSyntax`,
	ResultNoSuchObject:                 `noSuchObject`,
	ResultAliasProblem:                 `aliasProblem`,
	ResultInvalidDNSyntax:              `invalidDNSyntax`,
	ResultAliasDereferencingProblem:    `aliasDereferencingProblem`,
	ResultInappropriateAuthentication:  `inappropriateAuthentication`,
	ResultInvalidCredentials:           `invalidCredentials`,
	ResultInsufficientAccessRights:     `insufficientAccessRights`,
	ResultBusy:                         `busy`,
	ResultUnavailable:                  `unavailable`,
	ResultUnwillingToPerform:           `unwillingToPerform`,
	ResultLoopDetect:                   `loopDetect`,
	ResultNamingViolation:              `namingViolation`,
	ResultObjectClassViolation:         `objectClassViolation`,
	ResultNotAllowedOnNonLeaf:          `notAllowedOnNonLeaf`,
	ResultNotAllowedOnRDN:              `notAllowedOnRDN`,
	ResultEntryAlreadyExists:           `entryAlreadyExists`,
	ResultObjectClassModsProhibited:    `objectClassModsProhibited`,
	ResultAffectsMultipleDSAs:          `affectsMultipleDSAs`,
	ResultOther:                        `other`,
}

/*
String returns the string representation of the receiver instance.
Reserved and unassigned codes render as their decimal value.
*/
func (r ResultCode) String() (s string) {
	var found bool
	if s, found = resultCodeNames[r]; !found {
		s = itoa(int(r))
	}

	return
}

/*
Valid returns a Boolean value indicative of whether the receiver falls
within the range RFC 4511 permits on the wire, including the reserved
range 91 through 125.
*/
func (r ResultCode) Valid() bool {
	return 0 <= r && r <= 125
}

/*
IsError returns a Boolean value indicative of whether the receiver
denotes a failure outcome. Success, compareFalse, compareTrue, referral
and saslBindInProgress are the non-error codes.
*/
func (r ResultCode) IsError() bool {
	switch r {
	case ResultSuccess, ResultCompareFalse, ResultCompareTrue,
		ResultReferral, ResultSaslBindInProgress:
		return false
	}
	return true
}

/*
LdapResult implements the LDAPResult construct of RFC 4511 § 4.1.9,
embedded within every response operation.

	LDAPResult ::= SEQUENCE {
	    resultCode         ENUMERATED { ... },
	    matchedDN          LDAPDN,
	    diagnosticMessage  LDAPString,
	    referral           [3] Referral OPTIONAL }
*/
type LdapResult struct {
	Code       ResultCode
	MatchedDN  string
	Diagnostic string

	// Referral, when non-nil, must hold at least one URI.
	Referral []string
}

/*
Result returns a pointer to the receiver's embedded [LdapResult],
allowing uniform access across the response operations.
*/
func (r *LdapResult) Result() *LdapResult { return r }

/*
SetDiagnostic assigns the diagnostic message, rejecting strings that
carry control characters outside the printable range.
*/
func (r *LdapResult) SetDiagnostic(msg string) (err error) {
	if !isPrintableDiagnostic(msg) {
		err = errorTxt("Diagnostic message contains non-printable characters")
		return
	}
	r.Diagnostic = msg
	return
}
