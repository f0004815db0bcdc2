package ldapcodec

import (
	"encoding/hex"
	"errors"
	"sort"
	"strconv"
	"strings"
)

var (
	mkerr   func(string) error                   = errors.New
	fmtInt  func(int64, int) string              = strconv.FormatInt
	fmtUint func(uint64, int) string             = strconv.FormatUint
	atoi    func(string) (int, error)            = strconv.Atoi
	itoa    func(int) string                     = strconv.Itoa
	cntns   func(string, string) bool            = strings.Contains
	trimS   func(string) string                  = strings.TrimSpace
	trimPfx func(string, string) string          = strings.TrimPrefix
	trimSfx func(string, string) string          = strings.TrimSuffix
	hasPfx  func(string, string) bool            = strings.HasPrefix
	hasSfx  func(string, string) bool            = strings.HasSuffix
	join    func([]string, string) string        = strings.Join
	split   func(string, string) []string        = strings.Split
	splitN  func(string, string, int) []string   = strings.SplitN
	repAll  func(string, string, string) string  = strings.ReplaceAll
	eqf     func(string, string) bool            = strings.EqualFold
	fields  func(string) []string                = strings.Fields
	stridx  func(string, string) int             = strings.Index
	trim    func(string, string) string          = strings.Trim
	uc      func(string) string                  = strings.ToUpper
	lc      func(string) string                  = strings.ToLower
	hexdec  func(string) ([]byte, error)         = hex.DecodeString
	enchex  func([]byte) string                  = hex.EncodeToString
	srtstr  func([]string)                       = sort.Strings
)

func newStrBuilder() strings.Builder {
	return strings.Builder{}
}

func assertString(x any, min int, name string) (str string, err error) {
	switch tv := x.(type) {
	case []byte:
		str, err = assertString(string(tv), min, name)
	case string:
		if len(tv) < min && min != 0 {
			err = errorBadLength(name, 0)
			break
		}
		str = tv
	default:
		err = errorBadType(name)
	}

	return
}

func strInSlice(r string, slice []string) bool {
	for i := 0; i < len(slice); i++ {
		if r == slice[i] {
			return true
		}
	}
	return false
}
