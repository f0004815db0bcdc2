package ldapcodec

import (
	"bytes"
	"testing"
)

func TestParseTagAndLength(t *testing.T) {
	tal, n, done, err := parseTagAndLength([]byte{0x30, 0x06})
	if err != nil || !done {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}
	if n != 2 || tal.Class != classUniversal || !tal.IsCompound ||
		tal.Tag != tagSequence || tal.Length != 6 {
		t.Errorf("%s failed: %+v (%d)", t.Name(), tal, n)
	}

	// Long form length.
	tal, n, done, err = parseTagAndLength([]byte{0x04, 0x82, 0x01, 0x00})
	if err != nil || !done {
		t.Fatalf("%s failed: %v", t.Name(), err)
	}
	if n != 4 || tal.Length != 256 || tal.IsCompound {
		t.Errorf("%s failed: %+v (%d)", t.Name(), tal, n)
	}

	// Incomplete header: no error, not done.
	_, _, done, err = parseTagAndLength([]byte{0x30})
	if err != nil || done {
		t.Errorf("%s failed: incomplete header mishandled (%v, %v)", t.Name(), done, err)
	}
	_, _, done, err = parseTagAndLength([]byte{0x04, 0x82, 0x01})
	if err != nil || done {
		t.Errorf("%s failed: split long form mishandled (%v, %v)", t.Name(), done, err)
	}

	// Indefinite form.
	if _, _, _, err = parseTagAndLength([]byte{0x30, 0x80}); err == nil {
		t.Errorf("%s failed: indefinite form accepted", t.Name())
	}

	// Length of length past four octets.
	if _, _, _, err = parseTagAndLength([]byte{0x30, 0x85, 1, 1, 1, 1, 1}); err == nil {
		t.Errorf("%s failed: five length octets accepted", t.Name())
	}

	// 32-bit overflow.
	if _, _, _, err = parseTagAndLength([]byte{0x30, 0x84, 0xFF, 0xFF, 0xFF, 0xFF}); err == nil {
		t.Errorf("%s failed: oversized length accepted", t.Name())
	}
}

func TestBerIntegerCodec(t *testing.T) {
	for _, tc := range []struct {
		value int64
		bytes []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7F}},
		{128, []byte{0x00, 0x80}},
		{500, []byte{0x01, 0xF4}},
		{-1, []byte{0xFF}},
		{-129, []byte{0xFF, 0x7F}},
		{1<<31 - 1, []byte{0x7F, 0xFF, 0xFF, 0xFF}},
	} {
		got := berEncodeIntBytes(tc.value)
		if !bytes.Equal(got, tc.bytes) {
			t.Errorf("%s failed: %d encoded as %x, want %x", t.Name(), tc.value, got, tc.bytes)
		}

		back, err := berDecodeInt(tc.bytes)
		if err != nil || back != tc.value {
			t.Errorf("%s failed: %x decoded as %d (%v)", t.Name(), tc.bytes, back, err)
		}
	}

	if _, err := berDecodeInt(nil); err == nil {
		t.Errorf("%s failed: empty integer accepted", t.Name())
	}
	if _, err := berDecodeInt(make([]byte, 9)); err == nil {
		t.Errorf("%s failed: nine octet integer accepted", t.Name())
	}
}

func TestBerBuffer_ReverseEmission(t *testing.T) {
	buf := NewBerBuffer(4)

	start := buf.Len()
	buf.writeOctetString([]byte(`cn`))
	buf.writeInteger(500)
	buf.writeBoolean(true)
	buf.writeSequenceAt(start)

	want := []byte{
		0x30, 0x0B,
		0x01, 0x01, 0xFF,
		0x02, 0x02, 0x01, 0xF4,
		0x04, 0x02, 'c', 'n',
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("%s failed:\nwant %x\ngot  %x", t.Name(), want, buf.Bytes())
	}
}

func TestBerBuffer_GrowthAcrossBoundary(t *testing.T) {
	// Force repeated growth from a deliberately tiny buffer.
	buf := NewBerBuffer(1)
	payload := make([]byte, 1000)
	for i := range payload {
		payload[i] = byte(i)
	}

	start := buf.Len()
	buf.writeOctetString(payload)
	buf.writeSequenceAt(start)

	out := buf.Bytes()
	if out[0] != 0x30 {
		t.Fatalf("%s failed: missing sequence tag", t.Name())
	}
	// 1000 value bytes plus the four octet string header bytes give
	// an outer length of 0x03EC.
	if out[1] != 0x82 || out[2] != 0x03 || out[3] != 0xEC {
		t.Errorf("%s failed: outer length %x %x %x", t.Name(), out[1], out[2], out[3])
	}
	if !bytes.Equal(out[8:], payload) {
		t.Errorf("%s failed: payload corrupted by growth", t.Name())
	}
}

func TestBerBuffer_Reset(t *testing.T) {
	buf := NewBerBuffer()
	buf.writeInteger(7)
	if buf.Len() == 0 {
		t.Fatalf("%s failed: nothing written", t.Name())
	}

	buf.Reset()
	if buf.Len() != 0 || len(buf.Bytes()) != 0 {
		t.Errorf("%s failed: reset left content", t.Name())
	}
}

func TestSizeTagAndLength(t *testing.T) {
	for _, tc := range []struct {
		length int
		size   int
	}{
		{0, 2},
		{127, 2},
		{128, 3},
		{255, 3},
		{256, 4},
		{65535, 4},
		{65536, 5},
	} {
		if got := sizeTagAndLength(tc.length); got != tc.size {
			t.Errorf("%s failed: header size for %d is %d, want %d",
				t.Name(), tc.length, got, tc.size)
		}
	}
}

func TestTagAndLength_Identifier(t *testing.T) {
	tal := TagAndLength{Class: classApplication, IsCompound: true, Tag: applicationBindRequest}
	if tal.Identifier() != idBindRequest {
		t.Errorf("%s failed: identifier 0x%X", t.Name(), tal.Identifier())
	}

	tal = TagAndLength{Class: classApplication, Tag: applicationDelRequest}
	if tal.Identifier() != idDelRequest {
		t.Errorf("%s failed: identifier 0x%X", t.Name(), tal.Identifier())
	}
}
