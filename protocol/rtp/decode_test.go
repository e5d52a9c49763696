/*
NAME
  decode_test.go

DESCRIPTION
  decode_test.go provides testing for behaviour of functionality in decode.go.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package rtp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ausocean/rtphdr/protocol/rtp/bits"
)

// rawHeader returns the wire form of a header with the given first two bytes,
// fixed fields and CSRC list.
func rawHeader(b0, b1 byte, seq uint16, ts, ssrc uint32, csrcs ...uint32) []byte {
	buf := []byte{b0, b1}
	buf = binary.BigEndian.AppendUint16(buf, seq)
	buf = binary.BigEndian.AppendUint32(buf, ts)
	buf = binary.BigEndian.AppendUint32(buf, ssrc)
	for _, c := range csrcs {
		buf = binary.BigEndian.AppendUint32(buf, c)
	}
	return buf
}

// firstByte forms byte 0 of a header.
func firstByte(ver uint8, pad, ext bool, csrcCount int) byte {
	return byte(csrcCount)<<4 | asByte(ext)<<3 | asByte(pad)<<2 | ver&0x3
}

func asByte(b bool) byte {
	if b {
		return 0x01
	}
	return 0x00
}

var equateEmpty = cmpopts.EquateEmpty()

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want Header
	}{
		{
			name: "no csrcs",
			in:   []byte{0x02, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x03},
			want: Header{Version: RTP2, SequenceNumber: 1, Timestamp: 2, SSRC: 3},
		},
		{
			name: "one csrc",
			in:   []byte{0x12, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x03, 0x00, 0x00, 0x00, 0x09},
			want: Header{Version: RTP2, SequenceNumber: 1, Timestamp: 2, SSRC: 3, CSRCs: []CSRC{9}},
		},
		{
			name: "all fields",
			in:   rawHeader(firstByte(2, true, true, 2), 0xff, 0xbeef, 0xdeadbeef, 0xcafef00d, 0x01020304, 0xa0b0c0d0),
			want: Header{
				Version:        RTP2,
				HasPadding:     true,
				HasExtension:   true,
				HasMarker:      true,
				PayloadType:    127,
				SequenceNumber: 0xbeef,
				Timestamp:      0xdeadbeef,
				SSRC:           0xcafef00d,
				CSRCs:          []CSRC{0x01020304, 0xa0b0c0d0},
			},
		},
		{
			name: "payload type uses upper seven bits",
			in:   rawHeader(0x02, 33<<1, 0, 0, 0),
			want: Header{Version: RTP2, PayloadType: 33},
		},
		{
			name: "trailing bytes ignored",
			in:   append(rawHeader(0x12, 0x00, 1, 2, 3, 9), 0xff, 0xee, 0xdd, 0xcc, 0xbb),
			want: Header{Version: RTP2, SequenceNumber: 1, Timestamp: 2, SSRC: 3, CSRCs: []CSRC{9}},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Decode(test.in)
			if err != nil {
				t.Fatalf("did not expect error: %v", err)
			}
			if diff := cmp.Diff(test.want, got, equateEmpty); diff != "" {
				t.Errorf("unexpected header (-want +got):\n%s", diff)
			}
		})
	}
}

// TestDecodeCSRCCounts checks every CSRC count, that a buffer one byte short
// fails and that trailing bytes do not.
func TestDecodeCSRCCounts(t *testing.T) {
	for n := 0; n <= 15; n++ {
		csrcs := make([]uint32, n)
		want := make([]CSRC, n)
		for i := range csrcs {
			csrcs[i] = uint32(0x11111111 * (i + 1))
			want[i] = CSRC(csrcs[i])
		}
		in := rawHeader(firstByte(2, false, false, n), 0, 7, 8, 9, csrcs...)
		if len(in) != 12+4*n {
			t.Fatalf("bad test input length: %d", len(in))
		}

		got, err := Decode(in)
		if err != nil {
			t.Fatalf("did not expect error for count %d: %v", n, err)
		}
		if len(got.CSRCs) != n {
			t.Errorf("unexpected CSRC count. Got: %d Want: %d", len(got.CSRCs), n)
		}
		if !cmp.Equal(got.CSRCs, want, equateEmpty) {
			t.Errorf("unexpected CSRCs for count %d.\nGot: %v\nWant: %v", n, got.CSRCs, want)
		}
		if got.Len() != len(in) {
			t.Errorf("unexpected header length. Got: %d Want: %d", got.Len(), len(in))
		}

		_, err = Decode(in[:len(in)-1])
		if !errors.Is(err, ErrUnexpectedEOF) {
			t.Errorf("expected ErrUnexpectedEOF for truncated count %d, got: %v", n, err)
		}

		_, err = Decode(append(in, 0xff, 0xff, 0xff))
		if err != nil {
			t.Errorf("did not expect error with trailing bytes for count %d: %v", n, err)
		}
	}
}

func TestDecodeShort(t *testing.T) {
	full := rawHeader(0x02, 0x00, 1, 2, 3)
	for l := 0; l < len(full); l++ {
		h, err := Decode(full[:l])
		if !errors.Is(err, ErrUnexpectedEOF) {
			t.Errorf("expected ErrUnexpectedEOF for length %d, got: %v", l, err)
		}
		if !cmp.Equal(h, Header{}) {
			t.Errorf("expected zero header on failure for length %d, got: %v", l, h)
		}
	}
}

func TestDecodeVersion(t *testing.T) {
	tests := []struct {
		ver         uint8
		unsupported bool
		reserved    bool
	}{
		{ver: 0, unsupported: true},
		{ver: 1, unsupported: true},
		{ver: 2},
		{ver: 3, reserved: true},
	}

	for _, test := range tests {
		// Only the first byte is given; version is checked before anything
		// else is read.
		in := []byte{firstByte(test.ver, false, false, 0)}
		_, err := Decode(in)

		switch {
		case test.unsupported:
			if !errors.Is(err, ErrUnsupportedVersion) {
				t.Errorf("expected ErrUnsupportedVersion for version %d, got: %v", test.ver, err)
			}
		case test.reserved:
			var verErr *VersionError
			if !errors.As(err, &verErr) {
				t.Fatalf("expected *VersionError for version %d, got: %v", test.ver, err)
			}
			if !verErr.Reserved || verErr.Value != test.ver {
				t.Errorf("unexpected version error: %+v", verErr)
			}
			if errors.Is(err, ErrUnsupportedVersion) {
				t.Error("version error should not also be ErrUnsupportedVersion")
			}
		default:
			if !errors.Is(err, ErrUnexpectedEOF) {
				t.Errorf("expected ErrUnexpectedEOF after valid version byte, got: %v", err)
			}
		}
	}
}

// TestDecodeFlags checks each flag bit toggles only its own field.
func TestDecodeFlags(t *testing.T) {
	base := rawHeader(0x02, 0x54, 10, 20, 30)
	want, err := Decode(base)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	tests := []struct {
		name string
		idx  int
		mask byte
		set  func(h *Header)
	}{
		{"padding", 0, 0x04, func(h *Header) { h.HasPadding = true }},
		{"extension", 0, 0x08, func(h *Header) { h.HasExtension = true }},
		{"marker", 1, 0x01, func(h *Header) { h.HasMarker = true }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			in := append([]byte(nil), base...)
			in[test.idx] |= test.mask

			got, err := Decode(in)
			if err != nil {
				t.Fatalf("did not expect error: %v", err)
			}
			w := want
			test.set(&w)
			if diff := cmp.Diff(w, got, equateEmpty); diff != "" {
				t.Errorf("unexpected header after setting %s (-want +got):\n%s", test.name, diff)
			}

			in[test.idx] &^= test.mask
			got, err = Decode(in)
			if err != nil {
				t.Fatalf("did not expect error: %v", err)
			}
			if diff := cmp.Diff(want, got, equateEmpty); diff != "" {
				t.Errorf("unexpected header after clearing %s (-want +got):\n%s", test.name, diff)
			}
		})
	}
}

func TestDecodeConcurrent(t *testing.T) {
	const routines = 16

	var wg sync.WaitGroup
	errs := make(chan error, routines)
	for i := 0; i < routines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := rawHeader(firstByte(2, false, false, 1), 0, uint16(i), uint32(i), uint32(i), uint32(i))
			for j := 0; j < 100; j++ {
				h, err := Decode(in)
				if err != nil {
					errs <- err
					return
				}
				if h.SequenceNumber != uint16(i) || h.CSRCs[0] != CSRC(i) {
					errs <- errors.New("decoded header from another routine's input")
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestHeaderString(t *testing.T) {
	h := Header{
		Version:        RTP2,
		HasMarker:      true,
		PayloadType:    96,
		SequenceNumber: 5,
		Timestamp:      90000,
		SSRC:           0x1234,
		CSRCs:          []CSRC{1, 2},
	}
	const want = "rtp2 pt=96 seq=5 ts=90000 ssrc=0x00001234 csrcs=[0x00000001 0x00000002] marker"
	if got := h.String(); got != want {
		t.Errorf("unexpected string.\nGot: %s\nWant: %s", got, want)
	}

	// A decoded Header value formats through String without taking its address.
	got, err := Decode(rawHeader(firstByte(2, false, false, 2), 96<<1|1, 5, 90000, 0x1234, 1, 2))
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if s := fmt.Sprint(got); s != want {
		t.Errorf("unexpected formatted header.\nGot: %s\nWant: %s", s, want)
	}
	if s := fmt.Sprintf("%v", []Header{got}); s != "["+want+"]" {
		t.Errorf("unexpected formatted header slice.\nGot: %s\nWant: [%s]", s, want)
	}
}

// TestFieldReader checks typed field reads and that the first failed read is
// the one reported, with later reads skipped.
func TestFieldReader(t *testing.T) {
	in := []byte{0x80, 0xbe, 0xef, 0xde, 0xad, 0xbe, 0xef, 0x01, 0x02}
	r := newFieldReader(bits.NewBitReader(bytes.NewReader(in)))

	flag := r.readFlag("flag")
	rest := r.readBits(7, "rest")
	u16 := r.readUint16("u16")
	u32 := r.readUint32("u32")
	if r.err() != nil {
		t.Fatalf("did not expect error: %v", r.err())
	}
	if !flag || rest != 0 || u16 != 0xbeef || u32 != 0xdeadbeef {
		t.Errorf("unexpected fields. Got: %v %#x %#x %#x", flag, rest, u16, u32)
	}

	// Two bytes remain, so this read fails and the ones after it are skipped.
	if got := r.readUint32("short"); got != 0 {
		t.Errorf("expected zero value from failed read, got: %#x", got)
	}
	if r.readFlag("after") || r.readUint16("after") != 0 || r.readBits(1, "after") != 0 {
		t.Error("expected reads after a failure to return zero values")
	}

	err := r.err()
	if !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got: %v", err)
	}
	if !strings.Contains(err.Error(), "could not read short") {
		t.Errorf("error does not name first failed field: %v", err)
	}
}
