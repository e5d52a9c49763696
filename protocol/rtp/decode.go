/*
NAME
  decode.go

DESCRIPTION
  decode.go provides functionality for decoding RTP packet headers.

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

	"github.com/pkg/errors"

	"github.com/ausocean/rtphdr/protocol/rtp/bits"
)

// Errors returned by Decode. Failures of version classification are returned
// as a wrapped *VersionError. Further kinds may be added, so callers
// classifying errors should keep a default case.
var (
	ErrUnexpectedEOF      = errors.New("unexpected EOF")
	ErrUnsupportedVersion = errors.New("unsupported version")
)

// Decode decodes the rtp header at the start of buf. Fields are read in wire
// order and a short buffer is reported as ErrUnexpectedEOF at the first field
// that cannot be read. Bytes following the last CSRC are not inspected.
//
// Byte 0 carries, from the least significant bit, the 2-bit version, the
// padding flag, the extension flag and the 4-bit CSRC count. Byte 1 carries the
// marker flag in bit 0 and the payload type in bits 1 to 7.
func Decode(buf []byte) (Header, error) {
	r := newFieldReader(bits.NewBitReader(bytes.NewReader(buf)))

	csrcCount := r.readBits(4, "CSRC count")
	hasExt := r.readFlag("extension flag")
	hasPad := r.readFlag("padding flag")
	rawVer := uint8(r.readBits(2, "version"))
	if r.err() != nil {
		return Header{}, r.err()
	}

	v, err := ParseVersion(rawVer)
	if err != nil {
		return Header{}, errors.Wrap(err, "could not parse version")
	}
	if v != RTP2 {
		return Header{}, ErrUnsupportedVersion
	}

	h := Header{
		Version:        v,
		HasPadding:     hasPad,
		HasExtension:   hasExt,
		PayloadType:    uint8(r.readBits(7, "payload type")),
		HasMarker:      r.readFlag("marker"),
		SequenceNumber: r.readUint16("sequence number"),
		Timestamp:      r.readUint32("timestamp"),
		SSRC:           SSRC(r.readUint32("SSRC")),
	}

	csrcs := make([]CSRC, 0, csrcCount)
	for i := 0; i < int(csrcCount) && r.err() == nil; i++ {
		csrcs = append(csrcs, CSRC(r.readUint32("CSRC")))
	}
	if r.err() != nil {
		return Header{}, r.err()
	}
	h.CSRCs = csrcs

	return h, nil
}

// fieldReader reads successive header fields from a bits.BitReader. Once a
// read fails all further reads are skipped and err reports the first failure.
type fieldReader struct {
	br *bits.BitReader
	e  error
}

func newFieldReader(br *bits.BitReader) *fieldReader {
	return &fieldReader{br: br}
}

// readBits reads an n bit field named name.
func (r *fieldReader) readBits(n int, name string) uint64 {
	if r.e != nil {
		return 0
	}
	b, err := r.br.ReadBits(n)
	r.check(err, name)
	return b
}

// readFlag reads a single bit field named name.
func (r *fieldReader) readFlag(name string) bool {
	if r.e != nil {
		return false
	}
	b, err := r.br.ReadBool()
	r.check(err, name)
	return b
}

// readUint16 reads a 16 bit field named name.
func (r *fieldReader) readUint16(name string) uint16 {
	if r.e != nil {
		return 0
	}
	v, err := r.br.ReadUint16()
	r.check(err, name)
	return v
}

// readUint32 reads a 32 bit field named name.
func (r *fieldReader) readUint32(name string) uint32 {
	if r.e != nil {
		return 0
	}
	v, err := r.br.ReadUint32()
	r.check(err, name)
	return v
}

// check records a failed read of the field named name. Any read failure from
// an in-memory source means the buffer ran out.
func (r *fieldReader) check(err error, name string) {
	if err != nil {
		r.e = errors.Wrapf(ErrUnexpectedEOF, "could not read %s", name)
	}
}

func (r *fieldReader) err() error {
	return r.e
}
