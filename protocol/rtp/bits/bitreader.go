/*
DESCRIPTION
  bitreader.go provides a bit reader for extracting sequential bit fields and
  big-endian integers from an io.ByteReader data source.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package bits provides a bit reader for extracting fields, most significant
// bit first, from a byte source. Multi-byte fields read on byte boundaries are
// therefore big-endian.
package bits

import (
	"io"
)

// maxBits is the widest field ReadBits can return.
const maxBits = 64

// BitReader is a bit reader that provides methods for reading bits from an
// io.ByteReader source.
type BitReader struct {
	r    io.ByteReader
	n    uint64
	bits int
}

// NewBitReader returns a new BitReader reading from r. A *bytes.Reader is
// the usual source when decoding an in-memory packet.
func NewBitReader(r io.ByteReader) *BitReader {
	return &BitReader{r: r}
}

// ReadBits reads n bits from the source and returns them the least-significant
// part of a uint64.
// For example, with a source as []byte{0x8f,0xe3} (1000 1111, 1110 0011), we
// would get the following results for consequtive reads with n values:
// n = 4, res = 0x8 (1000)
// n = 2, res = 0x3 (0011)
// n = 4, res = 0xf (1111)
// n = 6, res = 0x23 (0010 0011)
//
// If the source is exhausted before n bits are available io.ErrUnexpectedEOF
// is returned.
func (br *BitReader) ReadBits(n int) (uint64, error) {
	if n < 0 || n > maxBits {
		panic("bits: invalid field width")
	}
	var hi uint64
	if n > maxBits-8 {
		// Buffering whole bytes for a wide field would overflow br.n, so take
		// the leading bits separately.
		var err error
		hi, err = br.ReadBits(n - 32)
		if err != nil {
			return 0, err
		}
		n = 32
	}

	for n > br.bits {
		b, err := br.r.ReadByte()
		if err == io.EOF {
			return 0, io.ErrUnexpectedEOF
		}
		if err != nil {
			return 0, err
		}
		br.n <<= 8
		br.n |= uint64(b)
		br.bits += 8
	}

	// br.n looks like this (assuming that br.bits = 14 and n = 6):
	// Bit: 111111
	//      5432109876543210
	//
	//         (6 bits, the desired output)
	//        |-----|
	//        V     V
	//      0101101101001110
	//        ^            ^
	//        |------------|
	//           br.bits (num valid bits)
	//
	// This the next line right shifts the desired bits into the
	// least-significant places and masks off anything above.
	r := (br.n >> uint(br.bits-n)) & ((1 << uint(n)) - 1)
	br.bits -= n
	return hi<<uint(n) | r, nil
}

// ReadBool reads a single bit and reports whether it is set.
func (br *BitReader) ReadBool() (bool, error) {
	b, err := br.ReadBits(1)
	return b == 1, err
}

// ReadUint16 reads a 16 bit field.
func (br *BitReader) ReadUint16() (uint16, error) {
	v, err := br.ReadBits(16)
	return uint16(v), err
}

// ReadUint32 reads a 32 bit field.
func (br *BitReader) ReadUint32() (uint32, error) {
	v, err := br.ReadBits(32)
	return uint32(v), err
}
