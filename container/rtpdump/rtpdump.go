/*
NAME
  rtpdump.go

DESCRIPTION
  rtpdump.go provides a reader for packet captures stored in the rtpdump
  (rtpplay1.0) file format.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package rtpdump provides a Reader for the rtpdump file format as written
// by rtpdump and read by rtpplay from the rtptools suite.
//
// A file begins with the text line "#!rtpplay1.0 address/port\n" followed by
// a 16 byte binary header. Each captured packet is then stored as a record
// with an 8 byte header of record length, original packet length and
// millisecond offset from the start of the capture, followed by the packet
// bytes. All binary fields are big-endian.
package rtpdump

import (
	"bufio"
	"encoding/binary"
	"io"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	magic          = "#!rtpplay1.0 "
	maxPreambleLen = 256 // Longest preamble line we will accept.
	fileHeadSize   = 16
	recHeadSize    = 8
)

// Errors describing malformed input.
var (
	ErrBadPreamble = errors.New("bad rtpdump preamble")
	ErrBadRecord   = errors.New("bad rtpdump record")
)

// FileHeader describes the preamble and binary header of an rtpdump file.
type FileHeader struct {
	Address    string     // Destination address given in the preamble line.
	Port       int        // Destination port given in the preamble line.
	Start      time.Time  // Time the capture started.
	Source     netip.Addr // Source address the capture was made from.
	SourcePort uint16     // Source port the capture was made from.
}

// Packet is a single record of an rtpdump file.
type Packet struct {
	Offset  time.Duration // Offset from the start of the capture.
	OrigLen int           // Length of the packet as received, 0 for RTCP.
	Data    []byte        // Captured packet bytes.
}

// RTCP returns true if the record holds an RTCP packet.
func (p *Packet) RTCP() bool { return p.OrigLen == 0 }

// Reader reads records from an rtpdump file.
type Reader struct {
	r      *bufio.Reader
	header FileHeader
	n      int
}

// NewReader returns a new Reader reading from r. The preamble and file header
// are read and checked before returning.
func NewReader(r io.Reader) (*Reader, error) {
	rd := &Reader{r: bufio.NewReader(r)}
	err := rd.readPreamble()
	if err != nil {
		return nil, err
	}
	err = rd.readFileHeader()
	if err != nil {
		return nil, err
	}
	return rd, nil
}

// Header returns the file header read by NewReader.
func (r *Reader) Header() FileHeader { return r.header }

// Count returns the number of records read so far.
func (r *Reader) Count() int { return r.n }

// Next returns the next record. io.EOF is returned once all records have been
// read, and a wrapped io.ErrUnexpectedEOF if the file ends part way through a
// record.
func (r *Reader) Next() (Packet, error) {
	var head [recHeadSize]byte
	_, err := io.ReadFull(r.r, head[:])
	switch err {
	case nil:
	case io.EOF:
		return Packet{}, io.EOF
	case io.ErrUnexpectedEOF:
		return Packet{}, errors.Wrapf(err, "could not read header of record %d", r.n)
	default:
		return Packet{}, errors.Wrap(err, "could not read record header")
	}

	length := int(binary.BigEndian.Uint16(head[0:]))
	if length < recHeadSize {
		return Packet{}, errors.Wrapf(ErrBadRecord, "record %d has length %d", r.n, length)
	}

	p := Packet{
		OrigLen: int(binary.BigEndian.Uint16(head[2:])),
		Offset:  time.Duration(binary.BigEndian.Uint32(head[4:])) * time.Millisecond,
		Data:    make([]byte, length-recHeadSize),
	}
	_, err = io.ReadFull(r.r, p.Data)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		return Packet{}, errors.Wrapf(err, "could not read data of record %d", r.n)
	}
	r.n++
	return p, nil
}

// readPreamble reads and parses the "#!rtpplay1.0 address/port" line.
func (r *Reader) readPreamble() error {
	var line []byte
	for {
		b, err := r.r.ReadByte()
		if err != nil {
			return errors.Wrap(ErrBadPreamble, "preamble line not terminated")
		}
		if b == '\n' {
			break
		}
		if len(line) == maxPreambleLen {
			return errors.Wrap(ErrBadPreamble, "preamble line too long")
		}
		line = append(line, b)
	}

	s := strings.TrimSuffix(string(line), "\r")
	if !strings.HasPrefix(s, magic) {
		return errors.Wrap(ErrBadPreamble, "missing rtpplay1.0 identifier")
	}
	addr, port, ok := strings.Cut(strings.TrimSpace(s[len(magic):]), "/")
	if !ok || addr == "" {
		return errors.Wrapf(ErrBadPreamble, "bad address %q", s[len(magic):])
	}
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return errors.Wrapf(ErrBadPreamble, "bad port %q", port)
	}
	r.header.Address = addr
	r.header.Port = int(p)
	return nil
}

// readFileHeader reads the binary header following the preamble.
func (r *Reader) readFileHeader() error {
	var buf [fileHeadSize]byte
	_, err := io.ReadFull(r.r, buf[:])
	if err != nil {
		return errors.Wrapf(ErrBadPreamble, "could not read file header: %v", err)
	}
	sec := binary.BigEndian.Uint32(buf[0:])
	usec := binary.BigEndian.Uint32(buf[4:])
	r.header.Start = time.Unix(int64(sec), int64(usec)*int64(time.Microsecond)).UTC()
	r.header.Source = netip.AddrFrom4([4]byte(buf[8:12]))
	r.header.SourcePort = binary.BigEndian.Uint16(buf[12:])
	return nil
}
