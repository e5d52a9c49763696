/*
NAME
  rtp.go

DESCRIPTION
  rtp.go provides the data structure describing a decoded RTP packet header.

  See https://tools.ietf.org/html/rfc3550 for the rtp standard.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package rtp provides a data structure intended to encapsulate the fixed
// header of an rtp packet and a decoder to obtain it from raw bytes.
package rtp

import (
	"fmt"
	"strings"
)

const (
	fixedHeadSize = 12 // Size of the fixed part of an rtp header.
	csrcSize      = 4  // Size of each CSRC entry.
)

// SSRC is a synchronisation source identifier.
type SSRC uint32

// CSRC is a contributing source identifier.
type CSRC uint32

// Header provides the fields of a decoded rtp packet header.
type Header struct {
	Version        Version // Version (currently only RTP2 is decoded).
	HasPadding     bool    // Padding indicator.
	HasExtension   bool    // Extension header indicator.
	HasMarker      bool    // Marker bit.
	PayloadType    uint8   // Payload type (7 bits).
	SequenceNumber uint16  // Sequence number.
	Timestamp      uint32  // Timestamp.
	SSRC           SSRC    // Synchronisation source identifier.
	CSRCs          []CSRC  // Contributing source identifiers in wire order.
}

// Len returns the number of bytes occupied by the header on the wire.
func (h Header) Len() int {
	return fixedHeadSize + csrcSize*len(h.CSRCs)
}

// String returns a single line description of the header.
func (h Header) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s pt=%d seq=%d ts=%d ssrc=%#010x", h.Version, h.PayloadType, h.SequenceNumber, h.Timestamp, uint32(h.SSRC))
	if len(h.CSRCs) != 0 {
		sb.WriteString(" csrcs=[")
		for i, c := range h.CSRCs {
			if i != 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%#010x", uint32(c))
		}
		sb.WriteByte(']')
	}
	for _, f := range []struct {
		set  bool
		name string
	}{
		{h.HasPadding, "padding"},
		{h.HasExtension, "extension"},
		{h.HasMarker, "marker"},
	} {
		if f.set {
			sb.WriteString(" " + f.name)
		}
	}
	return sb.String()
}
