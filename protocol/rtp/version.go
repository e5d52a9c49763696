/*
NAME
  version.go

DESCRIPTION
  version.go provides classification of the RTP version discriminant.

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

import "fmt"

// Version identifies the framing generation indicated by the 2-bit version
// field of a packet.
type Version uint8

// Known versions.
const (
	VAT      Version = 0 // Framing used by the vat audio tool, predating RTP.
	RTPDraft Version = 1 // First draft RTP framing.
	RTP2     Version = 2 // RTP as defined by RFC 3550.
)

// reservedVersion is the only 2-bit value with no assigned meaning.
const reservedVersion = 3

// String implements fmt.Stringer.
func (v Version) String() string {
	switch v {
	case VAT:
		return "vat"
	case RTPDraft:
		return "rtp-draft"
	case RTP2:
		return "rtp2"
	default:
		return fmt.Sprintf("version(%d)", uint8(v))
	}
}

// VersionError is returned by ParseVersion when a raw value does not name a
// known Version.
type VersionError struct {
	Value    uint8 // The raw value that was rejected.
	Reserved bool  // True if Value is a valid 2-bit value held in reserve.
}

// Error implements the error interface.
func (e *VersionError) Error() string {
	if e.Reserved {
		return fmt.Sprintf("reserved version: %d", e.Value)
	}
	return fmt.Sprintf("invalid version: %d", e.Value)
}

// ParseVersion classifies the raw version value v. Values outside the 2-bit
// range and the reserved value yield a *VersionError.
func ParseVersion(v uint8) (Version, error) {
	switch {
	case v == reservedVersion:
		return 0, &VersionError{Value: v, Reserved: true}
	case v > reservedVersion:
		return 0, &VersionError{Value: v}
	default:
		return Version(v), nil
	}
}
