/*
DESCRIPTION
  decode.go provides the decode loop of rtphdr, which decodes the RTP header
  of every record of an rtpdump file and keeps a tally of the outcomes.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/ausocean/rtphdr/container/rtpdump"
	"github.com/ausocean/rtphdr/protocol/rtp"
)

// summary tallies the results of a decode run.
type summary struct {
	Records     int // Records read, RTP and RTCP.
	RTCP        int // RTCP records skipped.
	Decoded     int // RTP headers decoded.
	EOF         int // Headers that were truncated.
	Unsupported int // Headers of a known but unsupported version.
	Version     int // Headers with a reserved or invalid version.
	Other       int // Failures of any other kind.
}

// add records the outcome of decoding a single header.
func (s *summary) add(err error) {
	var verErr *rtp.VersionError
	switch {
	case err == nil:
		s.Decoded++
	case errors.Is(err, rtp.ErrUnexpectedEOF):
		s.EOF++
	case errors.Is(err, rtp.ErrUnsupportedVersion):
		s.Unsupported++
	case errors.As(err, &verErr):
		s.Version++
	default:
		s.Other++
	}
}

// failed returns the total number of headers that could not be decoded.
func (s summary) failed() int {
	return s.EOF + s.Unsupported + s.Version + s.Other
}

// String implements fmt.Stringer.
func (s summary) String() string {
	return fmt.Sprintf(
		"records=%d rtcp=%d decoded=%d failed=%d (eof=%d unsupported=%d version=%d other=%d)",
		s.Records, s.RTCP, s.Decoded, s.failed(), s.EOF, s.Unsupported, s.Version, s.Other,
	)
}

// run decodes the header of every RTP record read from src, writing one line
// per record to out. Decode failures are logged and tallied; only failures to
// read src or write out end the run early.
func run(c Config, src io.Reader, out io.Writer) (summary, error) {
	var s summary

	r, err := rtpdump.NewReader(src)
	if err != nil {
		return s, errors.Wrap(err, "could not read rtpdump header")
	}
	fh := r.Header()
	c.Logger.Info("reading rtpdump", "address", fh.Address, "port", fh.Port, "start", fh.Start, "source", fh.Source.String())

	for {
		p, err := r.Next()
		if err == io.EOF {
			return s, nil
		}
		if err != nil {
			return s, errors.Wrap(err, "could not read record")
		}
		s.Records++

		if p.RTCP() {
			s.RTCP++
			if c.ShowRTCP {
				_, err = fmt.Fprintf(out, "%10.3f rtcp len=%d\n", p.Offset.Seconds(), len(p.Data))
				if err != nil {
					return s, errors.Wrap(err, "could not write output")
				}
			}
			continue
		}

		h, err := rtp.Decode(p.Data)
		s.add(err)
		if err != nil {
			c.Logger.Warning("could not decode header", "record", r.Count()-1, "offset", p.Offset, "error", err)
			continue
		}
		c.Logger.Debug("decoded header", "record", r.Count()-1, "headerLen", h.Len(), "payloadLen", len(p.Data)-h.Len())

		_, err = fmt.Fprintf(out, "%10.3f %s\n", p.Offset.Seconds(), h.String())
		if err != nil {
			return s, errors.Wrap(err, "could not write output")
		}
	}
}
