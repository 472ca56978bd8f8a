package mavlink

import (
	"encoding/binary"
)

// Parser - restartable stream decoder. Bytes from Write are kept until they form
// a complete frame, so one datagram may carry a part of frame or many frames.
type Parser struct {
	buf []byte

	// Dropped - count of bytes discarded during resync
	Dropped int
}

func (p *Parser) Write(b []byte) (int, error) {
	p.buf = append(p.buf, b...)
	return len(b), nil
}

// Buffered returns number of bytes waiting for the rest of frame
func (p *Parser) Buffered() int {
	return len(p.buf)
}

func (p *Parser) Reset() {
	p.buf = p.buf[:0]
}

// Next returns next valid frame from buffered bytes. A bad magic or checksum
// drops only the first byte and parsing continues from the next one.
func (p *Parser) Next() (*Frame, bool) {
	for len(p.buf) > 0 {
		var f *Frame
		var n int

		switch p.buf[0] {
		case MagicV2:
			f, n = parseV2(p.buf)
		case MagicV1:
			f, n = parseV1(p.buf)
		default:
			p.skip()
			continue
		}

		if n == 0 {
			return nil, false // need more data
		}

		if f == nil {
			p.skip()
			continue
		}

		p.buf = p.buf[n:]
		return f, true
	}

	// free memory of fully consumed buffer
	p.buf = nil
	return nil, false
}

func (p *Parser) skip() {
	p.buf = p.buf[1:]
	p.Dropped++
}

// parseV2 returns n=0 when buffer is too short and f=nil when frame is invalid
func parseV2(b []byte) (f *Frame, n int) {
	if len(b) < headerLenV2 {
		return nil, 0
	}

	size := int(b[1])
	incompat := b[2]
	if incompat&^IncompatFlagSigned != 0 {
		return nil, 1
	}

	n = headerLenV2 + size + checksumLen
	if incompat&IncompatFlagSigned != 0 {
		n += signatureLen
	}
	if len(b) < n {
		return nil, 0
	}

	msgID := uint32(b[7]) | uint32(b[8])<<8 | uint32(b[9])<<16

	end := headerLenV2 + size
	if !valid(b[1:end], msgID, b[end:]) {
		return nil, n
	}

	f = &Frame{
		Version:  2,
		Incompat: incompat,
		Compat:   b[3],
		Seq:      b[4],
		SysID:    b[5],
		CompID:   b[6],
		MsgID:    msgID,
		Payload:  append([]byte(nil), b[headerLenV2:end]...),
	}

	if incompat&IncompatFlagSigned != 0 {
		f.Signature = append([]byte(nil), b[end+checksumLen:n]...)
	}

	return f, n
}

func parseV1(b []byte) (f *Frame, n int) {
	if len(b) < headerLenV1 {
		return nil, 0
	}

	size := int(b[1])
	n = headerLenV1 + size + checksumLen
	if len(b) < n {
		return nil, 0
	}

	msgID := uint32(b[5])

	end := headerLenV1 + size
	if !valid(b[1:end], msgID, b[end:]) {
		return nil, n
	}

	return &Frame{
		Version: 1,
		Seq:     b[2],
		SysID:   b[3],
		CompID:  b[4],
		MsgID:   msgID,
		Payload: append([]byte(nil), b[headerLenV1:end]...),
	}, n
}

func valid(data []byte, msgID uint32, crc []byte) bool {
	extra, ok := crcExtras[msgID]
	if !ok {
		return false
	}
	return checksum(data, extra) == binary.LittleEndian.Uint16(crc)
}
