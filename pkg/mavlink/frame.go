package mavlink

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/sigurn/crc16"
)

var (
	ErrFrameTooLarge   = errors.New("mavlink: frame too large")
	ErrPayloadTooLarge = errors.New("mavlink: payload too large")
	ErrUnknownMessage  = errors.New("mavlink: unknown message")
)

var table = crc16.MakeTable(crc16.CRC16_MCRF4XX)

// Frame - one MAVLink packet with raw payload
type Frame struct {
	Version  byte // 1 or 2
	Incompat byte
	Compat   byte
	Seq      byte
	SysID    byte
	CompID   byte
	MsgID    uint32
	Payload  []byte

	Signature []byte
}

func (f *Frame) String() string {
	return fmt.Sprintf("v%d seq=%d sys=%d comp=%d msg=%d len=%d", f.Version, f.Seq, f.SysID, f.CompID, f.MsgID, len(f.Payload))
}

// NewFrame packs message into MAVLink v2 frame
func NewFrame(sysID, compID, seq byte, msg Message) *Frame {
	return &Frame{
		Version: 2,
		Seq:     seq,
		SysID:   sysID,
		CompID:  compID,
		MsgID:   msg.MsgID(),
		Payload: msg.Marshal(),
	}
}

// Encode - serialize frame to bytes, v2 payload is truncated by trailing zeros
func Encode(f *Frame) ([]byte, error) {
	extra, ok := crcExtras[f.MsgID]
	if !ok {
		return nil, ErrUnknownMessage
	}

	payload := f.Payload

	var b []byte

	if f.Version == 1 {
		if f.MsgID > 0xFF || len(payload) > maxPayloadLen {
			return nil, ErrPayloadTooLarge
		}

		b = make([]byte, 0, headerLenV1+len(payload)+checksumLen)
		b = append(b, MagicV1, byte(len(payload)), f.Seq, f.SysID, f.CompID, byte(f.MsgID))
	} else {
		// https://mavlink.io/en/guide/serialization.html#payload_truncation
		for len(payload) > 1 && payload[len(payload)-1] == 0 {
			payload = payload[:len(payload)-1]
		}
		if len(payload) > maxPayloadLen {
			return nil, ErrPayloadTooLarge
		}

		b = make([]byte, 0, headerLenV2+len(payload)+checksumLen+len(f.Signature))
		b = append(b,
			MagicV2, byte(len(payload)), f.Incompat, f.Compat, f.Seq, f.SysID, f.CompID,
			byte(f.MsgID), byte(f.MsgID>>8), byte(f.MsgID>>16),
		)
	}

	b = append(b, payload...)
	b = binary.LittleEndian.AppendUint16(b, checksum(b[1:], extra))

	if f.Version != 1 && f.Incompat&IncompatFlagSigned != 0 {
		b = append(b, f.Signature...)
	}

	if len(b) > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}

	return b, nil
}

// checksum - X.25 CRC over header (without magic) and payload plus CRC_EXTRA
func checksum(b []byte, extra byte) uint16 {
	crc := crc16.Init(table)
	crc = crc16.Update(crc, b, table)
	crc = crc16.Update(crc, []byte{extra}, table)
	return crc16.Complete(crc, table)
}
