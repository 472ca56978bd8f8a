package mavlink

import "bytes"

const (
	ParamIDLen    = 16
	ParamValueLen = 128
)

// ParamID - param_id wire field, NUL padded, not terminated when all 16 bytes are used
type ParamID [ParamIDLen]byte

func NewParamID(s string) (id ParamID) {
	copy(id[:], s)
	return
}

func (p ParamID) String() string {
	return cstring(p[:])
}

// ParamValue - param_value wire field of PARAM_EXT messages. Numeric values are
// stored as little endian bytes at the start of the field.
type ParamValue [ParamValueLen]byte

func NewParamValue(b []byte) (v ParamValue) {
	copy(v[:], b)
	return
}

// Bytes returns copy of all 128 bytes
func (p ParamValue) Bytes() []byte {
	return append([]byte(nil), p[:]...)
}

func (p ParamValue) String() string {
	return cstring(p[:])
}

func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

// putString copies s into fixed size field, extra bytes are dropped
func putString(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}
