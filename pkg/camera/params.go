package camera

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"sync"
)

// ParamType - MAV_PARAM_EXT_TYPE values
type ParamType uint8

const (
	ParamTypeUnknown ParamType = iota
	ParamTypeUint8
	ParamTypeInt8
	ParamTypeUint16
	ParamTypeInt16
	ParamTypeUint32
	ParamTypeInt32
	ParamTypeUint64
	ParamTypeInt64
	ParamTypeReal32
	ParamTypeReal64
	ParamTypeCustom
)

// Size returns width of numeric value in bytes or 0 for custom values
func (t ParamType) Size() int {
	switch t {
	case ParamTypeUint8, ParamTypeInt8:
		return 1
	case ParamTypeUint16, ParamTypeInt16:
		return 2
	case ParamTypeUint32, ParamTypeInt32, ParamTypeReal32:
		return 4
	case ParamTypeUint64, ParamTypeInt64, ParamTypeReal64:
		return 8
	}
	return 0
}

func (t ParamType) String() string {
	switch t {
	case ParamTypeUint8:
		return "uint8"
	case ParamTypeInt8:
		return "int8"
	case ParamTypeUint16:
		return "uint16"
	case ParamTypeInt16:
		return "int16"
	case ParamTypeUint32:
		return "uint32"
	case ParamTypeInt32:
		return "int32"
	case ParamTypeUint64:
		return "uint64"
	case ParamTypeInt64:
		return "int64"
	case ParamTypeReal32:
		return "float"
	case ParamTypeReal64:
		return "double"
	case ParamTypeCustom:
		return "custom"
	}
	return "unknown"
}

var (
	ErrUnknownParam = errors.New("camera: unknown param")
	ErrParamType    = errors.New("camera: wrong param type")
)

type Param struct {
	ID    int
	Type  ParamType
	Value []byte
}

// Params - named parameter store, one map holds id, type and value together
type Params struct {
	items map[string]*Param
	mu    sync.Mutex
}

func NewParams() *Params {
	return &Params{items: map[string]*Param{}}
}

// Add registers param or replaces existing one
func (p *Params) Add(name string, id int, typ ParamType, value []byte) {
	p.mu.Lock()
	if p.items == nil {
		p.items = map[string]*Param{}
	}
	p.items[name] = &Param{ID: id, Type: typ, Value: normalize(typ, value)}
	p.mu.Unlock()
}

func (p *Params) Set(name string, value []byte, typ ParamType) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	param, ok := p.items[name]
	if !ok {
		return ErrUnknownParam
	}
	if param.Type != typ {
		return ErrParamType
	}

	param.Value = normalize(typ, value)
	return nil
}

func (p *Params) SetParam(name string, value []byte, typ ParamType) bool {
	return p.Set(name, value, typ) == nil
}

func (p *Params) GetParam(name string) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if param, ok := p.items[name]; ok {
		return append([]byte(nil), param.Value...), true
	}
	return nil, false
}

func (p *Params) ListParams() map[string][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	values := make(map[string][]byte, len(p.items))
	for name, param := range p.items {
		values[name] = append([]byte(nil), param.Value...)
	}
	return values
}

func (p *Params) ParamType(name string) ParamType {
	p.mu.Lock()
	defer p.mu.Unlock()

	if param, ok := p.items[name]; ok {
		return param.Type
	}
	return ParamTypeUnknown
}

func (p *Params) ParamID(name string) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if param, ok := p.items[name]; ok {
		return param.ID, true
	}
	return 0, false
}

// normalize cuts numeric value to the size of its type and custom value to first NUL
func normalize(typ ParamType, value []byte) []byte {
	if size := typ.Size(); size > 0 {
		b := make([]byte, size)
		copy(b, value)
		return b
	}
	if i := bytes.IndexByte(value, 0); i >= 0 {
		value = value[:i]
	}
	return append([]byte(nil), value...)
}

func Uint32(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, v)
}

func Int32(v int32) []byte {
	return binary.LittleEndian.AppendUint32(nil, uint32(v))
}

func Float32(v float32) []byte {
	return binary.LittleEndian.AppendUint32(nil, math.Float32bits(v))
}

// GetUint32 reads value written by Uint32, short values are zero extended
func GetUint32(b []byte) uint32 {
	var buf [4]byte
	copy(buf[:], b)
	return binary.LittleEndian.Uint32(buf[:])
}

// Param names of camera backends
const (
	ParamCameraMode              = "camera-mode"
	ParamBrightness              = "brightness"
	ParamContrast                = "contrast"
	ParamSaturation              = "saturation"
	ParamHue                     = "hue"
	ParamWhiteBalanceMode        = "wb-mode"
	ParamGamma                   = "gamma"
	ParamGain                    = "gain"
	ParamPowerLineFreqMode       = "power-mode"
	ParamWhiteBalanceTemperature = "wb-temp"
	ParamSharpness               = "sharpness"
	ParamBacklightCompensation   = "backlight"
	ParamExposureMode            = "exp-mode"
	ParamExposureAbsolute        = "exp-absolute"
	ParamImageSize               = "image-size"
	ParamImageFormat             = "image-format"
	ParamPixelFormat             = "pixel-format"
	ParamSceneMode               = "scene-mode"
	ParamVideoSize               = "video-size"
	ParamVideoFrameFormat        = "video-format"
	ParamVideoSnapshotSupported  = "video-snapshot"
)

var defaultParams = []struct {
	name  string
	typ   ParamType
	value []byte
}{
	{ParamCameraMode, ParamTypeUint32, Uint32(ModeVideo)},
	{ParamBrightness, ParamTypeUint32, Uint32(128)},
	{ParamContrast, ParamTypeUint32, Uint32(32)},
	{ParamSaturation, ParamTypeUint32, Uint32(64)},
	{ParamHue, ParamTypeInt32, Int32(0)},
	{ParamWhiteBalanceMode, ParamTypeUint32, Uint32(1)},
	{ParamGamma, ParamTypeUint32, Uint32(100)},
	{ParamGain, ParamTypeUint32, Uint32(0)},
	{ParamPowerLineFreqMode, ParamTypeUint32, Uint32(1)},
	{ParamWhiteBalanceTemperature, ParamTypeUint32, Uint32(4600)},
	{ParamSharpness, ParamTypeUint32, Uint32(3)},
	{ParamBacklightCompensation, ParamTypeUint32, Uint32(0)},
	{ParamExposureMode, ParamTypeUint32, Uint32(3)},
	{ParamExposureAbsolute, ParamTypeUint32, Uint32(156)},
	{ParamImageSize, ParamTypeUint32, Uint32(0)},
	{ParamImageFormat, ParamTypeUint32, Uint32(0)},
	{ParamPixelFormat, ParamTypeUint32, Uint32(0)},
	{ParamSceneMode, ParamTypeUint32, Uint32(0)},
	{ParamVideoSize, ParamTypeUint32, Uint32(0)},
	{ParamVideoFrameFormat, ParamTypeUint32, Uint32(0)},
	{ParamVideoSnapshotSupported, ParamTypeUint32, Uint32(0)},
}

// DefaultParams returns new store filled with the common camera params
func DefaultParams() *Params {
	p := NewParams()
	for i, item := range defaultParams {
		p.Add(item.name, i, item.typ, item.value)
	}
	return p
}
