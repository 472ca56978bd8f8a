package v4l2

import (
	"math"

	"github.com/camstreamd/camstreamd/pkg/camera"
	"github.com/camstreamd/camstreamd/pkg/v4l2/device"
)

// controls - camera params backed by V4L2 controls
var controls = map[string]uint32{
	camera.ParamBrightness:              device.V4L2_CID_BRIGHTNESS,
	camera.ParamContrast:                device.V4L2_CID_CONTRAST,
	camera.ParamSaturation:              device.V4L2_CID_SATURATION,
	camera.ParamHue:                     device.V4L2_CID_HUE,
	camera.ParamWhiteBalanceMode:        device.V4L2_CID_AUTO_WHITE_BALANCE,
	camera.ParamGamma:                   device.V4L2_CID_GAMMA,
	camera.ParamGain:                    device.V4L2_CID_GAIN,
	camera.ParamPowerLineFreqMode:       device.V4L2_CID_POWER_LINE_FREQUENCY,
	camera.ParamWhiteBalanceTemperature: device.V4L2_CID_WHITE_BALANCE_TEMPERATURE,
	camera.ParamSharpness:               device.V4L2_CID_SHARPNESS,
	camera.ParamBacklightCompensation:   device.V4L2_CID_BACKLIGHT_COMPENSATION,
	camera.ParamExposureMode:            device.V4L2_CID_EXPOSURE_AUTO,
	camera.ParamExposureAbsolute:        device.V4L2_CID_EXPOSURE_ABSOLUTE,
}

type controller interface {
	QueryControl(id uint32) (*device.Control, error)
	GetControl(id uint32) (int32, error)
	SetControl(id uint32, value int32) error
	Close() error
}

// Camera - V4L2 capture device as camera component. Params without
// device control are kept in memory only.
type Camera struct {
	*camera.Params

	dev       controller
	info      camera.Info
	formats   []camera.Format
	supported map[string]uint32
}

func newCamera(dev controller, info camera.Info, formats []camera.Format) *Camera {
	c := &Camera{
		Params:    camera.DefaultParams(),
		dev:       dev,
		info:      info,
		formats:   formats,
		supported: map[string]uint32{},
	}

	for name, id := range controls {
		if _, err := dev.QueryControl(id); err != nil {
			continue
		}
		value, err := dev.GetControl(id)
		if err != nil {
			continue
		}

		typ := c.Params.ParamType(name)
		if err = c.Params.Set(name, encodeValue(typ, value), typ); err != nil {
			continue
		}

		c.supported[name] = id
	}

	return c
}

func (c *Camera) Info() camera.Info {
	return c.info
}

func (c *Camera) Formats() []camera.Format {
	return c.formats
}

// Controls returns names of params applied to the device
func (c *Camera) Controls() []string {
	names := make([]string, 0, len(c.supported))
	for name := range c.supported {
		names = append(names, name)
	}
	return names
}

func (c *Camera) SetParam(name string, value []byte, typ camera.ParamType) bool {
	if c.Params.ParamType(name) != typ {
		return false
	}

	if id, ok := c.supported[name]; ok {
		if err := c.dev.SetControl(id, decodeValue(typ, value)); err != nil {
			return false
		}
	}

	return c.Params.SetParam(name, value, typ)
}

func (c *Camera) Close() error {
	return c.dev.Close()
}

func encodeValue(typ camera.ParamType, v int32) []byte {
	switch typ {
	case camera.ParamTypeInt32:
		return camera.Int32(v)
	case camera.ParamTypeReal32:
		return camera.Float32(float32(v))
	}
	return camera.Uint32(uint32(v))
}

func decodeValue(typ camera.ParamType, b []byte) int32 {
	switch typ {
	case camera.ParamTypeUint8:
		if len(b) > 0 {
			return int32(b[0])
		}
		return 0
	case camera.ParamTypeReal32:
		return int32(math.Float32frombits(camera.GetUint32(b)))
	}
	return int32(camera.GetUint32(b))
}
