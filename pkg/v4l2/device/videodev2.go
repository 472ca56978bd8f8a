package device

import (
	"unsafe"

	"github.com/camstreamd/camstreamd/pkg/ioctl"
)

// https://github.com/torvalds/linux/blob/master/include/uapi/linux/videodev2.h

// Only structs with the same layout on 32 and 64 bit platforms are used here.

var (
	VIDIOC_QUERYCAP  = ioctl.IOR('V', 0, uint16(unsafe.Sizeof(v4l2_capability{})))
	VIDIOC_ENUM_FMT  = ioctl.IORW('V', 2, uint16(unsafe.Sizeof(v4l2_fmtdesc{})))
	VIDIOC_G_CTRL    = ioctl.IORW('V', 27, uint16(unsafe.Sizeof(v4l2_control{})))
	VIDIOC_S_CTRL    = ioctl.IORW('V', 28, uint16(unsafe.Sizeof(v4l2_control{})))
	VIDIOC_QUERYCTRL = ioctl.IORW('V', 36, uint16(unsafe.Sizeof(v4l2_queryctrl{})))

	VIDIOC_ENUM_FRAMESIZES = ioctl.IORW('V', 74, uint16(unsafe.Sizeof(v4l2_frmsizeenum{})))
)

const (
	V4L2_BUF_TYPE_VIDEO_CAPTURE = 1
	V4L2_FRMSIZE_TYPE_DISCRETE  = 1

	V4L2_CTRL_FLAG_DISABLED = 0x0001
)

// Control IDs
const (
	V4L2_CID_BASE                      = 0x00980900
	V4L2_CID_BRIGHTNESS                = V4L2_CID_BASE + 0
	V4L2_CID_CONTRAST                  = V4L2_CID_BASE + 1
	V4L2_CID_SATURATION                = V4L2_CID_BASE + 2
	V4L2_CID_HUE                       = V4L2_CID_BASE + 3
	V4L2_CID_AUTO_WHITE_BALANCE        = V4L2_CID_BASE + 12
	V4L2_CID_GAMMA                     = V4L2_CID_BASE + 16
	V4L2_CID_GAIN                      = V4L2_CID_BASE + 19
	V4L2_CID_POWER_LINE_FREQUENCY      = V4L2_CID_BASE + 24
	V4L2_CID_WHITE_BALANCE_TEMPERATURE = V4L2_CID_BASE + 26
	V4L2_CID_SHARPNESS                 = V4L2_CID_BASE + 27
	V4L2_CID_BACKLIGHT_COMPENSATION    = V4L2_CID_BASE + 28

	V4L2_CID_CAMERA_CLASS_BASE = 0x009a0900
	V4L2_CID_EXPOSURE_AUTO     = V4L2_CID_CAMERA_CLASS_BASE + 1
	V4L2_CID_EXPOSURE_ABSOLUTE = V4L2_CID_CAMERA_CLASS_BASE + 2
)

type Control struct {
	ID      uint32
	Name    string
	Min     int32
	Max     int32
	Step    int32
	Default int32
}

type v4l2_capability struct {
	driver       [16]byte
	card         [32]byte
	bus_info     [32]byte
	version      uint32
	capabilities uint32
	device_caps  uint32
	reserved     [3]uint32
}

type v4l2_fmtdesc struct {
	index       uint32
	typ         uint32
	flags       uint32
	description [32]byte
	pixelformat uint32
	mbus_code   uint32
	reserved    [3]uint32
}

type v4l2_frmsizeenum struct {
	index        uint32                // 0
	pixel_format uint32                // 4
	typ          uint32                // 8
	discrete     v4l2_frmsize_discrete // 12
	_            [24]byte
}

type v4l2_frmsize_discrete struct {
	width  uint32
	height uint32
}

type v4l2_queryctrl struct {
	id            uint32
	typ           uint32
	name          [32]byte
	minimum       int32
	maximum       int32
	step          int32
	default_value int32
	flags         uint32
	reserved      [2]uint32
}

type v4l2_control struct {
	id    uint32
	value int32
}
