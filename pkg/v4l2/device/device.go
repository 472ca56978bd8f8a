//go:build linux

package device

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/camstreamd/camstreamd/pkg/ioctl"
	"golang.org/x/sys/unix"
)

type Device struct {
	fd int
}

func Open(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, err
	}
	return &Device{fd: fd}, nil
}

type Capability struct {
	Driver  string `json:"driver"`
	Card    string `json:"card"`
	BusInfo string `json:"bus_info"`
	Version string `json:"version"`

	VersionCode uint32 `json:"-"`
}

func (d *Device) Capability() (*Capability, error) {
	c := v4l2_capability{}
	if err := ioctl.Ioctl(d.fd, VIDIOC_QUERYCAP, unsafe.Pointer(&c)); err != nil {
		return nil, err
	}
	return &Capability{
		Driver:      ioctl.Str(c.driver[:]),
		Card:        ioctl.Str(c.card[:]),
		BusInfo:     ioctl.Str(c.bus_info[:]),
		Version:     fmt.Sprintf("%d.%d.%d", byte(c.version>>16), byte(c.version>>8), byte(c.version)),
		VersionCode: c.version,
	}, nil
}

func (d *Device) ListFormats() ([]uint32, error) {
	var items []uint32

	for i := uint32(0); ; i++ {
		fd := v4l2_fmtdesc{
			index: i,
			typ:   V4L2_BUF_TYPE_VIDEO_CAPTURE,
		}
		if err := ioctl.Ioctl(d.fd, VIDIOC_ENUM_FMT, unsafe.Pointer(&fd)); err != nil {
			if !errors.Is(err, unix.EINVAL) {
				return nil, err
			}
			break
		}

		items = append(items, fd.pixelformat)
	}

	return items, nil
}

func (d *Device) ListSizes(pixFmt uint32) ([][2]uint32, error) {
	var items [][2]uint32

	for i := uint32(0); ; i++ {
		fs := v4l2_frmsizeenum{
			index:        i,
			pixel_format: pixFmt,
		}
		if err := ioctl.Ioctl(d.fd, VIDIOC_ENUM_FRAMESIZES, unsafe.Pointer(&fs)); err != nil {
			if !errors.Is(err, unix.EINVAL) {
				return nil, err
			}
			break
		}

		if fs.typ != V4L2_FRMSIZE_TYPE_DISCRETE {
			continue
		}

		items = append(items, [2]uint32{fs.discrete.width, fs.discrete.height})
	}

	return items, nil
}

// QueryControl returns control range, unix.EINVAL if device has no such control
func (d *Device) QueryControl(id uint32) (*Control, error) {
	qc := v4l2_queryctrl{id: id}
	if err := ioctl.Ioctl(d.fd, VIDIOC_QUERYCTRL, unsafe.Pointer(&qc)); err != nil {
		return nil, err
	}
	if qc.flags&V4L2_CTRL_FLAG_DISABLED != 0 {
		return nil, unix.EINVAL
	}
	return &Control{
		ID:      id,
		Name:    ioctl.Str(qc.name[:]),
		Min:     qc.minimum,
		Max:     qc.maximum,
		Step:    qc.step,
		Default: qc.default_value,
	}, nil
}

func (d *Device) GetControl(id uint32) (int32, error) {
	c := v4l2_control{id: id}
	if err := ioctl.Ioctl(d.fd, VIDIOC_G_CTRL, unsafe.Pointer(&c)); err != nil {
		return 0, err
	}
	return c.value, nil
}

func (d *Device) SetControl(id uint32, value int32) error {
	c := v4l2_control{id: id, value: value}
	return ioctl.Ioctl(d.fd, VIDIOC_S_CTRL, unsafe.Pointer(&c))
}

func (d *Device) Close() error {
	return unix.Close(d.fd)
}
