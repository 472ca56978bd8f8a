package v4l2

import (
	"github.com/camstreamd/camstreamd/pkg/camera"
	"github.com/camstreamd/camstreamd/pkg/v4l2/device"
)

func Open(path string) (*Camera, error) {
	dev, err := device.Open(path)
	if err != nil {
		return nil, err
	}

	c, err := open(dev)
	if err != nil {
		_ = dev.Close()
		return nil, err
	}

	return c, nil
}

func open(dev *device.Device) (*Camera, error) {
	capability, err := dev.Capability()
	if err != nil {
		return nil, err
	}

	pixFmts, err := dev.ListFormats()
	if err != nil {
		return nil, err
	}

	info := camera.Info{
		Vendor:          capability.Driver,
		Model:           capability.Card,
		FirmwareVersion: capability.VersionCode,
	}

	var formats []camera.Format

	for _, pixFmt := range pixFmts {
		sizes, err := dev.ListSizes(pixFmt)
		if err != nil {
			return nil, err
		}

		format := camera.Format{PixelFormat: pixFmt, Name: device.FormatName(pixFmt)}
		for _, size := range sizes {
			format.FrameSizes = append(format.FrameSizes, camera.FrameSize{Width: size[0], Height: size[1]})

			// native resolution is the largest one
			if w, h := uint16(size[0]), uint16(size[1]); uint32(w)*uint32(h) > uint32(info.ResolutionH)*uint32(info.ResolutionV) {
				info.ResolutionH, info.ResolutionV = w, h
			}
		}

		formats = append(formats, format)
	}

	return newCamera(dev, info, formats), nil
}
