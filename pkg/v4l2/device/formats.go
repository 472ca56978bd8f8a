package device

import "encoding/binary"

const (
	V4L2_PIX_FMT_YUYV   = 'Y' | 'U'<<8 | 'Y'<<16 | 'V'<<24
	V4L2_PIX_FMT_MJPEG  = 'M' | 'J'<<8 | 'P'<<16 | 'G'<<24
	V4L2_PIX_FMT_H264   = 'H' | '2'<<8 | '6'<<16 | '4'<<24
	V4L2_PIX_FMT_NV12   = 'N' | 'V'<<8 | '1'<<16 | '2'<<24
	V4L2_PIX_FMT_YUV420 = 'Y' | 'U'<<8 | '1'<<16 | '2'<<24
)

type Format struct {
	FourCC uint32
	Name   string
}

var Formats = []Format{
	{V4L2_PIX_FMT_YUYV, "YUV 4:2:2"},
	{V4L2_PIX_FMT_MJPEG, "Motion-JPEG"},
	{V4L2_PIX_FMT_H264, "H.264"},
	{V4L2_PIX_FMT_NV12, "Y/CbCr 4:2:0"},
	{V4L2_PIX_FMT_YUV420, "Planar YUV 4:2:0"},
}

// FormatName returns human name or raw FourCC string for unknown formats
func FormatName(fourCC uint32) string {
	for _, format := range Formats {
		if format.FourCC == fourCC {
			return format.Name
		}
	}
	return string(binary.LittleEndian.AppendUint32(nil, fourCC))
}
