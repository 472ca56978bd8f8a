//go:build !linux

package v4l2

func Init() {
	// V4L2 cameras supported only on Linux
}
