package mdns

import (
	"syscall"

	"golang.org/x/sys/unix"
)

func SetsockoptInt(fd uintptr, level, opt int, value int) (err error) {
	return unix.SetsockoptInt(int(fd), level, opt, value)
}

func SetsockoptIPMreq(fd uintptr, level, opt int, mreq *syscall.IPMreq) (err error) {
	return unix.SetsockoptIPMreq(int(fd), level, opt, &unix.IPMreq{
		Multiaddr: mreq.Multiaddr,
		Interface: mreq.Interface,
	})
}
