package mdns

import (
	"context"
	"errors"
	"net"
	"syscall"

	"github.com/miekg/dns"
)

// ClassCacheFlush https://datatracker.ietf.org/doc/html/rfc6762#section-10.2
const ClassCacheFlush = 0x8001

// Server answers PTR questions for one service on every IPv4 interface
type Server struct {
	Service string

	Recv  net.PacketConn
	Sends []net.PacketConn
	Nets  []*net.IPNet
}

func Serve(service string, entries []*ServiceEntry) error {
	s := &Server{Service: service}

	if err := s.ListenMulticastUDP(); err != nil {
		return err
	}

	defer s.Close()

	return s.Serve(entries)
}

// ListenMulticastUDP - creates one sender socket for each IPv4 interface
// and one receiver with multicast membership on all of them
func (s *Server) ListenMulticastUDP() error {
	nets, err := InterfacesIP4()
	if err != nil {
		return err
	}

	lc1 := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			return c.Control(func(fd uintptr) {
				_ = SetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
			})
		},
	}

	ctx := context.Background()

	for _, ipn := range nets {
		conn, err := lc1.ListenPacket(ctx, "udp4", ipn.IP.String()+":5353") // same port important
		if err != nil {
			continue
		}
		s.Sends = append(s.Sends, conn)
		s.Nets = append(s.Nets, ipn)
	}

	if s.Sends == nil {
		return errors.New("mdns: no interfaces for listen")
	}

	lc2 := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			return c.Control(func(fd uintptr) {
				_ = SetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
				_ = SetsockoptInt(fd, syscall.IPPROTO_IP, syscall.IP_MULTICAST_LOOP, 0)

				mreq := &syscall.IPMreq{
					Multiaddr: [4]byte{224, 0, 0, 251},
				}
				_ = SetsockoptIPMreq(fd, syscall.IPPROTO_IP, syscall.IP_ADD_MEMBERSHIP, mreq)

				for _, ipn := range s.Nets {
					copy(mreq.Interface[:], ipn.IP.To4())
					_ = SetsockoptIPMreq(fd, syscall.IPPROTO_IP, syscall.IP_ADD_MEMBERSHIP, mreq)
				}
			})
		},
	}

	s.Recv, err = lc2.ListenPacket(ctx, "udp4", "0.0.0.0:5353")

	return err
}

// Serve answers queries until receiver is closed
func (s *Server) Serve(entries []*ServiceEntry) error {
	buf := make([]byte, 1500)
	for {
		n, addr, err := s.Recv.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		var req dns.Msg
		if err = req.Unpack(buf[:n]); err != nil {
			continue
		}

		// skip messages from unknown networks (can be docker network)
		localIP := s.MatchLocalIP(addr.(*net.UDPAddr).IP)
		if localIP == nil {
			continue
		}

		res := s.Answer(&req, entries, localIP)
		if res == nil {
			continue
		}

		data, err := res.Pack()
		if err != nil {
			continue
		}

		for _, send := range s.Sends {
			_, _ = send.WriteTo(data, MulticastAddr)
		}
	}
}

// Answer returns response for request or nil if nothing to answer
func (s *Server) Answer(req *dns.Msg, entries []*ServiceEntry, localIP net.IP) *dns.Msg {
	var res dns.Msg

	for _, q := range req.Question {
		if q.Qtype != dns.TypePTR || q.Qclass != dns.ClassINET {
			continue
		}

		switch q.Name {
		case ServiceDNSSD:
			AppendDNSSD(&res, s.Service)
		case s.Service:
			for _, entry := range entries {
				AppendEntry(&res, entry, s.Service, localIP)
			}
		default:
			for _, entry := range entries {
				if q.Name == entry.name()+"."+s.Service {
					AppendEntry(&res, entry, s.Service, localIP)
				}
			}
		}
	}

	if res.Answer == nil {
		return nil
	}

	res.MsgHdr.Response = true
	res.MsgHdr.Authoritative = true

	return &res
}

func (s *Server) MatchLocalIP(remote net.IP) net.IP {
	for _, ipn := range s.Nets {
		if ipn.Contains(remote) {
			return ipn.IP
		}
	}
	return nil
}

func (s *Server) Close() error {
	if s.Recv != nil {
		_ = s.Recv.Close()
	}
	for _, send := range s.Sends {
		_ = send.Close()
	}
	return nil
}

func AppendDNSSD(msg *dns.Msg, service string) {
	msg.Answer = append(
		msg.Answer,
		&dns.PTR{
			Hdr: dns.RR_Header{
				Name:   ServiceDNSSD,
				Rrtype: dns.TypePTR,
				Class:  dns.ClassINET,
				Ttl:    4500,
			},
			Ptr: service,
		},
	)
}

func AppendEntry(msg *dns.Msg, entry *ServiceEntry, service string, ip net.IP) {
	ptrName := entry.name() + "." + service // camstreamd._mavlink._udp.local.
	srvName := entry.name() + ".local."

	msg.Answer = append(
		msg.Answer,
		&dns.PTR{
			Hdr: dns.RR_Header{
				Name:   service,
				Rrtype: dns.TypePTR,
				Class:  dns.ClassINET,
				Ttl:    4500,
			},
			Ptr: ptrName,
		},
	)
	msg.Extra = append(
		msg.Extra,
		&dns.TXT{
			Hdr: dns.RR_Header{
				Name:   ptrName,
				Rrtype: dns.TypeTXT,
				Class:  ClassCacheFlush,
				Ttl:    4500,
			},
			Txt: entry.TXT(),
		},
		&dns.SRV{
			Hdr: dns.RR_Header{
				Name:   ptrName,
				Rrtype: dns.TypeSRV,
				Class:  ClassCacheFlush,
				Ttl:    120,
			},
			Port:   entry.Port,
			Target: srvName,
		},
		&dns.A{
			Hdr: dns.RR_Header{
				Name:   srvName,
				Rrtype: dns.TypeA,
				Class:  ClassCacheFlush,
				Ttl:    120,
			},
			A: ip,
		},
	)
}

// InterfacesIP4 returns first IPv4 network of every active non loopback interface
func InterfacesIP4() ([]*net.IPNet, error) {
	intfs, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	var nets []*net.IPNet

loop:
	for _, intf := range intfs {
		if intf.Flags&net.FlagUp == 0 || intf.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := intf.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if v, ok := addr.(*net.IPNet); ok {
				if ip := v.IP.To4(); ip != nil {
					nets = append(nets, &net.IPNet{IP: ip, Mask: v.Mask})
					continue loop
				}
			}
		}
	}

	return nets, nil
}
