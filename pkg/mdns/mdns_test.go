package mdns

import (
	"net"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

func TestAnswer(t *testing.T) {
	s := &Server{
		Service: ServiceMAVLink,
		Nets: []*net.IPNet{
			{IP: net.IP{192, 168, 1, 5}, Mask: net.CIDRMask(24, 32)},
		},
	}

	localIP := s.MatchLocalIP(net.IP{192, 168, 1, 77})
	require.Equal(t, net.IP{192, 168, 1, 5}, localIP)
	require.Nil(t, s.MatchLocalIP(net.IP{172, 17, 0, 2}))

	entries := []*ServiceEntry{
		{Name: "drone cam", Port: 14550, Info: map[string]string{"sysid": "1", "cameras": "100,101"}},
	}

	req := &dns.Msg{Question: []dns.Question{
		{Name: ServiceMAVLink, Qtype: dns.TypePTR, Qclass: dns.ClassINET},
	}}

	res := s.Answer(req, entries, localIP)
	require.NotNil(t, res)
	require.True(t, res.Response)

	// response must survive the wire
	b, err := res.Pack()
	require.Nil(t, err)
	require.Nil(t, res.Unpack(b))

	ptr := res.Answer[0].(*dns.PTR)
	require.Equal(t, "drone-cam."+ServiceMAVLink, ptr.Ptr)

	txt := res.Extra[0].(*dns.TXT)
	require.Equal(t, []string{"cameras=100,101", "sysid=1"}, txt.Txt)

	srv := res.Extra[1].(*dns.SRV)
	require.Equal(t, uint16(14550), srv.Port)

	a := res.Extra[2].(*dns.A)
	require.True(t, a.A.Equal(localIP))

	// instance query
	req.Question[0].Name = "drone-cam." + ServiceMAVLink
	require.NotNil(t, s.Answer(req, entries, localIP))

	req.Question[0].Name = "_hap._tcp.local."
	require.Nil(t, s.Answer(req, entries, localIP))

	req.Question[0].Name = ServiceDNSSD
	res = s.Answer(req, entries, localIP)
	require.Equal(t, ServiceMAVLink, res.Answer[0].(*dns.PTR).Ptr)
}
