package mdns

import (
	"fmt"
	"net"
	"sort"
	"strings"
)

// ServiceMAVLink - MAVLink endpoint over UDP
const ServiceMAVLink = "_mavlink._udp.local."

const ServiceDNSSD = "_services._dns-sd._udp.local."

var MulticastAddr = &net.UDPAddr{
	IP:   net.IP{224, 0, 0, 251},
	Port: 5353,
}

type ServiceEntry struct {
	Name string            `json:"name,omitempty"`
	IP   net.IP            `json:"ip,omitempty"`
	Port uint16            `json:"port,omitempty"`
	Info map[string]string `json:"info,omitempty"`
}

func (e *ServiceEntry) TXT() []string {
	txt := make([]string, 0, len(e.Info))
	for k, v := range e.Info {
		txt = append(txt, k+"="+v)
	}
	sort.Strings(txt)
	return txt
}

func (e *ServiceEntry) Addr() string {
	return fmt.Sprintf("%s:%d", e.IP, e.Port)
}

func (e *ServiceEntry) Host(service string) string {
	return e.name() + "." + strings.TrimRight(service, ".")
}

func (e *ServiceEntry) name() string {
	b := []byte(e.Name)
	for i, c := range b {
		if 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' {
			continue
		}
		b[i] = '-'
	}
	return string(b)
}
