package mdns

import (
	"testing"

	"github.com/camstreamd/camstreamd/internal/mavlink"
	"github.com/stretchr/testify/require"
)

func TestNewEntry(t *testing.T) {
	conf := &mavlink.Config{Port: 14550, SystemID: 1, ComponentID: 100}

	entry := NewEntry("drone 1", conf)
	require.Equal(t, uint16(14550), entry.Port)
	require.Equal(t, []string{"compid=100", "rtsp=8554", "sysid=1"}, entry.TXT())
	require.Equal(t, "drone-1._mavlink._udp.local", entry.Host("_mavlink._udp.local."))

	entry = NewEntry("", conf)
	require.Equal(t, "camstreamd", entry.Name)
}
