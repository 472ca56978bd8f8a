package mavcam

import (
	"bytes"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/camstreamd/camstreamd/pkg/camera"
	"github.com/camstreamd/camstreamd/pkg/mavlink"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type packet struct {
	addr net.Addr
	data []byte
}

// testConn - in memory PacketConn, records writes and fails first failWrites of them
type testConn struct {
	written    []packet
	failWrites int
	attempts   int

	reads  chan packet
	closed chan struct{}
	once   sync.Once
	mu     sync.Mutex
}

func newTestConn() *testConn {
	return &testConn{reads: make(chan packet, 16), closed: make(chan struct{})}
}

func (c *testConn) ReadFrom(b []byte) (int, net.Addr, error) {
	select {
	case p := <-c.reads:
		return copy(b, p.data), p.addr, nil
	case <-c.closed:
		return 0, nil, net.ErrClosed
	}
}

func (c *testConn) WriteTo(b []byte, addr net.Addr) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.attempts++
	if c.failWrites > 0 {
		c.failWrites--
		return 0, errors.New("write failed")
	}
	c.written = append(c.written, packet{addr: addr, data: append([]byte(nil), b...)})
	return len(b), nil
}

func (c *testConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *testConn) LocalAddr() net.Addr                { return gcsAddr }
func (c *testConn) SetDeadline(t time.Time) error      { return nil }
func (c *testConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *testConn) SetWriteDeadline(t time.Time) error { return nil }

// messages decodes every written datagram
func (c *testConn) messages(t *testing.T) []sent {
	c.mu.Lock()
	defer c.mu.Unlock()

	var items []sent
	for _, p := range c.written {
		var parser mavlink.Parser
		_, _ = parser.Write(p.data)
		f, ok := parser.Next()
		require.True(t, ok)
		msg, err := mavlink.Unmarshal(f)
		require.Nil(t, err)
		items = append(items, sent{addr: p.addr, frame: f, msg: msg})
	}
	return items
}

type sent struct {
	addr  net.Addr
	frame *mavlink.Frame
	msg   mavlink.Message
}

type testCamera struct {
	*camera.Params
	info camera.Info
}

func (c *testCamera) Info() camera.Info {
	return c.info
}

func newTestCamera(model string) *testCamera {
	return &testCamera{
		Params: camera.DefaultParams(),
		info:   camera.Info{Vendor: "Test", Model: model, ResolutionH: 1280, ResolutionV: 720},
	}
}

type testURIs struct{}

func (testURIs) BuildURI(serverAddr string, stream *camera.Stream, query string) string {
	return "rtsp://" + serverAddr + ":8554/" + stream.Name + query
}

var (
	gcsAddr       = &net.UDPAddr{IP: net.IPv4(192, 168, 1, 10), Port: 14550}
	broadcastAddr = &net.UDPAddr{IP: net.IPv4bcast, Port: 14550}
)

func testStreams() []*camera.Stream {
	return []*camera.Stream{
		{
			ID: 1, Name: "front", IsStreaming: true,
			Formats: []camera.Format{
				{Name: "YUYV", FrameSizes: []camera.FrameSize{{Width: 640, Height: 480}, {Width: 1280, Height: 720}}},
			},
		},
		{
			ID: 2, Name: "down",
			Formats: []camera.Format{
				{Name: "MJPG", FrameSizes: []camera.FrameSize{{Width: 320, Height: 240}, {Width: 800, Height: 600}}},
			},
		},
	}
}

func newTestServer() (*Server, *testConn) {
	conn := newTestConn()
	cfg := Config{SystemID: 1, ComponentID: mavlink.CompIDCamera, Broadcast: broadcastAddr, ServerAddr: "10.0.0.2"}
	return New(conn, cfg, testStreams(), testURIs{}), conn
}

func encode(t *testing.T, msg mavlink.Message) []byte {
	b, err := mavlink.Encode(mavlink.NewFrame(255, 190, 0, msg))
	require.Nil(t, err)
	return b
}

func command(cmd uint16, comp byte, params ...float32) *mavlink.CommandLong {
	msg := &mavlink.CommandLong{Command: cmd, TargetSystem: 1, TargetComponent: comp}
	copy(msg.Params[:], params)
	return msg
}

func requireAck(t *testing.T, item sent, cmd uint16, result byte) {
	ack, ok := item.msg.(*mavlink.CommandAck)
	require.True(t, ok)
	require.Equal(t, cmd, ack.Command)
	require.Equal(t, result, ack.Result)
	require.Equal(t, byte(255), ack.TargetSystem)
	require.Equal(t, byte(190), ack.TargetComponent)
}

func TestRegistry(t *testing.T) {
	s, _ := newTestServer()

	cams := make([]*testCamera, CameraCount)
	for i := range cams {
		cams[i] = newTestCamera("cam")
		require.Equal(t, byte(mavlink.CompIDCamera+i), s.AddCamera(cams[i]))
	}

	require.Equal(t, byte(InvalidID), s.AddCamera(newTestCamera("extra")))

	s.RemoveCamera(cams[2])
	require.Nil(t, s.Camera(102))

	// freed id is reused
	require.Equal(t, byte(102), s.AddCamera(cams[2]))
	require.Equal(t, camera.Component(cams[2]), s.Camera(102))
	require.Equal(t, byte(102), s.CameraID(cams[2]))
	require.Equal(t, byte(InvalidID), s.CameraID(newTestCamera("unknown")))

	// remove unknown or nil is no-op
	s.RemoveCamera(newTestCamera("unknown"))
	s.RemoveCamera(nil)
	require.Len(t, s.Status().Cameras, CameraCount)

	require.Nil(t, s.Camera(99))
	require.Nil(t, s.Camera(InvalidID))
}

func TestNewDefaults(t *testing.T) {
	s := New(newTestConn(), Config{SystemID: 0, ComponentID: 255}, nil, nil)
	require.Equal(t, byte(DefaultSystemID), s.Config().SystemID)
	require.Equal(t, byte(DefaultComponentID), s.Config().ComponentID)

	s = New(newTestConn(), Config{SystemID: 42, ComponentID: 101}, nil, nil)
	require.Equal(t, byte(42), s.Config().SystemID)
	require.Equal(t, byte(101), s.Config().ComponentID)
}

func TestCameraInformation(t *testing.T) {
	s, conn := newTestServer()
	s.AddCamera(newTestCamera("X1"))

	s.HandleDatagram(gcsAddr, encode(t, command(mavlink.CmdRequestCameraInformation, 100, 1)))

	items := conn.messages(t)
	require.Len(t, items, 2)

	info, ok := items[0].msg.(*mavlink.CameraInformation)
	require.True(t, ok)
	require.Equal(t, "Test", info.VendorName)
	require.Equal(t, "X1", info.ModelName)
	require.Equal(t, uint16(1280), info.ResolutionH)
	require.Equal(t, byte(100), items[0].frame.CompID)
	require.Equal(t, byte(1), items[0].frame.SysID)
	require.Equal(t, gcsAddr, items[0].addr)

	requireAck(t, items[1], mavlink.CmdRequestCameraInformation, mavlink.ResultAccepted)
	require.Equal(t, byte(100), items[1].frame.CompID)
}

func TestAckWithoutContent(t *testing.T) {
	s, conn := newTestServer()
	s.AddCamera(newTestCamera("X1"))

	s.HandleDatagram(gcsAddr, encode(t, command(mavlink.CmdRequestCameraInformation, 100, 0)))

	items := conn.messages(t)
	require.Len(t, items, 1)
	requireAck(t, items[0], mavlink.CmdRequestCameraInformation, mavlink.ResultAccepted)

	// no lookup is done, unbound component is acked as accepted too
	s.HandleDatagram(gcsAddr, encode(t, command(mavlink.CmdRequestStorageInformation, 103, 2)))

	items = conn.messages(t)
	require.Len(t, items, 2)
	requireAck(t, items[1], mavlink.CmdRequestStorageInformation, mavlink.ResultAccepted)
}

func TestUnboundCamera(t *testing.T) {
	s, conn := newTestServer()

	s.HandleDatagram(gcsAddr, encode(t, command(mavlink.CmdRequestCameraSettings, 101, 1)))

	items := conn.messages(t)
	require.Len(t, items, 1)
	requireAck(t, items[0], mavlink.CmdRequestCameraSettings, mavlink.ResultFailed)
}

func TestAddressing(t *testing.T) {
	s, conn := newTestServer()
	s.AddCamera(newTestCamera("X1"))

	cmd := command(mavlink.CmdRequestCameraInformation, 100, 1)
	cmd.TargetSystem = 2
	s.HandleDatagram(gcsAddr, encode(t, cmd))

	s.HandleDatagram(gcsAddr, encode(t, command(mavlink.CmdRequestCameraInformation, 1, 1)))
	s.HandleDatagram(gcsAddr, encode(t, command(mavlink.CmdRequestCameraInformation, InvalidID, 1)))

	require.Empty(t, conn.messages(t))
}

func TestUnhandledCommand(t *testing.T) {
	s, conn := newTestServer()
	s.AddCamera(newTestCamera("X1"))

	var buf bytes.Buffer
	s.Log = zerolog.New(&buf).Level(zerolog.DebugLevel)

	s.HandleDatagram(gcsAddr, encode(t, command(mavlink.CmdVideoStartStreaming, 100, 1)))
	s.HandleDatagram(gcsAddr, encode(t, command(mavlink.CmdStorageFormat, 100, 1)))
	s.HandleDatagram(gcsAddr, encode(t, command(31000, 100, 1)))

	require.Empty(t, conn.messages(t))
	require.Contains(t, buf.String(), "command VIDEO_START_STREAMING unhandled")
	require.Contains(t, buf.String(), "command STORAGE_FORMAT unhandled")
	require.Contains(t, buf.String(), "command 31000 unhandled")
}

func TestSendFailureSkipsAck(t *testing.T) {
	s, conn := newTestServer()
	s.AddCamera(newTestCamera("X1"))

	conn.failWrites = 1
	s.HandleDatagram(gcsAddr, encode(t, command(mavlink.CmdRequestCameraInformation, 100, 1)))

	require.Equal(t, 1, conn.attempts)
	require.Empty(t, conn.messages(t))
}

func TestCameraSettings(t *testing.T) {
	s, conn := newTestServer()
	cam := newTestCamera("X1")
	s.AddCamera(cam)

	require.True(t, cam.SetParam(camera.ParamCameraMode, camera.Uint32(camera.ModeStill), camera.ParamTypeUint32))

	s.HandleDatagram(gcsAddr, encode(t, command(mavlink.CmdRequestCameraSettings, 100, 1)))

	items := conn.messages(t)
	require.Len(t, items, 2)

	settings, ok := items[0].msg.(*mavlink.CameraSettings)
	require.True(t, ok)
	require.Equal(t, byte(camera.ModeStill), settings.ModeID)

	requireAck(t, items[1], mavlink.CmdRequestCameraSettings, mavlink.ResultAccepted)
}

type storageCamera struct {
	*testCamera
}

func (c *storageCamera) Storage() camera.Storage {
	return camera.Storage{ID: 1, Count: 1, Status: camera.StorageReady, Total: 1024, Used: 24, Available: 1000}
}

func TestStorageInformation(t *testing.T) {
	s, conn := newTestServer()
	s.AddCamera(newTestCamera("X1"))
	s.AddCamera(&storageCamera{newTestCamera("X2")})

	s.HandleDatagram(gcsAddr, encode(t, command(mavlink.CmdRequestStorageInformation, 100, 1)))
	s.HandleDatagram(gcsAddr, encode(t, command(mavlink.CmdRequestStorageInformation, 101, 1)))

	items := conn.messages(t)
	require.Len(t, items, 4)

	storage := items[0].msg.(*mavlink.StorageInformation)
	require.Equal(t, camera.DefaultStorage.Total, storage.TotalCapacity)
	require.Equal(t, byte(camera.StorageReady), storage.Status)

	storage = items[2].msg.(*mavlink.StorageInformation)
	require.Equal(t, float32(1024), storage.TotalCapacity)
	require.Equal(t, float32(24), storage.UsedCapacity)
	require.Equal(t, byte(101), items[2].frame.CompID)
}

func TestVideoStreamInformation(t *testing.T) {
	s, conn := newTestServer()
	s.AddCamera(newTestCamera("X1"))

	s.HandleDatagram(gcsAddr, encode(t, mavlink.Message(&mavlink.SetVideoStreamSettings{CameraID: 2, ResolutionH: 320, ResolutionV: 240})))
	s.HandleDatagram(gcsAddr, encode(t, command(mavlink.CmdRequestVideoStreamInformation, 100, 0, 1)))

	items := conn.messages(t)
	require.Len(t, items, 3)

	vsi := items[0].msg.(*mavlink.VideoStreamInformation)
	require.Equal(t, byte(1), vsi.StreamID)
	require.Equal(t, byte(2), vsi.Count)
	require.Equal(t, uint16(mavlink.VideoStreamFlagRunning), vsi.Flags)
	require.Equal(t, uint16(1280), vsi.ResolutionH)
	require.Equal(t, "front", vsi.Name)
	require.Equal(t, "rtsp://10.0.0.2:8554/front?width=1280&height=720", vsi.URI)

	vsi = items[1].msg.(*mavlink.VideoStreamInformation)
	require.Equal(t, byte(2), vsi.StreamID)
	require.Zero(t, vsi.Flags)
	require.Equal(t, "rtsp://10.0.0.2:8554/down?width=320&height=240", vsi.URI)

	requireAck(t, items[2], mavlink.CmdRequestVideoStreamInformation, mavlink.ResultAccepted)
}

func TestVideoStreamInformationOne(t *testing.T) {
	s, conn := newTestServer()

	s.HandleDatagram(gcsAddr, encode(t, command(mavlink.CmdRequestVideoStreamInformation, 100, 2, 1)))
	s.HandleDatagram(gcsAddr, encode(t, command(mavlink.CmdRequestVideoStreamInformation, 100, 9, 1)))
	s.HandleDatagram(gcsAddr, encode(t, command(mavlink.CmdRequestVideoStreamInformation, 100, 0, 0)))

	items := conn.messages(t)
	require.Len(t, items, 4)

	vsi := items[0].msg.(*mavlink.VideoStreamInformation)
	require.Equal(t, byte(2), vsi.StreamID)
	require.True(t, strings.HasSuffix(vsi.URI, "/down?width=800&height=600"))
	require.Equal(t, byte(mavlink.CompIDCamera), items[0].frame.CompID)

	requireAck(t, items[1], mavlink.CmdRequestVideoStreamInformation, mavlink.ResultAccepted)
	// unknown stream
	requireAck(t, items[2], mavlink.CmdRequestVideoStreamInformation, mavlink.ResultFailed)
	// action is not "send"
	requireAck(t, items[3], mavlink.CmdRequestVideoStreamInformation, mavlink.ResultAccepted)
}

func TestSetVideoStreamSettings(t *testing.T) {
	s, conn := newTestServer()

	s.HandleDatagram(gcsAddr, encode(t, &mavlink.SetVideoStreamSettings{CameraID: 1, ResolutionH: 1000, ResolutionV: 700}))

	status := s.Status()
	require.Equal(t, camera.FrameSize{Width: 640, Height: 480}, *status.Streams[0].Selected)

	s.HandleDatagram(gcsAddr, encode(t, &mavlink.SetVideoStreamSettings{CameraID: 1, ResolutionH: 0, ResolutionV: 700}))
	require.Nil(t, s.Status().Streams[0].Selected)
	require.Equal(t, camera.FrameSize{Width: 1280, Height: 720}, *s.Status().Streams[0].Resolved)

	// unknown stream is ignored
	s.HandleDatagram(gcsAddr, encode(t, &mavlink.SetVideoStreamSettings{CameraID: 7, ResolutionH: 640, ResolutionV: 480}))

	require.Empty(t, conn.messages(t))
}

func TestParamExtRead(t *testing.T) {
	s, conn := newTestServer()
	s.AddCamera(newTestCamera("X1"))

	read := func(comp byte, name string) {
		s.HandleDatagram(gcsAddr, encode(t, &mavlink.ParamExtRequestRead{
			TargetSystem: 1, TargetComponent: comp, ParamID: mavlink.NewParamID(name), ParamIndex: -1,
		}))
	}

	read(100, camera.ParamBrightness)
	read(100, "zoom")
	read(101, camera.ParamBrightness)

	items := conn.messages(t)
	require.Len(t, items, 2)

	value := items[0].msg.(*mavlink.ParamExtValue)
	require.Equal(t, uint16(1), value.ParamCount)
	require.Equal(t, uint16(0), value.ParamIndex)
	require.Equal(t, camera.ParamBrightness, value.ParamID.String())
	require.Equal(t, byte(camera.ParamTypeUint32), value.ParamType)
	require.Equal(t, uint32(128), camera.GetUint32(value.ParamValue[:4]))
	require.Equal(t, byte(100), items[0].frame.CompID)

	ack := items[1].msg.(*mavlink.ParamExtAck)
	require.Equal(t, "zoom", ack.ParamID.String())
	require.Equal(t, byte(mavlink.ParamAckFailed), ack.ParamResult)
}

func TestParamExtList(t *testing.T) {
	s, conn := newTestServer()
	cam := newTestCamera("X1")
	s.AddCamera(cam)

	s.HandleDatagram(gcsAddr, encode(t, &mavlink.ParamExtRequestList{TargetSystem: 1, TargetComponent: 100}))
	s.HandleDatagram(gcsAddr, encode(t, &mavlink.ParamExtRequestList{TargetSystem: 1, TargetComponent: 105}))

	items := conn.messages(t)
	params := cam.ListParams()
	require.Len(t, items, len(params))

	for i, item := range items {
		value := item.msg.(*mavlink.ParamExtValue)
		require.Equal(t, uint16(len(params)), value.ParamCount)
		require.Equal(t, uint16(i), value.ParamIndex)

		expected, ok := params[value.ParamID.String()]
		require.True(t, ok)
		require.Equal(t, expected, value.ParamValue[:len(expected)])
		require.Equal(t, byte(cam.ParamType(value.ParamID.String())), value.ParamType)
	}
}

func TestParamExtListSendFailure(t *testing.T) {
	s, conn := newTestServer()
	cam := newTestCamera("X1")
	s.AddCamera(cam)

	conn.failWrites = 2
	s.HandleDatagram(gcsAddr, encode(t, &mavlink.ParamExtRequestList{TargetSystem: 1, TargetComponent: 100}))

	total := len(cam.ListParams())
	require.Equal(t, total, conn.attempts)

	items := conn.messages(t)
	require.Len(t, items, total-2)
	require.Equal(t, uint16(2), items[0].msg.(*mavlink.ParamExtValue).ParamIndex)
}

func TestParamExtSet(t *testing.T) {
	s, conn := newTestServer()
	cam := newTestCamera("X1")
	s.AddCamera(cam)

	set := func(name string, value []byte, typ camera.ParamType) {
		s.HandleDatagram(gcsAddr, encode(t, &mavlink.ParamExtSet{
			TargetSystem:    1,
			TargetComponent: 100,
			ParamID:         mavlink.NewParamID(name),
			ParamValue:      mavlink.NewParamValue(value),
			ParamType:       byte(typ),
		}))
	}

	set(camera.ParamContrast, camera.Uint32(50), camera.ParamTypeUint32)
	// wrong type is rejected with value in effect
	set(camera.ParamContrast, camera.Int32(-1), camera.ParamTypeInt32)
	set("zoom", camera.Uint32(2), camera.ParamTypeUint32)

	items := conn.messages(t)
	require.Len(t, items, 3)

	ack := items[0].msg.(*mavlink.ParamExtAck)
	require.Equal(t, byte(mavlink.ParamAckAccepted), ack.ParamResult)
	require.Equal(t, uint32(50), camera.GetUint32(ack.ParamValue[:4]))

	v, _ := cam.GetParam(camera.ParamContrast)
	require.Equal(t, uint32(50), camera.GetUint32(v))

	ack = items[1].msg.(*mavlink.ParamExtAck)
	require.Equal(t, byte(mavlink.ParamAckFailed), ack.ParamResult)
	require.Equal(t, byte(camera.ParamTypeInt32), ack.ParamType)
	require.Equal(t, uint32(50), camera.GetUint32(ack.ParamValue[:4]))

	ack = items[2].msg.(*mavlink.ParamExtAck)
	require.Equal(t, "zoom", ack.ParamID.String())
	require.Equal(t, byte(mavlink.ParamAckFailed), ack.ParamResult)
	require.Equal(t, mavlink.ParamValue{}, ack.ParamValue)
}

func TestParamExtUnbound(t *testing.T) {
	s, conn := newTestServer()

	s.HandleDatagram(gcsAddr, encode(t, &mavlink.ParamExtSet{TargetComponent: 100, ParamID: mavlink.NewParamID("gain")}))
	s.HandleDatagram(gcsAddr, encode(t, &mavlink.ParamExtRequestRead{TargetComponent: 100, ParamID: mavlink.NewParamID("gain")}))
	s.HandleDatagram(gcsAddr, encode(t, &mavlink.ParamExtRequestList{TargetComponent: 100}))

	require.Empty(t, conn.messages(t))
}

func TestHeartbeat(t *testing.T) {
	s, conn := newTestServer()
	s.AddCamera(newTestCamera("X1"))
	s.AddCamera(newTestCamera("X2"))
	s.AddCamera(newTestCamera("X3"))
	s.RemoveCamera(s.Camera(101))

	conn.failWrites = 1

	const ticks = 3
	for i := 0; i < ticks; i++ {
		s.Heartbeat()
	}

	require.Equal(t, 2*ticks, conn.attempts)

	items := conn.messages(t)
	require.Len(t, items, 2*ticks-1)

	// first send of first tick failed, the second component is still covered
	require.Equal(t, byte(102), items[0].frame.CompID)
	require.Equal(t, byte(100), items[1].frame.CompID)

	for _, item := range items {
		hb := item.msg.(*mavlink.Heartbeat)
		require.Equal(t, byte(mavlink.StateActive), hb.SystemStatus)
		require.Equal(t, byte(mavlink.AutopilotInvalid), hb.Autopilot)
		require.Equal(t, broadcastAddr, item.addr)
	}
}

func TestGarbageAndSplit(t *testing.T) {
	s, conn := newTestServer()
	s.AddCamera(newTestCamera("X1"))

	b := encode(t, command(mavlink.CmdRequestCameraInformation, 100, 1))
	b2 := encode(t, command(mavlink.CmdRequestCameraSettings, 100, 1))

	corrupted := append([]byte(nil), b...)
	corrupted[len(corrupted)-1] ^= 0xFF

	data := append([]byte{0x00, 0x12, 0x34}, corrupted...)
	data = append(data, b...)
	data = append(data, b2...)

	s.HandleDatagram(gcsAddr, data[:20])
	s.HandleDatagram(gcsAddr, data[20:])

	items := conn.messages(t)
	require.Len(t, items, 4)
	require.IsType(t, &mavlink.CameraInformation{}, items[0].msg)
	require.IsType(t, &mavlink.CameraSettings{}, items[2].msg)
}

func TestPartialFramePerSender(t *testing.T) {
	s, conn := newTestServer()
	s.AddCamera(newTestCamera("X1"))

	other := &net.UDPAddr{IP: net.IPv4(192, 168, 1, 66), Port: 14550}

	// start of a frame from another peer must not swallow gcs requests
	s.HandleDatagram(other, []byte{0xFD, 0xFF, 0x00})
	s.HandleDatagram(gcsAddr, encode(t, command(mavlink.CmdRequestCameraInformation, 100, 1)))

	items := conn.messages(t)
	require.Len(t, items, 2)
	for _, item := range items {
		require.Equal(t, gcsAddr.String(), item.addr.String())
	}
	require.IsType(t, &mavlink.CameraInformation{}, items[0].msg)
	requireAck(t, items[1], mavlink.CmdRequestCameraInformation, mavlink.ResultAccepted)

	// the rest of the other peer frame completes nothing
	s.HandleDatagram(other, make([]byte, 40))
	require.Len(t, conn.messages(t), 2)

	// complete frames empty the pending state of gcs
	s.mu.Lock()
	_, ok := s.parsers[gcsAddr.String()]
	s.mu.Unlock()
	require.False(t, ok)
}

func TestListen(t *testing.T) {
	s, _ := newTestServer()
	s.AddCamera(newTestCamera("X1"))

	var events []string
	cancel := s.Listen(func(e *Event) {
		events = append(events, e.Type)
	})

	s.HandleDatagram(gcsAddr, encode(t, command(mavlink.CmdRequestCameraInformation, 100, 0)))
	require.Equal(t, []string{EventRecv, EventSend}, events)

	cancel()
	s.Heartbeat()
	require.Len(t, events, 2)
}

func TestServe(t *testing.T) {
	s, conn := newTestServer()
	s.AddCamera(newTestCamera("X1"))

	done := make(chan error)
	go func() {
		done <- s.Serve(10 * time.Millisecond)
	}()

	conn.reads <- packet{addr: gcsAddr, data: encode(t, command(mavlink.CmdRequestCameraInformation, 100, 0))}

	require.Eventually(t, func() bool {
		var acks, heartbeats int
		for _, item := range conn.messages(t) {
			switch item.msg.(type) {
			case *mavlink.CommandAck:
				acks++
			case *mavlink.Heartbeat:
				heartbeats++
			}
		}
		return acks == 1 && heartbeats > 0
	}, time.Second, 10*time.Millisecond)

	require.Nil(t, s.Close())
	require.Nil(t, <-done)
}
