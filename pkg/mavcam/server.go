package mavcam

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/camstreamd/camstreamd/pkg/camera"
	"github.com/camstreamd/camstreamd/pkg/mavlink"
	"github.com/rs/zerolog"
)

const (
	DefaultPort              = 14550
	DefaultSystemID          = 1
	DefaultComponentID       = mavlink.CompIDCamera
	DefaultBroadcast         = "255.255.255.255"
	DefaultHeartbeatInterval = time.Second
)

// URIBuilder - media server that serves stream bytes and knows its URIs
type URIBuilder interface {
	BuildURI(serverAddr string, stream *camera.Stream, query string) string
}

type Config struct {
	SystemID    byte
	ComponentID byte
	Broadcast   net.Addr
	ServerAddr  string // media server host for stream URIs
}

// ValidID checks system and component id from config
func ValidID(id int) bool {
	return id > 1 && id < 255
}

// Server - MAVLink camera protocol server. All handlers run under one lock,
// so datagrams and heartbeat ticks are processed one at a time.
type Server struct {
	Log zerolog.Logger

	conn    net.PacketConn
	cfg     Config
	streams []*camera.Stream
	uris    URIBuilder

	cameras [CameraCount]camera.Component
	parsers map[string]*mavlink.Parser
	seq     byte
	start   time.Time

	events  map[int]EventFunc
	eventID int

	mu sync.Mutex
}

func New(conn net.PacketConn, cfg Config, streams []*camera.Stream, uris URIBuilder) *Server {
	if !ValidID(int(cfg.SystemID)) {
		cfg.SystemID = DefaultSystemID
	}
	if !ValidID(int(cfg.ComponentID)) {
		cfg.ComponentID = DefaultComponentID
	}

	return &Server{
		Log:     zerolog.Nop(),
		conn:    conn,
		cfg:     cfg,
		streams: streams,
		uris:    uris,
		start:   time.Now(),
	}
}

func (s *Server) Config() Config {
	return s.cfg
}

// Serve reads datagrams and sends heartbeats until the connection is closed
func (s *Server) Serve(interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}

	type packet struct {
		addr net.Addr
		data []byte
	}

	packets := make(chan packet, 16)
	errs := make(chan error, 1)

	go func() {
		defer close(packets)

		b := make([]byte, 64*1024)
		for {
			n, addr, err := s.conn.ReadFrom(b)
			if err != nil {
				errs <- err
				return
			}
			packets <- packet{addr: addr, data: append([]byte(nil), b[:n]...)}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case p, ok := <-packets:
			if !ok {
				if err := <-errs; !errors.Is(err, net.ErrClosed) {
					return err
				}
				return nil
			}
			s.HandleDatagram(p.addr, p.data)
		case <-ticker.C:
			s.Heartbeat()
		}
	}
}

func (s *Server) Close() error {
	return s.conn.Close()
}

// maxPeers - limit of senders with incomplete frame kept between datagrams
const maxPeers = 64

// HandleDatagram feeds bytes into the parser of this sender and handles every
// complete message. Part of frame waits for the next datagram of the same sender.
func (s *Server) HandleDatagram(addr net.Addr, b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var key string
	if addr != nil {
		key = addr.String()
	}

	p := s.parsers[key]
	if p == nil {
		if s.parsers == nil {
			s.parsers = map[string]*mavlink.Parser{}
		} else if len(s.parsers) >= maxPeers {
			s.Log.Debug().Str("addr", key).Msg("[mavlink] too many peers, drop pending bytes")
			s.parsers = map[string]*mavlink.Parser{}
		}
		p = &mavlink.Parser{}
		s.parsers[key] = p
	}

	_, _ = p.Write(b)

	for {
		f, ok := p.Next()
		if !ok {
			break
		}
		s.handleFrame(addr, f)
	}

	if p.Buffered() == 0 {
		delete(s.parsers, key)
	}
}

type request struct {
	addr   net.Addr
	sysID  byte
	compID byte
}

func (s *Server) handleFrame(addr net.Addr, f *mavlink.Frame) {
	msg, err := mavlink.Unmarshal(f)
	if err != nil {
		s.Log.Trace().Err(err).Stringer("frame", f).Msg("[mavlink] skip")
		return
	}

	s.fire(&Event{Type: EventRecv, Addr: addr, Frame: f, Message: msg})

	req := &request{addr: addr, sysID: f.SysID, compID: f.CompID}

	switch msg := msg.(type) {
	case *mavlink.CommandLong:
		s.handleCommand(req, msg)
	case *mavlink.SetVideoStreamSettings:
		s.handleSetVideoStreamSettings(msg)
	case *mavlink.ParamExtRequestRead:
		s.handleParamExtRequestRead(req, msg)
	case *mavlink.ParamExtRequestList:
		s.handleParamExtRequestList(req, msg)
	case *mavlink.ParamExtSet:
		s.handleParamExtSet(req, msg)
	}
}

// send unicast message to addr or broadcast it when addr is nil
func (s *Server) send(addr net.Addr, compID byte, msg mavlink.Message) bool {
	f := mavlink.NewFrame(s.cfg.SystemID, compID, s.seq, msg)
	s.seq++

	b, err := mavlink.Encode(f)
	if err != nil {
		s.Log.Error().Err(err).Uint32("msg", f.MsgID).Msg("[mavlink] encode")
		return false
	}

	if addr == nil {
		if addr = s.cfg.Broadcast; addr == nil {
			s.Log.Error().Uint32("msg", f.MsgID).Msg("[mavlink] no broadcast address")
			return false
		}
	}

	if _, err = s.conn.WriteTo(b, addr); err != nil {
		s.Log.Error().Err(err).Uint32("msg", f.MsgID).Str("addr", addr.String()).Msg("[mavlink] send")
		return false
	}

	s.fire(&Event{Type: EventSend, Addr: addr, Frame: f, Message: msg})

	return true
}

func (s *Server) uptime() uint32 {
	return uint32(time.Since(s.start).Milliseconds())
}

type CameraStatus struct {
	ID   byte        `json:"id"`
	Info camera.Info `json:"info"`
}

type StreamStatus struct {
	*camera.Stream
	Resolved *camera.FrameSize `json:"resolved,omitempty"`
}

type Status struct {
	SystemID    byte           `json:"system_id"`
	ComponentID byte           `json:"component_id"`
	Cameras     []CameraStatus `json:"cameras"`
	Streams     []StreamStatus `json:"streams"`
}

// Status returns copy of registry and stream selections
func (s *Server) Status() *Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := &Status{
		SystemID:    s.cfg.SystemID,
		ComponentID: s.cfg.ComponentID,
		Cameras:     []CameraStatus{},
		Streams:     []StreamStatus{},
	}

	for i, c := range s.cameras {
		if c != nil {
			status.Cameras = append(status.Cameras, CameraStatus{ID: byte(mavlink.CompIDCamera + i), Info: c.Info()})
		}
	}

	for _, stream := range s.streams {
		clone := *stream
		if stream.Selected != nil {
			selected := *stream.Selected
			clone.Selected = &selected
		}
		status.Streams = append(status.Streams, StreamStatus{Stream: &clone, Resolved: clone.Resolved()})
	}

	return status
}
