package mavcam

import (
	"errors"
	"net"

	"github.com/camstreamd/camstreamd/pkg/camera"
	"github.com/camstreamd/camstreamd/pkg/mavlink"
)

const (
	CameraCount = mavlink.CompIDCamera6 - mavlink.CompIDCamera + 1

	// InvalidID - returned by AddCamera when all camera slots are busy
	InvalidID = mavlink.CompIDCamera6 + 1
)

var ErrRegistryFull = errors.New("mavcam: all camera slots are busy")

func isCameraID(id byte) bool {
	return id >= mavlink.CompIDCamera && id <= mavlink.CompIDCamera6
}

// AddCamera binds component to the first free camera component id.
// Returns InvalidID if all slots are busy. Component must be comparable.
func (s *Server) AddCamera(c camera.Component) byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, bound := range s.cameras {
		if bound == nil {
			s.cameras[i] = c
			return byte(mavlink.CompIDCamera + i)
		}
	}

	return InvalidID
}

// RemoveCamera unbinds the first slot with this component
func (s *Server) RemoveCamera(c camera.Component) {
	if c == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, bound := range s.cameras {
		if bound == c {
			s.cameras[i] = nil
			return
		}
	}
}

// CameraID returns id of bound component or InvalidID
func (s *Server) CameraID(c camera.Component) byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, bound := range s.cameras {
		if bound != nil && bound == c {
			return byte(mavlink.CompIDCamera + i)
		}
	}
	return InvalidID
}

// Camera returns component bound to id or nil
func (s *Server) Camera(id byte) camera.Component {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera(id)
}

func (s *Server) camera(id byte) camera.Component {
	if !isCameraID(id) {
		return nil
	}
	return s.cameras[id-mavlink.CompIDCamera]
}

// EventFunc receives every decoded inbound and every sent outbound message.
// It is called with server lock held and must not block.
type EventFunc func(e *Event)

const (
	EventRecv = "recv"
	EventSend = "send"
)

type Event struct {
	Type    string
	Addr    net.Addr
	Frame   *mavlink.Frame
	Message mavlink.Message
}

// Listen subscribes to traffic events, returned func removes subscription
func (s *Server) Listen(f EventFunc) (cancel func()) {
	s.mu.Lock()
	if s.events == nil {
		s.events = map[int]EventFunc{}
	}
	id := s.eventID
	s.eventID++
	s.events[id] = f
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.events, id)
		s.mu.Unlock()
	}
}

func (s *Server) fire(e *Event) {
	for _, f := range s.events {
		f(e)
	}
}
