package mavcam

import (
	"sort"

	"github.com/camstreamd/camstreamd/pkg/camera"
	"github.com/camstreamd/camstreamd/pkg/mavlink"
)

// PARAM_EXT messages for unbound components are dropped without reply

func (s *Server) handleParamExtRequestRead(req *request, msg *mavlink.ParamExtRequestRead) {
	c := s.camera(msg.TargetComponent)
	if c == nil {
		return
	}

	name := msg.ParamID.String()

	var reply mavlink.Message

	if value, ok := c.GetParam(name); ok {
		reply = &mavlink.ParamExtValue{
			ParamCount: 1,
			ParamIndex: 0,
			ParamID:    msg.ParamID,
			ParamValue: mavlink.NewParamValue(value),
			ParamType:  byte(c.ParamType(name)),
		}
	} else {
		reply = &mavlink.ParamExtAck{
			ParamID:     msg.ParamID,
			ParamType:   byte(c.ParamType(name)),
			ParamResult: mavlink.ParamAckFailed,
		}
	}

	if !s.send(req.addr, msg.TargetComponent, reply) {
		s.Log.Error().Msgf("[mavlink] sending param %s failed for camera %d", name, msg.TargetComponent)
	}
}

func (s *Server) handleParamExtRequestList(req *request, msg *mavlink.ParamExtRequestList) {
	c := s.camera(msg.TargetComponent)
	if c == nil {
		return
	}

	params := c.ListParams()

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		value := &mavlink.ParamExtValue{
			ParamCount: uint16(len(names)),
			ParamIndex: uint16(i),
			ParamID:    mavlink.NewParamID(name),
			ParamValue: mavlink.NewParamValue(params[name]),
			ParamType:  byte(c.ParamType(name)),
		}
		if !s.send(req.addr, msg.TargetComponent, value) {
			s.Log.Error().Msgf("[mavlink] sending param list item %d failed for camera %d", i, msg.TargetComponent)
		}
	}
}

func (s *Server) handleParamExtSet(req *request, msg *mavlink.ParamExtSet) {
	c := s.camera(msg.TargetComponent)
	if c == nil {
		return
	}

	name := msg.ParamID.String()

	ack := &mavlink.ParamExtAck{
		ParamID:   msg.ParamID,
		ParamType: msg.ParamType,
	}

	if c.SetParam(name, msg.ParamValue.Bytes(), camera.ParamType(msg.ParamType)) {
		ack.ParamValue = msg.ParamValue
		ack.ParamResult = mavlink.ParamAckAccepted
	} else {
		// peer gets the value that is actually in effect
		value, _ := c.GetParam(name)
		ack.ParamValue = mavlink.NewParamValue(value)
		ack.ParamResult = mavlink.ParamAckFailed
	}

	if !s.send(req.addr, msg.TargetComponent, ack) {
		s.Log.Error().Msgf("[mavlink] sending param %s ack failed for camera %d", name, msg.TargetComponent)
	}
}
