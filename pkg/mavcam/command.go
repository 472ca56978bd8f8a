package mavcam

import (
	"fmt"
	"strconv"

	"github.com/camstreamd/camstreamd/pkg/camera"
	"github.com/camstreamd/camstreamd/pkg/mavlink"
)

func (s *Server) handleCommand(req *request, cmd *mavlink.CommandLong) {
	if cmd.TargetSystem != s.cfg.SystemID || !isCameraID(cmd.TargetComponent) {
		s.Log.Trace().Uint8("sys", cmd.TargetSystem).Uint8("comp", cmd.TargetComponent).Msg("[mavlink] command for other target")
		return
	}

	s.Log.Debug().Uint16("cmd", cmd.Command).Uint8("comp", cmd.TargetComponent).
		Msgf("[mavlink] command %s", mavlink.CommandName(cmd.Command))

	switch cmd.Command {
	case mavlink.CmdRequestCameraInformation:
		s.handleRequest(req, cmd, s.cameraInformation)
	case mavlink.CmdRequestCameraSettings:
		s.handleRequest(req, cmd, s.cameraSettings)
	case mavlink.CmdRequestStorageInformation:
		s.handleRequest(req, cmd, s.storageInformation)
	case mavlink.CmdRequestVideoStreamInformation:
		s.handleVideoStreamRequest(req, cmd)
	default:
		name := mavlink.CommandName(cmd.Command)
		if name == "" {
			name = strconv.Itoa(int(cmd.Command))
		}
		s.Log.Debug().Msgf("[mavlink] command %s unhandled, discarding", name)
	}
}

// handleRequest - common flow of REQUEST_* commands: param1 != 1 is acked without
// payload, a send failure of the payload skips the ack
func (s *Server) handleRequest(req *request, cmd *mavlink.CommandLong, build func(c camera.Component) mavlink.Message) {
	if cmd.Params[0] != 1 {
		s.sendAck(req, cmd, true)
		return
	}

	c := s.camera(cmd.TargetComponent)
	if c == nil {
		s.sendAck(req, cmd, false)
		return
	}

	if !s.send(req.addr, cmd.TargetComponent, build(c)) {
		s.Log.Error().Msgf("[mavlink] sending %s failed for camera %d", mavlink.CommandName(cmd.Command), cmd.TargetComponent)
		return
	}

	s.sendAck(req, cmd, true)
}

func (s *Server) sendAck(req *request, cmd *mavlink.CommandLong, success bool) {
	ack := &mavlink.CommandAck{
		Command:         cmd.Command,
		Result:          mavlink.ResultFailed,
		TargetSystem:    req.sysID,
		TargetComponent: req.compID,
	}
	if success {
		ack.Result = mavlink.ResultAccepted
	}

	if !s.send(req.addr, cmd.TargetComponent, ack) {
		s.Log.Error().Msg("[mavlink] sending ack failed")
	}
}

func (s *Server) cameraInformation(c camera.Component) mavlink.Message {
	info := c.Info()
	return &mavlink.CameraInformation{
		TimeBootMs:           s.uptime(),
		FirmwareVersion:      info.FirmwareVersion,
		FocalLength:          info.FocalLength,
		SensorSizeH:          info.SensorSizeH,
		SensorSizeV:          info.SensorSizeV,
		Flags:                info.Flags,
		ResolutionH:          info.ResolutionH,
		ResolutionV:          info.ResolutionV,
		CamDefinitionVersion: info.DefinitionVersion,
		VendorName:           info.Vendor,
		ModelName:            info.Model,
		LensID:               info.LensID,
		CamDefinitionURI:     info.DefinitionURI,
	}
}

func (s *Server) cameraSettings(c camera.Component) mavlink.Message {
	mode := byte(camera.ModeVideo)
	if v, ok := c.GetParam(camera.ParamCameraMode); ok {
		mode = byte(camera.GetUint32(v))
	}
	return &mavlink.CameraSettings{
		TimeBootMs: s.uptime(),
		ModeID:     mode,
	}
}

func (s *Server) storageInformation(c camera.Component) mavlink.Message {
	storage := camera.DefaultStorage
	if r, ok := c.(camera.StorageReporter); ok {
		storage = r.Storage()
	}
	return &mavlink.StorageInformation{
		TimeBootMs:        s.uptime(),
		TotalCapacity:     storage.Total,
		UsedCapacity:      storage.Used,
		AvailableCapacity: storage.Available,
		ReadSpeed:         storage.ReadSpeed,
		WriteSpeed:        storage.WriteSpeed,
		StorageID:         storage.ID,
		StorageCount:      storage.Count,
		Status:            storage.Status,
	}
}

// handleVideoStreamRequest - param1 is stream id (0 for all streams), param2 is action
func (s *Server) handleVideoStreamRequest(req *request, cmd *mavlink.CommandLong) {
	if cmd.Params[1] != 1 {
		s.sendAck(req, cmd, true)
		return
	}

	streamID := uint32(cmd.Params[0])

	var sent int

	for _, stream := range s.streams {
		if streamID != 0 && streamID != uint32(stream.ID) {
			continue
		}

		msg := &mavlink.VideoStreamInformation{
			StreamID: stream.ID,
			Count:    byte(len(s.streams)),
			Type:     mavlink.VideoStreamTypeRTSP,
			Name:     stream.Name,
		}

		if stream.IsStreaming {
			msg.Flags = mavlink.VideoStreamFlagRunning
		}

		var query string
		if fs := stream.Resolved(); fs != nil {
			msg.ResolutionH = uint16(fs.Width)
			msg.ResolutionV = uint16(fs.Height)
			query = fmt.Sprintf("?width=%d&height=%d", fs.Width, fs.Height)
		}

		if s.uris != nil {
			msg.URI = s.uris.BuildURI(s.cfg.ServerAddr, stream, query)
		}

		if !s.send(req.addr, s.cfg.ComponentID, msg) {
			s.Log.Error().Msgf("[mavlink] sending video stream information failed for stream %d", stream.ID)
			return
		}

		sent++
	}

	s.sendAck(req, cmd, sent > 0)
}

func (s *Server) handleSetVideoStreamSettings(msg *mavlink.SetVideoStreamSettings) {
	for _, stream := range s.streams {
		if stream.ID != msg.CameraID {
			continue
		}

		stream.ApplySettings(uint32(msg.ResolutionH), uint32(msg.ResolutionV))

		if stream.Selected != nil {
			s.Log.Debug().Msgf("[mavlink] stream %d selected %s", stream.ID, stream.Selected)
		} else {
			s.Log.Debug().Msgf("[mavlink] stream %d selection cleared", stream.ID)
		}
		return
	}

	s.Log.Debug().Msgf("[mavlink] SET_VIDEO_STREAM_SETTINGS for unknown stream %d", msg.CameraID)
}
