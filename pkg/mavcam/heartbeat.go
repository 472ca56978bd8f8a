package mavcam

import "github.com/camstreamd/camstreamd/pkg/mavlink"

// Heartbeat broadcasts one HEARTBEAT per bound camera component
func (s *Server) Heartbeat() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.cameras {
		if c == nil {
			continue
		}

		msg := &mavlink.Heartbeat{
			Type:           mavlink.TypeGeneric,
			Autopilot:      mavlink.AutopilotInvalid,
			BaseMode:       mavlink.ModePreflight,
			SystemStatus:   mavlink.StateActive,
			MavlinkVersion: mavlink.ProtocolVersionV2,
		}

		compID := byte(mavlink.CompIDCamera + i)
		if !s.send(nil, compID, msg) {
			s.Log.Error().Msgf("[mavlink] sending heartbeat failed for camera %d", compID)
		}
	}
}
