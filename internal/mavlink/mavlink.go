package mavlink

import (
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/camstreamd/camstreamd/internal/api"
	"github.com/camstreamd/camstreamd/internal/api/ws"
	"github.com/camstreamd/camstreamd/internal/app"
	"github.com/camstreamd/camstreamd/internal/camera"
	"github.com/camstreamd/camstreamd/internal/rtsp"
	"github.com/camstreamd/camstreamd/pkg/mavcam"
	"github.com/rs/zerolog"
)

type Config struct {
	Port              int    `yaml:"port" json:"port"`
	SystemID          int    `yaml:"system_id" json:"system_id"`
	ComponentID       int    `yaml:"component_id" json:"component_id"`
	BroadcastAddr     string `yaml:"broadcast_addr" json:"broadcast_addr"`
	RTSPServerAddr    string `yaml:"rtsp_server_addr" json:"rtsp_server_addr"`
	HeartbeatInterval int    `yaml:"heartbeat_interval" json:"heartbeat_interval"` // ms
}

func Init() {
	var cfg struct {
		Mod Config `yaml:"mavlink"`
	}

	// default config
	cfg.Mod = Config{
		Port:              mavcam.DefaultPort,
		BroadcastAddr:     mavcam.DefaultBroadcast,
		HeartbeatInterval: int(mavcam.DefaultHeartbeatInterval / time.Millisecond),
	}

	app.LoadConfig(&cfg)

	log = app.GetLogger("mavlink")

	if cfg.Mod.Port == 0 {
		return
	}

	conf, err := cfg.Mod.Validate()
	if err != nil {
		log.Error().Err(err).Msg("[mavlink] config")
	}

	app.Info["mavlink"] = cfg.Mod

	conn, err := net.ListenPacket("udp4", ":"+strconv.Itoa(cfg.Mod.Port))
	if err != nil {
		log.Error().Err(err).Msg("[mavlink] listen")
		return
	}

	log.Info().Str("addr", conn.LocalAddr().String()).Msg("[mavlink] listen")

	settings = &cfg.Mod

	srv = mavcam.New(conn, conf, camera.Streams(), rtsp.URIs{})
	srv.Log = log

	for _, cam := range camera.Cameras() {
		id := srv.AddCamera(cam.Source)
		if id == mavcam.InvalidID {
			log.Error().Err(mavcam.ErrRegistryFull).Msgf("[mavlink] add camera %s", cam.Name)
			continue
		}
		log.Info().Uint8("comp", id).Msgf("[mavlink] add camera %s", cam.Name)
	}

	if log.Trace().Enabled() {
		srv.Listen(traceEvent)
	}

	api.HandleFunc("api/mavlink", apiMAVLink)
	ws.HandleFunc("mavlink", wsMAVLink)

	interval := time.Duration(cfg.Mod.HeartbeatInterval) * time.Millisecond

	go func() {
		if err := srv.Serve(interval); err != nil {
			log.Error().Err(err).Msg("[mavlink] serve")
		}
	}()
}

// Settings returns validated config or nil when server disabled
func Settings() *Config {
	return settings
}

// Close stops the server, cameras are not closed here
func Close() {
	if srv != nil {
		_ = srv.Close()
	}
}

var ErrConfig = errors.New("mavlink: wrong config value")

// Validate returns server config, wrong values replaced with defaults
// and reported with ErrConfig. Zero ids mean not set.
func (c *Config) Validate() (mavcam.Config, error) {
	var err error

	if c.SystemID == 0 {
		c.SystemID = mavcam.DefaultSystemID
	} else if !mavcam.ValidID(c.SystemID) {
		err = errors.Join(err, wrongValue("system_id", c.SystemID))
		c.SystemID = mavcam.DefaultSystemID
	}

	if c.ComponentID == 0 {
		c.ComponentID = mavcam.DefaultComponentID
	} else if !mavcam.ValidID(c.ComponentID) {
		err = errors.Join(err, wrongValue("component_id", c.ComponentID))
		c.ComponentID = mavcam.DefaultComponentID
	}

	ip := net.ParseIP(c.BroadcastAddr).To4()
	if ip == nil {
		err = errors.Join(err, wrongValue("broadcast_addr", c.BroadcastAddr))
		c.BroadcastAddr = mavcam.DefaultBroadcast
		ip = net.ParseIP(c.BroadcastAddr).To4()
	}

	if c.HeartbeatInterval <= 0 {
		err = errors.Join(err, wrongValue("heartbeat_interval", c.HeartbeatInterval))
		c.HeartbeatInterval = int(mavcam.DefaultHeartbeatInterval / time.Millisecond)
	}

	return mavcam.Config{
		SystemID:    byte(c.SystemID),
		ComponentID: byte(c.ComponentID),
		Broadcast:   &net.UDPAddr{IP: ip, Port: c.Port},
		ServerAddr:  c.RTSPServerAddr,
	}, err
}

func wrongValue(name string, value any) error {
	return &configError{name: name, value: value}
}

type configError struct {
	name  string
	value any
}

func (e *configError) Error() string {
	return ErrConfig.Error() + ": " + e.name + "=" + toString(e.value)
}

func (e *configError) Unwrap() error {
	return ErrConfig
}

func toString(v any) string {
	switch v := v.(type) {
	case int:
		return strconv.Itoa(v)
	case string:
		return strconv.Quote(v)
	}
	return "?"
}

var log zerolog.Logger
var srv *mavcam.Server
var settings *Config

func traceEvent(e *mavcam.Event) {
	log.Trace().Str("addr", e.Addr.String()).Stringer("frame", e.Frame).
		Msgf("[mavlink] %s %s", e.Type, messageName(e))
}
