package mdns

import (
	"os"
	"strconv"

	"github.com/camstreamd/camstreamd/internal/app"
	"github.com/camstreamd/camstreamd/internal/mavlink"
	"github.com/camstreamd/camstreamd/internal/rtsp"
	"github.com/camstreamd/camstreamd/pkg/mdns"
	"github.com/rs/zerolog"
)

func Init() {
	var cfg struct {
		Mod struct {
			Disabled bool   `yaml:"disabled"`
			Name     string `yaml:"name"`
		} `yaml:"mdns"`
	}

	cfg.Mod.Name, _ = os.Hostname()

	app.LoadConfig(&cfg)

	log = app.GetLogger("mdns")

	conf := mavlink.Settings()
	if cfg.Mod.Disabled || conf == nil {
		return
	}

	entry := NewEntry(cfg.Mod.Name, conf)

	server = &mdns.Server{Service: mdns.ServiceMAVLink}
	if err := server.ListenMulticastUDP(); err != nil {
		log.Error().Err(err).Msg("[mdns] listen")
		server = nil
		return
	}

	log.Info().Str("name", entry.Name).Strs("txt", entry.TXT()).Msg("[mdns] advertise")

	go func() {
		if err := server.Serve([]*mdns.ServiceEntry{entry}); err != nil {
			log.Error().Err(err).Msg("[mdns] serve")
		}
	}()
}

// NewEntry - MAVLink service entry, GCS reads ids and RTSP port from TXT
func NewEntry(name string, conf *mavlink.Config) *mdns.ServiceEntry {
	if name == "" {
		name = "camstreamd"
	}

	return &mdns.ServiceEntry{
		Name: name,
		Port: uint16(conf.Port),
		Info: map[string]string{
			"sysid":  strconv.Itoa(conf.SystemID),
			"compid": strconv.Itoa(conf.ComponentID),
			"rtsp":   rtsp.Port,
		},
	}
}

func Close() {
	if server != nil {
		_ = server.Close()
	}
}

var log zerolog.Logger
var server *mdns.Server
