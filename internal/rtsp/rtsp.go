// Package rtsp knows where the RTSP server that serves camera streams
// listens. Stream bytes never pass through this daemon.
package rtsp

import (
	"net"
	"net/url"

	"github.com/camstreamd/camstreamd/internal/app"
	"github.com/camstreamd/camstreamd/pkg/camera"
	"github.com/camstreamd/camstreamd/pkg/mdns"
	"github.com/rs/zerolog"
)

func Init() {
	var conf struct {
		Mod struct {
			Listen   string `yaml:"listen" json:"listen"`
			Username string `yaml:"username" json:"-"`
			Password string `yaml:"password" json:"-"`
		} `yaml:"rtsp"`
	}

	// default config
	conf.Mod.Listen = ":8554"

	app.LoadConfig(&conf)
	app.Info["rtsp"] = conf.Mod

	log = app.GetLogger("rtsp")

	var err error
	if _, Port, err = net.SplitHostPort(conf.Mod.Listen); err != nil {
		log.Error().Err(err).Msg("[rtsp] wrong listen address")
		Port = DefaultPort
	}

	if conf.Mod.Username != "" {
		user = url.UserPassword(conf.Mod.Username, conf.Mod.Password)
	}

	log.Debug().Str("port", Port).Msg("[rtsp] media server")
}

const DefaultPort = "8554"

var Port = DefaultPort

var log zerolog.Logger
var user *url.Userinfo

// URIs - media URI provider for the MAVLink server
type URIs struct{}

func (URIs) BuildURI(serverAddr string, stream *camera.Stream, query string) string {
	return BuildURI(serverAddr, stream, query)
}

// BuildURI returns rtsp://host:port/name?query, empty or unspecified
// serverAddr is replaced with first local IPv4 address
func BuildURI(serverAddr string, stream *camera.Stream, query string) string {
	host := serverAddr
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = localIP()
	}

	u := url.URL{
		Scheme: "rtsp",
		User:   user,
		Host:   net.JoinHostPort(host, Port),
		Path:   "/" + stream.Name,
	}

	return u.String() + query
}

func localIP() string {
	nets, err := mdns.InterfacesIP4()
	if err != nil || len(nets) == 0 {
		return "127.0.0.1"
	}
	return nets[0].IP.String()
}
