package main

import (
	"github.com/camstreamd/camstreamd/internal/api"
	"github.com/camstreamd/camstreamd/internal/api/ws"
	"github.com/camstreamd/camstreamd/internal/app"
	"github.com/camstreamd/camstreamd/internal/camera"
	"github.com/camstreamd/camstreamd/internal/mavlink"
	"github.com/camstreamd/camstreamd/internal/mdns"
	"github.com/camstreamd/camstreamd/internal/rtsp"
	"github.com/camstreamd/camstreamd/internal/v4l2"
	"github.com/camstreamd/camstreamd/pkg/shell"
)

func main() {
	app.Init() // init config and logs

	if app.Daemon {
		release, child := daemonize()
		if !child {
			return
		}
		defer release()
	}

	api.Init() // init HTTP API server
	ws.Init()  // init WS API endpoint

	v4l2.Init()   // add v4l2 camera source (before cameras load)
	camera.Init() // open cameras from config
	rtsp.Init()   // media server address for stream URIs

	mavlink.Init() // MAVLink camera protocol server
	mdns.Init()    // advertise MAVLink endpoint (depends on mavlink)

	sig := shell.RunUntilSignal()

	app.Logger.Info().Str("signal", sig.String()).Msg("[app] exit")

	mdns.Close()
	mavlink.Close()
	camera.Close()
}
