//go:build !windows

package main

import (
	"github.com/camstreamd/camstreamd/internal/app"
	daemon "github.com/sevlyar/go-daemon"
)

// daemonize restarts process in background, returns child=false in the parent
func daemonize() (release func(), child bool) {
	ctx := &daemon.Context{
		PidFileName: app.PidFile,
		PidFilePerm: 0644,
		WorkDir:     "./",
		Umask:       027,
	}

	d, err := ctx.Reborn()
	if err != nil {
		app.Logger.Fatal().Err(err).Msg("[app] daemon")
	}

	if d != nil {
		app.Logger.Info().Int("pid", d.Pid).Msg("[app] daemon started")
		return nil, false
	}

	return func() { _ = ctx.Release() }, true
}
