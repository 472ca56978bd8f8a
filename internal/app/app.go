package app

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
)

var Version = "0.3.0"
var UserAgent = "camstreamd/" + Version

var ConfigPath string
var Info = map[string]any{
	"version": Version,
}

// Daemon mode is handled by main, app only parses flags
var (
	Daemon  bool
	PidFile string
)

func Init() {
	var confs flagConfig
	var version bool

	flag.Var(&confs, "config", "camstreamd config (path to file or raw text), support multiple")
	if runtime.GOOS != "windows" {
		flag.BoolVar(&Daemon, "daemon", false, "Run program in background")
		flag.StringVar(&PidFile, "pidfile", "", "PID file path for daemon mode")
	}
	flag.BoolVar(&version, "version", false, "Print the version of the application and exit")
	flag.Parse()

	revision, vcsTime := readRevision()

	if version {
		fmt.Printf("camstreamd version %s (%s) %s/%s %s\n", Version, revision, runtime.GOOS, runtime.GOARCH, vcsTime)
		os.Exit(0)
	}

	initConfig(confs)
	initLogger()

	platform := fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
	Logger.Info().Str("version", Version).Str("platform", platform).Str("revision", revision).Msg("camstreamd")
	Logger.Debug().Str("version", runtime.Version()).Msg("build")

	if ConfigPath != "" {
		Logger.Info().Str("path", ConfigPath).Msg("config")
	}

	Info["revision"] = revision
}

func readRevision() (revision, vcsTime string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev", ""
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if len(setting.Value) > 7 {
				revision = setting.Value[:7]
			} else {
				revision = setting.Value
			}
		case "vcs.time":
			vcsTime = setting.Value
		}
	}

	if revision == "" {
		revision = "dev"
	}

	return
}
