package app

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Logger - root logger, modules take a copy with own level from GetLogger
var Logger zerolog.Logger

// MemoryLog keeps the tail of the log for api/log
var MemoryLog = newMemoryLog(1 << 20)

// modules levels and output options, all from the `log` config section
var modules = map[string]string{
	"level":  "info",
	"output": "stderr",
	"time":   zerolog.TimeFormatUnixMs,
}

func GetLogger(module string) zerolog.Logger {
	s, ok := modules[module]
	if !ok {
		return Logger
	}

	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		Logger.Warn().Err(err).Str("module", module).Msg("[app] log level")
		return Logger
	}

	return Logger.Level(lvl)
}

func initLogger() {
	var cfg struct {
		Mod map[string]string `yaml:"log"`
	}

	cfg.Mod = modules

	LoadConfig(&cfg)

	Logger = newLogger(modules, MemoryLog)
}

// newLogger options:
// - output: stderr, stdout, empty (only to memory)
// - format: json, text, color, empty (autodetect color support)
// - time:   zerolog time format, empty disables timestamp
// - level:  trace, debug, info, warn, error, disabled...
func newLogger(opts map[string]string, memory io.Writer) zerolog.Logger {
	var out *os.File

	switch opts["output"] {
	case "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	}

	w := memory
	if out != nil {
		w = zerolog.MultiLevelWriter(consoleWriter(out, opts["format"], opts["time"] != ""), memory)
	}

	lvl, err := zerolog.ParseLevel(opts["level"])
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	logger := zerolog.New(w).Level(lvl)

	if format := opts["time"]; format != "" {
		zerolog.TimeFieldFormat = format
		logger = logger.With().Timestamp().Logger()
	}

	return logger
}

func consoleWriter(out *os.File, format string, withTime bool) io.Writer {
	if format == "json" {
		return out
	}

	console := &zerolog.ConsoleWriter{Out: out, NoColor: format == "text"}
	if format == "" {
		console.NoColor = !isatty.IsTerminal(out.Fd())
	}

	if withTime {
		console.TimeFormat = "15:04:05.000"
	} else {
		console.PartsOrder = []string{
			zerolog.LevelFieldName,
			zerolog.CallerFieldName,
			zerolog.MessageFieldName,
		}
	}

	return console
}

// memoryLog - last log lines up to limit bytes, oldest lines go first.
// zerolog calls Write once per event, so one Write is one line.
type memoryLog struct {
	lines [][]byte
	size  int
	limit int
	mu    sync.Mutex
}

func newMemoryLog(limit int) *memoryLog {
	return &memoryLog{limit: limit}
}

func (m *memoryLog) Write(p []byte) (int, error) {
	// zerolog reuses event buffers
	line := append([]byte(nil), p...)

	m.mu.Lock()
	m.lines = append(m.lines, line)
	m.size += len(line)
	for m.size > m.limit && len(m.lines) > 1 {
		m.size -= len(m.lines[0])
		m.lines[0] = nil
		m.lines = m.lines[1:]
	}
	m.mu.Unlock()

	return len(p), nil
}

func (m *memoryLog) WriteTo(w io.Writer) (n int64, err error) {
	m.mu.Lock()
	lines := m.lines
	m.mu.Unlock()

	for _, line := range lines {
		nn, err := w.Write(line)
		n += int64(nn)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func (m *memoryLog) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := make([]byte, 0, m.size)
	for _, line := range m.lines {
		b = append(b, line...)
	}
	return b
}

func (m *memoryLog) Reset() {
	m.mu.Lock()
	m.lines = nil
	m.size = 0
	m.mu.Unlock()
}
