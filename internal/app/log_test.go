package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestMemoryLog(t *testing.T) {
	m := newMemoryLog(100)

	_, err := m.Write([]byte("hello\n"))
	require.Nil(t, err)
	_, err = m.Write([]byte("world\n"))
	require.Nil(t, err)

	require.Equal(t, "hello\nworld\n", string(m.Bytes()))

	var w bytes.Buffer
	n, err := m.WriteTo(&w)
	require.Nil(t, err)
	require.Equal(t, int64(12), n)

	m.Reset()
	require.Len(t, m.Bytes(), 0)
}

func TestMemoryLogOverflow(t *testing.T) {
	m := newMemoryLog(10)

	_, _ = m.Write([]byte("aaaa\n"))
	_, _ = m.Write([]byte("bbbb\n"))
	_, _ = m.Write([]byte("cccc\n"))
	require.Equal(t, "bbbb\ncccc\n", string(m.Bytes()))

	// line bigger than limit is kept alone
	_, _ = m.Write([]byte(strings.Repeat("d", 20)))
	require.Equal(t, strings.Repeat("d", 20), string(m.Bytes()))
}

func TestMemoryLogCopiesLine(t *testing.T) {
	m := newMemoryLog(100)

	b := []byte("first\n")
	_, _ = m.Write(b)
	copy(b, "xxxxx")

	require.Equal(t, "first\n", string(m.Bytes()))
}

func TestNewLogger(t *testing.T) {
	m := newMemoryLog(1024)

	logger := newLogger(map[string]string{"level": "debug"}, m)
	logger.Trace().Msg("hidden")
	logger.Debug().Str("module", "mavlink").Msg("[mavlink] listen")

	require.Equal(t, `{"level":"debug","module":"mavlink","message":"[mavlink] listen"}`+"\n", string(m.Bytes()))

	logger = newLogger(map[string]string{"level": "wrong"}, m)
	require.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestGetLogger(t *testing.T) {
	modules["mavlink"] = "trace"
	modules["mdns"] = "wrong"
	defer delete(modules, "mavlink")
	defer delete(modules, "mdns")

	Logger = Logger.Level(zerolog.InfoLevel)

	require.Equal(t, "trace", GetLogger("mavlink").GetLevel().String())
	require.Equal(t, "info", GetLogger("mdns").GetLevel().String())
	require.Equal(t, "info", GetLogger("camera").GetLevel().String())
}
