package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/camstreamd/camstreamd/pkg/shell"
	"github.com/camstreamd/camstreamd/pkg/yaml"
)

const defaultConfig = "camstreamd.yaml"

var ErrConfigDisabled = errors.New("config file disabled")

var (
	configs  [][]byte
	configMu sync.Mutex
)

// LoadConfig applies every config source to v, later sources win
func LoadConfig(v any) {
	for _, data := range configs {
		if err := yaml.Unmarshal(data, v); err != nil {
			Logger.Warn().Err(err).Msg("[app] read config")
		}
	}
}

// PatchConfig changes one value in config file, path last item is the key:
// PatchConfig([]string{"cameras", "front"}, "v4l2:/dev/video0")
func PatchConfig(path []string, value any) error {
	if ConfigPath == "" {
		return ErrConfigDisabled
	}

	configMu.Lock()
	defer configMu.Unlock()

	// missing file is the same as empty config
	b, _ := os.ReadFile(ConfigPath)

	b, err := yaml.Patch(b, path, value)
	if err != nil {
		return err
	}

	return os.WriteFile(ConfigPath, b, 0644)
}

// flagConfig - repeatable -config flag
type flagConfig []string

func (c *flagConfig) String() string {
	return strings.Join(*c, " ")
}

func (c *flagConfig) Set(value string) error {
	*c = append(*c, value)
	return nil
}

func initConfig(args flagConfig) {
	if args == nil {
		args = flagConfig{defaultConfig}
	}

	for _, arg := range args {
		data, isFile := readConfig(arg)
		if isFile && ConfigPath == "" {
			// first file is the one api writes to
			ConfigPath = absPath(arg)
		}
		if data != nil {
			configs = append(configs, data)
		}
	}

	if ConfigPath != "" {
		Info["config_path"] = ConfigPath
	}
}

// readConfig supports inline YAML/JSON, key.path=value and file path
func readConfig(arg string) (data []byte, isFile bool) {
	switch {
	case arg == "":
		return nil, false
	case arg[0] == '{':
		return []byte(arg), false
	}

	if data = parseConfString(arg); data != nil {
		return data, false
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return nil, true
	}

	return []byte(shell.ReplaceEnvVars(string(data))), true
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// parseConfString converts `mavlink.port=14551` to `{mavlink: {port: 14551}}`
func parseConfString(s string) []byte {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return nil
	}

	items := strings.Split(key, ".")
	if len(items) < 2 {
		return nil
	}

	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("{" + item + ": ")
	}
	sb.WriteString(value)
	sb.WriteString(strings.Repeat("}", len(items)))

	return []byte(sb.String())
}
