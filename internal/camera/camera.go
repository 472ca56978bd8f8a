package camera

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/camstreamd/camstreamd/internal/api"
	"github.com/camstreamd/camstreamd/internal/app"
	"github.com/camstreamd/camstreamd/pkg/camera"
	"github.com/camstreamd/camstreamd/pkg/fake"
	"github.com/rs/zerolog"
)

func Init() {
	var cfg struct {
		Mod map[string]string `yaml:"cameras"`
	}

	app.LoadConfig(&cfg)

	log = app.GetLogger("camera")

	HandleFunc("fake", func(source string) (Source, error) {
		return fake.Open(source)
	})

	Load(cfg.Mod)

	api.HandleFunc("api/cameras", apiCameras)
}

// Source - camera component created from config URL
type Source interface {
	camera.Component
	Formats() []camera.Format
	Close() error
}

type Handler func(source string) (Source, error)

var handlers = map[string]Handler{}

// HandleFunc registers camera source for URL scheme: "v4l2", "fake"
func HandleFunc(scheme string, handler Handler) {
	handlers[scheme] = handler
}

var ErrUnsupportedSource = errors.New("camera: unsupported source")

func Open(source string) (Source, error) {
	scheme, _, ok := strings.Cut(source, ":")
	if !ok {
		return nil, ErrUnsupportedSource
	}

	handler := handlers[scheme]
	if handler == nil {
		return nil, ErrUnsupportedSource
	}

	return handler(source)
}

type Camera struct {
	Name   string         `json:"name"`
	URL    string         `json:"url"`
	Source Source         `json:"-"`
	Stream *camera.Stream `json:"-"`
}

var cameras []*Camera
var mu sync.Mutex

// Load opens cameras in name order, stream ids start from 1 in the same order.
// Cameras that fail to open are skipped.
func Load(sources map[string]string) {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	mu.Lock()
	defer mu.Unlock()

	for _, name := range names {
		url := sources[name]

		src, err := Open(url)
		if err != nil {
			log.Error().Err(err).Str("url", url).Msgf("[camera] open %s", name)
			continue
		}

		stream := &camera.Stream{
			ID:          uint8(len(cameras) + 1),
			Name:        name,
			IsStreaming: true,
			Formats:     src.Formats(),
		}

		cameras = append(cameras, &Camera{Name: name, URL: url, Source: src, Stream: stream})

		log.Debug().Uint8("stream", stream.ID).Msgf("[camera] open %s", name)
	}
}

func Cameras() []*Camera {
	mu.Lock()
	defer mu.Unlock()
	return append([]*Camera(nil), cameras...)
}

func Get(name string) *Camera {
	mu.Lock()
	defer mu.Unlock()
	for _, cam := range cameras {
		if cam.Name == name {
			return cam
		}
	}
	return nil
}

func Streams() []*camera.Stream {
	mu.Lock()
	defer mu.Unlock()

	streams := make([]*camera.Stream, len(cameras))
	for i, cam := range cameras {
		streams[i] = cam.Stream
	}
	return streams
}

// Close releases all cameras, must be called after MAVLink server stopped
func Close() {
	mu.Lock()
	defer mu.Unlock()

	for _, cam := range cameras {
		if err := cam.Source.Close(); err != nil {
			log.Warn().Err(err).Msgf("[camera] close %s", cam.Name)
		}
	}
	cameras = nil
}

var log = zerolog.Nop()
