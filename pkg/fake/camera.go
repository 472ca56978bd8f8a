// Package fake - simulated camera, same role as a Gazebo camera plugin.
// Useful for tests and for running without hardware.
package fake

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/camstreamd/camstreamd/pkg/camera"
)

type Camera struct {
	*camera.Params

	info    camera.Info
	formats []camera.Format

	storage camera.Storage
	mu      sync.Mutex
}

// Open parses source like:
// fake:#size=640x480&size=1280x720&vendor=Gazebo&model=Iris&storage=512
func Open(source string) (*Camera, error) {
	_, rawQuery, _ := strings.Cut(source, "#")

	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, err
	}

	c := &Camera{
		Params: camera.DefaultParams(),
		info: camera.Info{
			Vendor: "Gazebo",
			Model:  "Simulated",
		},
		storage: camera.DefaultStorage,
	}

	if s := query.Get("vendor"); s != "" {
		c.info.Vendor = s
	}
	if s := query.Get("model"); s != "" {
		c.info.Model = s
	}
	if s := query.Get("definition"); s != "" {
		c.info.DefinitionURI = s
		c.info.DefinitionVersion = 1
	}

	sizes := query["size"]
	if sizes == nil {
		sizes = []string{"640x480"}
	}

	format := camera.Format{Name: "RGB3"}
	for _, s := range sizes {
		size, err := ParseSize(s)
		if err != nil {
			return nil, err
		}
		format.FrameSizes = append(format.FrameSizes, size)
	}
	c.formats = []camera.Format{format}

	native := format.FrameSizes[len(format.FrameSizes)-1]
	c.info.ResolutionH = uint16(native.Width)
	c.info.ResolutionV = uint16(native.Height)

	if s := query.Get("storage"); s != "" {
		total, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, err
		}
		c.storage.Total = float32(total)
		c.storage.Available = float32(total)
	}

	return c, nil
}

var ErrSize = errors.New("fake: wrong size format")

// ParseSize parses "WxH" string
func ParseSize(s string) (camera.FrameSize, error) {
	w, h, ok := strings.Cut(s, "x")
	if !ok {
		return camera.FrameSize{}, ErrSize
	}
	width, err := strconv.ParseUint(w, 10, 16)
	if err != nil {
		return camera.FrameSize{}, ErrSize
	}
	height, err := strconv.ParseUint(h, 10, 16)
	if err != nil {
		return camera.FrameSize{}, ErrSize
	}
	return camera.FrameSize{Width: uint32(width), Height: uint32(height)}, nil
}

func (c *Camera) Info() camera.Info {
	return c.info
}

func (c *Camera) Formats() []camera.Format {
	return c.formats
}

func (c *Camera) Storage() camera.Storage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.storage
}

// Record simulates written video, used space can't exceed total
func (c *Camera) Record(mib float32) {
	c.mu.Lock()
	c.storage.Used += mib
	if c.storage.Used > c.storage.Total {
		c.storage.Used = c.storage.Total
	}
	c.storage.Available = c.storage.Total - c.storage.Used
	c.mu.Unlock()
}

func (c *Camera) Close() error {
	return nil
}
