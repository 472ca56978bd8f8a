package v4l2

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/camstreamd/camstreamd/internal/api"
	"github.com/camstreamd/camstreamd/internal/camera"
	"github.com/camstreamd/camstreamd/pkg/v4l2"
	"github.com/camstreamd/camstreamd/pkg/v4l2/device"
)

func Init() {
	camera.HandleFunc("v4l2", func(source string) (camera.Source, error) {
		return v4l2.Open(strings.TrimPrefix(source, "v4l2:"))
	})

	api.HandleFunc("api/v4l2", apiV4L2)
}

type source struct {
	Name string `json:"name"`
	Info string `json:"info,omitempty"`
	URL  string `json:"url"`
}

func apiV4L2(w http.ResponseWriter, r *http.Request) {
	files, err := os.ReadDir("/dev")
	if err != nil {
		api.Error(w, err)
		return
	}

	var sources []*source

	for _, file := range files {
		if !strings.HasPrefix(file.Name(), "video") {
			continue
		}

		path := "/dev/" + file.Name()

		dev, err := device.Open(path)
		if err != nil {
			continue
		}

		var card string
		if capability, err := dev.Capability(); err == nil {
			card = capability.Card
		}

		formats, _ := dev.ListFormats()
		for _, fourCC := range formats {
			src := &source{
				Name: card + " " + device.FormatName(fourCC),
				URL:  "v4l2:" + path,
			}

			sizes, _ := dev.ListSizes(fourCC)
			for i, size := range sizes {
				if i > 0 {
					src.Info += " "
				}
				src.Info += fmt.Sprintf("%dx%d", size[0], size[1])
			}

			sources = append(sources, src)
		}

		_ = dev.Close()
	}

	if len(sources) == 0 {
		http.Error(w, "no sources", http.StatusNotFound)
		return
	}

	api.ResponseJSON(w, sources)
}
