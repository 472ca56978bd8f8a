package camera

import (
	"net/http"

	"github.com/camstreamd/camstreamd/internal/api"
	"github.com/camstreamd/camstreamd/internal/app"
	"github.com/camstreamd/camstreamd/pkg/camera"
)

type cameraInfo struct {
	*Camera
	Stream  uint8           `json:"stream"`
	Info    camera.Info     `json:"info"`
	Formats []camera.Format `json:"formats"`
}

func apiCameras(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	switch r.Method {
	case "GET":
		var items []cameraInfo
		for _, cam := range Cameras() {
			items = append(items, cameraInfo{
				Camera:  cam,
				Stream:  cam.Stream.ID,
				Info:    cam.Source.Info(),
				Formats: cam.Stream.Formats,
			})
		}
		api.ResponsePrettyJSON(w, items)

	case "PUT":
		// save camera to config, opened on next start
		name, src := query.Get("name"), query.Get("src")
		if name == "" || src == "" {
			http.Error(w, "name and src required", http.StatusBadRequest)
			return
		}

		if err := app.PatchConfig([]string{"cameras", name}, src); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

	case "DELETE":
		name := query.Get("name")
		if name == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}

		if err := app.PatchConfig([]string{"cameras", name}, nil); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

	default:
		http.Error(w, "", http.StatusMethodNotAllowed)
	}
}
