package mavlink

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/camstreamd/camstreamd/internal/api"
	"github.com/camstreamd/camstreamd/internal/api/ws"
	"github.com/camstreamd/camstreamd/internal/camera"
	"github.com/camstreamd/camstreamd/pkg/mavcam"
	"github.com/camstreamd/camstreamd/pkg/mavlink"
)

func apiMAVLink(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	switch r.Method {
	case "GET":
		api.ResponsePrettyJSON(w, srv.Status())

	case "POST":
		name := query.Get("camera")

		cam := camera.Get(name)
		if cam == nil {
			http.Error(w, "camera not found", http.StatusNotFound)
			return
		}

		if id := srv.CameraID(cam.Source); id != mavcam.InvalidID {
			http.Error(w, "camera already added with id "+strconv.Itoa(int(id)), http.StatusConflict)
			return
		}

		id := srv.AddCamera(cam.Source)
		if id == mavcam.InvalidID {
			http.Error(w, mavcam.ErrRegistryFull.Error(), http.StatusInsufficientStorage)
			return
		}

		log.Info().Uint8("comp", id).Msgf("[mavlink] add camera %s", name)

		api.ResponseJSON(w, map[string]any{"id": id})

	case "DELETE":
		id, err := strconv.Atoi(query.Get("id"))
		if err != nil || id < 0 || id > 255 {
			http.Error(w, "wrong id", http.StatusBadRequest)
			return
		}

		c := srv.Camera(byte(id))
		if c == nil {
			http.Error(w, "camera not found", http.StatusNotFound)
			return
		}

		srv.RemoveCamera(c)

		log.Info().Int("comp", id).Msg("[mavlink] remove camera")

	default:
		http.Error(w, "", http.StatusMethodNotAllowed)
	}
}

type event struct {
	Type    string          `json:"type"`
	Addr    string          `json:"addr"`
	SysID   byte            `json:"sys_id"`
	CompID  byte            `json:"comp_id"`
	Seq     byte            `json:"seq"`
	Name    string          `json:"name"`
	Message mavlink.Message `json:"message"`
}

func messageName(e *mavcam.Event) string {
	if cmd, ok := e.Message.(*mavlink.CommandLong); ok {
		if name := mavlink.CommandName(cmd.Command); name != "" {
			return name
		}
	}
	return mavlink.MessageName(e.Frame.MsgID)
}

func newEvent(e *mavcam.Event) *event {
	return &event{
		Type:    e.Type,
		Addr:    e.Addr.String(),
		SysID:   e.Frame.SysID,
		CompID:  e.Frame.CompID,
		Seq:     e.Frame.Seq,
		Name:    messageName(e),
		Message: e.Message,
	}
}

var errDisabled = errors.New("mavlink server disabled")

// wsMAVLink sends every server event to websocket client until it disconnects,
// events are dropped for slow clients
func wsMAVLink(tr *ws.Transport, _ *ws.Message) error {
	if srv == nil {
		return errDisabled
	}

	events := make(chan *event, 64)

	cancel := srv.Listen(func(e *mavcam.Event) {
		select {
		case events <- newEvent(e):
		default:
		}
	})

	tr.OnClose(func() {
		cancel()
		close(events)
	})

	for e := range events {
		tr.Write(&ws.Message{Type: "mavlink", Value: e})
	}

	return nil
}
