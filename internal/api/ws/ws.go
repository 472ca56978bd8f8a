package ws

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/camstreamd/camstreamd/internal/api"
	"github.com/camstreamd/camstreamd/internal/app"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func Init() {
	var cfg struct {
		Mod struct {
			Origin string `yaml:"origin"`
		} `yaml:"api"`
	}

	app.LoadConfig(&cfg)

	log = app.GetLogger("api")
	upgrader = newUpgrader(cfg.Mod.Origin)

	api.HandleFunc("api/ws", apiWS)
}

var (
	log      zerolog.Logger
	upgrader *websocket.Upgrader
	handlers = map[string]Handler{}
)

// Message - one websocket frame in both directions
type Message struct {
	Type  string `json:"type"`
	Value any    `json:"value,omitempty"`
	Raw   []byte `json:"-"`
}

func (m *Message) String() (value string) {
	_ = json.Unmarshal(m.Raw, &value)
	return
}

func (m *Message) Unmarshal(v any) error {
	return json.Unmarshal(m.Raw, v)
}

type Handler func(tr *Transport, msg *Message) error

// HandleFunc registers handler for incoming message type, must be called before
// the first client connects
func HandleFunc(msgType string, handler Handler) {
	handlers[msgType] = handler
}

// newUpgrader origin: "*" - any, empty - same host with any port
func newUpgrader(origin string) *websocket.Upgrader {
	u := &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 64 * 1024,
	}
	switch origin {
	case "":
		u.CheckOrigin = sameHost
	case "*":
		u.CheckOrigin = func(*http.Request) bool { return true }
	}
	return u
}

func sameHost(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Host == r.Host {
		return true
	}

	log.Trace().Msgf("[api] ws origin=%s, host=%s", u.Host, r.Host)

	host, _, err := net.SplitHostPort(u.Host)
	return err == nil && host == r.Host
}

func apiWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Caller().Msgf("host=%s origin=%s", r.Host, r.Header.Get("Origin"))
		return
	}

	tr := NewTransport(r, func(msg any) error {
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		return conn.WriteJSON(msg)
	})

	readLoop(conn, tr)

	_ = conn.Close()
	tr.Close()
}

func readLoop(conn *websocket.Conn, tr *Transport) {
	for {
		var raw struct {
			Type  string          `json:"type"`
			Value json.RawMessage `json:"value"`
		}
		if err := conn.ReadJSON(&raw); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNoStatusReceived, websocket.CloseGoingAway) {
				log.Trace().Err(err).Caller().Send()
			}
			return
		}

		log.Trace().Str("type", raw.Type).Msg("[api] ws msg")

		handler := handlers[raw.Type]
		if handler == nil {
			continue
		}

		msg := &Message{Type: raw.Type, Raw: raw.Value}
		go func() {
			if err := handler(tr, msg); err != nil {
				tr.Write(&Message{Type: "error", Value: msg.Type + ": " + err.Error()})
			}
		}()
	}
}

// Transport - one websocket client, Write is safe for concurrent use
type Transport struct {
	Request *http.Request

	write   func(msg any) error
	writeMu sync.Mutex

	closed  bool
	onClose []func()
	mu      sync.Mutex
}

func NewTransport(r *http.Request, write func(msg any) error) *Transport {
	return &Transport{Request: r, write: write}
}

func (t *Transport) Write(msg any) {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if err := t.write(msg); err != nil {
		log.Trace().Err(err).Msg("[api] ws write")
	}
}

func (t *Transport) Close() {
	t.mu.Lock()
	funcs := t.onClose
	t.onClose = nil
	t.closed = true
	t.mu.Unlock()

	for _, f := range funcs {
		f()
	}
}

// OnClose runs f on close, or right now if transport already closed
func (t *Transport) OnClose(f func()) {
	t.mu.Lock()
	if !t.closed {
		t.onClose = append(t.onClose, f)
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	f()
}
