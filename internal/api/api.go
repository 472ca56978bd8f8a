package api

import (
	"crypto/subtle"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/camstreamd/camstreamd/internal/app"
	"github.com/rs/zerolog"
)

type Config struct {
	Listen   string `yaml:"listen"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	BasePath string `yaml:"base_path"`
	Origin   string `yaml:"origin"`
}

func Init() {
	var cfg struct {
		Mod Config `yaml:"api"`
	}

	// default config
	cfg.Mod.Listen = ":1984"

	app.LoadConfig(&cfg)

	if cfg.Mod.Listen == "" {
		return
	}

	basePath = cfg.Mod.BasePath
	log = app.GetLogger("api")

	HandleFunc("api", apiHandler)
	HandleFunc("api/config", configHandler)
	HandleFunc("api/log", logHandler)

	go listen(cfg.Mod.Listen, newHandler(cfg.Mod, mux))
}

const (
	MimeJSON = "application/json"
	MimeText = "text/plain"
	MimeYAML = "application/yaml"
)

var (
	basePath string
	log      zerolog.Logger
	mux      = http.NewServeMux()
)

func listen(address string, handler http.Handler) {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		log.Error().Err(err).Msg("[api] listen")
		return
	}

	log.Info().Str("addr", ln.Addr().String()).Msg("[api] listen")

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err = server.Serve(ln); err != nil {
		log.Fatal().Err(err).Msg("[api] serve")
	}
}

// HandleFunc registers handler on relative or absolute path:
// - "api/cameras" => "{base_path}/api/cameras"
// - "/cameras"    => "/cameras"
func HandleFunc(pattern string, handler http.HandlerFunc) {
	if pattern == "" || pattern[0] != '/' {
		pattern = basePath + "/" + pattern
	}
	log.Trace().Str("path", pattern).Msg("[api] register path")
	mux.HandleFunc(pattern, handler)
}

// newHandler wraps routes with request logging, CORS and basic auth.
// Auth is skipped for loopback clients.
func newHandler(cfg Config, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Trace().Msgf("[api] %s %s %s", r.Method, r.URL, r.RemoteAddr)

		if cfg.Origin == "*" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}

		if cfg.Username != "" && !isLoopback(r.RemoteAddr) && !checkAuth(r, cfg.Username, cfg.Password) {
			w.Header().Set("Www-Authenticate", `Basic realm="camstreamd"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isLoopback(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return false
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func checkAuth(r *http.Request, username, password string) bool {
	user, pass, ok := r.BasicAuth()
	return ok &&
		subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1 &&
		subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1
}

// ResponseJSON always sets Content-Type, so http.DetectContentType is not called
func ResponseJSON(w http.ResponseWriter, v any) {
	responseJSON(w, v, "")
}

func ResponsePrettyJSON(w http.ResponseWriter, v any) {
	responseJSON(w, v, "  ")
}

func responseJSON(w http.ResponseWriter, v any, indent string) {
	w.Header().Set("Content-Type", MimeJSON)
	enc := json.NewEncoder(w)
	enc.SetIndent("", indent)
	_ = enc.Encode(v)
}

func Response(w http.ResponseWriter, body []byte, contentType string) {
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(body)
}

func Error(w http.ResponseWriter, err error) {
	log.Error().Err(err).Caller(1).Send()

	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func apiHandler(w http.ResponseWriter, r *http.Request) {
	info := map[string]any{"host": r.Host}
	for k, v := range app.Info {
		info[k] = v
	}
	ResponseJSON(w, info)
}

func logHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		w.Header().Set("Content-Type", "application/jsonlines")
		_, _ = app.MemoryLog.WriteTo(w)
	case "DELETE":
		app.MemoryLog.Reset()
		Response(w, []byte("OK"), MimeText)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
