package main

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"campusnav/config"
	"campusnav/mapview"
	"campusnav/models"
	"campusnav/nav"
)

// Server is the embedded bridge for the browser map: it hands out the
// map config, feeds recorded map commands, forwards map clicks to the
// coordinator, and accepts client error reports.
type Server struct {
	config *config.Config
	bridge *mapview.Bridge
	coord  *nav.Coordinator
}

// query parameter keys whose values never reach the log
var sensitiveQueryKeys = map[string]bool{
	"access_token": true, "token": true, "api_key": true, "apikey": true,
	"password": true, "passwd": true, "email": true, "secret": true,
	"key": true, "auth": true, "authorization": true, "credential": true,
}

func (srv *Server) ListenToRequests(port string) {
	mux := http.NewServeMux()
	server := &http.Server{
		Addr:         "localhost:" + port,
		Handler:      mux,
		ReadTimeout:  time.Second * 5,
		WriteTimeout: time.Second * 5,
	}
	mux.HandleFunc("GET /api/v1/map-config", srv.mapConfigHandler)
	mux.HandleFunc("GET /api/v1/map-commands", srv.mapCommandsHandler)
	mux.HandleFunc("POST /api/v1/map-click", srv.mapClickHandler)
	mux.HandleFunc("POST /api/v1/log-error", logErrorHandler)
	logger.Info("bridge listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil {
		panic(err)
	}
}

func (srv *Server) mapConfigHandler(w http.ResponseWriter, req *http.Request) {
	payload, err := json.Marshal(map[string]any{
		"mapboxToken": srv.config.MapboxToken,
		"center":      []float64{srv.config.MapCenterLon, srv.config.MapCenterLat},
		"zoom":        srv.config.MapZoom,
	})
	if err != nil {
		logger.Error("map config handler", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(payload); err != nil {
		logger.Error("map config handler", "error", err)
	}
}

func (srv *Server) mapCommandsHandler(w http.ResponseWriter, req *http.Request) {
	cmds := srv.bridge.Drain()
	if cmds == nil {
		cmds = []mapview.Command{}
	}
	payload, err := json.Marshal(cmds)
	if err != nil {
		logger.Error("map commands handler", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(payload); err != nil {
		logger.Error("map commands handler", "error", err)
	}
}

type mapClick struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// mapClickHandler is the browser map's click path into the coordinator;
// equivalent to a click on the TUI places list.
func (srv *Server) mapClickHandler(w http.ResponseWriter, req *http.Request) {
	var mc mapClick
	if err := json.NewDecoder(req.Body).Decode(&mc); err != nil {
		logger.Debug("map click handler", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid click payload"}`))
		return
	}
	// route calculation may block; never hold the request open for it
	go srv.coord.HandleMapClick(models.Coordinate{Lat: mc.Lat, Lon: mc.Lon})
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
		logger.Error("map click handler", "error", err)
	}
}

type clientError struct {
	Message   string `json:"message"`
	Stack     string `json:"stack"`
	Context   string `json:"context"`
	URL       string `json:"url"`
	Platform  string `json:"platform"`
	Timestamp string `json:"timestamp"`
}

func logErrorHandler(w http.ResponseWriter, req *http.Request) {
	var ce clientError
	if err := json.NewDecoder(req.Body).Decode(&ce); err != nil {
		ce.Message = "Unknown error"
	}
	logger.Error("client error",
		"message", truncate(sanitizeControlChars(ce.Message), 1000),
		"context", truncate(sanitizeControlChars(ce.Context), 200),
		"url", sanitizeURL(sanitizeControlChars(ce.URL), 500),
		"stack", truncate(sanitizeControlChars(ce.Stack), 5000),
		"platform", truncate(sanitizeControlChars(ce.Platform), 100),
		"timestamp", truncate(sanitizeControlChars(ce.Timestamp), 50),
	)
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write([]byte(`{"status":"logged"}`)); err != nil {
		logger.Error("log error handler", "error", err)
	}
}

// sanitizeControlChars keeps printable ASCII only, so client payloads
// cannot inject log lines.
func sanitizeControlChars(value string) string {
	var b strings.Builder
	for _, c := range value {
		if c >= 0x20 && c <= 0x7e {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// sanitizeURL redacts sensitive query values and drops the fragment.
func sanitizeURL(raw string, maxLen int) string {
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return truncate(parsed.Path, maxLen)
	}
	q := parsed.Query()
	for key := range q {
		if sensitiveQueryKeys[strings.ToLower(key)] {
			q.Set(key, "[REDACTED]")
		}
	}
	parsed.RawQuery = q.Encode()
	parsed.Fragment = ""
	return truncate(parsed.String(), maxLen)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
