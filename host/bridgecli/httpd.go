package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/npillmayer/fontbridge/bridge"
	"github.com/npillmayer/fontbridge/bridge/autocompile"
	"github.com/npillmayer/fontbridge/core"
)

// maxBodySize limits the size of request bodies.
var maxBodySize int64 = 64 << 20

// Server offers the bridge's operations over HTTP. Fonts stored through
// the server are compiled automatically after a delay; the result is
// available at /latest.
type Server struct {
	bridge *bridge.Bridge
	sched  *autocompile.Scheduler
	mux    *http.ServeMux
	mx     sync.Mutex
	latest []byte
	failed error
}

// NewServer creates a server for a bridge.
func NewServer(b *bridge.Bridge, settings Settings) *Server {
	srv := &Server{bridge: b, mux: http.NewServeMux()}
	srv.sched = autocompile.New(b, settings.Delay, nil, srv.autoCompiled)
	srv.mux.HandleFunc("/compile", only(http.MethodPost, srv.handleCompile))
	srv.mux.HandleFunc("/store", only(http.MethodPost, srv.handleStore))
	srv.mux.HandleFunc("/compile-cached", only(http.MethodPost, srv.handleCompileCached))
	srv.mux.HandleFunc("/interpolate", only(http.MethodPost, srv.handleInterpolate))
	srv.mux.HandleFunc("/clear", only(http.MethodPost, srv.handleClear))
	srv.mux.HandleFunc("/version", only(http.MethodGet, srv.handleVersion))
	srv.mux.HandleFunc("/latest", only(http.MethodGet, srv.handleLatest))
	if settings.StaticDir != "" {
		srv.mux.Handle("/", http.FileServer(http.Dir(settings.StaticDir)))
	}
	return srv
}

// Close stops automatic compilation.
func (srv *Server) Close() {
	srv.sched.Stop()
}

// ServeHTTP adds the cross-origin headers a browser editor needs and
// dispatches the request.
func (srv *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	h.Set("Cross-Origin-Embedder-Policy", "require-corp")
	h.Set("Cross-Origin-Opener-Policy", "same-origin")
	h.Set("Cross-Origin-Resource-Policy", "cross-origin")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	tracer().Debugf("%s %s", r.Method, r.URL.Path)
	srv.mux.ServeHTTP(w, r)
}

func only(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			writeError(w, core.Error(core.EINVALID, "method %s not allowed", r.Method))
			return
		}
		h(w, r)
	}
}

// --- Handlers --------------------------------------------------------------

type compileRequest struct {
	Font    json.RawMessage `json:"font"`
	Options interface{}     `json:"options"`
}

type interpolateRequest struct {
	Glyph    string          `json:"glyph"`
	Location json.RawMessage `json:"location"`
}

func (srv *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	var req compileRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	text, err := fontText(req.Font)
	if err != nil {
		writeError(w, err)
		return
	}
	ttf, err := srv.bridge.CompileOnce(text, req.Options)
	if err != nil {
		writeError(w, err)
		return
	}
	writeFont(w, ttf)
}

func (srv *Server) handleStore(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := srv.bridge.Store(string(body)); err != nil {
		writeError(w, err)
		return
	}
	srv.sched.Touch()
	w.WriteHeader(http.StatusNoContent)
}

func (srv *Server) handleCompileCached(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	var options interface{}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &options); err != nil {
			writeError(w, core.WrapError(err, core.EINVALID, "malformed options: %v", err))
			return
		}
	}
	ttf, err := srv.bridge.CompileCached(options)
	if err != nil {
		writeError(w, err)
		return
	}
	writeFont(w, ttf)
}

func (srv *Server) handleInterpolate(w http.ResponseWriter, r *http.Request) {
	var req interpolateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	layer, err := srv.bridge.InterpolateGlyph(req.Glyph, string(req.Location))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, layer)
}

func (srv *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	srv.bridge.Clear()
	srv.sched.Touch()
	w.WriteHeader(http.StatusNoContent)
}

func (srv *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": bridge.Version()})
}

func (srv *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	srv.mx.Lock()
	ttf, failed := srv.latest, srv.failed
	srv.mx.Unlock()
	switch {
	case failed != nil:
		writeError(w, failed)
	case ttf == nil:
		writeError(w, core.Error(core.EMISSING, "nothing compiled yet"))
	default:
		writeFont(w, ttf)
	}
}

func (srv *Server) autoCompiled(ttf []byte, err error) {
	srv.mx.Lock()
	defer srv.mx.Unlock()
	srv.latest, srv.failed = ttf, err
}

// --- Encoding --------------------------------------------------------------

// errorResponse is the external representation of an application error.
type errorResponse struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code := core.Code(err)
	tracer().Infof("request failed: %v", err)
	writeJSON(w, httpStatus(code), errorResponse{
		Code:    code,
		Kind:    core.CodeName(code),
		Message: core.UserMessage(err),
	})
}

func httpStatus(code int) int {
	switch code {
	case core.EPARSE, core.ESUBSET, core.EINVALIDTAG, core.ELOCATION, core.EINVALID:
		return http.StatusBadRequest
	case core.EMISSING:
		return http.StatusNotFound
	case core.ENOTCACHED:
		return http.StatusConflict
	case core.ECOMPILE, core.EINTERPOLATE:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		tracer().Errorf("cannot write response: %v", err)
	}
}

func writeFont(w http.ResponseWriter, ttf []byte) {
	w.Header().Set("Content-Type", "font/ttf")
	w.WriteHeader(http.StatusOK)
	w.Write(ttf)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, core.Error(core.EINVALID, "request too large: limit is %d bytes", tooLarge.Limit)
		}
		return nil, core.WrapError(err, core.EINVALID, "cannot read request: %v", err)
	}
	return body, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return core.WrapError(err, core.EINVALID, "malformed request: %v", err)
	}
	return nil
}

// fontText accepts a font description either as a JSON object or as a
// string holding the description.
func fontText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", core.Error(core.EINVALID, "request has no font description")
	}
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return "", core.WrapError(err, core.EINVALID, "malformed request: %v", err)
		}
		return text, nil
	}
	return string(raw), nil
}
