package embedded

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/eleven-am/searchnode/internal/domain"
	"github.com/eleven-am/searchnode/internal/helpers/netutil"
	"github.com/eleven-am/searchnode/internal/script"
	"github.com/eleven-am/searchnode/internal/xjson"
)

const maxContentLength = 100 * humanize.MByte

// debugServer is the node's local diagnostics HTTP interface.
type debugServer struct {
	node    *Node
	metrics http.Handler
	logger  *slog.Logger
	server  *http.Server
}

func newDebugServer(node *Node, metrics http.Handler, logger *slog.Logger) *debugServer {
	s := &debugServer{
		node:    node,
		metrics: metrics,
		logger:  logger.With("component", "embedded.http"),
	}
	s.server = &http.Server{
		Handler:      s.withLogging(s.routes()),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Listen binds synchronously so a taken port fails the launch.
func (s *debugServer) Listen(port int) error {
	listener, _, err := netutil.ListenTCP("", port, nodeComponent+".http")
	if err != nil {
		return err
	}

	s.logger.Info("debug http listening", "addr", listener.Addr().String())
	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("debug http server error", "error", err)
		}
	}()
	return nil
}

func (s *debugServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *debugServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /_cluster/health", s.handleHealth)
	mux.HandleFunc("GET /_nodes/settings", s.handleSettings)
	mux.HandleFunc("GET /{index}/{id}", s.handleGet)
	mux.HandleFunc("PUT /{index}/{id}", s.handleIndex)
	mux.HandleFunc("DELETE /{index}/{id}", s.handleDelete)
	mux.HandleFunc("POST /{index}/{id}/_update", s.handleUpdate)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	return mux
}

func (s *debugServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := s.node.Info()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":         info.Name,
		"cluster_name": info.ClusterName,
		"node":         info,
		"uptime":       humanize.RelTime(info.StartedAt, time.Now(), "", ""),
	})
}

func (s *debugServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	req := domain.HealthRequest{WaitForStatus: domain.HealthRed}

	query := r.URL.Query()
	if v := query.Get("wait_for_status"); v != "" {
		status, err := domain.ParseHealthStatus(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		req.WaitForStatus = status
		req.Timeout = 30 * time.Second
	}
	if v := query.Get("timeout"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, domain.NewValidationError("invalid timeout", err))
			return
		}
		req.Timeout = timeout
	}

	health, err := s.node.ClusterHealth(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	code := http.StatusOK
	if health.TimedOut {
		code = http.StatusRequestTimeout
	}
	writeJSON(w, code, health)
}

func (s *debugServer) handleSettings(w http.ResponseWriter, r *http.Request) {
	info := s.node.Info()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cluster_name": info.ClusterName,
		"nodes": map[string]interface{}{
			info.ID: map[string]interface{}{
				"name":     info.Name,
				"settings": s.node.Settings().Map(),
			},
		},
	})
}

func (s *debugServer) handleGet(w http.ResponseWriter, r *http.Request) {
	doc, err := s.node.Get(r.PathValue("index"), r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	code := http.StatusOK
	if !doc.Found {
		code = http.StatusNotFound
	}
	writeJSON(w, code, doc)
}

func (s *debugServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.node.Index(r.Context(), r.PathValue("index"), r.PathValue("id"), body)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	code := http.StatusOK
	if res.Created {
		code = http.StatusCreated
	}
	writeJSON(w, code, res)
}

func (s *debugServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	res, err := s.node.Delete(r.Context(), r.PathValue("index"), r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	code := http.StatusOK
	if !res.Found {
		code = http.StatusNotFound
	}
	writeJSON(w, code, res)
}

type updateRequest struct {
	Script string        `json:"script"`
	Params script.Params `json:"params"`
}

func (s *debugServer) handleUpdate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var req updateRequest
	if err := xjson.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, domain.NewValidationError("invalid update request", err))
		return
	}

	res, err := s.node.Update(r.Context(), r.PathValue("index"), r.PathValue("id"), req.Script, req.Params)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxContentLength+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxContentLength {
		return nil, domain.NewValidationError(
			fmt.Sprintf("request body exceeds %s", humanize.Bytes(maxContentLength)), domain.ErrInvalidInput)
	}
	return body, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNodeClosed):
		return http.StatusServiceUnavailable
	}

	switch domain.GetErrorCategory(err) {
	case domain.CategoryValidation, domain.CategoryScript:
		return http.StatusBadRequest
	case domain.CategoryRaft, domain.CategoryTimeout:
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, domain.ErrDataDisabled) || errors.Is(err, domain.ErrInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = xjson.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]interface{}{
		"error":  err.Error(),
		"status": code,
	})
}

func (s *debugServer) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
