package embedded

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"

	"github.com/hashicorp/go-hclog"
)

// hclogAdapter routes raft's hclog output into slog.
type hclogAdapter struct {
	logger  *slog.Logger
	implied []interface{}
	name    string
}

func newRaftLogger(logger *slog.Logger) hclog.Logger {
	return &hclogAdapter{logger: logger.With("component", "embedded.raft"), name: "raft"}
}

func (h *hclogAdapter) enabled(level slog.Level) bool {
	return h.logger.Enabled(context.Background(), level)
}

func (h *hclogAdapter) Log(level hclog.Level, msg string, args ...interface{}) {
	switch level {
	case hclog.Trace, hclog.Debug:
		h.Debug(msg, args...)
	case hclog.Warn:
		h.Warn(msg, args...)
	case hclog.Error:
		h.Error(msg, args...)
	default:
		h.Info(msg, args...)
	}
}

func (h *hclogAdapter) Trace(msg string, args ...interface{}) {
	if h.IsTrace() {
		h.logger.Debug(msg, args...)
	}
}

func (h *hclogAdapter) Debug(msg string, args ...interface{}) {
	h.logger.Debug(msg, args...)
}

// Info is demoted to debug: raft is chatty about elections on every start.
func (h *hclogAdapter) Info(msg string, args ...interface{}) {
	h.logger.Debug(msg, args...)
}

func (h *hclogAdapter) Warn(msg string, args ...interface{}) {
	h.logger.Warn(msg, args...)
}

func (h *hclogAdapter) Error(msg string, args ...interface{}) {
	h.logger.Error(msg, args...)
}

func (h *hclogAdapter) IsTrace() bool { return h.enabled(slog.LevelDebug - 4) }
func (h *hclogAdapter) IsDebug() bool { return h.enabled(slog.LevelDebug) }
func (h *hclogAdapter) IsInfo() bool  { return h.enabled(slog.LevelInfo) }
func (h *hclogAdapter) IsWarn() bool  { return h.enabled(slog.LevelWarn) }
func (h *hclogAdapter) IsError() bool { return h.enabled(slog.LevelError) }

func (h *hclogAdapter) ImpliedArgs() []interface{} {
	return h.implied
}

func (h *hclogAdapter) With(args ...interface{}) hclog.Logger {
	implied := make([]interface{}, 0, len(h.implied)+len(args))
	implied = append(implied, h.implied...)
	implied = append(implied, args...)
	return &hclogAdapter{logger: h.logger.With(args...), implied: implied, name: h.name}
}

func (h *hclogAdapter) Name() string {
	return h.name
}

func (h *hclogAdapter) Named(name string) hclog.Logger {
	full := name
	if h.name != "" {
		full = h.name + "." + name
	}
	return &hclogAdapter{logger: h.logger.With("subsystem", full), implied: h.implied, name: full}
}

func (h *hclogAdapter) ResetNamed(name string) hclog.Logger {
	return &hclogAdapter{logger: h.logger.With("subsystem", name), name: name}
}

func (h *hclogAdapter) SetLevel(hclog.Level) {}

func (h *hclogAdapter) GetLevel() hclog.Level {
	switch {
	case h.IsTrace():
		return hclog.Trace
	case h.IsDebug():
		return hclog.Debug
	case h.IsInfo():
		return hclog.Info
	case h.IsWarn():
		return hclog.Warn
	case h.IsError():
		return hclog.Error
	}
	return hclog.Off
}

func (h *hclogAdapter) StandardLogger(*hclog.StandardLoggerOptions) *log.Logger {
	return slog.NewLogLogger(h.logger.Handler(), slog.LevelInfo)
}

func (h *hclogAdapter) StandardWriter(*hclog.StandardLoggerOptions) io.Writer {
	return h.StandardLogger(nil).Writer()
}

// badgerLogger satisfies badger.Logger. Info and debug output is dropped.
type badgerLogger struct {
	logger *slog.Logger
}

func newBadgerLogger(logger *slog.Logger, store string) *badgerLogger {
	return &badgerLogger{logger: logger.With("component", "embedded.badger", "store", store)}
}

func (b *badgerLogger) Errorf(format string, args ...interface{}) {
	b.logger.Error(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Warningf(format string, args ...interface{}) {
	b.logger.Warn(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Infof(string, ...interface{}) {}

func (b *badgerLogger) Debugf(string, ...interface{}) {}
