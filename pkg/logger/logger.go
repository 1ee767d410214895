package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Logger — общий интерфейс логирования сервиса.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(err error, format string, args ...any)
}

// SlogLogger реализует Logger поверх log/slog.
type SlogLogger struct {
	log *slog.Logger
}

// NewSlogLogger создаёт JSON-логгер в stdout. Уровень берётся из LOG_LEVEL.
func NewSlogLogger() *SlogLogger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LOG_LEVEL")),
	})

	return &SlogLogger{log: slog.New(handler)}
}

func NewSlogLoggerWith(l *slog.Logger) *SlogLogger {
	return &SlogLogger{log: l}
}

func (s *SlogLogger) Debugf(format string, args ...any) {
	s.log.Debug(fmt.Sprintf(format, args...))
}

func (s *SlogLogger) Infof(format string, args ...any) {
	s.log.Info(fmt.Sprintf(format, args...))
}

func (s *SlogLogger) Warnf(format string, args ...any) {
	s.log.Warn(fmt.Sprintf(format, args...))
}

func (s *SlogLogger) Errorf(err error, format string, args ...any) {
	if err == nil {
		s.log.Error(fmt.Sprintf(format, args...))
		return
	}
	s.log.Error(fmt.Sprintf(format, args...), slog.String("error", err.Error()))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Nop — логгер, который ничего не пишет. Используется в тестах.
type Nop struct{}

func (Nop) Debugf(string, ...any)        {}
func (Nop) Infof(string, ...any)         {}
func (Nop) Warnf(string, ...any)         {}
func (Nop) Errorf(error, string, ...any) {}
