package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger — общий интерфейс логирования, который прокидывается во все слои приложения.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(err error, format string, args ...any)
}

// ZeroLogger реализует Logger поверх zerolog.
type ZeroLogger struct {
	log zerolog.Logger
}

// New создаёт логгер в stdout. level: debug, info, warn, error.
// format=console включает человекочитаемый вывод для локальной разработки, иначе JSON.
func New(format, level string) *ZeroLogger {
	var out io.Writer = os.Stdout
	if strings.EqualFold(format, "console") {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly}
	}

	return NewWithWriter(out, level)
}

func NewWithWriter(w io.Writer, level string) *ZeroLogger {
	zerolog.TimeFieldFormat = time.RFC3339

	return &ZeroLogger{
		log: zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger(),
	}
}

// With возвращает логгер с дополнительным полем.
func (l *ZeroLogger) With(key string, value any) *ZeroLogger {
	return &ZeroLogger{log: l.log.With().Interface(key, value).Logger()}
}

func (l *ZeroLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZeroLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZeroLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZeroLogger) Errorf(err error, format string, args ...any) {
	l.log.Error().Err(err).Msgf(format, args...)
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Nop — логгер, который ничего не пишет. Используется в тестах.
type Nop struct{}

func (Nop) Debugf(string, ...any)        {}
func (Nop) Infof(string, ...any)         {}
func (Nop) Warnf(string, ...any)         {}
func (Nop) Errorf(error, string, ...any) {}
