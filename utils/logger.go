package utils

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	InfoLog  *slog.Logger = nuevoLogger(os.Stderr, slog.LevelInfo, "paginacion")
	ErrorLog *slog.Logger = InfoLog
)

// InicializarLogger configura los loggers globales
func InicializarLogger(logLevel string, moduleName string) {
	InicializarLoggerEn(os.Stderr, logLevel, moduleName)
}

// InicializarLoggerEn configura los loggers globales sobre un writer arbitrario.
// La salida estándar queda libre para los reportes.
func InicializarLoggerEn(w io.Writer, logLevel string, moduleName string) {
	logger := nuevoLogger(w, ParsearNivel(logLevel), moduleName)

	InfoLog = logger
	ErrorLog = logger
}

// ParsearNivel traduce el nivel de log de la configuración
func ParsearNivel(logLevel string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(logLevel)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func nuevoLogger(w io.Writer, level slog.Level, moduleName string) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(handler).With("modulo", moduleName)
}
