package utils

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsearNivel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParsearNivel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParsearNivel(" warn "))
	assert.Equal(t, slog.LevelError, ParsearNivel("Error"))
	assert.Equal(t, slog.LevelInfo, ParsearNivel("trace"))
	assert.Equal(t, slog.LevelInfo, ParsearNivel(""))
}

func TestInicializarLoggerEn(t *testing.T) {
	anteriorInfo, anteriorError := InfoLog, ErrorLog
	defer func() { InfoLog, ErrorLog = anteriorInfo, anteriorError }()

	var buf bytes.Buffer
	InicializarLoggerEn(&buf, "warn", "Prueba")

	InfoLog.Info("no se ve")
	InfoLog.Warn("marco fuera de rango", "marco", 99)

	salida := buf.String()
	assert.NotContains(t, salida, "no se ve")
	assert.Contains(t, salida, "modulo=Prueba")
	assert.Contains(t, salida, "marco=99")
}

type configPrueba struct {
	Nivel  string `json:"LOG_LEVEL"`
	Maximo int    `json:"MAX_SIMULACIONES"`
}

func TestCargarYGuardarJSON(t *testing.T) {
	ruta := filepath.Join(t.TempDir(), "sub", "config.json")
	require.NoError(t, GuardarJSON(ruta, configPrueba{Nivel: "DEBUG", Maximo: 3}))

	cfg, err := CargarConfiguracion[configPrueba](ruta)
	require.NoError(t, err)
	assert.Equal(t, &configPrueba{Nivel: "DEBUG", Maximo: 3}, cfg)

	_, err = CargarConfiguracion[configPrueba](filepath.Join(t.TempDir(), "no-existe.json"))
	assert.Error(t, err)

	rota := filepath.Join(t.TempDir(), "rota.json")
	require.NoError(t, os.WriteFile(rota, []byte(`{"LOG_LEVEL": `), 0644))
	_, err = CargarConfiguracion[configPrueba](rota)
	assert.Error(t, err)
}

func TestSemaforo(t *testing.T) {
	sem := NewSemaforo(2)
	assert.Equal(t, 2, sem.Capacidad())

	assert.True(t, sem.TryWait())
	require.NoError(t, sem.WaitContext(context.Background()))
	assert.False(t, sem.TryWait())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, sem.WaitContext(ctx), context.DeadlineExceeded)

	sem.Signal()
	assert.True(t, sem.TryWait())

	// Signal de más no agrega permisos
	sem.Signal()
	sem.Signal()
	sem.Signal()
	assert.True(t, sem.TryWait())
	assert.True(t, sem.TryWait())
	assert.False(t, sem.TryWait())

	assert.Equal(t, 1, NewSemaforo(0).Capacidad())
}
