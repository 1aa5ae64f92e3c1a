package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/modelo"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/utils"
)

// AppConfig es la configuración de la herramienta, no de una simulación
type AppConfig struct {
	LogLevel         string `json:"LOG_LEVEL"`
	SimuladorPath    string `json:"SIMULADOR_PATH"`    // Binario del simulador, "interno" para no usar uno externo
	TimeoutSimulador int    `json:"TIMEOUT_SIMULADOR"` // Milisegundos
	TempPath         string `json:"TEMP_PATH"`         // Directorio de los descriptores temporales
	DumpPath         string `json:"DUMP_PATH"`         // Directorio de los volcados
	MaxSimulaciones  int    `json:"MAX_SIMULACIONES"`  // Simulaciones en paralelo en un lote
}

const simuladorInterno = "interno"

var config *AppConfig

func configPorDefecto() *AppConfig {
	return &AppConfig{
		LogLevel:         "INFO",
		SimuladorPath:    "./paging",
		TimeoutSimulador: int(30 * time.Second / time.Millisecond),
		DumpPath:         "dumps",
		MaxSimulaciones:  4,
	}
}

var (
	logLevelFlag = &cli.StringFlag{
		Name:    "log-level",
		Usage:   "nivel de log: debug, info, warn o error",
		EnvVars: []string{"PAGINACION_LOG_LEVEL"},
	}
	configAppFlag = &cli.PathFlag{
		Name:    "config-app",
		Usage:   "archivo JSON con la configuración de la herramienta",
		EnvVars: []string{"PAGINACION_CONFIG"},
	}
)

// cargarAppConfig parte de los valores por defecto, aplica el archivo si se
// indicó y por último las flags
func cargarAppConfig(ctx *cli.Context) (*AppConfig, error) {
	cfg := configPorDefecto()

	if ruta := ctx.Path(configAppFlag.Name); ruta != "" {
		leida, err := utils.CargarConfiguracion[AppConfig](ruta)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", modelo.ErrConfiguracion, err)
		}
		completar(cfg, leida)
	}

	if ctx.IsSet(logLevelFlag.Name) {
		cfg.LogLevel = ctx.String(logLevelFlag.Name)
	}

	if cfg.TimeoutSimulador <= 0 {
		return nil, fmt.Errorf("%w: TIMEOUT_SIMULADOR debe ser mayor a 0", modelo.ErrConfiguracion)
	}
	if cfg.MaxSimulaciones <= 0 {
		return nil, fmt.Errorf("%w: MAX_SIMULACIONES debe ser mayor a 0", modelo.ErrConfiguracion)
	}
	return cfg, nil
}

// completar pisa los valores por defecto con los que vienen en el archivo
func completar(cfg *AppConfig, leida *AppConfig) {
	if leida.LogLevel != "" {
		cfg.LogLevel = leida.LogLevel
	}
	if leida.SimuladorPath != "" {
		cfg.SimuladorPath = leida.SimuladorPath
	}
	if leida.TimeoutSimulador != 0 {
		cfg.TimeoutSimulador = leida.TimeoutSimulador
	}
	if leida.TempPath != "" {
		cfg.TempPath = leida.TempPath
	}
	if leida.DumpPath != "" {
		cfg.DumpPath = leida.DumpPath
	}
	if leida.MaxSimulaciones != 0 {
		cfg.MaxSimulaciones = leida.MaxSimulaciones
	}
}

func (c *AppConfig) timeout() time.Duration {
	return time.Duration(c.TimeoutSimulador) * time.Millisecond
}

// cargarConfigSimulacion lee y valida un pedido de simulación
func cargarConfigSimulacion(ruta string) (*modelo.ConfigSimulacion, error) {
	cfg, err := utils.CargarConfiguracion[modelo.ConfigSimulacion](ruta)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", modelo.ErrConfiguracion, err)
	}
	if err := cfg.Validar(); err != nil {
		return nil, fmt.Errorf("%s: %w", ruta, err)
	}
	return cfg, nil
}
