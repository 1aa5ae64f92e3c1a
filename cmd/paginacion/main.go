package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/modelo"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/utils"
)

func main() {
	if err := nuevaApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func nuevaApp() *cli.App {
	return &cli.App{
		Name:  "paginacion",
		Usage: "genera procesos, corre el simulador de paginación y explica sus resultados",
		Flags: []cli.Flag{
			logLevelFlag,
			configAppFlag,
		},
		Before: inicializar,
		Commands: []*cli.Command{
			simularCommand,
			codificarCommand,
			parsearCommand,
			calcularCommand,
		},
	}
}

// inicializar carga la configuración de la herramienta y ajusta el logger
func inicializar(ctx *cli.Context) error {
	cfg, err := cargarAppConfig(ctx)
	if err != nil {
		return salidaDeError(err)
	}
	config = cfg

	utils.InicializarLogger(config.LogLevel, "Paginacion")
	utils.InfoLog.Debug("Configuración de la herramienta",
		"simulador", config.SimuladorPath,
		"timeout_ms", config.TimeoutSimulador,
		"temp", config.TempPath,
		"dumps", config.DumpPath,
		"max_simulaciones", config.MaxSimulaciones)
	return nil
}

// salidaDeError traduce los tipos de error a códigos de salida
func salidaDeError(err error) error {
	if err == nil {
		return nil
	}
	codigo := 1
	switch {
	case errors.Is(err, modelo.ErrConfiguracion):
		codigo = 2
	case errors.Is(err, modelo.ErrFalloSimulador):
		codigo = 3
	case errors.Is(err, modelo.ErrReporteInvalido):
		codigo = 4
	case errors.Is(err, modelo.ErrDescriptorInvalido):
		codigo = 5
	}
	utils.ErrorLog.Error("Comando fallido", "codigo", codigo, "error", err)
	return cli.Exit(err.Error(), codigo)
}
