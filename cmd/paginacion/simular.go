package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/descriptor"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/modelo"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/simulador"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/utils"
)

var (
	simuladorFlag = &cli.StringFlag{
		Name:  "simulador",
		Usage: "binario del simulador, o \"interno\" para asignar marcos sin binario externo",
	}
	timeoutFlag = &cli.DurationFlag{
		Name:  "timeout",
		Usage: "tiempo máximo de cada corrida del simulador",
	}
	semillaFlag = &cli.Uint64Flag{
		Name:  "semilla",
		Usage: "semilla para PIDs y relleno; sin ella cada corrida es distinta",
	}
	formatoFlag = &cli.StringFlag{
		Name:  "formato",
		Usage: "tabla o json",
		Value: "tabla",
	}
	volcadoFlag = &cli.BoolFlag{
		Name:  "volcado",
		Usage: "guarda la salida y el resultado en DUMP_PATH",
	}
	concurrenciaFlag = &cli.IntFlag{
		Name:  "concurrencia",
		Usage: "simulaciones en paralelo cuando se pasan varias configuraciones",
	}
)

var simularCommand = &cli.Command{
	Name:      "simular",
	Usage:     "codifica los procesos, corre el simulador y muestra tablas y cálculos",
	ArgsUsage: "<config.json> [config.json...]",
	Flags: []cli.Flag{
		simuladorFlag,
		timeoutFlag,
		semillaFlag,
		formatoFlag,
		volcadoFlag,
		concurrenciaFlag,
	},
	Action: simular,
}

func simular(ctx *cli.Context) error {
	rutas := ctx.Args().Slice()
	if len(rutas) == 0 {
		return cli.Exit("falta al menos un archivo de configuración", 2)
	}
	formato := ctx.String(formatoFlag.Name)
	if formato != "tabla" && formato != "json" {
		return cli.Exit(fmt.Sprintf("formato desconocido: %s", formato), 2)
	}

	cfgs := make([]*modelo.ConfigSimulacion, 0, len(rutas))
	for _, ruta := range rutas {
		cfg, err := cargarConfigSimulacion(ruta)
		if err != nil {
			return salidaDeError(err)
		}
		cfgs = append(cfgs, cfg)
	}

	sim := nuevaSimulacion(ctx)

	var resultados []*simulador.Resultado
	if len(cfgs) == 1 {
		r, err := sim.Ejecutar(ctx.Context, cfgs[0])
		if err != nil {
			return salidaDeError(err)
		}
		resultados = []*simulador.Resultado{r}
	} else {
		concurrencia := config.MaxSimulaciones
		if ctx.IsSet(concurrenciaFlag.Name) {
			concurrencia = ctx.Int(concurrenciaFlag.Name)
		}
		var err error
		resultados, err = sim.EjecutarLote(ctx.Context, cfgs, concurrencia)
		if err != nil {
			return salidaDeError(err)
		}
	}

	if ctx.Bool(volcadoFlag.Name) {
		ahora := time.Now()
		for i, r := range resultados {
			indice := 0
			if len(resultados) > 1 {
				indice = i + 1
			}
			if _, _, err := simulador.GuardarVolcado(config.DumpPath, simulador.NombreVolcado(ahora, indice), r); err != nil {
				return salidaDeError(err)
			}
		}
	}

	w := ctx.App.Writer
	if formato == "json" {
		if len(resultados) == 1 {
			return escribirJSON(w, resultados[0])
		}
		return escribirJSON(w, resultados)
	}

	for i, r := range resultados {
		if len(resultados) > 1 {
			fmt.Fprintf(w, "== %s ==\n", filepath.Base(rutas[i]))
		}
		mostrarResultado(w, r)
		if i < len(resultados)-1 {
			fmt.Fprintln(w)
		}
	}
	return nil
}

// nuevaSimulacion arma la simulación con la configuración de la herramienta
// y las flags del comando
func nuevaSimulacion(ctx *cli.Context) *simulador.Simulacion {
	ruta := config.SimuladorPath
	if ctx.IsSet(simuladorFlag.Name) {
		ruta = ctx.String(simuladorFlag.Name)
	}
	timeout := config.timeout()
	if ctx.IsSet(timeoutFlag.Name) {
		timeout = ctx.Duration(timeoutFlag.Name)
	}

	sim := &simulador.Simulacion{
		Timeout: timeout,
		NuevoSumidero: func() (descriptor.Sumidero, error) {
			s, err := descriptor.NuevoSumideroArchivos(config.TempPath)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
	}

	if ruta == simuladorInterno {
		sim.Simulador = &simulador.SimuladorInterno{}
	} else {
		sim.Simulador = &simulador.SimuladorExterno{Ruta: ruta}
	}

	if ctx.IsSet(semillaFlag.Name) {
		semilla := ctx.Uint64(semillaFlag.Name)
		sim.NuevaFuente = func() descriptor.FuenteAleatoria {
			return descriptor.NuevaFuente(semilla)
		}
	}

	utils.InfoLog.Debug("Simulación configurada", "simulador", ruta, "timeout", timeout)
	return sim
}
