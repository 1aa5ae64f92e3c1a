package main

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/descriptor"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/modelo"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/utils"
)

var (
	codigoFlag = &cli.IntFlag{
		Name:  "codigo",
		Usage: "tamaño del segmento de código; sin la flag es aleatorio entre 16 y 79",
	}
	datosFlag = &cli.IntFlag{
		Name:  "datos",
		Usage: "tamaño del segmento de datos; sin la flag es aleatorio entre 64 y 191",
	}
	cantidadFlag = &cli.IntFlag{
		Name:  "cantidad",
		Usage: "cantidad de procesos a generar",
		Value: 1,
	}
	salidaFlag = &cli.PathFlag{
		Name:  "salida",
		Usage: "directorio donde se escriben pN.proc y pN.txt",
		Value: "processes",
	}
)

var codificarCommand = &cli.Command{
	Name:  "codificar",
	Usage: "genera descriptores de proceso con su volcado hexadecimal",
	Flags: []cli.Flag{
		codigoFlag,
		datosFlag,
		cantidadFlag,
		salidaFlag,
		semillaFlag,
	},
	Action: codificar,
}

func codificar(ctx *cli.Context) error {
	cantidad := ctx.Int(cantidadFlag.Name)
	if cantidad <= 0 {
		return cli.Exit("la cantidad debe ser mayor a 0", 2)
	}
	dir := ctx.Path(salidaFlag.Name)

	semilla := rand.Uint64()
	if ctx.IsSet(semillaFlag.Name) {
		semilla = ctx.Uint64(semillaFlag.Name)
	}
	fuente := descriptor.NuevaFuente(semilla)

	table := nuevaTabla(ctx.App.Writer, []string{"Archivo", "PID", "Código", "Datos", "Bytes"})
	for i := 1; i <= cantidad; i++ {
		spec := descriptor.SpecAleatorio(fuente)
		if ctx.IsSet(codigoFlag.Name) {
			spec.TamCodigo = ctx.Int(codigoFlag.Name)
		}
		if ctx.IsSet(datosFlag.Name) {
			spec.TamDatos = ctx.Int(datosFlag.Name)
		}

		datos, err := descriptor.Codificar(spec, fuente)
		if err != nil {
			return salidaDeError(fmt.Errorf("proceso %d: %w", i, err))
		}

		rutaProc, _, err := descriptor.GuardarConVolcado(dir, fmt.Sprintf("p%d", i), datos)
		if err != nil {
			return salidaDeError(err)
		}

		utils.InfoLog.Info("Proceso generado", "archivo", rutaProc, "pid", int(datos[0]), "tamanio", spec.TamProceso())
		table.Append(filaDescriptor(filepath.Base(rutaProc), int(datos[0]), spec, len(datos)))
	}
	table.Render()
	return nil
}

func filaDescriptor(archivo string, pid int, spec modelo.ProcesoSpec, bytes int) []string {
	return []string{
		archivo,
		strconv.Itoa(pid),
		strconv.Itoa(spec.TamCodigo),
		strconv.Itoa(spec.TamDatos),
		strconv.Itoa(bytes),
	}
}
