package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/calculos"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/memoria"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/modelo"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/reporte"
)

var (
	memoriaFlag = &cli.IntFlag{
		Name:     "memoria",
		Usage:    "tamaño de la memoria física en bytes",
		Required: true,
	}
	paginaFlag = &cli.IntFlag{
		Name:     "pagina",
		Usage:    "tamaño de página en bytes",
		Required: true,
	}
	procesoFlag = &cli.IntFlag{
		Name:  "proceso",
		Usage: "ID del proceso (posición en el reporte) para --traducir",
		Value: 1,
	}
	traducirFlag = &cli.IntFlag{
		Name:  "traducir",
		Usage: "dirección lógica a traducir con la tabla de páginas del proceso",
	}
)

var parsearCommand = &cli.Command{
	Name:      "parsear",
	Usage:     "interpreta una salida del simulador y reconstruye la tabla de marcos",
	ArgsUsage: "<salida.txt | ->",
	Flags: []cli.Flag{
		memoriaFlag,
		paginaFlag,
		procesoFlag,
		traducirFlag,
		formatoFlag,
	},
	Action: parsear,
}

var calcularCommand = &cli.Command{
	Name:      "calcular",
	Usage:     "explica las cantidades de paginación de una configuración y la salida del simulador",
	ArgsUsage: "<config.json> <salida.txt | ->",
	Flags: []cli.Flag{
		formatoFlag,
	},
	Action: calcular,
}

// salidaParseada es la forma JSON del comando parsear
type salidaParseada struct {
	*reporte.Resultado
	NumMarcos  int             `json:"numFrames"`
	Marcos     []*modelo.Marco `json:"frames"`
	Libres     []bool          `json:"freeFrames"`
	Traduccion *traduccion     `json:"translation,omitempty"`
}

type traduccion struct {
	ProcesoID int `json:"processId"`
	DirLogica int `json:"logicalAddress"`
	DirFisica int `json:"physicalAddress"`
}

func parsear(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.Exit("se espera un único archivo con la salida del simulador", 2)
	}

	cfg := &modelo.ConfigSimulacion{
		TamMemoriaFisica: ctx.Int(memoriaFlag.Name),
		TamPagina:        ctx.Int(paginaFlag.Name),
	}
	numMarcos, err := cfg.NumMarcos()
	if err != nil {
		return salidaDeError(err)
	}

	resultado, err := leerYParsear(ctx, ctx.Args().First())
	if err != nil {
		return salidaDeError(err)
	}
	mapa := memoria.Reconstruir(numMarcos, resultado.Procesos)

	salida := salidaParseada{
		Resultado: resultado,
		NumMarcos: numMarcos,
		Marcos:    mapa.Marcos,
		Libres:    mapa.Libres,
	}

	if ctx.IsSet(traducirFlag.Name) {
		id := ctx.Int(procesoFlag.Name)
		if id < 1 || id > len(resultado.Procesos) {
			return cli.Exit(fmt.Sprintf("no existe el proceso %d en el reporte", id), 2)
		}
		dirLogica := ctx.Int(traducirFlag.Name)
		dirFisica, err := memoria.TraducirDireccion(resultado.Procesos[id-1], dirLogica, cfg.TamPagina)
		if err != nil {
			return salidaDeError(err)
		}
		salida.Traduccion = &traduccion{ProcesoID: id, DirLogica: dirLogica, DirFisica: dirFisica}
	}

	w := ctx.App.Writer
	if ctx.String(formatoFlag.Name) == "json" {
		return escribirJSON(w, salida)
	}

	mostrarProcesos(w, resultado.Procesos)
	fmt.Fprintln(w)
	mostrarMarcos(w, mapa.Marcos, resultado.Procesos)
	fmt.Fprintf(w, "Fragmentación interna informada: %d bytes\n", resultado.FragmentacionInterna)
	if mapa.FueraDeRango > 0 {
		fmt.Fprintf(w, "Entradas con marco fuera de rango: %d\n", mapa.FueraDeRango)
	}
	if resultado.EntradasHuerfanas > 0 {
		fmt.Fprintf(w, "Entradas sin proceso: %d\n", resultado.EntradasHuerfanas)
	}
	for _, a := range resultado.Anomalias {
		fmt.Fprintf(w, "Proceso %d: informa %d páginas pero su tabla tiene %d\n", a.ProcesoID, a.Esperadas, a.Encontradas)
	}
	if t := salida.Traduccion; t != nil {
		fmt.Fprintf(w, "Proceso %d: dirección lógica %d → física %d\n", t.ProcesoID, t.DirLogica, t.DirFisica)
	}
	return nil
}

func calcular(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return cli.Exit("se esperan la configuración y la salida del simulador", 2)
	}

	cfg, err := cargarConfigSimulacion(ctx.Args().Get(0))
	if err != nil {
		return salidaDeError(err)
	}
	resultado, err := leerYParsear(ctx, ctx.Args().Get(1))
	if err != nil {
		return salidaDeError(err)
	}

	rep, err := calculos.Calcular(cfg, resultado.Procesos, resultado.FragmentacionInterna)
	if err != nil {
		return salidaDeError(err)
	}

	if ctx.String(formatoFlag.Name) == "json" {
		return escribirJSON(ctx.App.Writer, rep)
	}
	mostrarCalculos(ctx.App.Writer, rep)
	return nil
}

// leerYParsear lee la salida del simulador de un archivo, o de la entrada
// estándar si la ruta es "-"
func leerYParsear(ctx *cli.Context, ruta string) (*reporte.Resultado, error) {
	var (
		datos []byte
		err   error
	)
	if ruta == "-" {
		datos, err = io.ReadAll(ctx.App.Reader)
	} else {
		datos, err = os.ReadFile(ruta)
	}
	if err != nil {
		return nil, fmt.Errorf("error al leer %s: %w", ruta, err)
	}
	return reporte.Parsear(string(datos))
}
