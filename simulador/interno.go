package simulador

import (
	"context"
	"fmt"
	"os"

	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/descriptor"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/modelo"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/reporte"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/utils"
)

// SimuladorInterno asigna marcos sin un binario externo: cada página va al
// primer marco libre, en el orden de los descriptores. Escribe el mismo
// reporte que el simulador externo.
type SimuladorInterno struct {
	// Leer obtiene los bytes de un descriptor. Por defecto lee el archivo.
	Leer func(ref string) ([]byte, error)
}

func (s *SimuladorInterno) Ejecutar(ctx context.Context, cfg *modelo.ConfigSimulacion, refs []string) (string, error) {
	leer := s.Leer
	if leer == nil {
		leer = os.ReadFile
	}

	numMarcos, err := cfg.NumMarcos()
	if err != nil {
		return "", err
	}

	libres := make([]bool, numMarcos)
	for i := range libres {
		libres[i] = true
	}

	procesos := make([]modelo.ProcesoParseado, 0, len(refs))
	fragmentacion := 0
	siguiente := 0

	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%w: %w", modelo.ErrFalloSimulador, err)
		}

		datos, err := leer(ref)
		if err != nil {
			return "", fmt.Errorf("%w: no se pudo leer %s: %w", modelo.ErrFalloSimulador, ref, err)
		}
		desc, err := descriptor.Decodificar(datos)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", modelo.ErrFalloSimulador, ref, err)
		}

		tamProceso := desc.TamCodigo() + desc.TamDatos()
		numPaginas := modelo.PaginasNecesarias(tamProceso, cfg.TamPagina)
		proceso := modelo.ProcesoParseado{
			ID:           i + 1,
			PID:          desc.PID,
			TamProceso:   tamProceso,
			NumPaginas:   numPaginas,
			TablaPaginas: make([]modelo.EntradaTabla, 0, numPaginas),
		}

		for pagina := 0; pagina < numPaginas; pagina++ {
			for siguiente < numMarcos && !libres[siguiente] {
				siguiente++
			}
			if siguiente >= numMarcos {
				utils.ErrorLog.Error("Memoria insuficiente",
					"id", proceso.ID,
					"pid", proceso.PID,
					"paginas", numPaginas,
					"total_marcos", numMarcos)
				return "", fmt.Errorf("%w: no hay marcos libres para el proceso %d", modelo.ErrFalloSimulador, proceso.ID)
			}

			proceso.TablaPaginas = append(proceso.TablaPaginas, modelo.EntradaTabla{
				Pagina: pagina,
				Marco:  siguiente,
				Valido: true,
			})
			libres[siguiente] = false
			siguiente++
		}

		if resto := tamProceso % cfg.TamPagina; resto != 0 {
			fragmentacion += cfg.TamPagina - resto
		}

		utils.InfoLog.Debug("Proceso asignado",
			"id", proceso.ID,
			"pid", proceso.PID,
			"tamanio", tamProceso,
			"paginas", numPaginas)
		procesos = append(procesos, proceso)
	}

	listaLibres := []int{}
	for marco, libre := range libres {
		if libre {
			listaLibres = append(listaLibres, marco)
		}
	}

	return reporte.Formatear(reporte.Salida{
		Config:               cfg,
		NumMarcos:            numMarcos,
		Procesos:             procesos,
		FragmentacionInterna: fragmentacion,
		Libres:               listaLibres,
	}), nil
}
