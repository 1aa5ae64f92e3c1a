package simulador

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/calculos"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/descriptor"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/memoria"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/modelo"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/reporte"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/utils"
)

// TimeoutPorDefecto es el tiempo máximo que se espera al simulador
const TimeoutPorDefecto = 30 * time.Second

// Simulacion encadena codificación, simulador, parseo, reconstrucción y cálculos
type Simulacion struct {
	Simulador Simulador

	// NuevoSumidero se llama una vez por corrida. Por defecto usa archivos temporales.
	NuevoSumidero func() (descriptor.Sumidero, error)
	// NuevaFuente se llama una vez por corrida. Por defecto usa una semilla aleatoria.
	NuevaFuente func() descriptor.FuenteAleatoria

	Timeout time.Duration
}

// Resultado tiene la forma de la respuesta original más los cálculos
type Resultado struct {
	Config               *modelo.ConfigSimulacion `json:"config"`
	NumMarcos            int                      `json:"numFrames"`
	Marcos               []*modelo.Marco          `json:"frames"`
	Libres               []bool                   `json:"freeFrames"`
	FragmentacionInterna int                      `json:"internalFragmentation"`
	Procesos             []modelo.ProcesoParseado `json:"processes"`
	SalidaCruda          string                   `json:"rawOutput"`
	Calculos             *calculos.Reporte        `json:"calculations"`

	Anomalias          []reporte.Anomalia `json:"anomalies,omitempty"`
	MarcosFueraDeRango int                `json:"outOfRangeFrames,omitempty"`
}

// ListaLibres devuelve los números de marco libres
func (r *Resultado) ListaLibres() []int {
	mapa := memoria.Mapa{Marcos: r.Marcos, Libres: r.Libres}
	return mapa.ListaLibres()
}

// Ejecutar corre una simulación completa. Los descriptores se borran al
// terminar, salga bien o mal.
func (s *Simulacion) Ejecutar(ctx context.Context, cfg *modelo.ConfigSimulacion) (*Resultado, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: configuración vacía", modelo.ErrConfiguracion)
	}
	if err := cfg.Validar(); err != nil {
		utils.ErrorLog.Error("Configuración inválida", "error", err)
		return nil, err
	}
	if s.Simulador == nil {
		return nil, fmt.Errorf("%w: no hay simulador configurado", modelo.ErrFalloSimulador)
	}

	numMarcos, err := cfg.NumMarcos()
	if err != nil {
		return nil, err
	}

	utils.InfoLog.Info("Simulación iniciada",
		"memoria", cfg.TamMemoriaFisica,
		"bits_logicos", cfg.BitsDireccionLogica,
		"tam_pagina", cfg.TamPagina,
		"procesos", len(cfg.Procesos))

	sumidero, err := s.sumidero()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := sumidero.Limpiar(); err != nil {
			utils.ErrorLog.Error("Error limpiando descriptores", "error", err)
		}
	}()

	refs, err := codificarProcesos(cfg, sumidero, s.fuente())
	if err != nil {
		return nil, err
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = TimeoutPorDefecto
	}
	ctxSim, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	salida, err := s.Simulador.Ejecutar(ctxSim, cfg, refs)
	if err != nil {
		if !errors.Is(err, modelo.ErrFalloSimulador) {
			err = fmt.Errorf("%w: %w", modelo.ErrFalloSimulador, err)
		}
		utils.ErrorLog.Error("Falló el simulador", "error", err)
		return nil, err
	}

	parseado, err := reporte.Parsear(salida)
	if err != nil {
		utils.ErrorLog.Error("No se pudo interpretar la salida del simulador", "error", err)
		return nil, err
	}

	mapa := memoria.Reconstruir(numMarcos, parseado.Procesos)

	reporteCalculos, err := calculos.Calcular(cfg, parseado.Procesos, parseado.FragmentacionInterna)
	if err != nil {
		return nil, err
	}

	utils.InfoLog.Info("Simulación finalizada",
		"procesos", len(parseado.Procesos),
		"marcos_libres", mapa.ContarLibres(),
		"fragmentacion", parseado.FragmentacionInterna)

	return &Resultado{
		Config:               cfg,
		NumMarcos:            numMarcos,
		Marcos:               mapa.Marcos,
		Libres:               mapa.Libres,
		FragmentacionInterna: parseado.FragmentacionInterna,
		Procesos:             parseado.Procesos,
		SalidaCruda:          salida,
		Calculos:             reporteCalculos,
		Anomalias:            parseado.Anomalias,
		MarcosFueraDeRango:   mapa.FueraDeRango,
	}, nil
}

// EjecutarLote corre configuraciones independientes en paralelo, con a lo sumo
// maxConcurrentes simulaciones a la vez. El primer error cancela el resto.
func (s *Simulacion) EjecutarLote(ctx context.Context, cfgs []*modelo.ConfigSimulacion, maxConcurrentes int) ([]*Resultado, error) {
	resultados := make([]*Resultado, len(cfgs))
	sem := utils.NewSemaforo(maxConcurrentes)
	g, ctx := errgroup.WithContext(ctx)

	utils.InfoLog.Info("Lote iniciado", "simulaciones", len(cfgs), "concurrencia", sem.Capacidad())

	for i, cfg := range cfgs {
		g.Go(func() error {
			if err := sem.WaitContext(ctx); err != nil {
				return err
			}
			defer sem.Signal()

			r, err := s.Ejecutar(ctx, cfg)
			if err != nil {
				return fmt.Errorf("simulación %d: %w", i+1, err)
			}
			resultados[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resultados, nil
}

func codificarProcesos(cfg *modelo.ConfigSimulacion, sumidero descriptor.Sumidero, fuente descriptor.FuenteAleatoria) ([]string, error) {
	refs := make([]string, 0, len(cfg.Procesos))
	for i, spec := range cfg.Procesos {
		datos, err := descriptor.Codificar(spec, fuente)
		if err != nil {
			return nil, fmt.Errorf("proceso %d: %w", i+1, err)
		}
		ref, err := sumidero.Guardar(i+1, datos)
		if err != nil {
			return nil, fmt.Errorf("proceso %d: %w", i+1, err)
		}
		utils.InfoLog.Debug("Descriptor generado", "id", i+1, "pid", int(datos[0]), "bytes", len(datos), "ref", ref)
		refs = append(refs, ref)
	}
	return refs, nil
}

func (s *Simulacion) sumidero() (descriptor.Sumidero, error) {
	if s.NuevoSumidero != nil {
		return s.NuevoSumidero()
	}
	sumidero, err := descriptor.NuevoSumideroArchivos("")
	if err != nil {
		return nil, err
	}
	return sumidero, nil
}

func (s *Simulacion) fuente() descriptor.FuenteAleatoria {
	if s.NuevaFuente != nil {
		return s.NuevaFuente()
	}
	return descriptor.NuevaFuente(rand.Uint64())
}
