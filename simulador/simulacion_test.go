package simulador

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/descriptor"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/memoria"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/modelo"
)

func configEjemplo() *modelo.ConfigSimulacion {
	return &modelo.ConfigSimulacion{
		TamMemoriaFisica:    4096,
		BitsDireccionLogica: 12,
		TamPagina:           64,
		Procesos: []modelo.ProcesoSpec{
			{TamCodigo: 32, TamDatos: 96},
			{TamCodigo: 48, TamDatos: 64},
			{TamCodigo: 24, TamDatos: 128},
		},
	}
}

func sumideroEn(dir string) func() (descriptor.Sumidero, error) {
	return func() (descriptor.Sumidero, error) {
		s, err := descriptor.NuevoSumideroArchivos(dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

func fuenteFija(semilla uint64) func() descriptor.FuenteAleatoria {
	return func() descriptor.FuenteAleatoria {
		return descriptor.NuevaFuente(semilla)
	}
}

// simuladorFunc adapta una función a la interfaz Simulador
type simuladorFunc func(ctx context.Context, cfg *modelo.ConfigSimulacion, refs []string) (string, error)

func (f simuladorFunc) Ejecutar(ctx context.Context, cfg *modelo.ConfigSimulacion, refs []string) (string, error) {
	return f(ctx, cfg, refs)
}

func assertDirVacio(t *testing.T, dir string) {
	t.Helper()
	entradas, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entradas)
}

func TestEjecutar_Escenario(t *testing.T) {
	dir := t.TempDir()
	sim := &Simulacion{
		Simulador:     &SimuladorInterno{},
		NuevoSumidero: sumideroEn(dir),
		NuevaFuente:   fuenteFija(7),
	}

	r, err := sim.Ejecutar(context.Background(), configEjemplo())
	require.NoError(t, err)

	assert.Equal(t, 64, r.NumMarcos)
	require.Len(t, r.Marcos, 64)
	require.Len(t, r.Procesos, 3)
	assert.Equal(t, 56, r.FragmentacionInterna)
	assert.Equal(t, []int{2, 2, 3}, []int{r.Procesos[0].NumPaginas, r.Procesos[1].NumPaginas, r.Procesos[2].NumPaginas})

	assert.Equal(t, &modelo.Marco{ProcesoID: 1, Pagina: 0}, r.Marcos[0])
	assert.Equal(t, &modelo.Marco{ProcesoID: 3, Pagina: 2}, r.Marcos[6])
	assert.Nil(t, r.Marcos[7])
	assert.Len(t, r.ListaLibres(), 57)
	assert.Equal(t, 7, r.ListaLibres()[0])
	assert.Empty(t, r.Anomalias)

	require.NotNil(t, r.Calculos)
	assert.Equal(t, 392.0, r.Calculos.Totales.TotalUsado.Valor)
	assert.Equal(t, 448.0, r.Calculos.Totales.TotalAsignado.Valor)
	assert.Equal(t, 56.0, r.Calculos.Totales.FragmentacionTotal.Valor)
	assert.Equal(t, "9.57%", r.Calculos.Totales.Utilizacion.Resultado)
	assert.Equal(t, []float64{0, 16, 40}, []float64{
		r.Calculos.Procesos[0].Fragmentacion.Valor,
		r.Calculos.Procesos[1].Fragmentacion.Valor,
		r.Calculos.Procesos[2].Fragmentacion.Valor,
	})
	assert.Contains(t, r.SalidaCruda, "FRAMES - 7 8 9")

	for _, p := range r.Procesos {
		assert.GreaterOrEqual(t, p.PID, 1)
		assert.LessOrEqual(t, p.PID, 255)
	}

	assertDirVacio(t, dir)
}

func TestResultado_ListaLibres(t *testing.T) {
	procesos := []modelo.ProcesoParseado{
		{ID: 1, TablaPaginas: []modelo.EntradaTabla{{Pagina: 0, Marco: 0}, {Pagina: 1, Marco: 2}}},
	}
	mapa := memoria.Reconstruir(4, procesos)
	r := &Resultado{Marcos: mapa.Marcos, Libres: mapa.Libres}

	assert.Equal(t, []int{1, 3}, r.ListaLibres())
	assert.Equal(t, mapa.ListaLibres(), r.ListaLibres())
	assert.Empty(t, (&Resultado{}).ListaLibres())
}

func TestEjecutar_MismaSemillaMismoResultado(t *testing.T) {
	correr := func() []byte {
		sim := &Simulacion{
			Simulador:     &SimuladorInterno{},
			NuevoSumidero: sumideroEn(t.TempDir()),
			NuevaFuente:   fuenteFija(42),
		}
		r, err := sim.Ejecutar(context.Background(), configEjemplo())
		require.NoError(t, err)
		datos, err := json.Marshal(r)
		require.NoError(t, err)
		return datos
	}

	assert.JSONEq(t, string(correr()), string(correr()))
}

func TestEjecutar_ResultadoJSON(t *testing.T) {
	sim := &Simulacion{
		Simulador:     &SimuladorInterno{},
		NuevoSumidero: sumideroEn(t.TempDir()),
		NuevaFuente:   fuenteFija(1),
	}
	r, err := sim.Ejecutar(context.Background(), configEjemplo())
	require.NoError(t, err)

	datos, err := json.Marshal(r)
	require.NoError(t, err)

	var campos map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(datos, &campos))
	for _, clave := range []string{"config", "numFrames", "frames", "freeFrames", "internalFragmentation", "processes", "rawOutput", "calculations"} {
		assert.Contains(t, campos, clave)
	}
	assert.NotContains(t, campos, "anomalies")
}

func TestEjecutar_TiempoAgotado(t *testing.T) {
	dir := t.TempDir()
	var refsVistas []string
	sim := &Simulacion{
		Simulador: simuladorFunc(func(ctx context.Context, _ *modelo.ConfigSimulacion, refs []string) (string, error) {
			refsVistas = refs
			<-ctx.Done()
			return "", ctx.Err()
		}),
		NuevoSumidero: sumideroEn(dir),
		NuevaFuente:   fuenteFija(1),
		Timeout:       20 * time.Millisecond,
	}

	r, err := sim.Ejecutar(context.Background(), configEjemplo())
	assert.Nil(t, r)
	assert.ErrorIs(t, err, modelo.ErrFalloSimulador)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Len(t, refsVistas, 3)
	assertDirVacio(t, dir)
}

func TestEjecutar_FalloDelSimulador(t *testing.T) {
	sim := &Simulacion{
		Simulador: simuladorFunc(func(context.Context, *modelo.ConfigSimulacion, []string) (string, error) {
			return "", errors.New("segmentation fault")
		}),
		NuevoSumidero: sumideroEn(t.TempDir()),
	}

	_, err := sim.Ejecutar(context.Background(), configEjemplo())
	assert.ErrorIs(t, err, modelo.ErrFalloSimulador)
	assert.ErrorContains(t, err, "segmentation fault")
}

func TestEjecutar_SalidaMalFormada(t *testing.T) {
	sim := &Simulacion{
		Simulador: simuladorFunc(func(context.Context, *modelo.ConfigSimulacion, []string) (string, error) {
			return "Process 1, PID: 3, Process Size: mucho bytes, Number of Pages: 1\n", nil
		}),
		NuevoSumidero: sumideroEn(t.TempDir()),
	}

	_, err := sim.Ejecutar(context.Background(), configEjemplo())
	assert.ErrorIs(t, err, modelo.ErrReporteInvalido)
}

func TestEjecutar_ErroresAntesDelSimulador(t *testing.T) {
	var llamadas atomic.Int32
	sim := &Simulacion{
		Simulador: simuladorFunc(func(context.Context, *modelo.ConfigSimulacion, []string) (string, error) {
			llamadas.Add(1)
			return "", nil
		}),
		NuevoSumidero: sumideroEn(t.TempDir()),
	}

	_, err := sim.Ejecutar(context.Background(), nil)
	assert.ErrorIs(t, err, modelo.ErrConfiguracion)

	cfg := configEjemplo()
	cfg.TamPagina = 0
	_, err = sim.Ejecutar(context.Background(), cfg)
	assert.ErrorIs(t, err, modelo.ErrConfiguracion)

	cfg = configEjemplo()
	cfg.Procesos[1].TamDatos = 70000
	_, err = sim.Ejecutar(context.Background(), cfg)
	assert.ErrorIs(t, err, modelo.ErrDescriptorInvalido)

	assert.Zero(t, llamadas.Load())

	_, err = (&Simulacion{}).Ejecutar(context.Background(), configEjemplo())
	assert.ErrorIs(t, err, modelo.ErrFalloSimulador)
}

func TestSimuladorInterno_SinMarcosSuficientes(t *testing.T) {
	cfg := &modelo.ConfigSimulacion{
		TamMemoriaFisica:    256,
		BitsDireccionLogica: 12,
		TamPagina:           64,
		Procesos:            []modelo.ProcesoSpec{{TamCodigo: 100, TamDatos: 100}, {TamCodigo: 10, TamDatos: 100}},
	}
	sim := &Simulacion{
		Simulador:     &SimuladorInterno{},
		NuevoSumidero: sumideroEn(t.TempDir()),
	}

	_, err := sim.Ejecutar(context.Background(), cfg)
	assert.ErrorIs(t, err, modelo.ErrFalloSimulador)
}

func TestSimuladorInterno_LeeDeMemoria(t *testing.T) {
	sumidero := descriptor.NuevoSumideroMemoria()
	sim := &Simulacion{
		Simulador: &SimuladorInterno{Leer: sumidero.Leer},
		NuevoSumidero: func() (descriptor.Sumidero, error) {
			return sumidero, nil
		},
		NuevaFuente: fuenteFija(3),
	}

	r, err := sim.Ejecutar(context.Background(), configEjemplo())
	require.NoError(t, err)
	assert.Len(t, r.Procesos, 3)
	assert.Empty(t, sumidero.Referencias())
}

func TestEjecutarLote(t *testing.T) {
	var activas, maximo atomic.Int32
	interno := &SimuladorInterno{}
	sim := &Simulacion{
		Simulador: simuladorFunc(func(ctx context.Context, cfg *modelo.ConfigSimulacion, refs []string) (string, error) {
			n := activas.Add(1)
			defer activas.Add(-1)
			for {
				m := maximo.Load()
				if n <= m || maximo.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			return interno.Ejecutar(ctx, cfg, refs)
		}),
		NuevoSumidero: sumideroEn(t.TempDir()),
		NuevaFuente:   fuenteFija(5),
	}

	cfgs := make([]*modelo.ConfigSimulacion, 6)
	for i := range cfgs {
		cfgs[i] = configEjemplo()
		cfgs[i].Procesos = cfgs[i].Procesos[:i%3+1]
	}

	resultados, err := sim.EjecutarLote(context.Background(), cfgs, 2)
	require.NoError(t, err)
	require.Len(t, resultados, 6)
	for i, r := range resultados {
		assert.Len(t, r.Procesos, i%3+1, "simulación %d", i+1)
	}
	assert.LessOrEqual(t, maximo.Load(), int32(2))
}

func TestEjecutarLote_ErrorCancelaElResto(t *testing.T) {
	sim := &Simulacion{
		Simulador:     &SimuladorInterno{},
		NuevoSumidero: sumideroEn(t.TempDir()),
	}

	invalida := configEjemplo()
	invalida.TamPagina = 48
	cfgs := []*modelo.ConfigSimulacion{configEjemplo(), invalida, configEjemplo()}

	resultados, err := sim.EjecutarLote(context.Background(), cfgs, 1)
	assert.Nil(t, resultados)
	assert.ErrorIs(t, err, modelo.ErrConfiguracion)
	assert.ErrorContains(t, err, "simulación 2")
}

func escribirScript(t *testing.T, cuerpo string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requiere /bin/sh")
	}
	ruta := filepath.Join(t.TempDir(), "paging")
	require.NoError(t, os.WriteFile(ruta, []byte("#!/bin/sh\n"+cuerpo+"\n"), 0755))
	return ruta
}

func TestSimuladorExterno_Argumentos(t *testing.T) {
	ruta := escribirScript(t, `echo "args: $*"`)

	salida, err := (&SimuladorExterno{Ruta: ruta}).Ejecutar(context.Background(), configEjemplo(), []string{"a.proc", "b.proc"})
	require.NoError(t, err)
	assert.Equal(t, "args: 4096 12 64 a.proc b.proc\n", salida)
}

func TestSimuladorExterno_CodigoDeSalida(t *testing.T) {
	ruta := escribirScript(t, "echo 'Not enough frames available' >&2\nexit 3")

	_, err := (&SimuladorExterno{Ruta: ruta}).Ejecutar(context.Background(), configEjemplo(), nil)
	assert.ErrorIs(t, err, modelo.ErrFalloSimulador)
	assert.ErrorContains(t, err, "Not enough frames available")

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode())
}

func TestSimuladorExterno_TiempoAgotado(t *testing.T) {
	ruta := escribirScript(t, "exec sleep 5")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	inicio := time.Now()
	_, err := (&SimuladorExterno{Ruta: ruta}).Ejecutar(ctx, configEjemplo(), nil)
	assert.ErrorIs(t, err, modelo.ErrFalloSimulador)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(inicio), 4*time.Second)
}

func TestSimuladorExterno_RutaInexistente(t *testing.T) {
	_, err := (&SimuladorExterno{Ruta: filepath.Join(t.TempDir(), "no-existe")}).Ejecutar(context.Background(), configEjemplo(), nil)
	assert.ErrorIs(t, err, modelo.ErrFalloSimulador)

	_, err = (&SimuladorExterno{}).Ejecutar(context.Background(), configEjemplo(), nil)
	assert.ErrorIs(t, err, modelo.ErrFalloSimulador)
}

func TestEjecutar_ConSimuladorExterno(t *testing.T) {
	transcripcion := strings.Join([]string{
		"Process 1, PID: 201, Process Size: 128 bytes, Number of Pages: 2",
		"Page Table:",
		"  Page 0 -> Frame 10",
		"  Page 1 -> Frame 11",
		"Process 2, PID: 14, Process Size: 112 bytes, Number of Pages: 2",
		"  Page 0 -> Frame 3",
		"  Page 1 -> Frame 70",
		"Process 3, PID: 9, Process Size: 152 bytes, Number of Pages: 3",
		"  Page 0 -> Frame 0",
		"  Page 1 -> Frame 1",
		"  Page 2 -> Frame 2",
		"Total Internal Fragmentation: 56 bytes",
	}, "\n")
	ruta := escribirScript(t, "cat <<'FIN'\n"+transcripcion+"\nFIN")

	dir := t.TempDir()
	sim := &Simulacion{
		Simulador:     &SimuladorExterno{Ruta: ruta},
		NuevoSumidero: sumideroEn(dir),
		Timeout:       5 * time.Second,
	}

	r, err := sim.Ejecutar(context.Background(), configEjemplo())
	require.NoError(t, err)

	assert.Equal(t, 1, r.MarcosFueraDeRango)
	assert.Equal(t, &modelo.Marco{ProcesoID: 1, Pagina: 1}, r.Marcos[11])
	assert.Equal(t, &modelo.Marco{ProcesoID: 2, Pagina: 0}, r.Marcos[3])
	assert.Equal(t, 201, r.Procesos[0].PID)
	assert.Len(t, r.ListaLibres(), 64-6)
	assert.Equal(t, 56, r.FragmentacionInterna)
	assertDirVacio(t, dir)
}
