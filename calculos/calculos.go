package calculos

import (
	"fmt"
	"math"
	"math/bits"
	"strings"

	"github.com/holiman/uint256"

	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/modelo"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/utils"
)

// ReporteMemoria agrupa las cantidades que dependen solo de la configuración
type ReporteMemoria struct {
	NumMarcos          modelo.Derivacion `json:"numFrames"`
	BitsDesplazamiento modelo.Derivacion `json:"offsetBits"`
	BitsPagina         modelo.Derivacion `json:"pageBits"`
	MaxPaginas         modelo.Derivacion `json:"maxPages"`
}

// ReporteProceso agrupa las cantidades de un proceso. NumPaginas es la cantidad
// informada por el simulador y NumPaginasIdeal la calculada por techo; no se
// reconcilian.
type ReporteProceso struct {
	ID              int               `json:"id"`
	PID             int               `json:"pid"`
	TamProceso      modelo.Derivacion `json:"processSize"`
	NumPaginas      modelo.Derivacion `json:"numPages"`
	NumPaginasIdeal modelo.Derivacion `json:"idealNumPages"`
	Fragmentacion   modelo.Derivacion `json:"fragmentation"`
}

// ReporteTotales agrupa las cantidades sobre todos los procesos
type ReporteTotales struct {
	TotalUsado         modelo.Derivacion `json:"totalUsed"`
	TotalAsignado      modelo.Derivacion `json:"totalAllocated"`
	FragmentacionTotal modelo.Derivacion `json:"totalFragmentation"`
	Utilizacion        modelo.Derivacion `json:"utilization"`
}

// EjemploTraduccion muestra la traducción de una dirección de ejemplo
type EjemploTraduccion struct {
	ProcesoID      int               `json:"processId"`
	Pagina         int               `json:"pageNumber"`
	Marco          int               `json:"frameNumber"`
	Desplazamiento modelo.Derivacion `json:"offset"`
	DirLogica      modelo.Derivacion `json:"logicalAddress"`
	DirFisica      modelo.Derivacion `json:"physicalAddress"`
}

// Reporte contiene la derivación completa de las cantidades de paginación
type Reporte struct {
	Memoria  ReporteMemoria   `json:"memory"`
	Procesos []ReporteProceso `json:"processes"`
	Totales  ReporteTotales   `json:"totals"`

	// Lo que informó el simulador, sin recalcular
	FragmentacionInformada int `json:"reportedInternalFragmentation"`

	Traduccion *EjemploTraduccion `json:"addressTranslation,omitempty"`
}

// Calcular deriva todas las cantidades a partir de la configuración y de los
// procesos que informó el simulador. Es una función pura.
func Calcular(cfg *modelo.ConfigSimulacion, procesos []modelo.ProcesoParseado, fragmentacionInterna int) (*Reporte, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: configuración vacía", modelo.ErrConfiguracion)
	}
	if err := cfg.Validar(); err != nil {
		return nil, err
	}

	if len(procesos) != len(cfg.Procesos) {
		utils.InfoLog.Warn("La cantidad de procesos informada no coincide con la configuración",
			"configurados", len(cfg.Procesos),
			"informados", len(procesos))
	}

	reporte := &Reporte{
		Memoria:                calcularMemoria(cfg),
		Procesos:               calcularProcesos(cfg, procesos),
		Totales:                calcularTotales(cfg),
		FragmentacionInformada: fragmentacionInterna,
		Traduccion:             calcularTraduccion(cfg, procesos),
	}

	utils.InfoLog.Info("Cálculos completados",
		"marcos", reporte.Memoria.NumMarcos.Valor,
		"bits_desplazamiento", reporte.Memoria.BitsDesplazamiento.Valor,
		"fragmentacion_total", reporte.Totales.FragmentacionTotal.Valor,
		"utilizacion", reporte.Totales.Utilizacion.Resultado)

	return reporte, nil
}

func calcularMemoria(cfg *modelo.ConfigSimulacion) ReporteMemoria {
	numMarcos := cfg.TamMemoriaFisica / cfg.TamPagina
	bitsDesp := modelo.Log2(cfg.TamPagina)
	bitsPagina := cfg.BitsDireccionLogica - bitsDesp

	r := ReporteMemoria{
		NumMarcos: derivar(
			"numMarcos = memoriaFisica / tamPagina",
			fmt.Sprintf("%d / %d", cfg.TamMemoriaFisica, cfg.TamPagina),
			fmt.Sprintf("%d marcos", numMarcos),
			float64(numMarcos)),
		BitsDesplazamiento: derivar(
			"bitsDesplazamiento = log2(tamPagina)",
			fmt.Sprintf("log2(%d)", cfg.TamPagina),
			fmt.Sprintf("%d bits", bitsDesp),
			float64(bitsDesp)),
		BitsPagina: derivar(
			"bitsPagina = bitsDireccionLogica - bitsDesplazamiento",
			fmt.Sprintf("%d - %d", cfg.BitsDireccionLogica, bitsDesp),
			fmt.Sprintf("%d bits", bitsPagina),
			float64(bitsPagina)),
	}

	if bitsPagina <= 0 {
		r.MaxPaginas = derivar(
			"maxPaginas = 2^bitsPagina",
			fmt.Sprintf("bitsPagina = %d <= 0", bitsPagina),
			"0 páginas",
			0)
	} else {
		maxPaginas := new(uint256.Int).Lsh(uint256.NewInt(1), uint(bitsPagina))
		r.MaxPaginas = derivar(
			"maxPaginas = 2^bitsPagina",
			fmt.Sprintf("2^%d", bitsPagina),
			fmt.Sprintf("%s páginas", maxPaginas.Dec()),
			math.Ldexp(1, bitsPagina))
	}

	return r
}

func calcularProcesos(cfg *modelo.ConfigSimulacion, procesos []modelo.ProcesoParseado) []ReporteProceso {
	n := min(len(cfg.Procesos), len(procesos))
	out := make([]ReporteProceso, 0, n)

	for i := 0; i < n; i++ {
		spec := cfg.Procesos[i]
		parseado := procesos[i]

		tamProceso := spec.TamProceso()
		numPaginas := parseado.NumPaginas
		ideal := modelo.PaginasNecesarias(tamProceso, cfg.TamPagina)
		fragmentacion := numPaginas*cfg.TamPagina - tamProceso

		out = append(out, ReporteProceso{
			ID:  parseado.ID,
			PID: parseado.PID,
			TamProceso: derivar(
				"tamProceso = tamCodigo + tamDatos",
				fmt.Sprintf("%d + %d", spec.TamCodigo, spec.TamDatos),
				fmt.Sprintf("%d bytes", tamProceso),
				float64(tamProceso)),
			NumPaginas: derivar(
				"numPaginas = informado por el simulador",
				fmt.Sprintf("%d", numPaginas),
				fmt.Sprintf("%d páginas", numPaginas),
				float64(numPaginas)),
			NumPaginasIdeal: derivar(
				"numPaginasIdeal = ceil(tamProceso / tamPagina)",
				fmt.Sprintf("ceil(%d / %d)", tamProceso, cfg.TamPagina),
				fmt.Sprintf("%d páginas", ideal),
				float64(ideal)),
			Fragmentacion: derivar(
				"fragmentacion = numPaginas × tamPagina - tamProceso",
				fmt.Sprintf("%d × %d - %d", numPaginas, cfg.TamPagina, tamProceso),
				fmt.Sprintf("%d bytes", fragmentacion),
				float64(fragmentacion)),
		})

		if numPaginas != ideal {
			utils.InfoLog.Warn("El simulador informó una cantidad de páginas distinta a la esperada",
				"id", parseado.ID,
				"pid", parseado.PID,
				"informadas", numPaginas,
				"esperadas", ideal)
		}
	}

	return out
}

func calcularTotales(cfg *modelo.ConfigSimulacion) ReporteTotales {
	totalUsado := 0
	totalAsignado := 0
	sumandosUsado := make([]string, 0, len(cfg.Procesos))
	sumandosAsignado := make([]string, 0, len(cfg.Procesos))

	for _, spec := range cfg.Procesos {
		tam := spec.TamProceso()
		paginas := modelo.PaginasNecesarias(tam, cfg.TamPagina)

		totalUsado += tam
		totalAsignado += paginas * cfg.TamPagina
		sumandosUsado = append(sumandosUsado, fmt.Sprintf("%d", tam))
		sumandosAsignado = append(sumandosAsignado, fmt.Sprintf("%d × %d", paginas, cfg.TamPagina))
	}

	fragmentacion := totalAsignado - totalUsado
	utilizacion := modelo.Porcentaje(totalUsado, cfg.TamMemoriaFisica)

	return ReporteTotales{
		TotalUsado: derivar(
			"totalUsado = Σ tamProceso",
			sumar(sumandosUsado),
			fmt.Sprintf("%d bytes", totalUsado),
			float64(totalUsado)),
		TotalAsignado: derivar(
			"totalAsignado = Σ ceil(tamProceso / tamPagina) × tamPagina",
			sumar(sumandosAsignado),
			fmt.Sprintf("%d bytes", totalAsignado),
			float64(totalAsignado)),
		FragmentacionTotal: derivar(
			"fragmentacionTotal = totalAsignado - totalUsado",
			fmt.Sprintf("%d - %d", totalAsignado, totalUsado),
			fmt.Sprintf("%d bytes", fragmentacion),
			float64(fragmentacion)),
		Utilizacion: derivar(
			"utilizacion = totalUsado / memoriaFisica × 100",
			fmt.Sprintf("%d / %d × 100", totalUsado, cfg.TamMemoriaFisica),
			fmt.Sprintf("%.2f%%", utilizacion),
			utilizacion),
	}
}

// calcularTraduccion usa la primera entrada del primer proceso que tenga tabla
// de páginas. El desplazamiento fijo de un cuarto de página es solo ilustrativo.
func calcularTraduccion(cfg *modelo.ConfigSimulacion, procesos []modelo.ProcesoParseado) *EjemploTraduccion {
	for _, p := range procesos {
		if len(p.TablaPaginas) == 0 {
			continue
		}
		entrada := p.TablaPaginas[0]

		bitsDesp := modelo.Log2(cfg.TamPagina)
		desplazamiento := cfg.TamPagina / 4
		dirLogica := (entrada.Pagina << bitsDesp) + desplazamiento
		dirFisica := entrada.Marco*cfg.TamPagina + desplazamiento

		anchoLogico := cfg.BitsDireccionLogica
		anchoFisico := bits.Len(uint(cfg.TamMemoriaFisica - 1))

		return &EjemploTraduccion{
			ProcesoID: p.ID,
			Pagina:    entrada.Pagina,
			Marco:     entrada.Marco,
			Desplazamiento: derivar(
				"desplazamiento = tamPagina / 4",
				fmt.Sprintf("%d / 4", cfg.TamPagina),
				fmt.Sprintf("%d bytes", desplazamiento),
				float64(desplazamiento)),
			DirLogica: derivar(
				"dirLogica = (pagina << bitsDesplazamiento) + desplazamiento",
				fmt.Sprintf("(%d << %d) + %d", entrada.Pagina, bitsDesp, desplazamiento),
				formatearDireccion(dirLogica, anchoLogico),
				float64(dirLogica)),
			DirFisica: derivar(
				"dirFisica = marco × tamPagina + desplazamiento",
				fmt.Sprintf("%d × %d + %d", entrada.Marco, cfg.TamPagina, desplazamiento),
				formatearDireccion(dirFisica, anchoFisico),
				float64(dirFisica)),
		}
	}
	return nil
}

func derivar(formula string, calculo string, resultado string, valor float64) modelo.Derivacion {
	return modelo.Derivacion{
		Formula:   formula,
		Calculo:   calculo,
		Resultado: resultado,
		Valor:     valor,
	}
}

func sumar(sumandos []string) string {
	if len(sumandos) == 0 {
		return "0"
	}
	return strings.Join(sumandos, " + ")
}

// formatearDireccion muestra la dirección en decimal, binario y hexadecimal
func formatearDireccion(dir int, anchoBits int) string {
	if anchoBits < 1 {
		anchoBits = 1
	}
	anchoHex := (anchoBits + 3) / 4
	return fmt.Sprintf("%d (0b%0*b, 0x%0*X)", dir, anchoBits, dir, anchoHex, dir)
}
