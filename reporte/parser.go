package reporte

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/modelo"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/utils"
)

// Cada forma de línea tiene dos patrones: uno laxo que decide si la línea es
// de ese tipo y uno estricto que captura los campos. Una línea que cumple el
// laxo y no el estricto es un error, una que no cumple ninguno se ignora.
var (
	formaProceso  = regexp.MustCompile(`^Process\b.*PID:`)
	campoProceso  = regexp.MustCompile(`^Process\b[^,]*,\s*PID:\s*(\S*)\s*,\s*Process Size:\s*(\S*?)\s*bytes\s*,\s*Number of Pages:\s*(\S*)$`)
	formaPagina   = regexp.MustCompile(`^Page\b.*->\s*Frame\b`)
	campoPagina   = regexp.MustCompile(`^Page\s+(\S*)\s*->\s*Frame\s+(\S*)$`)
	marcaFragment = "Total Internal Fragmentation:"
	campoFragment = regexp.MustCompile(`Total Internal Fragmentation:\s*(\S*?)\s*bytes`)
)

// ErrorParseo identifica la línea reconocida que tiene un campo mal formado
type ErrorParseo struct {
	Linea int    // Número de línea, desde 1
	Texto string // Línea sin espacios al borde
	Campo string // Campo que no se pudo interpretar
	Valor string
	Err   error
}

func (e *ErrorParseo) Error() string {
	if e.Campo == "" {
		return fmt.Sprintf("línea %d mal formada: %q", e.Linea, e.Texto)
	}
	return fmt.Sprintf("línea %d: campo %s inválido (%q) en %q", e.Linea, e.Campo, e.Valor, e.Texto)
}

// Unwrap permite errors.Is(err, modelo.ErrReporteInvalido) y llegar al error de conversión
func (e *ErrorParseo) Unwrap() []error {
	if e.Err == nil {
		return []error{modelo.ErrReporteInvalido}
	}
	return []error{modelo.ErrReporteInvalido, e.Err}
}

// Anomalia es una diferencia entre la cantidad de páginas informada y las
// entradas de tabla encontradas. No detiene el parseo.
type Anomalia struct {
	ProcesoID   int `json:"processId"`
	Esperadas   int `json:"expected"`
	Encontradas int `json:"found"`
}

// Resultado es la salida del simulador ya estructurada
type Resultado struct {
	Procesos             []modelo.ProcesoParseado `json:"processes"`
	FragmentacionInterna int                      `json:"internalFragmentation"`
	Anomalias            []Anomalia               `json:"anomalies,omitempty"`
	EntradasHuerfanas    int                      `json:"orphanEntries,omitempty"` // Páginas antes de cualquier proceso
}

// Parsear recorre la salida del simulador una sola vez, línea por línea
func Parsear(salida string) (*Resultado, error) {
	resultado := &Resultado{Procesos: []modelo.ProcesoParseado{}}
	var actual *modelo.ProcesoParseado
	fragmentacionVista := false

	lineas := strings.Split(salida, "\n")
	for i, cruda := range lineas {
		nro := i + 1
		linea := strings.TrimSpace(cruda)

		switch {
		case formaProceso.MatchString(linea):
			proceso, err := parsearProceso(nro, linea)
			if err != nil {
				return nil, err
			}
			proceso.ID = len(resultado.Procesos) + 1
			resultado.Procesos = append(resultado.Procesos, *proceso)
			actual = &resultado.Procesos[len(resultado.Procesos)-1]
			utils.InfoLog.Debug("Proceso leído", "id", proceso.ID, "pid", proceso.PID, "paginas", proceso.NumPaginas)

		case formaPagina.MatchString(linea):
			entrada, err := parsearPagina(nro, linea)
			if err != nil {
				return nil, err
			}
			if actual == nil {
				resultado.EntradasHuerfanas++
				utils.InfoLog.Debug("Entrada de tabla sin proceso, se descarta", "linea", nro)
				continue
			}
			actual.TablaPaginas = append(actual.TablaPaginas, entrada)
		}

		if !fragmentacionVista && strings.Contains(linea, marcaFragment) {
			valor, err := parsearFragmentacion(nro, linea)
			if err != nil {
				return nil, err
			}
			resultado.FragmentacionInterna = valor
			fragmentacionVista = true
		}
	}

	for i := range resultado.Procesos {
		p := &resultado.Procesos[i]
		if p.TablaPaginas == nil {
			p.TablaPaginas = []modelo.EntradaTabla{}
		}
		if len(p.TablaPaginas) != p.NumPaginas {
			resultado.Anomalias = append(resultado.Anomalias, Anomalia{
				ProcesoID:   p.ID,
				Esperadas:   p.NumPaginas,
				Encontradas: len(p.TablaPaginas),
			})
			utils.InfoLog.Warn("Tabla de páginas incompleta",
				"id", p.ID,
				"pid", p.PID,
				"paginas_informadas", p.NumPaginas,
				"entradas", len(p.TablaPaginas))
		}
	}

	utils.InfoLog.Info("Salida del simulador parseada",
		"procesos", len(resultado.Procesos),
		"fragmentacion_interna", resultado.FragmentacionInterna,
		"anomalias", len(resultado.Anomalias))

	return resultado, nil
}

func parsearProceso(nro int, linea string) (*modelo.ProcesoParseado, error) {
	m := campoProceso.FindStringSubmatch(linea)
	if m == nil {
		return nil, &ErrorParseo{Linea: nro, Texto: linea}
	}

	pid, err := atoiCampo(nro, linea, "PID", m[1])
	if err != nil {
		return nil, err
	}
	tamanio, err := atoiCampo(nro, linea, "Process Size", m[2])
	if err != nil {
		return nil, err
	}
	paginas, err := atoiCampo(nro, linea, "Number of Pages", m[3])
	if err != nil {
		return nil, err
	}

	return &modelo.ProcesoParseado{
		PID:          pid,
		TamProceso:   tamanio,
		NumPaginas:   paginas,
		TablaPaginas: []modelo.EntradaTabla{},
	}, nil
}

func parsearPagina(nro int, linea string) (modelo.EntradaTabla, error) {
	m := campoPagina.FindStringSubmatch(linea)
	if m == nil {
		return modelo.EntradaTabla{}, &ErrorParseo{Linea: nro, Texto: linea}
	}

	pagina, err := atoiCampo(nro, linea, "Page", m[1])
	if err != nil {
		return modelo.EntradaTabla{}, err
	}
	marco, err := atoiCampo(nro, linea, "Frame", m[2])
	if err != nil {
		return modelo.EntradaTabla{}, err
	}

	return modelo.EntradaTabla{Pagina: pagina, Marco: marco, Valido: true}, nil
}

func parsearFragmentacion(nro int, linea string) (int, error) {
	m := campoFragment.FindStringSubmatch(linea)
	if m == nil {
		return 0, &ErrorParseo{Linea: nro, Texto: linea, Campo: marcaFragment}
	}
	return atoiCampo(nro, linea, "Total Internal Fragmentation", m[1])
}

func atoiCampo(nro int, linea string, campo string, valor string) (int, error) {
	n, err := strconv.Atoi(valor)
	if err != nil {
		utils.ErrorLog.Error("Campo numérico inválido en la salida del simulador",
			"linea", nro, "campo", campo, "valor", valor)
		return 0, &ErrorParseo{Linea: nro, Texto: linea, Campo: campo, Valor: valor, Err: err}
	}
	return n, nil
}
