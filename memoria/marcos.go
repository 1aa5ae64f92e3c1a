package memoria

import (
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/modelo"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/utils"
)

// Mapa es la tabla de marcos físicos reconstruida a partir de las tablas de páginas
type Mapa struct {
	Marcos []*modelo.Marco `json:"frames"`     // nil = marco libre
	Libres []bool          `json:"freeFrames"` // true = libre, false = ocupado

	FueraDeRango int `json:"-"` // Entradas con marco inexistente, descartadas
	Sobrescritos int `json:"-"` // Marcos reclamados por más de una entrada
}

// Reconstruir arma la tabla de marcos. Las entradas con un marco fuera de
// [0, numMarcos) se descartan; si dos entradas reclaman el mismo marco queda
// la última en el orden del reporte.
func Reconstruir(numMarcos int, procesos []modelo.ProcesoParseado) *Mapa {
	if numMarcos < 0 {
		numMarcos = 0
	}

	mapa := &Mapa{
		Marcos: make([]*modelo.Marco, numMarcos),
		Libres: make([]bool, numMarcos),
	}
	for i := range mapa.Libres {
		mapa.Libres[i] = true // Inicialmente, todos los marcos están libres
	}

	for _, proceso := range procesos {
		for _, entrada := range proceso.TablaPaginas {
			marco := entrada.Marco
			if marco < 0 || marco >= numMarcos {
				mapa.FueraDeRango++
				utils.InfoLog.Warn("Marco fuera de rango, se ignora",
					"id", proceso.ID,
					"pagina", entrada.Pagina,
					"marco", marco,
					"total_marcos", numMarcos)
				continue
			}

			if !mapa.Libres[marco] {
				mapa.Sobrescritos++
				utils.InfoLog.Debug("Marco reclamado nuevamente, queda la última entrada",
					"marco", marco,
					"id_anterior", mapa.Marcos[marco].ProcesoID,
					"id", proceso.ID)
			}

			mapa.Marcos[marco] = &modelo.Marco{ProcesoID: proceso.ID, Pagina: entrada.Pagina}
			mapa.Libres[marco] = false
		}
	}

	utils.InfoLog.Info("Mapa de marcos reconstruido",
		"total_marcos", numMarcos,
		"marcos_libres", mapa.ContarLibres(),
		"fuera_de_rango", mapa.FueraDeRango,
		"sobrescritos", mapa.Sobrescritos)

	return mapa
}

// NumMarcos devuelve la cantidad de marcos del mapa
func (m *Mapa) NumMarcos() int {
	return len(m.Marcos)
}

// ContarLibres cuenta el número de marcos libres
func (m *Mapa) ContarLibres() int {
	count := 0
	for _, libre := range m.Libres {
		if libre {
			count++
		}
	}
	return count
}

// ListaLibres devuelve los números de marco libres en orden
func (m *Mapa) ListaLibres() []int {
	libres := make([]int, 0, len(m.Libres))
	for i, libre := range m.Libres {
		if libre {
			libres = append(libres, i)
		}
	}
	return libres
}

// EspacioLibre calcula el espacio libre total en bytes
func (m *Mapa) EspacioLibre(tamPagina int) int {
	return m.ContarLibres() * tamPagina
}

// MarcosDeProceso lista los marcos que quedaron asignados al proceso con ese ID
func (m *Mapa) MarcosDeProceso(id int) []int {
	marcos := []int{}
	for i, marco := range m.Marcos {
		if marco != nil && marco.ProcesoID == id {
			marcos = append(marcos, i)
		}
	}
	return marcos
}

// Ocupacion es el porcentaje de marcos ocupados
func (m *Mapa) Ocupacion() float64 {
	return modelo.Porcentaje(len(m.Marcos)-m.ContarLibres(), len(m.Marcos))
}
