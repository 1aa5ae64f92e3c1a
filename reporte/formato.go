package reporte

import (
	"fmt"
	"strings"

	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/modelo"
)

// Salida agrupa lo necesario para escribir un reporte con el formato del simulador
type Salida struct {
	Config               *modelo.ConfigSimulacion
	NumMarcos            int
	Procesos             []modelo.ProcesoParseado
	FragmentacionInterna int
	Libres               []int
}

// Formatear escribe la salida con la misma gramática que reconoce Parsear.
// Se usa cuando no hay salida cruda del simulador.
func Formatear(s Salida) string {
	var sb strings.Builder

	if s.Config != nil {
		fmt.Fprintf(&sb, "Physical Memory Size: %d\n", s.Config.TamMemoriaFisica)
		fmt.Fprintf(&sb, "Logical Address Size: %d\n", s.Config.BitsDireccionLogica)
		fmt.Fprintf(&sb, "Page Size: %d\n", s.Config.TamPagina)
		fmt.Fprintf(&sb, "Number of Frames: %d\n\n", s.NumMarcos)
	}

	for _, p := range s.Procesos {
		fmt.Fprintf(&sb, "Process %d, PID: %d, Process Size: %d bytes, Number of Pages: %d\n",
			p.ID, p.PID, p.TamProceso, p.NumPaginas)
		sb.WriteString("Page Table:\n")
		for _, e := range p.TablaPaginas {
			fmt.Fprintf(&sb, "  Page %d -> Frame %d\n", e.Pagina, e.Marco)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "Total Internal Fragmentation: %d bytes\n\n", s.FragmentacionInterna)

	sb.WriteString("Free Frames:\nFRAMES - ")
	for _, m := range s.Libres {
		fmt.Fprintf(&sb, "%d ", m)
	}
	sb.WriteString("- ARE FREE\n")

	return sb.String()
}
