package memoria

import (
	"fmt"

	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/modelo"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/utils"
)

// TraducirDireccion traduce una dirección lógica de un proceso a una dirección
// física usando la tabla de páginas informada por el simulador
func TraducirDireccion(proceso modelo.ProcesoParseado, dirLogica int, tamPagina int) (int, error) {
	if tamPagina <= 0 {
		return 0, fmt.Errorf("%w: tamaño de página %d", modelo.ErrConfiguracion, tamPagina)
	}
	if dirLogica < 0 {
		return 0, fmt.Errorf("dirección lógica negativa: %d", dirLogica)
	}

	// Calcular componentes de la dirección lógica
	numPagina := dirLogica / tamPagina
	desplazamiento := dirLogica % tamPagina

	for _, entrada := range proceso.TablaPaginas {
		if entrada.Pagina == numPagina && entrada.Valido {
			dirFisica := entrada.Marco*tamPagina + desplazamiento

			utils.InfoLog.Debug("Dirección traducida",
				"id", proceso.ID,
				"dir_logica", dirLogica,
				"pagina", numPagina,
				"desplazamiento", desplazamiento,
				"marco", entrada.Marco,
				"dir_fisica", dirFisica)
			return dirFisica, nil
		}
	}

	return 0, fmt.Errorf("la página %d del proceso %d no está en su tabla de páginas", numPagina, proceso.ID)
}
