package simulador

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/reporte"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/utils"
)

// NombreVolcado arma el nombre base de un volcado. Con indice > 0 se agrega
// como sufijo, para los lotes.
func NombreVolcado(ahora time.Time, indice int) string {
	nombre := "paging_simulation_" + ahora.Format("20060102-150405")
	if indice > 0 {
		nombre = fmt.Sprintf("%s_%d", nombre, indice)
	}
	return nombre
}

// GuardarVolcado escribe <base>.txt con la salida del simulador y <base>.json
// con el resultado completo. Si no hay salida cruda se regenera con Formatear.
func GuardarVolcado(dir string, base string, r *Resultado) (string, string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		utils.ErrorLog.Error("Error creando directorio de volcados", "directorio", dir, "error", err)
		return "", "", fmt.Errorf("error al crear directorio para volcados: %w", err)
	}

	texto := r.SalidaCruda
	if texto == "" {
		texto = reporte.Formatear(reporte.Salida{
			Config:               r.Config,
			NumMarcos:            r.NumMarcos,
			Procesos:             r.Procesos,
			FragmentacionInterna: r.FragmentacionInterna,
			Libres:               r.ListaLibres(),
		})
	}

	rutaTxt := filepath.Join(dir, base+".txt")
	if err := os.WriteFile(rutaTxt, []byte(texto), 0644); err != nil {
		utils.ErrorLog.Error("Error escribiendo volcado", "archivo", rutaTxt, "error", err)
		return "", "", fmt.Errorf("error al escribir volcado: %w", err)
	}

	rutaJSON := filepath.Join(dir, base+".json")
	if err := utils.GuardarJSON(rutaJSON, r); err != nil {
		return "", "", err
	}

	utils.InfoLog.Info("Volcado generado", "txt", rutaTxt, "json", rutaJSON)
	return rutaTxt, rutaJSON, nil
}
