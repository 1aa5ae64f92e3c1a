package modelo

import (
	"fmt"
	"math/bits"
)

// MaxBitsDireccion es el ancho máximo de una dirección lógica
const MaxBitsDireccion = 255

// ConfigSimulacion es la configuración de una corrida del simulador.
// Los nombres JSON son los del pedido original para poder reutilizar archivos existentes.
type ConfigSimulacion struct {
	TamMemoriaFisica    int           `json:"physicalMemSize"` // Tamaño de la memoria física en bytes
	BitsDireccionLogica int           `json:"logicalAddrSize"` // Tamaño de la dirección lógica en bits
	TamPagina           int           `json:"pageSize"`        // Tamaño de página en bytes, potencia de dos
	Procesos            []ProcesoSpec `json:"processes"`
}

// Validar verifica los tamaños antes de cualquier división
func (c *ConfigSimulacion) Validar() error {
	if c.TamPagina <= 0 {
		return fmt.Errorf("%w: tamaño de página %d, debe ser mayor a 0", ErrConfiguracion, c.TamPagina)
	}
	if !EsPotenciaDeDos(c.TamPagina) {
		return fmt.Errorf("%w: tamaño de página %d no es potencia de dos", ErrConfiguracion, c.TamPagina)
	}
	if c.TamMemoriaFisica <= 0 {
		return fmt.Errorf("%w: memoria física %d, debe ser mayor a 0", ErrConfiguracion, c.TamMemoriaFisica)
	}
	if c.BitsDireccionLogica <= 0 {
		return fmt.Errorf("%w: dirección lógica de %d bits, debe ser mayor a 0", ErrConfiguracion, c.BitsDireccionLogica)
	}
	if c.BitsDireccionLogica > MaxBitsDireccion {
		return fmt.Errorf("%w: dirección lógica de %d bits, el máximo es %d", ErrConfiguracion, c.BitsDireccionLogica, MaxBitsDireccion)
	}
	for i, p := range c.Procesos {
		if p.TamCodigo < 0 || p.TamDatos < 0 {
			return fmt.Errorf("%w: proceso %d con tamaño negativo (código %d, datos %d)",
				ErrConfiguracion, i+1, p.TamCodigo, p.TamDatos)
		}
	}
	return nil
}

// NumMarcos calcula la cantidad de marcos físicos. El resto de la división se descarta.
func (c *ConfigSimulacion) NumMarcos() (int, error) {
	if c.TamPagina <= 0 {
		return 0, fmt.Errorf("%w: tamaño de página %d", ErrConfiguracion, c.TamPagina)
	}
	if c.TamMemoriaFisica <= 0 {
		return 0, fmt.Errorf("%w: memoria física %d", ErrConfiguracion, c.TamMemoriaFisica)
	}
	return c.TamMemoriaFisica / c.TamPagina, nil
}

// EsPotenciaDeDos indica si n es una potencia de dos positiva
func EsPotenciaDeDos(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Log2 devuelve floor(log2(n)) para n > 0 y 0 en otro caso
func Log2(n int) int {
	if n <= 0 {
		return 0
	}
	return bits.Len(uint(n)) - 1
}

// PaginasNecesarias calcula ceil(tamanio / tamPagina)
func PaginasNecesarias(tamanio int, tamPagina int) int {
	if tamPagina <= 0 || tamanio <= 0 {
		return 0
	}
	return (tamanio + tamPagina - 1) / tamPagina
}

// Porcentaje calcula parte / total * 100, con 0 cuando el total es 0
func Porcentaje(parte int, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(parte) / float64(total) * 100
}
