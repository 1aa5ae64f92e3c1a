package modelo

import "errors"

// Tipos de error del núcleo. Se envuelven con fmt.Errorf("%w: ...") y se
// consultan con errors.Is.
var (
	// ErrDescriptorInvalido: tamaño de código o datos fuera de [0, 65535]
	ErrDescriptorInvalido = errors.New("descriptor de proceso inválido")
	// ErrReporteInvalido: línea reconocida del reporte con un campo numérico mal formado
	ErrReporteInvalido = errors.New("reporte del simulador inválido")
	// ErrConfiguracion: tamaños nulos o negativos, página que no es potencia de dos
	ErrConfiguracion = errors.New("configuración inválida")
	// ErrFalloSimulador: el simulador externo terminó con error o por timeout
	ErrFalloSimulador = errors.New("fallo del simulador")
)
