package modelo

// ProcesoSpec describe un proceso por los tamaños declarados de sus segmentos
type ProcesoSpec struct {
	TamCodigo int `json:"codeSize"`
	TamDatos  int `json:"dataSize"`
}

// TamProceso es el tamaño total declarado del proceso
func (p ProcesoSpec) TamProceso() int {
	return p.TamCodigo + p.TamDatos
}

// EntradaTabla representa una entrada de la tabla de páginas informada por el simulador
type EntradaTabla struct {
	Pagina int  `json:"pageNumber"`
	Marco  int  `json:"frameNumber"`
	Valido bool `json:"valid"`
}

// ProcesoParseado es un proceso tal como aparece en la salida del simulador.
// ID es la posición (desde 1) en el reporte y no tiene relación con PID.
type ProcesoParseado struct {
	ID           int            `json:"id"`
	PID          int            `json:"pid"`
	TamProceso   int            `json:"procSize"`
	NumPaginas   int            `json:"numPages"`
	TablaPaginas []EntradaTabla `json:"pageTable"`
}

// Marco es un marco físico ocupado por una página de un proceso.
// En una tabla de marcos, nil significa libre.
type Marco struct {
	ProcesoID int `json:"processId"`
	Pagina    int `json:"pageNumber"`
}

// Derivacion documenta un valor calculado: la fórmula, la fórmula con los
// operandos reemplazados y el resultado con su unidad
type Derivacion struct {
	Formula   string  `json:"formula"`
	Calculo   string  `json:"calculation"`
	Resultado string  `json:"result"`
	Valor     float64 `json:"value"`
}
