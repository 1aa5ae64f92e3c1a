package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/calculos"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/modelo"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/simulador"
)

func nuevaTabla(w io.Writer, encabezado []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader(encabezado)
	return table
}

// mostrarResultado escribe una simulación completa: procesos, marcos y cálculos
func mostrarResultado(w io.Writer, r *simulador.Resultado) {
	fmt.Fprintf(w, "Memoria física: %d bytes, dirección lógica: %d bits, página: %d bytes, marcos: %d\n\n",
		r.Config.TamMemoriaFisica, r.Config.BitsDireccionLogica, r.Config.TamPagina, r.NumMarcos)

	mostrarProcesos(w, r.Procesos)
	fmt.Fprintln(w)
	mostrarMarcos(w, r.Marcos, r.Procesos)
	fmt.Fprintf(w, "Fragmentación interna informada: %d bytes\n", r.FragmentacionInterna)
	if r.MarcosFueraDeRango > 0 {
		fmt.Fprintf(w, "Entradas con marco fuera de rango: %d\n", r.MarcosFueraDeRango)
	}
	for _, a := range r.Anomalias {
		fmt.Fprintf(w, "Proceso %d: informa %d páginas pero su tabla tiene %d\n", a.ProcesoID, a.Esperadas, a.Encontradas)
	}
	if r.Calculos != nil {
		fmt.Fprintln(w)
		mostrarCalculos(w, r.Calculos)
	}
}

// mostrarProcesos lista cada proceso con su tabla de páginas en una línea
func mostrarProcesos(w io.Writer, procesos []modelo.ProcesoParseado) {
	table := nuevaTabla(w, []string{"Proceso", "PID", "Tamaño", "Páginas", "Tabla de páginas"})

	for _, p := range procesos {
		entradas := make([]string, 0, len(p.TablaPaginas))
		for _, e := range p.TablaPaginas {
			entradas = append(entradas, fmt.Sprintf("%d→%d", e.Pagina, e.Marco))
		}
		table.Append([]string{
			strconv.Itoa(p.ID),
			strconv.Itoa(p.PID),
			fmt.Sprintf("%d bytes", p.TamProceso),
			strconv.Itoa(p.NumPaginas),
			strings.Join(entradas, ", "),
		})
	}
	table.Render()
}

// mostrarMarcos lista los marcos ocupados y resume los libres en rangos
func mostrarMarcos(w io.Writer, marcos []*modelo.Marco, procesos []modelo.ProcesoParseado) {
	pids := make(map[int]int, len(procesos))
	for _, p := range procesos {
		pids[p.ID] = p.PID
	}

	table := nuevaTabla(w, []string{"Marco", "Proceso", "PID", "Página"})
	libres := []int{}
	for i, m := range marcos {
		if m == nil {
			libres = append(libres, i)
			continue
		}
		table.Append([]string{
			strconv.Itoa(i),
			strconv.Itoa(m.ProcesoID),
			strconv.Itoa(pids[m.ProcesoID]),
			strconv.Itoa(m.Pagina),
		})
	}
	table.SetFooter([]string{"Libres", strconv.Itoa(len(libres)), "", ""})
	table.Render()

	fmt.Fprintf(w, "Marcos libres: %s\n", rangos(libres))
}

// mostrarCalculos escribe cada derivación como fórmula, cálculo y resultado
func mostrarCalculos(w io.Writer, r *calculos.Reporte) {
	table := nuevaTabla(w, []string{"Concepto", "Fórmula", "Cálculo", "Resultado"})

	fila := func(concepto string, d modelo.Derivacion) {
		table.Append([]string{concepto, d.Formula, d.Calculo, d.Resultado})
	}

	fila("Marcos", r.Memoria.NumMarcos)
	fila("Bits de desplazamiento", r.Memoria.BitsDesplazamiento)
	fila("Bits de página", r.Memoria.BitsPagina)
	fila("Máximo de páginas", r.Memoria.MaxPaginas)

	for _, p := range r.Procesos {
		prefijo := fmt.Sprintf("Proceso %d (PID %d)", p.ID, p.PID)
		fila(prefijo+" tamaño", p.TamProceso)
		fila(prefijo+" páginas", p.NumPaginas)
		fila(prefijo+" páginas ideales", p.NumPaginasIdeal)
		fila(prefijo+" fragmentación", p.Fragmentacion)
	}

	fila("Total usado", r.Totales.TotalUsado)
	fila("Total asignado", r.Totales.TotalAsignado)
	fila("Fragmentación total", r.Totales.FragmentacionTotal)
	fila("Utilización", r.Totales.Utilizacion)

	if t := r.Traduccion; t != nil {
		prefijo := fmt.Sprintf("Traducción (proceso %d, página %d → marco %d)", t.ProcesoID, t.Pagina, t.Marco)
		fila(prefijo+" desplazamiento", t.Desplazamiento)
		fila(prefijo+" lógica", t.DirLogica)
		fila(prefijo+" física", t.DirFisica)
	}

	table.SetFooter([]string{"Informado por el simulador", "", "", fmt.Sprintf("%d bytes", r.FragmentacionInformada)})
	table.Render()
}

// rangos comprime una lista ordenada de enteros: [1 2 3 7] -> "1-3, 7"
func rangos(numeros []int) string {
	if len(numeros) == 0 {
		return "ninguno"
	}

	partes := []string{}
	inicio := numeros[0]
	anterior := numeros[0]
	cerrar := func() {
		if inicio == anterior {
			partes = append(partes, strconv.Itoa(inicio))
		} else {
			partes = append(partes, fmt.Sprintf("%d-%d", inicio, anterior))
		}
	}

	for _, n := range numeros[1:] {
		if n == anterior+1 {
			anterior = n
			continue
		}
		cerrar()
		inicio, anterior = n, n
	}
	cerrar()

	return strings.Join(partes, ", ")
}

func escribirJSON(w io.Writer, valor any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(valor)
}
