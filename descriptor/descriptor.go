package descriptor

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/modelo"
)

const (
	// MarcaFin cierra cada descriptor
	MarcaFin byte = 0xFF
	// TamMaximoSegmento es el mayor tamaño representable en el campo de 16 bits
	TamMaximoSegmento = math.MaxUint16

	pidMinimo = 1
	pidMaximo = 255
)

// FuenteAleatoria es la fuente de PIDs y bytes de relleno.
// *rand.Rand de math/rand/v2 la satisface.
type FuenteAleatoria interface {
	IntN(n int) int
}

// NuevaFuente crea una fuente reproducible a partir de una semilla
func NuevaFuente(semilla uint64) *rand.Rand {
	return rand.New(rand.NewPCG(semilla, semilla^0x9E3779B97F4A7C15))
}

// Descriptor es la forma decodificada del formato binario que consume el simulador
type Descriptor struct {
	PID    int
	Codigo []byte
	Datos  []byte
}

// TamCodigo es la cantidad de bytes del segmento de código
func (d *Descriptor) TamCodigo() int { return len(d.Codigo) }

// TamDatos es la cantidad de bytes del segmento de datos
func (d *Descriptor) TamDatos() int { return len(d.Datos) }

// Longitud calcula el tamaño en bytes del descriptor codificado
func Longitud(spec modelo.ProcesoSpec) int {
	return 1 + 2 + spec.TamCodigo + 2 + spec.TamDatos + 1
}

// Codificar arma el descriptor binario de un proceso:
// [pid:1][tamCodigo:2BE][codigo][tamDatos:2BE][datos][0xFF]
func Codificar(spec modelo.ProcesoSpec, fuente FuenteAleatoria) ([]byte, error) {
	if err := validarTamanio("código", spec.TamCodigo); err != nil {
		return nil, err
	}
	if err := validarTamanio("datos", spec.TamDatos); err != nil {
		return nil, err
	}

	out := make([]byte, 0, Longitud(spec))

	// Process ID, se admiten repetidos entre procesos
	out = append(out, byte(pidMinimo+fuente.IntN(pidMaximo-pidMinimo+1)))

	out = binary.BigEndian.AppendUint16(out, uint16(spec.TamCodigo))
	out = appendRelleno(out, spec.TamCodigo, fuente)

	out = binary.BigEndian.AppendUint16(out, uint16(spec.TamDatos))
	out = appendRelleno(out, spec.TamDatos, fuente)

	out = append(out, MarcaFin)
	return out, nil
}

// Decodificar interpreta un descriptor completo y verifica la marca de fin
func Decodificar(datos []byte) (*Descriptor, error) {
	pos := 0
	leerTamanio := func(campo string) (int, error) {
		if len(datos) < pos+2 {
			return 0, fmt.Errorf("%w: descriptor truncado leyendo tamaño de %s (offset %d, largo %d)",
				modelo.ErrDescriptorInvalido, campo, pos, len(datos))
		}
		n := int(binary.BigEndian.Uint16(datos[pos : pos+2]))
		pos += 2
		if len(datos) < pos+n {
			return 0, fmt.Errorf("%w: segmento de %s de %d bytes excede el descriptor (offset %d, largo %d)",
				modelo.ErrDescriptorInvalido, campo, n, pos, len(datos))
		}
		return n, nil
	}

	if len(datos) < 1 {
		return nil, fmt.Errorf("%w: descriptor vacío", modelo.ErrDescriptorInvalido)
	}
	d := &Descriptor{PID: int(datos[0])}
	pos = 1

	n, err := leerTamanio("código")
	if err != nil {
		return nil, err
	}
	d.Codigo = datos[pos : pos+n]
	pos += n

	n, err = leerTamanio("datos")
	if err != nil {
		return nil, err
	}
	d.Datos = datos[pos : pos+n]
	pos += n

	if len(datos) != pos+1 {
		return nil, fmt.Errorf("%w: se esperaban %d bytes y hay %d", modelo.ErrDescriptorInvalido, pos+1, len(datos))
	}
	if datos[pos] != MarcaFin {
		return nil, fmt.Errorf("%w: marca de fin 0x%02X, se esperaba 0x%02X", modelo.ErrDescriptorInvalido, datos[pos], MarcaFin)
	}
	return d, nil
}

// VolcadoHex genera la versión en texto del descriptor: los bytes en
// hexadecimal separados por espacio, en una sola línea
func VolcadoHex(datos []byte) string {
	var sb strings.Builder
	sb.Grow(len(datos)*3 + 1)
	for i, b := range datos {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	sb.WriteByte('\n')
	return sb.String()
}

// SpecAleatorio genera tamaños con los rangos por defecto del generador:
// código entre 16 y 79 bytes, datos entre 64 y 191 bytes
func SpecAleatorio(fuente FuenteAleatoria) modelo.ProcesoSpec {
	return modelo.ProcesoSpec{
		TamCodigo: 16 + fuente.IntN(64),
		TamDatos:  64 + fuente.IntN(128),
	}
}

func validarTamanio(campo string, tamanio int) error {
	if tamanio < 0 || tamanio > TamMaximoSegmento {
		return fmt.Errorf("%w: tamaño de %s %d fuera de [0, %d]",
			modelo.ErrDescriptorInvalido, campo, tamanio, TamMaximoSegmento)
	}
	return nil
}

func appendRelleno(out []byte, n int, fuente FuenteAleatoria) []byte {
	for i := 0; i < n; i++ {
		out = append(out, byte(fuente.IntN(256)))
	}
	return out
}
