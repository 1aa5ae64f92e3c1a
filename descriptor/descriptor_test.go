package descriptor

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/modelo"
)

// fuenteFija devuelve siempre el mismo valor, acotado a n
type fuenteFija int

func (f fuenteFija) IntN(n int) int { return int(f) % n }

func TestCodificar_Layout(t *testing.T) {
	spec := modelo.ProcesoSpec{TamCodigo: 32, TamDatos: 96}

	datos, err := Codificar(spec, NuevaFuente(1))
	require.NoError(t, err)

	require.Len(t, datos, 1+2+32+2+96+1)
	assert.Equal(t, Longitud(spec), len(datos))
	assert.GreaterOrEqual(t, int(datos[0]), 1)
	assert.Equal(t, uint16(32), binary.BigEndian.Uint16(datos[1:3]))
	assert.Equal(t, uint16(96), binary.BigEndian.Uint16(datos[3+32:5+32]))
	assert.Equal(t, MarcaFin, datos[len(datos)-1])
}

func TestCodificar_TamaniosRecuperables(t *testing.T) {
	fuente := NuevaFuente(42)
	casos := []modelo.ProcesoSpec{
		{TamCodigo: 0, TamDatos: 0},
		{TamCodigo: 1, TamDatos: 0},
		{TamCodigo: 0, TamDatos: 1},
		{TamCodigo: 255, TamDatos: 256},
		{TamCodigo: 4096, TamDatos: 17},
		{TamCodigo: TamMaximoSegmento, TamDatos: TamMaximoSegmento},
	}

	for _, spec := range casos {
		datos, err := Codificar(spec, fuente)
		require.NoError(t, err, "spec %+v", spec)

		require.Len(t, datos, 1+2+spec.TamCodigo+2+spec.TamDatos+1)
		assert.Equal(t, spec.TamCodigo, int(binary.BigEndian.Uint16(datos[1:3])))
		assert.Equal(t, spec.TamDatos, int(binary.BigEndian.Uint16(datos[3+spec.TamCodigo:5+spec.TamCodigo])))

		d, err := Decodificar(datos)
		require.NoError(t, err)
		assert.Equal(t, spec.TamCodigo, d.TamCodigo())
		assert.Equal(t, spec.TamDatos, d.TamDatos())
		assert.Equal(t, int(datos[0]), d.PID)
	}
}

func TestCodificar_FueraDeRango(t *testing.T) {
	casos := []modelo.ProcesoSpec{
		{TamCodigo: -1, TamDatos: 10},
		{TamCodigo: 10, TamDatos: -1},
		{TamCodigo: TamMaximoSegmento + 1, TamDatos: 0},
		{TamCodigo: 0, TamDatos: 70000},
	}

	for _, spec := range casos {
		datos, err := Codificar(spec, NuevaFuente(1))
		assert.ErrorIs(t, err, modelo.ErrDescriptorInvalido, "spec %+v", spec)
		assert.Nil(t, datos)
	}
}

func TestCodificar_PIDEnRango(t *testing.T) {
	// Los extremos de la fuente dan los extremos del rango de PID
	datos, err := Codificar(modelo.ProcesoSpec{}, fuenteFija(0))
	require.NoError(t, err)
	assert.Equal(t, byte(1), datos[0])

	datos, err = Codificar(modelo.ProcesoSpec{}, fuenteFija(254))
	require.NoError(t, err)
	assert.Equal(t, byte(255), datos[0])

	fuente := NuevaFuente(7)
	for i := 0; i < 500; i++ {
		datos, err := Codificar(modelo.ProcesoSpec{}, fuente)
		require.NoError(t, err)
		assert.NotZero(t, datos[0])
	}
}

func TestCodificar_Reproducible(t *testing.T) {
	spec := modelo.ProcesoSpec{TamCodigo: 48, TamDatos: 64}

	a, err := Codificar(spec, NuevaFuente(99))
	require.NoError(t, err)
	b, err := Codificar(spec, NuevaFuente(99))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestDecodificar_Errores(t *testing.T) {
	valido, err := Codificar(modelo.ProcesoSpec{TamCodigo: 4, TamDatos: 2}, NuevaFuente(3))
	require.NoError(t, err)

	sinMarca := append([]byte{}, valido...)
	sinMarca[len(sinMarca)-1] = 0x00

	sobrante := append(append([]byte{}, valido...), 0x01)

	casos := map[string][]byte{
		"vacío":           {},
		"solo pid":        {7},
		"truncado":        valido[:len(valido)-3],
		"sin marca":       sinMarca,
		"bytes sobrantes": sobrante,
	}
	for nombre, datos := range casos {
		_, err := Decodificar(datos)
		assert.ErrorIs(t, err, modelo.ErrDescriptorInvalido, nombre)
	}
}

func TestVolcadoHex(t *testing.T) {
	datos := []byte{0x07, 0x00, 0x01, 0xAB, 0x00, 0x00, 0xFF}
	assert.Equal(t, "07 00 01 AB 00 00 FF\n", VolcadoHex(datos))
}

func TestSpecAleatorio_Rangos(t *testing.T) {
	fuente := NuevaFuente(5)
	for i := 0; i < 200; i++ {
		spec := SpecAleatorio(fuente)
		assert.GreaterOrEqual(t, spec.TamCodigo, 16)
		assert.Less(t, spec.TamCodigo, 80)
		assert.GreaterOrEqual(t, spec.TamDatos, 64)
		assert.Less(t, spec.TamDatos, 192)
	}
}

func TestSumideroArchivos_GuardarYLimpiar(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "descriptores")
	s, err := NuevoSumideroArchivos(dir)
	require.NoError(t, err)

	ref0, err := s.Guardar(0, []byte{1, 0, 0, 0, 0, 0xFF})
	require.NoError(t, err)
	ref1, err := s.Guardar(1, []byte{2, 0, 0, 0, 0, 0xFF})
	require.NoError(t, err)
	assert.NotEqual(t, ref0, ref1)

	contenido, err := os.ReadFile(ref1)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 0, 0, 0, 0, 0xFF}, contenido)

	require.NoError(t, s.Limpiar())
	assert.NoFileExists(t, ref0)
	assert.NoFileExists(t, ref1)

	// Limpiar dos veces no falla
	assert.NoError(t, s.Limpiar())
}

func TestSumideroMemoria(t *testing.T) {
	s := NuevoSumideroMemoria()

	ref, err := s.Guardar(2, []byte{9, 0xFF})
	require.NoError(t, err)
	assert.Equal(t, "mem://proceso_2", ref)

	_, err = s.Guardar(2, []byte{1})
	assert.Error(t, err)

	datos, err := s.Leer(ref)
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 0xFF}, datos)
	assert.Equal(t, []string{"mem://proceso_2"}, s.Referencias())

	require.NoError(t, s.Limpiar())
	_, err = s.Leer(ref)
	assert.Error(t, err)
}

func TestGuardarConVolcado(t *testing.T) {
	dir := t.TempDir()
	datos := []byte{0x10, 0x00, 0x00, 0x00, 0x00, 0xFF}

	rutaProc, rutaTxt, err := GuardarConVolcado(dir, "p1", datos)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "p1.proc"), rutaProc)

	bin, err := os.ReadFile(rutaProc)
	require.NoError(t, err)
	assert.Equal(t, datos, bin)

	txt, err := os.ReadFile(rutaTxt)
	require.NoError(t, err)
	assert.Equal(t, "10 00 00 00 00 FF\n", string(txt))
}
