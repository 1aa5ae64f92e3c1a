package descriptor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/utils"
)

// Sumidero recibe los descriptores codificados y devuelve la referencia que
// se le pasa al simulador. Cada pedido usa su propio sumidero.
type Sumidero interface {
	Guardar(indice int, datos []byte) (string, error)
	Limpiar() error
}

// SumideroArchivos escribe cada descriptor en un archivo temporal único
type SumideroArchivos struct {
	Dir string

	mu    sync.Mutex
	rutas []string
}

// NuevoSumideroArchivos crea el directorio si no existe
func NuevoSumideroArchivos(dir string) (*SumideroArchivos, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		utils.ErrorLog.Error("Error creando directorio para descriptores", "directorio", dir, "error", err)
		return nil, fmt.Errorf("error al crear directorio para descriptores: %w", err)
	}
	return &SumideroArchivos{Dir: dir}, nil
}

// Guardar escribe el descriptor y devuelve la ruta del archivo
func (s *SumideroArchivos) Guardar(indice int, datos []byte) (string, error) {
	archivo, err := os.CreateTemp(s.Dir, fmt.Sprintf("proceso_%d_*.proc", indice))
	if err != nil {
		return "", fmt.Errorf("error al crear descriptor del proceso %d: %w", indice, err)
	}
	ruta := archivo.Name()

	s.mu.Lock()
	s.rutas = append(s.rutas, ruta)
	s.mu.Unlock()

	if _, err := archivo.Write(datos); err != nil {
		archivo.Close()
		return "", fmt.Errorf("error al escribir descriptor %s: %w", ruta, err)
	}
	if err := archivo.Close(); err != nil {
		return "", fmt.Errorf("error al cerrar descriptor %s: %w", ruta, err)
	}

	utils.InfoLog.Debug("Descriptor guardado", "indice", indice, "archivo", ruta, "bytes", len(datos))
	return ruta, nil
}

// Limpiar borra todos los archivos creados por este sumidero
func (s *SumideroArchivos) Limpiar() error {
	s.mu.Lock()
	rutas := s.rutas
	s.rutas = nil
	s.mu.Unlock()

	var errs []error
	for _, ruta := range rutas {
		if err := os.Remove(ruta); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	utils.InfoLog.Debug("Descriptores temporales eliminados", "cantidad", len(rutas))
	return errors.Join(errs...)
}

// SumideroMemoria guarda los descriptores en memoria, para simuladores en proceso y tests
type SumideroMemoria struct {
	mu    sync.Mutex
	datos map[string][]byte
}

func NuevoSumideroMemoria() *SumideroMemoria {
	return &SumideroMemoria{datos: make(map[string][]byte)}
}

// Guardar copia los bytes y devuelve una referencia mem://proceso_<indice>
func (s *SumideroMemoria) Guardar(indice int, datos []byte) (string, error) {
	ref := fmt.Sprintf("mem://proceso_%d", indice)
	copia := make([]byte, len(datos))
	copy(copia, datos)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, existe := s.datos[ref]; existe {
		return "", fmt.Errorf("ya existe un descriptor para el proceso %d", indice)
	}
	s.datos[ref] = copia
	return ref, nil
}

// Leer devuelve el descriptor guardado bajo la referencia
func (s *SumideroMemoria) Leer(ref string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	datos, existe := s.datos[ref]
	if !existe {
		return nil, fmt.Errorf("no existe el descriptor %s", ref)
	}
	return datos, nil
}

// Referencias lista las referencias guardadas, ordenadas
func (s *SumideroMemoria) Referencias() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	refs := make([]string, 0, len(s.datos))
	for ref := range s.datos {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

func (s *SumideroMemoria) Limpiar() error {
	s.mu.Lock()
	s.datos = make(map[string][]byte)
	s.mu.Unlock()
	return nil
}

// GuardarConVolcado escribe <base>.proc con el descriptor y <base>.txt con su
// volcado hexadecimal, como el generador de procesos
func GuardarConVolcado(dir string, base string, datos []byte) (string, string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("error al crear directorio %s: %w", dir, err)
	}

	rutaProc := filepath.Join(dir, base+".proc")
	rutaTxt := filepath.Join(dir, base+".txt")

	if err := os.WriteFile(rutaProc, datos, 0644); err != nil {
		utils.ErrorLog.Error("Error escribiendo descriptor", "archivo", rutaProc, "error", err)
		return "", "", fmt.Errorf("error al escribir %s: %w", rutaProc, err)
	}
	if err := os.WriteFile(rutaTxt, []byte(VolcadoHex(datos)), 0644); err != nil {
		utils.ErrorLog.Error("Error escribiendo volcado", "archivo", rutaTxt, "error", err)
		return "", "", fmt.Errorf("error al escribir %s: %w", rutaTxt, err)
	}

	utils.InfoLog.Info("Proceso generado", "binario", rutaProc, "texto", rutaTxt)
	return rutaProc, rutaTxt, nil
}
