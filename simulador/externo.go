package simulador

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/modelo"
	"github.com/sisoputnfrba/tp-2025-1c-LosCuervosXeneizes-paginacion/utils"
)

// Simulador es el colaborador que recibe los descriptores y devuelve el reporte
// de texto con las tablas de páginas
type Simulador interface {
	Ejecutar(ctx context.Context, cfg *modelo.ConfigSimulacion, refs []string) (string, error)
}

// Tiempo que se espera a que el proceso libere stdout/stderr después de matarlo
const esperaCierre = 500 * time.Millisecond

// SimuladorExterno invoca el binario del simulador:
// <ruta> memoriaFisica bitsDireccionLogica tamPagina <descriptor>...
type SimuladorExterno struct {
	Ruta string
}

func (s *SimuladorExterno) Ejecutar(ctx context.Context, cfg *modelo.ConfigSimulacion, refs []string) (string, error) {
	if s.Ruta == "" {
		return "", fmt.Errorf("%w: ruta del simulador vacía", modelo.ErrFalloSimulador)
	}

	args := make([]string, 0, 3+len(refs))
	args = append(args,
		strconv.Itoa(cfg.TamMemoriaFisica),
		strconv.Itoa(cfg.BitsDireccionLogica),
		strconv.Itoa(cfg.TamPagina))
	args = append(args, refs...)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.Ruta, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = esperaCierre

	utils.InfoLog.Debug("Invocando simulador", "ruta", s.Ruta, "args", strings.Join(args, " "))

	inicio := time.Now()
	err := cmd.Run()
	duracion := time.Since(inicio)

	if ctxErr := ctx.Err(); ctxErr != nil {
		utils.ErrorLog.Error("Simulador cancelado", "ruta", s.Ruta, "duracion", duracion, "error", ctxErr)
		return "", fmt.Errorf("%w: %w", modelo.ErrFalloSimulador, ctxErr)
	}
	if err != nil {
		detalle := strings.TrimSpace(stderr.String())
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			utils.ErrorLog.Error("El simulador terminó con error",
				"ruta", s.Ruta,
				"codigo", exitErr.ExitCode(),
				"stderr", detalle)
		}
		if detalle != "" {
			return "", fmt.Errorf("%w: %w: %s", modelo.ErrFalloSimulador, err, detalle)
		}
		return "", fmt.Errorf("%w: %w", modelo.ErrFalloSimulador, err)
	}

	utils.InfoLog.Debug("Simulador finalizado", "duracion", duracion, "bytes_salida", stdout.Len())
	return stdout.String(), nil
}
