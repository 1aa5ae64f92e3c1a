package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// CargarConfiguracion carga un archivo JSON en el tipo pedido.
// Se usa como: CargarConfiguracion[AppConfig]("configs/paginacion.json")
func CargarConfiguracion[T any](ruta string) (*T, error) {
	InfoLog.Debug("Cargando configuración", "ruta", ruta)

	// Obtener ruta absoluta
	absPath, err := filepath.Abs(ruta)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo ruta absoluta de %s: %w", ruta, err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("error abriendo archivo de configuración %s: %w", absPath, err)
	}
	defer file.Close()

	var config T
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("error decodificando configuración %s: %w", absPath, err)
	}

	InfoLog.Debug("Configuración cargada correctamente", "archivo", absPath)
	return &config, nil
}

// GuardarJSON escribe un valor como JSON indentado, creando el directorio si no existe
func GuardarJSON(ruta string, valor any) error {
	if err := os.MkdirAll(filepath.Dir(ruta), 0755); err != nil {
		return fmt.Errorf("error al crear directorio para %s: %w", ruta, err)
	}

	datos, err := json.MarshalIndent(valor, "", "  ")
	if err != nil {
		return fmt.Errorf("error al serializar %s: %w", ruta, err)
	}

	if err := os.WriteFile(ruta, append(datos, '\n'), 0644); err != nil {
		return fmt.Errorf("error al escribir %s: %w", ruta, err)
	}
	return nil
}
