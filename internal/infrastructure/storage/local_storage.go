// Package storage guarda las imágenes de productos en disco.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/ladespensa/despensa-api/internal/application/ports"
)

var _ ports.FileStorage = (*LocalStorage)(nil)

// LocalStorage escribe archivos bajo un directorio y los expone con baseURL como prefijo.
type LocalStorage struct {
	fs      afero.Fs
	dir     string
	baseURL string
}

// NewLocalStorage usa el sistema de archivos del SO; dir se crea si no existe.
func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	return NewStorageOnFs(afero.NewOsFs(), dir, baseURL)
}

// NewStorageOnFs permite inyectar otro afero.Fs (p. ej. en memoria en tests).
func NewStorageOnFs(fs afero.Fs, dir, baseURL string) (*LocalStorage, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: crear directorio %s: %w", dir, err)
	}
	return &LocalStorage{fs: fs, dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir directorio raíz; el router lo sirve como estático.
func (s *LocalStorage) Dir() string { return s.dir }

// Save copia r a dir/name y devuelve baseURL/name.
func (s *LocalStorage) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full := filepath.Join(s.dir, name)
	f, err := s.fs.Create(full)
	if err != nil {
		return "", fmt.Errorf("storage: crear %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(full)
		return "", fmt.Errorf("storage: escribir %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(full)
		return "", fmt.Errorf("storage: cerrar %s: %w", name, err)
	}
	return s.baseURL + "/" + name, nil
}

// Delete borra el archivo de una URL devuelta por Save. URLs ajenas se ignoran.
func (s *LocalStorage) Delete(_ context.Context, url string) error {
	if !strings.HasPrefix(url, s.baseURL+"/") {
		return nil
	}
	name, err := cleanName(strings.TrimPrefix(url, s.baseURL+"/"))
	if err != nil {
		return err
	}
	err = s.fs.Remove(filepath.Join(s.dir, name))
	if err != nil && !isNotExist(s.fs, filepath.Join(s.dir, name)) {
		return fmt.Errorf("storage: borrar %s: %w", name, err)
	}
	return nil
}

// cleanName rechaza rutas: solo se aceptan nombres planos.
func cleanName(name string) (string, error) {
	base := path.Base(filepath.ToSlash(name))
	if name == "" || base != name || base == "." || base == ".." {
		return "", fmt.Errorf("storage: nombre de archivo inválido %q", name)
	}
	return base, nil
}

func isNotExist(fs afero.Fs, p string) bool {
	ok, err := afero.Exists(fs, p)
	return err == nil && !ok
}
