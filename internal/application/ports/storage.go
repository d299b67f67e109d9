package ports

import (
	"context"
	"io"
)

// FileStorage guarda archivos subidos y devuelve su URL pública.
type FileStorage interface {
	Save(ctx context.Context, name string, r io.Reader) (url string, err error)
	Delete(ctx context.Context, url string) error
}
