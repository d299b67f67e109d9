package usecase

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/ladespensa/despensa-api/internal/application/dto"
	"github.com/ladespensa/despensa-api/internal/domain"
	"github.com/ladespensa/despensa-api/internal/domain/entity"
)

// Tipos de imagen aceptados y su extensión.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

const sniffBytes = 3072

// ImageUpload archivo recibido por multipart.
type ImageUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// UploadImage valida tamaño y tipo real del archivo (por contenido, no por extensión),
// lo guarda y actualiza la URL de imagen del producto.
func (uc *ProductUseCase) UploadImage(ctx context.Context, id string, up ImageUpload) (*dto.ImageUploadResponse, error) {
	if uc.storage == nil {
		return nil, fmt.Errorf("almacenamiento de archivos no configurado")
	}
	if up.Size <= 0 || (uc.maxUploadBytes > 0 && up.Size > uc.maxUploadBytes) {
		return nil, domain.ErrInvalidInput
	}
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}

	br := bufio.NewReaderSize(up.Content, sniffBytes)
	head, err := br.Peek(sniffBytes)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, err
	}
	ext, ok := imageTypes[mimetype.Detect(head).String()]
	if !ok {
		return nil, domain.ErrUnsupportedMedia
	}

	var src io.Reader = br
	if uc.maxUploadBytes > 0 {
		src = io.LimitReader(br, uc.maxUploadBytes)
	}
	name := p.ID + "-" + uc.now().Format("20060102150405") + ext
	url, err := uc.storage.Save(ctx, name, src)
	if err != nil {
		return nil, fmt.Errorf("guardar imagen: %w", err)
	}

	var old string
	_, err = uc.mutateLocked(ctx, p.ID, func(p *entity.Product, _ time.Time) error {
		old = p.ImageURL
		p.ImageURL = url
		return nil
	})
	if err != nil {
		_ = uc.storage.Delete(ctx, url)
		return nil, err
	}
	if old != "" && old != url && isLocalImage(old) {
		_ = uc.storage.Delete(ctx, old)
	}
	return &dto.ImageUploadResponse{URL: url}, nil
}

// isLocalImage descarta URLs externas cargadas a mano en imagen_url.
func isLocalImage(url string) bool {
	return !strings.Contains(url, "://") && path.Ext(url) != ""
}
