package ports

import (
	"context"
	"encoding/json"
)

// Namespaces de caché; cada mutación invalida solo el suyo.
const (
	CacheProducts  = "productos"
	CacheSales     = "ventas"
	CacheSuppliers = "proveedores"
	CachePayables  = "cuentas"
)

// Loader carga el valor desde la fuente cuando no está en caché.
type Loader func(ctx context.Context) (any, error)

// Cache caché versionada por namespace.
type Cache interface {
	// FetchJSON deja en dest el valor cacheado de (namespace, key) o el que devuelva load.
	FetchJSON(ctx context.Context, namespace, key string, dest any, load Loader) error
	// Bump invalida todas las claves del namespace.
	Bump(ctx context.Context, namespace string) error
}

// NoCache implementación sin almacenamiento: siempre llama al loader.
type NoCache struct{}

func (NoCache) FetchJSON(ctx context.Context, _, _ string, dest any, load Loader) error {
	v, err := load(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (NoCache) Bump(context.Context, string) error { return nil }
