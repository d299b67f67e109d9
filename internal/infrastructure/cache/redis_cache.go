// Package cache implementa ports.Cache sobre Redis con una versión por namespace.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/ladespensa/despensa-api/internal/application/ports"
	"github.com/ladespensa/despensa-api/pkg/logger"
)

var _ ports.Cache = (*RedisCache)(nil)

// RedisCache caché versionada: cada namespace tiene un contador; Bump lo incrementa y las claves
// de la versión anterior quedan huérfanas hasta que expira su TTL.
// Las cargas concurrentes de una misma clave se colapsan con singleflight.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	log    *logger.Logger
	group  singleflight.Group
}

// NewRedisCache construye la caché. prefix separa aplicaciones que comparten Redis.
func NewRedisCache(client *redis.Client, ttl time.Duration, prefix string, log *logger.Logger) *RedisCache {
	if log == nil {
		log = logger.Nop()
	}
	return &RedisCache{client: client, ttl: ttl, prefix: prefix, log: log}
}

// FetchJSON devuelve el valor cacheado o lo carga. Si Redis falla se registra y se usa el loader:
// la caché nunca es la causa de un error al cliente.
func (c *RedisCache) FetchJSON(ctx context.Context, namespace, key string, dest any, load ports.Loader) error {
	if load == nil {
		return errors.New("cache: loader requerido")
	}
	ver, err := c.version(ctx, namespace)
	if err != nil {
		c.log.Warn().Err(err).Str("namespace", namespace).Msg("caché no disponible, carga directa")
		return ports.NoCache{}.FetchJSON(ctx, namespace, key, dest, load)
	}
	fullKey := c.key(namespace, fmt.Sprintf("v%d", ver), key)

	payload, err := c.client.Get(ctx, fullKey).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		c.log.Warn().Err(err).Str("key", fullKey).Msg("lectura de caché fallida")
	}

	v, err, _ := c.group.Do(fullKey, func() (any, error) {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, fullKey, raw, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Str("key", fullKey).Msg("escritura de caché fallida")
		}
		return raw, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(v.([]byte), dest)
}

// Bump invalida todas las claves del namespace.
func (c *RedisCache) Bump(ctx context.Context, namespace string) error {
	if err := c.client.Incr(ctx, c.key(namespace, "version")).Err(); err != nil {
		c.log.Warn().Err(err).Str("namespace", namespace).Msg("no se pudo invalidar la caché")
		return err
	}
	return nil
}

// Ping verifica la conexión (usado por /health).
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// version devuelve la versión actual del namespace, inicializándola en 1.
func (c *RedisCache) version(ctx context.Context, namespace string) (int64, error) {
	vkey := c.key(namespace, "version")
	ver, err := c.client.Get(ctx, vkey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, vkey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, vkey).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

func (c *RedisCache) key(parts ...string) string {
	if c.prefix != "" {
		parts = append([]string{c.prefix}, parts...)
	}
	return strings.Join(parts, ":")
}
