package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	HTTP      HTTPConfig
	Upload    UploadConfig
	Inventory InventoryConfig
	AI        AIConfig
	Metrics   MetricsConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env           string // development, staging, production
	Name          string
	LogLevel      string
	StorageDriver string // memory | postgres
	AdminEmail    string // usuario inicial creado al arrancar si no existe
	AdminPassword string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL    string
	Host           string
	Port           int
	User           string
	Password       string
	DBName         string
	SSLMode        string
	AutoMigrations bool // aplica migraciones goose al arrancar
	MaxConns       int
	SlowQuery      time.Duration // consultas más lentas se registran en warn; 0 = no se trazan
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// RedisConfig configuración del caché de recursos. Addr vacío desactiva el caché.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// JWTConfig configuración de JWT (token de acceso y token de refresco).
type JWTConfig struct {
	Secret            string
	Expiration        int // minutos
	RefreshExpiration int // horas
	Issuer            string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host        string
	Port        int
	CORSOrigins string
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// UploadConfig límites para la subida de imágenes de productos.
type UploadConfig struct {
	Dir      string
	MaxBytes int64
	BaseURL  string // prefijo público de las imágenes servidas
}

// InventoryConfig parámetros de negocio del inventario.
type InventoryConfig struct {
	ExpiringSoonDays int
}

// AIConfig configuración del asistente virtual.
type AIConfig struct {
	AnthropicAPIKey string
	AnthropicModel  string
	Timeout         time.Duration // timeout del cliente HTTP
}

// MetricsConfig expone /metrics cuando Enabled es true.
type MetricsConfig struct {
	Enabled bool
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, REDIS_ADDR, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:           getString(v, "APP_ENV", "development"),
			Name:          getString(v, "APP_NAME", "la-despensa"),
			LogLevel:      getString(v, "LOG_LEVEL", "info"),
			StorageDriver: strings.ToLower(getString(v, "STORAGE_DRIVER", "postgres")),
			AdminEmail:    getString(v, "ADMIN_EMAIL", ""),
			AdminPassword: getString(v, "ADMIN_PASSWORD", ""),
		},
		DB: DBConfig{
			DatabaseURL:    getString(v, "DATABASE_URL", ""),
			Host:           getString(v, "DB_HOST", "localhost"),
			Port:           getInt(v, "DB_PORT", 5432),
			User:           getString(v, "DB_USER", "postgres"),
			Password:       getString(v, "DB_PASSWORD", ""),
			DBName:         getString(v, "DB_NAME", "la_despensa"),
			SSLMode:        getString(v, "DB_SSLMODE", "disable"),
			AutoMigrations: getBool(v, "MIGRATIONS_AUTO", true),
			MaxConns:       getInt(v, "DB_MAX_CONNS", 10),
			SlowQuery:      time.Duration(getInt(v, "DB_SLOW_QUERY_MS", 250)) * time.Millisecond,
		},
		Redis: RedisConfig{
			Addr:     getString(v, "REDIS_ADDR", ""),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
			TTL:      time.Duration(getInt(v, "CACHE_TTL_SECONDS", 300)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:            getString(v, "JWT_SECRET", ""),
			Expiration:        getInt(v, "JWT_EXPIRATION_MINUTES", 15),
			RefreshExpiration: getInt(v, "JWT_REFRESH_EXPIRATION_HOURS", 168),
			Issuer:            getString(v, "JWT_ISSUER", "la-despensa"),
		},
		HTTP: HTTPConfig{
			Host:        getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:        getInt(v, "HTTP_PORT", 8080),
			CORSOrigins: getString(v, "CORS_ORIGINS", "http://localhost:5173"),
		},
		Upload: UploadConfig{
			Dir:      getString(v, "UPLOAD_DIR", "./uploads"),
			MaxBytes: int64(getInt(v, "UPLOAD_MAX_BYTES", 5<<20)),
			BaseURL:  getString(v, "UPLOAD_BASE_URL", "/uploads"),
		},
		Inventory: InventoryConfig{
			ExpiringSoonDays: getInt(v, "INVENTORY_EXPIRING_SOON_DAYS", 30),
		},
		AI: AIConfig{
			AnthropicAPIKey: getString(v, "ANTHROPIC_API_KEY", ""),
			AnthropicModel:  getString(v, "ANTHROPIC_MODEL", "claude-3-5-haiku-20241022"),
			Timeout:         time.Duration(getInt(v, "ANTHROPIC_TIMEOUT_SECONDS", 25)) * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: getBool(v, "METRICS_ENABLED", true),
		},
	}

	if cfg.JWT.Secret == "" && cfg.App.Env == "production" {
		return nil, fmt.Errorf("config: JWT_SECRET es obligatorio en production")
	}
	if cfg.App.StorageDriver != "memory" && cfg.App.StorageDriver != "postgres" {
		return nil, fmt.Errorf("config: STORAGE_DRIVER debe ser memory o postgres")
	}
	if cfg.Inventory.ExpiringSoonDays < 0 {
		return nil, fmt.Errorf("config: INVENTORY_EXPIRING_SOON_DAYS no puede ser negativo")
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return def
		}
		return b
	}
	return def
}
