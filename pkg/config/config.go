package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultAPIURL origen usado cuando API_URL no está definido.
const DefaultAPIURL = "https://back-ecolink-3.onrender.com"

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	API     APIConfig
	Session SessionConfig
	JWT     JWTConfig
	HTTP    HTTPConfig
	Seed    SeedConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// APIConfig configuración del cliente de la API remota.
type APIConfig struct {
	BaseURL      string        // origen, ej. https://back-ecolink-3.onrender.com
	Prefix       string        // prefijo versionado, ej. /api/v1
	Timeout      time.Duration // timeout uniforme por petición
	ReadRetries  int           // reintentos de lecturas GET ante fallo de transporte
	RetryBackoff time.Duration
}

// URL devuelve el origen más el prefijo versionado, sin barra final.
func (c APIConfig) URL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.Trim(c.Prefix, "/")
}

// SessionConfig configuración de la sesión local.
// Store: "sqlite" (archivo local), "keyring" (llavero del SO) o "memory".
type SessionConfig struct {
	Timeout       time.Duration
	CheckInterval time.Duration
	Store         string
	DBPath        string
}

// JWTConfig configuración de JWT (solo la usa el backend de desarrollo).
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP de desarrollo.
type HTTPConfig struct {
	Host string
	Port int
}

// SeedConfig administrador inicial que crea el backend de desarrollo al arrancar.
type SeedConfig struct {
	AdminEmail    string
	AdminName     string
	AdminPassword string
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, API_URL, SESSION_STORE, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
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

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "ecolink-clientes"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		API: APIConfig{
			BaseURL:      getString(v, "API_URL", DefaultAPIURL),
			Prefix:       getString(v, "API_PREFIX", "/api/v1"),
			Timeout:      time.Duration(getInt(v, "API_TIMEOUT_SECONDS", 30)) * time.Second,
			ReadRetries:  getInt(v, "API_READ_RETRIES", 2),
			RetryBackoff: time.Duration(getInt(v, "API_RETRY_BACKOFF_MS", 1000)) * time.Millisecond,
		},
		Session: SessionConfig{
			Timeout:       time.Duration(getInt(v, "SESSION_TIMEOUT_MINUTES", 20)) * time.Minute,
			CheckInterval: time.Duration(getInt(v, "SESSION_CHECK_SECONDS", 60)) * time.Second,
			Store:         getString(v, "SESSION_STORE", "sqlite"),
			DBPath:        getString(v, "SESSION_DB_PATH", "ecolink-sesion.db"),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "ecolink"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 3000),
		},
		Seed: SeedConfig{
			AdminEmail:    getString(v, "ADMIN_EMAIL", "admin@ecolink.com"),
			AdminName:     getString(v, "ADMIN_NAME", "Administrador"),
			AdminPassword: getString(v, "ADMIN_PASSWORD", ""),
		},
	}

	switch cfg.Session.Store {
	case "sqlite", "keyring", "memory":
	default:
		return nil, fmt.Errorf("SESSION_STORE inválido: %q (sqlite, keyring o memory)", cfg.Session.Store)
	}
	if cfg.API.ReadRetries < 0 {
		return nil, fmt.Errorf("API_READ_RETRIES no puede ser negativo")
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
			n, err := strconv.Atoi(v.GetString(key))
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
