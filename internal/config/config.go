package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Price policies for checkout.
const (
	PricePolicyClient = "client"
	PricePolicyServer = "server"
)

// Config holds every runtime setting of the API.
type Config struct {
	AppEnv  string
	AppPort string

	DBDriver          string
	DBDSN             string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	JWTSecret string
	JWTTTL    time.Duration

	RabbitMQURL string
	UploadDir   string

	OrderPricePolicy string

	AuthRateLimit float64
	AuthRateBurst int

	AdminEmail    string
	AdminPassword string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":5000")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=floryn port=5432 sslmode=disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "168h")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("ORDER_PRICE_POLICY", PricePolicyClient)
	v.SetDefault("AUTH_RATE_LIMIT", 2.0)
	v.SetDefault("AUTH_RATE_BURST", 5)
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
}

// Load reads an optional .env file, then environment variables, on top of the
// defaults.
func Load(v *viper.Viper, envFiles ...string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load(envFiles...)

	SetDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		AppEnv:            v.GetString("APP_ENV"),
		AppPort:           v.GetString("APP_PORT"),
		DBDriver:          strings.ToLower(v.GetString("DB_DRIVER")),
		DBDSN:             v.GetString("DB_DSN"),
		DBMaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
		DBConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		JWTTTL:            v.GetDuration("JWT_TTL"),
		RabbitMQURL:       v.GetString("RABBITMQ_URL"),
		UploadDir:         v.GetString("UPLOAD_DIR"),
		OrderPricePolicy:  strings.ToLower(v.GetString("ORDER_PRICE_POLICY")),
		AuthRateLimit:     v.GetFloat64("AUTH_RATE_LIMIT"),
		AuthRateBurst:     v.GetInt("AUTH_RATE_BURST"),
		AdminEmail:        v.GetString("ADMIN_EMAIL"),
		AdminPassword:     v.GetString("ADMIN_PASSWORD"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the API runs with production settings.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		if c.AppEnv != "development" && c.AppEnv != "test" {
			return fmt.Errorf("JWT_SECRET must be set when APP_ENV is %q", c.AppEnv)
		}
		c.JWTSecret = "development_secret"
	}

	switch c.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.OrderPricePolicy {
	case PricePolicyClient, PricePolicyServer:
	default:
		return fmt.Errorf("unsupported ORDER_PRICE_POLICY %q", c.OrderPricePolicy)
	}

	if c.DBMaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", c.DBMaxOpenConns)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
	}
	return nil
}
