package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"storefront"`
	ServerPort  int    `envconfig:"SERVER_PORT"  default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL"    default:"info"`

	DatabaseURL       string        `envconfig:"DATABASE_URL"          required:"true"`
	DBMaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS"     default:"20"`
	DBMaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS"     default:"10"`
	DBConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME"  default:"30m"`
	DBConnMaxIdleTime time.Duration `envconfig:"DB_CONN_MAX_IDLE_TIME" default:"5m"`
	DBSlowQuery       time.Duration `envconfig:"DB_SLOW_QUERY"         default:"200ms"`

	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL"    default:"720h"`
	CookieSecure  bool          `envconfig:"COOKIE_SECURE"  default:"true"`
	CSRFEnabled   bool          `envconfig:"CSRF_ENABLED"   default:"true"`

	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:7777"`
	MailFrom    string `envconfig:"MAIL_FROM"    default:"noreply@storefront.local"`

	KafkaBrokers string `envconfig:"KAFKA_BROKERS"`

	ESURL      string `envconfig:"ES_URL"`
	ESUser     string `envconfig:"ES_USER"`
	ESPassword string `envconfig:"ES_PASSWORD"`
	ESIndex    string `envconfig:"ES_INDEX" default:"items"`

	StripeSecretKey string        `envconfig:"STRIPE_SECRET_KEY"`
	StripeURL       string        `envconfig:"STRIPE_URL"     default:"https://api.stripe.com"`
	StripeTimeout   time.Duration `envconfig:"STRIPE_TIMEOUT" default:"15s"`
	Currency        string        `envconfig:"CURRENCY"       default:"USD"`

	S3BaseEndpoint  string `envconfig:"S3_BASE_ENDPOINT"`
	S3Region        string `envconfig:"S3_REGION"         default:"us-east-1"`
	S3Bucket        string `envconfig:"S3_BUCKET"`
	S3AccessKey     string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey     string `envconfig:"S3_SECRET_KEY"`
	S3PublicBaseURL string `envconfig:"S3_PUBLIC_BASE_URL"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	return cfg, nil
}

func (c Config) Brokers() []string {
	return CSV(c.KafkaBrokers)
}

func (c Config) SearchEnabled() bool { return c.ESURL != "" }

func (c Config) StorageEnabled() bool { return c.S3Bucket != "" }

func (c Config) Addr() string { return fmt.Sprintf(":%d", c.ServerPort) }

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
