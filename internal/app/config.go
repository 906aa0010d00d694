package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete gateway configuration, loadable from environment
// variables (SCENTCART_ prefix), flags, or YAML config files.
type Config struct {
	Addr             string        `default:"0.0.0.0:8080" usage:"Gateway listen address"`
	CartServiceURL   string        `usage:"Remote cart service base URL" flag:"cart-service-url"`
	CouponServiceURL string        `usage:"Remote coupon service base URL" flag:"coupon-service-url"`
	SnapshotDBPath   string        `default:"scentcart.db" usage:"SQLite path for cart snapshots" flag:"snapshot-db"`
	PrescreenPath    string        `usage:"Coupon prescreen filter file (optional)" flag:"prescreen"`
	SessionTTL       time.Duration `default:"30m" usage:"Idle session eviction TTL" flag:"session-ttl"`
	Remote           RemoteConfig
	CORS             CORSConfig
	Graceful         GracefulConfig
}

// CORSConfig controls cross-origin access for browser UI clients.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// RemoteConfig bounds round trips to the remote services.
type RemoteConfig struct {
	CartTimeout   time.Duration `default:"15s" usage:"Cart service request timeout" flag:"cart-timeout"`
	CouponTimeout time.Duration `default:"10s" usage:"Coupon service request timeout" flag:"coupon-timeout"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "SCENTCART",
		Files:     []string{"config.yaml", "/etc/scentcart/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.CartServiceURL == "" {
		return nil, errors.New("cart service URL is required: set SCENTCART_CART_SERVICE_URL")
	}
	if cfg.CouponServiceURL == "" {
		return nil, errors.New("coupon service URL is required: set SCENTCART_COUPON_SERVICE_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables that use
// standard names like PORT to the SCENTCART_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
