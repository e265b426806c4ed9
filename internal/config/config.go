package config

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

type Config struct {
	Env      string
	Port     string
	LogLevel string

	MongoURI      string
	MongoDB       string
	StorageDriver string

	JWTSecret   string
	TokenTTL    time.Duration
	FrontendURL string

	// TrustedProxies lists the proxy IPs/CIDRs whose X-Forwarded-For is
	// honoured. Empty means the peer address is the client address.
	TrustedProxies []string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripeCurrency      string

	FaceServiceURL     string
	FaceMatchThreshold float64
}

func (c *Config) IsProduction() bool { return c.Env == EnvProduction }

// Load reads configuration from the environment, after loading an optional
// .env file from the working directory.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return nil, errors.Wrap(err, "config: loading .env")
	}

	v := viper.New()
	v.SetDefault("env", EnvDevelopment)
	v.SetDefault("port", "3000")
	v.SetDefault("log_level", "info")
	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_db", "aasrasewa")
	v.SetDefault("storage_driver", StorageMongo)
	v.SetDefault("expire_in", "1d")
	v.SetDefault("stripe_currency", "inr")
	v.SetDefault("face_match_threshold", 0.6)
	v.AutomaticEnv()

	ttl, err := ParseTTL(v.GetString("expire_in"))
	if err != nil {
		return nil, errors.Wrap(err, "config: EXPIRE_IN")
	}

	cfg := &Config{
		Env:                 strings.ToLower(v.GetString("env")),
		Port:                v.GetString("port"),
		LogLevel:            v.GetString("log_level"),
		MongoURI:            v.GetString("mongo_uri"),
		MongoDB:             v.GetString("mongo_db"),
		StorageDriver:       strings.ToLower(v.GetString("storage_driver")),
		JWTSecret:           v.GetString("jwt_secret"),
		TokenTTL:            ttl,
		FrontendURL:         strings.TrimSpace(v.GetString("frontend_url")),
		TrustedProxies:      splitList(v.GetString("trusted_proxies")),
		CloudinaryCloudName: v.GetString("cloudinary_cloud_name"),
		CloudinaryAPIKey:    v.GetString("cloudinary_api_key"),
		CloudinaryAPISecret: v.GetString("cloudinary_api_secret"),
		StripeSecretKey:     v.GetString("stripe_secret_key"),
		StripeWebhookSecret: v.GetString("stripe_webhook_secret"),
		StripeCurrency:      strings.ToLower(v.GetString("stripe_currency")),
		FaceServiceURL:      strings.TrimRight(v.GetString("face_service_url"), "/"),
		FaceMatchThreshold:  v.GetFloat64("face_match_threshold"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	switch c.StorageDriver {
	case StorageMongo, StorageMemory:
	default:
		return errors.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return errors.Errorf("config: unknown ENV %q", c.Env)
	}
	for _, p := range c.TrustedProxies {
		if net.ParseIP(p) == nil {
			if _, _, err := net.ParseCIDR(p); err != nil {
				return errors.Errorf("config: TRUSTED_PROXIES entry %q is neither an IP nor a CIDR", p)
			}
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseTTL accepts Go durations ("12h", "90m") plus a day suffix ("1d", "7d").
// Surrounding quotes are stripped.
func ParseTTL(s string) (time.Duration, error) {
	s = strings.Trim(strings.TrimSpace(s), `'"`)
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || days <= 0 {
			return 0, errors.Errorf("invalid duration %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.Errorf("invalid duration %q", s)
	}
	return d, nil
}
