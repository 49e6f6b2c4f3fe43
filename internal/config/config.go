package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"

	AuthModeJWT    = "jwt"
	AuthModeStatic = "static"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Log struct {
		Level string
	}
	Database struct {
		Driver string
		Path   string
	}
	Auth struct {
		Mode            string
		JWTSecret       string
		Issuer          string
		TokenTTLMinutes int
		StaticToken     string
		StaticUserID    string
		StaticEmail     string
	}
	Catalog struct {
		Bucket   string
		Key      string
		Region   string
		Endpoint string
	}
	AWS struct {
		Profile string
	}
}

// Load reads configuration from environment variables and optional config files.
// Variables from a .env file in the working directory never override the real environment.
func Load() (Config, error) {
	return Decode(NewViper())
}

// NewViper returns a viper instance with defaults, LISTING_* environment lookup and the
// optional config file applied. Callers may bind command-line flags before Decode.
func NewViper() *viper.Viper {
	_ = godotenv.Load() // optional file

	v := viper.New()
	v.SetEnvPrefix("LISTING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	return v
}

// Decode unmarshals the settings held by v.
func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "0.0.0.0:3032")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "data/listing.db")
	v.SetDefault("auth.mode", AuthModeJWT)
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.issuer", "listing-progress")
	v.SetDefault("auth.tokenttlminutes", 60)
	v.SetDefault("auth.statictoken", "")
	v.SetDefault("auth.staticuserid", "")
	v.SetDefault("auth.staticemail", "")
	v.SetDefault("catalog.bucket", "")
	v.SetDefault("catalog.key", "catalog/properties.json")
	v.SetDefault("catalog.region", "us-east-1")
	v.SetDefault("catalog.endpoint", "")
	v.SetDefault("aws.profile", "")
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Database.Path) == "" {
			return errors.New("database path is required for the sqlite driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	switch c.Auth.Mode {
	case AuthModeJWT:
		if strings.TrimSpace(c.Auth.JWTSecret) == "" {
			return errors.New("auth jwt secret is required")
		}
	case AuthModeStatic:
		if strings.TrimSpace(c.Auth.StaticToken) == "" {
			return errors.New("auth static token is required")
		}
		if strings.TrimSpace(c.Auth.StaticUserID) == "" {
			return errors.New("auth static user id is required")
		}
	default:
		return fmt.Errorf("unknown auth mode %q", c.Auth.Mode)
	}

	if c.Auth.TokenTTLMinutes <= 0 {
		return errors.New("auth token ttl must be positive")
	}
	if c.Catalog.Bucket != "" && strings.TrimSpace(c.Catalog.Key) == "" {
		return errors.New("catalog key is required when a catalog bucket is set")
	}
	return nil
}
