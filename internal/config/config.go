package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string
	DBDSN    string

	AuthSecret string

	// EnableRegistration gates the open /auth/register endpoint; with it off,
	// accounts can only be created out of band.
	EnableRegistration bool

	CORSOriginsOnline  []string
	CORSOriginsOffline []string
}

// fileConfig is the optional YAML shape pointed to by CONFIG_FILE. Environment
// variables override file values, file values override built-in defaults.
type fileConfig struct {
	Mode     string `yaml:"mode"`
	HTTPAddr string `yaml:"http_addr"`
	Database struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`
	Auth struct {
		Secret             string `yaml:"secret"`
		EnableRegistration *bool  `yaml:"enable_registration"`
	} `yaml:"auth"`
	CORS struct {
		Online  []string `yaml:"online"`
		Offline []string `yaml:"offline"`
	} `yaml:"cors"`
}

func Load() (Config, error) {
	var fc fileConfig
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(buf, &fc); err != nil {
			return Config{}, err
		}
	}

	regDefault := true
	if fc.Auth.EnableRegistration != nil {
		regDefault = *fc.Auth.EnableRegistration
	}

	cfg := Config{
		Mode:               Mode(envOr("MODE", orStr(fc.Mode, string(ModeOffline)))),
		HTTPAddr:           envOr("HTTP_ADDR", orStr(fc.HTTPAddr, ":8080")),
		DBDriver:           envOr("DB_DRIVER", orStr(fc.Database.Driver, "sqlite")),
		DBDSN:              envOr("DB_DSN", fc.Database.DSN),
		AuthSecret:         envOr("AUTH_HMAC_SECRET", orStr(fc.Auth.Secret, "supersecret-dev-key")),
		EnableRegistration: envBool("ENABLE_REGISTRATION", regDefault),
		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", fc.CORS.Online, "https://quizzer.example.com"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", fc.CORS.Offline, "http://localhost:3000"),
	}
	return cfg, nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func csvOr(k string, fromFile []string, def string) []string {
	v := os.Getenv(k)
	if v == "" {
		if len(fromFile) > 0 {
			return fromFile
		}
		v = def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func orStr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
