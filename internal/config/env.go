package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names read by LoadEnv.
const (
	EnvName           = "VAKIT_ENV"
	EnvStore          = "VAKIT_STORE"
	EnvAPIURL         = "VAKIT_API_URL"
	EnvHTTPAddr       = "VAKIT_HTTP_ADDR"
	EnvMQTTBroker     = "VAKIT_MQTT_BROKER"
	EnvMQTTTopic      = "VAKIT_MQTT_TOPIC"
	EnvTelegramToken  = "VAKIT_TELEGRAM_TOKEN"
	EnvTelegramChatID = "VAKIT_TELEGRAM_CHAT_ID"
	EnvCacheDir       = "VAKIT_CACHE_DIR"
)

// DefaultEnvFile is loaded when no explicit env file is given. Its absence is
// not an error.
const DefaultEnvFile = ".env"

// Env is the process-level configuration. It never lands in the preferences
// document.
type Env struct {
	Environment    string // "development" or "production"
	Store          string
	APIURL         string
	HTTPAddr       string
	MQTTBroker     string
	MQTTTopic      string
	TelegramToken  string
	TelegramChatID int64
	CacheDir       string
}

// IsProduction reports whether logs should use the production encoder.
func (e Env) IsProduction() bool {
	return e.Environment == "production"
}

// LoadEnv loads the given dotenv files into the process environment and reads
// the VAKIT_* variables. With no files, DefaultEnvFile is tried and silently
// skipped when missing. Variables already set in the environment win over
// the files.
func LoadEnv(files ...string) (Env, error) {
	if len(files) == 0 {
		if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Env{}, fmt.Errorf("failed to load %s: %w", DefaultEnvFile, err)
		}
	} else if err := godotenv.Load(files...); err != nil {
		return Env{}, fmt.Errorf("failed to load env file: %w", err)
	}

	env := Env{
		Environment:   getenv(EnvName),
		Store:         getenv(EnvStore),
		APIURL:        getenv(EnvAPIURL),
		HTTPAddr:      getenv(EnvHTTPAddr),
		MQTTBroker:    getenv(EnvMQTTBroker),
		MQTTTopic:     getenv(EnvMQTTTopic),
		TelegramToken: getenv(EnvTelegramToken),
		CacheDir:      getenv(EnvCacheDir),
	}

	if env.Environment == "" {
		env.Environment = "development"
	}
	if env.MQTTTopic == "" {
		env.MQTTTopic = "vakit/events"
	}

	if raw := getenv(EnvTelegramChatID); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Env{}, fmt.Errorf("invalid %s %q: must be an integer", EnvTelegramChatID, raw)
		}
		env.TelegramChatID = id
	}

	return env, nil
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
