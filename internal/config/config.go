package config

import (
	"encoding/json"
	"os"
	"strconv"
	"time"
)

// Config representa a configuração completa da aplicação
type Config struct {
	Server  ServerConfig  `json:"server"`
	Tracker TrackerConfig `json:"tracker"`
	Session SessionConfig `json:"session"`
	Redis   RedisConfig   `json:"redis"`
}

// ServerConfig contém configurações do servidor HTTP/WebSocket
type ServerConfig struct {
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"readTimeout"`
	WriteTimeout    time.Duration `json:"writeTimeout"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout"`
}

// TrackerConfig contém configurações do rastreador de pose externo
type TrackerConfig struct {
	Host                 string        `json:"host"`
	Port                 int           `json:"port"`
	SampleRate           time.Duration `json:"sampleRate"`
	MaxConsecutiveErrors int           `json:"maxConsecutiveErrors"`
	ReconnectDelay       time.Duration `json:"reconnectDelay"`
	MinConfidence        float64       `json:"minConfidence"`
	Debug                bool          `json:"debug"`
}

// SessionConfig contém parâmetros do engine de repetições
type SessionConfig struct {
	SmoothingWindow int           `json:"smoothingWindow"`
	DefaultHoldTime time.Duration `json:"defaultHoldTime"`
}

// RedisConfig contém configurações do Redis
type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Prefix   string `json:"prefix"`
	Enabled  bool   `json:"enabled"`
}

// Load carrega a configuração do arquivo ou usa valores padrão
func Load() (*Config, error) {
	config := getDefaultConfig()

	// Verificar se existe um arquivo de configuração
	if _, err := os.Stat("config.json"); err == nil {
		file, err := os.Open("config.json")
		if err != nil {
			return nil, err
		}
		defer file.Close()

		decoder := json.NewDecoder(file)
		if err := decoder.Decode(&config); err != nil {
			return nil, err
		}
	}

	// Sobrescrever com variáveis de ambiente, se existirem
	applyEnvironmentOverrides(&config)

	return &config, nil
}

// applyEnvironmentOverrides sobrescreve configurações com variáveis de
// ambiente FISIOTRACK_*, úteis em contêineres onde o config.json não existe
func applyEnvironmentOverrides(config *Config) {
	if val, ok := envInt("FISIOTRACK_SERVER_PORT"); ok {
		config.Server.Port = val
	}

	if val := os.Getenv("FISIOTRACK_TRACKER_HOST"); val != "" {
		config.Tracker.Host = val
	}
	if val, ok := envInt("FISIOTRACK_TRACKER_PORT"); ok {
		config.Tracker.Port = val
	}
	if val, ok := envDuration("FISIOTRACK_SAMPLE_RATE"); ok {
		config.Tracker.SampleRate = val
	}
	if val, ok := envFloat("FISIOTRACK_MIN_CONFIDENCE"); ok {
		config.Tracker.MinConfidence = val
	}

	if val, ok := envInt("FISIOTRACK_SMOOTHING_WINDOW"); ok {
		config.Session.SmoothingWindow = val
	}
	if val, ok := envDuration("FISIOTRACK_HOLD_TIME"); ok {
		config.Session.DefaultHoldTime = val
	}

	if val := os.Getenv("FISIOTRACK_REDIS_HOST"); val != "" {
		config.Redis.Host = val
	}
	if val, ok := envInt("FISIOTRACK_REDIS_PORT"); ok {
		config.Redis.Port = val
	}
	if val := os.Getenv("FISIOTRACK_REDIS_PASSWORD"); val != "" {
		config.Redis.Password = val
	}
	if val := os.Getenv("FISIOTRACK_REDIS_ENABLED"); val != "" {
		config.Redis.Enabled = val == "true" || val == "1"
	}
}

func envInt(name string) (int, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return val, true
}

func envFloat(name string) (float64, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

func envDuration(name string) (time.Duration, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return val, true
}
