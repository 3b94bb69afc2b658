package config

import "time"

// getDefaultConfig retorna uma configuração padrão
func getDefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Tracker: TrackerConfig{
			Host:                 "localhost",
			Port:                 9401,
			SampleRate:           33 * time.Millisecond, // ~30 fps do rastreador
			MaxConsecutiveErrors: 5,
			ReconnectDelay:       2 * time.Second,
			MinConfidence:        0.5,
			Debug:                false,
		},
		Session: SessionConfig{
			SmoothingWindow: 5,
			DefaultHoldTime: 3 * time.Second,
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			Password: "",
			DB:       0,
			Prefix:   "fisiotrack",
			Enabled:  true,
		},
	}
}
