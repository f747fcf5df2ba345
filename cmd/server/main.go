package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/himanishpuri/AcousticSpot/internal/config"
	"github.com/himanishpuri/AcousticSpot/pkg/logger"
)

var (
	port           int
	configPath     string
	tempDir        string
	sampleRate     int
	workers        int
	allowedOrigins string
)

func init() {
	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&configPath, "config", getEnvOrDefault("ACOUSTIC_CONFIG", ""), "Optional YAML config file")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("ACOUSTIC_TEMP_DIR", ""), "Temporary directory")
	flag.IntVar(&sampleRate, "rate", 0, "Audio sample rate (default 16000)")
	flag.IntVar(&workers, "workers", 0, "Parallel scan workers per request (default: one per CPU)")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	flag.Parse()

	// Parse allowed origins
	var origins []string
	if allowedOrigins == "*" {
		origins = []string{"*"}
	} else {
		origins = strings.Split(allowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if tempDir != "" {
		cfg.Audio.TempDir = tempDir
	}
	if sampleRate != 0 {
		cfg.Audio.SampleRate = sampleRate
	}
	if workers != 0 {
		cfg.Scan.Workers = workers
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	cfg.Logging.Apply(logger.GetLogger())

	server, err := NewServer(cfg, &ServerConfig{Port: port, AllowedOrigins: origins})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}
}
