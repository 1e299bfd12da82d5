// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/printroom/stockroom/internal/checkout"
	"github.com/printroom/stockroom/internal/notify"
)

// Config is the shared configuration of the stockroom binaries.
type Config struct {
	DBPath       string
	RemovalLog   string
	Addr         string
	NotifyPolicy checkout.Policy
	SMTP         notify.SMTPConfig
}

// LoadEnvFile reads variables from a .env file into the process
// environment. Variables that are already set win. A missing file is not
// an error unless required is set.
func LoadEnvFile(path string, required bool) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err != nil && !required && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load builds a Config from the environment.
func Load() (*Config, error) {
	policy, err := checkout.ParsePolicy(getEnv("NOTIFY_POLICY", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_POLICY: %w", err)
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	if smtpPort < 1 || smtpPort > 65535 {
		return nil, fmt.Errorf("invalid SMTP_PORT: %d out of range", smtpPort)
	}

	smtpTimeout, err := time.ParseDuration(getEnv("SMTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_TIMEOUT: %w", err)
	}

	return &Config{
		DBPath:       getEnv("STOCKROOM_DB", "inventory.db"),
		RemovalLog:   getEnv("STOCKROOM_REMOVAL_LOG", "removal_log.txt"),
		Addr:         getEnv("STOCKROOM_ADDR", ":8080"),
		NotifyPolicy: policy,
		SMTP: notify.SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     smtpPort,
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
			To:       splitList(os.Getenv("SMTP_TO")),
			Timeout:  smtpTimeout,
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
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
