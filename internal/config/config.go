package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Inference struct {
		// Mode is "remote" (HTTP model sidecar) or "local" (in-process text model).
		Mode           string `yaml:"mode"`
		URL            string `yaml:"url"`
		TimeoutSeconds int64  `yaml:"timeout_seconds"`
		ModelsDir      string `yaml:"models_dir"`
		TextModel      string `yaml:"text_model"`
	} `yaml:"inference"`
	Moderation struct {
		DefaultPolicy string `yaml:"default_policy"`
		// RestrictedWords is the fallback list used when the shared word
		// set cannot be read.
		RestrictedWords []string `yaml:"restricted_words"`
	} `yaml:"moderation"`
	Alerts struct {
		Enabled          bool   `yaml:"enabled"`
		TelegramBotToken string `yaml:"telegram_bot_token"`
		ChatID           int64  `yaml:"chat_id"`
	} `yaml:"alerts"`
}

// LoadConfig reads configuration from the specified YAML file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if config.Server.Port == "" {
		config.Server.Port = ":8000"
	}
	if config.Inference.Mode == "" {
		config.Inference.Mode = "remote"
	}
	if config.Inference.TimeoutSeconds == 0 {
		config.Inference.TimeoutSeconds = 15
	}
	if config.Moderation.DefaultPolicy == "" {
		config.Moderation.DefaultPolicy = "standard"
	}

	return config, nil
}
