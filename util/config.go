package util

import (
	_ "embed"
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const Name = "postbox"
const ConfigFileName = "config.yaml"

//go:embed config_default.yaml
var embeddedConfig []byte

type AppConfig struct {
	Conf struct {
		ApiUrl         string `yaml:"apiUrl"`
		ChatUrl        string `yaml:"chatUrl"`
		Database       string `yaml:"database"`
		LogLevel       string `yaml:"logLevel"`
		LogFile        string `yaml:"logFile"`
		NoColor        bool   `yaml:"noColor"`
		RequestTimeout int    `yaml:"requestTimeout"` // seconds
		DevPort        int    `yaml:"devPort"`
		DevSecret      string `yaml:"devSecret"`
	}
}

// Timeout returns the per-request HTTP timeout.
func (c *AppConfig) Timeout() time.Duration {
	if c.Conf.RequestTimeout <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Conf.RequestTimeout) * time.Second
}

// DefaultConf returns the embedded configuration without touching the
// filesystem or the environment.
func DefaultConf() (*AppConfig, error) {
	c := &AppConfig{}
	if err := yaml.Unmarshal(embeddedConfig, c); err != nil {
		return nil, fmt.Errorf("in embedded config: %w", err)
	}
	return c, nil
}

func ReadConf() (*AppConfig, error) {

	c := &AppConfig{}
	log := NewLogger("config")

	// Try to resolve config file path (local first, then user dir)
	configPath := ResolveFilePath(ConfigFileName)

	buf, err := os.ReadFile(configPath)
	if err != nil {
		// If file doesn't exist, use embedded config and create user config file
		log.Debugf("Config file not found at %s, using embedded defaults", configPath)
		buf = embeddedConfig

		configDir, dirErr := ConfigDir()
		if dirErr == nil {
			userConfigPath := filepath.Join(configDir, ConfigFileName)
			writeErr := os.WriteFile(userConfigPath, embeddedConfig, 0644)
			if writeErr != nil {
				log.Warnf("could not write default config to %s: %v", userConfigPath, writeErr)
			} else {
				log.Infof("Created default config file at %s", userConfigPath)
			}
		}
	}

	err = yaml.Unmarshal(buf, c)
	if err != nil {
		return nil, fmt.Errorf("in config file: %w", err)
	}

	if err := applyEnv(c); err != nil {
		return nil, err
	}

	c.Conf.ApiUrl = strings.TrimRight(c.Conf.ApiUrl, "/")
	return c, nil
}

func applyEnv(c *AppConfig) error {
	envApiUrl := os.Getenv("POSTBOX_API_URL")
	envChatUrl := os.Getenv("POSTBOX_CHAT_URL")
	envDatabase := os.Getenv("POSTBOX_DATABASE")
	envLogLevel := os.Getenv("POSTBOX_LOG_LEVEL")
	envLogFile := os.Getenv("POSTBOX_LOG_FILE")
	envNoColor := os.Getenv("POSTBOX_NO_COLOR")
	envDevPort := os.Getenv("POSTBOX_DEV_PORT")
	envDevSecret := os.Getenv("POSTBOX_DEV_SECRET")

	if envApiUrl != "" {
		c.Conf.ApiUrl = envApiUrl
	}

	if envChatUrl != "" {
		c.Conf.ChatUrl = envChatUrl
	}

	if envDatabase != "" {
		c.Conf.Database = envDatabase
	}

	if envLogLevel != "" {
		c.Conf.LogLevel = envLogLevel
	}

	if envLogFile != "" {
		c.Conf.LogFile = envLogFile
	}

	if envNoColor == "true" {
		c.Conf.NoColor = true
	}

	if envDevPort != "" {
		v, err := strconv.Atoi(envDevPort)
		if err != nil {
			return fmt.Errorf("POSTBOX_DEV_PORT: %w", err)
		}
		c.Conf.DevPort = v
	}

	if envDevSecret != "" {
		c.Conf.DevSecret = envDevSecret
	}

	return nil
}
