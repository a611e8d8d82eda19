package util

import (
	"os"
	"testing"
	"time"
)

func TestConfigConstants(t *testing.T) {
	if Name != "postbox" {
		t.Errorf("Expected Name 'postbox', got '%s'", Name)
	}

	if ConfigFileName != "config.yaml" {
		t.Errorf("Expected ConfigFileName 'config.yaml', got '%s'", ConfigFileName)
	}
}

func TestDefaultConf(t *testing.T) {
	c, err := DefaultConf()
	if err != nil {
		t.Fatalf("DefaultConf failed: %v", err)
	}

	if c.Conf.ApiUrl != "http://localhost:8080" {
		t.Errorf("Expected default ApiUrl 'http://localhost:8080', got '%s'", c.Conf.ApiUrl)
	}
	if c.Conf.Database != "session.db" {
		t.Errorf("Expected default Database 'session.db', got '%s'", c.Conf.Database)
	}
	if c.Timeout() != 60*time.Second {
		t.Errorf("Expected default timeout 60s, got %v", c.Timeout())
	}
}

func TestReadConfWithYaml(t *testing.T) {
	yamlContent := `
conf:
  apiUrl: http://api.example.com:9000/
  chatUrl: ws://api.example.com:9000/chat
  database: test.db
  logLevel: debug
  requestTimeout: 5
`
	err := os.WriteFile("config.yaml", []byte(yamlContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}
	defer os.Remove("config.yaml")

	config, err := ReadConf()
	if err != nil {
		t.Fatalf("ReadConf failed: %v", err)
	}

	if config.Conf.ApiUrl != "http://api.example.com:9000" {
		t.Errorf("Expected ApiUrl without trailing slash, got '%s'", config.Conf.ApiUrl)
	}

	if config.Conf.ChatUrl != "ws://api.example.com:9000/chat" {
		t.Errorf("Expected ChatUrl 'ws://api.example.com:9000/chat', got '%s'", config.Conf.ChatUrl)
	}

	if config.Conf.Database != "test.db" {
		t.Errorf("Expected Database 'test.db', got '%s'", config.Conf.Database)
	}

	if config.Conf.LogLevel != "debug" {
		t.Errorf("Expected LogLevel 'debug', got '%s'", config.Conf.LogLevel)
	}

	if config.Timeout() != 5*time.Second {
		t.Errorf("Expected timeout 5s, got %v", config.Timeout())
	}
}

func TestReadConfWithEnvOverrides(t *testing.T) {
	yamlContent := `
conf:
  apiUrl: http://localhost:8080
  database: session.db
  devPort: 8080
`
	err := os.WriteFile("config.yaml", []byte(yamlContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}
	defer os.Remove("config.yaml")

	t.Setenv("POSTBOX_API_URL", "http://10.0.0.1:3000")
	t.Setenv("POSTBOX_DATABASE", ":memory:")
	t.Setenv("POSTBOX_NO_COLOR", "true")
	t.Setenv("POSTBOX_DEV_PORT", "9090")

	config, err := ReadConf()
	if err != nil {
		t.Fatalf("ReadConf failed: %v", err)
	}

	if config.Conf.ApiUrl != "http://10.0.0.1:3000" {
		t.Errorf("Expected ApiUrl from env, got '%s'", config.Conf.ApiUrl)
	}

	if config.Conf.Database != ":memory:" {
		t.Errorf("Expected Database ':memory:', got '%s'", config.Conf.Database)
	}

	if !config.Conf.NoColor {
		t.Error("Expected NoColor to be true")
	}

	if config.Conf.DevPort != 9090 {
		t.Errorf("Expected DevPort 9090, got %d", config.Conf.DevPort)
	}
}

func TestReadConfRejectsBadPort(t *testing.T) {
	err := os.WriteFile("config.yaml", []byte("conf:\n  devPort: 8080\n"), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}
	defer os.Remove("config.yaml")

	t.Setenv("POSTBOX_DEV_PORT", "not-a-port")

	if _, err := ReadConf(); err == nil {
		t.Error("Expected an error for a non-numeric POSTBOX_DEV_PORT")
	}
}
