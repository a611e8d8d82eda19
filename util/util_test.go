package util

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestIsBlank(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "empty", input: "", expected: true},
		{name: "spaces", input: "   ", expected: true},
		{name: "tabs and newlines", input: "\t\n ", expected: true},
		{name: "text", input: "Hi", expected: false},
		{name: "padded text", input: "  Hi  ", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBlank(tt.input); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestPostDateFormat(t *testing.T) {
	date := time.Date(2021, time.March, 7, 15, 4, 5, 0, time.UTC)
	if got := PostDateFormat(date); got != "3/7/2021" {
		t.Errorf("Expected '3/7/2021', got '%s'", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Expected 'short', got '%s'", got)
	}
	if got := Truncate("a much longer string", 10); got != "a much ..." {
		t.Errorf("Expected 'a much ...', got '%s'", got)
	}
}

func TestGetNameAndVersion(t *testing.T) {
	v := GetNameAndVersion()
	if !strings.HasPrefix(v, "postbox / ") {
		t.Errorf("Expected 'postbox / <version>', got '%s'", v)
	}
	if GetVersion() == "" {
		t.Error("Version should not be empty")
	}
}

func TestNewLoggerIsCachedPerComponent(t *testing.T) {
	a := NewLogger("alpha")
	b := NewLogger("alpha")
	c := NewLogger("beta")

	if a != b {
		t.Error("NewLogger should return the same entry for the same component")
	}
	if a == c {
		t.Error("NewLogger should return different entries for different components")
	}

	var buf bytes.Buffer
	SetLogOutput(&buf)
	a.Warn("hello")
	if !strings.Contains(buf.String(), "component=alpha") {
		t.Errorf("Expected component field in log output, got: %s", buf.String())
	}
}
