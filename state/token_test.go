package state

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

func signed(t *testing.T, claims gojwt.MapClaims) string {
	t.Helper()
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

func TestTokenExpired(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		token    string
		expected bool
	}{
		{name: "empty", token: "", expected: false},
		{name: "opaque", token: "not-a-jwt", expected: false},
		{name: "no exp", token: signed(t, gojwt.MapClaims{"username": "al"}), expected: false},
		{name: "future exp", token: signed(t, gojwt.MapClaims{"exp": now.Add(time.Hour).Unix()}), expected: false},
		{name: "past exp", token: signed(t, gojwt.MapClaims{"exp": now.Add(-time.Hour).Unix()}), expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TokenExpired(tt.token, now); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}
