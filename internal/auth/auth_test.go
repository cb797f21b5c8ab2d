package auth

import (
	"errors"
	"testing"

	"remotedb/internal/config"
)

func TestCheckKey(t *testing.T) {
	cfg := &config.Config{
		APIKey:      "user_key_123",
		AdminAPIKey: "admin_key_456",
	}

	tests := []struct {
		name     string
		provided string
		wantTier Tier
		wantErr  error
	}{
		{"missing key", "", "", ErrMissingKey},
		{"standard key", "user_key_123", TierStandard, nil},
		{"privileged key", "admin_key_456", TierPrivileged, nil},
		{"wrong key", "nope", "", ErrInvalidKey},
		{"standard key with suffix", "user_key_1234", "", ErrInvalidKey},
		{"prefix of standard key", "user_key_12", "", ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, err := CheckKey(tt.provided, cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CheckKey(%q) error = %v, want %v", tt.provided, err, tt.wantErr)
			}
			if tier != tt.wantTier {
				t.Errorf("CheckKey(%q) tier = %q, want %q", tt.provided, tier, tt.wantTier)
			}
		})
	}
}

func TestCheckKeyNoAdminConfigured(t *testing.T) {
	cfg := &config.Config{APIKey: "user_key_123"}

	tier, err := CheckKey("user_key_123", cfg)
	if err != nil {
		t.Fatalf("CheckKey() error = %v", err)
	}
	if tier != TierStandard {
		t.Errorf("tier = %q, want %q", tier, TierStandard)
	}

	if _, err := CheckKey("admin_key_456", cfg); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("unconfigured admin key accepted, error = %v", err)
	}
}
