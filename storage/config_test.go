package storage

import (
	"testing"
	"time"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Provider != ProviderLocal || cfg.SignedURLExpiry != 6*time.Hour || cfg.Prefix != "audio" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"local", Config{Provider: ProviderLocal, BasePath: "out"}, false},
		{"s3", Config{Provider: ProviderS3, Bucket: "b", Region: "r"}, false},
		{"s3 without bucket", Config{Provider: ProviderS3, Region: "r"}, true},
		{"supabase", Config{Provider: ProviderSupabase, URL: "https://x.supabase.co", Bucket: "b", SecretKey: "k"}, false},
		{"supabase without key", Config{Provider: ProviderSupabase, URL: "https://x.supabase.co", Bucket: "b"}, true},
		{"unknown", Config{Provider: "ftp"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
