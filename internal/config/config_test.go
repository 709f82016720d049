package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/labwizard")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("port = %q", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Error("default env should be development")
	}
	if cfg.DBMaxConns != 10 || cfg.DBMinConns != 2 {
		t.Errorf("pool defaults = %d/%d", cfg.DBMaxConns, cfg.DBMinConns)
	}
	if !cfg.AssandhaMock {
		t.Error("assandha mock should default to on")
	}
	if len(cfg.CORSOrigins) == 0 {
		t.Error("cors origins default missing")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Error("Load should fail without DATABASE_URL")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"dev without secret", Config{Env: "development"}, false},
		{"prod without secret", Config{Env: "production"}, true},
		{"prod with secret and mock", Config{Env: "production", AuthSecret: "s", AssandhaMock: true}, false},
		{"prod real portal without url", Config{Env: "production", AuthSecret: "s"}, true},
		{"prod real portal with url", Config{Env: "production", AuthSecret: "s", AssandhaBaseURL: "https://portal"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
