package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.GRPCAddr() != "0.0.0.0:50051" {
		t.Fatalf("GRPCAddr = %q, want %q", cfg.GRPCAddr(), "0.0.0.0:50051")
	}
	if cfg.StoreBackend != BackendJSONFile {
		t.Fatalf("StoreBackend = %q, want %q", cfg.StoreBackend, BackendJSONFile)
	}
	if cfg.StoreStrictWrites {
		t.Fatalf("StoreStrictWrites = true, want lossy default")
	}
	if cfg.GRPCRequestTimeout != 10*time.Second {
		t.Fatalf("GRPCRequestTimeout = %s, want 10s", cfg.GRPCRequestTimeout)
	}
	if !cfg.SeedCatalog {
		t.Fatalf("SeedCatalog = false, want true")
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("BcryptCost = %d, want 10", cfg.BcryptCost)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CHAIRLINE_GRPC_ADDR", "127.0.0.1:6000")
	t.Setenv("CHAIRLINE_STORE_BACKEND", "Bolt")
	t.Setenv("CHAIRLINE_STORE_STRICT_WRITES", "true")
	t.Setenv("CHAIRLINE_REQUIRE_OPERATOR", "true")
	t.Setenv("CHAIRLINE_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/chairline")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.GRPCAddr() != "127.0.0.1:6000" {
		t.Fatalf("GRPCAddr = %q, want %q", cfg.GRPCAddr(), "127.0.0.1:6000")
	}
	if cfg.StoreBackend != BackendBolt {
		t.Fatalf("StoreBackend = %q, want %q", cfg.StoreBackend, BackendBolt)
	}
	if !cfg.StoreStrictWrites || !cfg.RequireOperator {
		t.Fatalf("boolean overrides not applied: %+v", cfg)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("ShutdownTimeout = %s, want 3s", cfg.ShutdownTimeout)
	}
	if cfg.DatabaseURL != "postgres://u:p@db:5432/chairline" {
		t.Fatalf("DatabaseURL = %q", cfg.DatabaseURL)
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CHAIRLINE_STORE_BACKEND", "mongo")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unsupported backend")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CHAIRLINE_GRPC_REQUEST_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Cleanup(func() { _ = os.Unsetenv("CHAIRLINE_STORE_DIR") })

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("CHAIRLINE_STORE_DIR=/var/lib/chairline\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.StoreDir != "/var/lib/chairline" {
		t.Fatalf("StoreDir = %q, want %q", cfg.StoreDir, "/var/lib/chairline")
	}
}

func TestLoad_RejectsMalformedGRPCAddr(t *testing.T) {
	tests := map[string]string{
		"missing port":   "localhost",
		"non-numeric":    "localhost:grpc",
		"port too large": "localhost:70000",
	}
	for name, addr := range tests {
		t.Run(name, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv("CHAIRLINE_GRPC_ADDR", addr)

			_, err := Load()
			if err == nil {
				t.Fatalf("expected error for grpc.addr %q", addr)
			}
			if !strings.HasPrefix(err.Error(), "grpc.addr") {
				t.Fatalf("error = %q, want grpc.addr prefix", err)
			}
		})
	}
}

func TestLoad_AdminSeed(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CHAIRLINE_ADMIN_USERNAME", "owner")
	t.Setenv("CHAIRLINE_ADMIN_PASSWORD", "changeme1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.AdminUsername != "owner" || cfg.AdminPassword != "changeme1" {
		t.Fatalf("admin = %q/%q, want owner/changeme1", cfg.AdminUsername, cfg.AdminPassword)
	}
	if cfg.AdminName != "Administrator" {
		t.Fatalf("AdminName = %q, want Administrator", cfg.AdminName)
	}
}

func TestLoad_AdminSeedNeedsPassword(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CHAIRLINE_ADMIN_USERNAME", "owner")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for admin username without password")
	}
}
